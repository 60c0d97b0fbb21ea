package utils

import (
	"encoding/hex"
	"testing"

	"golang.org/x/crypto/blake2b"
)

func TestChecksum_Deterministic(t *testing.T) {
	data := []byte("test-data")

	sum1 := Checksum(data)
	sum2 := Checksum(data)

	if sum1 == "" {
		t.Fatal("checksum result is empty")
	}

	if sum1 != sum2 {
		t.Fatal("checksum must be deterministic for the same input")
	}

	// verify against direct BLAKE2b computation
	full := blake2b.Sum256(data)
	expected := hex.EncodeToString(full[:checksumBytes])

	if sum1 != expected {
		t.Fatalf("unexpected checksum value\nwant: %s\ngot:  %s", expected, sum1)
	}
}

func TestChecksum_Length(t *testing.T) {
	sum := Checksum([]byte(`{"resume":{"name":"Ada"}}`))

	if len(sum) != 32 {
		t.Fatalf("expected 32 hex characters, got %d (%q)", len(sum), sum)
	}
	if _, err := hex.DecodeString(sum); err != nil {
		t.Fatalf("checksum is not valid hex: %v", err)
	}
}

func TestChecksum_DiffersForDifferentPayloads(t *testing.T) {
	a := Checksum([]byte("payload-a"))
	b := Checksum([]byte("payload-b"))

	if a == b {
		t.Fatal("different payloads produced the same checksum")
	}
}

func TestChecksum_EmptyPayload(t *testing.T) {
	sum := Checksum(nil)

	if len(sum) != 32 {
		t.Fatalf("expected 32 hex characters for empty payload, got %d", len(sum))
	}
	if sum != Checksum([]byte{}) {
		t.Fatal("nil and empty payloads must hash identically")
	}
}

func TestChecksumMatches(t *testing.T) {
	data := []byte("sync payload")
	sum := Checksum(data)

	if !ChecksumMatches(data, sum) {
		t.Error("expected checksum to match its own payload")
	}
	if ChecksumMatches([]byte("tampered payload"), sum) {
		t.Error("expected mismatch for a different payload")
	}
	if ChecksumMatches(data, "") {
		t.Error("blank expected checksum must never match")
	}
}

func TestChecksum_PoolReuseIsSafe(t *testing.T) {
	// Interleave different payloads so a dirty pooled hasher would
	// surface as a wrong digest.
	payloads := [][]byte{
		[]byte("first"),
		[]byte("second"),
		[]byte("first"),
	}

	got := make([]string, len(payloads))
	for i, p := range payloads {
		got[i] = Checksum(p)
	}

	if got[0] != got[2] {
		t.Fatal("same payload must hash identically across pool reuse")
	}
	if got[0] == got[1] {
		t.Fatal("different payloads must not collide after pool reuse")
	}
}
