package utils

import (
	"encoding/hex"
	"hash"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// checksumBytes is how much of the BLAKE2b-256 digest survives
// truncation. 16 bytes hex-encode to the 32-character checksum stored
// in sync meta.
const checksumBytes = 16

// hasherPool is a package-level pool of reusable BLAKE2b-256 hash
// instances. Sync payloads run up to the configured size cap, so
// reusing hasher state avoids per-request allocations on the write
// and verify paths.
var hasherPool = sync.Pool{
	New: func() any {
		h, _ := blake2b.New256(nil)
		return h
	},
}

// Checksum computes the integrity digest of a sync payload: the first
// 16 bytes of an unkeyed BLAKE2b-256 hash, hex-encoded to 32 characters.
//
// The digest is used purely for corruption detection on read, never
// for addressing or authentication.
//
// Example usage:
//
//	sum := utils.Checksum(payload) // "9f86d081884c7d65..."
func Checksum(data []byte) string {
	h := hasherPool.Get().(hash.Hash)
	h.Reset()

	h.Write(data)
	sum := h.Sum(nil)

	h.Reset()
	hasherPool.Put(h)

	return hex.EncodeToString(sum[:checksumBytes])
}

// ChecksumMatches reports whether the payload hashes to the expected
// checksum. A blank expected value never matches.
func ChecksumMatches(data []byte, expected string) bool {
	if expected == "" {
		return false
	}
	return Checksum(data) == expected
}
