package models

import (
	"encoding/json"
	"time"
)

// SyncMeta is the version/checksum/size header describing the current
// state of one user's synchronized blob for one application. Exactly
// one exists per (user, app) once the first write lands.
type SyncMeta struct {
	// Version strictly increases by 1 with every successful write,
	// starting at 1.
	Version int64 `json:"version"`

	// LastModified is the server-side timestamp of the last write.
	LastModified time.Time `json:"last_modified"`

	// DeviceID identifies the writer, as reported by the client.
	DeviceID string `json:"device_id"`

	// Checksum is the hex16 integrity digest of the current payload.
	Checksum string `json:"checksum"`

	// Size is the payload length in bytes.
	Size int64 `json:"size"`
}

// SyncDocument bundles the current payload with its meta header.
// Data is opaque to the store; it is carried as raw JSON.
type SyncDocument struct {
	Data json.RawMessage `json:"data"`
	Meta SyncMeta        `json:"meta"`
}
