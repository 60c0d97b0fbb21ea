package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// AppState records what the device last synced for one app namespace.
type AppState struct {
	Version  int64  `json:"version"`
	Checksum string `json:"checksum"`
}

// State is the on-disk sync state of this device.
type State struct {
	DeviceID string              `json:"device_id"`
	Apps     map[string]AppState `json:"apps"`
}

// StateStore persists State as a JSON file.
type StateStore struct {
	path string
}

// NewStateStore returns a store backed by the file at path.
func NewStateStore(path string) *StateStore {
	return &StateStore{path: path}
}

// Load reads the state file. A missing file is not an error: it yields an
// empty state, so a fresh device starts from nothing synced.
func (s *StateStore) Load() (State, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return State{Apps: map[string]AppState{}}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("read state file %s: %w", s.path, err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("decode state file %s: %w", s.path, err)
	}
	if state.Apps == nil {
		state.Apps = map[string]AppState{}
	}
	return state, nil
}

// Save writes the state file, creating parent directories as needed.
func (s *StateStore) Save(state State) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create state dir %s: %w", dir, err)
		}
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("write state file %s: %w", s.path, err)
	}
	return nil
}

// writeFileAtomic writes through a temp file and renames it into place, so
// a crash mid-write never leaves a half-written state file behind.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
