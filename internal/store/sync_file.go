package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tacoworks/tollgate/internal/config"
	"github.com/tacoworks/tollgate/internal/logger"
	"github.com/tacoworks/tollgate/models"
)

// fileSyncRepository persists sync documents on the local filesystem, one
// directory per (user, app) pair:
//
//	{dir}/sync/{user}/{app}/current.json
//	{dir}/sync/{user}/{app}/meta.json
//	{dir}/sync/{user}/{app}/history/{version}.json
//
// A per-document mutex serializes access, and every file lands via a
// temp-file rename, so concurrent requests never observe a half-written
// payload. Suitable for single-process deployments without a Redis.
type fileSyncRepository struct {
	logger      *logger.Logger
	dir         string
	maxVersions int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFileSyncRepository constructs a [SyncRepository] rooted at cfg.Dir,
// creating the directory when missing.
func NewFileSyncRepository(cfg config.Blob, maxVersions int, logger *logger.Logger) (SyncRepository, error) {
	logger.Debug().Str("dir", cfg.Dir).Msg("creating file sync repository")

	if err := os.MkdirAll(filepath.Join(cfg.Dir, "sync"), 0o700); err != nil {
		return nil, fmt.Errorf("error creating blob directory: %w", err)
	}

	return &fileSyncRepository{
		logger:      logger,
		dir:         cfg.Dir,
		maxVersions: maxVersions,
		locks:       make(map[string]*sync.Mutex),
	}, nil
}

// Read returns the current payload with its header.
func (s *fileSyncRepository) Read(ctx context.Context, userID, app string) (models.SyncDocument, error) {
	lock := s.lockFor(userID, app)
	lock.Lock()
	defer lock.Unlock()

	dir := s.docDir(userID, app)

	data, err := os.ReadFile(filepath.Join(dir, "current.json"))
	if os.IsNotExist(err) {
		return models.SyncDocument{}, ErrSyncNotFound
	}
	if err != nil {
		return models.SyncDocument{}, fmt.Errorf("error reading sync payload: %w", err)
	}

	meta, err := s.readMetaFile(dir)
	if err != nil {
		return models.SyncDocument{}, err
	}

	return models.SyncDocument{Data: data, Meta: meta}, nil
}

// ReadMeta returns the header alone.
func (s *fileSyncRepository) ReadMeta(ctx context.Context, userID, app string) (models.SyncMeta, error) {
	lock := s.lockFor(userID, app)
	lock.Lock()
	defer lock.Unlock()

	return s.readMetaFile(s.docDir(userID, app))
}

// ReadSnapshot returns the payload archived for one historical version.
func (s *fileSyncRepository) ReadSnapshot(ctx context.Context, userID, app string, version int64) (json.RawMessage, error) {
	lock := s.lockFor(userID, app)
	lock.Lock()
	defer lock.Unlock()

	name := filepath.Join(s.docDir(userID, app), "history", fmt.Sprintf("%d.json", version))

	data, err := os.ReadFile(name)
	if os.IsNotExist(err) {
		return nil, ErrSyncNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading sync snapshot: %w", err)
	}

	return data, nil
}

// Write stores doc.Data as the new current payload under the write contract
// described on [SyncRepository].
func (s *fileSyncRepository) Write(ctx context.Context, userID, app string, doc models.SyncDocument, expectedVersion *int64) (models.SyncMeta, error) {
	log := logger.FromContext(ctx)

	lock := s.lockFor(userID, app)
	lock.Lock()
	defer lock.Unlock()

	dir := s.docDir(userID, app)
	historyDir := filepath.Join(dir, "history")
	if err := os.MkdirAll(historyDir, 0o700); err != nil {
		return models.SyncMeta{}, fmt.Errorf("error creating sync directory: %w", err)
	}

	// a document that was never written is at version 0
	var currentVersion int64
	currentMeta, err := s.readMetaFile(dir)
	exists := err == nil
	if exists {
		currentVersion = currentMeta.Version
	} else if !errors.Is(err, ErrSyncNotFound) {
		return models.SyncMeta{}, err
	}

	if expectedVersion != nil && *expectedVersion != currentVersion {
		log.Warn().
			Str("func", "fileSyncRepository.Write").
			Str("user_id", userID).
			Str("app", app).
			Int64("expected_version", *expectedVersion).
			Int64("current_version", currentVersion).
			Msg("optimistic lock failed: version mismatch on write")
		return models.SyncMeta{}, ErrVersionConflict
	}

	// snapshot the payload being replaced
	if exists {
		currentData, readErr := os.ReadFile(filepath.Join(dir, "current.json"))
		if readErr != nil {
			return models.SyncMeta{}, fmt.Errorf("error reading sync payload: %w", readErr)
		}
		snapshotName := filepath.Join(historyDir, fmt.Sprintf("%d.json", currentVersion))
		if writeErr := writeFileAtomic(snapshotName, currentData); writeErr != nil {
			return models.SyncMeta{}, fmt.Errorf("error writing sync snapshot: %w", writeErr)
		}
	}

	newMeta := models.SyncMeta{
		Version:      currentVersion + 1,
		LastModified: time.Now().UTC(),
		DeviceID:     doc.Meta.DeviceID,
		Checksum:     doc.Meta.Checksum,
		Size:         doc.Meta.Size,
	}

	metaRaw, err := json.Marshal(newMeta)
	if err != nil {
		return models.SyncMeta{}, fmt.Errorf("error encoding sync meta: %w", err)
	}

	if err := writeFileAtomic(filepath.Join(dir, "current.json"), doc.Data); err != nil {
		return models.SyncMeta{}, fmt.Errorf("error writing sync payload: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(dir, "meta.json"), metaRaw); err != nil {
		return models.SyncMeta{}, fmt.Errorf("error writing sync meta: %w", err)
	}

	s.pruneHistory(ctx, historyDir, newMeta.Version)

	log.Debug().
		Str("func", "fileSyncRepository.Write").
		Str("user_id", userID).
		Str("app", app).
		Int64("version", newMeta.Version).
		Msg("sync document written")

	return newMeta, nil
}

// lockFor returns the mutex guarding one (user, app) document, creating it
// on first use.
func (s *fileSyncRepository) lockFor(userID, app string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userID + "\x00" + app
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}

	return lock
}

func (s *fileSyncRepository) docDir(userID, app string) string {
	return filepath.Join(s.dir, "sync", escapePathSegment(userID), escapePathSegment(app))
}

// readMetaFile loads and decodes meta.json from one document directory. The
// caller must hold the document lock.
func (s *fileSyncRepository) readMetaFile(dir string) (models.SyncMeta, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "meta.json"))
	if os.IsNotExist(err) {
		return models.SyncMeta{}, ErrSyncNotFound
	}
	if err != nil {
		return models.SyncMeta{}, fmt.Errorf("error reading sync meta: %w", err)
	}

	var meta models.SyncMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return models.SyncMeta{}, fmt.Errorf("error decoding sync meta: %w", err)
	}

	return meta, nil
}

// pruneHistory removes snapshots that fell off the retention window. Prune
// failures are logged and swallowed: the write itself already succeeded.
func (s *fileSyncRepository) pruneHistory(ctx context.Context, historyDir string, newVersion int64) {
	log := logger.FromContext(ctx)

	cutoff := newVersion - 1 - int64(s.maxVersions)
	if cutoff < 1 {
		return
	}

	entries, err := os.ReadDir(historyDir)
	if err != nil {
		log.Warn().Err(err).
			Str("func", "fileSyncRepository.pruneHistory").
			Str("dir", historyDir).
			Msg("failed to list history snapshots")
		return
	}

	for _, entry := range entries {
		version, parseErr := strconv.ParseInt(strings.TrimSuffix(entry.Name(), ".json"), 10, 64)
		if parseErr != nil {
			continue
		}
		if version <= cutoff {
			if removeErr := os.Remove(filepath.Join(historyDir, entry.Name())); removeErr != nil {
				log.Warn().Err(removeErr).
					Str("func", "fileSyncRepository.pruneHistory").
					Str("file", entry.Name()).
					Msg("failed to remove history snapshot")
			}
		}
	}
}

// escapePathSegment makes an identifier safe to use as a single directory
// name. Dot-only names would resolve to the directory itself or its parent,
// so they are escaped too.
func escapePathSegment(segment string) string {
	escaped := url.PathEscape(segment)
	if escaped == "." || escaped == ".." {
		return strings.ReplaceAll(escaped, ".", "%2E")
	}

	return escaped
}

// writeFileAtomic writes data to a sibling temp file and renames it over
// path, so readers never observe a partial write.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}
