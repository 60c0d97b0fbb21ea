package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/tacoworks/tollgate/internal/config"
	"github.com/tacoworks/tollgate/internal/logger"
	"github.com/tacoworks/tollgate/models"
)

// memorySyncRepository keeps sync documents in process memory. It backs the
// default test configuration; everything is lost on restart.
//
// One mutex guards all three maps, so the version compare, the snapshot of
// the previous payload, the current/meta swap and the history prune are
// observed as a single step by concurrent writers.
type memorySyncRepository struct {
	logger      *logger.Logger
	maxVersions int

	mu      sync.RWMutex
	current map[string]json.RawMessage
	meta    map[string]models.SyncMeta
	history map[string]json.RawMessage
}

// NewMemorySyncRepository constructs a [SyncRepository] holding documents in
// process memory.
func NewMemorySyncRepository(cfg config.Sync, logger *logger.Logger) SyncRepository {
	logger.Debug().Msg("creating in-memory sync repository")
	return &memorySyncRepository{
		logger:      logger,
		maxVersions: cfg.MaxVersions,
		current:     make(map[string]json.RawMessage),
		meta:        make(map[string]models.SyncMeta),
		history:     make(map[string]json.RawMessage),
	}
}

// Read returns the current payload with its header.
func (s *memorySyncRepository) Read(ctx context.Context, userID, app string) (models.SyncDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.current[syncCurrentKey(userID, app)]
	if !ok {
		return models.SyncDocument{}, ErrSyncNotFound
	}

	return models.SyncDocument{
		Data: data,
		Meta: s.meta[syncMetaKey(userID, app)],
	}, nil
}

// ReadMeta returns the header alone.
func (s *memorySyncRepository) ReadMeta(ctx context.Context, userID, app string) (models.SyncMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta, ok := s.meta[syncMetaKey(userID, app)]
	if !ok {
		return models.SyncMeta{}, ErrSyncNotFound
	}

	return meta, nil
}

// ReadSnapshot returns the payload archived for one historical version.
func (s *memorySyncRepository) ReadSnapshot(ctx context.Context, userID, app string, version int64) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.history[syncHistoryKey(userID, app, version)]
	if !ok {
		return nil, ErrSyncNotFound
	}

	return data, nil
}

// Write stores doc.Data as the new current payload under the write contract
// described on [SyncRepository].
func (s *memorySyncRepository) Write(ctx context.Context, userID, app string, doc models.SyncDocument, expectedVersion *int64) (models.SyncMeta, error) {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	currentKey := syncCurrentKey(userID, app)
	metaKey := syncMetaKey(userID, app)

	// a document that was never written is at version 0
	var currentVersion int64
	currentMeta, exists := s.meta[metaKey]
	if exists {
		currentVersion = currentMeta.Version
	}

	if expectedVersion != nil && *expectedVersion != currentVersion {
		log.Warn().
			Str("func", "memorySyncRepository.Write").
			Str("user_id", userID).
			Str("app", app).
			Int64("expected_version", *expectedVersion).
			Int64("current_version", currentVersion).
			Msg("optimistic lock failed: version mismatch on write")
		return models.SyncMeta{}, ErrVersionConflict
	}

	// snapshot the payload being replaced
	if exists {
		s.history[syncHistoryKey(userID, app, currentVersion)] = s.current[currentKey]
	}

	newMeta := models.SyncMeta{
		Version:      currentVersion + 1,
		LastModified: time.Now().UTC(),
		DeviceID:     doc.Meta.DeviceID,
		Checksum:     doc.Meta.Checksum,
		Size:         doc.Meta.Size,
	}

	s.current[currentKey] = doc.Data
	s.meta[metaKey] = newMeta

	// drop snapshots that fell off the retention window
	for version := newMeta.Version - 1 - int64(s.maxVersions); version >= 1; version-- {
		key := syncHistoryKey(userID, app, version)
		if _, ok := s.history[key]; !ok {
			break
		}
		delete(s.history, key)
	}

	log.Debug().
		Str("func", "memorySyncRepository.Write").
		Str("user_id", userID).
		Str("app", app).
		Int64("version", newMeta.Version).
		Msg("sync document written")

	return newMeta, nil
}
