package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tacoworks/tollgate/internal/config"
	"github.com/tacoworks/tollgate/internal/logger"
	"github.com/tacoworks/tollgate/internal/store"
	"github.com/tacoworks/tollgate/internal/utils"
	"github.com/tacoworks/tollgate/models"
)

// syncService is the concrete implementation of SyncService. It owns the
// surface rules of the sync contract: the application allow-list, the
// payload size cap, and checksum stamping and verification. Version
// atomicity lives in the SyncRepository.
type syncService struct {
	syncRepository store.SyncRepository

	// apps is the closed set of application identifiers eligible for
	// sync. Requests naming any other app are rejected before storage is
	// touched.
	apps []string

	// maxSyncSize is the largest accepted payload in bytes.
	maxSyncSize int64

	logger *logger.Logger
}

// NewSyncService constructs a SyncService enforcing the limits and
// allow-list from cfg on top of the given SyncRepository.
func NewSyncService(syncRepository store.SyncRepository, cfg config.Sync, logger *logger.Logger) SyncService {
	return &syncService{
		syncRepository: syncRepository,
		apps:           cfg.Apps,
		maxSyncSize:    cfg.MaxSyncSize,
		logger:         logger,
	}
}

// Read returns the current document for (userID, app) after verifying
// that the stored payload still hashes to its recorded checksum.
//
// Returns ErrUnknownApp for an app outside the allow-list,
// store.ErrSyncNotFound when nothing has been written yet, and
// ErrChecksumMismatch when the payload no longer matches its checksum.
// A mismatch means the stored bytes rotted, not that two writers raced.
func (s *syncService) Read(ctx context.Context, userID, app string) (models.SyncDocument, error) {
	log := logger.FromContext(ctx)

	if !s.allowedApp(app) {
		return models.SyncDocument{}, ErrUnknownApp
	}

	doc, err := s.syncRepository.Read(ctx, userID, app)
	if err != nil {
		if errors.Is(err, store.ErrSyncNotFound) {
			return models.SyncDocument{}, err
		}
		return models.SyncDocument{}, fmt.Errorf("sync read failed: %w", err)
	}

	if !utils.ChecksumMatches(doc.Data, doc.Meta.Checksum) {
		log.Error().
			Str("func", "syncService.Read").
			Str("user_id", userID).
			Str("app", app).
			Int64("version", doc.Meta.Version).
			Str("checksum", doc.Meta.Checksum).
			Msg("stored payload failed its integrity check")
		return models.SyncDocument{}, ErrChecksumMismatch
	}

	return doc, nil
}

// ReadMeta returns the stored meta for (userID, app) without the payload.
func (s *syncService) ReadMeta(ctx context.Context, userID, app string) (models.SyncMeta, error) {
	if !s.allowedApp(app) {
		return models.SyncMeta{}, ErrUnknownApp
	}

	meta, err := s.syncRepository.ReadMeta(ctx, userID, app)
	if err != nil {
		if errors.Is(err, store.ErrSyncNotFound) {
			return models.SyncMeta{}, err
		}
		return models.SyncMeta{}, fmt.Errorf("sync meta read failed: %w", err)
	}

	return meta, nil
}

// ReadSnapshot returns the payload archived under history/{version}.
// Snapshots carry no per-version checksum, so no integrity check runs
// here.
func (s *syncService) ReadSnapshot(ctx context.Context, userID, app string, version int64) (json.RawMessage, error) {
	if !s.allowedApp(app) {
		return nil, ErrUnknownApp
	}

	data, err := s.syncRepository.ReadSnapshot(ctx, userID, app, version)
	if err != nil {
		if errors.Is(err, store.ErrSyncNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("sync snapshot read failed: %w", err)
	}

	return data, nil
}

// Write stores req.Data as the new current payload for (userID, app).
//
// The payload is canonicalized to compact JSON before anything else is
// computed: the checksum covers the stored bytes, and the stored form
// must survive re-encoding on the read path byte for byte so clients
// can verify it independently.
//
// Oversized payloads are rejected with SizeExceededError before
// anything is written. The payload's checksum and size are computed
// here and stored alongside the writer's device id; the repository
// assigns the version and the server-side timestamp atomically.
//
// When req.ExpectedVersion is set and stale, the write is refused with
// a VersionConflictError carrying the version currently stored. A
// conflict is an expected concurrent-editing outcome, so it is logged
// quietly.
func (s *syncService) Write(ctx context.Context, userID, app string, req models.SyncWriteRequest) (models.SyncMeta, error) {
	log := logger.FromContext(ctx)

	if !s.allowedApp(app) {
		return models.SyncMeta{}, ErrUnknownApp
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, req.Data); err != nil {
		return models.SyncMeta{}, fmt.Errorf("sync payload is not valid JSON: %w", err)
	}
	data := json.RawMessage(compact.Bytes())

	size := int64(len(data))
	if size > s.maxSyncSize {
		log.Warn().
			Str("func", "syncService.Write").
			Str("user_id", userID).
			Str("app", app).
			Int64("size", size).
			Int64("max", s.maxSyncSize).
			Msg("sync write rejected: payload too large")
		return models.SyncMeta{}, &SizeExceededError{Size: size, Max: s.maxSyncSize}
	}

	doc := models.SyncDocument{
		Data: data,
		Meta: models.SyncMeta{
			DeviceID: req.DeviceID,
			Checksum: utils.Checksum(data),
			Size:     size,
		},
	}

	meta, err := s.syncRepository.Write(ctx, userID, app, doc, req.ExpectedVersion)
	if err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			conflict := &VersionConflictError{}
			if current, metaErr := s.syncRepository.ReadMeta(ctx, userID, app); metaErr == nil {
				conflict.Version = current.Version
			}

			log.Debug().
				Str("func", "syncService.Write").
				Str("user_id", userID).
				Str("app", app).
				Int64("stored_version", conflict.Version).
				Msg("sync write lost the version race")
			return models.SyncMeta{}, conflict
		}

		return models.SyncMeta{}, fmt.Errorf("sync write failed: %w", err)
	}

	return meta, nil
}

func (s *syncService) allowedApp(app string) bool {
	for _, allowed := range s.apps {
		if app == allowed {
			return true
		}
	}

	return false
}
