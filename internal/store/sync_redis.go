package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/tacoworks/tollgate/internal/config"
	"github.com/tacoworks/tollgate/internal/logger"
	"github.com/tacoworks/tollgate/models"
)

// redisWriteAttempts bounds how often a write is retried after losing a
// WATCH race to a concurrent writer.
const redisWriteAttempts = 3

// redisSyncRepository persists sync documents in Redis. The meta key is
// WATCHed while the new state is assembled, and the snapshot, the
// current/meta swap and the prune are issued in one MULTI/EXEC pipeline, so
// a racing writer aborts the whole transaction instead of interleaving.
type redisSyncRepository struct {
	logger      *logger.Logger
	client      *redis.Client
	prefix      string
	maxVersions int
}

// NewRedisSyncRepository connects to Redis and verifies the connection with
// a ping.
func NewRedisSyncRepository(ctx context.Context, cfg config.Blob, maxVersions int, logger *logger.Logger) (SyncRepository, error) {
	logger.Debug().Str("addr", cfg.RedisAddress).Msg("creating redis sync repository")

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddress,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     20,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisSyncRepository{
		logger:      logger,
		client:      client,
		prefix:      cfg.RedisPrefix,
		maxVersions: maxVersions,
	}, nil
}

// Read returns the current payload with its header. Both keys are fetched
// in a single MGET so the pair always belongs to the same version.
func (s *redisSyncRepository) Read(ctx context.Context, userID, app string) (models.SyncDocument, error) {
	currentKey := s.key(syncCurrentKey(userID, app))
	metaKey := s.key(syncMetaKey(userID, app))

	values, err := s.client.MGet(ctx, currentKey, metaKey).Result()
	if err != nil {
		return models.SyncDocument{}, fmt.Errorf("error reading sync document: %w", err)
	}

	data, ok := values[0].(string)
	if !ok {
		return models.SyncDocument{}, ErrSyncNotFound
	}
	metaRaw, ok := values[1].(string)
	if !ok {
		return models.SyncDocument{}, ErrSyncNotFound
	}

	var meta models.SyncMeta
	if err := json.Unmarshal([]byte(metaRaw), &meta); err != nil {
		return models.SyncDocument{}, fmt.Errorf("error decoding sync meta: %w", err)
	}

	return models.SyncDocument{Data: json.RawMessage(data), Meta: meta}, nil
}

// ReadMeta returns the header alone.
func (s *redisSyncRepository) ReadMeta(ctx context.Context, userID, app string) (models.SyncMeta, error) {
	raw, err := s.client.Get(ctx, s.key(syncMetaKey(userID, app))).Bytes()
	if errors.Is(err, redis.Nil) {
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

// ReadSnapshot returns the payload archived for one historical version.
func (s *redisSyncRepository) ReadSnapshot(ctx context.Context, userID, app string, version int64) (json.RawMessage, error) {
	data, err := s.client.Get(ctx, s.key(syncHistoryKey(userID, app, version))).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSyncNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading sync snapshot: %w", err)
	}

	return json.RawMessage(data), nil
}

// Write stores doc.Data as the new current payload under the write contract
// described on [SyncRepository]. Losing the WATCH race re-reads and retries,
// so writes without an expected version behave the same as on the
// mutex-serialized backends.
func (s *redisSyncRepository) Write(ctx context.Context, userID, app string, doc models.SyncDocument, expectedVersion *int64) (models.SyncMeta, error) {
	log := logger.FromContext(ctx)

	currentKey := s.key(syncCurrentKey(userID, app))
	metaKey := s.key(syncMetaKey(userID, app))

	var newMeta models.SyncMeta

	write := func(tx *redis.Tx) error {
		// a document that was never written is at version 0
		var currentVersion int64
		exists := true

		metaRaw, err := tx.Get(ctx, metaKey).Bytes()
		if errors.Is(err, redis.Nil) {
			exists = false
		} else if err != nil {
			return fmt.Errorf("error reading sync meta: %w", err)
		} else {
			var currentMeta models.SyncMeta
			if err := json.Unmarshal(metaRaw, &currentMeta); err != nil {
				return fmt.Errorf("error decoding sync meta: %w", err)
			}
			currentVersion = currentMeta.Version
		}

		if expectedVersion != nil && *expectedVersion != currentVersion {
			log.Warn().
				Str("func", "redisSyncRepository.Write").
				Str("user_id", userID).
				Str("app", app).
				Int64("expected_version", *expectedVersion).
				Int64("current_version", currentVersion).
				Msg("optimistic lock failed: version mismatch on write")
			return ErrVersionConflict
		}

		// snapshot the payload being replaced
		var currentData []byte
		if exists {
			currentData, err = tx.Get(ctx, currentKey).Bytes()
			if err != nil && !errors.Is(err, redis.Nil) {
				return fmt.Errorf("error reading sync payload: %w", err)
			}
		}

		newMeta = models.SyncMeta{
			Version:      currentVersion + 1,
			LastModified: time.Now().UTC(),
			DeviceID:     doc.Meta.DeviceID,
			Checksum:     doc.Meta.Checksum,
			Size:         doc.Meta.Size,
		}

		newMetaRaw, err := json.Marshal(newMeta)
		if err != nil {
			return fmt.Errorf("error encoding sync meta: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if currentData != nil {
				pipe.Set(ctx, s.key(syncHistoryKey(userID, app, currentVersion)), currentData, 0)
			}
			pipe.Set(ctx, currentKey, []byte(doc.Data), 0)
			pipe.Set(ctx, metaKey, newMetaRaw, 0)

			// versions are dense, so dropping the single snapshot that fell
			// off the retention window keeps history bounded
			if pruned := newMeta.Version - 1 - int64(s.maxVersions); pruned >= 1 {
				pipe.Del(ctx, s.key(syncHistoryKey(userID, app, pruned)))
			}

			return nil
		})

		return err
	}

	for attempt := 0; attempt < redisWriteAttempts; attempt++ {
		err := s.client.Watch(ctx, write, metaKey)
		if err == nil {
			log.Debug().
				Str("func", "redisSyncRepository.Write").
				Str("user_id", userID).
				Str("app", app).
				Int64("version", newMeta.Version).
				Msg("sync document written")
			return newMeta, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			// raced another writer, re-read and try again
			continue
		}

		return models.SyncMeta{}, err
	}

	return models.SyncMeta{}, ErrVersionConflict
}

func (s *redisSyncRepository) key(key string) string {
	if s.prefix == "" {
		return key
	}

	return s.prefix + ":" + key
}
