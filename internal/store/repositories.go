package store

import (
	"context"
	"fmt"

	"github.com/tacoworks/tollgate/internal/config"
	"github.com/tacoworks/tollgate/internal/logger"
)

// Repositories bundles every persistence contract the service layer needs.
type Repositories struct {
	Credit       CreditRepository
	Subscription SubscriptionRepository
	Sync         SyncRepository
}

// NewRepositories wires the relational repositories and the configured blob
// backend into one container.
func NewRepositories(ctx context.Context, db *DB, cfg *config.StructuredConfig, logger *logger.Logger) (*Repositories, error) {
	logger.Debug().Msg("creating repositories")

	syncRepository, err := newSyncRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Repositories{
		Credit:       NewCreditRepository(db, logger),
		Subscription: NewSubscriptionRepository(db, logger),
		Sync:         syncRepository,
	}, nil
}

// newSyncRepository constructs the blob backend named by the configuration.
func newSyncRepository(ctx context.Context, cfg *config.StructuredConfig, logger *logger.Logger) (SyncRepository, error) {
	switch cfg.Storage.Blob.Backend {
	case config.BlobRedis:
		return NewRedisSyncRepository(ctx, cfg.Storage.Blob, cfg.Sync.MaxVersions, logger)
	case config.BlobFile:
		return NewFileSyncRepository(cfg.Storage.Blob, cfg.Sync.MaxVersions, logger)
	case config.BlobMemory:
		return NewMemorySyncRepository(cfg.Sync, logger), nil
	default:
		return nil, fmt.Errorf("unknown blob backend: %s", cfg.Storage.Blob.Backend)
	}
}
