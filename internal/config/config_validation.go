package config

import "fmt"

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or an error wrapping one of
// the Err* sentinels otherwise.
func (cfg *StructuredConfig) validate() error {
	switch cfg.App.Environment {
	case EnvTest, EnvProduction:
	default:
		return fmt.Errorf("%w: unknown environment %q", ErrInvalidAppConfigs, cfg.App.Environment)
	}

	if cfg.TokenSecret() == "" {
		return fmt.Errorf("%w: no signing secret for environment %q", ErrInvalidAuthConfigs, cfg.App.Environment)
	}

	if cfg.Auth.TestSecret != "" && cfg.Auth.TestSecret == cfg.Auth.ProdSecret {
		return fmt.Errorf("%w: test and production secrets must differ", ErrInvalidAuthConfigs)
	}

	if cfg.Server.HTTPAddress == "" {
		return fmt.Errorf("%w: empty HTTP address", ErrInvalidServerConfigs)
	}

	switch cfg.Storage.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidStorageConfigs, cfg.Storage.DB.Driver)
	}

	if cfg.Storage.DB.DSN == "" {
		return fmt.Errorf("%w: empty database DSN", ErrInvalidStorageConfigs)
	}

	switch cfg.Storage.Blob.Backend {
	case BlobRedis:
		if cfg.Storage.Blob.RedisAddress == "" {
			return fmt.Errorf("%w: redis backend needs an address", ErrInvalidStorageConfigs)
		}
	case BlobFile:
		if cfg.Storage.Blob.Dir == "" {
			return fmt.Errorf("%w: file backend needs a directory", ErrInvalidStorageConfigs)
		}
	case BlobMemory:
	default:
		return fmt.Errorf("%w: unknown blob backend %q", ErrInvalidStorageConfigs, cfg.Storage.Blob.Backend)
	}

	if len(cfg.Sync.Apps) == 0 {
		return fmt.Errorf("%w: empty app allow-list", ErrInvalidSyncConfigs)
	}

	if cfg.Sync.MaxSyncSize <= 0 {
		return fmt.Errorf("%w: max sync size must be positive", ErrInvalidSyncConfigs)
	}

	if cfg.Sync.MaxVersions < 1 {
		return fmt.Errorf("%w: max versions must be at least 1", ErrInvalidSyncConfigs)
	}

	for name, feature := range cfg.Features {
		if feature.TokenCost < 0 {
			return fmt.Errorf("%w: feature %q has a negative token cost", ErrInvalidFeatureConfigs, name)
		}
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Adapter.BaseURL == "" || cfg.Adapter.RequestTimeout == 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Sync.App == "" {
		return fmt.Errorf("%w: no sync app selected", ErrInvalidSyncConfigs)
	}

	if cfg.Workers.WatchInterval == 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}
