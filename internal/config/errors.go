package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] and
// [ClientConfig.validate] when required configuration groups are incomplete
// or invalid.
var (
	// ErrInvalidAppConfigs indicates invalid application-level settings
	// (for example, an unknown deployment environment).
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidAuthConfigs indicates invalid token verification settings
	// (for example, a missing signing secret, or test and production
	// sharing one secret).
	ErrInvalidAuthConfigs = errors.New("invalid auth configuration")
	// ErrInvalidServerConfigs indicates invalid HTTP server settings.
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
	// ErrInvalidStorageConfigs indicates invalid database or blob store
	// settings (for example, an unknown driver or backend).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidSyncConfigs indicates invalid sync surface settings
	// (for example, an empty app allow-list or a non-positive size limit).
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
	// ErrInvalidFeatureConfigs indicates an invalid feature registry entry
	// (for example, a negative token cost).
	ErrInvalidFeatureConfigs = errors.New("invalid feature configuration")
	// ErrInvalidAdapterConfigs indicates invalid client adapter settings
	// (for example, missing base URL or request timeout).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidWorkerConfigs indicates invalid background worker settings
	// (for example, zero watch interval).
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
)
