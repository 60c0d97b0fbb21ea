package config

import (
	"fmt"
	"time"
)

// ClientApp holds client-side application settings derived from the shared
// structured config.
type ClientApp struct {
	// LogLevel sets the zerolog level for the client process.
	LogLevel string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// BaseURL is the root URL of the tollgate server.
	BaseURL string
	// SessionToken is the bearer credential presented on every request.
	SessionToken string
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
}

// ClientSync holds the sync identity of this client installation.
type ClientSync struct {
	// App is the application identifier the client syncs under.
	App string
	// DeviceID identifies this installation in sync metadata. When empty
	// the client generates one and persists it in the state file.
	DeviceID string
	// StateFile is the path of the local state file holding the last seen
	// sync version and the device id.
	StateFile string
}

// ClientWorkers contains client background worker settings.
type ClientWorkers struct {
	// WatchInterval defines how often the watch worker polls the server.
	WatchInterval time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// App contains application-level client settings.
	App ClientApp
	// Adapter contains client transport settings.
	Adapter ClientAdapter
	// Sync contains the client sync identity.
	Sync ClientSync
	// Workers contains background job settings.
	Workers ClientWorkers
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
//
// It merges the same layers as [GetStructuredConfig] but skips the server
// validation rules (a client has no signing secrets or listen address),
// maps only the fields relevant to the client runtime, and validates the
// resulting [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		withDefaults().
		build()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		App: ClientApp{
			LogLevel: cfg.App.LogLevel,
		},
		Adapter: ClientAdapter{
			BaseURL:        cfg.Adapter.BaseURL,
			SessionToken:   cfg.Adapter.SessionToken,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Sync: ClientSync{
			App:       cfg.Adapter.App,
			DeviceID:  cfg.Adapter.DeviceID,
			StateFile: cfg.Adapter.StateFile,
		},
		Workers: ClientWorkers{
			WatchInterval: cfg.Workers.WatchInterval,
		},
	}

	if err := clientCfg.validate(); err != nil {
		return nil, fmt.Errorf("error validating client config: %w", err)
	}

	return clientCfg, nil
}
