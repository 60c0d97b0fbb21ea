package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tacoworks/tollgate/models"
)

type StructuredJSONConfig struct {
	App struct {
		Environment    string `json:"environment"`
		LogLevel       string `json:"log_level"`
		InternalAPIKey string `json:"internal_api_key"`
		Version        string `json:"version"`
	} `json:"app,omitempty"`

	Auth struct {
		TestSecret  string   `json:"test_secret"`
		ProdSecret  string   `json:"prod_secret"`
		TokenIssuer string   `json:"token_issuer"`
		TokenTTL    Duration `json:"token_ttl"`
	} `json:"auth,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Storage struct {
		DB struct {
			Driver string `json:"driver"`
			DSN    string `json:"dsn"`
		} `json:"db,omitempty"`

		Blob struct {
			Backend       string `json:"backend"`
			RedisAddress  string `json:"redis_address"`
			RedisPassword string `json:"redis_password"`
			RedisDB       int    `json:"redis_db"`
			RedisPrefix   string `json:"redis_prefix"`
			Dir           string `json:"dir"`
		} `json:"blob,omitempty"`
	} `json:"storage,omitempty"`

	Sync struct {
		Apps        []string `json:"apps"`
		MaxSyncSize int64    `json:"max_size"`
		MaxVersions int      `json:"max_versions"`
	} `json:"sync,omitempty"`

	Adapter struct {
		BaseURL        string   `json:"base_url"`
		SessionToken   string   `json:"session_token"`
		DeviceID       string   `json:"device_id"`
		App            string   `json:"app"`
		StateFile      string   `json:"state_file"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"adapter,omitempty"`

	Workers struct {
		WatchInterval Duration `json:"watch_interval"`
	} `json:"workers,omitempty"`

	Features map[string]models.FeatureSpec `json:"features,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			Environment:    jsonCfg.App.Environment,
			LogLevel:       jsonCfg.App.LogLevel,
			InternalAPIKey: jsonCfg.App.InternalAPIKey,
			Version:        jsonCfg.App.Version,
		},
		Auth: Auth{
			TestSecret:  jsonCfg.Auth.TestSecret,
			ProdSecret:  jsonCfg.Auth.ProdSecret,
			TokenIssuer: jsonCfg.Auth.TokenIssuer,
			TokenTTL:    time.Duration(jsonCfg.Auth.TokenTTL),
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Storage: Storage{
			DB: DB{
				Driver: jsonCfg.Storage.DB.Driver,
				DSN:    jsonCfg.Storage.DB.DSN,
			},
			Blob: Blob{
				Backend:       jsonCfg.Storage.Blob.Backend,
				RedisAddress:  jsonCfg.Storage.Blob.RedisAddress,
				RedisPassword: jsonCfg.Storage.Blob.RedisPassword,
				RedisDB:       jsonCfg.Storage.Blob.RedisDB,
				RedisPrefix:   jsonCfg.Storage.Blob.RedisPrefix,
				Dir:           jsonCfg.Storage.Blob.Dir,
			},
		},
		Sync: Sync{
			Apps:        jsonCfg.Sync.Apps,
			MaxSyncSize: jsonCfg.Sync.MaxSyncSize,
			MaxVersions: jsonCfg.Sync.MaxVersions,
		},
		Adapter: Adapter{
			BaseURL:        jsonCfg.Adapter.BaseURL,
			SessionToken:   jsonCfg.Adapter.SessionToken,
			DeviceID:       jsonCfg.Adapter.DeviceID,
			App:            jsonCfg.Adapter.App,
			StateFile:      jsonCfg.Adapter.StateFile,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
		},
		Workers: Workers{
			WatchInterval: time.Duration(jsonCfg.Workers.WatchInterval),
		},
		Features:     jsonCfg.Features,
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
