package config

import (
	"fmt"
	"time"
)

// ClientApp holds client-side application settings.
type ClientApp struct {
	// HashKey signs push bodies when the server checks integrity.
	HashKey string
	// Token is the bearer token sent on every pull and push.
	Token string
	// Version is shown in the status view.
	Version string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the server base URL.
	HTTPAddress string
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
}

// ClientDB contains local database connection settings for the client.
type ClientDB struct {
	// DSN is the SQLite file holding the queue and the local cache.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	DB ClientDB
}

// ClientWorkers contains sync coordinator settings.
type ClientWorkers struct {
	SyncInterval   time.Duration
	BatchSize      int
	MaxAttempts    int
	BaseBackoff    time.Duration
	MaxBackoff     time.Duration
	HealthInterval time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter ClientAdapter
	Storage ClientStorage
	Workers ClientWorkers
	Log     Log
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration. Server-only settings are ignored.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := loadStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := NewClientConfig(cfg)
	return clientCfg, clientCfg.validate()
}

// NewClientConfig maps the client-relevant fields of cfg.
func NewClientConfig(cfg *StructuredConfig) *ClientConfig {
	return &ClientConfig{
		App: ClientApp{
			HashKey: cfg.App.HashKey,
			Token:   cfg.App.ClientToken,
			Version: cfg.App.Version,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Storage: ClientStorage{
			DB: ClientDB{DSN: cfg.Storage.DB.DSN},
		},
		Workers: ClientWorkers{
			SyncInterval:   cfg.Workers.SyncInterval,
			BatchSize:      cfg.Workers.BatchSize,
			MaxAttempts:    cfg.Workers.MaxAttempts,
			BaseBackoff:    cfg.Workers.BaseBackoff,
			MaxBackoff:     cfg.Workers.MaxBackoff,
			HealthInterval: cfg.Workers.HealthInterval,
		},
		Log: cfg.Log,
	}
}
