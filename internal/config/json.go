package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] in the layout of the JSON
// configuration file. Durations are written as strings ("30s", "5m").
type StructuredJSONConfig struct {
	App struct {
		TokenSignKey   string   `json:"token_sign_key"`
		TokenIssuer    string   `json:"token_issuer"`
		TokenDuration  Duration `json:"token_duration"`
		HashKey        string   `json:"hash_key"`
		Version        string   `json:"version"`
		ClientToken    string   `json:"client_token"`
		MaxPushChanges int      `json:"max_push_changes"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		GRPCAddress    string   `json:"grpc_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"adapter,omitempty"`

	Workers struct {
		SyncInterval   Duration `json:"sync_interval"`
		BatchSize      int      `json:"batch_size"`
		MaxAttempts    int      `json:"max_attempts"`
		BaseBackoff    Duration `json:"base_backoff"`
		MaxBackoff     Duration `json:"max_backoff"`
		HealthInterval Duration `json:"health_interval"`
	} `json:"workers,omitempty"`

	Log struct {
		File       string `json:"file"`
		MaxSizeMB  int    `json:"max_size_mb"`
		MaxBackups int    `json:"max_backups"`
	} `json:"log,omitempty"`
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
			TokenSignKey:   jsonCfg.App.TokenSignKey,
			TokenIssuer:    jsonCfg.App.TokenIssuer,
			TokenDuration:  time.Duration(jsonCfg.App.TokenDuration),
			HashKey:        jsonCfg.App.HashKey,
			Version:        jsonCfg.App.Version,
			ClientToken:    jsonCfg.App.ClientToken,
			MaxPushChanges: jsonCfg.App.MaxPushChanges,
		},
		Storage: Storage{
			DB: DB{DSN: jsonCfg.Storage.DB.DSN},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			GRPCAddress:    jsonCfg.Server.GRPCAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Adapter: Adapter{
			HTTPAddress:    jsonCfg.Adapter.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
		},
		Workers: Workers{
			SyncInterval:   time.Duration(jsonCfg.Workers.SyncInterval),
			BatchSize:      jsonCfg.Workers.BatchSize,
			MaxAttempts:    jsonCfg.Workers.MaxAttempts,
			BaseBackoff:    time.Duration(jsonCfg.Workers.BaseBackoff),
			MaxBackoff:     time.Duration(jsonCfg.Workers.MaxBackoff),
			HealthInterval: time.Duration(jsonCfg.Workers.HealthInterval),
		},
		Log: Log{
			File:       jsonCfg.Log.File,
			MaxSizeMB:  jsonCfg.Log.MaxSizeMB,
			MaxBackups: jsonCfg.Log.MaxBackups,
		},
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
