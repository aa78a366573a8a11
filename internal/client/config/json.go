package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/madrasati/internal/flagx"
	"github.com/dmitrijs2005/madrasati/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// Durations use timex.Duration, so "15s" and integer nanoseconds both work.
type JsonConfig struct {
	ServerBaseURL   string         `json:"server_base_url"`
	RequestTimeout  timex.Duration `json:"request_timeout"`
	WatchInterval   timex.Duration `json:"watch_interval"`
	DataDir         string         `json:"data_dir"`
	KeychainService string         `json:"keychain_service"`
	BiometricKind   string         `json:"biometric_kind"`
	Language        string         `json:"language"`
	LogLevel        string         `json:"log_level"`
	LogFormat       string         `json:"log_format"`
}

// parseJson overlays cfg with the file named by -c/-config (or
// $MADRASATI_CONFIG). Keys absent from the file leave cfg untouched.
func parseJson(cfg *Config) error {
	path := flagx.ConfigFile()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.ServerBaseURL, jc.ServerBaseURL)
	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.KeychainService, jc.KeychainService)
	setString(&cfg.BiometricKind, jc.BiometricKind)
	setString(&cfg.Language, jc.Language)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.WatchInterval.Duration != 0 {
		cfg.WatchInterval = jc.WatchInterval.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
