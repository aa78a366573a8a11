package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the Madrasati CLI.
//
// The env tags are read by parseEnv; the JSON names live on JsonConfig.
type Config struct {
	ServerBaseURL   string        `env:"MADRASATI_SERVER_URL"`
	RequestTimeout  time.Duration `env:"MADRASATI_REQUEST_TIMEOUT"`
	WatchInterval   time.Duration `env:"MADRASATI_WATCH_INTERVAL"`
	DataDir         string        `env:"MADRASATI_DATA_DIR"`
	KeychainService string        `env:"MADRASATI_KEYCHAIN_SERVICE"`
	BiometricKind   string        `env:"MADRASATI_BIOMETRIC_KIND"`
	Language        string        `env:"MADRASATI_LANG"`
	LogLevel        string        `env:"MADRASATI_LOG_LEVEL"`
	LogFormat       string        `env:"MADRASATI_LOG_FORMAT"`
}

// LoadDefaults populates c with the production defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "https://api-rec.maderasati.ma"
	c.RequestTimeout = 15 * time.Second
	c.WatchInterval = time.Minute
	c.DataDir = ".madrasati"
	c.KeychainService = "madrasati-wali-credentials"
	c.BiometricKind = "fingerprint"
	c.Language = ""
	c.LogLevel = "warn"
	c.LogFormat = "text"
}

// LoadConfig applies defaults, then the JSON file, then the environment,
// then command-line flags. Later sources win.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerBaseURL == "" {
		return fmt.Errorf("config: server base URL is empty")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("config: negative request timeout %s", c.RequestTimeout)
	}
	if c.WatchInterval <= 0 {
		return fmt.Errorf("config: watch interval must be positive, got %s", c.WatchInterval)
	}
	return nil
}
