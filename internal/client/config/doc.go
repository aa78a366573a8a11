// Package config loads runtime configuration for the Madrasati CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c / -config or $MADRASATI_CONFIG.
//  3. MADRASATI_* environment variables.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   backend base URL
//	-t int      request timeout (seconds)
//	-i int      background watch interval (seconds)
//	-d string   data directory
//	-l string   language (ar|fr)
//	-v string   log level
//
// # JSON schema
//
//	{
//	  "server_base_url": "https://api-rec.maderasati.ma",
//	  "request_timeout": "15s",
//	  "watch_interval": "1m",
//	  "data_dir": ".madrasati",
//	  "keychain_service": "madrasati-wali-credentials",
//	  "biometric_kind": "fingerprint",
//	  "language": "fr",
//	  "log_level": "warn",
//	  "log_format": "text"
//	}
package config
