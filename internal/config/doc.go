// Package config provides centralized configuration management for Product Pulse.
// It handles loading configuration from multiple sources, validation, and
// provides a type-safe API for configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is layered in the following order of precedence:
//
//  1. Environment variables, including a .env file (highest priority)
//  2. YAML configuration file (config.yaml, configs/config.yaml, or PULSE_CONFIG_FILE)
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern PULSE_<SECTION>_<FIELD>:
//
//	PULSE_SERVER_PORT=8080
//	PULSE_AUTH_JWT_SECRET=...
//	PULSE_AUTH_SEED_USER=admin
//	PULSE_AUTH_SEED_PASSWORD_HASH=$2a$12$...
//	PULSE_STORAGE_DRIVER=postgres
//	PULSE_STORAGE_DSN=postgres://pulse@localhost/pulse
//	PULSE_SHEETS_CREDENTIALS_FILE=credentials.json
//
// Relative file paths are resolved against the executable directory.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Tests should start from config.Default().
package config
