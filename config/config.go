// Package config loads the middleware configuration from the
// environment, with optional .env file support.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvPrivateKeyPath = "VARIAMOS_PRIVATE_KEY_PATH"
	EnvPublicKeyPath  = "VARIAMOS_PUBLIC_KEY_PATH"
	EnvTokenLifetime  = "VARIAMOS_JWT_EXP_IN_SECONDS"
	EnvHTTPAddr       = "VARIAMOS_HTTP_ADDR"
	EnvLogLevel       = "VARIAMOS_LOG_LEVEL"
)

// Defaults applied when the corresponding variable is unset or invalid.
const (
	DefaultTokenLifetime = 900 * time.Second
	DefaultHTTPAddr      = ":8080"
	DefaultLogLevel      = "info"
)

// Config holds the middleware configuration.
type Config struct {
	// PrivateKeyPath is the PEM private key file. Signing is disabled
	// when empty.
	PrivateKeyPath string

	// PublicKeyPath is the PEM public key file. Verification falls back
	// to the private key's public half when empty.
	PublicKeyPath string

	// TokenLifetime is how long issued tokens stay valid.
	TokenLifetime time.Duration

	// HTTPAddr is the listen address of the demo server.
	HTTPAddr string

	// LogLevel is the minimum log level (debug|info|warn|error).
	LogLevel string
}

// Load reads optional .env files and then the environment. Missing .env
// files are skipped; the environment always wins over file values.
func Load(envFiles ...string) Config {
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment. Unset or
// unparsable values fall back to defaults.
func FromEnv() Config {
	return Config{
		PrivateKeyPath: os.Getenv(EnvPrivateKeyPath),
		PublicKeyPath:  os.Getenv(EnvPublicKeyPath),
		TokenLifetime:  lifetimeFromEnv(),
		HTTPAddr:       stringFromEnv(EnvHTTPAddr, DefaultHTTPAddr),
		LogLevel:       stringFromEnv(EnvLogLevel, DefaultLogLevel),
	}
}

func lifetimeFromEnv() time.Duration {
	raw := os.Getenv(EnvTokenLifetime)
	if raw == "" {
		return DefaultTokenLifetime
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return DefaultTokenLifetime
	}
	return time.Duration(seconds) * time.Second
}

func stringFromEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
