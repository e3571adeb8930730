// Package config loads the settings of the manufactory tooling from the
// environment, with an optional .env file.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the typed configuration shared by cmd/mfcheck and the examples.
type Config struct {
	Env              string // development | production
	LogLevel         string // debug | info | warn | error; empty means the env default
	DiagAddr         string
	MetricsNamespace string
}

// Load reads .env (if present) and populates a Config from environment variables.
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// .env is optional
	_ = godotenv.Load(files...)

	return &Config{
		Env:              env("MANUFACTORY_ENV", EnvDevelopment),
		LogLevel:         env("MANUFACTORY_LOG_LEVEL", ""),
		DiagAddr:         env("MANUFACTORY_DIAG_ADDR", ":8089"),
		MetricsNamespace: env("MANUFACTORY_METRICS_NAMESPACE", "manufactory"),
	}
}

// IsProduction reports whether Env selects production behaviour.
func (c *Config) IsProduction() bool { return c.Env == EnvProduction }

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
