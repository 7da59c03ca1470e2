// Package config layers server defaults with environment variables and
// loads YAML guard-policy documents. It does not read CLI flags.
package config

import "os"

// Config holds the kernel's runtime defaults: storage backing, undo depth,
// and the default brief parameters.
type Config struct {
	LogLevel        string
	PostgresDSN     string
	RedisAddr       string
	SnapshotDBPath  string
	UndoCap         int
	DefaultKDone    int
	DefaultKNext    int
	DefaultTokenCap int
}

// Load reads configuration from environment variables, falling back to
// in-process defaults suited to local development.
func Load() *Config {
	return &Config{
		LogLevel:        envOr("PLANKERNEL_LOG_LEVEL", "INFO"),
		PostgresDSN:     envOr("PLANKERNEL_POSTGRES_DSN", "postgres://plankernel@localhost:5432/plankernel?sslmode=disable"),
		RedisAddr:       envOr("PLANKERNEL_REDIS_ADDR", "localhost:6379"),
		SnapshotDBPath:  envOr("PLANKERNEL_SNAPSHOT_DB", "./planctl-snapshots.db"),
		UndoCap:         64,
		DefaultKDone:    3,
		DefaultKNext:    3,
		DefaultTokenCap: 200,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
