// Package config loads service configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the runtime settings shared by the CLI commands. Flags may
// override individual fields after loading.
type Config struct {
	// Addr is the HTTP listen address for `serve`.
	Addr string `env:"CERTVET_ADDR" envDefault:":8080"`

	// DatabasePath is the SQLite report store location.
	DatabasePath string `env:"CERTVET_DB" envDefault:"certvet.db"`

	// Language is the Tesseract language code.
	Language string `env:"CERTVET_LANG" envDefault:"eng"`

	// WatchDir is the inbox directory for `watch`.
	WatchDir string `env:"CERTVET_WATCH_DIR"`

	// MaxUploadMB caps upload size for `serve`, in MiB.
	MaxUploadMB int64 `env:"CERTVET_MAX_UPLOAD_MB" envDefault:"16"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
