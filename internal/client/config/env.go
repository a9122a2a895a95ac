package config

import (
	"os"
	"time"
)

func parseEnv(cfg *Config) {
	if v := os.Getenv("NOTESCTL_SERVER"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("NOTESCTL_SESSION_FILE"); v != "" {
		cfg.SessionFile = v
	}
	if d, err := time.ParseDuration(os.Getenv("NOTESCTL_TIMEOUT")); err == nil && d > 0 {
		cfg.RequestTimeout = d
	}
}
