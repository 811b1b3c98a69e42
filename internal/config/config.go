// Package config loads application configuration from the environment.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings for the annotator.
type Config struct {
	APIBaseURL string
	APIToken   string
}

// Load reads configuration from a .env file (if present) and the process
// environment.
func Load() (*Config, error) {
	// Missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL: os.Getenv("SCANS_API_URL"),
		APIToken:   os.Getenv("SCANS_API_TOKEN"),
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://localhost:8000"
	}
	return cfg, nil
}
