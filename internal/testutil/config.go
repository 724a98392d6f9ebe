package testutil

import (
	"time"

	"github.com/ethpandaops/raid-crawler/internal/config"
)

// NewTestConfig returns a minimal valid config for testing.
func NewTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "localhost",
			Port:            8080,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			ShutdownTimeout: time.Second,
			LogLevel:        "info",
		},
		Session: config.SessionConfig{
			Name:    "test-switch",
			Address: "127.0.0.1:6000",
		},
		Filters: config.FiltersConfig{
			Path: "filters.yaml",
		},
	}
}
