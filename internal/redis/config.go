package redis

import "time"

// Config holds Redis client configuration. An empty Address disables Redis.
type Config struct {
	Address      string
	Password     string //nolint:gosec // Config field, not a hardcoded secret.
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
}

// Enabled reports whether a Redis address is configured.
func (c Config) Enabled() bool {
	return c.Address != ""
}
