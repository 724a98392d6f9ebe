package lease

import "time"

// KeyPrefix namespaces console lease keys.
const KeyPrefix = "raidcrawler:lease:"

// Config holds console lease configuration.
type Config struct {
	Console       string
	TTL           time.Duration
	RenewInterval time.Duration
}

// Key returns the redis key guarding the console.
func (c Config) Key() string {
	return KeyPrefix + c.Console
}
