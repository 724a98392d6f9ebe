//nolint:tagliatelle // superior snake-case yo.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ethpandaops/raid-crawler/internal/lease"
	"github.com/ethpandaops/raid-crawler/internal/notify"
	"github.com/ethpandaops/raid-crawler/internal/publish"
	"github.com/ethpandaops/raid-crawler/internal/raid"
	"github.com/ethpandaops/raid-crawler/internal/redis"
	"github.com/ethpandaops/raid-crawler/internal/scan"
	"github.com/ethpandaops/raid-crawler/internal/search"
	"github.com/ethpandaops/raid-crawler/internal/sysbot"
)

// Config represents the complete application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Redis         RedisConfig         `yaml:"redis"`
	Lease         LeaseConfig         `yaml:"lease"`
	Session       SessionConfig       `yaml:"session"`
	Scan          ScanConfig          `yaml:"scan"`
	Search        SearchConfig        `yaml:"search"`
	Delivery      DeliveryConfig      `yaml:"delivery"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Filters       FiltersConfig       `yaml:"filters"`
	History       HistoryConfig       `yaml:"history"`
	Publish       PublishConfig       `yaml:"publish"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	Host            string        `yaml:"host"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	LogLevel        string        `yaml:"log_level"`
	AllowedOrigins  []string      `yaml:"allowed_origins"` // empty allows any origin
	MessageHistory  int           `yaml:"message_history"` // operator messages kept for /api/v1/messages
}

// RedisConfig holds Redis client configuration. Redis is optional; without
// an address the console lease is process-local and nothing is published.
type RedisConfig struct {
	Address      string        `yaml:"address"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	PoolSize     int           `yaml:"pool_size"`
}

// LeaseConfig holds console lease configuration.
type LeaseConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	RenewInterval time.Duration `yaml:"renew_interval"`
}

// SessionConfig describes the console and its sys-botbase link.
type SessionConfig struct {
	Name           string        `yaml:"name"`
	Address        string        `yaml:"address"`
	DialTimeout    time.Duration `yaml:"dial_timeout"`
	CommandTimeout time.Duration `yaml:"command_timeout"`
	MaxReadSize    int           `yaml:"max_read_size"`
	SaveBlockChain []int64       `yaml:"save_block_chain"`
	ButtonDelay    time.Duration `yaml:"button_delay"`
	SaveDelay      time.Duration `yaml:"save_delay"`
	StartGameDelay time.Duration `yaml:"start_game_delay"`
	SettleDelay    time.Duration `yaml:"settle_delay"`
}

// ScanConfig holds region scan settings.
type ScanConfig struct {
	Regions []raid.Region `yaml:"regions"`
	Boost   int           `yaml:"boost"`
	DumpDir string        `yaml:"dump_dir"`
}

// SearchConfig holds the initial search settings. They can be changed at
// runtime through the API.
type SearchConfig struct {
	ResetThreshold       int  `yaml:"reset_threshold"`
	FiltersEnabled       bool `yaml:"filters_enabled"`
	NotificationsEnabled bool `yaml:"notifications_enabled"`
	SaveOnMatch          bool `yaml:"save_on_match"`
	StopOnChange         bool `yaml:"stop_on_change"`
}

// DeliveryConfig holds the event table cache settings.
type DeliveryConfig struct {
	CacheDir string `yaml:"cache_dir"`
}

// NotificationsConfig holds webhook settings.
type NotificationsConfig struct {
	WebhookURLs   []string      `yaml:"webhook_urls"`
	Content       string        `yaml:"content"`
	SpriteBaseURL string        `yaml:"sprite_base_url"`
	Timeout       time.Duration `yaml:"timeout"`
}

// FiltersConfig points at the filter rules file.
type FiltersConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// HistoryConfig holds the search history database settings.
type HistoryConfig struct {
	Path string `yaml:"path"` // empty disables history
}

// PublishConfig holds redis state publishing settings.
type PublishConfig struct {
	TTL       time.Duration `yaml:"ttl"`
	QueueSize int           `yaml:"queue_size"`
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration and sets defaults.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if c.Redis.Address != "" {
		if c.Redis.DialTimeout == 0 {
			c.Redis.DialTimeout = 5 * time.Second
		}

		if c.Redis.PoolSize == 0 {
			c.Redis.PoolSize = 10
		}

		if c.Redis.PoolSize < 0 {
			return fmt.Errorf("redis.pool_size must be positive")
		}
	}

	if c.Lease.TTL == 0 {
		c.Lease.TTL = 30 * time.Second
	}

	if c.Lease.RenewInterval == 0 {
		c.Lease.RenewInterval = c.Lease.TTL / 3
	}

	if c.Lease.RenewInterval >= c.Lease.TTL {
		return fmt.Errorf("lease.renew_interval must be shorter than lease.ttl")
	}

	if c.Session.Name == "" {
		c.Session.Name = "switch"
	}

	sb := c.Sysbot()
	if err := sb.Validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}

	if len(c.Scan.Regions) == 0 {
		c.Scan.Regions = append([]raid.Region(nil), raid.Regions...)
	}

	for i, r := range c.Scan.Regions {
		if !r.Valid() {
			return fmt.Errorf("scan.regions[%d] is not a known region", i)
		}
	}

	if c.Scan.Boost < 0 {
		return fmt.Errorf("scan.boost must not be negative")
	}

	if c.Search.ResetThreshold < 0 {
		return fmt.Errorf("search.reset_threshold must not be negative")
	}

	if c.Delivery.CacheDir == "" {
		c.Delivery.CacheDir = "cache"
	}

	if c.Filters.Path == "" {
		return fmt.Errorf("filters.path is required")
	}

	if c.Publish.TTL == 0 {
		c.Publish.TTL = 10 * time.Minute
	}

	if c.Publish.QueueSize == 0 {
		c.Publish.QueueSize = 64
	}

	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("write_timeout must be positive")
	}

	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive")
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[c.Server.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}

	if c.Server.MessageHistory == 0 {
		c.Server.MessageHistory = 200
	}

	return nil
}

// RedisClient returns the redis client settings.
func (c *Config) RedisClient() redis.Config {
	return redis.Config{
		Address:      c.Redis.Address,
		Password:     c.Redis.Password,
		DB:           c.Redis.DB,
		DialTimeout:  c.Redis.DialTimeout,
		ReadTimeout:  c.Redis.ReadTimeout,
		WriteTimeout: c.Redis.WriteTimeout,
		PoolSize:     c.Redis.PoolSize,
	}
}

// LeaseSettings returns the console lease settings.
func (c *Config) LeaseSettings() lease.Config {
	return lease.Config{
		Console:       c.Session.Name,
		TTL:           c.Lease.TTL,
		RenewInterval: c.Lease.RenewInterval,
	}
}

// Sysbot returns the sys-botbase client settings.
func (c *Config) Sysbot() sysbot.Config {
	return sysbot.Config{
		Address:        c.Session.Address,
		DialTimeout:    c.Session.DialTimeout,
		CommandTimeout: c.Session.CommandTimeout,
		MaxReadSize:    c.Session.MaxReadSize,
		SaveBlockChain: c.Session.SaveBlockChain,
		ButtonDelay:    c.Session.ButtonDelay,
		SaveDelay:      c.Session.SaveDelay,
		StartGameDelay: c.Session.StartGameDelay,
		SettleDelay:    c.Session.SettleDelay,
	}
}

// ScanSettings returns the raid store settings.
func (c *Config) ScanSettings() scan.Config {
	return scan.Config{
		Regions: c.Scan.Regions,
		DumpDir: c.Scan.DumpDir,
	}
}

// SearchSettings returns the initial search settings.
func (c *Config) SearchSettings() search.Config {
	return search.Config{
		ResetThreshold:       c.Search.ResetThreshold,
		FiltersEnabled:       c.Search.FiltersEnabled,
		NotificationsEnabled: c.Search.NotificationsEnabled,
		SaveOnMatch:          c.Search.SaveOnMatch,
		StopOnChange:         c.Search.StopOnChange,
	}
}

// Webhook returns the webhook sink settings.
func (c *Config) Webhook() notify.WebhookConfig {
	return notify.WebhookConfig{
		URLs:          c.Notifications.WebhookURLs,
		Content:       c.Notifications.Content,
		SpriteBaseURL: c.Notifications.SpriteBaseURL,
		Timeout:       c.Notifications.Timeout,
	}
}

// PublishSettings returns the state publisher settings.
func (c *Config) PublishSettings() publish.Config {
	return publish.Config{
		Console:   c.Session.Name,
		TTL:       c.Publish.TTL,
		QueueSize: c.Publish.QueueSize,
	}
}
