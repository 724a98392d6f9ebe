package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/raid-crawler/internal/raid"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			ShutdownTimeout: 5 * time.Second,
			LogLevel:        "info",
		},
		Session: SessionConfig{
			Address: "192.168.1.50:6000",
		},
		Filters: FiltersConfig{
			Path: "filters.yaml",
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(c *Config)
		expectError bool
		errorMsg    string
	}{
		{
			name: "valid config",
		},
		{
			name:        "invalid port negative",
			modify:      func(c *Config) { c.Server.Port = -1 },
			expectError: true,
			errorMsg:    "invalid server port",
		},
		{
			name:        "invalid port too high",
			modify:      func(c *Config) { c.Server.Port = 70000 },
			expectError: true,
			errorMsg:    "invalid server port",
		},
		{
			name:        "empty host",
			modify:      func(c *Config) { c.Server.Host = "" },
			expectError: true,
			errorMsg:    "server host cannot be empty",
		},
		{
			name:        "zero shutdown timeout",
			modify:      func(c *Config) { c.Server.ShutdownTimeout = 0 },
			expectError: true,
			errorMsg:    "shutdown_timeout must be positive",
		},
		{
			name:        "invalid log level",
			modify:      func(c *Config) { c.Server.LogLevel = "verbose" },
			expectError: true,
			errorMsg:    "invalid log level",
		},
		{
			name:        "missing console address",
			modify:      func(c *Config) { c.Session.Address = "" },
			expectError: true,
			errorMsg:    "session: address is required",
		},
		{
			name:        "tiny read size",
			modify:      func(c *Config) { c.Session.MaxReadSize = 16 },
			expectError: true,
			errorMsg:    "max_read_size",
		},
		{
			name:        "renew interval not shorter than ttl",
			modify:      func(c *Config) { c.Lease = LeaseConfig{TTL: 10 * time.Second, RenewInterval: 10 * time.Second} },
			expectError: true,
			errorMsg:    "lease.renew_interval",
		},
		{
			name:        "unknown region",
			modify:      func(c *Config) { c.Scan.Regions = []raid.Region{raid.Region(9)} },
			expectError: true,
			errorMsg:    "scan.regions[0]",
		},
		{
			name:        "negative boost",
			modify:      func(c *Config) { c.Scan.Boost = -1 },
			expectError: true,
			errorMsg:    "scan.boost",
		},
		{
			name:        "negative reset threshold",
			modify:      func(c *Config) { c.Search.ResetThreshold = -3 },
			expectError: true,
			errorMsg:    "search.reset_threshold",
		},
		{
			name:        "missing filters path",
			modify:      func(c *Config) { c.Filters.Path = "" },
			expectError: true,
			errorMsg:    "filters.path is required",
		},
		{
			name:        "negative redis pool",
			modify:      func(c *Config) { c.Redis = RedisConfig{Address: "localhost:6379", PoolSize: -1} },
			expectError: true,
			errorMsg:    "redis.pool_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			if tt.modify != nil {
				tt.modify(cfg)
			}

			err := cfg.Validate()

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestConfig_ValidateDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.Redis.Address = "localhost:6379"

	require.NoError(t, cfg.Validate())

	assert.Equal(t, "switch", cfg.Session.Name)
	assert.Equal(t, raid.Regions, cfg.Scan.Regions)
	assert.Equal(t, 30*time.Second, cfg.Lease.TTL)
	assert.Equal(t, 10*time.Second, cfg.Lease.RenewInterval)
	assert.Equal(t, 5*time.Second, cfg.Redis.DialTimeout)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.Equal(t, "cache", cfg.Delivery.CacheDir)
	assert.Equal(t, 200, cfg.Server.MessageHistory)
	assert.Equal(t, 64, cfg.Publish.QueueSize)

	lc := cfg.LeaseSettings()
	assert.Equal(t, "raidcrawler:lease:switch", lc.Key())

	pc := cfg.PublishSettings()
	assert.Equal(t, "raidcrawler:switch:stats", pc.StatsKey())

	sb := cfg.Sysbot()
	assert.Equal(t, "192.168.1.50:6000", sb.Address)
}

func TestConfig_RedisOptional(t *testing.T) {
	cfg := validConfig()

	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.RedisClient().Enabled())
	assert.Zero(t, cfg.Redis.PoolSize)
}

func TestConfig_Load(t *testing.T) {
	tests := []struct {
		name        string
		yamlContent string
		expectError bool
		errorMsg    string
		validate    func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid YAML config",
			yamlContent: `
server:
  host: localhost
  port: 8080
  read_timeout: 30s
  write_timeout: 30s
  shutdown_timeout: 5s
  log_level: info
redis:
  address: localhost:6379
session:
  name: living-room
  address: 192.168.1.50:6000
  command_timeout: 15s
scan:
  regions: [paldea, blueberry]
  boost: 2
search:
  reset_threshold: 25
  filters_enabled: true
  save_on_match: true
notifications:
  webhook_urls:
    - https://discord.example/api/webhooks/1/abc
filters:
  path: filters.yaml
  watch: true
history:
  path: history.db
`,
			validate: func(t *testing.T, cfg *Config) {
				t.Helper()

				require.NoError(t, cfg.Validate())

				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "living-room", cfg.Session.Name)
				assert.Equal(t, 15*time.Second, cfg.Session.CommandTimeout)
				assert.Equal(t, []raid.Region{raid.Paldea, raid.Blueberry}, cfg.Scan.Regions)
				assert.Equal(t, 2, cfg.Scan.Boost)

				sc := cfg.SearchSettings()
				assert.Equal(t, 25, sc.ResetThreshold)
				assert.True(t, sc.FiltersEnabled)
				assert.True(t, sc.SaveOnMatch)
				assert.False(t, sc.NotificationsEnabled)

				assert.Len(t, cfg.Webhook().URLs, 1)
				assert.True(t, cfg.Filters.Watch)
				assert.Equal(t, "history.db", cfg.History.Path)
				assert.True(t, cfg.RedisClient().Enabled())
			},
		},
		{
			name: "unknown region name",
			yamlContent: `
scan:
  regions: [hoenn]
`,
			expectError: true,
			errorMsg:    "unknown region",
		},
		{
			name:        "invalid YAML syntax",
			yamlContent: "invalid: yaml: content:",
			expectError: true,
			errorMsg:    "failed to parse config",
		},
		{
			name:        "empty file",
			yamlContent: "",
			validate: func(t *testing.T, cfg *Config) {
				t.Helper()

				// Empty file loads but config won't validate
				assert.NotNil(t, cfg)
				assert.Error(t, cfg.Validate())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.yaml")

			err := os.WriteFile(configPath, []byte(tt.yamlContent), 0600)
			require.NoError(t, err)

			cfg, err := Load(configPath)

			if tt.expectError {
				require.Error(t, err)

				if tt.errorMsg != "" {
					assert.Contains(t, err.Error(), tt.errorMsg)
				}

				return
			}

			require.NoError(t, err)

			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestConfig_Load_NonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
