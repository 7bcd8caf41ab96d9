package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	BackendMemory   = "memory"
	BackendDisk     = "disk"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Host        string
	Port        int
	MetricsHost string `toml:"metrics_host"`
	MetricsPort int    `toml:"metrics_port"`
	Environment string
	// local calendar for day keys and streaks
	Timezone string
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// storage
	StorageBackend string `toml:"storage_backend"`
	DiskRootPath   string `toml:"disk_root_path"`
	RedisHost      string `toml:"redis_host"`
	RedisPort      string `toml:"redis_port"`
	RedisDB        int    `toml:"redis_db"`
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	CacheSizeMB    int    `toml:"cache_size_mb"`
	// http
	WriteRateLimitPerMinute int      `toml:"write_rate_limit_per_minute"`
	AllowedOrigins          []string `toml:"allowed_origins"`
	// backup reports from cmd/backup_cmd
	BackupUnixSocketAddrDir  string `toml:"backup_unix_socket_addr_dir"`
	BackupUnixSocketFileName string `toml:"backup_unix_socket_file_name"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the TOML file at path and returns the validated config table for env.
func Load(env, path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(env, string(content))
}

func Parse(env, content string) (*Config, error) {
	var t Toml
	if _, err := toml.Decode(content, &t); err != nil {
		return nil, fmt.Errorf("decode toml: %w", err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: no [%s] table", ErrInvalidConfig, env)
	}

	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.StorageBackend == "" {
		c.StorageBackend = BackendDisk
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.BackupUnixSocketFileName == "" {
		c.BackupUnixSocketFileName = "gymlog-backup.sock"
	}
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendMemory:
	case BackendDisk:
		if c.DiskRootPath == "" {
			return fmt.Errorf("%w: disk_root_path is required for the disk backend", ErrInvalidConfig)
		}
	case BackendRedis:
		if c.RedisHost == "" || c.RedisPort == "" {
			return fmt.Errorf("%w: redis_host and redis_port are required for the redis backend", ErrInvalidConfig)
		}
	case BackendPostgres:
		if c.PostgresHost == "" || c.PostgresPort == "" || c.PostgresDBName == "" {
			return fmt.Errorf("%w: postgres host, port and db name are required for the postgres backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage backend [%s]", ErrInvalidConfig, c.StorageBackend)
	}

	if c.Port <= 0 {
		return fmt.Errorf("%w: port must be positive", ErrInvalidConfig)
	}
	if c.CacheSizeMB < 0 {
		return fmt.Errorf("%w: cache_size_mb must not be negative", ErrInvalidConfig)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: timezone [%s]: %s", ErrInvalidConfig, c.Timezone, err)
	}

	return nil
}

// Location returns the configured local calendar zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func (c *Config) UsesRedis() bool {
	return c.RedisHost != "" && c.RedisPort != ""
}
