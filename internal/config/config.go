package config

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// DBConfig holds the database connection parameters.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Port     int    `mapstructure:"port"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`
	// Path is the database file when the snapshot backend is sqlite.
	Path string `mapstructure:"path"`
}

// LoggerConfig holds the logging configuration.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`  // e.g., "debug", "info", "warn", "error"
	Format     string `mapstructure:"format"` // "text" or "json"
	FilePath   string `mapstructure:"path"`   // e.g., "logs/mpc-coordinator.log"
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SnapshotConfig selects where the store is dumped to and reloaded from.
type SnapshotConfig struct {
	Backend        string        `mapstructure:"backend"` // none, file, postgres, sqlite
	Path           string        `mapstructure:"path"`
	Interval       time.Duration `mapstructure:"interval"`
	RestoreOnStart bool          `mapstructure:"restore_on_start"`
	Retain         int           `mapstructure:"retain"`
}

// RateLimitConfig bounds requests per second per client address. Zero disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

// Config holds the application's configuration values.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Snapshot  SnapshotConfig  `mapstructure:"snapshot"`
	Database  DBConfig        `mapstructure:"database"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

const (
	BackendNone     = "none"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// setDefaults registers every key. AutomaticEnv only overrides keys viper
// already knows, so a key missing here cannot be set from the environment.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")
	v.SetDefault("logger.path", "")
	v.SetDefault("logger.compress", false)
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
	v.SetDefault("snapshot.backend", BackendNone)
	v.SetDefault("snapshot.path", "mpc-coordinator.snapshot")
	v.SetDefault("snapshot.retain", 5)
	v.SetDefault("snapshot.interval", time.Duration(0))
	v.SetDefault("snapshot.restore_on_start", false)
	v.SetDefault("rate_limit.requests_per_second", 0.0)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "mpc_coordinator")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.path", "mpc-coordinator.db")
}

// LoadConfig reads the configuration from a file and returns a Config struct.
// An empty path or a missing file yields the defaults; MPC_* environment
// variables override both (e.g. MPC_SERVER_ADDRESS).
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("MPC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !isNotExist(err) {
				return nil, errors.Wrapf(err, "reading config %s", path)
			}
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	switch c.Snapshot.Backend {
	case BackendNone, BackendFile, BackendPostgres, BackendSQLite:
	default:
		return errors.Errorf("unknown snapshot backend %q", c.Snapshot.Backend)
	}
	if c.Snapshot.Interval < 0 {
		return errors.New("snapshot interval must not be negative")
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		return errors.New("rate limit must not be negative")
	}
	return nil
}

func isNotExist(err error) bool {
	return os.IsNotExist(errors.Cause(err))
}
