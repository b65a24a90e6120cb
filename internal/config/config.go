// FilePath: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// Store drivers
const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config holds all configuration for the service
type Config struct {
	Server     ServerConfig
	Store      StoreConfig
	Redis      RedisConfig
	Database   DatabaseConfig
	Dispenser  DispenserConfig
	Auth       AuthConfig
	Monitoring MonitoringConfig
	CORS       CORSConfig
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type StoreConfig struct {
	Driver   string        `mapstructure:"driver"`
	BasePath string        `mapstructure:"base_path"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type RedisConfig struct {
	Host      string        `mapstructure:"host"`
	Port      int           `mapstructure:"port"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	MarkerTTL time.Duration `mapstructure:"marker_ttl"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type DispenserConfig struct {
	Timezone         string        `mapstructure:"timezone"`
	RotationsPerPill int           `mapstructure:"rotations_per_pill"`
	MatchWindow      time.Duration `mapstructure:"match_window"`
}

// Location resolves the configured target time zone
func (c DispenserConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

type AuthConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	BcryptCost int  `mapstructure:"bcrypt_cost"`
}

type MonitoringConfig struct {
	MetricsPath string `mapstructure:"metrics_path"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load initializes configuration from environment variables and ./config/config.yaml
func Load() (*Config, error) {
	return LoadFrom("./config")
}

// LoadFrom reads config.yaml from the given directories, if present
func LoadFrom(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PILLHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()

	// Set defaults
	setDefaults(v)

	// Load config file if exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Store defaults
	v.SetDefault("store.driver", DriverFile)
	v.SetDefault("store.base_path", "./data")
	v.SetDefault("store.timeout", "5s")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "pillhub")
	v.SetDefault("redis.marker_ttl", "48h")

	// Database defaults
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.sslmode", "disable")

	// Dispenser defaults
	v.SetDefault("dispenser.timezone", "UTC")
	v.SetDefault("dispenser.rotations_per_pill", 1)
	v.SetDefault("dispenser.match_window", "0s")

	// Auth defaults
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.bcrypt_cost", 10)

	// Monitoring defaults
	v.SetDefault("monitoring.metrics_path", "/metrics")

	// CORS defaults
	v.SetDefault("cors.allowed_origins", []string{"*"})
}

func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", config.Server.Port)
	}

	switch config.Store.Driver {
	case DriverFile:
		if config.Store.BasePath == "" {
			return fmt.Errorf("store base_path is required for the file driver")
		}
	case DriverMemory:
	case DriverRedis:
		if config.Redis.Host == "" {
			return fmt.Errorf("redis host is required for the redis driver")
		}
	case DriverPostgres:
		if config.Database.Postgres.Host == "" {
			return fmt.Errorf("postgres host is required for the postgres driver")
		}
		if config.Database.Postgres.DBName == "" {
			return fmt.Errorf("postgres dbname is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", config.Store.Driver)
	}

	if _, err := config.Dispenser.Location(); err != nil {
		return fmt.Errorf("invalid dispenser timezone %q: %w", config.Dispenser.Timezone, err)
	}
	if config.Dispenser.RotationsPerPill <= 0 {
		return fmt.Errorf("dispenser rotations_per_pill must be positive")
	}
	if config.Dispenser.MatchWindow < 0 || config.Dispenser.MatchWindow >= 24*time.Hour {
		return fmt.Errorf("dispenser match_window must be within [0, 24h)")
	}
	if config.Auth.BcryptCost < 4 || config.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth bcrypt_cost must be between 4 and 31")
	}
	if !strings.HasPrefix(config.Monitoring.MetricsPath, "/") {
		return fmt.Errorf("monitoring metrics_path must start with /")
	}
	return nil
}
