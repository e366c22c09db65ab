package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the API and the seeder need at startup.
// Values come from the optional YAML file first, then the environment overrides them.
type Config struct {
	AppName         string         `yaml:"app_name"`
	Port            string         `yaml:"port"`
	ShutdownTimeout time.Duration  `yaml:"shutdown_timeout"`
	MaxListLimit    int            `yaml:"max_list_limit"`
	Database        DatabaseConfig `yaml:"database"`
	Log             LogConfig      `yaml:"log"`
}

type DatabaseConfig struct {
	Driver      string `yaml:"driver"` // sqlite or mysql
	DSN         string `yaml:"dsn"`
	BusyTimeout int    `yaml:"busy_timeout"` // seconds, sqlite only
	Debug       bool   `yaml:"debug"`
}

type LogConfig struct {
	Level   string `yaml:"level"`
	Dir     string `yaml:"dir"`
	Console bool   `yaml:"console"`
}

func defaults() Config {
	return Config{
		AppName:         "id_collector_api",
		Port:            "8000",
		ShutdownTimeout: 10 * time.Second,
		MaxListLimit:    1000,
		Database: DatabaseConfig{
			Driver:      "sqlite",
			DSN:         "./device_ids.db",
			BusyTimeout: 5,
		},
		Log: LogConfig{
			Level:   "info",
			Dir:     "logs",
			Console: true,
		},
	}
}

// Load builds the configuration. CONFIG_FILE points to an optional YAML file.
func Load() (*Config, error) {
	cfg := defaults()

	if path := GetEnv("CONFIG_FILE", ""); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.AppName = GetEnv("APP_NAME", cfg.AppName)
	cfg.Port = GetEnv("APP_PORT", cfg.Port)
	cfg.ShutdownTimeout = GetEnvAsDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.MaxListLimit = GetEnvAsInt("MAX_LIST_LIMIT", cfg.MaxListLimit)

	cfg.Database.Driver = strings.ToLower(GetEnv("DB_DRIVER", cfg.Database.Driver))
	cfg.Database.DSN = GetEnv("DB_DSN", cfg.Database.DSN)
	cfg.Database.BusyTimeout = GetEnvAsInt("DB_BUSY_TIMEOUT", cfg.Database.BusyTimeout)
	cfg.Database.Debug = GetEnvAsBool("DB_DEBUG", cfg.Database.Debug)

	cfg.Log.Level = GetEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Dir = GetEnv("LOG_DIR", cfg.Log.Dir)
	cfg.Log.Console = GetEnvAsBool("LOG_CONSOLE", cfg.Log.Console)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("DB_DSN is required")
	}
	if c.MaxListLimit < 1 {
		return errors.New("MAX_LIST_LIMIT must be positive")
	}
	return nil
}

// Helper function to get environment variable with fallback default value
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Helper function to get environment variable as integer with fallback
func GetEnvAsInt(key string, fallback int) int {
	valueStr := GetEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func GetEnvAsBool(key string, fallback bool) bool {
	valueStr := GetEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

func GetEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := GetEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return fallback
}
