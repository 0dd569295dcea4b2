package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"ratereminder/adapters/redis"
	"ratereminder/adapters/sqlx"
	"ratereminder/core"
)

// Environment represents the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds the complete host configuration
type Config struct {
	// Environment and profile settings
	Environment Environment `json:"environment" koanf:"environment" env:"RATEREMINDER_ENV"`
	Profile     string      `json:"profile" koanf:"profile" env:"RATEREMINDER_PROFILE"`

	// Application identity and installed version
	App AppConfig `json:"app" koanf:"app"`

	// Reminder thresholds, prompt texts and feedback settings
	Reminder core.ReminderConfig `json:"reminder" koanf:"reminder"`

	// Storage configuration
	Storage StorageConfig `json:"storage" koanf:"storage"`

	// Event dispatch
	Events EventsConfig `json:"events" koanf:"events"`

	// Terminal prompt rendering
	Terminal TerminalConfig `json:"terminal" koanf:"terminal"`

	// Logging configuration
	Logging LoggingConfig `json:"logging" koanf:"logging"`
}

// AppConfig identifies the application being reminded about. Version is used when
// the binary carries no release version; Container names the settings container
// holding the reminder record.
type AppConfig struct {
	Identity  core.AppIdentity `json:"identity" koanf:"identity"`
	Version   string           `json:"version" koanf:"version" env:"RATEREMINDER_APP_VERSION"`
	Container string           `json:"container" koanf:"container" env:"RATEREMINDER_CONTAINER"`
}

// StorageConfig holds storage adapter configuration
type StorageConfig struct {
	Adapter string       `json:"adapter" koanf:"adapter" env:"RATEREMINDER_STORAGE_ADAPTER"`
	Redis   redis.Config `json:"redis,omitempty" koanf:"redis"`
	SQL     sqlx.Config  `json:"sql,omitempty" koanf:"sql"`
	File    FileConfig   `json:"file,omitempty" koanf:"file"`
}

// FileConfig holds JSON file storage configuration
type FileConfig struct {
	Path string `json:"path" koanf:"path" env:"RATEREMINDER_STORAGE_FILE_PATH"`
}

// EventsConfig selects how reminder events reach subscribers.
type EventsConfig struct {
	Dispatch string `json:"dispatch" koanf:"dispatch" env:"RATEREMINDER_EVENTS_DISPATCH"`
	Log      bool   `json:"log" koanf:"log" env:"RATEREMINDER_EVENTS_LOG"`
}

// TerminalConfig controls the terminal presenter.
type TerminalConfig struct {
	Color bool `json:"color" koanf:"color" env:"RATEREMINDER_TERMINAL_COLOR"`
	Width int  `json:"width" koanf:"width" env:"RATEREMINDER_TERMINAL_WIDTH"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string            `json:"level" koanf:"level" env:"RATEREMINDER_LOG_LEVEL"`
	Format     string            `json:"format" koanf:"format" env:"RATEREMINDER_LOG_FORMAT"`
	Output     string            `json:"output" koanf:"output" env:"RATEREMINDER_LOG_OUTPUT"`
	Attributes map[string]string `json:"attributes,omitempty" koanf:"attributes" env:"RATEREMINDER_LOG_ATTRIBUTES"`
}

// Load loads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

var configExtensions = []string{".json", ".yaml", ".yml"}

// validateConfigPath validates that the config file path is safe
func validateConfigPath(path string) error {
	if path == "" {
		return errors.New("config file path cannot be empty")
	}

	cleanPath := filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(cleanPath))
	supported := false
	for _, e := range configExtensions {
		if ext == e {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("config file must have one of the extensions: %s", strings.Join(configExtensions, ", "))
	}

	if _, err := os.Stat(cleanPath); err != nil {
		return fmt.Errorf("config file not accessible: %w", err)
	}

	return nil
}

// LoadFromFile loads configuration from a JSON or YAML file. Values absent from the
// file keep their defaults; environment variables override both.
func LoadFromFile(path string) (*Config, error) {
	if err := validateConfigPath(path); err != nil {
		return nil, fmt.Errorf("invalid config file path: %w", err)
	}

	k := koanf.New(".")
	// YAML is a superset of JSON, so one parser serves every accepted extension.
	if err := k.Load(file.Provider(filepath.Clean(path)), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if name := k.String("profile"); name != "" {
		if err := applyProfile(cfg, name); err != nil {
			return nil, err
		}
	}
	if err := unmarshalOnto(k, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	// Environment variables override file values
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func unmarshalOnto(k *koanf.Koanf, cfg *Config) error {
	return k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"})
}

// DefaultConfig returns a configuration with sensible defaults for development
func DefaultConfig() *Config {
	return &Config{
		Environment: EnvDevelopment,
		Profile:     "default",
		App: AppConfig{
			Container: "UniversalRateReminder",
		},
		Reminder: core.DefaultReminderConfig(),
		Storage: StorageConfig{
			Adapter: "memory",
			Redis:   redis.DefaultConfig(),
			SQL:     sqlx.DefaultConfig(sqlx.DriverSQLite),
			File: FileConfig{
				Path: "./data/ratereminder.json",
			},
		},
		Events: EventsConfig{
			Dispatch: "sync",
		},
		Terminal: TerminalConfig{
			Color: true,
			Width: 64,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Validate validates the configuration and returns detailed error messages
func (c *Config) Validate() error {
	var errs []string

	if c.Environment == "" {
		errs = append(errs, "environment cannot be empty")
	}

	if err := c.App.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("app config: %v", err))
	}

	if err := validateReminder(c.Reminder); err != nil {
		errs = append(errs, fmt.Sprintf("reminder config: %v", err))
	}

	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("storage config: %v", err))
	}

	if err := c.Events.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("events config: %v", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// String returns a JSON representation of the config (with secrets redacted)
func (c *Config) String() string {
	cfg := *c

	if cfg.Storage.SQL.DSN != "" {
		cfg.Storage.SQL.DSN = "[REDACTED]"
	}
	if cfg.Storage.Redis.Password != "" {
		cfg.Storage.Redis.Password = "[REDACTED]"
	}

	data, _ := json.MarshalIndent(cfg, "", "  ")
	return string(data)
}
