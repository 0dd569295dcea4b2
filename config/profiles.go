package config

import (
	"fmt"
	"sort"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

// profiles are layered over DefaultConfig. Keys use koanf dot notation.
var profiles = map[string]map[string]interface{}{
	"development": {
		"environment":     string(EnvDevelopment),
		"logging.level":   "debug",
		"logging.format":  "text",
		"storage.adapter": "file",
		"events.log":      true,
	},
	"testing": {
		"environment":               string(EnvTesting),
		"logging.level":             "warn",
		"storage.adapter":           "memory",
		"reminder.launch_threshold": 2,
		"terminal.color":            false,
	},
	"staging": {
		"environment":     string(EnvStaging),
		"logging.format":  "json",
		"storage.adapter": "sql",
		"storage.sql.dsn": "./data/ratereminder-staging.db",
		"events.dispatch": "async",
	},
	"production": {
		"environment":     string(EnvProduction),
		"logging.level":   "warn",
		"logging.format":  "json",
		"storage.adapter": "sql",
		"events.dispatch": "async",
	},
}

// Profiles lists the built-in profile names.
func Profiles() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadProfile returns the defaults with a built-in profile applied, then environment
// overrides, then validation.
func LoadProfile(name string) (*Config, error) {
	cfg := DefaultConfig()
	if err := applyProfile(cfg, name); err != nil {
		return nil, err
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func applyProfile(cfg *Config, name string) error {
	values, ok := profiles[name]
	if !ok {
		return fmt.Errorf("unknown profile %q (available: %v)", name, Profiles())
	}
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
		return fmt.Errorf("failed to load profile %s: %w", name, err)
	}
	if err := unmarshalOnto(k, cfg); err != nil {
		return fmt.Errorf("failed to apply profile %s: %w", name, err)
	}
	cfg.Profile = name
	return nil
}
