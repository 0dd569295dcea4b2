package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"ratereminder/core"
)

// Validate validates the application settings
func (a *AppConfig) Validate() error {
	if strings.TrimSpace(a.Container) == "" {
		return errors.New("container cannot be empty")
	}
	if a.Version != "" {
		if _, err := core.NormalizeVersion(a.Version); err != nil {
			return fmt.Errorf("version: %w", err)
		}
	}
	return nil
}

// validateReminder rejects settings that are wrong regardless of which flow runs.
// Blank contact email and subject are reported by the controller when the user
// actually asks to send feedback.
func validateReminder(r core.ReminderConfig) error {
	var errs []string

	if r.LaunchThreshold < 0 {
		errs = append(errs, "launch_threshold cannot be negative")
	}

	if _, err := r.RenderFeedbackBody(core.FeedbackBodyData{}); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

var validAdapters = []string{"memory", "file", "redis", "sql"}

// Validate validates storage configuration
func (s *StorageConfig) Validate() error {
	var errs []string

	if !slices.Contains(validAdapters, s.Adapter) {
		errs = append(errs, fmt.Sprintf("adapter must be one of: %s", strings.Join(validAdapters, ", ")))
	}

	// Validate adapter-specific configs
	switch s.Adapter {
	case "file":
		if err := s.File.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("file config: %v", err))
		}
	case "redis":
		if s.Redis.Addr == "" {
			errs = append(errs, "redis config: addr cannot be empty")
		}
	case "sql":
		if err := s.SQL.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("sql config: %v", err))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// Validate validates file storage configuration
func (f *FileConfig) Validate() error {
	if f.Path == "" {
		return errors.New("path cannot be empty")
	}
	return nil
}

// Validate validates the event dispatch mode
func (e *EventsConfig) Validate() error {
	if e.Dispatch != "sync" && e.Dispatch != "async" {
		return errors.New("dispatch must be one of: sync, async")
	}
	return nil
}

var (
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"json", "text"}
	validOutputs = []string{"stdout", "stderr"}
)

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	var errs []string

	if !slices.Contains(validLevels, l.Level) {
		errs = append(errs, fmt.Sprintf("level must be one of: %s", strings.Join(validLevels, ", ")))
	}

	if !slices.Contains(validFormats, l.Format) {
		errs = append(errs, fmt.Sprintf("format must be one of: %s", strings.Join(validFormats, ", ")))
	}

	// stdout is shared with the terminal prompt, so it is allowed but not the default
	if !slices.Contains(validOutputs, l.Output) {
		errs = append(errs, fmt.Sprintf("output must be one of: %s", strings.Join(validOutputs, ", ")))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}
