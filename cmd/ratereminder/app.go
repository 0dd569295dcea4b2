package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"ratereminder/adapters/jsonfile"
	"ratereminder/adapters/launcher"
	mem "ratereminder/adapters/memory"
	redisAdapter "ratereminder/adapters/redis"
	sqlxAdapter "ratereminder/adapters/sqlx"
	"ratereminder/adapters/terminal"
	appversion "ratereminder/adapters/version"
	"ratereminder/config"
	"ratereminder/core"
	"ratereminder/engine"
	"ratereminder/reminder"
)

// Options are the command line inputs that shape the assembled App.
type Options struct {
	ConfigPath string
	Profile    string
	// BuildVersion is the version stamped into the binary with -ldflags.
	BuildVersion string
}

// App aggregates the assembled reminder components.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Backend  engine.Backend
	Platform engine.Platform
	Reminder *reminder.Reminder
}

func provideConfig(opts Options) (*config.Config, error) {
	switch {
	case opts.ConfigPath != "":
		return config.LoadFromFile(opts.ConfigPath)
	case opts.Profile != "":
		return config.LoadProfile(opts.Profile)
	default:
		return config.Load()
	}
}

func provideLogger(cfg *config.Config) *slog.Logger {
	return setupLogging(cfg)
}

func provideBackend(ctx context.Context, cfg *config.Config) (engine.Backend, func(), error) {
	return setupStorage(ctx, cfg)
}

func providePresenter(cfg *config.Config) (*terminal.Presenter, func()) {
	p := terminal.New(terminal.WithColor(cfg.Terminal.Color), terminal.WithWidth(cfg.Terminal.Width))
	return p, func() { _ = p.Close() }
}

func providePlatform(logger *slog.Logger) engine.Platform {
	return launcher.NewPlatform(launcher.SystemOpener(),
		launcher.WithPhoneDetector(launcher.FormFactorFromEnv(reminder.FormFactorEnv)),
		launcher.WithLogger(logger))
}

// provideVersions prefers the stamped release version. Unstamped binaries read the
// module version from build info and fall back to app.version.
func provideVersions(opts Options, cfg *config.Config) engine.VersionProvider {
	if _, err := core.NormalizeVersion(opts.BuildVersion); err == nil {
		return appversion.Static(opts.BuildVersion)
	}
	return appversion.FromBuildInfo(cfg.App.Version)
}

func provideReminder(cfg *config.Config, logger *slog.Logger, backend engine.Backend, presenter *terminal.Presenter, platform engine.Platform, versions engine.VersionProvider) (*reminder.Reminder, func()) {
	opts := []reminder.Option{
		reminder.WithBackend(backend),
		reminder.WithContainer(cfg.App.Container),
		reminder.WithPresenter(presenter),
		reminder.WithPlatform(platform),
		reminder.WithMailer(launcher.NewMailer(launcher.SystemOpener())),
		reminder.WithVersionProvider(versions),
		reminder.WithAppIdentity(cfg.App.Identity),
		reminder.WithDispatchMode(parseDispatchMode(cfg.Events.Dispatch)),
		reminder.WithLogger(logger),
	}
	if cfg.Events.Log {
		opts = append(opts, reminder.OnAnyEvent(func(ctx context.Context, e core.Event) {
			logger.InfoContext(ctx, "reminder event",
				"type", e.Type,
				"launch_count", e.LaunchCount,
				"version", e.Version,
				"outcome", e.Outcome)
		}))
	}
	r := reminder.New(opts...)
	return r, r.Close
}

// setupLogging configures the logger based on configuration.
func setupLogging(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	var out io.Writer = os.Stderr
	if cfg.Logging.Output == "stdout" {
		out = os.Stdout
	}

	switch cfg.Logging.Format {
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	default:
		handler = slog.NewTextHandler(out, opts)
	}

	if len(cfg.Logging.Attributes) > 0 {
		handler = handler.WithAttrs(convertAttributes(cfg.Logging.Attributes))
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseDispatchMode(mode string) engine.DispatchMode {
	if mode == "async" {
		return engine.DispatchAsync
	}
	return engine.DispatchSync
}

// convertAttributes converts map[string]string to []slog.Attr.
func convertAttributes(attrs map[string]string) []slog.Attr {
	var result []slog.Attr
	for k, v := range attrs {
		result = append(result, slog.String(k, v))
	}
	return result
}

// setupStorage creates the storage adapter selected by configuration. The returned
// cleanup releases connections.
func setupStorage(_ context.Context, cfg *config.Config) (engine.Backend, func(), error) {
	noop := func() {}
	switch cfg.Storage.Adapter {
	case "memory":
		return mem.New(), noop, nil
	case "file":
		s, err := jsonfile.New(cfg.Storage.File.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case "redis":
		s, err := redisAdapter.New(cfg.Storage.Redis)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case "sql":
		s, err := sqlxAdapter.New(cfg.Storage.SQL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage adapter: %s", cfg.Storage.Adapter)
	}
}
