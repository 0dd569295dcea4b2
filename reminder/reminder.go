// Package reminder assembles a ready-to-use rate reminder from pluggable parts.
package reminder

import (
	"context"
	"log/slog"

	"ratereminder/adapters/launcher"
	mem "ratereminder/adapters/memory"
	"ratereminder/adapters/terminal"
	"ratereminder/adapters/version"
	"ratereminder/core"
	"ratereminder/engine"
)

// FormFactorEnv is read by the default platform to decide between phone and desktop
// store links.
const FormFactorEnv = "RATEREMINDER_FORM_FACTOR"

// Option configures the reminder builder.
type Option func(*config)

type subscription struct {
	typ     core.EventType
	handler func(context.Context, core.Event)
}

type config struct {
	backend   engine.Backend
	container string
	presenter engine.Presenter
	platform  engine.Platform
	mailer    engine.Mailer
	versions  engine.VersionProvider
	app       core.AppIdentity
	mode      engine.DispatchMode
	logger    *slog.Logger
	subs      []subscription
}

// WithBackend sets the persistence adapter.
func WithBackend(b engine.Backend) Option { return func(c *config) { c.backend = b } }

// WithContainer stores the record under a non-default container name.
func WithContainer(name string) Option { return func(c *config) { c.container = name } }

// WithPresenter sets the dialog implementation.
func WithPresenter(p engine.Presenter) Option { return func(c *config) { c.presenter = p } }

// WithPlatform sets the store launcher and form factor probe.
func WithPlatform(p engine.Platform) Option { return func(c *config) { c.platform = p } }

// WithMailer sets the feedback mail composer.
func WithMailer(m engine.Mailer) Option { return func(c *config) { c.mailer = m } }

// WithVersionProvider sets where CheckLaunch reads the installed version.
func WithVersionProvider(v engine.VersionProvider) Option {
	return func(c *config) { c.versions = v }
}

// WithAppIdentity sets the store identity of the application.
func WithAppIdentity(app core.AppIdentity) Option { return func(c *config) { c.app = app } }

// WithDispatchMode selects sync or async event dispatch.
func WithDispatchMode(m engine.DispatchMode) Option { return func(c *config) { c.mode = m } }

// WithLogger sets the logger shared by the store and controller.
func WithLogger(l *slog.Logger) Option { return func(c *config) { c.logger = l } }

// OnEvent subscribes handler to one event type.
func OnEvent(typ core.EventType, handler func(context.Context, core.Event)) Option {
	return func(c *config) { c.subs = append(c.subs, subscription{typ: typ, handler: handler}) }
}

// OnAnyEvent subscribes handler to every event.
func OnAnyEvent(handler func(context.Context, core.Event)) Option {
	return OnEvent("", handler)
}

// Reminder is a controller bundled with the event bus it publishes on.
type Reminder struct {
	*engine.Controller
	Bus *engine.EventBus
}

// New builds a Reminder. If not provided, defaults are used:
//   - backend: in-memory
//   - presenter: terminal prompt on stdin/stdout
//   - platform and mailer: OS URI handler, form factor from FormFactorEnv
//   - versions: module version from build info
//   - dispatch: sync
func New(opts ...Option) *Reminder {
	cfg := &config{mode: engine.DispatchSync, logger: slog.Default()}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.backend == nil {
		cfg.backend = mem.New()
	}
	if cfg.presenter == nil {
		cfg.presenter = terminal.New()
	}
	if cfg.platform == nil {
		cfg.platform = launcher.NewPlatform(launcher.SystemOpener(),
			launcher.WithPhoneDetector(launcher.FormFactorFromEnv(FormFactorEnv)),
			launcher.WithLogger(cfg.logger))
	}
	if cfg.mailer == nil {
		cfg.mailer = launcher.NewMailer(launcher.SystemOpener())
	}
	if cfg.versions == nil {
		cfg.versions = version.FromBuildInfo("")
	}

	bus := engine.NewEventBus(cfg.mode)
	for _, s := range cfg.subs {
		bus.Subscribe(s.typ, s.handler)
	}
	store := engine.NewStateStore(cfg.backend,
		engine.WithContainer(cfg.container),
		engine.WithStoreLogger(cfg.logger))
	ctrl := engine.NewController(store, cfg.presenter,
		engine.WithPlatform(cfg.platform),
		engine.WithMailer(cfg.mailer),
		engine.WithVersionProvider(cfg.versions),
		engine.WithAppIdentity(cfg.app),
		engine.WithEventBus(bus),
		engine.WithLogger(cfg.logger))
	return &Reminder{Controller: ctrl, Bus: bus}
}

// Close drains pending async events.
func (r *Reminder) Close() { r.Bus.Close() }
