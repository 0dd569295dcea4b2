package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"ratereminder/core"
)

// Controller decides on each launch whether to ask for a rating or for feedback.
// Flows are serialized: at most one prompt sequence runs per controller.
type Controller struct {
	store     *StateStore
	presenter Presenter
	platform  Platform
	mailer    Mailer
	versions  VersionProvider
	app       core.AppIdentity
	bus       *EventBus
	logger    *slog.Logger

	mu sync.Mutex
	// pending holds events raised while mu is held.
	pending []core.Event
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithPlatform sets the platform used by CheckLaunch.
func WithPlatform(p Platform) ControllerOption { return func(c *Controller) { c.platform = p } }

// WithMailer sets the mail composer used by the feedback flow.
func WithMailer(m Mailer) ControllerOption { return func(c *Controller) { c.mailer = m } }

// WithVersionProvider sets the source of the installed version used by CheckLaunch.
func WithVersionProvider(v VersionProvider) ControllerOption {
	return func(c *Controller) { c.versions = v }
}

// WithAppIdentity sets the store identity passed to the platform on "rate".
func WithAppIdentity(app core.AppIdentity) ControllerOption {
	return func(c *Controller) { c.app = app }
}

// WithEventBus publishes reminder events on bus.
func WithEventBus(bus *EventBus) ControllerOption { return func(c *Controller) { c.bus = bus } }

// WithLogger sets the controller logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewController(store *StateStore, presenter Presenter, opts ...ControllerOption) *Controller {
	if store == nil || presenter == nil {
		panic("NewController requires non-nil store and presenter")
	}
	c := &Controller{store: store, presenter: presenter, logger: slog.Default()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CheckLaunch runs CheckAndMaybePrompt with the installed version and the configured platform.
func (c *Controller) CheckLaunch(ctx context.Context, cfg core.ReminderConfig) (core.Outcome, error) {
	if c.versions == nil {
		return core.NotShown, &core.ConfigurationError{Field: "version_provider"}
	}
	version, err := c.versions.InstalledVersion()
	if err != nil {
		return core.NotShown, fmt.Errorf("read installed version: %w", err)
	}
	return c.CheckAndMaybePrompt(ctx, cfg, version, c.platform)
}

// CheckAndMaybePrompt counts one launch and, once the threshold is reached, walks the
// user through the rating and feedback prompts. Errors are never folded into an
// outcome: on error Dismissed is left untouched so the user is asked again.
//
// Events raised by the flow are delivered after it returns, so handlers may call back
// into the controller.
func (c *Controller) CheckAndMaybePrompt(ctx context.Context, cfg core.ReminderConfig, currentVersion string, platform Platform) (core.Outcome, error) {
	c.mu.Lock()
	outcome, err := c.checkLocked(ctx, cfg, currentVersion, platform)
	events := c.takePending()
	c.mu.Unlock()

	c.deliver(ctx, events)
	return outcome, err
}

func (c *Controller) checkLocked(ctx context.Context, cfg core.ReminderConfig, currentVersion string, platform Platform) (core.Outcome, error) {
	cfg = cfg.WithDefaults()

	st, err := c.store.Load(ctx)
	if err != nil {
		return core.NotShown, err
	}

	// A new version un-dismisses users who declined on an older one. The first launch
	// always lands here too since the stored version starts out empty.
	if cfg.ResetCountOnNewVersion && currentVersion != st.StoredAppVersion {
		c.logger.Debug("app version changed, resetting reminder state",
			"stored_version", st.StoredAppVersion,
			"current_version", currentVersion,
			"dismissed", st.Dismissed)
		if st, err = c.store.Reset(ctx); err != nil {
			return core.NotShown, err
		}
		c.publish(ctx, core.NewEvent(core.EventStateReset, st))
	}

	if st.Dismissed {
		return core.NotShown, nil
	}

	st.StoredAppVersion = currentVersion
	st.LaunchCount++
	if err := c.store.Save(ctx, st); err != nil {
		return core.NotShown, err
	}
	c.publish(ctx, core.NewEvent(core.EventLaunchCounted, st))

	if st.LaunchCount < cfg.LaunchThreshold {
		c.logger.Debug("launch counted", "launch_count", st.LaunchCount, "threshold", cfg.LaunchThreshold)
		return core.NotShown, nil
	}
	return c.askForRating(ctx, cfg, st, platform)
}

// ResetLaunchCount discards the stored count and dismissal flag.
func (c *Controller) ResetLaunchCount(ctx context.Context) (core.ReminderState, error) {
	c.mu.Lock()
	st, err := c.store.Reset(ctx)
	c.mu.Unlock()
	if err != nil {
		return core.ReminderState{}, err
	}
	c.logger.Info("reminder state reset")
	c.deliver(ctx, []core.Event{core.NewEvent(core.EventStateReset, st)})
	return st, nil
}

// State returns the persisted state without counting a launch.
func (c *Controller) State(ctx context.Context) (core.ReminderState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Load(ctx)
}

func (c *Controller) askForRating(ctx context.Context, cfg core.ReminderConfig, st core.ReminderState, platform Platform) (core.Outcome, error) {
	p := cfg.RatePrompt
	c.publish(ctx, core.NewEvent(core.EventPromptShown, st))
	choice, err := c.presenter.PresentChoice(ctx, p.Title, p.Message, p.PrimaryButton, p.SecondaryButton)
	if err != nil {
		return core.NotShown, &core.PresentationError{Action: "rate prompt", Err: err}
	}

	if choice == core.ChoicePrimary {
		if platform == nil {
			return core.NotShown, &core.ConfigurationError{Field: "platform", Reason: "required to open the store review page"}
		}
		if err := platform.LaunchStoreReview(ctx, c.app); err != nil {
			if core.IsConfigurationError(err) {
				return core.NotShown, err
			}
			return core.NotShown, &core.PresentationError{Action: "store review launch", Err: err}
		}
		return c.finish(ctx, st, core.Rated, core.EventRated)
	}

	if !cfg.AskForFeedback {
		return c.finish(ctx, st, core.Dismissed, core.EventDismissed)
	}
	return c.askForFeedback(ctx, cfg, st)
}

func (c *Controller) askForFeedback(ctx context.Context, cfg core.ReminderConfig, st core.ReminderState) (core.Outcome, error) {
	p := cfg.FeedbackPrompt
	c.publish(ctx, core.NewEvent(core.EventFeedbackPromptShown, st))
	choice, err := c.presenter.PresentChoice(ctx, p.Title, p.Message, p.PrimaryButton, p.SecondaryButton)
	if err != nil {
		return core.NotShown, &core.PresentationError{Action: "feedback prompt", Err: err}
	}
	if choice != core.ChoicePrimary {
		return c.finish(ctx, st, core.Dismissed, core.EventDismissed)
	}

	if err := cfg.ValidateFeedback(); err != nil {
		return core.NotShown, err
	}
	if c.mailer == nil {
		return core.NotShown, &core.ConfigurationError{Field: "mailer", Reason: "required to send feedback"}
	}
	body, err := cfg.RenderFeedbackBody(core.FeedbackBodyData{AppVersion: st.StoredAppVersion, LaunchCount: st.LaunchCount})
	if err != nil {
		return core.NotShown, err
	}
	if err := c.mailer.ComposeEmail(ctx, cfg.ContactEmail, cfg.FeedbackEmailSubject, body); err != nil {
		return core.NotShown, &core.PresentationError{Action: "feedback email", Err: err}
	}
	c.publish(ctx, core.NewEvent(core.EventFeedbackComposed, st))
	return c.finish(ctx, st, core.Dismissed, core.EventDismissed)
}

// finish records a terminal choice.
func (c *Controller) finish(ctx context.Context, st core.ReminderState, outcome core.Outcome, typ core.EventType) (core.Outcome, error) {
	st.Dismissed = true
	if err := c.store.Save(ctx, st); err != nil {
		return core.NotShown, err
	}
	c.logger.Info("rate reminder finished", "outcome", outcome, "launch_count", st.LaunchCount, "version", st.StoredAppVersion)
	c.publish(ctx, core.NewOutcomeEvent(typ, st, outcome))
	return outcome, nil
}

// publish queues ev for delivery once the running flow releases mu.
func (c *Controller) publish(_ context.Context, ev core.Event) {
	if c.bus != nil {
		c.pending = append(c.pending, ev)
	}
}

func (c *Controller) takePending() []core.Event {
	events := c.pending
	c.pending = nil
	return events
}

func (c *Controller) deliver(ctx context.Context, events []core.Event) {
	if c.bus == nil {
		return
	}
	for _, ev := range events {
		c.bus.Publish(ctx, ev)
	}
}
