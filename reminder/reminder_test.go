package reminder

import (
	"context"
	"testing"
	"time"

	mem "ratereminder/adapters/memory"
	"ratereminder/adapters/version"
	"ratereminder/core"
	"ratereminder/engine"
)

type answer core.Choice

func (a answer) PresentChoice(context.Context, string, string, string, string) (core.Choice, error) {
	return core.Choice(a), nil
}

type recordingPlatform struct{ apps []core.AppIdentity }

func (p *recordingPlatform) IsPhoneFormFactor(context.Context) bool { return false }

func (p *recordingPlatform) LaunchStoreReview(_ context.Context, app core.AppIdentity) error {
	p.apps = append(p.apps, app)
	return nil
}

func TestNewDefaultsAndOptions(t *testing.T) {
	backend := mem.New()
	platform := &recordingPlatform{}
	app := core.AppIdentity{PackageFamilyName: "Contoso.Notes_8wekyb3d8bbwe"}
	var rated []core.Event
	var all int

	r := New(
		WithBackend(backend),
		WithContainer("NotesReminder"),
		WithPresenter(answer(core.ChoicePrimary)),
		WithPlatform(platform),
		WithAppIdentity(app),
		WithVersionProvider(version.Static("1.0.0")),
		WithDispatchMode(engine.DispatchSync),
		OnEvent(core.EventRated, func(_ context.Context, e core.Event) { rated = append(rated, e) }),
		OnAnyEvent(func(context.Context, core.Event) { all++ }),
	)
	defer r.Close()

	cfg := core.ReminderConfig{LaunchThreshold: 2}
	ctx := context.Background()
	if out, err := r.CheckLaunch(ctx, cfg); err != nil || out != core.NotShown {
		t.Fatalf("first launch out=%v err=%v", out, err)
	}
	out, err := r.CheckLaunch(ctx, cfg)
	if err != nil || out != core.Rated {
		t.Fatalf("second launch out=%v err=%v", out, err)
	}
	if len(platform.apps) != 1 || platform.apps[0] != app {
		t.Fatalf("unexpected store launches: %+v", platform.apps)
	}
	if len(rated) != 1 || rated[0].Outcome != core.Rated || rated[0].Version != "1.0.0.0" {
		t.Fatalf("unexpected rated events: %+v", rated)
	}
	if all != 4 {
		t.Fatalf("want 4 events got %d", all)
	}

	values, ok, _ := backend.Get(ctx, "NotesReminder")
	if !ok || values["Dismissed"] != "true" || values["Count"] != "2" {
		t.Fatalf("unexpected stored values: %v", values)
	}
}

func TestInMemoryFallback(t *testing.T) {
	r := New(WithPresenter(answer(core.ChoiceSecondary)), WithVersionProvider(version.Static("2.0.0.0")))
	defer r.Close()

	if _, err := r.CheckLaunch(context.Background(), core.ReminderConfig{LaunchThreshold: 10}); err != nil {
		t.Fatalf("fallback check: %v", err)
	}
	st, err := r.State(context.Background())
	if err != nil {
		t.Fatalf("fallback state: %v", err)
	}
	if st.LaunchCount != 1 || st.StoredAppVersion != "2.0.0.0" {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestHandlerReadsStateDuringSyncDispatch(t *testing.T) {
	var seen core.ReminderState
	var stateErr error
	var r *Reminder
	r = New(
		WithPresenter(answer(core.ChoiceSecondary)),
		WithVersionProvider(version.Static("1.0.0.0")),
		WithDispatchMode(engine.DispatchSync),
		OnEvent(core.EventDismissed, func(ctx context.Context, _ core.Event) {
			seen, stateErr = r.State(ctx)
		}),
	)
	defer r.Close()

	done := make(chan error, 1)
	go func() {
		_, err := r.CheckLaunch(context.Background(), core.ReminderConfig{LaunchThreshold: 1})
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("check launch: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("dismissed handler calling State blocked the launch")
	}
	if stateErr != nil {
		t.Fatalf("state from handler: %v", stateErr)
	}
	if !seen.Dismissed || seen.LaunchCount != 1 {
		t.Fatalf("handler saw %+v", seen)
	}
}
