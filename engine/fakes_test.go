package engine

import (
	"context"
	"errors"
	"maps"
	"sync"

	"ratereminder/core"
)

type fakeBackend struct {
	mu         sync.Mutex
	containers map[string]map[string]string
	getErr     error
	putErr     error
	deleteErr  error
	puts       int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{containers: map[string]map[string]string{}}
}

func (b *fakeBackend) Get(_ context.Context, container string) (map[string]string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.getErr != nil {
		return nil, false, b.getErr
	}
	v, ok := b.containers[container]
	return maps.Clone(v), ok, nil
}

func (b *fakeBackend) Put(_ context.Context, container string, values map[string]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.putErr != nil {
		return b.putErr
	}
	b.puts++
	b.containers[container] = maps.Clone(values)
	return nil
}

func (b *fakeBackend) Delete(_ context.Context, container string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.deleteErr != nil {
		return b.deleteErr
	}
	delete(b.containers, container)
	return nil
}

type prompt struct {
	title, message, primary, secondary string
}

// scriptedPresenter answers prompts from a queue and records what it was shown.
type scriptedPresenter struct {
	answers []core.Choice
	err     error
	shown   []prompt
}

func (p *scriptedPresenter) PresentChoice(_ context.Context, title, message, primary, secondary string) (core.Choice, error) {
	p.shown = append(p.shown, prompt{title, message, primary, secondary})
	if p.err != nil {
		return 0, p.err
	}
	if len(p.answers) == 0 {
		return 0, errors.New("unexpected prompt " + title)
	}
	c := p.answers[0]
	p.answers = p.answers[1:]
	return c, nil
}

type fakePlatform struct {
	phone    bool
	err      error
	launched []core.AppIdentity
}

func (p *fakePlatform) IsPhoneFormFactor(context.Context) bool { return p.phone }

func (p *fakePlatform) LaunchStoreReview(_ context.Context, app core.AppIdentity) error {
	if p.err != nil {
		return p.err
	}
	p.launched = append(p.launched, app)
	return nil
}

type sentMail struct {
	recipient, subject, body string
}

type fakeMailer struct {
	err  error
	sent []sentMail
}

func (m *fakeMailer) ComposeEmail(_ context.Context, recipient, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{recipient, subject, body})
	return nil
}

type fixedVersion struct {
	v   string
	err error
}

func (f fixedVersion) InstalledVersion() (string, error) { return f.v, f.err }
