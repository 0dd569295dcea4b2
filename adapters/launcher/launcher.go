// Package launcher hands store review pages and feedback emails to the operating
// system. Every hand-off is fire-and-forget: the handler process is started and never
// awaited, so the reminder flow cannot observe whether the user finished the review or
// sent the mail.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"ratereminder/core"
	"ratereminder/engine"
)

// Opener dispatches a URI to whatever the OS has registered for its scheme.
type Opener interface {
	Open(ctx context.Context, uri string) error
}

// CommandOpener opens URIs by starting an external command with the URI as last argument.
type CommandOpener struct {
	name string
	args []string
}

// NewCommandOpener builds an opener that runs name args... uri.
func NewCommandOpener(name string, args ...string) *CommandOpener {
	return &CommandOpener{name: name, args: append([]string{}, args...)}
}

// SystemOpener returns the URI handler of the current OS.
func SystemOpener() *CommandOpener {
	switch runtime.GOOS {
	case "windows":
		return NewCommandOpener("rundll32", "url.dll,FileProtocolHandler")
	case "darwin":
		return NewCommandOpener("open")
	default:
		return NewCommandOpener("xdg-open")
	}
}

// Open starts the handler and returns without waiting for it. The process is not tied
// to ctx: cancelling the reminder flow must not kill a browser or mail client.
func (o *CommandOpener) Open(_ context.Context, uri string) error {
	cmd := exec.Command(o.name, append(append([]string{}, o.args...), uri)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", o.name, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Platform implements engine.Platform on top of an Opener.
type Platform struct {
	opener Opener
	detect func() (bool, error)
	logger *slog.Logger
}

// PlatformOption configures a Platform.
type PlatformOption func(*Platform)

// WithPhoneDetector sets the form factor probe. Without one every host is treated as
// non-phone.
func WithPhoneDetector(detect func() (bool, error)) PlatformOption {
	return func(p *Platform) { p.detect = detect }
}

// WithLogger sets the logger used to report failed detection.
func WithLogger(l *slog.Logger) PlatformOption {
	return func(p *Platform) {
		if l != nil {
			p.logger = l
		}
	}
}

func NewPlatform(opener Opener, opts ...PlatformOption) *Platform {
	if opener == nil {
		opener = SystemOpener()
	}
	p := &Platform{opener: opener, logger: slog.Default()}
	for _, o := range opts {
		o(p)
	}
	return p
}

// IsPhoneFormFactor is best effort; a failing probe means non-phone.
func (p *Platform) IsPhoneFormFactor(_ context.Context) bool {
	if p.detect == nil {
		return false
	}
	phone, err := p.detect()
	if err != nil {
		p.logger.Debug("form factor detection failed, assuming non-phone", "error", err)
		return false
	}
	return phone
}

// LaunchStoreReview opens the review page for app in the platform store.
func (p *Platform) LaunchStoreReview(ctx context.Context, app core.AppIdentity) error {
	uri, err := app.ReviewURI(p.IsPhoneFormFactor(ctx))
	if err != nil {
		return err
	}
	return p.opener.Open(ctx, uri)
}

// FormFactorFromEnv returns a detector that reads key; "phone" (any case) means phone.
// An unset variable is reported as a detection failure.
func FormFactorFromEnv(key string) func() (bool, error) {
	return func() (bool, error) {
		v, ok := os.LookupEnv(key)
		if !ok {
			return false, fmt.Errorf("%s not set", key)
		}
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "phone", "mobile":
			return true, nil
		case "desktop", "tablet", "other", "":
			return false, nil
		default:
			return false, fmt.Errorf("unknown form factor %q", v)
		}
	}
}

// Mailer implements engine.Mailer by opening a mailto: link.
type Mailer struct {
	opener Opener
}

func NewMailer(opener Opener) *Mailer {
	if opener == nil {
		opener = SystemOpener()
	}
	return &Mailer{opener: opener}
}

func (m *Mailer) ComposeEmail(ctx context.Context, recipient, subject, body string) error {
	uri, err := MailtoURI(recipient, subject, body)
	if err != nil {
		return err
	}
	return m.opener.Open(ctx, uri)
}

// MailtoURI builds an RFC 6068 mailto link. Spaces are encoded as %20 since several mail
// clients show a literal "+".
func MailtoURI(recipient, subject, body string) (string, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return "", errors.New("empty recipient")
	}
	var params []string
	if subject != "" {
		params = append(params, "subject="+escapeComponent(subject))
	}
	if body != "" {
		params = append(params, "body="+escapeComponent(body))
	}
	u := url.URL{Scheme: "mailto", Opaque: url.PathEscape(recipient), RawQuery: strings.Join(params, "&")}
	return u.String(), nil
}

func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

var (
	_ engine.Platform = (*Platform)(nil)
	_ engine.Mailer   = (*Mailer)(nil)
)
