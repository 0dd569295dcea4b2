package engine

import (
	"context"

	"ratereminder/core"
)

// Backend abstracts container-scoped key/value persistence beneath the StateStore.
type Backend interface {
	// Get returns a copy of the container's values; ok is false when the container does not exist.
	Get(ctx context.Context, container string) (values map[string]string, ok bool, err error)
	// Put atomically replaces every value in the container, creating it if needed.
	Put(ctx context.Context, container string, values map[string]string) error
	// Delete removes the container. Deleting a missing container is not an error.
	Delete(ctx context.Context, container string) error
}

// Presenter shows a modal two-button prompt and blocks until the user responds.
type Presenter interface {
	PresentChoice(ctx context.Context, title, message, primary, secondary string) (core.Choice, error)
}

// Platform detects the form factor and hands the store review page to the OS.
// LaunchStoreReview returns once the hand-off is dispatched; completion is not observed.
type Platform interface {
	IsPhoneFormFactor(ctx context.Context) bool
	LaunchStoreReview(ctx context.Context, app core.AppIdentity) error
}

// Mailer hands a pre-filled email to the OS mail client without waiting for delivery.
type Mailer interface {
	ComposeEmail(ctx context.Context, recipient, subject, body string) error
}

// VersionProvider reports the installed application version as a four-component string.
type VersionProvider interface {
	InstalledVersion() (string, error)
}
