package launcher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratereminder/core"
)

type recordingOpener struct {
	uris []string
	err  error
}

func (o *recordingOpener) Open(_ context.Context, uri string) error {
	o.uris = append(o.uris, uri)
	return o.err
}

func TestPlatform_LaunchStoreReview_Desktop(t *testing.T) {
	op := &recordingOpener{}
	p := NewPlatform(op)

	err := p.LaunchStoreReview(context.Background(), core.AppIdentity{PackageFamilyName: "Contoso.App_8wekyb3d8bbwe", AppID: "9WZDNCRFJ3TJ"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ms-windows-store:REVIEW?PFN=Contoso.App_8wekyb3d8bbwe"}, op.uris)
}

func TestPlatform_LaunchStoreReview_Phone(t *testing.T) {
	op := &recordingOpener{}
	p := NewPlatform(op, WithPhoneDetector(func() (bool, error) { return true, nil }))

	err := p.LaunchStoreReview(context.Background(), core.AppIdentity{PackageFamilyName: "Contoso.App_8wekyb3d8bbwe", AppID: "9WZDNCRFJ3TJ"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ms-windows-store:reviewapp?appid=9WZDNCRFJ3TJ"}, op.uris)
}

func TestPlatform_DetectionFailureMeansDesktop(t *testing.T) {
	p := NewPlatform(&recordingOpener{}, WithPhoneDetector(func() (bool, error) { return true, errors.New("probe failed") }))
	assert.False(t, p.IsPhoneFormFactor(context.Background()))
}

func TestPlatform_MissingIdentity(t *testing.T) {
	op := &recordingOpener{}
	p := NewPlatform(op)

	err := p.LaunchStoreReview(context.Background(), core.AppIdentity{})
	require.Error(t, err)
	assert.True(t, core.IsConfigurationError(err))
	assert.Empty(t, op.uris)
}

func TestPlatform_OpenerError(t *testing.T) {
	p := NewPlatform(&recordingOpener{err: errors.New("no handler")})

	err := p.LaunchStoreReview(context.Background(), core.AppIdentity{PackageFamilyName: "pfn"})
	assert.EqualError(t, err, "no handler")
}

func TestFormFactorFromEnv(t *testing.T) {
	detect := FormFactorFromEnv("RATEREMINDER_TEST_FORM_FACTOR")

	_, err := detect()
	assert.Error(t, err)

	t.Setenv("RATEREMINDER_TEST_FORM_FACTOR", "Phone")
	phone, err := detect()
	require.NoError(t, err)
	assert.True(t, phone)

	t.Setenv("RATEREMINDER_TEST_FORM_FACTOR", "desktop")
	phone, err = detect()
	require.NoError(t, err)
	assert.False(t, phone)

	t.Setenv("RATEREMINDER_TEST_FORM_FACTOR", "watch")
	_, err = detect()
	assert.Error(t, err)
}

func TestMailtoURI(t *testing.T) {
	uri, err := MailtoURI("support@contoso.com", "Feedback for MyApp", "Version 1.2.0.0\nLaunches: 5")
	require.NoError(t, err)
	assert.Equal(t, "mailto:support@contoso.com?subject=Feedback%20for%20MyApp&body=Version%201.2.0.0%0ALaunches%3A%205", uri)

	uri, err = MailtoURI("a@b.c", "", "")
	require.NoError(t, err)
	assert.Equal(t, "mailto:a@b.c", uri)

	_, err = MailtoURI("  ", "s", "b")
	assert.Error(t, err)
}

func TestMailer_ComposeEmail(t *testing.T) {
	op := &recordingOpener{}
	m := NewMailer(op)

	require.NoError(t, m.ComposeEmail(context.Background(), "a@b.c", "hi there", ""))
	assert.Equal(t, []string{"mailto:a@b.c?subject=hi%20there"}, op.uris)
}

func TestCommandOpener_StartFailure(t *testing.T) {
	op := NewCommandOpener("ratereminder-no-such-binary")
	err := op.Open(context.Background(), "https://example.invalid")
	assert.ErrorContains(t, err, "failed to start ratereminder-no-such-binary")
}
