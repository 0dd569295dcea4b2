package core

import (
	"bytes"
	"strings"
	"text/template"
)

const (
	DefaultRateTitle         = "Rate us!"
	DefaultRateMessage       = "Your feedback helps us improve this app. If you like it, please take a minute and rate it with five stars so we can continue working on new features and updates."
	DefaultRateButtonText    = "rate 5 stars"
	DefaultDismissButtonText = "no, thanks"
	DefaultFeedbackTitle     = "Send feedback?"
	DefaultFeedbackMessage   = "We are sorry you don't want to rate the application. Would you like to send us some valuable feedback?"
	DefaultSendButtonText    = "send feedback"
	DefaultDeclineButtonText = "no, thanks"
)

// PromptText holds the user-facing strings of one two-button prompt.
type PromptText struct {
	Title           string `json:"title" koanf:"title"`
	Message         string `json:"message" koanf:"message"`
	PrimaryButton   string `json:"primary_button" koanf:"primary_button"`
	SecondaryButton string `json:"secondary_button" koanf:"secondary_button"`
}

// ReminderConfig is the caller-supplied configuration of a reminder check.
// It is read-only for the duration of a call. FeedbackEmailBody is a text/template
// rendered with FeedbackBodyData.
type ReminderConfig struct {
	LaunchThreshold        int        `json:"launch_threshold" koanf:"launch_threshold" env:"RATEREMINDER_LAUNCH_THRESHOLD"`
	ResetCountOnNewVersion bool       `json:"reset_count_on_new_version" koanf:"reset_count_on_new_version" env:"RATEREMINDER_RESET_ON_NEW_VERSION"`
	AskForFeedback         bool       `json:"ask_for_feedback" koanf:"ask_for_feedback" env:"RATEREMINDER_ASK_FOR_FEEDBACK"`
	RatePrompt             PromptText `json:"rate_prompt" koanf:"rate_prompt"`
	FeedbackPrompt         PromptText `json:"feedback_prompt" koanf:"feedback_prompt"`
	ContactEmail           string     `json:"contact_email" koanf:"contact_email" env:"RATEREMINDER_CONTACT_EMAIL"`
	FeedbackEmailSubject   string     `json:"feedback_email_subject" koanf:"feedback_email_subject" env:"RATEREMINDER_FEEDBACK_SUBJECT"`
	FeedbackEmailBody      string     `json:"feedback_email_body" koanf:"feedback_email_body"`
}

// DefaultReminderConfig returns the stock strings and a threshold of DefaultLaunchThreshold.
func DefaultReminderConfig() ReminderConfig {
	return ReminderConfig{}.WithDefaults()
}

// WithDefaults fills blank strings and a non-positive threshold. Contact email and
// subject have no defaults.
func (c ReminderConfig) WithDefaults() ReminderConfig {
	if c.LaunchThreshold <= 0 {
		c.LaunchThreshold = DefaultLaunchThreshold
	}
	c.RatePrompt = c.RatePrompt.withDefaults(PromptText{
		Title:           DefaultRateTitle,
		Message:         DefaultRateMessage,
		PrimaryButton:   DefaultRateButtonText,
		SecondaryButton: DefaultDismissButtonText,
	})
	c.FeedbackPrompt = c.FeedbackPrompt.withDefaults(PromptText{
		Title:           DefaultFeedbackTitle,
		Message:         DefaultFeedbackMessage,
		PrimaryButton:   DefaultSendButtonText,
		SecondaryButton: DefaultDeclineButtonText,
	})
	return c
}

func (p PromptText) withDefaults(d PromptText) PromptText {
	if strings.TrimSpace(p.Title) == "" {
		p.Title = d.Title
	}
	if strings.TrimSpace(p.Message) == "" {
		p.Message = d.Message
	}
	if strings.TrimSpace(p.PrimaryButton) == "" {
		p.PrimaryButton = d.PrimaryButton
	}
	if strings.TrimSpace(p.SecondaryButton) == "" {
		p.SecondaryButton = d.SecondaryButton
	}
	return p
}

// ValidateFeedback checks the fields the email hand-off depends on.
func (c ReminderConfig) ValidateFeedback() error {
	if strings.TrimSpace(c.ContactEmail) == "" {
		return &ConfigurationError{Field: "contact_email"}
	}
	if strings.TrimSpace(c.FeedbackEmailSubject) == "" {
		return &ConfigurationError{Field: "feedback_email_subject"}
	}
	if _, err := c.feedbackTemplate(); err != nil {
		return &ConfigurationError{Field: "feedback_email_body", Reason: err.Error()}
	}
	return nil
}

// FeedbackBodyData is available to the feedback email body template.
type FeedbackBodyData struct {
	AppVersion  string
	LaunchCount int
}

// RenderFeedbackBody renders the optional body template. A blank template yields "".
func (c ReminderConfig) RenderFeedbackBody(data FeedbackBodyData) (string, error) {
	tmpl, err := c.feedbackTemplate()
	if err != nil {
		return "", &ConfigurationError{Field: "feedback_email_body", Reason: err.Error()}
	}
	if tmpl == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", &ConfigurationError{Field: "feedback_email_body", Reason: err.Error()}
	}
	return buf.String(), nil
}

func (c ReminderConfig) feedbackTemplate() (*template.Template, error) {
	if strings.TrimSpace(c.FeedbackEmailBody) == "" {
		return nil, nil
	}
	return template.New("feedback").Option("missingkey=error").Parse(c.FeedbackEmailBody)
}
