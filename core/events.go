package core

import "time"

// EventType enumerates reminder lifecycle events.
type EventType string

const (
	EventLaunchCounted       EventType = "launch_counted"
	EventStateReset          EventType = "state_reset"
	EventPromptShown         EventType = "prompt_shown"
	EventFeedbackPromptShown EventType = "feedback_prompt_shown"
	EventRated               EventType = "rated"
	EventDismissed           EventType = "dismissed"
	EventFeedbackComposed    EventType = "feedback_composed"
)

// Event represents an immutable reminder event.
type Event struct {
	Type        EventType `json:"type"`
	Time        time.Time `json:"time"`
	Version     string    `json:"version,omitempty"`
	LaunchCount int       `json:"launch_count"`
	Outcome     Outcome   `json:"outcome,omitempty"`
}

func NewEvent(typ EventType, state ReminderState) Event {
	return Event{Type: typ, Time: time.Now().UTC(), Version: state.StoredAppVersion, LaunchCount: state.LaunchCount}
}

func NewOutcomeEvent(typ EventType, state ReminderState, outcome Outcome) Event {
	ev := NewEvent(typ, state)
	ev.Outcome = outcome
	return ev
}
