package audit

import "time"

// EventName identifies a wizard transition worth keeping a trail of.
type EventName string

const (
	EventWizardStarted      EventName = "wizard_started"
	EventStepAdvanced       EventName = "step_advanced"
	EventStepRejected       EventName = "step_rejected"
	EventStepReturned       EventName = "step_returned"
	EventSubmitted          EventName = "registration_submitted"
	EventRegistrationStored EventName = "registration_stored"
	EventSubmissionFailed   EventName = "registration_submission_failed"
	EventWizardAbandoned    EventName = "wizard_abandoned"
	EventNavigatedHome      EventName = "wizard_navigated_home"
)

// Event is emitted by the registration service. Keep it transport-agnostic so
// stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"sessionId"`
	Action    EventName `json:"action"`
	Step      int       `json:"step,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
}
