package models

import (
	"time"

	id "artemiz/pkg/domain"
	dErrors "artemiz/pkg/domain-errors"
)

// Registration is the completed record handed to the submission boundary.
type Registration struct {
	ID          id.RegistrationID `json:"id"`
	SessionID   id.SessionID      `json:"sessionId"`
	Answers     Answers           `json:"answers"`
	SubmittedAt time.Time         `json:"submittedAt"`
}

// NewRegistration snapshots a wizard that has entered Submitting.
func NewRegistration(regID id.RegistrationID, w *Wizard) (*Registration, error) {
	if w.Phase != PhaseSubmitting {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "registration requires a submitting wizard")
	}
	return &Registration{
		ID:          regID,
		SessionID:   w.ID,
		Answers:     w.Answers.Clone(),
		SubmittedAt: w.SubmittedAt,
	}, nil
}
