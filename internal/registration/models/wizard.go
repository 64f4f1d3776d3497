package models

import (
	"fmt"
	"maps"
	"time"

	id "artemiz/pkg/domain"
	dErrors "artemiz/pkg/domain-errors"
)

// Phase is the coarse state of a wizard. While editing, Step says which page
// is active.
type Phase string

const (
	PhaseEditing    Phase = "editing"
	PhaseSubmitting Phase = "submitting"
	PhaseSuccess    Phase = "success"
)

// CanTransitionTo reports whether the phase graph allows moving to next.
// Submitting may fall back to editing when the boundary call fails.
func (p Phase) CanTransitionTo(next Phase) bool {
	switch p {
	case PhaseEditing:
		return next == PhaseSubmitting
	case PhaseSubmitting:
		return next == PhaseSuccess || next == PhaseEditing
	}
	return false
}

// NoticeKind is the tone of a transient notification.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is shown once and cleared by the next mutating call.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
}

var (
	SuccessNotice = Notice{
		Kind:    NoticeSuccess,
		Title:   "Registration Successful!",
		Message: "Welcome to ARTEMIZ! We'll be in touch soon.",
	}
	FailureNotice = Notice{
		Kind:    NoticeError,
		Title:   "Registration Failed",
		Message: "Something went wrong. Please try again.",
	}
)

// Wizard is the aggregate root of one registration attempt.
//
// Invariants:
//   - Step is always in [1, TotalSteps]
//   - Step advances only through Next after the step's fields validate
//   - Submitting is entered only from step 5 after the whole record validates
//   - Errors for a step change only when that step is validated
//   - Answers are never cleared by navigation or by a failed submission
type Wizard struct {
	ID        id.SessionID `json:"id"`
	Phase     Phase        `json:"phase"`
	Step      int          `json:"step"`
	Answers   Answers      `json:"answers"`
	Errors    FieldErrors  `json:"errors"`
	Notice    *Notice      `json:"notice,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	// SubmittedAt is set when the wizard enters Submitting.
	SubmittedAt time.Time `json:"submittedAt,omitzero"`
}

// NewWizard returns an empty wizard on step 1.
func NewWizard(sessionID id.SessionID, now time.Time) *Wizard {
	return &Wizard{
		ID:        sessionID,
		Phase:     PhaseEditing,
		Step:      1,
		Errors:    FieldErrors{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy.
func (w *Wizard) Clone() *Wizard {
	c := *w
	c.Answers = w.Answers.Clone()
	c.Errors = maps.Clone(w.Errors)
	if w.Notice != nil {
		n := *w.Notice
		c.Notice = &n
	}
	return &c
}

func (w *Wizard) requireEditing() error {
	switch w.Phase {
	case PhaseEditing:
		return nil
	case PhaseSubmitting:
		return dErrors.New(dErrors.CodeConflict, "registration is being submitted")
	default:
		return dErrors.New(dErrors.CodeInvalidState, "registration is already complete")
	}
}

// ApplyPatch edits answers. Step and errors are untouched.
func (w *Wizard) ApplyPatch(p Patch, now time.Time) error {
	if err := w.requireEditing(); err != nil {
		return err
	}
	p.ApplyTo(&w.Answers)
	w.touch(now)
	return nil
}

// Toggle flips option in a multi-select field. Step and errors are untouched.
func (w *Wizard) Toggle(field Field, option string, now time.Time) error {
	if err := w.requireEditing(); err != nil {
		return err
	}
	if err := w.Answers.Toggle(field, option); err != nil {
		return err
	}
	w.touch(now)
	return nil
}

// Next validates the current step and advances when it passes. On failure
// the step's errors are attached and a CodeValidation error is returned.
func (w *Wizard) Next(v *Validator, now time.Time) error {
	if err := w.requireEditing(); err != nil {
		return err
	}
	if w.Step >= TotalSteps {
		return dErrors.New(dErrors.CodeInvalidState, "already on the last step, submit instead")
	}
	w.touch(now)
	if !w.revalidate(v, w.Step) {
		return stepError(w.Step)
	}
	w.Step++
	return nil
}

// Previous moves back one step without validating.
func (w *Wizard) Previous(now time.Time) error {
	if err := w.requireEditing(); err != nil {
		return err
	}
	if w.Step <= 1 {
		return dErrors.New(dErrors.CodeInvalidState, "already on the first step")
	}
	w.Step--
	w.touch(now)
	return nil
}

// CanBeginSubmit checks the phase and step preconditions of BeginSubmit.
func (w *Wizard) CanBeginSubmit() error {
	if err := w.requireEditing(); err != nil {
		return err
	}
	if w.Step != TotalSteps {
		return dErrors.New(dErrors.CodeInvalidState, "registration can only be submitted from the last step")
	}
	return nil
}

// BeginSubmit validates step 5 and then the whole record. The wizard stays on
// step 5 either way; errors of a stale earlier step are attached so the
// visitor can go back to it. On success the wizard enters Submitting and is
// stamped with now.
func (w *Wizard) BeginSubmit(v *Validator, now time.Time) error {
	if err := w.CanBeginSubmit(); err != nil {
		return err
	}
	w.touch(now)
	if !w.revalidate(v, TotalSteps) {
		return stepError(TotalSteps)
	}
	stale := 0
	for step := 1; step < TotalSteps; step++ {
		if !w.revalidate(v, step) && stale == 0 {
			stale = step
		}
	}
	if stale != 0 {
		return stepError(stale)
	}
	w.Phase = PhaseSubmitting
	w.SubmittedAt = now
	return nil
}

// CompleteSubmit records the boundary outcome. A nil submitErr moves to
// Success; anything else returns to step 5 with answers intact.
func (w *Wizard) CompleteSubmit(submitErr error, now time.Time) error {
	if w.Phase != PhaseSubmitting {
		return dErrors.New(dErrors.CodeInvalidState, "registration is not being submitted")
	}
	w.UpdatedAt = now
	if submitErr != nil {
		w.Phase = PhaseEditing
		w.Step = TotalSteps
		w.SubmittedAt = time.Time{}
		n := FailureNotice
		w.Notice = &n
		return nil
	}
	w.Phase = PhaseSuccess
	n := SuccessNotice
	w.Notice = &n
	return nil
}

// CanNext reports whether the Next control is available.
func (w *Wizard) CanNext() bool {
	return w.Phase == PhaseEditing && w.Step < TotalSteps
}

// CanPrevious reports whether the Previous control is available.
func (w *Wizard) CanPrevious() bool {
	return w.Phase == PhaseEditing && w.Step > 1
}

// FirstStepWithErrors returns the lowest step that has a field error, or 0.
func (w *Wizard) FirstStepWithErrors() int {
	for step := 1; step <= TotalSteps; step++ {
		for _, f := range StepFields(step) {
			if _, ok := w.Errors[f]; ok {
				return step
			}
		}
	}
	return 0
}

// CanSubmit reports whether the Submit control is available.
func (w *Wizard) CanSubmit() bool {
	return w.Phase == PhaseEditing && w.Step == TotalSteps
}

// revalidate clears and recomputes the errors of step, reporting whether it
// passed.
func (w *Wizard) revalidate(v *Validator, step int) bool {
	if w.Errors == nil {
		w.Errors = FieldErrors{}
	}
	for _, f := range StepFields(step) {
		delete(w.Errors, f)
	}
	errs := v.ValidateStep(step, w.Answers)
	maps.Copy(w.Errors, errs)
	return len(errs) == 0
}

// touch stamps a mutation and drops the transient notice.
func (w *Wizard) touch(now time.Time) {
	w.UpdatedAt = now
	w.Notice = nil
}

func stepError(step int) error {
	return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("step %d has invalid fields", step))
}
