package handler

import (
	"artemiz/internal/registration/models"
)

// View is the derived, read-only state the browser renders.
type View struct {
	ID         string             `json:"id"`
	Phase      models.Phase       `json:"phase"`
	Step       int                `json:"step"`
	TotalSteps int                `json:"totalSteps"`
	StepTitle  string             `json:"stepTitle"`
	Answers    models.Answers     `json:"answers"`
	Errors     models.FieldErrors `json:"errors"`
	// FirstInvalidStep points at the earliest step holding errors, 0 when none.
	FirstInvalidStep int            `json:"firstInvalidStep,omitempty"`
	Notice           *models.Notice `json:"notice"`
	CanNext          bool           `json:"canNext"`
	CanPrevious      bool           `json:"canPrevious"`
	CanSubmit        bool           `json:"canSubmit"`
	Redirect         *Redirect      `json:"redirect,omitempty"`
}

// Redirect tells the browser where to go once the wizard is done.
type Redirect struct {
	Location     string `json:"location"`
	AfterSeconds int    `json:"afterSeconds"`
}

// errorView is a View carrying the error code of a failed operation.
type errorView struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	View
}

type toggleRequest struct {
	Field  models.Field `json:"field"`
	Option string       `json:"option"`
}

type registrationsResponse struct {
	Registrations []*models.Registration `json:"registrations"`
	Count         int                    `json:"count"`
}

func (h *Handler) toView(w *models.Wizard) View {
	errs := w.Errors
	if errs == nil {
		errs = models.FieldErrors{}
	}
	v := View{
		ID:               w.ID.String(),
		Phase:            w.Phase,
		Step:             w.Step,
		TotalSteps:       models.TotalSteps,
		StepTitle:        models.StepTitle(w.Step),
		Answers:          w.Answers,
		Errors:           errs,
		FirstInvalidStep: w.FirstStepWithErrors(),
		Notice:           w.Notice,
		CanNext:          w.CanNext(),
		CanPrevious:      w.CanPrevious(),
		CanSubmit:        w.CanSubmit(),
	}
	if w.Phase == models.PhaseSuccess {
		v.Redirect = &Redirect{
			Location:     "/",
			AfterSeconds: int(h.service.RedirectDelay().Seconds()),
		}
	}
	return v
}
