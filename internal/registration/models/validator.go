package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"artemiz/internal/catalog"
)

// OptionCatalog answers catalog membership for the "catalog" validation tag.
type OptionCatalog interface {
	Contains(kind catalog.Kind, value string) bool
}

// FieldErrors maps a failing field to its message.
type FieldErrors map[Field]string

// Validator applies the field rule table against an answer record.
// It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// NewValidator registers the catalog membership tag against options.
func NewValidator(options OptionCatalog) (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.RegisterValidation("catalog", func(fl validator.FieldLevel) bool {
		return options.Contains(catalog.Kind(fl.Param()), fl.Field().String())
	})
	if err != nil {
		return nil, fmt.Errorf("register catalog validation: %w", err)
	}
	return &Validator{validate: v}, nil
}

// ValidateStep checks the fields owned by step. The result is empty when the
// step passes.
func (v *Validator) ValidateStep(step int, a Answers) FieldErrors {
	errs := FieldErrors{}
	for _, f := range StepFields(step) {
		if msg, ok := v.ValidateField(f, a); !ok {
			errs[f] = msg
		}
	}
	return errs
}

// ValidateField checks one field. Fields without a rule always pass.
func (v *Validator) ValidateField(f Field, a Answers) (string, bool) {
	r, ok := rules[f]
	if !ok {
		return "", true
	}
	if err := v.validate.Var(r.value(&a), r.tag); err != nil {
		return r.message, false
	}
	return "", true
}

// FirstInvalidStep validates steps 1 through upTo in order and returns the
// first failing step with its errors, or 0 when all pass.
func (v *Validator) FirstInvalidStep(a Answers, upTo int) (int, FieldErrors) {
	for step := 1; step <= upTo; step++ {
		if errs := v.ValidateStep(step, a); len(errs) > 0 {
			return step, errs
		}
	}
	return 0, nil
}
