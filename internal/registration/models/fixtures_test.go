package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"artemiz/internal/catalog"
	id "artemiz/pkg/domain"
)

var testNow = time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	v, err := NewValidator(c)
	require.NoError(t, err)
	return v
}

func validAnswers() Answers {
	return Answers{
		Name:                 "Ada Lovelace",
		Email:                "ada@example.com",
		Phone:                "9876543210",
		StudentID:            "CS-2024-001",
		Course:               "bca",
		Year:                 "2",
		ExperienceLevel:      "intermediate",
		ProgrammingLanguages: []string{"Go", "Python"},
		AreasOfInterest:      []string{"DevOps"},
		PreviousProjects:     "A compiler for a toy language",
		Motivation:           "I want to build things with other people",
		TimeCommitment:       "4-8 hours",
		HasLaptop:            true,
		GitHubProfile:        "https://github.com/ada",
		ReferralSource:       "friends",
	}
}

// wizardAt returns a wizard holding valid answers positioned on step.
func wizardAt(step int) *Wizard {
	w := NewWizard(id.NewSessionID(), testNow)
	w.Answers = validAnswers()
	w.Step = step
	return w
}
