package models

import (
	"slices"

	dErrors "artemiz/pkg/domain-errors"
	platformstrings "artemiz/pkg/platform/strings"
)

// Field names one answer of the registration form. Values match the JSON keys.
type Field string

const (
	FieldName                 Field = "name"
	FieldEmail                Field = "email"
	FieldPhone                Field = "phone"
	FieldStudentID            Field = "studentId"
	FieldCourse               Field = "course"
	FieldYear                 Field = "year"
	FieldExperienceLevel      Field = "experienceLevel"
	FieldProgrammingLanguages Field = "programmingLanguages"
	FieldAreasOfInterest      Field = "areasOfInterest"
	FieldPreviousProjects     Field = "previousProjects"
	FieldMotivation           Field = "motivation"
	FieldTimeCommitment       Field = "timeCommitment"
	FieldHasLaptop            Field = "hasLaptop"
	FieldGitHubProfile        Field = "githubProfile"
	FieldLinkedInProfile      Field = "linkedinProfile"
	FieldReferralSource       Field = "referralSource"
)

// IsMultiSelect reports whether f holds a toggled set of options.
func (f Field) IsMultiSelect() bool {
	return f == FieldProgrammingLanguages || f == FieldAreasOfInterest
}

// Answers is the record accumulated across the five steps.
type Answers struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	StudentID string `json:"studentId"`

	Course string `json:"course"`
	Year   string `json:"year"`

	ExperienceLevel      string   `json:"experienceLevel"`
	ProgrammingLanguages []string `json:"programmingLanguages"`

	AreasOfInterest  []string `json:"areasOfInterest"`
	PreviousProjects string   `json:"previousProjects"`
	Motivation       string   `json:"motivation"`
	TimeCommitment   string   `json:"timeCommitment"`

	HasLaptop       bool   `json:"hasLaptop"`
	GitHubProfile   string `json:"githubProfile"`
	LinkedInProfile string `json:"linkedinProfile"`
	ReferralSource  string `json:"referralSource"`
}

// Clone returns a deep copy so callers never share the multi-select slices.
func (a Answers) Clone() Answers {
	a.ProgrammingLanguages = slices.Clone(a.ProgrammingLanguages)
	a.AreasOfInterest = slices.Clone(a.AreasOfInterest)
	return a
}

// Toggle removes option from a multi-select field when present and appends it
// otherwise. Options outside the catalog are accepted here and rejected by
// step validation.
func (a *Answers) Toggle(field Field, option string) error {
	var set *[]string
	switch field {
	case FieldProgrammingLanguages:
		set = &a.ProgrammingLanguages
	case FieldAreasOfInterest:
		set = &a.AreasOfInterest
	default:
		return dErrors.New(dErrors.CodeInvalidInput, "field "+string(field)+" is not a multi-select field")
	}
	if option == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "option is required")
	}
	if i := slices.Index(*set, option); i >= 0 {
		*set = slices.Delete(*set, i, i+1)
		return nil
	}
	*set = append(*set, option)
	return nil
}

// Patch is a partial update of the answers. Nil fields are left unchanged.
type Patch struct {
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	StudentID *string `json:"studentId,omitempty"`

	Course *string `json:"course,omitempty"`
	Year   *string `json:"year,omitempty"`

	ExperienceLevel      *string  `json:"experienceLevel,omitempty"`
	ProgrammingLanguages []string `json:"programmingLanguages,omitempty"`

	AreasOfInterest  []string `json:"areasOfInterest,omitempty"`
	PreviousProjects *string  `json:"previousProjects,omitempty"`
	Motivation       *string  `json:"motivation,omitempty"`
	TimeCommitment   *string  `json:"timeCommitment,omitempty"`

	HasLaptop       *bool   `json:"hasLaptop,omitempty"`
	GitHubProfile   *string `json:"githubProfile,omitempty"`
	LinkedInProfile *string `json:"linkedinProfile,omitempty"`
	ReferralSource  *string `json:"referralSource,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	scalars := []*string{
		p.Name, p.Email, p.Phone, p.StudentID, p.Course, p.Year, p.ExperienceLevel,
		p.PreviousProjects, p.Motivation, p.TimeCommitment, p.GitHubProfile,
		p.LinkedInProfile, p.ReferralSource,
	}
	for _, v := range scalars {
		if v != nil {
			return false
		}
	}
	return p.HasLaptop == nil && p.ProgrammingLanguages == nil && p.AreasOfInterest == nil
}

// ApplyTo copies every set field onto a. Multi-select replacements drop
// duplicates and keep first-seen order.
func (p Patch) ApplyTo(a *Answers) {
	setString(&a.Name, p.Name)
	setString(&a.Email, p.Email)
	setString(&a.Phone, p.Phone)
	setString(&a.StudentID, p.StudentID)
	setString(&a.Course, p.Course)
	setString(&a.Year, p.Year)
	setString(&a.ExperienceLevel, p.ExperienceLevel)
	setString(&a.PreviousProjects, p.PreviousProjects)
	setString(&a.Motivation, p.Motivation)
	setString(&a.TimeCommitment, p.TimeCommitment)
	setString(&a.GitHubProfile, p.GitHubProfile)
	setString(&a.LinkedInProfile, p.LinkedInProfile)
	setString(&a.ReferralSource, p.ReferralSource)
	if p.HasLaptop != nil {
		a.HasLaptop = *p.HasLaptop
	}
	if p.ProgrammingLanguages != nil {
		a.ProgrammingLanguages = platformstrings.DedupeAndTrim(p.ProgrammingLanguages)
	}
	if p.AreasOfInterest != nil {
		a.AreasOfInterest = platformstrings.DedupeAndTrim(p.AreasOfInterest)
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
