package models

// TotalSteps is the number of pages in the registration form.
const TotalSteps = 5

// rule is one validator tag and the message shown when it fails.
type rule struct {
	tag     string
	message string
	value   func(a *Answers) any
}

// steps maps a step number to the fields it owns, in display order.
var steps = map[int][]Field{
	1: {FieldName, FieldEmail, FieldPhone, FieldStudentID},
	2: {FieldCourse, FieldYear},
	3: {FieldExperienceLevel, FieldProgrammingLanguages},
	4: {FieldAreasOfInterest, FieldMotivation, FieldTimeCommitment},
	5: {FieldReferralSource, FieldGitHubProfile, FieldLinkedInProfile},
}

var stepTitles = map[int]string{
	1: "Basic Info",
	2: "Academic Details",
	3: "Experience Level",
	4: "Interests and Motivation",
	5: "Additional Info",
}

// rules holds the validation rule of every constrained field. hasLaptop and
// previousProjects are unconstrained and have no entry.
var rules = map[Field]rule{
	FieldName: {
		tag: "min=2", message: "Name must be at least 2 characters",
		value: func(a *Answers) any { return a.Name },
	},
	FieldEmail: {
		tag: "required,email", message: "Invalid email address",
		value: func(a *Answers) any { return a.Email },
	},
	// Raw character count, not digits.
	FieldPhone: {
		tag: "min=10", message: "Phone number must be at least 10 digits",
		value: func(a *Answers) any { return a.Phone },
	},
	FieldStudentID: {
		tag: "min=1", message: "Student ID is required",
		value: func(a *Answers) any { return a.StudentID },
	},
	FieldCourse: {
		tag: "required,catalog=course", message: "Please select your course",
		value: func(a *Answers) any { return a.Course },
	},
	FieldYear: {
		tag: "required,catalog=year", message: "Please select your year",
		value: func(a *Answers) any { return a.Year },
	},
	FieldExperienceLevel: {
		tag: "required,catalog=experience", message: "Please select your experience level",
		value: func(a *Answers) any { return a.ExperienceLevel },
	},
	FieldProgrammingLanguages: {
		tag: "min=1,dive,catalog=language", message: "Select at least one programming language",
		value: func(a *Answers) any { return a.ProgrammingLanguages },
	},
	FieldAreasOfInterest: {
		tag: "min=1,dive,catalog=interest", message: "Select at least one area of interest",
		value: func(a *Answers) any { return a.AreasOfInterest },
	},
	FieldMotivation: {
		tag: "min=1", message: "Please share your motivation",
		value: func(a *Answers) any { return a.Motivation },
	},
	FieldTimeCommitment: {
		tag: "required,catalog=commitment", message: "Please select your time commitment",
		value: func(a *Answers) any { return a.TimeCommitment },
	},
	FieldReferralSource: {
		tag: "required,catalog=referral", message: "Please tell us how you heard about ARTEMIZ",
		value: func(a *Answers) any { return a.ReferralSource },
	},
	FieldGitHubProfile: {
		tag: "omitempty,url", message: "Invalid URL",
		value: func(a *Answers) any { return a.GitHubProfile },
	},
	FieldLinkedInProfile: {
		tag: "omitempty,url", message: "Invalid URL",
		value: func(a *Answers) any { return a.LinkedInProfile },
	},
}

// StepFields returns the fields owned by step, or nil for an unknown step.
func StepFields(step int) []Field {
	return steps[step]
}

// StepTitle returns the heading of step.
func StepTitle(step int) string {
	return stepTitles[step]
}
