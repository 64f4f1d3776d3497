package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "artemiz/pkg/domain-errors"
)

func TestAnswersToggle(t *testing.T) {
	t.Run("toggle twice is a round trip", func(t *testing.T) {
		for _, field := range []Field{FieldProgrammingLanguages, FieldAreasOfInterest} {
			a := validAnswers()
			before := a.Clone()

			require.NoError(t, a.Toggle(field, "Rust"))
			require.NoError(t, a.Toggle(field, "Rust"))

			assert.Equal(t, before, a, "field %s", field)
		}
	})

	t.Run("absent option is appended", func(t *testing.T) {
		a := Answers{ProgrammingLanguages: []string{"Go"}}
		require.NoError(t, a.Toggle(FieldProgrammingLanguages, "C"))
		assert.Equal(t, []string{"Go", "C"}, a.ProgrammingLanguages)
	})

	t.Run("present option is removed", func(t *testing.T) {
		a := Answers{AreasOfInterest: []string{"IoT", "DevOps", "Blockchain"}}
		require.NoError(t, a.Toggle(FieldAreasOfInterest, "DevOps"))
		assert.Equal(t, []string{"IoT", "Blockchain"}, a.AreasOfInterest)
	})

	t.Run("non multi-select field is rejected", func(t *testing.T) {
		a := Answers{}
		err := a.Toggle(FieldCourse, "bca")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("empty option is rejected", func(t *testing.T) {
		a := Answers{}
		err := a.Toggle(FieldProgrammingLanguages, "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		assert.Empty(t, a.ProgrammingLanguages)
	})
}

func TestPatch(t *testing.T) {
	name := "Al"
	laptop := true
	empty := ""

	t.Run("only set fields change", func(t *testing.T) {
		a := validAnswers()
		Patch{Name: &name, HasLaptop: &laptop, GitHubProfile: &empty}.ApplyTo(&a)

		want := validAnswers()
		want.Name = "Al"
		want.HasLaptop = true
		want.GitHubProfile = ""
		assert.Equal(t, want, a)
	})

	t.Run("multi-select replacement drops duplicates", func(t *testing.T) {
		a := Answers{}
		Patch{ProgrammingLanguages: []string{"Go", "C", "Go"}}.ApplyTo(&a)
		assert.Equal(t, []string{"Go", "C"}, a.ProgrammingLanguages)
	})

	t.Run("multi-select replacement trims and drops blanks", func(t *testing.T) {
		a := Answers{}
		Patch{AreasOfInterest: []string{" Web ", "", "Web", "DevOps"}}.ApplyTo(&a)
		assert.Equal(t, []string{"Web", "DevOps"}, a.AreasOfInterest)
	})

	t.Run("empty multi-select clears the selection", func(t *testing.T) {
		a := validAnswers()
		Patch{AreasOfInterest: []string{}}.ApplyTo(&a)
		assert.Empty(t, a.AreasOfInterest)
		assert.NotNil(t, a.AreasOfInterest)
	})

	t.Run("empty patch", func(t *testing.T) {
		assert.True(t, Patch{}.IsEmpty())
		assert.False(t, Patch{Name: &name}.IsEmpty())
		assert.False(t, Patch{AreasOfInterest: []string{}}.IsEmpty())
	})
}

func TestAnswersClone(t *testing.T) {
	a := validAnswers()
	c := a.Clone()
	c.ProgrammingLanguages[0] = "Rust"
	assert.Equal(t, "Go", a.ProgrammingLanguages[0])
}
