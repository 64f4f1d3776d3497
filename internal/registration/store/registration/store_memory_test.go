package registration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artemiz/internal/registration/models"
	id "artemiz/pkg/domain"
)

func newRegistration(name string, at time.Time) *models.Registration {
	return &models.Registration{
		ID:          id.NewRegistrationID(),
		SessionID:   id.NewSessionID(),
		Answers:     models.Answers{Name: name, ProgrammingLanguages: []string{"Go"}},
		SubmittedAt: at,
	}
}

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

	t.Run("lists newest first", func(t *testing.T) {
		s := NewInMemory()
		require.NoError(t, s.Submit(ctx, newRegistration("first", base)))
		require.NoError(t, s.Submit(ctx, newRegistration("second", base.Add(time.Minute))))

		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "second", list[0].Answers.Name)
		assert.Equal(t, "first", list[1].Answers.Name)
	})

	t.Run("same session is stored once", func(t *testing.T) {
		s := NewInMemory()
		reg := newRegistration("once", base)
		require.NoError(t, s.Submit(ctx, reg))

		retry := *reg
		retry.ID = id.NewRegistrationID()
		require.NoError(t, s.Submit(ctx, &retry))

		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, reg.ID, list[0].ID)
	})

	t.Run("stored copy is isolated from caller", func(t *testing.T) {
		s := NewInMemory()
		reg := newRegistration("isolated", base)
		require.NoError(t, s.Submit(ctx, reg))
		reg.Answers.ProgrammingLanguages[0] = "Rust"

		list, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Go"}, list[0].Answers.ProgrammingLanguages)
	})
}
