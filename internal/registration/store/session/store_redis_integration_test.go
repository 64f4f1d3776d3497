//go:build integration

package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"artemiz/internal/registration/models"
	"artemiz/internal/registration/store/session"
	id "artemiz/pkg/domain"
	"artemiz/pkg/platform/sentinel"
	"artemiz/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *session.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = session.NewRedis(s.redis.Client, time.Minute)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	w := models.NewWizard(id.NewSessionID(), time.Now().UTC().Truncate(time.Millisecond))
	w.Answers.ProgrammingLanguages = []string{"Go"}
	s.Require().NoError(s.store.Create(ctx, w))
	s.ErrorIs(s.store.Create(ctx, w), sentinel.ErrConflict)

	got, err := s.store.Get(ctx, w.ID)
	s.Require().NoError(err)
	s.Equal(w.ID, got.ID)
	s.Equal(w.Answers, got.Answers)
	s.True(w.CreatedAt.Equal(got.CreatedAt))

	ttl, err := s.redis.Client.TTL(ctx, "artemiz:wizard:"+w.ID.String()).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
}

func (s *RedisStoreSuite) TestUpdateAbortLeavesValue() {
	ctx := context.Background()
	w := models.NewWizard(id.NewSessionID(), time.Now())
	s.Require().NoError(s.store.Create(ctx, w))

	boom := errors.New("boom")
	_, err := s.store.Update(ctx, w.ID, func(w *models.Wizard) error {
		w.Step = 4
		return boom
	})
	s.ErrorIs(err, boom)

	got, err := s.store.Get(ctx, w.ID)
	s.Require().NoError(err)
	s.Equal(1, got.Step)
}

// TestSingleSubmitter checks that the WATCH transaction lets exactly one
// goroutine move the wizard into Submitting.
func (s *RedisStoreSuite) TestSingleSubmitter() {
	ctx := context.Background()
	w := models.NewWizard(id.NewSessionID(), time.Now())
	s.Require().NoError(s.store.Create(ctx, w))

	const goroutines = 20
	var wg sync.WaitGroup
	var winners, losers atomic.Int32
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Update(ctx, w.ID, func(w *models.Wizard) error {
				if w.Phase != models.PhaseEditing {
					return sentinel.ErrInvalidState
				}
				w.Phase = models.PhaseSubmitting
				return nil
			})
			switch {
			case err == nil:
				winners.Add(1)
			case errors.Is(err, sentinel.ErrInvalidState), errors.Is(err, sentinel.ErrConflict):
				losers.Add(1)
			default:
				s.Failf("unexpected error", "%v", err)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), winners.Load())
	s.Equal(int32(goroutines-1), losers.Load())
}

func (s *RedisStoreSuite) TestDelete() {
	ctx := context.Background()
	w := models.NewWizard(id.NewSessionID(), time.Now())
	s.Require().NoError(s.store.Create(ctx, w))
	s.Require().NoError(s.store.Delete(ctx, w.ID))
	s.ErrorIs(s.store.Delete(ctx, w.ID), sentinel.ErrNotFound)
	_, err := s.store.Get(ctx, w.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
