package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"artemiz/internal/registration/models"
	id "artemiz/pkg/domain"
	"artemiz/pkg/platform/circuit"
	"artemiz/pkg/platform/sentinel"
)

type fakeProducer struct {
	mu      sync.Mutex
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		if f.err == nil {
			f.records = append(f.records, r)
		}
		out = append(out, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return out
}

func testRegistration() *models.Registration {
	return &models.Registration{
		ID:        id.NewRegistrationID(),
		SessionID: id.NewSessionID(),
		Answers: models.Answers{
			Name:            "Ada",
			Email:           "ada@example.com",
			Course:          "bca",
			Year:            "1",
			AreasOfInterest: []string{"IoT"},
		},
		SubmittedAt: time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC),
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestKafkaAnnouncer(t *testing.T) {
	t.Run("produces keyed announcement", func(t *testing.T) {
		p := &fakeProducer{}
		a := NewKafkaAnnouncer(p, "artemiz.registrations", WithLogger(quietLogger()))
		reg := testRegistration()

		require.NoError(t, a.Announce(context.Background(), reg))

		require.Len(t, p.records, 1)
		rec := p.records[0]
		assert.Equal(t, "artemiz.registrations", rec.Topic)
		assert.Equal(t, reg.SessionID.String(), string(rec.Key))

		var msg Announcement
		require.NoError(t, json.Unmarshal(rec.Value, &msg))
		assert.Equal(t, reg.ID.String(), msg.RegistrationID)
		assert.Equal(t, "Ada", msg.Name)
		assert.Equal(t, []string{"IoT"}, msg.Interests)
	})

	t.Run("broker failures open the circuit", func(t *testing.T) {
		p := &fakeProducer{err: errors.New("broker down")}
		b := circuit.New("test", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))
		a := NewKafkaAnnouncer(p, "t", WithBreaker(b), WithLogger(quietLogger()))

		for range 2 {
			err := a.Announce(context.Background(), testRegistration())
			require.ErrorIs(t, err, sentinel.ErrUnavailable)
		}
		assert.True(t, b.IsOpen())

		p.err = nil
		err := a.Announce(context.Background(), testRegistration())
		require.ErrorIs(t, err, sentinel.ErrUnavailable)
		assert.Empty(t, p.records, "open circuit must not produce")
	})
}

type recordingStore struct {
	regs []*models.Registration
	err  error
}

func (s *recordingStore) Submit(_ context.Context, reg *models.Registration) error {
	if s.err != nil {
		return s.err
	}
	s.regs = append(s.regs, reg)
	return nil
}

type failingAnnouncer struct{ calls int }

func (a *failingAnnouncer) Announce(context.Context, *models.Registration) error {
	a.calls++
	return errors.New("announce failed")
}

func TestAnnouncingSubmitter(t *testing.T) {
	t.Run("announcement failure does not fail submission", func(t *testing.T) {
		store := &recordingStore{}
		ann := &failingAnnouncer{}
		s := NewAnnouncingSubmitter(store, ann, quietLogger())

		require.NoError(t, s.Submit(context.Background(), testRegistration()))
		assert.Len(t, store.regs, 1)
		assert.Equal(t, 1, ann.calls)
	})

	t.Run("store failure skips announcement", func(t *testing.T) {
		store := &recordingStore{err: errors.New("db down")}
		ann := &failingAnnouncer{}
		s := NewAnnouncingSubmitter(store, ann, quietLogger())

		require.Error(t, s.Submit(context.Background(), testRegistration()))
		assert.Zero(t, ann.calls)
	})

	t.Run("nil announcer", func(t *testing.T) {
		store := &recordingStore{}
		s := NewAnnouncingSubmitter(store, nil, nil)
		require.NoError(t, s.Submit(context.Background(), testRegistration()))
		assert.Len(t, store.regs, 1)
	})
}
