package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPublisherEmit(t *testing.T) {
	t.Run("stamps missing timestamp", func(t *testing.T) {
		p := NewPublisher(1)
		fixed := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
		p.now = func() time.Time { return fixed }

		require.NoError(t, p.Emit(context.Background(), Event{Action: EventWizardStarted}))
		ev := <-p.Inbox()
		assert.Equal(t, fixed, ev.Timestamp)
	})

	t.Run("never blocks when full", func(t *testing.T) {
		p := NewPublisher(1)
		require.NoError(t, p.Emit(context.Background(), Event{Action: EventStepAdvanced}))
		err := p.Emit(context.Background(), Event{Action: EventStepAdvanced})
		assert.ErrorIs(t, err, ErrBufferFull)
	})
}

func TestWorkerPersistsAndDrains(t *testing.T) {
	p := NewPublisher(16)
	store := NewInMemoryStore()
	w := NewWorker(store, p.Inbox(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, p.Emit(ctx, Event{SessionID: "s1", Action: EventWizardStarted}))
	require.Eventually(t, func() bool {
		events, _ := store.ListBySession(context.Background(), "s1")
		return len(events) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	events, err := store.ListBySession(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, EventWizardStarted, events[0].Action)
}

func TestWorkerDrainFlushesBuffered(t *testing.T) {
	p := NewPublisher(4)
	store := NewInMemoryStore()
	for range 3 {
		require.NoError(t, p.Emit(context.Background(), Event{SessionID: "s2", Action: EventStepAdvanced}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, NewWorker(store, p.Inbox(), nil).Run(ctx))

	events, err := store.ListBySession(context.Background(), "s2")
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

type failingStore struct{ calls int }

func (f *failingStore) Append(context.Context, Event) error {
	f.calls++
	return errors.New("disk full")
}

func (f *failingStore) ListBySession(context.Context, string) ([]Event, error) { return nil, nil }

func TestWorkerSurvivesStoreErrors(t *testing.T) {
	p := NewPublisher(4)
	store := &failingStore{}
	require.NoError(t, p.Emit(context.Background(), Event{Action: EventSubmitted}))
	require.NoError(t, p.Emit(context.Background(), Event{Action: EventSubmitted}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, NewWorker(store, p.Inbox(), nil).Run(ctx))
	assert.Equal(t, 2, store.calls)
}
