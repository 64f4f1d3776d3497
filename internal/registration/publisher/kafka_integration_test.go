//go:build integration

package publisher_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"artemiz/internal/registration/models"
	"artemiz/internal/registration/publisher"
	id "artemiz/pkg/domain"
	"artemiz/pkg/testutil/containers"
)

func TestKafkaAnnouncerAgainstRedpanda(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rp := containers.NewRedpandaContainer(t)
	const topic = "artemiz.registrations.test"

	client, err := publisher.NewClient([]string{rp.Broker}, topic)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	reg := &models.Registration{
		ID:          id.NewRegistrationID(),
		SessionID:   id.NewSessionID(),
		Answers:     models.Answers{Name: "Ada", Email: "ada@example.com"},
		SubmittedAt: time.Now().UTC(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, publisher.NewKafkaAnnouncer(client, topic).Announce(ctx, reg))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	t.Cleanup(consumer.Close)

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())
	records := fetches.Records()
	require.NotEmpty(t, records)

	var msg publisher.Announcement
	require.NoError(t, json.Unmarshal(records[0].Value, &msg))
	require.Equal(t, reg.ID.String(), msg.RegistrationID)
	require.Equal(t, reg.SessionID.String(), string(records[0].Key))
}
