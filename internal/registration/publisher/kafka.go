// Package publisher announces completed registrations to Kafka.
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"artemiz/internal/registration/models"
	"artemiz/pkg/platform/circuit"
	"artemiz/pkg/platform/sentinel"
)

// Producer is the subset of *kgo.Client used for announcements.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Announcement is the message value written for each registration. It carries
// no contact details beyond what the club team needs to follow up.
type Announcement struct {
	RegistrationID string    `json:"registration_id"`
	SessionID      string    `json:"session_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Course         string    `json:"course"`
	Year           string    `json:"year"`
	Interests      []string  `json:"interests"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// KafkaAnnouncer produces one record per registration, keyed by session.
// A circuit breaker stops producing while the broker keeps failing.
type KafkaAnnouncer struct {
	producer Producer
	topic    string
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

type Option func(*KafkaAnnouncer)

func WithLogger(logger *slog.Logger) Option {
	return func(a *KafkaAnnouncer) {
		a.logger = logger
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(a *KafkaAnnouncer) {
		a.breaker = b
	}
}

// NewKafkaAnnouncer wraps an existing producer.
func NewKafkaAnnouncer(producer Producer, topic string, opts ...Option) *KafkaAnnouncer {
	a := &KafkaAnnouncer{
		producer: producer,
		topic:    topic,
		breaker:  circuit.New("kafka-announcer", circuit.WithFailureThreshold(3), circuit.WithCooldown(30*time.Second)),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewClient builds the franz-go client used in production.
func NewClient(brokers []string, topic string) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
		kgo.ProducerBatchMaxBytes(1<<20),
		kgo.RecordDeliveryTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}

// Announce produces the announcement synchronously.
func (a *KafkaAnnouncer) Announce(ctx context.Context, reg *models.Registration) error {
	if !a.breaker.Allow() {
		return fmt.Errorf("announcer circuit open: %w", sentinel.ErrUnavailable)
	}
	value, err := json.Marshal(Announcement{
		RegistrationID: reg.ID.String(),
		SessionID:      reg.SessionID.String(),
		Name:           reg.Answers.Name,
		Email:          reg.Answers.Email,
		Course:         reg.Answers.Course,
		Year:           reg.Answers.Year,
		Interests:      reg.Answers.AreasOfInterest,
		SubmittedAt:    reg.SubmittedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal announcement: %w", err)
	}
	record := &kgo.Record{
		Topic: a.topic,
		Key:   []byte(reg.SessionID.String()),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event", Value: []byte("registration.submitted")},
		},
	}
	if err := a.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		if _, change := a.breaker.RecordFailure(); change.Opened {
			a.logger.WarnContext(ctx, "announcer circuit opened", "topic", a.topic)
		}
		return errors.Join(sentinel.ErrUnavailable, fmt.Errorf("produce announcement: %w", err))
	}
	if _, change := a.breaker.RecordSuccess(); change.Closed {
		a.logger.InfoContext(ctx, "announcer circuit closed", "topic", a.topic)
	}
	return nil
}
