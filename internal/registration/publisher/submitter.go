package publisher

import (
	"context"
	"log/slog"

	"artemiz/internal/registration/models"
)

// Store persists a registration. It is the primary submission boundary.
type Store interface {
	Submit(ctx context.Context, reg *models.Registration) error
}

// Announcer publishes a persisted registration.
type Announcer interface {
	Announce(ctx context.Context, reg *models.Registration) error
}

// AnnouncingSubmitter persists first and then announces. Announcement
// failures are logged and never fail the submission, because the record is
// already stored.
type AnnouncingSubmitter struct {
	store     Store
	announcer Announcer
	logger    *slog.Logger
}

func NewAnnouncingSubmitter(store Store, announcer Announcer, logger *slog.Logger) *AnnouncingSubmitter {
	return &AnnouncingSubmitter{store: store, announcer: announcer, logger: logger}
}

func (s *AnnouncingSubmitter) Submit(ctx context.Context, reg *models.Registration) error {
	if err := s.store.Submit(ctx, reg); err != nil {
		return err
	}
	if s.announcer == nil {
		return nil
	}
	if err := s.announcer.Announce(ctx, reg); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to announce registration",
			"registration_id", reg.ID.String(),
			"error", err,
		)
	}
	return nil
}
