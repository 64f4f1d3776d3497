package registration

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"artemiz/internal/audit"
	"artemiz/internal/registration/models"
	id "artemiz/pkg/domain"
	"artemiz/pkg/requestcontext"
	txcontext "artemiz/pkg/platform/tx"
)

const insertRegistration = `
INSERT INTO registrations (
    id, session_id, full_name, email, phone, student_id, course, year,
    experience, languages, interests, previous_projects, motivation,
    time_commitment, has_laptop, github_profile, linkedin_profile,
    referral_source, submitted_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
ON CONFLICT (session_id) DO NOTHING`

const listRegistrations = `
SELECT id, session_id, full_name, email, phone, student_id, course, year,
       experience, languages, interests, previous_projects, motivation,
       time_commitment, has_laptop, github_profile, linkedin_profile,
       referral_source, submitted_at
FROM registrations
ORDER BY submitted_at DESC, id`

// PostgresStore persists registrations in the registrations table.
type PostgresStore struct {
	db    *sql.DB
	trail audit.Store
}

type PostgresOption func(*PostgresStore)

// WithAuditTrail records a registration_stored event in the same transaction
// as each new registration row.
func WithAuditTrail(trail audit.Store) PostgresOption {
	return func(s *PostgresStore) {
		s.trail = trail
	}
}

func NewPostgres(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit inserts reg. A second registration for the same session is ignored
// and records no audit event.
func (s *PostgresStore) Submit(ctx context.Context, reg *models.Registration) error {
	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		inserted, err := s.insert(ctx, reg)
		if err != nil || !inserted || s.trail == nil {
			return err
		}
		err = s.trail.Append(ctx, audit.Event{
			Timestamp: reg.SubmittedAt,
			SessionID: reg.SessionID.String(),
			Action:    audit.EventRegistrationStored,
			RequestID: requestcontext.RequestID(ctx),
		})
		if err != nil {
			return fmt.Errorf("record registration: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) insert(ctx context.Context, reg *models.Registration) (bool, error) {
	a := reg.Answers
	res, err := txcontext.ExecutorFor(ctx, s.db).ExecContext(ctx, insertRegistration,
		uuid.UUID(reg.ID), uuid.UUID(reg.SessionID),
		a.Name, a.Email, a.Phone, a.StudentID, a.Course, a.Year,
		a.ExperienceLevel, pq.Array(a.ProgrammingLanguages), pq.Array(a.AreasOfInterest),
		a.PreviousProjects, a.Motivation, a.TimeCommitment, a.HasLaptop,
		a.GitHubProfile, a.LinkedInProfile, a.ReferralSource, reg.SubmittedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert registration: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert registration: %w", err)
	}
	return n > 0, nil
}

// List returns registrations newest first.
func (s *PostgresStore) List(ctx context.Context) ([]*models.Registration, error) {
	rows, err := s.db.QueryContext(ctx, listRegistrations)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var out []*models.Registration
	for rows.Next() {
		var (
			regID, sessionID uuid.UUID
			r                models.Registration
			a                = &r.Answers
		)
		err := rows.Scan(
			&regID, &sessionID,
			&a.Name, &a.Email, &a.Phone, &a.StudentID, &a.Course, &a.Year,
			&a.ExperienceLevel, pq.Array(&a.ProgrammingLanguages), pq.Array(&a.AreasOfInterest),
			&a.PreviousProjects, &a.Motivation, &a.TimeCommitment, &a.HasLaptop,
			&a.GitHubProfile, &a.LinkedInProfile, &a.ReferralSource, &r.SubmittedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		r.ID = id.RegistrationID(regID)
		r.SessionID = id.SessionID(sessionID)
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}
	return out, nil
}
