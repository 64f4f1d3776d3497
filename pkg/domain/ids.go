// Package domain holds typed identifiers shared across modules.
//
// IDs are parsed once at the trust boundary (URL params, JSON bodies) so the
// rest of the code never handles raw strings for them.
package domain

import (
	"github.com/google/uuid"

	dErrors "artemiz/pkg/domain-errors"
)

// SessionID identifies a registration wizard session.
type SessionID uuid.UUID

// RegistrationID identifies a completed registration.
type RegistrationID uuid.UUID

// NewSessionID returns a random session ID.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// NewRegistrationID returns a random registration ID.
func NewRegistrationID() RegistrationID { return RegistrationID(uuid.New()) }

// ParseSessionID parses a non-nil UUID into a SessionID.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session id")
	return SessionID(u), err
}

// ParseRegistrationID parses a non-nil UUID into a RegistrationID.
func ParseRegistrationID(s string) (RegistrationID, error) {
	u, err := parseUUID(s, "registration id")
	return RegistrationID(u), err
}

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" cannot be nil")
	}
	return u, nil
}

func (id SessionID) String() string { return uuid.UUID(id).String() }
func (id SessionID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id SessionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *SessionID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id RegistrationID) String() string { return uuid.UUID(id).String() }
func (id RegistrationID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id RegistrationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *RegistrationID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}
