package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services translate them into domain errors.
//
//   - ErrNotFound: session or registration does not exist (or has expired)
//   - ErrConflict: a concurrent writer changed the record first
//   - ErrExpired: session outlived its TTL
//   - ErrInvalidState: record is in the wrong phase for the operation
//   - ErrUnavailable: backing store or broker temporarily unavailable
//
// Field validation failures are not sentinels; use pkg/domain-errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
