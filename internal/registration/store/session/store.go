// Package session stores wizard sessions. Every mutation is an atomic
// read-modify-write through Update.
package session

import (
	"artemiz/internal/registration/models"
)

// UpdateFunc mutates a private copy of the wizard. Returning an error aborts
// the update and leaves the stored wizard untouched.
type UpdateFunc func(w *models.Wizard) error

const keyPrefix = "artemiz:wizard:"

func keyFor(w *models.Wizard) string {
	return key(w.ID)
}
