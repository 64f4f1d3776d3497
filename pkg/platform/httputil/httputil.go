// Package httputil holds the JSON response helpers shared by all handlers.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "artemiz/pkg/domain-errors"
)

// ErrorResponse is the error envelope written for every failed request.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the JSON error envelope.
// Internal errors never leak their description.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeInternal
	msg := ""
	if de, ok := dErrors.From(err); ok {
		code = de.Code
		msg = de.Message
	}
	resp := ErrorResponse{Error: string(code)}
	if code != dErrors.CodeInternal {
		resp.ErrorDescription = msg
	}
	WriteJSON(w, dErrors.HTTPStatus(code), resp)
}

// StatusFor returns the HTTP status WriteError would use for err.
func StatusFor(err error) int {
	if de, ok := dErrors.From(err); ok {
		return dErrors.HTTPStatus(de.Code)
	}
	return http.StatusInternalServerError
}
