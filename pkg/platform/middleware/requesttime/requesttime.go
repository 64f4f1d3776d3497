// Package requesttime provides middleware for request-scoped time.
// Every operation within one HTTP request sees the same "now", so the
// submission timestamp, audit lines and wizard UpdatedAt agree.
package requesttime

import (
	"net/http"
	"time"

	"artemiz/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
