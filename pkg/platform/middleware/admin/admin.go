package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	dErrors "artemiz/pkg/domain-errors"
	"artemiz/pkg/platform/httputil"
	"artemiz/pkg/requestcontext"
)

// RequireAdminToken guards the admin routes with a shared token sent in
// X-Admin-Token. An empty expected token disables the admin surface entirely.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Admin-Token")
			// constant-time comparison
			if expectedToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "admin token required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
