package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"artemiz/internal/audit"
	id "artemiz/pkg/domain"
	dErrors "artemiz/pkg/domain-errors"
	"artemiz/pkg/platform/httputil"
	"artemiz/pkg/requestcontext"
)

type Store interface {
	ListBySession(ctx context.Context, sessionID string) ([]audit.Event, error)
}

// Handler exposes the audit trail of one wizard session to admins.
type Handler struct {
	store  Store
	logger *slog.Logger
}

func New(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/registrations/{id}/audit", h.handleListEvents)
}

type eventsResponse struct {
	SessionID string        `json:"sessionId"`
	Events    []audit.Event `json:"events"`
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	events, err := h.store.ListBySession(ctx, sessionID.String())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit events",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events"))
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, eventsResponse{SessionID: sessionID.String(), Events: events})
}
