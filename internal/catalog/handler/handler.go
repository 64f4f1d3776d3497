package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"artemiz/internal/catalog"
	dErrors "artemiz/pkg/domain-errors"
	"artemiz/pkg/platform/httputil"
)

// Handler serves the read-only club content.
type Handler struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// New creates a catalog Handler.
func New(c *catalog.Catalog, logger *slog.Logger) *Handler {
	return &Handler{catalog: c, logger: logger}
}

// Register mounts the content routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/club", h.handleClub)
	r.Get("/api/catalog/options", h.handleOptions)
	r.Get("/api/team", h.handleTeam)
	r.Get("/api/team/{id}", h.handleMember)
	r.Get("/api/events", h.handleEvents)
}

type teamResponse struct {
	Members []catalog.Member `json:"members"`
	Faculty []catalog.Member `json:"faculty"`
}

type eventsResponse struct {
	Events []catalog.Event `json:"events"`
}

func (h *Handler) handleClub(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.catalog.Club)
}

func (h *Handler) handleOptions(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.catalog.Options)
}

func (h *Handler) handleTeam(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, teamResponse{
		Members: h.catalog.Members,
		Faculty: h.catalog.Faculty,
	})
}

func (h *Handler) handleMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, ok := h.catalog.Member(id)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "team member not found"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	status := catalog.EventStatus(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status"))))
	if status != "" && !status.IsValid() {
		h.logger.WarnContext(r.Context(), "invalid event status filter", "status", status)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "status must be upcoming, ongoing or completed"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, eventsResponse{Events: h.catalog.EventsByStatus(status)})
}
