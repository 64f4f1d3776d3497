package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"artemiz/internal/registration/models"
	id "artemiz/pkg/domain"
	dErrors "artemiz/pkg/domain-errors"
	"artemiz/pkg/platform/httputil"
	"artemiz/pkg/requestcontext"
)

// Service is the registration wizard API the handler drives.
type Service interface {
	Start(ctx context.Context) (*models.Wizard, error)
	Get(ctx context.Context, sessionID id.SessionID) (*models.Wizard, error)
	UpdateAnswers(ctx context.Context, sessionID id.SessionID, patch models.Patch) (*models.Wizard, error)
	Toggle(ctx context.Context, sessionID id.SessionID, field models.Field, option string) (*models.Wizard, error)
	Next(ctx context.Context, sessionID id.SessionID) (*models.Wizard, error)
	Previous(ctx context.Context, sessionID id.SessionID) (*models.Wizard, error)
	Submit(ctx context.Context, sessionID id.SessionID) (*models.Wizard, error)
	Abandon(ctx context.Context, sessionID id.SessionID) error
	ListRegistrations(ctx context.Context) ([]*models.Registration, error)
	RedirectDelay() time.Duration
}

// Handler serves the registration wizard JSON API.
type Handler struct {
	service     Service
	logger      *slog.Logger
	submitGuard func(http.Handler) http.Handler
}

// New creates a registration Handler. submitGuard wraps the submit route
// (rate limiting) and may be nil.
func New(service Service, logger *slog.Logger, submitGuard func(http.Handler) http.Handler) *Handler {
	if submitGuard == nil {
		submitGuard = func(next http.Handler) http.Handler { return next }
	}
	return &Handler{service: service, logger: logger, submitGuard: submitGuard}
}

// Register mounts the wizard routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/registrations", func(r chi.Router) {
		r.Post("/", h.handleStart)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Delete("/", h.handleAbandon)
			r.Patch("/answers", h.handleUpdateAnswers)
			r.Post("/toggle", h.handleToggle)
			r.Post("/next", h.handleNext)
			r.Post("/previous", h.handlePrevious)
			r.With(h.submitGuard).Post("/submit", h.handleSubmit)
		})
	})
}

// RegisterAdmin mounts the admin routes. Callers put the admin guard on r.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/registrations", h.handleListRegistrations)
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wiz, err := h.service.Start(ctx)
	if err != nil {
		h.writeError(ctx, w, "failed to start registration", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, h.toView(wiz))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	wiz, err := h.service.Get(ctx, sessionID)
	if err != nil {
		h.writeError(ctx, w, "failed to load registration", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.toView(wiz))
}

func (h *Handler) handleUpdateAnswers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var patch models.Patch
	if !h.decode(w, r, &patch) {
		return
	}
	wiz, err := h.service.UpdateAnswers(ctx, sessionID, patch)
	h.writeResult(ctx, w, "failed to update answers", wiz, err)
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var req toggleRequest
	if !h.decode(w, r, &req) {
		return
	}
	wiz, err := h.service.Toggle(ctx, sessionID, req.Field, req.Option)
	h.writeResult(ctx, w, "failed to toggle option", wiz, err)
}

func (h *Handler) handleNext(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	wiz, err := h.service.Next(ctx, sessionID)
	h.writeResult(ctx, w, "failed to advance registration", wiz, err)
}

func (h *Handler) handlePrevious(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	wiz, err := h.service.Previous(ctx, sessionID)
	h.writeResult(ctx, w, "failed to go back", wiz, err)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	wiz, err := h.service.Submit(ctx, sessionID)
	h.writeResult(ctx, w, "failed to submit registration", wiz, err)
}

func (h *Handler) handleAbandon(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	if err := h.service.Abandon(ctx, sessionID); err != nil {
		h.writeError(ctx, w, "failed to abandon registration", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListRegistrations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	regs, err := h.service.ListRegistrations(ctx)
	if err != nil {
		h.writeError(ctx, w, "failed to list registrations", err)
		return
	}
	if regs == nil {
		regs = []*models.Registration{}
	}
	httputil.WriteJSON(w, http.StatusOK, registrationsResponse{Registrations: regs, Count: len(regs)})
}

func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) (id.SessionID, bool) {
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "id"))
	if err != nil {
		h.logger.WarnContext(r.Context(), "invalid registration session id",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return id.SessionID{}, false
	}
	return sessionID, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "invalid registration request body",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return false
	}
	return true
}

// writeResult writes the view. When the operation failed but still produced
// a wizard (validation or boundary failure) the view goes out with the
// error's status and code.
func (h *Handler) writeResult(ctx context.Context, w http.ResponseWriter, msg string, wiz *models.Wizard, err error) {
	if err == nil {
		httputil.WriteJSON(w, http.StatusOK, h.toView(wiz))
		return
	}
	if wiz == nil {
		h.writeError(ctx, w, msg, err)
		return
	}
	h.log(ctx, msg, err)
	resp := errorView{Error: string(dErrors.CodeInternal), View: h.toView(wiz)}
	if de, ok := dErrors.From(err); ok {
		resp.Error = string(de.Code)
		resp.ErrorDescription = de.Message
	}
	httputil.WriteJSON(w, httputil.StatusFor(err), resp)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.log(ctx, msg, err)
	httputil.WriteError(w, err)
}

func (h *Handler) log(ctx context.Context, msg string, err error) {
	attrs := []any{"request_id", requestcontext.RequestID(ctx), "error", err}
	if httputil.StatusFor(err) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, attrs...)
		return
	}
	h.logger.WarnContext(ctx, msg, attrs...)
}
