package event

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vannyakh/pkasla-pro-sub001/internal/audit"
	"github.com/vannyakh/pkasla-pro-sub001/internal/auth"
	"github.com/vannyakh/pkasla-pro-sub001/internal/httpserver"
)

// Handler provides HTTP handlers for the events API.
type Handler struct {
	logger  *slog.Logger
	audit   *audit.Writer
	service *Service
}

func NewHandler(logger *slog.Logger, audit *audit.Writer, service *Service) *Handler {
	return &Handler{logger: logger, audit: audit, service: service}
}

// Routes returns a chi.Router with event routes mounted. guestRoutes, when
// non-nil, is mounted under each event for guest management.
func (h *Handler) Routes(guestRoutes chi.Router) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.handleList)
	r.With(auth.RequireMinRole(auth.RoleHost)).Post("/", h.handleCreate)
	r.Route("/{eventID}", func(r chi.Router) {
		r.Get("/", h.handleGet)
		r.With(auth.RequireMinRole(auth.RoleHost)).Put("/", h.handleUpdate)
		r.With(auth.RequireMinRole(auth.RoleHost)).Delete("/", h.handleDelete)
		if guestRoutes != nil {
			r.Mount("/guests", guestRoutes)
		}
	})
	return r
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	identity := auth.FromContext(r.Context())
	if identity == nil {
		httpserver.RespondError(w, http.StatusUnauthorized, "unauthorized", "missing authentication")
		return
	}

	params, err := httpserver.ParseOffsetParams(r)
	if err != nil {
		httpserver.RespondError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	rows, total, err := h.service.List(r.Context(), identity, params.PageSize, params.Offset)
	if err != nil {
		h.logger.Error("listing events", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to list events")
		return
	}

	items := make([]Response, len(rows))
	for i, row := range rows {
		items[i] = row.ToResponse()
	}
	httpserver.Respond(w, http.StatusOK, httpserver.NewOffsetPage(items, params, total))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	identity := auth.FromContext(r.Context())
	if identity == nil || identity.UserID == nil {
		httpserver.RespondError(w, http.StatusUnauthorized, "unauthorized", "missing authentication")
		return
	}

	var req CreateRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}

	row, err := h.service.Create(r.Context(), *identity.UserID, req)
	if err != nil {
		h.logger.Error("creating event", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to create event")
		return
	}

	if h.audit != nil {
		detail, _ := json.Marshal(map[string]string{"name": row.Name})
		h.audit.LogFromRequest(r, "create", "event", row.ID, detail)
	}
	httpserver.Respond(w, http.StatusCreated, row.ToResponse())
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEventID(w, r)
	if !ok {
		return
	}

	row, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "getting event")
		return
	}
	httpserver.Respond(w, http.StatusOK, row.ToResponse())
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	identity := auth.FromContext(r.Context())
	id, ok := parseEventID(w, r)
	if !ok {
		return
	}

	var req UpdateRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}

	row, err := h.service.Update(r.Context(), identity, id, req)
	if err != nil {
		h.respondServiceError(w, err, "updating event")
		return
	}
	httpserver.Respond(w, http.StatusOK, row.ToResponse())
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	identity := auth.FromContext(r.Context())
	id, ok := parseEventID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), identity, id); err != nil {
		h.respondServiceError(w, err, "deleting event")
		return
	}

	if h.audit != nil {
		h.audit.LogFromRequest(r, "delete", "event", id, nil)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpserver.RespondError(w, http.StatusNotFound, "not_found", "event not found")
	case errors.Is(err, ErrForbidden):
		httpserver.RespondError(w, http.StatusForbidden, "forbidden", "you do not own this event")
	default:
		h.logger.Error(op, "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "operation failed")
	}
}

func parseEventID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		httpserver.RespondError(w, http.StatusBadRequest, "bad_request", "invalid event id")
		return uuid.Nil, false
	}
	return id, true
}
