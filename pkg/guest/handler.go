package guest

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

// Handler provides HTTP handlers for the guests API.
type Handler struct {
	logger  *slog.Logger
	audit   *audit.Writer
	service *Service
}

func NewHandler(logger *slog.Logger, audit *audit.Writer, service *Service) *Handler {
	return &Handler{logger: logger, audit: audit, service: service}
}

// EventRoutes returns the routes mounted under /events/{eventID}/guests.
func (h *Handler) EventRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.handleList)
	r.With(auth.RequireMinRole(auth.RoleHost)).Post("/", h.handleCreate)
	return r
}

// Routes returns the routes mounted at /guests for per-guest operations.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/{guestID}", func(r chi.Router) {
		r.Get("/", h.handleGet)
		r.Get("/gifts", h.handleListGifts)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireMinRole(auth.RoleHost))
			r.Put("/", h.handleUpdate)
			r.Delete("/", h.handleDelete)
			r.Post("/check-in", h.handleCheckIn)
			r.Post("/gifts", h.handleAddGift)
		})
	})
	return r
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	eventID, ok := parseID(w, r, "eventID")
	if !ok {
		return
	}
	params, err := httpserver.ParseOffsetParams(r)
	if err != nil {
		httpserver.RespondError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	rows, total, err := h.service.List(r.Context(), eventID, params.PageSize, params.Offset)
	if err != nil {
		h.respondServiceError(w, err, "listing guests")
		return
	}

	items := make([]Response, len(rows))
	for i, row := range rows {
		items[i] = row.ToResponse()
	}
	httpserver.Respond(w, http.StatusOK, httpserver.NewOffsetPage(items, params, total))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	eventID, ok := parseID(w, r, "eventID")
	if !ok {
		return
	}

	var req CreateRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}

	row, err := h.service.Create(r.Context(), auth.FromContext(r.Context()), eventID, req)
	if err != nil {
		h.respondServiceError(w, err, "creating guest")
		return
	}

	if h.audit != nil {
		detail, _ := json.Marshal(map[string]string{"name": row.Name, "side": row.Side})
		h.audit.LogFromRequest(r, "create", "guest", row.ID, detail)
	}
	httpserver.Respond(w, http.StatusCreated, row.ToResponse())
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "guestID")
	if !ok {
		return
	}
	row, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "getting guest")
		return
	}
	httpserver.Respond(w, http.StatusOK, row.ToResponse())
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "guestID")
	if !ok {
		return
	}

	var req UpdateRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}

	row, err := h.service.Update(r.Context(), auth.FromContext(r.Context()), id, req)
	if err != nil {
		h.respondServiceError(w, err, "updating guest")
		return
	}
	httpserver.Respond(w, http.StatusOK, row.ToResponse())
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "guestID")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), auth.FromContext(r.Context()), id); err != nil {
		h.respondServiceError(w, err, "deleting guest")
		return
	}

	if h.audit != nil {
		h.audit.LogFromRequest(r, "delete", "guest", id, nil)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "guestID")
	if !ok {
		return
	}

	row, err := h.service.CheckIn(r.Context(), auth.FromContext(r.Context()), id)
	if err != nil {
		h.respondServiceError(w, err, "checking in guest")
		return
	}

	if h.audit != nil {
		h.audit.LogFromRequest(r, "check_in", "guest", id, nil)
	}
	httpserver.Respond(w, http.StatusOK, row.ToResponse())
}

func (h *Handler) handleAddGift(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "guestID")
	if !ok {
		return
	}

	var req GiftRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}

	gift, err := h.service.AddGift(r.Context(), auth.FromContext(r.Context()), id, req)
	if err != nil {
		h.respondServiceError(w, err, "recording gift")
		return
	}

	if h.audit != nil {
		detail, _ := json.Marshal(map[string]any{"amount": gift.Amount, "currency": gift.Currency})
		h.audit.LogFromRequest(r, "add_gift", "guest", id, detail)
	}
	httpserver.Respond(w, http.StatusCreated, gift.ToResponse())
}

func (h *Handler) handleListGifts(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "guestID")
	if !ok {
		return
	}

	gifts, err := h.service.ListGifts(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "listing gifts")
		return
	}

	items := make([]GiftResponse, len(gifts))
	for i, g := range gifts {
		items[i] = g.ToResponse()
	}
	httpserver.Respond(w, http.StatusOK, items)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpserver.RespondError(w, http.StatusNotFound, "not_found", "guest or event not found")
	case errors.Is(err, ErrForbidden):
		httpserver.RespondError(w, http.StatusForbidden, "forbidden", "you do not own this event")
	default:
		h.logger.Error(op, "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "operation failed")
	}
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		httpserver.RespondError(w, http.StatusBadRequest, "bad_request", "invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}
