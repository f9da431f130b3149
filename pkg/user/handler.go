package user

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/vannyakh/pkasla-pro-sub001/internal/audit"
	"github.com/vannyakh/pkasla-pro-sub001/internal/auth"
	"github.com/vannyakh/pkasla-pro-sub001/internal/httpserver"
)

// Handler provides HTTP handlers for the users API.
type Handler struct {
	logger *slog.Logger
	audit  *audit.Writer
	store  *Store
}

func NewHandler(logger *slog.Logger, audit *audit.Writer, store *Store) *Handler {
	return &Handler{logger: logger, audit: audit, store: store}
}

// Routes returns a chi.Router with user routes mounted. Account creation is
// admin-only; the /me routes act on the authenticated caller.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(auth.RequireRole(auth.RoleAdmin)).Post("/", h.handleCreate)
	r.Route("/me", func(r chi.Router) {
		r.Get("/", h.handleMe)
		r.Put("/telegram-link", h.handleSetTelegramLink)
		r.Delete("/telegram-link", h.handleClearTelegramLink)
	})
	return r
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hashing password", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to create user")
		return
	}

	row, err := h.store.Create(r.Context(), CreateParams{
		Email:        req.Email,
		Name:         req.Name,
		Role:         req.Role,
		PasswordHash: string(hash),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			httpserver.RespondError(w, http.StatusConflict, "conflict", "a user with this email already exists")
			return
		}
		h.logger.Error("creating user", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to create user")
		return
	}

	if h.audit != nil {
		detail, _ := json.Marshal(map[string]string{"email": row.Email, "role": row.Role})
		h.audit.LogFromRequest(r, "create", "user", row.ID, detail)
	}
	httpserver.Respond(w, http.StatusCreated, row.ToResponse())
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.caller(w, r)
	if !ok {
		return
	}

	row, err := h.store.GetByID(r.Context(), *identity.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			httpserver.RespondError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		h.logger.Error("getting current user", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to load profile")
		return
	}
	httpserver.Respond(w, http.StatusOK, row.ToResponse())
}

func (h *Handler) handleSetTelegramLink(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req TelegramLinkRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}

	if err := h.setLink(w, r, identity, req.ChatID, req.BotToken, "set"); err != nil {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleClearTelegramLink(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.caller(w, r)
	if !ok {
		return
	}

	if err := h.setLink(w, r, identity, "", "", "cleared"); err != nil {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// setLink writes the link and audits the change. The response is already
// written when an error comes back.
func (h *Handler) setLink(w http.ResponseWriter, r *http.Request, identity *auth.Identity, chatID, botToken, change string) error {
	err := h.store.SetTelegramLink(r.Context(), *identity.UserID, chatID, botToken)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			httpserver.RespondError(w, http.StatusNotFound, "not_found", "user not found")
			return err
		}
		h.logger.Error("updating telegram link", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to update telegram link")
		return err
	}

	if h.audit != nil {
		detail, _ := json.Marshal(map[string]string{"telegramLink": change})
		h.audit.LogFromRequest(r, "update", "user", *identity.UserID, detail)
	}
	return nil
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	identity := auth.FromContext(r.Context())
	if identity == nil || identity.UserID == nil {
		httpserver.RespondError(w, http.StatusUnauthorized, "unauthorized", "missing authentication")
		return nil, false
	}
	return identity, true
}
