package audit

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vannyakh/pkasla-pro-sub001/internal/auth"
	"github.com/vannyakh/pkasla-pro-sub001/internal/httpserver"
)

// Record is the JSON shape of a stored audit entry.
type Record struct {
	ID         uuid.UUID       `json:"id"`
	UserID     *uuid.UUID      `json:"user_id,omitempty"`
	Action     string          `json:"action"`
	Resource   string          `json:"resource"`
	ResourceID *uuid.UUID      `json:"resource_id,omitempty"`
	Detail     json.RawMessage `json:"detail,omitempty"`
	IPAddress  *string         `json:"ip_address,omitempty"`
	UserAgent  *string         `json:"user_agent,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Handler provides HTTP handlers for the audit log API.
type Handler struct {
	logger *slog.Logger
	pool   *pgxpool.Pool
}

// NewHandler creates an audit log Handler.
func NewHandler(logger *slog.Logger, pool *pgxpool.Pool) *Handler {
	return &Handler{logger: logger, pool: pool}
}

// Routes returns a chi.Router with audit log routes mounted.
// Reading the audit trail requires the admin role.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireRole(auth.RoleAdmin))
	r.Get("/", h.handleList)
	return r
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	params, err := httpserver.ParseCursorParams(r)
	if err != nil {
		httpserver.RespondError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	// Keyset pagination on (created_at, id), newest first. Fetch one extra
	// row to detect whether more pages exist.
	query := `SELECT id, user_id, action, resource, resource_id, detail, ip_address, user_agent, created_at
	          FROM audit_log`
	args := []any{}
	if params.After != nil {
		query += ` WHERE (created_at, id) < ($1, $2)`
		args = append(args, params.After.CreatedAt, params.After.ID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ` + limitArg(len(args)+1)
	args = append(args, params.Limit+1)

	rows, err := h.pool.Query(r.Context(), query, args...)
	if err != nil {
		h.logger.Error("listing audit log", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to list audit log")
		return
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Action, &rec.Resource,
			&rec.ResourceID, &rec.Detail, &rec.IPAddress, &rec.UserAgent, &rec.CreatedAt); err != nil {
			h.logger.Error("scanning audit log row", "error", err)
			httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to list audit log")
			return
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		h.logger.Error("iterating audit log rows", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to list audit log")
		return
	}

	page := httpserver.NewCursorPage(records, params.Limit, func(rec Record) httpserver.Cursor {
		return httpserver.Cursor{CreatedAt: rec.CreatedAt, ID: rec.ID}
	})
	httpserver.Respond(w, http.StatusOK, page)
}

func limitArg(n int) string {
	return "$" + strconv.Itoa(n)
}
