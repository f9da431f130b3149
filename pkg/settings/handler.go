package settings

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/vannyakh/pkasla-pro-sub001/internal/audit"
	"github.com/vannyakh/pkasla-pro-sub001/internal/auth"
	"github.com/vannyakh/pkasla-pro-sub001/internal/httpserver"
	"github.com/vannyakh/pkasla-pro-sub001/internal/version"
)

// TelegramTester verifies bot credentials for the test-telegram endpoint.
type TelegramTester interface {
	TestConnection(token, chatID string) (ok bool, message string)
}

// MailSender delivers a test message using the email group of the document.
type MailSender interface {
	SendTest(doc *Settings, to string) error
}

// Handler provides the HTTP surface of the settings API.
type Handler struct {
	logger    *slog.Logger
	audit     *audit.Writer
	service   *Service
	env       string
	startedAt time.Time
	pool      *pgxpool.Pool
	rdb       *redis.Client
	tester    TelegramTester
	mail      MailSender
}

// HandlerDeps collects the handler's collaborators.
type HandlerDeps struct {
	Logger    *slog.Logger
	Audit     *audit.Writer
	Service   *Service
	Env       string
	StartedAt time.Time
	Pool      *pgxpool.Pool
	Redis     *redis.Client
	Tester    TelegramTester
	Mail      MailSender
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		logger:    deps.Logger,
		audit:     deps.Audit,
		service:   deps.Service,
		env:       deps.Env,
		startedAt: deps.StartedAt,
		pool:      deps.Pool,
		rdb:       deps.Redis,
		tester:    deps.Tester,
		mail:      deps.Mail,
	}
}

// Routes returns a chi.Router with settings routes mounted.
// All routes require the admin role.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireRole(auth.RoleAdmin))
	r.Get("/", h.handleGet)
	r.Put("/", h.handleUpdate)
	r.Patch("/", h.handleUpdate)
	r.Get("/system-info", h.handleSystemInfo)
	r.Post("/test-telegram", h.handleTestTelegram)
	r.Post("/test-email", h.handleTestEmail)
	return r
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("includeSensitive") == "true" {
		doc, err := h.service.GetWithSensitive(r.Context())
		if err != nil {
			h.logger.Error("getting settings", "error", err)
			httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to get settings")
			return
		}
		httpserver.Respond(w, http.StatusOK, doc)
		return
	}

	resp, err := h.service.GetSafe(r.Context())
	if err != nil {
		h.logger.Error("getting settings", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to get settings")
		return
	}
	httpserver.Respond(w, http.StatusOK, resp)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.service.Update(r.Context(), &req)
	if err != nil {
		var verrs ValidationErrors
		if errors.As(err, &verrs) {
			details := make([]httpserver.ValidationError, len(verrs))
			for i, fe := range verrs {
				details[i] = httpserver.ValidationError{Field: fe.Field, Message: fe.Message}
			}
			httpserver.RespondValidationError(w, http.StatusBadRequest, details)
			return
		}
		h.logger.Error("updating settings", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to update settings")
		return
	}

	if h.audit != nil {
		detail, _ := json.Marshal(map[string]any{"fields": changedFields(&req)})
		h.audit.LogFromRequest(r, "update", "settings", uuid.Nil, detail)
	}

	httpserver.Respond(w, http.StatusOK, resp)
}

// SystemInfo is the response of GET /settings/system-info.
type SystemInfo struct {
	Environment     string `json:"environment"`
	Version         string `json:"version"`
	Commit          string `json:"commit"`
	UptimeSeconds   int64  `json:"uptimeSeconds"`
	MaintenanceMode bool   `json:"maintenanceMode"`
	Database        string `json:"database"`
	Redis           string `json:"redis"`
}

func (h *Handler) handleSystemInfo(w http.ResponseWriter, r *http.Request) {
	info := SystemInfo{
		Environment:   h.env,
		Version:       version.Version,
		Commit:        version.Commit,
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		Database:      "unavailable",
		Redis:         "unavailable",
	}

	if doc, err := h.service.GetSafe(r.Context()); err == nil {
		info.MaintenanceMode = doc.MaintenanceMode
	}
	if h.pool != nil && h.pool.Ping(r.Context()) == nil {
		info.Database = "ok"
	}
	if h.rdb != nil && h.rdb.Ping(r.Context()).Err() == nil {
		info.Redis = "ok"
	}

	httpserver.Respond(w, http.StatusOK, info)
}

type testTelegramRequest struct {
	BotToken string `json:"botToken"`
	ChatID   string `json:"chatId"`
}

type testResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *Handler) handleTestTelegram(w http.ResponseWriter, r *http.Request) {
	var req testTelegramRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}

	doc, err := h.service.GetWithSensitive(r.Context())
	if err != nil {
		h.logger.Error("getting settings", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to get settings")
		return
	}

	token := req.BotToken
	if token == "" {
		token = doc.TelegramBotToken
	}
	chatID := req.ChatID
	if chatID == "" {
		chatID = doc.TelegramChatID
	}
	if token == "" || chatID == "" {
		httpserver.RespondError(w, http.StatusBadRequest, "bad_request", "bot token and chat id are required")
		return
	}

	ok, msg := h.tester.TestConnection(token, chatID)
	httpserver.Respond(w, http.StatusOK, testResponse{Success: ok, Message: msg})
}

type testEmailRequest struct {
	To string `json:"to" validate:"required,email"`
}

func (h *Handler) handleTestEmail(w http.ResponseWriter, r *http.Request) {
	var req testEmailRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}

	doc, err := h.service.GetWithSensitive(r.Context())
	if err != nil {
		h.logger.Error("getting settings", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to get settings")
		return
	}
	if doc.EmailHost == "" || doc.EmailFrom == "" {
		httpserver.RespondError(w, http.StatusBadRequest, "bad_request", "email host and sender are not configured")
		return
	}

	if err := h.mail.SendTest(doc, req.To); err != nil {
		h.logger.Warn("test email failed", "error", err)
		httpserver.Respond(w, http.StatusOK, testResponse{Success: false, Message: err.Error()})
		return
	}
	httpserver.Respond(w, http.StatusOK, testResponse{Success: true, Message: "test email sent"})
}

// changedFields lists the JSON names of fields present in the request, for
// the audit trail. Secret values themselves are never logged.
func changedFields(req *UpdateRequest) []string {
	var fields []string
	raw, err := json.Marshal(req)
	if err != nil {
		return fields
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return fields
	}
	for k, v := range m {
		if v != nil {
			fields = append(fields, k)
		}
	}
	return fields
}
