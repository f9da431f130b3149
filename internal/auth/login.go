package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Account is the minimal user record needed to authenticate a login.
type Account struct {
	ID           uuid.UUID
	Email        string
	Name         string
	Role         string
	PasswordHash string
}

// ErrNoAccount is returned by AccountSource when no account matches.
var ErrNoAccount = errors.New("account not found")

// AccountSource resolves login credentials to an account.
type AccountSource interface {
	AccountByEmail(ctx context.Context, email string) (*Account, error)
}

// LoginHandler serves the password login endpoint.
type LoginHandler struct {
	verifier *TokenVerifier
	accounts AccountSource
	logger   *slog.Logger
}

// NewLoginHandler creates a LoginHandler.
func NewLoginHandler(verifier *TokenVerifier, accounts AccountSource, logger *slog.Logger) *LoginHandler {
	return &LoginHandler{verifier: verifier, accounts: accounts, logger: logger}
}

// Routes returns a chi.Router with the login route mounted.
func (h *LoginHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.handleLogin)
	return r
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (h *LoginHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil || req.Email == "" || req.Password == "" {
		respondErr(w, http.StatusBadRequest, "bad_request", "email and password are required")
		return
	}

	acct, err := h.accounts.AccountByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, ErrNoAccount) {
			h.logger.Error("looking up account", "error", err)
		}
		// Same response for unknown email and wrong password.
		respondErr(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(req.Password)); err != nil {
		respondErr(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
		return
	}

	token, err := h.verifier.Issue(acct.ID, acct.Email, acct.Name, acct.Role)
	if err != nil {
		h.logger.Error("issuing token", "error", err)
		respondErr(w, http.StatusInternalServerError, "internal_error", "failed to issue token")
		return
	}

	h.logger.Info("user logged in", "email", acct.Email, "role", acct.Role)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(loginResponse{
		Token: token,
		Email: acct.Email,
		Name:  acct.Name,
		Role:  acct.Role,
	})
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<16))
	return dec.Decode(dst)
}
