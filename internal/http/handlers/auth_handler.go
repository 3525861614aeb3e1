package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"tarcart/internal/password"
)

// AuthHandlers exchanges the admin password for the opaque admin token.
type AuthHandlers struct {
	adminToken   string
	passwordHash string
	hasher       password.Hasher
	logger       *zap.Logger
}

// NewAuthHandlers builds the login handler set.
func NewAuthHandlers(adminToken, passwordHash string, hasher password.Hasher, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		adminToken:   adminToken,
		passwordHash: passwordHash,
		hasher:       hasher,
		logger:       logger,
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if req.Password == "" || h.hasher.Compare(h.passwordHash, req.Password) != nil {
		h.logger.Info("rejected admin login attempt")
		writeError(w, http.StatusUnauthorized, "invalid password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": h.adminToken})
}
