package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/health-diary/internal/model"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	auth   AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type registerResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type loginResponse struct {
	Message string         `json:"message"`
	User    *model.Profile `json:"user"`
}

// HandleRegister creates a user from a profile body.
//
// HTTP: POST /api/auth/register
// 200 {"message": "User registered successfully", "user_id": "..."}
// 400 {"detail": "Username already exists"}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var p model.Profile
	if err := decodeJSON(r, &p); err != nil {
		h.logger.Warn("invalid profile JSON", slog.String("error", err.Error()))
		writeError(w, h.logger, err)
		return
	}

	id, err := h.auth.Register(r.Context(), &p)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, registerResponse{
		Message: "User registered successfully",
		UserID:  id,
	})
}

// HandleLogin looks the user up by the user_id query parameter.
//
// HTTP: POST /api/auth/login?user_id=alice
// 200 {"message": "Login successful", "user": {...}}
// 404 {"detail": "User not found"}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.Login(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		User:    user,
	})
}
