package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/health-diary/internal/model"
)

// UserHandler serves profile reads and writes.
type UserHandler struct {
	users  UserService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

type createUserResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// HandleCreate stores a profile.
//
// HTTP: POST /api/users
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var p model.Profile
	if err := decodeJSON(r, &p); err != nil {
		h.logger.Warn("invalid profile JSON", slog.String("error", err.Error()))
		writeError(w, h.logger, err)
		return
	}

	id, err := h.users.Create(r.Context(), &p)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, createUserResponse{Message: "User created", ID: id})
}

// HandleGet returns the profile.
//
// HTTP: GET /api/users/{user_id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.users.Get(r.Context(), userID(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleUpdate replaces the editable fields of the profile.
//
// HTTP: PUT /api/users/{user_id}
// 400 {"detail": "No changes made"} when the body matches what is stored.
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var p model.Profile
	if err := decodeJSON(r, &p); err != nil {
		h.logger.Warn("invalid profile JSON", slog.String("error", err.Error()))
		writeError(w, h.logger, err)
		return
	}

	if err := h.users.Update(r.Context(), userID(r), &p); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "User updated successfully"})
}

// HandleDelete removes the user and everything stored for them.
//
// HTTP: DELETE /api/users/{user_id}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), userID(r)); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "User and all related data deleted successfully"})
}
