package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/health-diary/internal/model"
)

// DiaryHandler serves diary entries.
type DiaryHandler struct {
	diary  DiaryService
	logger *slog.Logger
}

// NewDiaryHandler creates a DiaryHandler.
func NewDiaryHandler(diary DiaryService, logger *slog.Logger) *DiaryHandler {
	return &DiaryHandler{diary: diary, logger: logger}
}

type addEntryResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// HandleAdd stores one entry.
//
// HTTP: POST /api/diary/{user_id}
// 200 {"message": "Diary entry added", "id": "..."}
// 404 {"detail": "User not found"}
func (h *DiaryHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var entry model.DiaryEntry
	if err := decodeJSON(r, &entry); err != nil {
		h.logger.Warn("invalid diary entry JSON", slog.String("error", err.Error()))
		writeError(w, h.logger, err)
		return
	}

	id, err := h.diary.Add(r.Context(), userID(r), &entry)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, addEntryResponse{Message: "Diary entry added", ID: id})
}

// HandleList returns entries newest first.
//
// HTTP: GET /api/diary/{user_id}?limit=10
func (h *DiaryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	entries, err := h.diary.List(r.Context(), userID(r), limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
