package handler

import (
	"log/slog"
	"net/http"
)

// RecommendationHandler serves generated advice.
type RecommendationHandler struct {
	recs   RecommendationService
	logger *slog.Logger
}

// NewRecommendationHandler creates a RecommendationHandler.
func NewRecommendationHandler(recs RecommendationService, logger *slog.Logger) *RecommendationHandler {
	return &RecommendationHandler{recs: recs, logger: logger}
}

type recommendationResponse struct {
	Recommendation string `json:"recommendation"`
}

// HandleGenerate asks the model for new advice and returns it.
// This is the slow endpoint: it waits for the model.
//
// HTTP: POST /api/recommendations/{user_id}
// 200 {"recommendation": "..."}
// 500 {"detail": "AI error: ..."}
// 503 {"detail": "..."} when no model is configured
func (h *RecommendationHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	text, err := h.recs.Generate(r.Context(), userID(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, recommendationResponse{Recommendation: text})
}

// HandleHistory lists past advice newest first.
//
// HTTP: GET /api/recommendations/{user_id}/history?limit=5
func (h *RecommendationHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	recs, err := h.recs.History(r.Context(), userID(r), limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}
