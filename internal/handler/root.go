package handler

import (
	"net/http"
)

// Pinger reports whether storage is reachable.
type Pinger interface {
	Ping() error
}

// HandleRoot is the liveness route.
//
// HTTP: GET /
func HandleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Health AI Agent API is running"})
}

// HandleHealth checks the database as well.
//
// HTTP: GET /healthz
func HandleHealth(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Detail: "database unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, MessageResponse{Message: "ok"})
	}
}
