// Package handler implements the healthd HTTP API.
//
// Handlers only deal with HTTP: read the path, query and body, call a
// service, write JSON. The service interfaces below are what each handler
// needs; *service.XxxService satisfies them and tests can substitute fakes.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/health-diary/internal/model"
)

// UserIDParam is the chi URL parameter holding the user id.
const UserIDParam = "user_id"

// AuthService registers and logs in users.
type AuthService interface {
	Register(ctx context.Context, p *model.Profile) (string, error)
	Login(ctx context.Context, userID string) (*model.Profile, error)
}

// UserService manages stored profiles.
type UserService interface {
	Create(ctx context.Context, p *model.Profile) (string, error)
	Get(ctx context.Context, userID string) (*model.Profile, error)
	Update(ctx context.Context, userID string, update *model.Profile) error
	Delete(ctx context.Context, userID string) error
}

// DiaryService stores and lists diary entries.
type DiaryService interface {
	Add(ctx context.Context, userID string, entry *model.DiaryEntry) (string, error)
	List(ctx context.Context, userID string, limit int) ([]model.DiaryEntry, error)
}

// RecommendationService generates advice and lists past advice.
type RecommendationService interface {
	Generate(ctx context.Context, userID string) (string, error)
	History(ctx context.Context, userID string, limit int) ([]model.Recommendation, error)
}

func userID(r *http.Request) string {
	return chi.URLParam(r, UserIDParam)
}
