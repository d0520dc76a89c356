// Package repository declares the storage interfaces of the reference
// collaborator. Services depend on these; internal/repository/sqlite
// implements them.
package repository

import (
	"context"

	"github.com/sakif/health-diary/internal/model"
)

// ListOptions bounds a list query. Zero values mean "use the default".
type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository stores profiles keyed by their user-chosen id.
type UserRepository interface {
	// CreateUser returns apperror.ErrConflict when the id is taken.
	CreateUser(ctx context.Context, profile *model.Profile) error
	// GetUser returns apperror.ErrNotFound for an unknown id.
	GetUser(ctx context.Context, userID string) (*model.Profile, error)
	// UpdateUser replaces every stored field except the id.
	UpdateUser(ctx context.Context, profile *model.Profile) error
	// DeleteUser removes the user with their diary and recommendation history.
	DeleteUser(ctx context.Context, userID string) error
}

// DiaryRepository stores diary entries.
type DiaryRepository interface {
	// AddEntry assigns ID and CreatedAt and stores the entry.
	AddEntry(ctx context.Context, entry *model.DiaryEntry) error
	// ListEntries returns a user's entries, newest first.
	ListEntries(ctx context.Context, userID string, opts ListOptions) ([]model.DiaryEntry, error)
}

// RecommendationRepository stores generated advice.
type RecommendationRepository interface {
	SaveRecommendation(ctx context.Context, rec *model.Recommendation) error
	// ListRecommendations returns a user's history, newest first.
	ListRecommendations(ctx context.Context, userID string, opts ListOptions) ([]model.Recommendation, error)
}
