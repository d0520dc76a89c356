package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/health-diary/internal/apperror"
	"github.com/sakif/health-diary/internal/model"
	"github.com/sakif/health-diary/internal/repository"
)

// DiaryService stores and lists diary entries.
type DiaryService struct {
	users  repository.UserRepository
	diary  repository.DiaryRepository
	logger *slog.Logger
}

// NewDiaryService creates a DiaryService.
func NewDiaryService(users repository.UserRepository, diary repository.DiaryRepository, logger *slog.Logger) *DiaryService {
	return &DiaryService{users: users, diary: diary, logger: logger}
}

// Add stores entry for userID and returns the new entry id.
// The user must exist. Any _id, user_id or created_at in the body is
// replaced by the server's values.
func (s *DiaryService) Add(ctx context.Context, userID string, entry *model.DiaryEntry) (string, error) {
	if entry == nil {
		return "", apperror.ValidationFailed("body", "diary entry is required")
	}
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return "", err
	}

	entry.ID = ""
	entry.UserID = userID
	entry.CreatedAt = nil
	for i, c := range entry.Conditions {
		if c.Severity < model.MinSeverity || c.Severity > model.MaxSeverity {
			return "", apperror.ValidationFailed("severity",
				fmt.Sprintf("condition %d: severity must be between %d and %d", i+1, model.MinSeverity, model.MaxSeverity))
		}
	}

	if err := s.diary.AddEntry(ctx, entry); err != nil {
		s.logger.Error("failed to add diary entry",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("adding diary entry: %w", err)
	}

	s.logger.Info("diary entry added",
		slog.String("user_id", userID),
		slog.String("id", entry.ID),
	)
	return entry.ID, nil
}

// List returns up to limit entries of userID, newest first.
// An unknown user simply has no entries.
func (s *DiaryService) List(ctx context.Context, userID string, limit int) ([]model.DiaryEntry, error) {
	entries, err := s.diary.ListEntries(ctx, userID, repository.ListOptions{
		Limit: clampLimit(limit, DefaultDiaryLimit),
	})
	if err != nil {
		s.logger.Error("failed to list diary entries",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing diary entries: %w", err)
	}
	if entries == nil {
		entries = []model.DiaryEntry{}
	}
	return entries, nil
}
