package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/health-diary/internal/apperror"
	"github.com/sakif/health-diary/internal/metrics"
	"github.com/sakif/health-diary/internal/model"
	"github.com/sakif/health-diary/internal/recommend"
	"github.com/sakif/health-diary/internal/repository"
)

// RecommendationService generates advice from a user's profile and recent
// diary and keeps every answer in the user's history.
//
// FLOW OF Generate:
//  1. load the profile (404 for an unknown user)
//  2. load the last recommend.RecentEntries entries
//  3. build the prompt and ask the Generator
//  4. render the JSON answer as text (raw text kept if it isn't JSON)
//  5. save it to history and return it
type RecommendationService struct {
	users     repository.UserRepository
	diary     repository.DiaryRepository
	history   repository.RecommendationRepository
	generator recommend.Generator // nil when no API key is configured
	metrics   metrics.Recorder
	logger    *slog.Logger
	now       func() time.Time
}

// NewRecommendationService creates a RecommendationService.
// generator may be nil; Generate then reports apperror.ErrUnavailable.
func NewRecommendationService(
	users repository.UserRepository,
	diary repository.DiaryRepository,
	history repository.RecommendationRepository,
	generator recommend.Generator,
	rec metrics.Recorder,
	logger *slog.Logger,
) *RecommendationService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &RecommendationService{
		users:     users,
		diary:     diary,
		history:   history,
		generator: generator,
		metrics:   rec,
		logger:    logger,
		now:       time.Now,
	}
}

// Generate produces, stores and returns a new recommendation for userID.
func (s *RecommendationService) Generate(ctx context.Context, userID string) (string, error) {
	profile, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}

	if s.generator == nil {
		s.metrics.RecordRecommendation(metrics.OutcomeUnavailable, 0)
		return "", apperror.Unavailable("Recommendation generator is not configured")
	}

	entries, err := s.diary.ListEntries(ctx, userID, repository.ListOptions{Limit: recommend.RecentEntries})
	if err != nil {
		return "", fmt.Errorf("loading recent diary entries: %w", err)
	}

	prompt := recommend.BuildPrompt(profile, entries)

	start := s.now()
	raw, err := s.generator.Generate(ctx, prompt)
	elapsed := s.now().Sub(start)
	if err != nil {
		s.metrics.RecordRecommendation(metrics.OutcomeFailure, elapsed)
		s.logger.Error("recommendation generation failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return "", apperror.Internal("AI error: " + err.Error())
	}
	s.metrics.RecordRecommendation(metrics.OutcomeSuccess, elapsed)

	text := recommend.Format(raw)

	rec := &model.Recommendation{UserID: userID, Recommendation: text}
	if err := s.history.SaveRecommendation(ctx, rec); err != nil {
		s.logger.Error("failed to save recommendation",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("saving recommendation: %w", err)
	}

	s.logger.Info("recommendation generated",
		slog.String("user_id", userID),
		slog.Int("entries", len(entries)),
		slog.Duration("elapsed", elapsed),
	)
	return text, nil
}

// History returns up to limit past recommendations of userID, newest first.
func (s *RecommendationService) History(ctx context.Context, userID string, limit int) ([]model.Recommendation, error) {
	recs, err := s.history.ListRecommendations(ctx, userID, repository.ListOptions{
		Limit: clampLimit(limit, DefaultHistoryLimit),
	})
	if err != nil {
		s.logger.Error("failed to list recommendations",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing recommendations: %w", err)
	}
	if recs == nil {
		recs = []model.Recommendation{}
	}
	return recs, nil
}
