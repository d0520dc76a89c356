package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/health-diary/internal/apperror"
	"github.com/sakif/health-diary/internal/model"
	"github.com/sakif/health-diary/internal/repository"
)

// AuthService registers users and logs them in.
//
// THERE ARE NO PASSWORDS:
// A user is identified by the id they picked at registration. Login only
// checks that the id exists and hands back the stored profile.
type AuthService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(users repository.UserRepository, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, logger: logger}
}

// Register stores a new profile and returns its id.
// A taken id is apperror.ErrConflict with "Username already exists".
func (s *AuthService) Register(ctx context.Context, p *model.Profile) (string, error) {
	if err := validateProfile(p); err != nil {
		return "", err
	}

	if err := s.users.CreateUser(ctx, p); err != nil {
		if isKind(err, apperror.ErrConflict) {
			return "", err
		}
		s.logger.Error("failed to register user",
			slog.String("user_id", p.UserID),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("registering user: %w", err)
	}

	s.logger.Info("user registered", slog.String("user_id", p.UserID))
	return p.UserID, nil
}

// Login returns the profile for userID, or apperror.ErrNotFound.
func (s *AuthService) Login(ctx context.Context, userID string) (*model.Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("user_id", "user_id is required")
	}

	p, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", slog.String("user_id", userID))
	return p, nil
}

// validateProfile enforces what every stored profile must have.
func validateProfile(p *model.Profile) error {
	if p == nil {
		return apperror.ValidationFailed("body", "profile is required")
	}
	p.UserID = strings.TrimSpace(p.UserID)
	if p.UserID == "" {
		return apperror.ValidationFailed("user_id", "user_id is required")
	}
	if p.Age <= 0 {
		return apperror.ValidationFailed("age", "age must be a positive whole number")
	}
	if p.Gender != "" && !p.Gender.Valid() {
		return apperror.ValidationFailed("gender", fmt.Sprintf("unknown gender %q", p.Gender))
	}
	return nil
}
