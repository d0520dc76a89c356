package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/sakif/health-diary/internal/apperror"
	"github.com/sakif/health-diary/internal/model"
	"github.com/sakif/health-diary/internal/repository"
)

// UserService manages stored profiles.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// Create stores a profile. It differs from AuthService.Register only in
// the conflict message, "User already exists".
func (s *UserService) Create(ctx context.Context, p *model.Profile) (string, error) {
	if err := validateProfile(p); err != nil {
		return "", err
	}
	if err := s.users.CreateUser(ctx, p); err != nil {
		if isKind(err, apperror.ErrConflict) {
			return "", apperror.Conflict("User already exists")
		}
		s.logger.Error("failed to create user",
			slog.String("user_id", p.UserID),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("creating user: %w", err)
	}
	return p.UserID, nil
}

// Get returns the stored profile, or apperror.ErrNotFound.
func (s *UserService) Get(ctx context.Context, userID string) (*model.Profile, error) {
	return s.users.GetUser(ctx, userID)
}

// Update replaces the editable fields of userID's profile.
//
// FETCH, COMPARE, THEN WRITE:
// The user_id in the body is ignored; the path decides who is updated.
// When the merged profile equals the stored one nothing is written and the
// caller gets "No changes made" (400), so a client can tell a no-op apart
// from a save.
func (s *UserService) Update(ctx context.Context, userID string, update *model.Profile) error {
	if update == nil {
		return apperror.ValidationFailed("body", "profile is required")
	}

	current, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	merged := current.Merge(update)
	if merged.Age <= 0 {
		return apperror.ValidationFailed("age", "age must be a positive whole number")
	}
	if merged.Gender != "" && !merged.Gender.Valid() {
		return apperror.ValidationFailed("gender", fmt.Sprintf("unknown gender %q", merged.Gender))
	}
	if sameProfile(current, merged) {
		return apperror.ValidationFailed("", "No changes made")
	}

	if err := s.users.UpdateUser(ctx, merged); err != nil {
		if isKind(err, apperror.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to update user",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("updating user: %w", err)
	}

	s.logger.Info("user updated", slog.String("user_id", userID))
	return nil
}

// Delete removes the user with their diary and recommendation history.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		if isKind(err, apperror.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to delete user",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting user: %w", err)
	}
	s.logger.Info("user deleted", slog.String("user_id", userID))
	return nil
}

func sameProfile(a, b *model.Profile) bool {
	return a.Age == b.Age &&
		a.Gender == b.Gender &&
		sameFloat(a.Weight, b.Weight) &&
		sameFloat(a.Height, b.Height) &&
		slices.Equal(a.Allergies, b.Allergies) &&
		slices.Equal(a.MedicalConditions, b.MedicalConditions)
}

func sameFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func isKind(err, kind error) bool {
	return errors.Is(err, kind)
}
