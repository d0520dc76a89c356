package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/sakif/health-diary/internal/apperror"
	"github.com/sakif/health-diary/internal/form"
	"github.com/sakif/health-diary/internal/model"
)

// ErrNotAuthenticated is returned by operations that need a logged-in user.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// API is the part of the collaborator the Manager talks to.
// *api.Client satisfies it.
type API interface {
	Login(ctx context.Context, userID string) (*model.Profile, error)
	Register(ctx context.Context, profile *model.Profile) error
	UpdateProfile(ctx context.Context, userID string, profile *model.Profile) error
}

// AuthResult is what a successful login hands back to the caller.
type AuthResult struct {
	User *model.Profile
	// Draft is the profile-edit buffer seeded from User, with list fields
	// joined for display ("peanuts, dairy").
	Draft form.ProfileDraft
}

// Manager drives the Session through login, registration, profile updates
// and logout.
type Manager struct {
	api     API
	session *Session
	logger  *slog.Logger

	hookMu sync.Mutex
	hooks  []func()
}

// NewManager returns a Manager for s. A nil logger discards output.
func NewManager(api API, s *Session, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{api: api, session: s, logger: logger}
}

// Session returns the session this Manager owns.
func (m *Manager) Session() *Session {
	return m.session
}

// Current returns a copy of the logged-in profile, or nil.
func (m *Manager) Current() *model.Profile {
	return m.session.User()
}

// OnReset registers fn to run on every Logout, after the session itself has
// been reset. Hooks run in registration order.
func (m *Manager) OnReset(fn func()) {
	m.hookMu.Lock()
	defer m.hookMu.Unlock()
	m.hooks = append(m.hooks, fn)
}

// Login authenticates userID (trimmed) and makes it the session user.
// A blank id is a validation failure and no request is sent.
func (m *Manager) Login(ctx context.Context, userID string) (AuthResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return AuthResult{}, apperror.ValidationFailed("user_id", "Please enter a username")
	}

	profile, err := m.api.Login(ctx, userID)
	if err != nil {
		m.logger.Info("login failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return AuthResult{}, fmt.Errorf("session: login: %w", err)
	}

	m.session.set(profile)
	m.logger.Info("logged in", slog.String("user_id", profile.UserID))

	user := m.session.User()
	return AuthResult{User: user, Draft: form.ProfileDraftFrom(user)}, nil
}

// Register creates the profile described by draft and returns its user id.
// It does not log the user in.
func (m *Manager) Register(ctx context.Context, draft form.ProfileDraft) (string, error) {
	profile, err := draft.Profile()
	if err != nil {
		return "", fmt.Errorf("session: register: %w", err)
	}

	if err := m.api.Register(ctx, profile); err != nil {
		m.logger.Info("registration failed",
			slog.String("user_id", profile.UserID),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("session: register: %w", err)
	}

	m.logger.Info("registered", slog.String("user_id", profile.UserID))
	return profile.UserID, nil
}

// UpdateProfile stores draft as the logged-in user's profile. The user id
// always comes from the session, never from the draft. On success the
// submitted fields are merged into the session profile and the merged copy
// is returned.
func (m *Manager) UpdateProfile(ctx context.Context, draft form.ProfileDraft) (*model.Profile, error) {
	userID := m.session.UserID()
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	profile, err := draft.ProfileFor(userID)
	if err != nil {
		return nil, fmt.Errorf("session: update profile: %w", err)
	}

	if err := m.api.UpdateProfile(ctx, userID, profile); err != nil {
		m.logger.Warn("profile update failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("session: update profile: %w", err)
	}

	merged := m.session.mergeInto(userID, profile)
	if merged == nil {
		// Logged out (or in as someone else) while the request was in flight.
		m.logger.Warn("profile update completed for a session that is gone",
			slog.String("user_id", userID),
		)
		return profile, nil
	}
	return merged, nil
}

// Logout resets the session and runs the reset hooks. It never fails and
// sends nothing to the collaborator.
func (m *Manager) Logout() {
	userID := m.session.UserID()
	m.session.reset()

	m.hookMu.Lock()
	hooks := make([]func(), len(m.hooks))
	copy(hooks, m.hooks)
	m.hookMu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	if userID != "" {
		m.logger.Info("logged out", slog.String("user_id", userID))
	}
}
