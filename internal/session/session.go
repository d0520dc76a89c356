// Package session owns who is logged in.
//
// ONE OWNER:
// There is exactly one Session per process. It is created once in main and
// handed to whoever needs to read it. Only the Manager changes it, and the
// only way back to anonymous is Manager.Logout, which also runs every reset
// hook registered with OnReset (diary, recommendation text, ...). No other
// code clears "its part" of the session on its own.
package session

import (
	"sync"

	"github.com/sakif/health-diary/internal/model"
)

// Session is the in-memory record of the authenticated user.
// The zero value is an anonymous session and is ready to use.
type Session struct {
	mu   sync.RWMutex
	user *model.Profile
}

// New returns an anonymous Session.
func New() *Session {
	return &Session{}
}

// Authenticated reports whether a user is logged in.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// User returns a copy of the current profile, or nil when anonymous.
func (s *Session) User() *model.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

// UserID returns the logged-in user's id, or "" when anonymous.
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.UserID
}

func (s *Session) set(p *model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = p.Clone()
}

// mergeInto applies update to the current profile when it still belongs to
// userID and returns the merged copy. It returns nil when the session has
// since been reset or now belongs to someone else.
func (s *Session) mergeInto(userID string, update *model.Profile) *model.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil || s.user.UserID != userID {
		return nil
	}
	s.user = s.user.Merge(update)
	return s.user.Clone()
}

func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}
