// Package diary holds the logged-in user's diary entries.
//
// MIRROR, NOT CACHE:
// The Store never edits its list locally. It is either empty or exactly the
// last list the collaborator returned. Appending an entry sends it and then
// re-fetches the whole list, so server-assigned ids, timestamps and ordering
// are always what is shown.
package diary

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/sakif/health-diary/internal/model"
)

// API is the part of the collaborator the Store talks to.
type API interface {
	ListDiary(ctx context.Context, userID string) ([]model.DiaryEntry, error)
	AppendDiary(ctx context.Context, userID string, entry model.DiaryEntry) error
}

// Store is safe for concurrent use.
type Store struct {
	api    API
	logger *slog.Logger

	mu      sync.RWMutex
	entries []model.DiaryEntry
}

// NewStore returns an empty Store. A nil logger discards output.
func NewStore(api API, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{api: api, logger: logger, entries: []model.DiaryEntry{}}
}

// Refresh replaces the held list with the collaborator's list for userID.
// On failure the previous list is kept; the error is logged and returned
// so callers may ignore it.
func (s *Store) Refresh(ctx context.Context, userID string) error {
	entries, err := s.api.ListDiary(ctx, userID)
	if err != nil {
		s.logger.Warn("diary refresh failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("diary: refresh %s: %w", userID, err)
	}
	if entries == nil {
		entries = []model.DiaryEntry{}
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()

	s.logger.Debug("diary refreshed",
		slog.String("user_id", userID),
		slog.Int("entries", len(entries)),
	)
	return nil
}

// Append submits entry and, once accepted, refreshes the list. Only the
// submission decides the returned error: a failed follow-up refresh is
// logged and the entry still counts as added.
func (s *Store) Append(ctx context.Context, userID string, entry model.DiaryEntry) error {
	if err := s.api.AppendDiary(ctx, userID, entry); err != nil {
		s.logger.Warn("diary append failed",
			slog.String("user_id", userID),
			slog.String("date", entry.Date),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("diary: append %s: %w", userID, err)
	}

	_ = s.Refresh(ctx, userID)
	return nil
}

// Entries returns the held list in collaborator order. The slice is a copy;
// the entries inside share their nested slices and must not be modified.
func (s *Store) Entries() []model.DiaryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.DiaryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of held entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear empties the store. Registered as a logout hook.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = []model.DiaryEntry{}
}
