package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/sakif/health-diary/internal/apperror"
	"github.com/sakif/health-diary/internal/model"
	"github.com/sakif/health-diary/internal/repository"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeStore is an in-memory implementation of all three repositories.
// Set an *Err field to simulate a database failure.
type fakeStore struct {
	users   map[string]*model.Profile
	entries []model.DiaryEntry
	recs    []model.Recommendation
	nextID  int
	clock   time.Time

	createErr error
	updateErr error
	listErr   error
	saveErr   error

	lastListLimit int
}

var (
	_ repository.UserRepository           = (*fakeStore)(nil)
	_ repository.DiaryRepository          = (*fakeStore)(nil)
	_ repository.RecommendationRepository = (*fakeStore)(nil)
)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[string]*model.Profile),
		clock: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeStore) CreateUser(_ context.Context, p *model.Profile) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.users[p.UserID]; ok {
		return apperror.Conflict("Username already exists")
	}
	f.users[p.UserID] = p.Clone()
	return nil
}

func (f *fakeStore) GetUser(_ context.Context, userID string) (*model.Profile, error) {
	p, ok := f.users[userID]
	if !ok {
		return nil, apperror.NotFoundMessage("User not found")
	}
	return p.Clone(), nil
}

func (f *fakeStore) UpdateUser(_ context.Context, p *model.Profile) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.users[p.UserID]; !ok {
		return apperror.NotFoundMessage("User not found")
	}
	f.users[p.UserID] = p.Clone()
	return nil
}

func (f *fakeStore) DeleteUser(_ context.Context, userID string) error {
	if _, ok := f.users[userID]; !ok {
		return apperror.NotFoundMessage("User not found")
	}
	delete(f.users, userID)
	return nil
}

func (f *fakeStore) AddEntry(_ context.Context, e *model.DiaryEntry) error {
	f.nextID++
	e.ID = fmt.Sprintf("entry-%d", f.nextID)
	ts := model.NewTimestamp(f.tick())
	e.CreatedAt = &ts
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeStore) ListEntries(_ context.Context, userID string, opts repository.ListOptions) ([]model.DiaryEntry, error) {
	f.lastListLimit = opts.Limit
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.DiaryEntry
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt.Time) })
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (f *fakeStore) SaveRecommendation(_ context.Context, r *model.Recommendation) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.nextID++
	r.ID = fmt.Sprintf("rec-%d", f.nextID)
	r.CreatedAt = model.NewTimestamp(f.tick())
	f.recs = append(f.recs, *r)
	return nil
}

func (f *fakeStore) ListRecommendations(_ context.Context, userID string, opts repository.ListOptions) ([]model.Recommendation, error) {
	f.lastListLimit = opts.Limit
	var out []model.Recommendation
	for i := len(f.recs) - 1; i >= 0; i-- {
		if f.recs[i].UserID == userID {
			out = append(out, f.recs[i])
		}
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// fakeGenerator returns answer or err and remembers the prompt it got.
type fakeGenerator struct {
	answer string
	err    error
	prompt string
	calls  int
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.calls++
	g.prompt = prompt
	return g.answer, g.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fptr(f float64) *float64 { return &f }

func sampleProfile(userID string) *model.Profile {
	return &model.Profile{
		UserID:            userID,
		Age:               30,
		Gender:            model.GenderFemale,
		Weight:            fptr(60),
		Height:            fptr(165),
		Allergies:         []string{"nuts"},
		MedicalConditions: []string{},
	}
}
