package view

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/sakif/health-diary/internal/apperror"
	"github.com/sakif/health-diary/internal/form"
	"github.com/sakif/health-diary/internal/model"
	"github.com/sakif/health-diary/internal/session"
)

const (
	msgUsernameRequired = "Please enter a username"
	msgLoginFailed      = "Login failed. User not found."
	msgRegistered       = "Registration successful! Please login."
	msgRegisterFailed   = "Registration failed"
	msgProfileUpdated   = "Profile updated successfully!"
	msgProfileFailed    = "Error updating profile"
	msgEntryAdded       = "Diary entry added!"
	msgEntryFailed      = "Error adding diary entry"
	msgRecommendFailed  = "Error getting recommendations. Make sure you have diary entries."
)

// Sessions is what the controller needs from the session owner.
// *session.Manager satisfies it.
type Sessions interface {
	Login(ctx context.Context, userID string) (session.AuthResult, error)
	Register(ctx context.Context, draft form.ProfileDraft) (string, error)
	UpdateProfile(ctx context.Context, draft form.ProfileDraft) (*model.Profile, error)
	Logout()
	OnReset(fn func())
	Current() *model.Profile
}

// Diary is what the controller needs from the diary owner.
// *diary.Store satisfies it.
type Diary interface {
	Refresh(ctx context.Context, userID string) error
	Append(ctx context.Context, userID string, entry model.DiaryEntry) error
	Entries() []model.DiaryEntry
}

// Recommender generates advice. *api.Client satisfies it.
type Recommender interface {
	GenerateRecommendation(ctx context.Context, userID string) (string, error)
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// Controller mediates between user intents and the owners of session and
// diary state.
//
// Every network-backed intent follows the same three steps:
//  1. under the lock: check the transition table and the busy flag, set busy
//  2. without the lock: await the call
//  3. under the lock: clear busy and apply the result in one step
//
// Observers are notified after steps 1 and 3 with a fresh snapshot.
//
// A call that completes after logout still applies its effect to the
// owners it touched. Nothing is cancelled. The view only becomes
// authenticated while the session still holds the user who logged in, and a
// late recommendation is dropped by the next successful login.
type Controller struct {
	sessions Sessions
	diary    Diary
	recs     Recommender
	logger   *slog.Logger
	now      func() time.Time

	mu    sync.Mutex
	state State

	obsMu     sync.Mutex
	observers map[int]func(State)
	nextObs   int
}

// NewController returns a Controller in the anonymous/login state and
// registers its recommendation reset with sessions.
func NewController(sessions Sessions, diary Diary, recs Recommender, opts ...Option) *Controller {
	c := &Controller{
		sessions:  sessions,
		diary:     diary,
		recs:      recs,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
		observers: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.state = State{
		Phase:    PhaseAnonymous,
		Mode:     ModeLogin,
		Panel:    PanelProfile,
		Edit:     EditView,
		Register: form.NewProfileDraft(),
		Profile:  form.NewProfileDraft(),
		Diary:    form.NewDiaryDraft(c.now()),
	}

	sessions.OnReset(c.clearRecommendation)
	return c
}

// ===== OBSERVATION =====

// State returns a snapshot of the current view-state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every change. The
// returned func unregisters it. fn runs on the goroutine that made the
// change, with no Controller lock held.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	return func() {
		c.obsMu.Lock()
		defer c.obsMu.Unlock()
		delete(c.observers, id)
	}
}

func (c *Controller) snapshotLocked() State {
	s := c.state
	s.User = c.sessions.Current()
	if s.User == nil {
		s.Entries = []model.DiaryEntry{}
	} else {
		s.Entries = c.diary.Entries()
	}
	return s
}

func (c *Controller) notify() {
	snap := c.State()

	c.obsMu.Lock()
	fns := make([]func(State), 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	c.obsMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// update runs fn under the lock after checking i against the transition
// table, then notifies observers.
func (c *Controller) update(i intent, fn func(s *State) error) error {
	c.mu.Lock()
	if err := check(&c.state, i); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", i, err)
	}
	err := fn(&c.state)
	c.mu.Unlock()

	c.notify()
	return err
}

// begin checks i and marks a busy. The returned snapshot is what the
// network call should work from.
func (c *Controller) begin(i intent, a Action) (State, error) {
	c.mu.Lock()
	if err := check(&c.state, i); err != nil {
		c.mu.Unlock()
		return State{}, fmt.Errorf("%s: %w", i, err)
	}
	if c.state.busy[a] {
		c.mu.Unlock()
		return State{}, fmt.Errorf("%s: %w", i, ErrBusy)
	}
	c.state.busy[a] = true
	c.state.Notice = Notice{}
	snap := c.state
	c.mu.Unlock()

	c.notify()
	return snap, nil
}

// finish clears a's busy flag and applies fn in the same critical section.
func (c *Controller) finish(a Action, fn func(s *State)) {
	c.mu.Lock()
	c.state.busy[a] = false
	fn(&c.state)
	c.mu.Unlock()

	c.notify()
}

// ===== ANONYMOUS =====

// SetLoginUsername edits the login form.
func (c *Controller) SetLoginUsername(username string) error {
	return c.update(intentSetUsername, func(s *State) error {
		s.LoginUsername = username
		return nil
	})
}

// SetAuthMode toggles between the login and register forms.
func (c *Controller) SetAuthMode(mode AuthMode) error {
	return c.update(intentSetAuthMode, func(s *State) error {
		s.Mode = mode
		s.Notice = Notice{}
		return nil
	})
}

// SetRegisterField edits one field of the registration draft.
func (c *Controller) SetRegisterField(field, value string) error {
	return c.update(intentEditRegister, func(s *State) error {
		return s.Register.Set(field, value)
	})
}

// Login authenticates the username in the login form. On success the diary
// is refreshed before the login control is released, and the profile panel
// is shown in view mode.
func (c *Controller) Login(ctx context.Context) error {
	snap, err := c.begin(intentLogin, ActionLogin)
	if err != nil {
		return err
	}

	res, err := c.sessions.Login(ctx, snap.LoginUsername)
	if err == nil {
		// A refresh failure leaves the list empty and is only logged.
		_ = c.diary.Refresh(ctx, res.User.UserID)
	}

	authenticated := false
	c.finish(ActionLogin, func(s *State) {
		if err != nil {
			s.Notice = failure(apperror.UserMessage(err, msgLoginFailed))
			return
		}
		// Logged out while the refresh was running.
		if cur := c.sessions.Current(); cur == nil || cur.UserID != res.User.UserID {
			return
		}
		authenticated = true
		s.Phase = PhaseAuthenticated
		s.Panel = PanelProfile
		s.Edit = EditView
		s.Profile = res.Draft
		s.Recommendation = ""
	})
	switch {
	case err != nil:
	case authenticated:
		c.logger.Info("view: authenticated", slog.String("user_id", res.User.UserID))
	default:
		c.logger.Info("view: login completed after logout", slog.String("user_id", res.User.UserID))
	}
	return err
}

// Register submits the registration draft. On success the login form is
// shown with the new username filled in and the draft is cleared; the user
// still has to log in. On failure the draft is kept.
func (c *Controller) Register(ctx context.Context) error {
	snap, err := c.begin(intentRegister, ActionRegister)
	if err != nil {
		return err
	}

	userID, err := c.sessions.Register(ctx, snap.Register)

	c.finish(ActionRegister, func(s *State) {
		if err != nil {
			s.Notice = failure(apperror.UserMessage(err, msgRegisterFailed))
			return
		}
		s.Mode = ModeLogin
		s.LoginUsername = userID
		s.Register = form.NewProfileDraft()
		s.Notice = success(msgRegistered)
	})
	return err
}

// ===== AUTHENTICATED =====

// SelectPanel switches the active panel. Selecting recommendations does not
// generate anything.
func (c *Controller) SelectPanel(p Panel) error {
	return c.update(intentSelectPanel, func(s *State) error {
		s.Panel = p
		return nil
	})
}

// BeginEdit enters edit mode with the buffer seeded from the session profile.
func (c *Controller) BeginEdit() error {
	user := c.sessions.Current()
	return c.update(intentBeginEdit, func(s *State) error {
		s.Edit = EditEditing
		s.Profile = form.ProfileDraftFrom(user)
		s.Notice = Notice{}
		return nil
	})
}

// SetProfileField edits one field of the profile buffer.
func (c *Controller) SetProfileField(field, value string) error {
	return c.update(intentEditProfile, func(s *State) error {
		return s.Profile.Set(field, value)
	})
}

// CancelEdit leaves edit mode and reverts the buffer to the session profile.
func (c *Controller) CancelEdit() error {
	user := c.sessions.Current()
	return c.update(intentCancelEdit, func(s *State) error {
		s.Edit = EditView
		s.Profile = form.ProfileDraftFrom(user)
		return nil
	})
}

// SaveProfile submits the profile buffer. Edit mode is left only on success.
func (c *Controller) SaveProfile(ctx context.Context) error {
	snap, err := c.begin(intentSaveProfile, ActionSaveProfile)
	if err != nil {
		return err
	}

	updated, err := c.sessions.UpdateProfile(ctx, snap.Profile)

	c.finish(ActionSaveProfile, func(s *State) {
		if err != nil {
			s.Notice = failure(apperror.UserMessage(err, msgProfileFailed))
			return
		}
		s.Edit = EditView
		s.Profile = form.ProfileDraftFrom(updated)
		s.Notice = success(msgProfileUpdated)
	})
	return err
}

// SetDiaryField edits one field of the diary draft.
func (c *Controller) SetDiaryField(field, value string) error {
	return c.update(intentEditDiary, func(s *State) error {
		return s.Diary.Set(field, value)
	})
}

// AddEntry assembles the diary draft and submits it. The control stays busy
// until the follow-up refresh has finished. On success the draft resets; on
// failure it is kept for resubmission.
func (c *Controller) AddEntry(ctx context.Context) error {
	snap, err := c.begin(intentAddEntry, ActionAddEntry)
	if err != nil {
		return err
	}

	userID := c.userID()
	entry, err := snap.Diary.Entry(c.now())
	if err == nil {
		err = c.diary.Append(ctx, userID, entry)
	}

	c.finish(ActionAddEntry, func(s *State) {
		if err != nil {
			s.Notice = failure(apperror.UserMessage(err, msgEntryFailed))
			return
		}
		s.Diary = form.NewDiaryDraft(c.now())
		s.Notice = success(msgEntryAdded)
	})
	return err
}

// GenerateRecommendation asks for new advice. On success the text replaces
// the previous one and the recommendations panel is shown.
func (c *Controller) GenerateRecommendation(ctx context.Context) error {
	if _, err := c.begin(intentRecommend, ActionRecommend); err != nil {
		return err
	}

	text, err := c.recs.GenerateRecommendation(ctx, c.userID())
	if err != nil {
		c.logger.Warn("view: recommendation failed", slog.String("error", err.Error()))
	}

	c.finish(ActionRecommend, func(s *State) {
		if err != nil {
			s.Notice = failure(apperror.UserMessage(err, msgRecommendFailed))
			return
		}
		s.Recommendation = text
		if s.Phase == PhaseAuthenticated {
			s.Panel = PanelRecommendations
		}
	})
	return err
}

// Logout resets the session (which clears the diary and the recommendation
// through reset hooks) and returns to the login form. It is accepted in
// every state.
//
// Busy flags are left alone: each in-flight call clears its own flag when
// it finishes, so a control cannot fire twice across a logout and login.
func (c *Controller) Logout() {
	c.sessions.Logout()

	c.mu.Lock()
	c.state.Phase = PhaseAnonymous
	c.state.Mode = ModeLogin
	c.state.Panel = PanelProfile
	c.state.Edit = EditView
	c.state.LoginUsername = ""
	c.state.Profile = form.NewProfileDraft()
	c.state.Diary = form.NewDiaryDraft(c.now())
	c.state.Recommendation = ""
	c.state.Notice = Notice{}
	c.mu.Unlock()

	c.notify()
}

func (c *Controller) clearRecommendation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Recommendation = ""
}

func (c *Controller) userID() string {
	if u := c.sessions.Current(); u != nil {
		return u.UserID
	}
	return ""
}
