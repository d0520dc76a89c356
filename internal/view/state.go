// Package view is the View Controller: it turns user intents into calls on
// the session and diary owners and keeps one observable view-state.
//
// STATE DIMENSIONS:
//
//	Phase     anonymous | authenticated     (login, logout)
//	AuthMode  login | register              (anonymous only, user toggled)
//	Panel     profile | diary | recommendations  (authenticated only)
//	EditMode  view | edit                   (nested in the profile panel)
//
// Each dimension is its own enumerated type and every intent is checked
// against a transition table (see transitions.go) before it does anything,
// so combinations like "editing while anonymous" are never reached.
//
// BUSY FLAGS:
// Every network-backed intent has a busy flag of its own. While it is set the
// same intent is refused with ErrBusy. Other intents keep working, so the
// user can move between panels while a request is in flight.
package view

import (
	"github.com/sakif/health-diary/internal/form"
	"github.com/sakif/health-diary/internal/model"
)

// Phase is the session phase.
type Phase int

const (
	PhaseAnonymous Phase = iota
	PhaseAuthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseAnonymous:
		return "anonymous"
	case PhaseAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// AuthMode selects the form shown to an anonymous user.
type AuthMode int

const (
	ModeLogin AuthMode = iota
	ModeRegister
)

func (m AuthMode) String() string {
	switch m {
	case ModeLogin:
		return "login"
	case ModeRegister:
		return "register"
	}
	return "unknown"
}

// Panel is the active panel of an authenticated user.
type Panel int

const (
	PanelProfile Panel = iota
	PanelDiary
	PanelRecommendations
)

// Panels lists every panel in display order.
var Panels = []Panel{PanelProfile, PanelDiary, PanelRecommendations}

func (p Panel) String() string {
	switch p {
	case PanelProfile:
		return "profile"
	case PanelDiary:
		return "diary"
	case PanelRecommendations:
		return "recommendations"
	}
	return "unknown"
}

// ParsePanel accepts a panel name as printed by String.
func ParsePanel(s string) (Panel, bool) {
	for _, p := range Panels {
		if p.String() == s {
			return p, true
		}
	}
	return 0, false
}

// EditMode is whether the profile panel shows the edit buffer.
type EditMode int

const (
	EditView EditMode = iota
	EditEditing
)

func (e EditMode) String() string {
	if e == EditEditing {
		return "edit"
	}
	return "view"
}

// Action names a network-backed intent. Each has its own busy flag.
type Action int

const (
	ActionLogin Action = iota
	ActionRegister
	ActionSaveProfile
	ActionAddEntry
	ActionRecommend

	actionCount
)

func (a Action) String() string {
	switch a {
	case ActionLogin:
		return "login"
	case ActionRegister:
		return "register"
	case ActionSaveProfile:
		return "save-profile"
	case ActionAddEntry:
		return "add-entry"
	case ActionRecommend:
		return "recommend"
	}
	return "unknown"
}

// NoticeKind classifies a Notice.
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeSuccess
	NoticeError
)

// Notice is the one-line message shown after an action settles.
type Notice struct {
	Kind NoticeKind
	Text string
}

func success(text string) Notice { return Notice{Kind: NoticeSuccess, Text: text} }
func failure(text string) Notice { return Notice{Kind: NoticeError, Text: text} }

// State is a snapshot of everything a renderer needs. Snapshots are values:
// holding on to one never observes later changes.
type State struct {
	Phase Phase
	Mode  AuthMode
	Panel Panel
	Edit  EditMode

	// User is the session profile, nil when anonymous.
	User *model.Profile

	// Drafts.
	LoginUsername string
	Register      form.ProfileDraft
	Profile       form.ProfileDraft // profile edit buffer
	Diary         form.DiaryDraft

	Entries        []model.DiaryEntry
	Recommendation string
	Notice         Notice

	busy [actionCount]bool
}

// Busy reports whether a is in flight.
func (s State) Busy(a Action) bool {
	if a < 0 || a >= actionCount {
		return false
	}
	return s.busy[a]
}

// AnyBusy reports whether any action is in flight.
func (s State) AnyBusy() bool {
	for _, b := range s.busy {
		if b {
			return true
		}
	}
	return false
}
