package view

import "errors"

var (
	// ErrNotAllowed is returned for an intent the current state does not offer.
	ErrNotAllowed = errors.New("view: not available in current state")
	// ErrBusy is returned when the same action is already in flight.
	ErrBusy = errors.New("view: action already in progress")
)

// intent is anything the user can ask for.
type intent int

const (
	intentSetUsername intent = iota
	intentSetAuthMode
	intentEditRegister
	intentLogin
	intentRegister
	intentSelectPanel
	intentBeginEdit
	intentEditProfile
	intentCancelEdit
	intentSaveProfile
	intentEditDiary
	intentAddEntry
	intentRecommend
)

func (i intent) String() string {
	switch i {
	case intentSetUsername:
		return "set-username"
	case intentSetAuthMode:
		return "set-auth-mode"
	case intentEditRegister:
		return "edit-register"
	case intentLogin:
		return "login"
	case intentRegister:
		return "register"
	case intentSelectPanel:
		return "select-panel"
	case intentBeginEdit:
		return "begin-edit"
	case intentEditProfile:
		return "edit-profile"
	case intentCancelEdit:
		return "cancel-edit"
	case intentSaveProfile:
		return "save-profile"
	case intentEditDiary:
		return "edit-diary"
	case intentAddEntry:
		return "add-entry"
	case intentRecommend:
		return "recommend"
	}
	return "unknown"
}

// guard reports whether an intent is offered in s.
type guard func(s *State) bool

func anonymous(s *State) bool     { return s.Phase == PhaseAnonymous }
func authenticated(s *State) bool { return s.Phase == PhaseAuthenticated }

func inMode(m AuthMode) guard {
	return func(s *State) bool { return anonymous(s) && s.Mode == m }
}

func onProfile(e EditMode) guard {
	return func(s *State) bool {
		return authenticated(s) && s.Panel == PanelProfile && s.Edit == e
	}
}

// transitions is the table every intent is checked against. Logout is not
// listed: it is accepted in every state.
var transitions = map[intent]guard{
	intentSetUsername:  inMode(ModeLogin),
	intentSetAuthMode:  anonymous,
	intentEditRegister: inMode(ModeRegister),
	intentLogin:        inMode(ModeLogin),
	intentRegister:     inMode(ModeRegister),
	intentSelectPanel:  authenticated,
	intentBeginEdit:    onProfile(EditView),
	intentEditProfile:  onProfile(EditEditing),
	intentCancelEdit:   onProfile(EditEditing),
	intentSaveProfile:  onProfile(EditEditing),
	intentEditDiary:    authenticated,
	intentAddEntry:     authenticated,
	intentRecommend:    authenticated,
}

// Allowed reports whether the named intent would be accepted in s, ignoring
// busy flags. Renderers use it to decide which controls to offer.
func (s State) Allowed(name string) bool {
	for i, g := range transitions {
		if i.String() == name {
			return g(&s)
		}
	}
	return name == "logout"
}

func check(s *State, i intent) error {
	g, ok := transitions[i]
	if !ok || !g(s) {
		return ErrNotAllowed
	}
	return nil
}
