// Package tui is the terminal front end of healthctl.
//
// It is a thin bubbletea program over view.Controller: a command bar at the
// bottom, the active panel above it. The Model never changes view-state
// itself. Every command becomes a tea.Cmd that calls the controller, and the
// controller's observer pushes a fresh snapshot back into the program, which
// is what gets rendered.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sakif/health-diary/internal/apperror"
	"github.com/sakif/health-diary/internal/model"
	"github.com/sakif/health-diary/internal/view"
)

// HistorySource fetches past recommendations. *api.Client satisfies it.
type HistorySource interface {
	RecommendationHistory(ctx context.Context, userID string, limit int) ([]model.Recommendation, error)
}

// Model is the bubbletea model.
type Model struct {
	ctx          context.Context
	controller   *view.Controller
	history      HistorySource
	historyLimit int
	endpoint     string

	input    textinput.Model
	state    view.State
	barErr   string
	showHelp bool

	pastRecs  []model.Recommendation
	recsShown bool

	width int
}

// New returns a Model for controller. history may be nil, which disables
// the history command.
func New(ctx context.Context, controller *view.Controller, history HistorySource, historyLimit int, endpoint string) *Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "type a command, or help"
	ti.CharLimit = 512
	ti.Focus()

	return &Model{
		ctx:          ctx,
		controller:   controller,
		history:      history,
		historyLimit: historyLimit,
		endpoint:     endpoint,
		input:        ti,
		state:        controller.State(),
	}
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, m *Model) error {
	p := tea.NewProgram(m, tea.WithContext(ctx))
	unsubscribe := m.controller.Subscribe(func(s view.State) {
		p.Send(stateMsg(s))
	})
	defer unsubscribe()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			m.input.SetValue("")
			m.barErr = ""
			return m, nil
		case tea.KeyEnter:
			line := m.input.Value()
			m.input.SetValue("")
			m.barErr = ""
			return m, m.dispatch(line)
		}

	case stateMsg:
		prev := m.state
		m.state = view.State(msg)
		if prev.Phase == view.PhaseAuthenticated && m.state.Phase == view.PhaseAnonymous {
			m.pastRecs = nil
			m.recsShown = false
		}
		return m, nil

	case settledMsg:
		if msg.err != nil && (!msg.network || errors.Is(msg.err, view.ErrNotAllowed) || errors.Is(msg.err, view.ErrBusy)) {
			m.barErr = describe(msg.err)
		}
		return m, nil

	case historyMsg:
		if msg.err != nil {
			m.barErr = apperror.UserMessage(msg.err, "Error loading recommendation history")
			return m, nil
		}
		m.pastRecs = msg.items
		m.recsShown = true
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.render())
	b.WriteString("\n")
	if m.barErr != "" {
		b.WriteString(errorStyle.Render(m.barErr))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	return b.String()
}

// describe renders a command-bar error.
func describe(err error) string {
	switch {
	case errors.Is(err, view.ErrNotAllowed):
		return "That command is not available here."
	case errors.Is(err, view.ErrBusy):
		return "Still working on the previous request."
	}
	return apperror.UserMessage(err, err.Error())
}
