package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sakif/health-diary/internal/model"
	"github.com/sakif/health-diary/internal/view"
)

// settledMsg reports the outcome of one command line. network is set for
// actions whose failures the controller already turns into a Notice.
type settledMsg struct {
	err     error
	network bool
}

// historyMsg carries a fetched recommendation history.
type historyMsg struct {
	items []model.Recommendation
	err   error
}

// stateMsg is sent by the controller observer so the program re-renders.
type stateMsg view.State

// errUnknownCommand is shown when the command bar cannot be parsed.
var errUnknownCommand = errors.New("unknown command, type help")

// command is one parsed command-bar line.
type command struct {
	name string
	args []string
	// rest is everything after the first argument, spaces kept. Used by
	// "set <field> <value...>".
	rest string
}

func parseCommand(line string) (command, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}, false
	}
	c := command{name: strings.ToLower(fields[0]), args: fields[1:]}
	if len(fields) >= 2 {
		trimmed := strings.TrimSpace(line)
		after := strings.TrimSpace(trimmed[len(fields[0]):])
		after = strings.TrimSpace(after[len(fields[1]):])
		c.rest = after
	}
	return c, true
}

// dispatch turns a command line into a tea.Cmd. Controller calls always
// run inside the returned Cmd, off the event loop, because the controller
// notifies observers synchronously and the observer feeds the program.
func (m *Model) dispatch(line string) tea.Cmd {
	cmd, ok := parseCommand(line)
	if !ok {
		return nil
	}
	c := m.controller
	s := m.state

	ctx := m.ctx
	run := func(fn func(ctx context.Context) error) tea.Cmd {
		return func() tea.Msg {
			return settledMsg{err: fn(ctx), network: true}
		}
	}
	quick := func(fn func() error) tea.Cmd {
		return func() tea.Msg {
			return settledMsg{err: fn()}
		}
	}

	switch cmd.name {
	case "quit", "exit":
		return tea.Quit

	case "help", "?":
		m.showHelp = !m.showHelp
		return nil

	case "login":
		if len(cmd.args) > 0 {
			username := strings.Join(cmd.args, " ")
			return run(func(ctx context.Context) error {
				if err := c.SetLoginUsername(username); err != nil {
					return err
				}
				return c.Login(ctx)
			})
		}
		if s.Phase == view.PhaseAnonymous && s.Mode == view.ModeRegister {
			return quick(func() error { return c.SetAuthMode(view.ModeLogin) })
		}
		return run(c.Login)

	case "register":
		if s.Phase == view.PhaseAnonymous && s.Mode == view.ModeRegister {
			return run(c.Register)
		}
		return quick(func() error { return c.SetAuthMode(view.ModeRegister) })

	case "set":
		if len(cmd.args) < 1 {
			return m.fail(errors.New("usage: set <field> <value>"))
		}
		field, value := cmd.args[0], cmd.rest
		switch {
		case s.Phase == view.PhaseAnonymous && s.Mode == view.ModeLogin && isUsername(field):
			return quick(func() error { return c.SetLoginUsername(value) })
		case s.Phase == view.PhaseAnonymous:
			return quick(func() error { return c.SetRegisterField(field, value) })
		case s.Panel == view.PanelProfile:
			return quick(func() error { return c.SetProfileField(field, value) })
		case s.Panel == view.PanelDiary:
			return quick(func() error { return c.SetDiaryField(field, value) })
		}
		return m.fail(errors.New("nothing to edit on this panel"))

	case "profile", "diary", "recommendations", "tab":
		name := cmd.name
		if name == "tab" {
			if len(cmd.args) == 0 {
				return m.fail(errors.New("usage: tab <profile|diary|recommendations>"))
			}
			name = cmd.args[0]
		}
		p, ok := view.ParsePanel(name)
		if !ok {
			return m.fail(fmt.Errorf("unknown panel %q", name))
		}
		return quick(func() error { return c.SelectPanel(p) })

	case "edit":
		return quick(c.BeginEdit)
	case "cancel":
		return quick(c.CancelEdit)
	case "save":
		return run(c.SaveProfile)
	case "add":
		return run(c.AddEntry)
	case "recommend":
		return run(c.GenerateRecommendation)
	case "history":
		return m.fetchHistory()
	case "logout":
		return quick(func() error { c.Logout(); return nil })
	}
	return m.fail(errUnknownCommand)
}

func (m *Model) fetchHistory() tea.Cmd {
	if m.history == nil || m.state.User == nil {
		return m.fail(errors.New("history is available after login"))
	}
	userID := m.state.User.UserID
	limit := m.historyLimit
	src := m.history
	ctx := m.ctx
	return func() tea.Msg {
		items, err := src.RecommendationHistory(ctx, userID, limit)
		return historyMsg{items: items, err: err}
	}
}

// fail reports a command-bar problem without touching the controller.
func (m *Model) fail(err error) tea.Cmd {
	return func() tea.Msg { return settledMsg{err: err} }
}

func isUsername(field string) bool {
	switch strings.ToLower(field) {
	case "username", "user_id", "user":
		return true
	}
	return false
}
