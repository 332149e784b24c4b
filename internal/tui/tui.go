// Package tui is the interactive terminal board. It is also the dialog
// frontend: dialogs open as modals, and their answers are applied on the
// Bubble Tea update loop.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"persona-board/internal/dialog"
	"persona-board/internal/logging"
	"persona-board/internal/metrics"
	"persona-board/internal/state"
)

type Options struct {
	Logger  *logging.Logger
	Metrics *metrics.Metrics
	// Remote signals that another editor changed the store.
	Remote <-chan struct{}
}

// Run shows the board for st until the user quits.
func Run(ctx context.Context, st *state.State, host *dialog.Host, opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()

	m := newModel(ctx, st, host, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	m.attach(p.Send)
	defer host.SetFrontend(nil)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

type (
	// dialogMsg carries a session opened by the widget.
	dialogMsg struct{ s *dialog.Session }
	// inboundMsg is a dialog answer to apply.
	inboundMsg struct{ in dialog.Inbound }
	// outboundMsg is a push from the widget to an open dialog.
	outboundMsg struct {
		s *dialog.Session
		o dialog.Outbound
	}
	remoteMsg     struct{}
	clearFlashMsg struct{ seq int }
)

// frontend hands sessions to the program as messages.
type frontend struct{ send func(tea.Msg) }

func (f frontend) Present(_ context.Context, s *dialog.Session) error {
	f.send(dialogMsg{s: s})
	return nil
}

func waitInbox(host *dialog.Host) tea.Cmd {
	return func() tea.Msg { return inboundMsg{in: <-host.Inbox()} }
}

func waitOutbound(s *dialog.Session) tea.Cmd {
	return func() tea.Msg {
		select {
		case o := <-s.Outbound():
			return outboundMsg{s: s, o: o}
		case <-s.Done():
			return nil
		}
	}
}

func waitRemote(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return remoteMsg{}
	}
}
