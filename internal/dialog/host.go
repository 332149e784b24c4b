package dialog

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"persona-board/internal/logging"
)

// Frontend presents a session to a user (or a script) and eventually answers
// through Session.Reply or Session.Dismiss. Present may return before the
// dialog is answered.
type Frontend interface {
	Present(ctx context.Context, s *Session) error
}

type FrontendFunc func(ctx context.Context, s *Session) error

func (f FrontendFunc) Present(ctx context.Context, s *Session) error { return f(ctx, s) }

// Host owns the single open dialog. Opening a dialog closes the previous one.
type Host struct {
	mu       sync.Mutex
	frontend Frontend
	current  *Session
	inbox    chan Inbound
	log      *logging.Logger
}

func NewHost(frontend Frontend, log *logging.Logger) *Host {
	if log == nil {
		log = logging.Nop()
	}
	return &Host{
		frontend: frontend,
		inbox:    make(chan Inbound, 16),
		log:      log,
	}
}

// SetFrontend swaps the frontend used for dialogs opened from now on.
func (h *Host) SetFrontend(f Frontend) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frontend = f
}

// Open replaces the current dialog with a new session for req and hands it to
// the frontend. A frontend error closes the session.
func (h *Host) Open(ctx context.Context, req Request) *Session {
	s := newSession(uuid.NewString(), req, h.inbox)

	h.mu.Lock()
	prev := h.current
	h.current = s
	frontend := h.frontend
	h.mu.Unlock()

	if prev != nil {
		prev.close()
		h.log.Debug("dialog replaced", "session", prev.ID, "kind", prev.Request.Kind)
	}
	h.log.Debug("dialog opened", "session", s.ID, "kind", req.Kind)

	if frontend == nil {
		h.log.Warn("no dialog frontend configured", "kind", req.Kind)
		h.Close(s.ID)
		return s
	}
	go func() {
		if err := frontend.Present(ctx, s); err != nil {
			h.log.Warn("dialog frontend failed", "session", s.ID, "kind", req.Kind, "err", err)
			h.Close(s.ID)
		}
	}()
	return s
}

// Inbox delivers every inbound message, including those from replaced sessions.
func (h *Host) Inbox() <-chan Inbound { return h.inbox }

func (h *Host) Current() *Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Accepts reports whether in belongs to the open dialog.
func (h *Host) Accepts(in Inbound) bool {
	cur := h.Current()
	return cur != nil && cur.ID == in.SessionID && !cur.Closed()
}

// Close closes the session with id if it is the open one.
func (h *Host) Close(id string) bool {
	h.mu.Lock()
	s := h.current
	if s == nil || s.ID != id {
		h.mu.Unlock()
		return false
	}
	h.current = nil
	h.mu.Unlock()
	s.close()
	h.log.Debug("dialog closed", "session", id, "kind", s.Request.Kind)
	return true
}

// Push sends o to the open dialog with id.
func (h *Host) Push(id string, o Outbound) error {
	cur := h.Current()
	if cur == nil || cur.ID != id {
		return ErrNoDialog
	}
	return cur.push(o)
}
