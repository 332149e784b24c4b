package dialog

import (
	"fmt"
	"sync"
)

// Inbound is a message delivered to the widget, tagged with its session.
// Dismissed is set when the dialog was closed from its own side without
// answering.
type Inbound struct {
	SessionID string
	Message   Message
	Dismissed bool
}

// Session is one open dialog.
type Session struct {
	ID      string
	Request Request

	inbox    chan<- Inbound
	outbound chan Outbound
	done     chan struct{}

	mu        sync.Mutex
	answered  bool
	readySent bool
	closeOnce sync.Once
}

func newSession(id string, req Request, inbox chan<- Inbound) *Session {
	return &Session{
		ID:       id,
		Request:  req,
		inbox:    inbox,
		outbound: make(chan Outbound, 1),
		done:     make(chan struct{}),
	}
}

// Reply sends m to the widget. A dialog answers with exactly one terminal
// message; an export dialog may first send uiReady once.
func (s *Session) Reply(m Message) error {
	if err := s.claim(m); err != nil {
		return err
	}
	return s.deliver(Inbound{SessionID: s.ID, Message: m})
}

// Dismiss closes the dialog from its own side without a message.
func (s *Session) Dismiss() error {
	s.mu.Lock()
	if s.answered || s.isClosed() {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.answered = true
	s.mu.Unlock()
	return s.deliver(Inbound{SessionID: s.ID, Dismissed: true})
}

func (s *Session) claim(m Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.answered || s.isClosed() {
		return ErrSessionClosed
	}
	if !s.Request.Kind.Accepts(m.Type) {
		return fmt.Errorf("%w: %s dialog cannot send %s", ErrUnexpectedMessage, s.Request.Kind, m.Type)
	}
	if m.Type == TypeUIReady {
		if s.readySent {
			return fmt.Errorf("%w: %s sent twice", ErrUnexpectedMessage, m.Type)
		}
		s.readySent = true
		return nil
	}
	s.answered = true
	return nil
}

func (s *Session) deliver(in Inbound) error {
	select {
	case s.inbox <- in:
		return nil
	case <-s.done:
		return ErrSessionClosed
	}
}

// Outbound carries the widget's push messages (the export payload).
func (s *Session) Outbound() <-chan Outbound { return s.outbound }

// Done is closed when the widget closes the dialog.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) Closed() bool { return s.isClosed() }

func (s *Session) isClosed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Session) push(o Outbound) error {
	if s.isClosed() {
		return ErrSessionClosed
	}
	select {
	case s.outbound <- o:
		return nil
	default:
		return fmt.Errorf("%w: outbound message already pending", ErrUnexpectedMessage)
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() { close(s.done) })
}
