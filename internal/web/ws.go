package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"persona-board/internal/dialog"
)

var errNoClient = errors.New("web: no dialog client connected")

// Frames sent to a dialog client.
const (
	frameDialog   = "dialog"
	frameOutbound = "outbound"
	frameClosed   = "closed"
	frameBoard    = "board"
	frameError    = "error"
)

type serverFrame struct {
	Type     string           `json:"type"`
	Session  string           `json:"session,omitempty"`
	Request  *dialog.Request  `json:"request,omitempty"`
	Outbound *dialog.Outbound `json:"outbound,omitempty"`
	Data     any              `json:"data,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// clientFrame answers a dialog: either a message or a dismissal.
type clientFrame struct {
	Session string          `json:"session"`
	Message *dialog.Message `json:"message,omitempty"`
	Dismiss bool            `json:"dismiss,omitempty"`
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  32 * 1024,
	WriteBufferSize: 32 * 1024,
	CheckOrigin: sameOrigin,
}

// sameOrigin accepts requests without an Origin header and browser requests
// whose origin host (with port) is the one being served.
func sameOrigin(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, strings.TrimSpace(r.Host))
}

type client struct {
	conn *websocket.Conn
	done chan struct{}

	writeMu sync.Mutex

	mu       sync.Mutex
	sessions map[string]*dialog.Session
}

func (c *client) write(f serverFrame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(f)
}

func (c *client) session(id string) (*dialog.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[id]
	return s, ok
}

// Present hands a dialog to the most recently connected client.
func (s *Server) Present(_ context.Context, sess *dialog.Session) error {
	s.mu.Lock()
	var c *client
	if n := len(s.clients); n > 0 {
		c = s.clients[n-1]
	}
	s.mu.Unlock()
	if c == nil {
		return errNoClient
	}

	c.mu.Lock()
	c.sessions[sess.ID] = sess
	c.mu.Unlock()

	req := sess.Request
	if err := c.write(serverFrame{Type: frameDialog, Session: sess.ID, Request: &req}); err != nil {
		c.mu.Lock()
		delete(c.sessions, sess.ID)
		c.mu.Unlock()
		return err
	}
	go s.forward(c, sess)
	return nil
}

// forward relays the widget's pushes and the dialog's closing to c.
func (s *Server) forward(c *client, sess *dialog.Session) {
	defer func() {
		c.mu.Lock()
		delete(c.sessions, sess.ID)
		c.mu.Unlock()
	}()
	for {
		select {
		case <-c.done:
			return
		case o := <-sess.Outbound():
			if err := c.write(serverFrame{Type: frameOutbound, Session: sess.ID, Outbound: &o}); err != nil {
				s.log.Warn("dialog push failed", "session", sess.ID, "err", err)
			}
		case <-sess.Done():
			_ = c.write(serverFrame{Type: frameClosed, Session: sess.ID})
			return
		}
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "websocket upgrade failed", http.StatusBadRequest)
		return
	}
	defer conn.Close()

	c := &client{conn: conn, done: make(chan struct{}), sessions: map[string]*dialog.Session{}}
	s.attach(c)
	defer s.detach(c)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	changed, unsubscribe := s.hub.subscribe()
	defer unsubscribe()
	go s.pushBoards(ctx, c, changed)

	for {
		var f clientFrame
		if err := conn.ReadJSON(&f); err != nil {
			var ce *websocket.CloseError
			if !errors.As(err, &ce) {
				s.log.Debug("dialog client read failed", "err", err)
			}
			return
		}
		if err := s.answer(c, f); err != nil {
			_ = c.write(serverFrame{Type: frameError, Session: f.Session, Error: err.Error()})
		}
	}
}

func (s *Server) answer(c *client, f clientFrame) error {
	sess, ok := c.session(f.Session)
	if !ok {
		return dialog.ErrNoDialog
	}
	if f.Dismiss {
		return sess.Dismiss()
	}
	if f.Message == nil {
		return errors.New("web: frame carries neither a message nor a dismissal")
	}
	return sess.Reply(*f.Message)
}

// pushBoards sends the current board on connect and after every change.
func (s *Server) pushBoards(ctx context.Context, c *client, changed <-chan struct{}) {
	send := func() bool {
		v, err := s.read(ctx, func(ctx context.Context) (any, error) {
			return s.w.Board(), nil
		})
		if err != nil {
			return false
		}
		return c.write(serverFrame{Type: frameBoard, Data: v}) == nil
	}
	if !send() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-changed:
			if !send() {
				return
			}
		}
	}
}

func (s *Server) attach(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients = append(s.clients, c)
}

// detach drops c and dismisses the dialogs it still had open.
func (s *Server) detach(c *client) {
	s.mu.Lock()
	for i, x := range s.clients {
		if x == c {
			s.clients = append(s.clients[:i], s.clients[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	c.mu.Lock()
	open := make([]*dialog.Session, 0, len(c.sessions))
	for _, sess := range c.sessions {
		open = append(open, sess)
	}
	c.mu.Unlock()
	close(c.done)
	for _, sess := range open {
		_ = sess.Dismiss()
	}
}
