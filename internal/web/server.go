// Package web serves a widget over HTTP: the derived board and menu commands
// as JSON, dialogs over a websocket, and Prometheus metrics.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"persona-board/internal/logging"
	"persona-board/internal/mutate"
	"persona-board/internal/widget"
)

type ServerConfig struct {
	Addr string
}

// Server owns the widget event loop: every mutation, whether it comes from
// an HTTP request or a dialog answer, runs on the goroutine calling Run.
type Server struct {
	cfg      ServerConfig
	w        *widget.Widget
	log      *logging.Logger
	gatherer prometheus.Gatherer

	jobs chan job
	hub  *boardHub

	mu      sync.Mutex
	clients []*client
}

type job struct {
	ctx   context.Context
	fn    func(ctx context.Context) (any, error)
	quiet bool
	done  chan result
}

type result struct {
	v   any
	err error
}

// NewServer attaches the server to w as its dialog frontend. gatherer backs
// /metrics; nil uses the default registry.
func NewServer(cfg ServerConfig, w *widget.Widget, gatherer prometheus.Gatherer, log *logging.Logger) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	if cfg.Addr == "" {
		return nil, errors.New("web: addr is empty")
	}
	if w == nil {
		return nil, errors.New("web: widget is nil")
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if log == nil {
		log = logging.Nop()
	}
	s := &Server{
		cfg:      cfg,
		w:        w,
		log:      log,
		gatherer: gatherer,
		jobs:     make(chan job),
		hub:      newBoardHub(),
	}
	w.Host().SetFrontend(s)
	return s, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

// Run applies dialog answers and queued jobs until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case in := <-s.w.Host().Inbox():
			if err := s.w.HandleMessage(ctx, in); err != nil {
				s.log.Warn("dialog message failed", "type", in.Message.Type, "err", err)
			}
			s.hub.broadcast()
		case j := <-s.jobs:
			v, err := j.fn(j.ctx)
			j.done <- result{v: v, err: err}
			if !j.quiet {
				s.hub.broadcast()
			}
		}
	}
}

// Do runs fn on the event loop and waits for its result. Connected clients
// are told the board may have changed.
func (s *Server) Do(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	return s.run(ctx, job{ctx: ctx, fn: fn, done: make(chan result, 1)})
}

// read runs a job that does not change the board.
func (s *Server) read(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	return s.run(ctx, job{ctx: ctx, fn: fn, quiet: true, done: make(chan result, 1)})
}

func (s *Server) run(ctx context.Context, j job) (any, error) {
	select {
	case s.jobs <- j:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-j.done:
		return r.v, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /view", s.handleView)
	mux.HandleFunc("GET /commands", s.handleCommands)
	mux.HandleFunc("POST /commands/{command}", s.handleInvoke)
	mux.HandleFunc("POST /profiles/{profileId}/delete", s.handleOpenDialog(func(ctx context.Context, id string) error {
		_, err := s.w.OpenDeleteProfile(ctx, id)
		return err
	}, "profileId"))
	mux.HandleFunc("POST /profiles/{profileId}/category", s.handleOpenDialog(func(ctx context.Context, id string) error {
		_, err := s.w.OpenCategoryPicker(ctx, id)
		return err
	}, "profileId"))
	mux.HandleFunc("POST /categories/{categoryId}/edit", s.handleOpenDialog(func(ctx context.Context, id string) error {
		_, err := s.w.OpenCategoryForm(ctx, id)
		return err
	}, "categoryId"))
	mux.HandleFunc("POST /categories/{categoryId}/delete", s.handleOpenDialog(func(ctx context.Context, id string) error {
		_, err := s.w.OpenDeleteCategory(ctx, id)
		return err
	}, "categoryId"))
	mux.HandleFunc("GET /dialogs/ws", s.handleWS)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	v, err := s.read(r.Context(), func(ctx context.Context) (any, error) {
		return s.w.Board(), nil
	})
	writeResult(w, v, err)
}

func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": widget.Commands})
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	cmd := widget.Command(r.PathValue("command"))
	known := false
	for _, c := range widget.Commands {
		known = known || c == cmd
	}
	if !known {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "unknown command: " + string(cmd)})
		return
	}
	v, err := s.Do(r.Context(), func(ctx context.Context) (any, error) {
		if err := s.w.Invoke(ctx, cmd); err != nil {
			return nil, err
		}
		return map[string]any{"command": cmd, "dialogOpen": s.w.Host().Current() != nil}, nil
	})
	writeResult(w, v, err)
}

func (s *Server) handleOpenDialog(open func(ctx context.Context, id string) error, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.PathValue(param))
		v, err := s.Do(r.Context(), func(ctx context.Context) (any, error) {
			if err := open(ctx, id); err != nil {
				return nil, err
			}
			return map[string]any{"dialogOpen": s.w.Host().Current() != nil}, nil
		})
		writeResult(w, v, err)
	}
}

func writeResult(w http.ResponseWriter, v any, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"data": v})
	case mutate.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// boardHub fans out "board changed" signals to websocket clients.
type boardHub struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func newBoardHub() *boardHub {
	return &boardHub{subs: map[chan struct{}]struct{}{}}
}

func (h *boardHub) subscribe() (ch chan struct{}, cancel func()) {
	ch = make(chan struct{}, 1)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
}

func (h *boardHub) broadcast() {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	h.mu.Unlock()
}
