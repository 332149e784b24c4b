package cli

import (
	"context"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"persona-board/internal/dialog"
	"persona-board/internal/i18n"
	"persona-board/internal/model"
	"persona-board/internal/state"
	"persona-board/internal/store"
	"persona-board/internal/syncstore"
	"persona-board/internal/widget"
)

type notice struct {
	Message string `json:"message"`
	Error   bool   `json:"error,omitempty"`
}

// board is one opened widget for the duration of a command.
type board struct {
	backend store.Backend
	st      *state.State
	host    *dialog.Host
	w       *widget.Widget

	mu      sync.Mutex
	notices []notice
}

func (app *App) config() *store.Config {
	if app.cfg == nil {
		cfg, err := store.LoadConfig(nil)
		if err != nil {
			cfg = &store.Config{Backend: store.BackendSQLite, Widget: store.DefaultWidget}
		}
		app.cfg = cfg
	}
	return app.cfg
}

// language is the default for widgets that have not saved one yet.
func (app *App) language() model.Language {
	raw := strings.TrimSpace(app.config().Language)
	if l := model.Language(strings.ToLower(raw)); l.Valid() {
		return l
	}
	if raw != "" {
		return i18n.Match(raw)
	}
	return i18n.FromEnv()
}

func openBoard(cmd *cobra.Command, app *App) (*board, error) {
	ctx := cmdContext(cmd)
	backend, err := store.Open(ctx, app.config())
	if err != nil {
		return nil, err
	}
	doc, err := syncstore.Open(ctx, backend)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	b := &board{
		backend: backend,
		st:      state.New(doc, app.language()),
		host:    dialog.NewHost(nil, app.log),
	}
	b.w = widget.New(b.st, b.host, widget.Options{
		Logger:   app.log,
		Notifier: widget.NotifierFunc(b.notify),
	})
	return b, nil
}

func (b *board) Close() error { return b.backend.Close() }

func (b *board) notify(msg string, isError bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, notice{Message: msg, Error: isError})
}

func (b *board) meta() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.notices) == 0 {
		return nil
	}
	return map[string]any{"notices": append([]notice{}, b.notices...)}
}

func (b *board) envelope(data any) map[string]any {
	out := map[string]any{"data": data}
	if m := b.meta(); m != nil {
		out["meta"] = m
	}
	return out
}

// runDialog opens a dialog answered by fe and applies the answer. An error
// returned by fe (the dialog closes without an answer) is reported as well.
func (b *board) runDialog(ctx context.Context, fe dialog.FrontendFunc, open func(ctx context.Context) (*dialog.Session, error)) error {
	var (
		mu    sync.Mutex
		feErr error
	)
	b.host.SetFrontend(dialog.FrontendFunc(func(ctx context.Context, s *dialog.Session) error {
		err := fe(ctx, s)
		mu.Lock()
		feErr = err
		mu.Unlock()
		return err
	}))
	defer b.host.SetFrontend(nil)

	if _, err := open(ctx); err != nil {
		return err
	}
	if err := b.w.Settle(ctx); err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	return feErr
}

func withBoard(cmd *cobra.Command, app *App, fn func(ctx context.Context, b *board) (any, error)) error {
	b, err := openBoard(cmd, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer b.Close()

	data, err := fn(cmdContext(cmd), b)
	if err != nil {
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, b.envelope(data))
}
