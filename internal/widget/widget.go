// Package widget runs the persona board: it opens dialogs, applies their
// answers through the mutation handlers, and flushes every change to the
// synchronized store. All mutations happen on the goroutine that calls
// HandleMessage (Run, Settle, or a UI update loop).
package widget

import (
	"context"
	"time"

	"persona-board/internal/dialog"
	"persona-board/internal/logging"
	"persona-board/internal/metrics"
	"persona-board/internal/state"
	"persona-board/internal/view"
)

// Notifier shows a transient one-line notification.
type Notifier interface {
	Notify(msg string, isError bool)
}

type NotifierFunc func(msg string, isError bool)

func (f NotifierFunc) Notify(msg string, isError bool) { f(msg, isError) }

type Options struct {
	Logger   *logging.Logger
	Metrics  *metrics.Metrics
	Notifier Notifier
	Now      func() time.Time
}

type Widget struct {
	st      *state.State
	host    *dialog.Host
	log     *logging.Logger
	metrics *metrics.Metrics
	notify  Notifier
	now     func() time.Time
}

func New(st *state.State, host *dialog.Host, opts Options) *Widget {
	w := &Widget{
		st:      st,
		host:    host,
		log:     opts.Logger,
		metrics: opts.Metrics,
		notify:  opts.Notifier,
		now:     opts.Now,
	}
	if w.log == nil {
		w.log = logging.Nop()
	}
	if w.notify == nil {
		w.notify = NotifierFunc(func(string, bool) {})
	}
	if w.now == nil {
		w.now = time.Now
	}
	return w
}

func (w *Widget) State() *state.State { return w.st }
func (w *Widget) Host() *dialog.Host  { return w.host }

// Board derives the current board.
func (w *Widget) Board() view.Board { return view.FromState(w.st) }

func (w *Widget) flush(ctx context.Context, op string) error {
	err := w.st.Flush(ctx)
	w.metrics.Flush(err)
	if err != nil {
		w.log.Error("flush failed", "op", op, "err", err)
		return err
	}
	w.metrics.Mutation(op)
	w.log.Info("mutation applied", "op", op)
	return nil
}

// Run applies dialog messages until ctx is done.
func (w *Widget) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in := <-w.host.Inbox():
			if err := w.HandleMessage(ctx, in); err != nil {
				w.log.Warn("dialog message failed", "type", in.Message.Type, "err", err)
			}
		}
	}
}

// Settle applies dialog messages until no dialog is open. It returns the
// first error from applying a message.
func (w *Widget) Settle(ctx context.Context) error {
	var firstErr error
	for {
		cur := w.host.Current()
		if cur == nil {
			return firstErr
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-cur.Done():
		case in := <-w.host.Inbox():
			if err := w.HandleMessage(ctx, in); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
}
