package cli

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"persona-board/internal/dialog"
	"persona-board/internal/metrics"
	"persona-board/internal/state"
	"persona-board/internal/store"
	"persona-board/internal/syncstore"
	"persona-board/internal/tui"
)

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive board",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
}

func runTUI(cmd *cobra.Command, app *App) error {
	ctx, stop := signal.NotifyContext(cmdContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := app.config()
	backend, err := store.Open(ctx, cfg)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer backend.Close()
	doc, err := syncstore.Open(ctx, backend)
	if err != nil {
		return writeErr(cmd, err)
	}
	log := app.log.With("component", "tui")
	st := state.New(doc, app.language())

	// Changes from other processes wake the board; it reloads when it has
	// nothing of its own pending.
	remote := make(chan struct{}, 1)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(remote)
		return store.Watch(gctx, backend, time.Second, func(store.ChangeRecord) {
			select {
			case remote <- struct{}{}:
			default:
			}
		})
	})

	runErr := tui.Run(gctx, st, dialog.NewHost(nil, log), tui.Options{
		Logger:  log,
		Metrics: metrics.MustNew(prometheus.NewRegistry()),
		Remote:  remote,
	})
	stop()
	if err := g.Wait(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return writeErr(cmd, runErr)
	}
	return nil
}
