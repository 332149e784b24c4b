package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"persona-board/internal/dialog"
	"persona-board/internal/metrics"
	"persona-board/internal/state"
	"persona-board/internal/store"
	"persona-board/internal/syncstore"
	"persona-board/internal/web"
	"persona-board/internal/widget"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board, dialogs (websocket) and metrics over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.config()
			if addr == "" {
				addr = cfg.Serve.Addr
			}
			if addr == "" {
				addr = store.DefaultServeAddr
			}

			ctx, stop := signal.NotifyContext(cmdContext(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			backend, err := store.Open(ctx, cfg)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer backend.Close()
			doc, err := syncstore.Open(ctx, backend)
			if err != nil {
				return writeErr(cmd, err)
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			log := app.log.With("component", "serve")
			w := widget.New(state.New(doc, app.language()), dialog.NewHost(nil, log), widget.Options{
				Logger:  log,
				Metrics: metrics.MustNew(reg),
				Notifier: widget.NotifierFunc(func(msg string, isError bool) {
					if isError {
						log.Warn(msg)
						return
					}
					log.Info(msg)
				}),
			})
			srv, err := web.NewServer(web.ServerConfig{Addr: addr}, w, reg, log)
			if err != nil {
				return writeErr(cmd, err)
			}
			httpSrv := &http.Server{Addr: srv.Addr(), Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.Run(ctx) })
			g.Go(func() error {
				// Other editors' changes: reload between local events.
				return store.Watch(ctx, backend, interval, func(store.ChangeRecord) {
					_, err := srv.Do(ctx, func(ctx context.Context) (any, error) {
						if len(doc.Pending()) > 0 {
							return nil, nil
						}
						return nil, doc.Reload(ctx)
					})
					if err != nil && ctx.Err() == nil {
						log.Warn("reload failed", "err", err)
					}
				})
			})
			g.Go(func() error {
				log.Info("listening", "addr", srv.Addr())
				if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return httpSrv.Shutdown(shutdownCtx)
			})
			if err := g.Wait(); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config serve.addr)")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Poll interval for backends without a change feed")
	return cmd
}
