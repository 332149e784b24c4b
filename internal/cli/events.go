package cli

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"persona-board/internal/store"
)

type eventRow struct {
	store.ChangeRecord
	Age string `json:"age"`
}

func newEventsCmd(app *App) *cobra.Command {
	var limit int
	var since int64

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List the change log (newest last)",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := store.Open(cmdContext(cmd), app.config())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			recs, err := b.Changes(cmdContext(cmd), since, 0)
			if err != nil {
				return writeErr(cmd, err)
			}
			if limit > 0 && len(recs) > limit {
				recs = recs[len(recs)-limit:]
			}
			out := make([]eventRow, 0, len(recs))
			for _, r := range recs {
				out = append(out, eventRow{ChangeRecord: r, Age: humanize.Time(r.At)})
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 200, "Max events to return, most recent (0 = all)")
	cmd.Flags().Int64Var(&since, "since", 0, "Only events with a sequence number above this")
	return cmd
}

func newWatchCmd(app *App) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream changes from other editors as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmdContext(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			b, err := store.Open(ctx, app.config())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			w := cmd.OutOrStdout()
			err = store.Watch(ctx, b, interval, func(r store.ChangeRecord) {
				line, err := json.Marshal(r)
				if err != nil {
					app.log.Warn("encode change", "err", err)
					return
				}
				fmt.Fprintln(w, string(line))
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Poll interval for backends without a change feed")
	return cmd
}
