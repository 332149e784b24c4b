package cli

import (
	"github.com/spf13/cobra"

	"persona-board/internal/store"
)

func newInitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the widget store if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.config()
			ctx := cmdContext(cmd)
			b, err := store.Open(ctx, cfg)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			id, err := b.WidgetID(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			data := map[string]any{
				"backend":  cfg.Backend,
				"widgetId": id,
			}
			if cfg.Backend == store.BackendRedis {
				data["addr"] = cfg.Redis.Addr
			} else {
				dir, err := store.ResolveDir(cfg)
				if err != nil {
					return writeErr(cmd, err)
				}
				data["dir"] = dir
			}
			return writeOut(cmd, app, map[string]any{"data": data})
		},
	}
}
