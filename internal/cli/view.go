package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newViewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Print the derived board: legend, sections and the open profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd, app, func(ctx context.Context, b *board) (any, error) {
				return b.w.Board(), nil
			})
		},
	}
}
