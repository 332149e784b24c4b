package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"persona-board/internal/publish"
)

func newPublishCmd(app *App) *cobra.Command {
	var toDir string
	var html, overwrite bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Write the board as Markdown pages (a snapshot, not canonical)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(toDir) == "" {
				return writeErr(cmd, errors.New("missing --to"))
			}
			return withBoard(cmd, app, func(ctx context.Context, b *board) (any, error) {
				return publish.Write(b.st, toDir, publish.Options{HTML: html, Overwrite: overwrite})
			})
		},
	}
	cmd.Flags().StringVar(&toDir, "to", "", "Output directory")
	cmd.Flags().BoolVar(&html, "html", false, "Also write HTML pages")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files")
	return cmd
}
