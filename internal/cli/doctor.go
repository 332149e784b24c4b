package cli

import (
	"context"

	"github.com/spf13/cobra"

	"persona-board/internal/mutate"
	"persona-board/internal/state"
)

func newDoctorCmd(app *App) *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the widget for dangling references and unmigrated settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd, app, func(ctx context.Context, b *board) (any, error) {
				issues := mutate.Doctor(b.st)
				if issues == nil {
					issues = []mutate.Issue{}
				}
				out := map[string]any{"issues": issues}
				if !fix || len(issues) == 0 {
					return out, nil
				}
				fixed := 0
				err := b.w.Edit(ctx, "repair", func(st *state.State) error {
					fixed = mutate.Repair(st, issues)
					return nil
				})
				if err != nil {
					return nil, err
				}
				out["fixed"] = fixed
				out["remaining"] = mutate.Doctor(b.st)
				return out, nil
			})
		},
	}
	cmd.Flags().BoolVar(&fix, "fix", false, "Repair what can be repaired")
	return cmd
}
