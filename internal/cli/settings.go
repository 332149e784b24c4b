package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"persona-board/internal/dialog"
	"persona-board/internal/i18n"
	"persona-board/internal/model"
	"persona-board/internal/mutate"
	"persona-board/internal/state"
	"persona-board/internal/view"
)

type fieldRow struct {
	model.FieldConfig
	DisplayLabel string `json:"displayLabel"`
}

func fieldRows(st *state.State, ws model.WidgetSettings) []fieldRow {
	str := st.Strings()
	sorted := view.SortedFields(ws)
	out := make([]fieldRow, 0, len(sorted))
	for _, f := range sorted {
		out = append(out, fieldRow{FieldConfig: f, DisplayLabel: str.FieldLabel(f)})
	}
	return out
}

// editSettings runs one edit through the settings dialog, the way the
// settings editor saves: the whole field list and language at once.
func editSettings(ctx context.Context, b *board, lang model.Language, edit func(ws model.WidgetSettings) (model.WidgetSettings, error)) error {
	return b.runDialog(ctx, settingsFrontend(edit, lang), func(ctx context.Context) (*dialog.Session, error) {
		return b.w.OpenSettings(ctx), nil
	})
}

func newFieldsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "Profile field configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List fields in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd, app, func(ctx context.Context, b *board) (any, error) {
				return fieldRows(b.st, b.st.Settings()), nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <label>",
		Short: "Add a custom field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd, app, func(ctx context.Context, b *board) (any, error) {
				var added model.FieldConfig
				err := editSettings(ctx, b, "", func(ws model.WidgetSettings) (model.WidgetSettings, error) {
					ws, added = mutate.AddField(ws, args[0], time.Now())
					return ws, nil
				})
				return added, err
			})
		},
	})

	cmd.AddCommand(fieldEditCmd(app, "rename <field> <label>", "Rename a field", 2,
		func(ws model.WidgetSettings, id string, args []string) (model.WidgetSettings, error) {
			return mutate.RenameField(ws, id, args[1])
		}))
	cmd.AddCommand(fieldEditCmd(app, "show <field>", "Show a field in the detail panel", 1,
		func(ws model.WidgetSettings, id string, args []string) (model.WidgetSettings, error) {
			return mutate.SetFieldVisible(ws, id, true)
		}))
	cmd.AddCommand(fieldEditCmd(app, "hide <field>", "Hide a field from the detail panel", 1,
		func(ws model.WidgetSettings, id string, args []string) (model.WidgetSettings, error) {
			return mutate.SetFieldVisible(ws, id, false)
		}))
	cmd.AddCommand(fieldEditCmd(app, "toggle <field>", "Toggle a field's visibility", 1,
		func(ws model.WidgetSettings, id string, args []string) (model.WidgetSettings, error) {
			return mutate.ToggleField(ws, id)
		}))
	cmd.AddCommand(fieldEditCmd(app, "move <field> <up|down>", "Swap a field with its neighbor", 2,
		func(ws model.WidgetSettings, id string, args []string) (model.WidgetSettings, error) {
			dir, ok := mutate.ParseDirection(args[1])
			if !ok {
				return ws, fmt.Errorf("invalid direction %q (want up or down)", args[1])
			}
			out, _, err := mutate.MoveField(ws, id, dir)
			return out, err
		}))
	cmd.AddCommand(fieldEditCmd(app, "delete <field>", "Delete a custom field (profile values are kept)", 1,
		func(ws model.WidgetSettings, id string, args []string) (model.WidgetSettings, error) {
			return mutate.DeleteField(ws, id)
		}))

	return cmd
}

// fieldEditCmd builds a command whose first argument is a field id or label.
func fieldEditCmd(app *App, use, short string, nargs int, edit func(ws model.WidgetSettings, id string, args []string) (model.WidgetSettings, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd, app, func(ctx context.Context, b *board) (any, error) {
				f, err := mutate.FindField(b.st, args[0])
				if err != nil {
					return nil, err
				}
				err = editSettings(ctx, b, "", func(ws model.WidgetSettings) (model.WidgetSettings, error) {
					return edit(ws, f.ID, args)
				})
				if err != nil {
					return nil, err
				}
				return fieldRows(b.st, b.st.Settings()), nil
			})
		},
	}
}

func newSettingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show widget settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd, app, func(ctx context.Context, b *board) (any, error) {
				return map[string]any{
					"title":    b.st.Title.Get(),
					"language": b.st.Language.Get(),
					"showTip":  b.st.ShowTip.Get(),
					"fields":   fieldRows(b.st, b.st.Settings()),
				}, nil
			})
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Persist the migrated settings (restores the tasks field and any missing built-in)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd, app, func(ctx context.Context, b *board) (any, error) {
				stored := b.st.StoredSettings.Get()
				if len(state.MissingBuiltIns(stored.Fields)) == 0 && stored.TasksModule == nil {
					return map[string]any{"migrated": false}, nil
				}
				if err := editSettings(ctx, b, "", nil); err != nil {
					return nil, err
				}
				return map[string]any{"migrated": true, "fields": fieldRows(b.st, b.st.Settings())}, nil
			})
		},
	})
	return cmd
}

func newTitleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "title [new title]",
		Short: "Show or set the widget title (blank restores the default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd, app, func(ctx context.Context, b *board) (any, error) {
				if len(args) == 0 {
					return map[string]any{"title": b.st.Title.Get()}, nil
				}
				t, err := b.w.SetTitle(ctx, args[0])
				return map[string]any{"title": t}, err
			})
		},
	}
}

func newTipCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "tip [show|hide]",
		Short:     "Show or change the tip banner state",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"show", "hide"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd, app, func(ctx context.Context, b *board) (any, error) {
				if len(args) == 1 {
					switch strings.ToLower(args[0]) {
					case "hide":
						if err := b.w.HideTip(ctx); err != nil {
							return nil, err
						}
					case "show":
						err := b.w.Edit(ctx, "showTip", func(st *state.State) error {
							mutate.SetShowTip(st, true)
							return nil
						})
						if err != nil {
							return nil, err
						}
					default:
						return nil, fmt.Errorf("invalid tip state %q (want show or hide)", args[0])
					}
				}
				return map[string]any{"showTip": b.st.ShowTip.Get(), "tip": b.st.Strings().Tip}, nil
			})
		},
	}
}

func newLanguageCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "language [en|nl|locale]",
		Short: "Show or set the widget language (saved with the settings)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd, app, func(ctx context.Context, b *board) (any, error) {
				if len(args) == 1 {
					lang := model.Language(strings.ToLower(strings.TrimSpace(args[0])))
					if !lang.Valid() {
						lang = i18n.Match(args[0])
					}
					if err := editSettings(ctx, b, lang, nil); err != nil {
						return nil, err
					}
				}
				return map[string]any{"language": b.st.Language.Get()}, nil
			})
		},
	}
}
