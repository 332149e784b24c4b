package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"persona-board/internal/dialog"
	"persona-board/internal/model"
	"persona-board/internal/mutate"
	"persona-board/internal/state"
	"persona-board/internal/view"
)

type profileRow struct {
	Number   int           `json:"number"`
	Category string        `json:"category"`
	Profile  model.Profile `json:"profile"`
}

func newProfilesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profiles",
		Aliases: []string{"profile", "p"},
		Short:   "Profile commands",
	}
	cmd.AddCommand(newProfilesListCmd(app))
	cmd.AddCommand(newProfilesShowCmd(app))
	cmd.AddCommand(newProfilesAddCmd(app))
	cmd.AddCommand(newProfilesUpdateCmd(app))
	cmd.AddCommand(newProfilesDeleteCmd(app))
	cmd.AddCommand(newProfilesMoveCmd(app))
	cmd.AddCommand(newProfilesSetFieldCmd(app))
	cmd.AddCommand(newProfilesExpandCmd(app))
	cmd.AddCommand(newProfilesCollapseCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	return cmd
}

func newProfilesListCmd(app *App) *cobra.Command {
	var category string
	var uncategorized bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List profiles in board order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd, app, func(ctx context.Context, b *board) (any, error) {
				out := []profileRow{}
				for _, sec := range view.FromState(b.st).Sections {
					if uncategorized && !sec.Uncategorized {
						continue
					}
					if category != "" && sec.Category.ID != category {
						continue
					}
					for _, c := range sec.Cards {
						out = append(out, profileRow{Number: c.Number, Category: sec.Category.Name, Profile: c.Profile})
					}
				}
				return out, nil
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only profiles in this category id")
	cmd.Flags().BoolVar(&uncategorized, "uncategorized", false, "Only uncategorized profiles")
	return cmd
}

func newProfilesShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <profile-id>",
		Short: "Show a profile with its visible fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd, app, func(ctx context.Context, b *board) (any, error) {
				in := view.Snapshot(b.st)
				in.ExpandedID = strings.TrimSpace(args[0])
				d := view.Build(in).Detail
				if d == nil {
					return nil, mutate.NotFoundError{Kind: "profile", ID: in.ExpandedID}
				}
				return d, nil
			})
		},
	}
}

func newProfilesAddCmd(app *App) *cobra.Command {
	var category, name, description, quote, contextText string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a profile (uncategorized unless --category is set)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd, app, func(ctx context.Context, b *board) (any, error) {
				if category != "" {
					if _, ok := b.st.Category(category); !ok {
						return nil, mutate.NotFoundError{Kind: "category", ID: category}
					}
				}
				p, err := b.w.AddProfile(ctx, category)
				if err != nil {
					return nil, err
				}
				if !cmd.Flags().Changed("name") && !cmd.Flags().Changed("description") &&
					!cmd.Flags().Changed("quote") && !cmd.Flags().Changed("context") {
					return p, nil
				}
				applyProfileFlags(cmd, &p, name, description, quote, contextText)
				return b.w.UpdateProfile(ctx, p)
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Category id")
	addProfileFlags(cmd, &name, &description, &quote, &contextText)
	return cmd
}

func addProfileFlags(cmd *cobra.Command, name, description, quote, contextText *string) {
	cmd.Flags().StringVar(name, "name", "", "Profile name")
	cmd.Flags().StringVar(description, "description", "", "Description")
	cmd.Flags().StringVar(quote, "quote", "", "Quote")
	cmd.Flags().StringVar(contextText, "context", "", "Context")
}

func applyProfileFlags(cmd *cobra.Command, p *model.Profile, name, description, quote, contextText string) {
	if cmd.Flags().Changed("name") {
		p.Name = name
	}
	if cmd.Flags().Changed("description") {
		p.Description = description
	}
	if cmd.Flags().Changed("quote") {
		p.Quote = quote
	}
	if cmd.Flags().Changed("context") {
		p.Context = contextText
	}
}

func newProfilesUpdateCmd(app *App) *cobra.Command {
	var name, description, quote, contextText string

	cmd := &cobra.Command{
		Use:   "update <profile-id>",
		Short: "Overwrite profile attributes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd, app, func(ctx context.Context, b *board) (any, error) {
				p, err := mutate.GetProfile(b.st, args[0])
				if err != nil {
					return nil, err
				}
				applyProfileFlags(cmd, &p, name, description, quote, contextText)
				return b.w.UpdateProfile(ctx, p)
			})
		},
	}
	addProfileFlags(cmd, &name, &description, &quote, &contextText)
	return cmd
}

func newProfilesDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <profile-id>",
		Short: "Delete a profile (asks for confirmation unless --yes)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd, app, func(ctx context.Context, b *board) (any, error) {
				id := strings.TrimSpace(args[0])
				err := b.runDialog(ctx, confirmFrontend(cmd.InOrStdin(), cmd.ErrOrStderr(), yes), func(ctx context.Context) (*dialog.Session, error) {
					return b.w.OpenDeleteProfile(ctx, id)
				})
				if err != nil {
					return nil, err
				}
				_, stillThere := b.st.Profiles.Get(id)
				return map[string]any{"id": id, "deleted": !stillThere}, nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newProfilesMoveCmd(app *App) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "move <profile-id>",
		Short: "Move a profile to another category (empty --category for uncategorized)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd, app, func(ctx context.Context, b *board) (any, error) {
				fe := replyWith(func(req dialog.Request) (dialog.Message, error) {
					return dialog.Message{Type: dialog.TypeUpdateProfileCategory, ProfileID: req.ProfileID, CategoryID: category}, nil
				})
				err := b.runDialog(ctx, fe, func(ctx context.Context) (*dialog.Session, error) {
					return b.w.OpenCategoryPicker(ctx, args[0])
				})
				if err != nil {
					return nil, err
				}
				return mutate.GetProfile(b.st, args[0])
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Target category id")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newProfilesSetFieldCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-field <profile-id> <field> <value>",
		Short: "Set a field value (field id or label)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd, app, func(ctx context.Context, b *board) (any, error) {
				f, err := mutate.FindField(b.st, args[1])
				if err != nil {
					return nil, err
				}
				return b.w.SetField(ctx, args[0], f, args[2])
			})
		},
	}
}

func newProfilesExpandCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "expand <profile-id>",
		Short: "Open a profile in the detail panel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd, app, func(ctx context.Context, b *board) (any, error) {
				if err := b.w.Expand(ctx, args[0]); err != nil {
					return nil, err
				}
				return map[string]any{"expandedId": b.st.ExpandedID.Get()}, nil
			})
		},
	}
}

func newProfilesCollapseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "collapse",
		Short: "Close the detail panel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd, app, func(ctx context.Context, b *board) (any, error) {
				if err := b.w.Collapse(ctx); err != nil {
					return nil, err
				}
				return map[string]any{"expandedId": b.st.ExpandedID.Get()}, nil
			})
		},
	}
}

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Edit a profile's task list",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <profile-id> [text]",
		Short: "Append a task",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := ""
			if len(args) == 2 {
				text = args[1]
			}
			return editProfile(cmd, app, "addTask", func(st *state.State) (model.Profile, error) {
				return mutate.AddTask(st, args[0], text)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "edit <profile-id> <n> <text>",
		Short: "Replace task n (1-based); blank text removes it",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseTaskNumber(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			return editProfile(cmd, app, "editTask", func(st *state.State) (model.Profile, error) {
				return mutate.EditTask(st, args[0], n-1, args[2])
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <profile-id> <n>",
		Short: "Remove task n (1-based)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseTaskNumber(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			return editProfile(cmd, app, "removeTask", func(st *state.State) (model.Profile, error) {
				return mutate.RemoveTask(st, args[0], n-1)
			})
		},
	})
	return cmd
}

func parseTaskNumber(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid task number %q (tasks are numbered from 1)", s)
	}
	return n, nil
}

func editProfile(cmd *cobra.Command, app *App, op string, fn func(st *state.State) (model.Profile, error)) error {
	return withBoard(cmd, app, func(ctx context.Context, b *board) (any, error) {
		var p model.Profile
		err := b.w.Edit(ctx, op, func(st *state.State) error {
			var err error
			p, err = fn(st)
			return err
		})
		return p, err
	})
}
