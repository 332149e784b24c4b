package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"persona-board/internal/dialog"
	"persona-board/internal/model"
	"persona-board/internal/mutate"
	"persona-board/internal/view"
)

type categoryRow struct {
	model.Category
	Count         int  `json:"count"`
	Uncategorized bool `json:"uncategorized,omitempty"`
}

func newCategoriesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "c"},
		Short:   "Category commands",
	}
	cmd.AddCommand(newCategoriesListCmd(app))
	cmd.AddCommand(newCategoriesAddCmd(app))
	cmd.AddCommand(newCategoriesUpdateCmd(app))
	cmd.AddCommand(newCategoriesDeleteCmd(app))
	cmd.AddCommand(newCategoriesMoveCmd(app, "move-up", mutate.Up))
	cmd.AddCommand(newCategoriesMoveCmd(app, "move-down", mutate.Down))
	return cmd
}

func newCategoriesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories in display order with profile counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd, app, func(ctx context.Context, b *board) (any, error) {
				out := []categoryRow{}
				for _, e := range view.FromState(b.st).Legend {
					row := categoryRow{Count: e.Count}
					if c, ok := b.st.Category(e.CategoryID); ok && e.CategoryID != model.UncategorizedID {
						row.Category = c
					} else {
						row.Category = view.UncategorizedCategory(b.st.Strings())
						row.Uncategorized = true
					}
					out = append(out, row)
				}
				return out, nil
			})
		},
	}
}

func addCategoryFlags(cmd *cobra.Command, name, icon, color *string) {
	cmd.Flags().StringVar(name, "name", "", "Category name")
	cmd.Flags().StringVar(icon, "icon", model.DefaultCategoryIcon, "Icon (emoji)")
	cmd.Flags().StringVar(color, "color", string(model.ColorPink), "Color key (pink|teal|purple|amber|sky|rose|indigo|emerald|gray)")
}

func newCategoriesAddCmd(app *App) *cobra.Command {
	var name, icon, color string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd, app, func(ctx context.Context, b *board) (any, error) {
				before := len(b.st.Categories.Get())
				fe := replyWith(func(req dialog.Request) (dialog.Message, error) {
					return dialog.Message{Type: dialog.TypeAddCategory, Name: name, Icon: icon, Color: color}, nil
				})
				err := b.runDialog(ctx, fe, func(ctx context.Context) (*dialog.Session, error) {
					return b.w.OpenCategoryForm(ctx, "")
				})
				if err != nil {
					return nil, err
				}
				cats := b.st.Categories.Get()
				if len(cats) == before {
					return nil, errors.New("category was not added")
				}
				return cats[len(cats)-1], nil
			})
		},
	}
	addCategoryFlags(cmd, &name, &icon, &color)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newCategoriesUpdateCmd(app *App) *cobra.Command {
	var name, icon, color string

	cmd := &cobra.Command{
		Use:   "update <category-id>",
		Short: "Update a category's name, icon or color",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd, app, func(ctx context.Context, b *board) (any, error) {
				fe := replyWith(func(req dialog.Request) (dialog.Message, error) {
					if req.Category == nil {
						return dialog.Message{}, errors.New("edit form opened without a category")
					}
					m := dialog.Message{
						Type:  dialog.TypeUpdateCategory,
						ID:    req.Category.ID,
						Name:  req.Category.Name,
						Icon:  req.Category.Icon,
						Color: string(req.Category.ColorKey),
					}
					if cmd.Flags().Changed("name") {
						m.Name = name
					}
					if cmd.Flags().Changed("icon") {
						m.Icon = icon
					}
					if cmd.Flags().Changed("color") {
						m.Color = color
					}
					return m, nil
				})
				err := b.runDialog(ctx, fe, func(ctx context.Context) (*dialog.Session, error) {
					return b.w.OpenCategoryForm(ctx, args[0])
				})
				if err != nil {
					return nil, err
				}
				c, _ := b.st.Category(args[0])
				return c, nil
			})
		},
	}
	addCategoryFlags(cmd, &name, &icon, &color)
	return cmd
}

func newCategoriesDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <category-id>",
		Short: "Delete a category; its profiles become uncategorized",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd, app, func(ctx context.Context, b *board) (any, error) {
				members := view.Counts(b.st.Profiles.Values(), b.st.Categories.Get())[args[0]]
				err := b.runDialog(ctx, confirmFrontend(cmd.InOrStdin(), cmd.ErrOrStderr(), yes), func(ctx context.Context) (*dialog.Session, error) {
					return b.w.OpenDeleteCategory(ctx, args[0])
				})
				if err != nil {
					return nil, err
				}
				_, stillThere := b.st.Category(args[0])
				moved := 0
				if !stillThere {
					moved = members
				}
				return map[string]any{"id": args[0], "deleted": !stillThere, "moved": moved}, nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newCategoriesMoveCmd(app *App, use string, dir mutate.Direction) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <category-id>",
		Short: "Swap a category with its neighbor in display order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd, app, func(ctx context.Context, b *board) (any, error) {
				moved, err := b.w.MoveCategory(ctx, args[0], dir)
				if err != nil {
					return nil, err
				}
				return map[string]any{"moved": moved, "categories": view.SortedCategories(b.st.Categories.Get())}, nil
			})
		},
	}
}
