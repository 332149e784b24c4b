package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"persona-board/internal/format"
	"persona-board/internal/logging"
	"persona-board/internal/store"
)

type App struct {
	Dir        string
	Widget     string
	Backend    string
	Language   string
	PrettyJSON bool
	Format     string

	cfg *store.Config
	log *logging.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "persona",
		Short:        "Persona board: user profiles grouped into categories",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive board
  persona

  # Scriptable commands
  persona profiles list
  persona categories add --name Designers --color teal

  # Direct profile lookup (shortcut for: persona profiles show profile-3)
  persona profile-3
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive board.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := store.LoadConfig(cmd.Flags())
		if err != nil {
			return writeErr(cmd, err)
		}
		app.cfg = cfg
		app.Format = cfg.Format
		log, err := logging.New(cfg.Log.Mode, cfg.Log.Level)
		if err != nil {
			return writeErr(cmd, err)
		}
		app.log = log
		return nil
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		app.log.Sync()
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", "", "Widget directory (overrides .persona discovery and --widget)")
	cmd.PersistentFlags().StringVar(&app.Widget, "widget", "", "Widget name under ~/.persona/widgets (default: 'default')")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", "", "Storage backend (sqlite|redis)")
	cmd.PersistentFlags().StringVar(&app.Language, "language", "", "Language for new widgets (en|nl)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", "", "Output format (json|yaml)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newViewCmd(app))
	cmd.AddCommand(newProfilesCmd(app))
	cmd.AddCommand(newCategoriesCmd(app))
	cmd.AddCommand(newFieldsCmd(app))
	cmd.AddCommand(newSettingsCmd(app))
	cmd.AddCommand(newTitleCmd(app))
	cmd.AddCommand(newTipCmd(app))
	cmd.AddCommand(newLanguageCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newWatchCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newTUICmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
