package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"persona-board/internal/clipboard"
	"persona-board/internal/dialog"
)

func newExportCmd(app *App) *cobra.Command {
	var out string
	var copyOut bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the widget as JSON (stdout by default)",
		Example: strings.TrimSpace(`
  persona export > personas.json
  persona export --out personas.json
  persona export --copy
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBoard(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()
			ctx := cmdContext(cmd)

			var (
				payload string
				method  clipboard.Method
				sinkErr error
			)
			sink := func(p string) error {
				payload = p
				switch {
				case out != "":
					if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
						sinkErr = err
						return err
					}
					sinkErr = os.WriteFile(out, []byte(p+"\n"), 0o644)
				case copyOut:
					method = clipboard.Default().Copy(p)
				}
				return sinkErr
			}
			err = b.runDialog(ctx, exportFrontend(sink), func(ctx context.Context) (*dialog.Session, error) {
				return b.w.OpenExport(ctx), nil
			})
			if err == nil {
				err = sinkErr
			}
			if err != nil {
				return writeErr(cmd, err)
			}

			if out == "" && !copyOut {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), payload)
				return err
			}
			data := map[string]any{
				"bytes": len(payload),
				"size":  humanize.Bytes(uint64(len(payload))),
			}
			if out != "" {
				data["path"] = out
			}
			if copyOut {
				data["clipboard"] = method
				if method == clipboard.MethodManual {
					fmt.Fprintln(cmd.ErrOrStderr(), b.st.Strings().ExportManualHint)
					fmt.Fprintln(cmd.ErrOrStderr(), payload)
				}
			}
			return writeOut(cmd, app, b.envelope(data))
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the export to a file")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "Copy the export to the clipboard (system, then OSC 52, then printed)")
	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file|-]",
		Short: "Import a JSON export; replaces every key present in the document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 0 || args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			return withBoard(cmd, app, func(ctx context.Context, b *board) (any, error) {
				fe := replyWith(func(req dialog.Request) (dialog.Message, error) {
					return dialog.Message{Type: dialog.TypeImportData, Data: string(data)}, nil
				})
				err := b.runDialog(ctx, fe, func(ctx context.Context) (*dialog.Session, error) {
					return b.w.OpenImport(ctx), nil
				})
				if err != nil {
					return nil, err
				}
				return map[string]any{
					"title":      b.st.Title.Get(),
					"profiles":   b.st.Profiles.Size(),
					"categories": len(b.st.Categories.Get()),
					"bytes":      humanize.Bytes(uint64(len(data))),
				}, nil
			})
		},
	}
	return cmd
}
