package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"persona-board/internal/dialog"
	"persona-board/internal/model"
)

// The frontends below answer dialogs from command-line input instead of a UI.

func replyWith(build func(req dialog.Request) (dialog.Message, error)) dialog.FrontendFunc {
	return func(ctx context.Context, s *dialog.Session) error {
		m, err := build(s.Request)
		if err != nil {
			return err
		}
		return s.Reply(m)
	}
}

// confirmFrontend answers a delete confirmation. Without yes it asks on out
// and reads the answer from in.
func confirmFrontend(in io.Reader, out io.Writer, yes bool) dialog.FrontendFunc {
	return func(ctx context.Context, s *dialog.Session) error {
		req := s.Request
		ok := yes
		if !ok {
			fmt.Fprintf(out, "%s [y/N] ", req.Message)
			line, _ := bufio.NewReader(in).ReadString('\n')
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "y", "yes", "j", "ja":
				ok = true
			}
		}
		if !ok {
			return s.Reply(dialog.Message{Type: dialog.TypeCancelDelete})
		}
		return s.Reply(dialog.Message{Type: dialog.TypeConfirmDelete, DeleteType: req.DeleteType, ID: req.TargetID})
	}
}

// settingsFrontend edits the settings copy carried by the dialog and saves it
// together with lang (the dialog's current language when empty).
func settingsFrontend(edit func(ws model.WidgetSettings) (model.WidgetSettings, error), lang model.Language) dialog.FrontendFunc {
	return func(ctx context.Context, s *dialog.Session) error {
		if s.Request.Settings == nil {
			return errors.New("settings dialog opened without settings")
		}
		ws := s.Request.Settings.Clone()
		if edit != nil {
			next, err := edit(ws)
			if err != nil {
				return err
			}
			ws = next
		}
		if lang == "" {
			lang = s.Request.Language
		}
		return s.Reply(dialog.Message{Type: dialog.TypeUpdateSettings, Settings: &ws, Language: lang})
	}
}

// exportFrontend performs the export handshake and hands the payload to sink.
// A sink error is reported to the widget as exportError.
func exportFrontend(sink func(payload string) error) dialog.FrontendFunc {
	return func(ctx context.Context, s *dialog.Session) error {
		if err := s.Reply(dialog.Message{Type: dialog.TypeUIReady}); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.Done():
			return dialog.ErrSessionClosed
		case o := <-s.Outbound():
			if o.Type != dialog.TypeExportPayload {
				return fmt.Errorf("%w: %s", dialog.ErrUnexpectedMessage, o.Type)
			}
			if err := sink(o.Data); err != nil {
				return s.Reply(dialog.Message{Type: dialog.TypeExportError})
			}
			return s.Reply(dialog.Message{Type: dialog.TypeExportComplete})
		}
	}
}
