package widget

import (
	"context"
	"errors"
	"fmt"

	"persona-board/internal/dialog"
	"persona-board/internal/mutate"
	"persona-board/internal/transfer"
)

// HandleMessage applies one inbound dialog message. Messages from sessions
// that are no longer open are ignored. Every terminal message closes the
// dialog, whether or not applying it succeeded.
func (w *Widget) HandleMessage(ctx context.Context, in dialog.Inbound) error {
	msgType := string(in.Message.Type)
	if in.Dismissed {
		msgType = "dismiss"
	}
	if !w.host.Accepts(in) {
		w.metrics.DialogMessage(msgType, "stale")
		w.log.Debug("ignoring message from closed dialog", "session", in.SessionID, "type", msgType)
		return nil
	}
	if in.Dismissed {
		w.host.Close(in.SessionID)
		w.metrics.DialogMessage(msgType, "closed")
		return nil
	}

	m := in.Message
	if m.Type == dialog.TypeUIReady {
		err := w.pushExport(in.SessionID)
		w.metrics.DialogMessage(msgType, outcome(err))
		return err
	}

	note, isErr, err := w.apply(ctx, m)
	w.host.Close(in.SessionID)
	w.metrics.DialogMessage(msgType, outcome(err))
	if err != nil {
		w.log.Warn("dialog message rejected", "type", msgType, "err", err)
	}
	if note != "" {
		w.notify.Notify(note, isErr)
	}
	return err
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "applied"
}

func (w *Widget) pushExport(sessionID string) error {
	payload, err := transfer.ExportJSON(w.st, w.now())
	if err != nil {
		return err
	}
	w.log.Info("export payload ready", "bytes", len(payload))
	return w.host.Push(sessionID, dialog.Outbound{Type: dialog.TypeExportPayload, Data: payload})
}

// apply runs the mutation for m and returns the notification to show.
func (w *Widget) apply(ctx context.Context, m dialog.Message) (string, bool, error) {
	str := w.st.Strings()
	switch m.Type {
	case dialog.TypeAddCategory:
		c, err := mutate.AddCategory(w.st, mutate.CategoryInput{Name: m.Name, Icon: m.Icon, Color: m.Color})
		if err != nil {
			return "", false, err
		}
		if err := w.flush(ctx, "addCategory"); err != nil {
			return "", false, err
		}
		return str.CategoryAdded(c.Name), false, nil

	case dialog.TypeUpdateCategory:
		c, err := mutate.UpdateCategory(w.st, m.ID, mutate.CategoryInput{Name: m.Name, Icon: m.Icon, Color: m.Color})
		if err != nil {
			return "", false, err
		}
		if err := w.flush(ctx, "updateCategory"); err != nil {
			return "", false, err
		}
		return str.CategoryUpdated(c.Name), false, nil

	case dialog.TypeImportData:
		res, err := transfer.Import(w.st, []byte(m.Data))
		if err != nil {
			w.metrics.ImportFailed()
			w.log.Warn("import rejected", "err", err)
			return str.ImportError, true, err
		}
		if len(res.Dropped) > 0 {
			w.log.Info("dropped legacy profile attributes", "profiles", len(res.Dropped))
		}
		if err := w.flush(ctx, "importData"); err != nil {
			return "", false, err
		}
		return w.st.Strings().ImportSuccess, false, nil

	case dialog.TypeExportComplete:
		return str.ExportCopied, false, nil

	case dialog.TypeExportError:
		return str.ExportError, true, nil

	case dialog.TypeUpdateProfileCategory:
		if _, err := mutate.GetProfile(w.st, m.ProfileID); err != nil {
			// Deleted while the picker was open.
			w.log.Debug("picker answer for missing profile", "profile", m.ProfileID)
			return "", false, nil
		}
		res, err := mutate.SetProfileCategory(w.st, m.ProfileID, m.CategoryID)
		if err != nil {
			return "", false, err
		}
		if res.Changed {
			if err := w.flush(ctx, "updateProfileCategory"); err != nil {
				return "", false, err
			}
		}
		return str.CategoryUpdatedShort, false, nil

	case dialog.TypeConfirmDelete:
		return w.confirmDelete(ctx, m)

	case dialog.TypeUpdateSettings:
		if m.Settings == nil {
			return "", false, fmt.Errorf("%w: updateSettings without settings", dialog.ErrUnexpectedMessage)
		}
		mutate.SaveSettings(w.st, *m.Settings, m.Language)
		if err := w.flush(ctx, "updateSettings"); err != nil {
			return "", false, err
		}
		return w.st.Strings().SettingsSaved, false, nil

	case dialog.TypeCancelDelete, dialog.TypeCancelSettings:
		return "", false, nil
	}
	return "", false, fmt.Errorf("%w: %s", dialog.ErrUnexpectedMessage, m.Type)
}

func (w *Widget) confirmDelete(ctx context.Context, m dialog.Message) (string, bool, error) {
	str := w.st.Strings()
	switch m.DeleteType {
	case dialog.DeleteProfile:
		if _, err := mutate.DeleteProfile(w.st, m.ID); err != nil {
			return "", false, err
		}
		if err := w.flush(ctx, "deleteProfile"); err != nil {
			return "", false, err
		}
		return str.ProfileDeleted, false, nil
	case dialog.DeleteCategory:
		res, err := mutate.DeleteCategory(w.st, m.ID)
		if err != nil {
			return "", false, err
		}
		if err := w.flush(ctx, "deleteCategory"); err != nil {
			return "", false, err
		}
		return str.CategoryDeleted(res.Category.Name, len(res.Moved)), false, nil
	}
	return "", false, errors.New("unknown delete type: " + m.DeleteType)
}
