package widget

import (
	"context"
	"fmt"

	"persona-board/internal/model"
	"persona-board/internal/mutate"
	"persona-board/internal/state"
)

// Command is a zero-argument menu action.
type Command string

const (
	CommandOpenSettings Command = "open-settings"
	CommandAddProfile   Command = "add-profile"
	CommandAddCategory  Command = "add-category"
	CommandExport       Command = "export"
	CommandImport       Command = "import"
)

var Commands = []Command{CommandOpenSettings, CommandAddProfile, CommandAddCategory, CommandExport, CommandImport}

// Invoke runs a menu command. Dialog commands return once the dialog is open.
func (w *Widget) Invoke(ctx context.Context, cmd Command) error {
	switch cmd {
	case CommandOpenSettings:
		w.OpenSettings(ctx)
	case CommandAddProfile:
		_, err := w.AddProfile(ctx, model.UncategorizedID)
		return err
	case CommandAddCategory:
		_, err := w.OpenCategoryForm(ctx, "")
		return err
	case CommandExport:
		w.OpenExport(ctx)
	case CommandImport:
		w.OpenImport(ctx)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
	return nil
}

// The gestures below are direct edits on the board; they do not open a dialog.

// Edit runs fn against the state and flushes its writes as one mutation
// named op. Nothing is flushed when fn fails.
func (w *Widget) Edit(ctx context.Context, op string, fn func(st *state.State) error) error {
	if err := fn(w.st); err != nil {
		return err
	}
	return w.flush(ctx, op)
}

func (w *Widget) AddProfile(ctx context.Context, categoryID string) (model.Profile, error) {
	p := mutate.AddProfile(w.st, categoryID)
	return p, w.flush(ctx, "addProfile")
}

func (w *Widget) UpdateProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	out, err := mutate.UpdateProfile(w.st, p)
	if err != nil {
		return model.Profile{}, err
	}
	return out, w.flush(ctx, "updateProfile")
}

func (w *Widget) Expand(ctx context.Context, id string) error {
	if err := mutate.Expand(w.st, id); err != nil {
		return err
	}
	return w.flush(ctx, "expand")
}

func (w *Widget) Collapse(ctx context.Context) error {
	mutate.Collapse(w.st)
	return w.flush(ctx, "collapse")
}

func (w *Widget) SetTitle(ctx context.Context, title string) (string, error) {
	t := mutate.SetTitle(w.st, title)
	return t, w.flush(ctx, "setTitle")
}

func (w *Widget) HideTip(ctx context.Context) error {
	mutate.SetShowTip(w.st, false)
	return w.flush(ctx, "hideTip")
}

func (w *Widget) AddTask(ctx context.Context, profileID string) (model.Profile, error) {
	p, err := mutate.AddTask(w.st, profileID, "")
	if err != nil {
		return model.Profile{}, err
	}
	return p, w.flush(ctx, "addTask")
}

func (w *Widget) EditTask(ctx context.Context, profileID string, index int, text string) (model.Profile, error) {
	p, err := mutate.EditTask(w.st, profileID, index, text)
	if err != nil {
		return model.Profile{}, err
	}
	return p, w.flush(ctx, "editTask")
}

func (w *Widget) SetField(ctx context.Context, profileID string, field model.FieldConfig, value string) (model.Profile, error) {
	p, err := mutate.SetProfileField(w.st, profileID, field, value)
	if err != nil {
		return model.Profile{}, err
	}
	return p, w.flush(ctx, "setField")
}

func (w *Widget) MoveCategory(ctx context.Context, id string, dir mutate.Direction) (bool, error) {
	moved, err := mutate.MoveCategory(w.st, id, dir)
	if err != nil || !moved {
		return moved, err
	}
	return true, w.flush(ctx, "moveCategory")
}
