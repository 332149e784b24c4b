package widget

import (
	"context"

	"persona-board/internal/dialog"
	"persona-board/internal/model"
	"persona-board/internal/mutate"
	"persona-board/internal/view"
)

func (w *Widget) open(ctx context.Context, req dialog.Request) *dialog.Session {
	req.Language = w.st.Language.Get()
	req.Strings = w.st.Strings()
	s := w.host.Open(ctx, req)
	w.metrics.DialogOpened(string(req.Kind))
	w.log.Info("dialog opened", "kind", req.Kind, "session", s.ID)
	return s
}

// OpenCategoryForm opens the create form, or the edit form when categoryID is set.
func (w *Widget) OpenCategoryForm(ctx context.Context, categoryID string) (*dialog.Session, error) {
	str := w.st.Strings()
	req := dialog.Request{Kind: dialog.KindCategoryForm, Title: str.NewCategory, ColorKeys: model.ColorKeys}
	if categoryID != "" {
		c, ok := w.st.Category(categoryID)
		if !ok {
			return nil, mutate.NotFoundError{Kind: "category", ID: categoryID}
		}
		req.Title = str.EditCategory
		req.Category = &c
	}
	return w.open(ctx, req), nil
}

func (w *Widget) OpenDeleteProfile(ctx context.Context, profileID string) (*dialog.Session, error) {
	p, err := mutate.GetProfile(w.st, profileID)
	if err != nil {
		return nil, err
	}
	str := w.st.Strings()
	return w.open(ctx, dialog.Request{
		Kind:       dialog.KindDeleteConfirm,
		Title:      str.DeleteProfileTitle,
		DeleteType: dialog.DeleteProfile,
		TargetID:   p.ID,
		TargetName: p.Name,
		Message:    str.DeleteProfileMessage(p.Name),
	}), nil
}

func (w *Widget) OpenDeleteCategory(ctx context.Context, categoryID string) (*dialog.Session, error) {
	c, ok := w.st.Category(categoryID)
	if !ok {
		return nil, mutate.NotFoundError{Kind: "category", ID: categoryID}
	}
	n := view.Counts(w.st.Profiles.Values(), w.st.Categories.Get())[c.ID]
	str := w.st.Strings()
	return w.open(ctx, dialog.Request{
		Kind:        dialog.KindDeleteConfirm,
		Title:       str.DeleteCategoryTitle,
		DeleteType:  dialog.DeleteCategory,
		TargetID:    c.ID,
		TargetName:  c.Name,
		MemberCount: n,
		Message:     str.DeleteCategoryMessage(c.Name, n),
	}), nil
}

func (w *Widget) OpenCategoryPicker(ctx context.Context, profileID string) (*dialog.Session, error) {
	p, err := mutate.GetProfile(w.st, profileID)
	if err != nil {
		return nil, err
	}
	return w.open(ctx, dialog.Request{
		Kind:              dialog.KindCategoryPicker,
		Categories:        view.SortedCategories(w.st.Categories.Get()),
		ProfileID:         p.ID,
		CurrentCategoryID: p.CategoryID,
	}), nil
}

func (w *Widget) OpenSettings(ctx context.Context) *dialog.Session {
	ws := w.st.Settings()
	return w.open(ctx, dialog.Request{Kind: dialog.KindSettings, Settings: &ws})
}

func (w *Widget) OpenImport(ctx context.Context) *dialog.Session {
	return w.open(ctx, dialog.Request{Kind: dialog.KindImport})
}

// OpenExport opens an empty export dialog. The payload is pushed once the
// dialog reports uiReady.
func (w *Widget) OpenExport(ctx context.Context) *dialog.Session {
	w.notify.Notify(w.st.Strings().ExportStarted, false)
	return w.open(ctx, dialog.Request{Kind: dialog.KindExport})
}
