package mutate

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"persona-board/internal/model"
	"persona-board/internal/state"
)

// The functions in this file edit a settings value without writing it; the
// settings dialog works on a local copy and submits the result wholesale.

func fieldIndex(ws model.WidgetSettings, id string) int {
	for i, f := range ws.Fields {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func maxFieldOrder(ws model.WidgetSettings) int {
	max := -1
	for _, f := range ws.Fields {
		if f.Order > max {
			max = f.Order
		}
	}
	return max
}

// AddField appends a visible custom field with an empty label after every
// existing field.
func AddField(ws model.WidgetSettings, label string, now time.Time) (model.WidgetSettings, model.FieldConfig) {
	out := ws.Clone()
	id := model.CustomFieldIDPrefix + strconv.FormatInt(now.UnixMilli(), 10)
	for fieldIndex(out, id) >= 0 {
		now = now.Add(time.Millisecond)
		id = model.CustomFieldIDPrefix + strconv.FormatInt(now.UnixMilli(), 10)
	}
	f := model.FieldConfig{
		ID:        id,
		Label:     strings.TrimSpace(label),
		IsVisible: true,
		Order:     maxFieldOrder(out) + 1,
	}
	out.Fields = append(out.Fields, f)
	return out, f
}

func RenameField(ws model.WidgetSettings, id, label string) (model.WidgetSettings, error) {
	out := ws.Clone()
	i := fieldIndex(out, id)
	if i < 0 {
		return ws, NotFoundError{Kind: "field", ID: id}
	}
	out.Fields[i].Label = label
	return out, nil
}

func SetFieldVisible(ws model.WidgetSettings, id string, visible bool) (model.WidgetSettings, error) {
	out := ws.Clone()
	i := fieldIndex(out, id)
	if i < 0 {
		return ws, NotFoundError{Kind: "field", ID: id}
	}
	out.Fields[i].IsVisible = visible
	return out, nil
}

func ToggleField(ws model.WidgetSettings, id string) (model.WidgetSettings, error) {
	i := fieldIndex(ws, id)
	if i < 0 {
		return ws, NotFoundError{Kind: "field", ID: id}
	}
	return SetFieldVisible(ws, id, !ws.Fields[i].IsVisible)
}

// MoveField swaps the order value of a field with its neighbor in display
// order; no-op at either boundary.
func MoveField(ws model.WidgetSettings, id string, dir Direction) (model.WidgetSettings, bool, error) {
	out := ws.Clone()
	if fieldIndex(out, id) < 0 {
		return ws, false, NotFoundError{Kind: "field", ID: id}
	}
	sorted := append([]model.FieldConfig{}, out.Fields...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	idx := 0
	for i, f := range sorted {
		if f.ID == id {
			idx = i
			break
		}
	}
	other := neighbor(idx, len(sorted), dir)
	if other < 0 {
		return out, false, nil
	}
	a, b := sorted[idx], sorted[other]
	out.Fields[fieldIndex(out, a.ID)].Order = b.Order
	out.Fields[fieldIndex(out, b.ID)].Order = a.Order
	return out, true, nil
}

// DeleteField removes a custom field descriptor. Values already stored under
// the field id on profiles are left in place.
func DeleteField(ws model.WidgetSettings, id string) (model.WidgetSettings, error) {
	i := fieldIndex(ws, id)
	if i < 0 {
		return ws, NotFoundError{Kind: "field", ID: id}
	}
	if ws.Fields[i].IsBuiltIn {
		return ws, BuiltInFieldError{FieldID: id}
	}
	out := model.WidgetSettings{Fields: make([]model.FieldConfig, 0, len(ws.Fields)-1)}
	out.Fields = append(out.Fields, ws.Fields[:i]...)
	out.Fields = append(out.Fields, ws.Fields[i+1:]...)
	return out, nil
}

// FindField looks a field up by id, falling back to a case-insensitive match
// on its displayed label.
func FindField(st *state.State, ref string) (model.FieldConfig, error) {
	ref = strings.TrimSpace(ref)
	ws := st.Settings()
	if i := fieldIndex(ws, ref); i >= 0 {
		return ws.Fields[i], nil
	}
	str := st.Strings()
	for _, f := range ws.Fields {
		if strings.EqualFold(str.FieldLabel(f), ref) {
			return f, nil
		}
	}
	return model.FieldConfig{}, NotFoundError{Kind: "field", ID: ref}
}

// SaveSettings writes settings wholesale; a valid lang is saved with them.
func SaveSettings(st *state.State, ws model.WidgetSettings, lang model.Language) {
	st.SaveSettings(ws)
	if lang.Valid() && lang != st.Language.Get() {
		st.Language.Set(lang)
	}
}

// EditSettings applies edit to the current (migrated) settings and saves the
// result.
func EditSettings(st *state.State, edit func(model.WidgetSettings) (model.WidgetSettings, error)) (model.WidgetSettings, error) {
	next, err := edit(st.Settings())
	if err != nil {
		return model.WidgetSettings{}, err
	}
	st.SaveSettings(next)
	return next, nil
}
