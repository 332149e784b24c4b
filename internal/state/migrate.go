package state

import (
	"encoding/json"
	"sort"

	"persona-board/internal/i18n"
	"persona-board/internal/model"
)

// DefaultFieldConfig is the field list of a freshly created widget.
func DefaultFieldConfig(str i18n.Strings) []model.FieldConfig {
	out := make([]model.FieldConfig, 0, len(model.BuiltInKeys))
	for i, key := range model.BuiltInKeys {
		out = append(out, model.FieldConfig{
			ID:         string(key),
			Label:      str.BuiltInLabel(key),
			IsBuiltIn:  true,
			BuiltInKey: key,
			IsVisible:  true,
			Order:      i,
		})
	}
	return out
}

// HasTasksField reports whether fields already carries the tasks descriptor.
func HasTasksField(fields []model.FieldConfig) bool {
	for _, f := range fields {
		if f.BuiltInKey == model.BuiltInTasks {
			return true
		}
	}
	return false
}

func maxOrder(fields []model.FieldConfig) int {
	max := -1
	for _, f := range fields {
		if f.Order > max {
			max = f.Order
		}
	}
	return max
}

// MissingBuiltIns lists the built-in keys fields does not carry, in default
// order.
func MissingBuiltIns(fields []model.FieldConfig) []model.BuiltInKey {
	have := map[model.BuiltInKey]bool{}
	for _, f := range fields {
		if f.IsBuiltIn {
			have[f.BuiltInKey] = true
		}
	}
	var out []model.BuiltInKey
	for _, key := range model.BuiltInKeys {
		if !have[key] {
			out = append(out, key)
		}
	}
	return out
}

// MigrateSettings upgrades stored settings to the current shape. Widgets that
// predate the tasks descriptor get one appended after every existing field,
// honoring a legacy tasksModule override. Any other built-in that went missing
// (a settings answer or an import without it) is appended after that, visible.
// Applying it twice equals applying it once.
func MigrateSettings(stored model.StoredSettings, str i18n.Strings) model.WidgetSettings {
	fields := append([]model.FieldConfig{}, stored.Fields...)
	if !HasTasksField(fields) {
		label := str.FieldTasks
		visible := true
		if tm := stored.TasksModule; tm != nil {
			if tm.Label != "" {
				label = tm.Label
			}
			if tm.IsVisible != nil {
				visible = *tm.IsVisible
			}
		}
		fields = append(fields, model.FieldConfig{
			ID:         string(model.BuiltInTasks),
			Label:      label,
			IsBuiltIn:  true,
			BuiltInKey: model.BuiltInTasks,
			IsVisible:  visible,
			Order:      maxOrder(fields) + 1,
		})
	}
	for _, key := range MissingBuiltIns(fields) {
		fields = append(fields, model.FieldConfig{
			ID:         string(key),
			Label:      str.BuiltInLabel(key),
			IsBuiltIn:  true,
			BuiltInKey: key,
			IsVisible:  true,
			Order:      maxOrder(fields) + 1,
		})
	}
	return model.WidgetSettings{Fields: fields}
}

// LegacyProfileKeys are attributes of an earlier profile schema that are
// dropped on import.
var LegacyProfileKeys = []string{"level", "orgSize"}

var canonicalProfileKeys = map[string]bool{
	"id": true, "name": true, "categoryId": true, "description": true,
	"quote": true, "tasks": true, "context": true, "customFields": true,
}

// StripLegacyProfile decodes an imported profile into the canonical shape and
// reports the attributes that were dropped (sorted).
func StripLegacyProfile(raw json.RawMessage) (model.Profile, []string, error) {
	var attrs map[string]json.RawMessage
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return model.Profile{}, nil, err
	}
	var dropped []string
	for k := range attrs {
		if !canonicalProfileKeys[k] {
			dropped = append(dropped, k)
		}
	}
	sort.Strings(dropped)

	var p model.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return model.Profile{}, nil, err
	}
	return p.Normalized(), dropped, nil
}
