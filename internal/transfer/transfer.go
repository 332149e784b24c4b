// Package transfer serializes the full widget state to a versioned JSON
// document and restores it.
package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"persona-board/internal/model"
	"persona-board/internal/state"
)

const SchemaVersion = "2.0.0"

var ErrMalformedImport = errors.New("malformed import document")

type Document struct {
	Version        string                   `json:"version"`
	ExportedAt     string                   `json:"exportedAt"`
	WidgetTitle    string                   `json:"widgetTitle"`
	WidgetSettings model.WidgetSettings     `json:"widgetSettings"`
	Categories     []model.Category         `json:"categories"`
	Profiles       map[string]model.Profile `json:"profiles"`
}

// Export projects the current state into a Document. Profiles are reduced to
// their canonical shape and settings are exported migrated.
func Export(st *state.State, now time.Time) Document {
	doc := Document{
		Version:        SchemaVersion,
		ExportedAt:     now.UTC().Format(time.RFC3339Nano),
		WidgetTitle:    st.Title.Get(),
		WidgetSettings: st.Settings(),
		Categories:     st.Categories.Get(),
		Profiles:       map[string]model.Profile{},
	}
	if doc.Categories == nil {
		doc.Categories = []model.Category{}
	}
	if doc.WidgetSettings.Fields == nil {
		doc.WidgetSettings.Fields = []model.FieldConfig{}
	}
	for _, e := range st.Profiles.Entries() {
		doc.Profiles[e.Key] = e.Value.Normalized()
	}
	return doc
}

// Marshal renders doc as JSON indented by two spaces.
func Marshal(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ExportJSON is Export followed by Marshal.
func ExportJSON(st *state.State, now time.Time) (string, error) {
	b, err := Marshal(Export(st, now))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// importDocument tells absent keys apart from present ones.
type importDocument struct {
	Version        *string         `json:"version"`
	WidgetTitle    *string         `json:"widgetTitle"`
	WidgetSettings json.RawMessage `json:"widgetSettings"`
	Categories     json.RawMessage `json:"categories"`
	Profiles       json.RawMessage `json:"profiles"`
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

type Result struct {
	Version            string              `json:"version,omitempty"`
	TitleReplaced      bool                `json:"titleReplaced"`
	SettingsReplaced   bool                `json:"settingsReplaced"`
	CategoriesReplaced bool                `json:"categoriesReplaced"`
	ProfilesReplaced   bool                `json:"profilesReplaced"`
	Profiles           int                 `json:"profiles"`
	Removed            int                 `json:"removed"`
	Dropped            map[string][]string `json:"dropped,omitempty"`
}

// plan is a fully decoded import that can be applied without failing.
type plan struct {
	result     Result
	title      string
	settings   *model.StoredSettings
	categories []model.Category
	profiles   []model.Profile
	keys       []string
}

func decode(data []byte) (plan, error) {
	var p plan
	var in importDocument
	if err := json.Unmarshal(data, &in); err != nil {
		return p, fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}
	if in.Version != nil {
		p.result.Version = *in.Version
	}
	if in.WidgetTitle != nil && *in.WidgetTitle != "" {
		p.title = *in.WidgetTitle
		p.result.TitleReplaced = true
	}
	if present(in.WidgetSettings) {
		var ss model.StoredSettings
		if err := json.Unmarshal(in.WidgetSettings, &ss); err != nil {
			return p, fmt.Errorf("%w: widgetSettings: %v", ErrMalformedImport, err)
		}
		p.settings = &ss
		p.result.SettingsReplaced = true
	}
	if present(in.Categories) {
		var cats []model.Category
		if err := json.Unmarshal(in.Categories, &cats); err != nil {
			return p, fmt.Errorf("%w: categories: %v", ErrMalformedImport, err)
		}
		if cats == nil {
			cats = []model.Category{}
		}
		p.categories = cats
		p.result.CategoriesReplaced = true
	}
	if present(in.Profiles) {
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(in.Profiles, &raw); err != nil {
			return p, fmt.Errorf("%w: profiles: %v", ErrMalformedImport, err)
		}
		keys := make([]string, 0, len(raw))
		for k := range raw {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			prof, dropped, err := state.StripLegacyProfile(raw[k])
			if err != nil {
				return p, fmt.Errorf("%w: profile %s: %v", ErrMalformedImport, k, err)
			}
			if prof.ID == "" {
				prof.ID = k
			}
			if len(dropped) > 0 {
				if p.result.Dropped == nil {
					p.result.Dropped = map[string][]string{}
				}
				p.result.Dropped[k] = dropped
			}
			p.keys = append(p.keys, k)
			p.profiles = append(p.profiles, prof)
		}
		p.result.ProfilesReplaced = true
		p.result.Profiles = len(keys)
	}
	return p, nil
}

// Import restores a document. The whole input is decoded before anything is
// written, so a malformed document leaves st untouched. Keys absent from the
// input keep their current values; a present profiles key replaces the whole
// profile map.
func Import(st *state.State, data []byte) (Result, error) {
	p, err := decode(data)
	if err != nil {
		return Result{}, err
	}
	if p.result.TitleReplaced {
		st.Title.Set(p.title)
	}
	if p.settings != nil {
		st.StoredSettings.Set(*p.settings)
	}
	if p.result.CategoriesReplaced {
		st.Categories.Set(p.categories)
	}
	if p.result.ProfilesReplaced {
		for _, k := range st.Profiles.Keys() {
			st.Profiles.Delete(k)
			p.result.Removed++
		}
		for i, k := range p.keys {
			st.Profiles.Set(k, p.profiles[i])
		}
	}
	return p.result, nil
}
