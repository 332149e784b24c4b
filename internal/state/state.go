// Package state binds the widget's synchronized keys to typed accessors.
package state

import (
	"context"

	"persona-board/internal/i18n"
	"persona-board/internal/model"
	"persona-board/internal/syncstore"
)

// Synchronized keys, as persisted by every backend.
const (
	KeyExpandedID     = "expandedId"
	KeyProfiles       = "profiles"
	KeyCategories     = "categories"
	KeyWidgetTitle    = "widgetTitle"
	KeyWidgetSettings = "widgetSettings"
	KeyShowTip        = "showTip"
	KeyLanguage       = "language"
)

// State is the full synchronized state of one widget instance. Profiles is a
// per-key map; every other field is a whole-value scalar.
type State struct {
	doc *syncstore.Doc

	Profiles       syncstore.Map[model.Profile]
	ExpandedID     syncstore.Value[string] // "" when no profile is open
	Categories     syncstore.Value[[]model.Category]
	Title          syncstore.Value[string]
	StoredSettings syncstore.Value[model.StoredSettings]
	ShowTip        syncstore.Value[bool]
	Language       syncstore.Value[model.Language]
}

// New returns the state view over doc. defaultLang applies until a language is saved.
func New(doc *syncstore.Doc, defaultLang model.Language) *State {
	if !defaultLang.Valid() {
		defaultLang = model.LanguageEN
	}
	s := &State{doc: doc}
	s.Profiles = syncstore.MapOf[model.Profile](doc, KeyProfiles)
	s.ExpandedID = syncstore.ValueOf(doc, KeyExpandedID, func() string { return "" })
	s.Categories = syncstore.ValueOf(doc, KeyCategories, func() []model.Category { return []model.Category{} })
	s.Language = syncstore.ValueOf(doc, KeyLanguage, func() model.Language { return defaultLang })
	s.Title = syncstore.ValueOf(doc, KeyWidgetTitle, func() string { return s.Strings().DefaultTitle })
	s.StoredSettings = syncstore.ValueOf(doc, KeyWidgetSettings, func() model.StoredSettings {
		return model.StoredSettings{Fields: DefaultFieldConfig(s.Strings())}
	})
	s.ShowTip = syncstore.ValueOf(doc, KeyShowTip, func() bool { return true })
	return s
}

// NewMemory returns a state over a fresh in-memory document.
func NewMemory(defaultLang model.Language) *State {
	return New(syncstore.NewDoc(), defaultLang)
}

func (s *State) Doc() *syncstore.Doc { return s.doc }

// Strings returns the string table of the widget's current language.
func (s *State) Strings() i18n.Strings {
	return i18n.For(s.Language.Get())
}

// Settings returns the migrated widget settings. Migration is not persisted
// until settings are saved.
func (s *State) Settings() model.WidgetSettings {
	return MigrateSettings(s.StoredSettings.Get(), s.Strings())
}

// SaveSettings writes settings back wholesale, dropping any legacy shape.
// Built-ins missing from ws are restored before the write.
func (s *State) SaveSettings(ws model.WidgetSettings) {
	ws = MigrateSettings(model.StoredSettings{Fields: ws.Fields}, s.Strings())
	s.StoredSettings.Set(model.StoredSettings{Fields: ws.Fields})
}

// Category looks up a stored category by id.
func (s *State) Category(id string) (model.Category, bool) {
	for _, c := range s.Categories.Get() {
		if c.ID == id {
			return c, true
		}
	}
	return model.Category{}, false
}

// Flush replicates every write made since the previous flush.
func (s *State) Flush(ctx context.Context) error {
	return s.doc.Flush(ctx)
}
