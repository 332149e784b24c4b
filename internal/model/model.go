package model

import "strings"

const (
	// UncategorizedID is the categoryId of profiles that belong to no category.
	// It is never stored in the category list.
	UncategorizedID = ""

	// UncategorizedOrder is the synthetic order of the uncategorized group.
	UncategorizedOrder = 999

	ProfileIDPrefix     = "profile-"
	CategoryIDPrefix    = "cat-"
	CustomFieldIDPrefix = "custom-"
)

type Profile struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	CategoryID   string            `json:"categoryId"`
	Description  string            `json:"description"`
	Quote        string            `json:"quote"`
	Tasks        []string          `json:"tasks"`
	Context      string            `json:"context"`
	CustomFields map[string]string `json:"customFields,omitempty"`
}

// Normalized returns a copy with a non-nil task list and without an empty
// customFields map, which is the canonical wire shape.
func (p Profile) Normalized() Profile {
	out := p
	if out.Tasks == nil {
		out.Tasks = []string{}
	} else {
		out.Tasks = append([]string{}, p.Tasks...)
	}
	if len(out.CustomFields) == 0 {
		out.CustomFields = nil
	} else {
		cf := make(map[string]string, len(p.CustomFields))
		for k, v := range p.CustomFields {
			cf[k] = v
		}
		out.CustomFields = cf
	}
	return out
}

type ColorKey string

const (
	ColorPink    ColorKey = "pink"
	ColorTeal    ColorKey = "teal"
	ColorPurple  ColorKey = "purple"
	ColorAmber   ColorKey = "amber"
	ColorSky     ColorKey = "sky"
	ColorRose    ColorKey = "rose"
	ColorIndigo  ColorKey = "indigo"
	ColorEmerald ColorKey = "emerald"
	ColorGray    ColorKey = "gray"
)

// ColorKeys lists the palette keys in picker order.
var ColorKeys = []ColorKey{
	ColorPink, ColorTeal, ColorPurple, ColorAmber, ColorSky,
	ColorRose, ColorIndigo, ColorEmerald, ColorGray,
}

func (c ColorKey) Valid() bool {
	_, ok := Palette[c]
	return ok
}

// ParseColorKey maps user input onto a palette key. Empty or unknown input
// falls back to pink, matching how unknown colors render.
func ParseColorKey(s string) ColorKey {
	c := ColorKey(strings.ToLower(strings.TrimSpace(s)))
	if c.Valid() {
		return c
	}
	return ColorPink
}

type ColorScheme struct {
	Bg      string `json:"bg"`
	BgLight string `json:"bgLight"`
	Accent  string `json:"accent"`
	Text    string `json:"text"`
	Border  string `json:"border"`
}

var Palette = map[ColorKey]ColorScheme{
	ColorPink:    {Bg: "#FDF2F8", BgLight: "#FDF2F8", Accent: "#DB2777", Text: "#9D174D", Border: "#F9A8D4"},
	ColorTeal:    {Bg: "#F0FDFA", BgLight: "#F0FDFA", Accent: "#0D9488", Text: "#115E59", Border: "#5EEAD4"},
	ColorPurple:  {Bg: "#FAF5FF", BgLight: "#FAF5FF", Accent: "#7C3AED", Text: "#6B21A8", Border: "#D8B4FE"},
	ColorAmber:   {Bg: "#FFFBEB", BgLight: "#FFFBEB", Accent: "#B45309", Text: "#92400E", Border: "#FCD34D"},
	ColorSky:     {Bg: "#F0F9FF", BgLight: "#F0F9FF", Accent: "#0284C7", Text: "#075985", Border: "#7DD3FC"},
	ColorRose:    {Bg: "#FFF1F2", BgLight: "#FFF1F2", Accent: "#E11D48", Text: "#9F1239", Border: "#FDA4AF"},
	ColorIndigo:  {Bg: "#EEF2FF", BgLight: "#EEF2FF", Accent: "#4F46E5", Text: "#3730A3", Border: "#A5B4FC"},
	ColorEmerald: {Bg: "#ECFDF5", BgLight: "#ECFDF5", Accent: "#059669", Text: "#065F46", Border: "#6EE7B7"},
	ColorGray:    {Bg: "#F9FAFB", BgLight: "#F9FAFB", Accent: "#4B5563", Text: "#1F2937", Border: "#D1D5DB"},
}

// SchemeFor returns the palette entry for c, falling back to pink.
func SchemeFor(c ColorKey) ColorScheme {
	if s, ok := Palette[c]; ok {
		return s
	}
	return Palette[ColorPink]
}

const (
	DefaultCategoryIcon  = "👤"
	UncategorizedIcon    = "📂"
	DefaultCategoryColor = ColorPink
	UncategorizedColor   = ColorGray
)

type Category struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Icon     string   `json:"icon"`
	ColorKey ColorKey `json:"colorKey"`
	Order    int      `json:"order"`
}

type BuiltInKey string

const (
	BuiltInQuote       BuiltInKey = "quote"
	BuiltInContext     BuiltInKey = "context"
	BuiltInDescription BuiltInKey = "description"
	BuiltInTasks       BuiltInKey = "tasks"
)

// BuiltInKeys lists the mandatory built-in fields in their default order.
var BuiltInKeys = []BuiltInKey{BuiltInQuote, BuiltInContext, BuiltInDescription, BuiltInTasks}

type FieldConfig struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	IsBuiltIn  bool       `json:"isBuiltIn"`
	BuiltInKey BuiltInKey `json:"builtInKey,omitempty"`
	IsVisible  bool       `json:"isVisible"`
	Order      int        `json:"order"`
}

type WidgetSettings struct {
	Fields []FieldConfig `json:"fields"`
}

// Clone returns a deep copy so callers can edit field descriptors without
// touching the stored value.
func (s WidgetSettings) Clone() WidgetSettings {
	return WidgetSettings{Fields: append([]FieldConfig{}, s.Fields...)}
}

// TasksModuleConfig is the legacy top-level tasks configuration that predates
// the tasks field descriptor.
type TasksModuleConfig struct {
	IsVisible *bool  `json:"isVisible,omitempty"`
	Label     string `json:"label,omitempty"`
}

// StoredSettings is the persisted shape of widget settings. Legacy widgets may
// carry TasksModule and lack the tasks field; reads go through migration.
type StoredSettings struct {
	Fields      []FieldConfig      `json:"fields"`
	TasksModule *TasksModuleConfig `json:"tasksModule,omitempty"`
}

type Language string

const (
	LanguageEN Language = "en"
	LanguageNL Language = "nl"
)

func (l Language) Valid() bool {
	return l == LanguageEN || l == LanguageNL
}
