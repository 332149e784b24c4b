// Package view derives the displayed board from the widget's stored state.
// Everything here is recomputed from a snapshot on every call.
package view

import (
	"sort"

	"persona-board/internal/i18n"
	"persona-board/internal/model"
)

// Input is a point-in-time snapshot of the state a board is built from.
type Input struct {
	Title      string
	Profiles   []model.Profile
	Categories []model.Category
	Settings   model.WidgetSettings
	ExpandedID string
	ShowTip    bool
	Strings    i18n.Strings
}

type Card struct {
	Profile model.Profile `json:"profile"`
	Number  int           `json:"number"`
}

type Section struct {
	Category      model.Category    `json:"category"`
	Uncategorized bool              `json:"uncategorized,omitempty"`
	Scheme        model.ColorScheme `json:"scheme"`
	Cards         []Card            `json:"cards"`
}

func (s Section) Count() int { return len(s.Cards) }

type LegendEntry struct {
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
	Accent     string `json:"accent"`
	Count      int    `json:"count"`
}

type FieldRow struct {
	Field model.FieldConfig `json:"field"`
	Label string            `json:"label"`
	Value string            `json:"value,omitempty"`
	Tasks []string          `json:"tasks,omitempty"`
}

type Detail struct {
	Card     Card              `json:"card"`
	Category model.Category    `json:"category"`
	Scheme   model.ColorScheme `json:"scheme"`
	Rows     []FieldRow        `json:"rows"`
}

type Board struct {
	Title           string        `json:"title"`
	Empty           bool          `json:"empty"`
	ShowTip         bool          `json:"showTip"`
	TotalProfiles   int           `json:"totalProfiles"`
	TotalCategories int           `json:"totalCategories"`
	Summary         string        `json:"summary"`
	Legend          []LegendEntry `json:"legend,omitempty"`
	Sections        []Section     `json:"sections,omitempty"`
	Detail          *Detail       `json:"detail,omitempty"`
}

// SortedCategories returns categories by ascending order. Ties keep their
// stored position.
func SortedCategories(cats []model.Category) []model.Category {
	out := append([]model.Category{}, cats...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Numbering assigns badge numbers 1..N by sorting profile ids as plain
// strings, so "profile-10" is numbered before "profile-2".
func Numbering(profiles []model.Profile) map[string]int {
	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.ID)
	}
	sort.Strings(ids)
	out := make(map[string]int, len(ids))
	for i, id := range ids {
		out[id] = i + 1
	}
	return out
}

// GroupByCategory groups profiles by categoryId. Profiles that reference a
// category missing from cats land in the uncategorized ("") group. Members of
// each group are ordered by id.
func GroupByCategory(profiles []model.Profile, cats []model.Category) map[string][]model.Profile {
	known := make(map[string]bool, len(cats))
	for _, c := range cats {
		known[c.ID] = true
	}
	out := map[string][]model.Profile{}
	for _, p := range profiles {
		key := p.CategoryID
		if !known[key] {
			key = model.UncategorizedID
		}
		out[key] = append(out[key], p)
	}
	for _, group := range out {
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })
	}
	return out
}

// Counts returns the number of profiles per category id, including "".
func Counts(profiles []model.Profile, cats []model.Category) map[string]int {
	out := map[string]int{}
	for id, group := range GroupByCategory(profiles, cats) {
		out[id] = len(group)
	}
	return out
}

// UncategorizedCategory is the synthetic category of the "" group.
func UncategorizedCategory(str i18n.Strings) model.Category {
	return model.Category{
		ID:       model.UncategorizedID,
		Name:     str.Uncategorized,
		Icon:     model.UncategorizedIcon,
		ColorKey: model.UncategorizedColor,
		Order:    model.UncategorizedOrder,
	}
}

// SortedFields returns every field by ascending order.
func SortedFields(settings model.WidgetSettings) []model.FieldConfig {
	out := append([]model.FieldConfig{}, settings.Fields...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// VisibleFields returns the visible fields by ascending order.
func VisibleFields(settings model.WidgetSettings) []model.FieldConfig {
	var out []model.FieldConfig
	for _, f := range SortedFields(settings) {
		if f.IsVisible {
			out = append(out, f)
		}
	}
	return out
}

// IsEmpty reports whether the board shows the empty state.
func IsEmpty(in Input) bool {
	return len(in.Categories) == 0 && len(in.Profiles) == 0
}

// Build computes the board for a snapshot.
func Build(in Input) Board {
	b := Board{
		Title:           in.Title,
		Empty:           IsEmpty(in),
		TotalProfiles:   len(in.Profiles),
		TotalCategories: len(in.Categories),
	}
	b.Summary = in.Strings.ProfileCount(b.TotalProfiles) + " · " + in.Strings.CategoryCount(b.TotalCategories)
	if b.Empty {
		return b
	}
	b.ShowTip = in.ShowTip

	numbers := Numbering(in.Profiles)
	groups := GroupByCategory(in.Profiles, in.Categories)

	for _, c := range SortedCategories(in.Categories) {
		scheme := model.SchemeFor(c.ColorKey)
		b.Sections = append(b.Sections, Section{
			Category: c,
			Scheme:   scheme,
			Cards:    cards(groups[c.ID], numbers),
		})
		b.Legend = append(b.Legend, LegendEntry{
			CategoryID: c.ID,
			Name:       c.Name,
			Accent:     scheme.Accent,
			Count:      len(groups[c.ID]),
		})
	}
	if loose := groups[model.UncategorizedID]; len(loose) > 0 {
		unc := UncategorizedCategory(in.Strings)
		scheme := model.SchemeFor(unc.ColorKey)
		b.Sections = append(b.Sections, Section{
			Category:      unc,
			Uncategorized: true,
			Scheme:        scheme,
			Cards:         cards(loose, numbers),
		})
		b.Legend = append(b.Legend, LegendEntry{
			CategoryID: unc.ID,
			Name:       unc.Name,
			Accent:     scheme.Accent,
			Count:      len(loose),
		})
	}

	b.Detail = buildDetail(in, numbers)
	return b
}

func cards(profiles []model.Profile, numbers map[string]int) []Card {
	out := make([]Card, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, Card{Profile: p.Normalized(), Number: numbers[p.ID]})
	}
	return out
}

func buildDetail(in Input, numbers map[string]int) *Detail {
	if in.ExpandedID == "" {
		return nil
	}
	var (
		p     model.Profile
		found bool
	)
	for _, x := range in.Profiles {
		if x.ID == in.ExpandedID {
			p, found = x, true
			break
		}
	}
	if !found {
		return nil
	}

	cat := UncategorizedCategory(in.Strings)
	for _, c := range in.Categories {
		if c.ID == p.CategoryID && p.CategoryID != model.UncategorizedID {
			cat = c
			break
		}
	}

	d := &Detail{
		Card:     Card{Profile: p.Normalized(), Number: numbers[p.ID]},
		Category: cat,
		Scheme:   model.SchemeFor(cat.ColorKey),
	}
	for _, f := range VisibleFields(in.Settings) {
		row := FieldRow{Field: f, Label: in.Strings.FieldLabel(f)}
		if f.BuiltInKey == model.BuiltInTasks {
			row.Tasks = append([]string{}, d.Card.Profile.Tasks...)
		} else {
			row.Value = model.FieldValue(p, f)
		}
		d.Rows = append(d.Rows, row)
	}
	return d
}
