package view

import (
	"reflect"
	"testing"

	"persona-board/internal/i18n"
	"persona-board/internal/model"
	"persona-board/internal/state"
)

func TestNumbering_IsLexicographic(t *testing.T) {
	profiles := []model.Profile{{ID: "profile-2"}, {ID: "profile-10"}, {ID: "profile-1"}}
	got := Numbering(profiles)
	want := map[string]int{"profile-1": 1, "profile-10": 2, "profile-2": 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("numbering: got %v want %v", got, want)
	}
}

func TestSortedCategories_ByOrder(t *testing.T) {
	cats := []model.Category{{ID: "cat-b", Order: 2}, {ID: "cat-a", Order: 0}, {ID: "cat-c", Order: 1}}
	got := SortedCategories(cats)
	if got[0].ID != "cat-a" || got[1].ID != "cat-c" || got[2].ID != "cat-b" {
		t.Fatalf("unexpected order: %#v", got)
	}
	if cats[0].ID != "cat-b" {
		t.Fatalf("input must not be reordered")
	}
}

func TestGroupByCategory_IncludesUncategorizedAndFoldsDangling(t *testing.T) {
	cats := []model.Category{{ID: "cat-a"}}
	profiles := []model.Profile{
		{ID: "profile-1", CategoryID: "cat-a"},
		{ID: "profile-2", CategoryID: ""},
		{ID: "profile-3", CategoryID: "cat-gone"},
	}
	counts := Counts(profiles, cats)
	if counts["cat-a"] != 1 || counts[""] != 2 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestBuild_EmptyState(t *testing.T) {
	b := Build(Input{Title: "T", ShowTip: true, Strings: i18n.For(model.LanguageEN)})
	if !b.Empty {
		t.Fatalf("expected empty board")
	}
	if len(b.Sections) != 0 || b.ShowTip || b.Detail != nil {
		t.Fatalf("empty board must not carry sections/tip/detail: %#v", b)
	}
	if b.Summary != "0 profiles · 0 categories" {
		t.Fatalf("unexpected summary %q", b.Summary)
	}
}

func TestBuild_CategoryOnlyIsNotEmpty(t *testing.T) {
	b := Build(Input{
		Categories: []model.Category{{ID: "cat-a", Name: "A"}},
		Strings:    i18n.For(model.LanguageEN),
	})
	if b.Empty {
		t.Fatalf("a category alone should leave the empty state")
	}
	if len(b.Sections) != 1 || b.Sections[0].Count() != 0 {
		t.Fatalf("expected one empty section, got %#v", b.Sections)
	}
}

func TestBuild_UncategorizedLastAndOnlyWhenNonEmpty(t *testing.T) {
	in := Input{
		Categories: []model.Category{
			{ID: "cat-b", Name: "B", ColorKey: model.ColorTeal, Order: 1},
			{ID: "cat-a", Name: "A", ColorKey: model.ColorPink, Order: 0},
		},
		Profiles: []model.Profile{
			{ID: "profile-1", CategoryID: "cat-b"},
			{ID: "profile-2", CategoryID: ""},
		},
		Strings: i18n.For(model.LanguageNL),
	}
	b := Build(in)
	var ids []string
	for _, s := range b.Sections {
		ids = append(ids, s.Category.ID)
	}
	if !reflect.DeepEqual(ids, []string{"cat-a", "cat-b", ""}) {
		t.Fatalf("unexpected section order: %v", ids)
	}
	last := b.Sections[2]
	if !last.Uncategorized || last.Category.Name != "Ongecategoriseerd" || last.Category.Order != 999 {
		t.Fatalf("unexpected uncategorized section: %#v", last.Category)
	}
	if len(b.Legend) != 3 || b.Legend[0].Count != 0 || b.Legend[2].Count != 1 {
		t.Fatalf("unexpected legend: %#v", b.Legend)
	}

	in.Profiles = in.Profiles[:1]
	b = Build(in)
	if len(b.Sections) != 2 || len(b.Legend) != 2 {
		t.Fatalf("uncategorized group must be hidden when empty: %#v", b.Sections)
	}
}

func TestBuild_BadgesAreGlobalAcrossCategories(t *testing.T) {
	b := Build(Input{
		Categories: []model.Category{{ID: "cat-a", Order: 0}},
		Profiles: []model.Profile{
			{ID: "profile-2", CategoryID: "cat-a"},
			{ID: "profile-10", CategoryID: ""},
		},
		Strings: i18n.For(model.LanguageEN),
	})
	if n := b.Sections[0].Cards[0].Number; n != 2 {
		t.Fatalf("expected profile-2 to be badge 2, got %d", n)
	}
	if n := b.Sections[1].Cards[0].Number; n != 1 {
		t.Fatalf("expected profile-10 to be badge 1, got %d", n)
	}
}

func TestFromState_DetailRowsFollowVisibleFieldOrder(t *testing.T) {
	st := state.NewMemory(model.LanguageEN)
	st.Profiles.Set("profile-1", model.Profile{
		ID:           "profile-1",
		Name:         "Ann",
		Quote:        "hi",
		Tasks:        []string{"a", "b"},
		CustomFields: map[string]string{"custom-1": "calm"},
	})
	st.ExpandedID.Set("profile-1")
	ws := st.Settings()
	ws.Fields = append(ws.Fields, model.FieldConfig{ID: "custom-1", Label: "Mood", IsVisible: true, Order: -1})
	for i := range ws.Fields {
		if ws.Fields[i].BuiltInKey == model.BuiltInContext {
			ws.Fields[i].IsVisible = false
		}
	}
	st.SaveSettings(ws)

	b := FromState(st)
	if b.Detail == nil {
		t.Fatalf("expected detail for expanded profile")
	}
	var labels []string
	for _, r := range b.Detail.Rows {
		labels = append(labels, r.Label)
	}
	if !reflect.DeepEqual(labels, []string{"Mood", "Quote", "Description", "Tasks"}) {
		t.Fatalf("unexpected rows: %v", labels)
	}
	if b.Detail.Rows[0].Value != "calm" || b.Detail.Rows[1].Value != "hi" {
		t.Fatalf("unexpected values: %#v", b.Detail.Rows)
	}
	if !reflect.DeepEqual(b.Detail.Rows[3].Tasks, []string{"a", "b"}) {
		t.Fatalf("unexpected tasks row: %#v", b.Detail.Rows[3])
	}
	if b.Detail.Category.ID != "" || b.Detail.Scheme != model.Palette[model.ColorGray] {
		t.Fatalf("uncategorized detail should use the gray scheme: %#v", b.Detail)
	}
	if b.Title != "User Profiles" || !b.ShowTip {
		t.Fatalf("unexpected defaults: title=%q tip=%v", b.Title, b.ShowTip)
	}
}
