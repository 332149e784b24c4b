package mutate

import (
	"testing"

	"persona-board/internal/model"
)

func TestDoctorAndRepair(t *testing.T) {
	st := newState()
	a, _ := AddCategory(st, CategoryInput{Name: "A"})
	st.Profiles.Set("profile-1", model.Profile{ID: "profile-1", CategoryID: a.ID})
	st.Profiles.Set("profile-2", model.Profile{ID: "profile-2", CategoryID: "cat-gone"})
	st.Profiles.Set("profile-3", model.Profile{ID: "other", CategoryID: ""})
	st.StoredSettings.Set(model.StoredSettings{Fields: []model.FieldConfig{{ID: "quote", IsBuiltIn: true, BuiltInKey: model.BuiltInQuote}}})

	issues := Doctor(st)
	kinds := map[string]int{}
	for _, is := range issues {
		kinds[is.Kind]++
	}
	if kinds[IssueDanglingCategory] != 1 || kinds[IssueKeyMismatch] != 1 || kinds[IssueMissingBuiltIns] != 1 {
		t.Fatalf("unexpected issues: %#v", issues)
	}

	if n := Repair(st, issues); n != 3 {
		t.Fatalf("expected 3 fixes, got %d", n)
	}
	if left := Doctor(st); len(left) != 0 {
		t.Fatalf("expected clean state after repair, got %#v", left)
	}
	if p, _ := st.Profiles.Get("profile-2"); p.CategoryID != "" {
		t.Fatalf("dangling ref not repaired: %#v", p)
	}
	if p, _ := st.Profiles.Get("profile-1"); p.CategoryID != a.ID {
		t.Fatalf("valid ref touched: %#v", p)
	}
}

func TestSetTitleAndTip(t *testing.T) {
	st := newState()
	if got := SetTitle(st, "  Buyers "); got != "Buyers" || st.Title.Get() != "Buyers" {
		t.Fatalf("unexpected title %q", got)
	}
	if got := SetTitle(st, ""); got != "User Profiles" {
		t.Fatalf("blank title should restore default, got %q", got)
	}
	if !SetShowTip(st, false) || SetShowTip(st, false) {
		t.Fatalf("expected change then no-op")
	}
	if SetLanguage(st, "de") || !SetLanguage(st, model.LanguageNL) {
		t.Fatalf("unexpected SetLanguage results")
	}
}
