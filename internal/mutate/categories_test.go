package mutate

import (
	"context"
	"reflect"
	"testing"

	"persona-board/internal/model"
	"persona-board/internal/state"
)

func TestAddCategory_Defaults(t *testing.T) {
	st := newState()
	c, err := AddCategory(st, CategoryInput{Name: "  Buyers "})
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	if c.Name != "Buyers" || c.Icon != "👤" || c.ColorKey != model.ColorPink || c.Order != 0 {
		t.Fatalf("unexpected defaults: %#v", c)
	}
	if len(c.ID) != len("cat-")+7 || c.ID[:4] != "cat-" {
		t.Fatalf("unexpected id %q", c.ID)
	}
	c2, _ := AddCategory(st, CategoryInput{Name: "B", Icon: "🎯", Color: "teal"})
	if c2.Order != 1 || c2.ColorKey != model.ColorTeal || c2.Icon != "🎯" {
		t.Fatalf("unexpected second category: %#v", c2)
	}
	if _, err := AddCategory(st, CategoryInput{Name: " "}); err != ErrEmptyName {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestUpdateCategory_KeepsOrder(t *testing.T) {
	st := newState()
	AddCategory(st, CategoryInput{Name: "A"})
	b, _ := AddCategory(st, CategoryInput{Name: "B", Color: "amber"})

	got, err := UpdateCategory(st, b.ID, CategoryInput{Name: "Bee", Color: "nope"})
	if err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	if got.Order != 1 || got.Name != "Bee" || got.ColorKey != model.ColorPink || got.Icon != "👤" {
		t.Fatalf("unexpected update: %#v", got)
	}
	if _, err := UpdateCategory(st, "cat-zzz", CategoryInput{Name: "x"}); !IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestDeleteCategory_ScenarioABP(t *testing.T) {
	st := newState()
	a, _ := AddCategory(st, CategoryInput{Name: "A"})
	b, _ := AddCategory(st, CategoryInput{Name: "B"})
	p := AddProfile(st, a.ID)

	res, err := DeleteCategory(st, a.ID)
	if err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	cats := st.Categories.Get()
	if len(cats) != 1 || cats[0].ID != b.ID {
		t.Fatalf("expected category list [B], got %#v", cats)
	}
	got, _ := st.Profiles.Get(p.ID)
	if got.CategoryID != "" {
		t.Fatalf("expected P to be uncategorized, got %q", got.CategoryID)
	}
	if !reflect.DeepEqual(res.Moved, []string{p.ID}) {
		t.Fatalf("unexpected moved list %v", res.Moved)
	}
}

func TestDeleteCategory_CascadeTouchesOnlyMembers(t *testing.T) {
	st := newState()
	a, _ := AddCategory(st, CategoryInput{Name: "A"})
	b, _ := AddCategory(st, CategoryInput{Name: "B"})

	members := map[string]model.Profile{}
	for i := 0; i < 3; i++ {
		p := AddProfile(st, a.ID)
		p.Quote = "q" + p.ID
		p.CustomFields = map[string]string{"custom-1": p.ID}
		UpdateProfile(st, p)
		members[p.ID] = p.Normalized()
	}
	other := AddProfile(st, b.ID)
	loose := AddProfile(st, "")

	res, err := DeleteCategory(st, a.ID)
	if err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if len(res.Moved) != 3 {
		t.Fatalf("expected 3 moved, got %d", len(res.Moved))
	}
	for id, before := range members {
		after, _ := st.Profiles.Get(id)
		before.CategoryID = ""
		if !reflect.DeepEqual(after, before) {
			t.Fatalf("member %s changed beyond categoryId:\nbefore %#v\nafter  %#v", id, before, after)
		}
	}
	if got, _ := st.Profiles.Get(other.ID); got.CategoryID != b.ID {
		t.Fatalf("non-member moved: %#v", got)
	}
	if got, _ := st.Profiles.Get(loose.ID); got.CategoryID != "" {
		t.Fatalf("uncategorized profile touched: %#v", got)
	}
}

func TestDeleteCategory_NoMembersTouchesNoProfile(t *testing.T) {
	st := newState()
	a, _ := AddCategory(st, CategoryInput{Name: "A"})
	b, _ := AddCategory(st, CategoryInput{Name: "B"})
	AddProfile(st, b.ID)
	if err := st.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	res, err := DeleteCategory(st, a.ID)
	if err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if len(res.Moved) != 0 {
		t.Fatalf("expected no moved profiles, got %v", res.Moved)
	}
	pending := st.Doc().Pending()
	if len(pending) != 1 || pending[0].Key != state.KeyCategories {
		t.Fatalf("expected only the category list write, got %#v", pending)
	}
}

func TestDeleteCategory_RecategorizesBeforeRemoving(t *testing.T) {
	st := newState()
	a, _ := AddCategory(st, CategoryInput{Name: "A"})
	AddProfile(st, a.ID)
	if err := st.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if _, err := DeleteCategory(st, a.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	pending := st.Doc().Pending()
	if len(pending) != 2 {
		t.Fatalf("expected 2 writes, got %#v", pending)
	}
	if pending[0].Scope != state.KeyProfiles || pending[1].Key != state.KeyCategories {
		t.Fatalf("profile rewrite must precede category removal: %#v", pending)
	}
}

func orders(st *state.State) map[string]int {
	out := map[string]int{}
	for _, c := range st.Categories.Get() {
		out[c.ID] = c.Order
	}
	return out
}

func TestMoveCategory_UpThenDownRestoresOrder(t *testing.T) {
	st := newState()
	var ids []string
	for _, n := range []string{"A", "B", "C", "D"} {
		c, _ := AddCategory(st, CategoryInput{Name: n})
		ids = append(ids, c.ID)
	}
	original := orders(st)
	for i := 1; i < len(ids); i++ {
		moved, err := MoveCategory(st, ids[i], Up)
		if err != nil || !moved {
			t.Fatalf("move up %d: moved=%v err=%v", i, moved, err)
		}
		moved, err = MoveCategory(st, ids[i], Down)
		if err != nil || !moved {
			t.Fatalf("move down %d: moved=%v err=%v", i, moved, err)
		}
		if got := orders(st); !reflect.DeepEqual(got, original) {
			t.Fatalf("index %d: orders %v, want %v", i, got, original)
		}
	}
}

func TestMoveCategory_SwapsWithSortedNeighbor(t *testing.T) {
	st := newState()
	st.Categories.Set([]model.Category{
		{ID: "cat-c", Order: 5},
		{ID: "cat-a", Order: 1},
		{ID: "cat-b", Order: 3},
	})
	if _, err := MoveCategory(st, "cat-c", Up); err != nil {
		t.Fatalf("MoveCategory: %v", err)
	}
	got := orders(st)
	if got["cat-c"] != 3 || got["cat-b"] != 5 || got["cat-a"] != 1 {
		t.Fatalf("unexpected orders %v", got)
	}
}

func TestMoveCategory_BoundariesAreNoOps(t *testing.T) {
	st := newState()
	a, _ := AddCategory(st, CategoryInput{Name: "A"})
	b, _ := AddCategory(st, CategoryInput{Name: "B"})
	before := orders(st)
	if moved, _ := MoveCategory(st, a.ID, Up); moved {
		t.Fatalf("first category cannot move up")
	}
	if moved, _ := MoveCategory(st, b.ID, Down); moved {
		t.Fatalf("last category cannot move down")
	}
	if !reflect.DeepEqual(orders(st), before) {
		t.Fatalf("boundary moves changed orders")
	}
	if _, err := MoveCategory(st, "cat-none", Up); !IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
