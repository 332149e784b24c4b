package state

import (
	"strings"
	"testing"

	"persona-board/internal/model"
	"persona-board/internal/syncstore"
)

func profilesWithIDs(ids ...string) *syncstore.MemoryMap[model.Profile] {
	m := syncstore.NewMemoryMap[model.Profile]()
	for _, id := range ids {
		m.Set(id, model.Profile{ID: id})
	}
	return m
}

func TestNextProfileNumber_Empty(t *testing.T) {
	if got := NextProfileNumber(profilesWithIDs()); got != 1 {
		t.Fatalf("expected 1 for empty set, got %d", got)
	}
}

func TestNextProfileNumber_MaxPlusOne(t *testing.T) {
	got := NextProfileNumber(profilesWithIDs("profile-2", "profile-10", "profile-3"))
	if got != 11 {
		t.Fatalf("expected 11, got %d", got)
	}
}

func TestNextProfileNumber_IgnoresNonMatchingIDs(t *testing.T) {
	got := NextProfileNumber(profilesWithIDs("imported-abc", "persona"))
	if got != 1 {
		t.Fatalf("expected non-matching ids to contribute 0 (next=1), got %d", got)
	}
	got = NextProfileNumber(profilesWithIDs("imported-abc", "profile-4"))
	if got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
}

func TestNextProfileNumber_ReissuesAfterDeletingHighest(t *testing.T) {
	m := profilesWithIDs("profile-1", "profile-2", "profile-3")
	m.Delete("profile-3")
	if got := NextProfileNumber(m); got != 3 {
		t.Fatalf("expected derived counter to reissue 3, got %d", got)
	}
}

func TestNextProfileNumber_WorksOnSynchronizedMap(t *testing.T) {
	st := NewMemory(model.LanguageEN)
	st.Profiles.Set("profile-7", model.Profile{ID: "profile-7"})
	if got := NextProfileNumber(st.Profiles); got != 8 {
		t.Fatalf("expected 8, got %d", got)
	}
}

func TestGenerateID(t *testing.T) {
	id := GenerateID()
	if len(id) != 7 {
		t.Fatalf("expected 7 chars, got %q", id)
	}
	for _, r := range id {
		if !strings.ContainsRune(base36, r) {
			t.Fatalf("unexpected rune %q in %q", r, id)
		}
	}
	if c := NewCategoryID(); !strings.HasPrefix(c, "cat-") {
		t.Fatalf("expected cat- prefix, got %q", c)
	}
}
