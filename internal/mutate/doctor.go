package mutate

import (
	"fmt"
	"sort"

	"persona-board/internal/model"
	"persona-board/internal/state"
)

// Issue is one integrity problem found by Doctor.
type Issue struct {
	Kind      string `json:"kind"`
	ProfileID string `json:"profileId,omitempty"`
	Ref       string `json:"ref,omitempty"`
	Detail    string `json:"detail"`
}

const (
	IssueDanglingCategory = "dangling_category"
	IssueDuplicateCatID   = "duplicate_category_id"
	IssueKeyMismatch      = "profile_key_mismatch"
	IssueMissingBuiltIns  = "missing_builtin_fields"
)

// Doctor reports integrity problems that can arrive through imports or
// concurrent editors: profiles pointing at categories that no longer exist,
// profiles stored under a key other than their id, repeated category ids,
// and settings that still need migration.
func Doctor(st *state.State) []Issue {
	var issues []Issue
	known := map[string]int{}
	for _, c := range st.Categories.Get() {
		known[c.ID]++
	}
	var dupes []string
	for id, n := range known {
		if n > 1 {
			dupes = append(dupes, id)
		}
	}
	sort.Strings(dupes)
	for _, id := range dupes {
		issues = append(issues, Issue{Kind: IssueDuplicateCatID, Ref: id, Detail: "category id appears more than once"})
	}

	for _, e := range st.Profiles.Entries() {
		p := e.Value
		if p.ID != e.Key {
			issues = append(issues, Issue{Kind: IssueKeyMismatch, ProfileID: e.Key, Ref: p.ID, Detail: "profile id differs from its key"})
		}
		if p.CategoryID != model.UncategorizedID && known[p.CategoryID] == 0 {
			issues = append(issues, Issue{Kind: IssueDanglingCategory, ProfileID: e.Key, Ref: p.CategoryID, Detail: "category does not exist"})
		}
	}

	if missing := state.MissingBuiltIns(st.StoredSettings.Get().Fields); len(missing) > 0 {
		issues = append(issues, Issue{Kind: IssueMissingBuiltIns, Detail: fmt.Sprintf("settings lack built-in fields %v", missing)})
	}
	return issues
}

// Repair fixes what Doctor reports: dangling references move to
// uncategorized, profile ids are aligned with their key, and migrated
// settings are persisted. Duplicate category ids are only reported.
func Repair(st *state.State, issues []Issue) int {
	fixed := 0
	for _, is := range issues {
		switch is.Kind {
		case IssueDanglingCategory, IssueKeyMismatch:
			p, ok := st.Profiles.Get(is.ProfileID)
			if !ok {
				continue
			}
			if is.Kind == IssueDanglingCategory {
				p.CategoryID = model.UncategorizedID
			} else {
				p.ID = is.ProfileID
			}
			st.Profiles.Set(is.ProfileID, p.Normalized())
			fixed++
		case IssueMissingBuiltIns:
			st.SaveSettings(st.Settings())
			fixed++
		}
	}
	return fixed
}
