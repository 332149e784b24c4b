package model

import "testing"

func TestFieldValue_BuiltInReadsAttribute(t *testing.T) {
	p := Profile{ID: "profile-1", Quote: "q", Context: "c", Description: "d"}
	cases := map[BuiltInKey]string{
		BuiltInQuote:       "q",
		BuiltInContext:     "c",
		BuiltInDescription: "d",
	}
	for key, want := range cases {
		f := FieldConfig{ID: string(key), IsBuiltIn: true, BuiltInKey: key}
		if got := FieldValue(p, f); got != want {
			t.Fatalf("FieldValue(%s) = %q, want %q", key, got, want)
		}
	}
}

func TestFieldValue_CustomAndTasksUseCustomFields(t *testing.T) {
	p := Profile{ID: "profile-1", Tasks: []string{"a"}}
	custom := FieldConfig{ID: "custom-1"}
	if got := FieldValue(p, custom); got != "" {
		t.Fatalf("expected empty value for absent custom field, got %q", got)
	}

	tasks := FieldConfig{ID: "tasks", IsBuiltIn: true, BuiltInKey: BuiltInTasks}
	p.CustomFields = map[string]string{"tasks": "scalar", "custom-1": "x"}
	if got := FieldValue(p, tasks); got != "scalar" {
		t.Fatalf("expected tasks descriptor to read customFields slot, got %q", got)
	}
	if got := FieldValue(p, custom); got != "x" {
		t.Fatalf("expected custom value x, got %q", got)
	}
}

func TestSetFieldValue_DoesNotMutateInput(t *testing.T) {
	orig := Profile{ID: "profile-1", CustomFields: map[string]string{"custom-1": "old"}}
	custom := FieldConfig{ID: "custom-1"}

	next := SetFieldValue(orig, custom, "new")
	if orig.CustomFields["custom-1"] != "old" {
		t.Fatalf("input profile was mutated: %#v", orig.CustomFields)
	}
	if next.CustomFields["custom-1"] != "new" {
		t.Fatalf("expected new value, got %#v", next.CustomFields)
	}

	quote := FieldConfig{ID: "quote", IsBuiltIn: true, BuiltInKey: BuiltInQuote}
	next2 := SetFieldValue(next, quote, "hello")
	if next2.Quote != "hello" || next.Quote != "" {
		t.Fatalf("unexpected quote values: next=%q next2=%q", next.Quote, next2.Quote)
	}
}

func TestNormalized(t *testing.T) {
	p := Profile{ID: "profile-1", CustomFields: map[string]string{}}
	n := p.Normalized()
	if n.Tasks == nil || len(n.Tasks) != 0 {
		t.Fatalf("expected empty non-nil tasks, got %#v", n.Tasks)
	}
	if n.CustomFields != nil {
		t.Fatalf("expected empty customFields to be dropped")
	}
}

func TestParseColorKey(t *testing.T) {
	if got := ParseColorKey("Teal"); got != ColorTeal {
		t.Fatalf("expected teal, got %q", got)
	}
	if got := ParseColorKey(""); got != ColorPink {
		t.Fatalf("expected pink fallback, got %q", got)
	}
	if got := ParseColorKey("chartreuse"); got != ColorPink {
		t.Fatalf("expected pink fallback for unknown, got %q", got)
	}
}
