package transfer

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-board/internal/model"
	"persona-board/internal/state"
)

var fixedNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func seeded(t *testing.T) *state.State {
	t.Helper()
	st := state.NewMemory(model.LanguageEN)
	st.Title.Set("Buyers")
	st.Categories.Set([]model.Category{
		{ID: "cat-aaaaaaa", Name: "A", Icon: "👤", ColorKey: model.ColorTeal, Order: 0},
		{ID: "cat-bbbbbbb", Name: "B", Icon: "🎯", ColorKey: model.ColorSky, Order: 1},
	})
	ws := st.Settings()
	ws.Fields = append(ws.Fields, model.FieldConfig{ID: "custom-1", Label: "Mood", IsVisible: true, Order: 4})
	st.SaveSettings(ws)
	st.Profiles.Set("profile-1", model.Profile{ID: "profile-1", Name: "Ann", CategoryID: "cat-aaaaaaa", Tasks: []string{"call"}, CustomFields: map[string]string{"custom-1": "calm"}})
	st.Profiles.Set("profile-2", model.Profile{ID: "profile-2", Name: "Bob", Quote: "hey", Tasks: []string{}})
	return st
}

func TestExport_Shape(t *testing.T) {
	st := seeded(t)
	out, err := ExportJSON(st, fixedNow)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "{\n  \"version\": \"2.0.0\",\n  \"exportedAt\": \"2026-03-01T09:30:00Z\""), out)

	var generic map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &generic))
	profiles := generic["profiles"].(map[string]any)
	bob := profiles["profile-2"].(map[string]any)
	assert.Equal(t, []any{}, bob["tasks"])
	_, hasCustom := bob["customFields"]
	assert.False(t, hasCustom, "customFields only present when non-empty")
}

func TestRoundTrip_PreservesStateExceptLegacyAttributes(t *testing.T) {
	src := seeded(t)
	out, err := ExportJSON(src, fixedNow)
	require.NoError(t, err)

	// Inject legacy attributes the way an older export would carry them.
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	ann := doc["profiles"].(map[string]any)["profile-1"].(map[string]any)
	ann["level"] = "senior"
	ann["orgSize"] = "50+"
	legacy, err := json.Marshal(doc)
	require.NoError(t, err)

	dst := state.NewMemory(model.LanguageEN)
	dst.Profiles.Set("profile-9", model.Profile{ID: "profile-9"})
	res, err := Import(dst, legacy)
	require.NoError(t, err)
	assert.Equal(t, []string{"level", "orgSize"}, res.Dropped["profile-1"])
	assert.Equal(t, 1, res.Removed)

	assert.Equal(t, src.Title.Get(), dst.Title.Get())
	assert.Equal(t, src.Categories.Get(), dst.Categories.Get())
	assert.Equal(t, src.Settings(), dst.Settings())
	assert.Equal(t, src.Profiles.Entries(), dst.Profiles.Entries())

	again, err := ExportJSON(dst, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, out, again)
	assert.NotContains(t, again, "orgSize")
}

func TestImport_EmptyProfilesReplacesStore(t *testing.T) {
	st := seeded(t)
	res, err := Import(st, []byte(`{"profiles": {}}`))
	require.NoError(t, err)
	assert.True(t, res.ProfilesReplaced)
	assert.Equal(t, 0, st.Profiles.Size())
	assert.Equal(t, "Buyers", st.Title.Get(), "absent keys keep their values")
	assert.Len(t, st.Categories.Get(), 2)
}

func TestImport_AbsentProfilesKeepsStore(t *testing.T) {
	st := seeded(t)
	res, err := Import(st, []byte(`{"widgetTitle": "", "categories": [], "profiles": null}`))
	require.NoError(t, err)
	assert.False(t, res.TitleReplaced)
	assert.False(t, res.ProfilesReplaced)
	assert.True(t, res.CategoriesReplaced)
	assert.Equal(t, "Buyers", st.Title.Get())
	assert.Empty(t, st.Categories.Get())
	assert.Equal(t, 2, st.Profiles.Size())
}

func TestImport_MalformedLeavesStateUntouched(t *testing.T) {
	for name, input := range map[string]string{
		"syntax":     `{"profiles": {`,
		"not object": `[1,2]`,
		"bad cats":   `{"widgetTitle": "X", "categories": {"a": 1}}`,
		"bad prof":   `{"widgetTitle": "X", "profiles": {"p": 3}}`,
	} {
		t.Run(name, func(t *testing.T) {
			st := seeded(t)
			before := st.Doc().Snapshot()
			pendingBefore := len(st.Doc().Pending())
			_, err := Import(st, []byte(input))
			require.ErrorIs(t, err, ErrMalformedImport)
			assert.Equal(t, before, st.Doc().Snapshot())
			assert.Len(t, st.Doc().Pending(), pendingBefore)
		})
	}
}

func TestImport_FillsMissingIDFromKey(t *testing.T) {
	st := state.NewMemory(model.LanguageEN)
	_, err := Import(st, []byte(`{"profiles": {"profile-4": {"name": "Dee"}}}`))
	require.NoError(t, err)
	p, ok := st.Profiles.Get("profile-4")
	require.True(t, ok)
	assert.Equal(t, "profile-4", p.ID)
	assert.Equal(t, []string{}, p.Tasks)
}

func TestImport_SettingsWithoutBuiltInsAreRestored(t *testing.T) {
	st := state.NewMemory(model.LanguageEN)
	_, err := Import(st, []byte(`{"widgetSettings": {"fields": [{"id":"custom-1","label":"Mood","isVisible":true,"order":0}]}}`))
	require.NoError(t, err)

	fields := st.Settings().Fields
	assert.Empty(t, state.MissingBuiltIns(fields))
	assert.Equal(t, "custom-1", fields[0].ID)

	keys := map[model.BuiltInKey]bool{}
	for _, f := range Export(st, fixedNow).WidgetSettings.Fields {
		keys[f.BuiltInKey] = true
	}
	for _, k := range model.BuiltInKeys {
		assert.True(t, keys[k], "export lacks %s", k)
	}
}

func TestImport_LegacySettingsMigrateOnRead(t *testing.T) {
	st := state.NewMemory(model.LanguageEN)
	_, err := Import(st, []byte(`{"widgetSettings": {"fields": [{"id":"quote","label":"Quote","isBuiltIn":true,"builtInKey":"quote","isVisible":true,"order":0}], "tasksModule": {"label": "Todo", "isVisible": false}}}`))
	require.NoError(t, err)
	fields := st.Settings().Fields
	require.Len(t, fields, 4)
	assert.Empty(t, state.MissingBuiltIns(fields))
	assert.Equal(t, "Todo", fields[1].Label)
	assert.False(t, fields[1].IsVisible)
	assert.Equal(t, 1, fields[1].Order)
}
