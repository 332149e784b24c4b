package widget

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-board/internal/dialog"
	"persona-board/internal/model"
	"persona-board/internal/mutate"
	"persona-board/internal/state"
	"persona-board/internal/transfer"
)

type notes struct {
	mu   sync.Mutex
	msgs []string
	errs []bool
}

func (n *notes) Notify(msg string, isError bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
	n.errs = append(n.errs, isError)
}

func (n *notes) last() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.msgs) == 0 {
		return "", false
	}
	return n.msgs[len(n.msgs)-1], n.errs[len(n.errs)-1]
}

// answer is a frontend that replies with a fixed message.
func answer(m dialog.Message) dialog.Frontend {
	return dialog.FrontendFunc(func(ctx context.Context, s *dialog.Session) error {
		return s.Reply(m)
	})
}

func setup(t *testing.T, fe dialog.Frontend) (*Widget, *notes) {
	t.Helper()
	st := state.NewMemory(model.LanguageEN)
	n := &notes{}
	host := dialog.NewHost(fe, nil)
	w := New(st, host, Options{Notifier: n, Now: func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }})
	return w, n
}

func settle(t *testing.T, w *Widget) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return w.Settle(ctx)
}

func TestAddCategoryRoundTrip(t *testing.T) {
	w, n := setup(t, answer(dialog.Message{Type: dialog.TypeAddCategory, Name: "Buyers", Color: "teal"}))
	require.NoError(t, w.Invoke(context.Background(), CommandAddCategory))
	require.NoError(t, settle(t, w))

	cats := w.State().Categories.Get()
	require.Len(t, cats, 1)
	assert.Equal(t, model.ColorTeal, cats[0].ColorKey)
	assert.Nil(t, w.Host().Current())
	msg, _ := n.last()
	assert.Equal(t, `Category "Buyers" added`, msg)
	assert.Empty(t, w.State().Doc().Pending(), "changes must be flushed")
}

func TestDeleteCategoryConfirm(t *testing.T) {
	w, n := setup(t, nil)
	ctx := context.Background()
	c, err := mutate.AddCategory(w.State(), mutate.CategoryInput{Name: "A"})
	require.NoError(t, err)
	p := mutate.AddProfile(w.State(), c.ID)

	w.Host().SetFrontend(dialog.FrontendFunc(func(ctx context.Context, s *dialog.Session) error {
		assert.Equal(t, 1, s.Request.MemberCount)
		return s.Reply(dialog.Message{Type: dialog.TypeConfirmDelete, DeleteType: dialog.DeleteCategory, ID: s.Request.TargetID})
	}))
	_, err = w.OpenDeleteCategory(ctx, c.ID)
	require.NoError(t, err)
	require.NoError(t, settle(t, w))

	assert.Empty(t, w.State().Categories.Get())
	got, _ := w.State().Profiles.Get(p.ID)
	assert.Equal(t, "", got.CategoryID)
	msg, _ := n.last()
	assert.Equal(t, `Category "A" deleted. 1 profile moved.`, msg)
}

func TestCancelDeleteDoesNotMutate(t *testing.T) {
	w, _ := setup(t, answer(dialog.Message{Type: dialog.TypeCancelDelete}))
	p := mutate.AddProfile(w.State(), "")
	require.NoError(t, w.State().Flush(context.Background()))

	_, err := w.OpenDeleteProfile(context.Background(), p.ID)
	require.NoError(t, err)
	require.NoError(t, settle(t, w))
	_, ok := w.State().Profiles.Get(p.ID)
	assert.True(t, ok)
	assert.Empty(t, w.State().Doc().Pending())
}

func TestImportMalformedNotifiesAndCloses(t *testing.T) {
	w, n := setup(t, answer(dialog.Message{Type: dialog.TypeImportData, Data: "{nope"}))
	mutate.AddProfile(w.State(), "")
	require.NoError(t, w.State().Flush(context.Background()))
	before := w.State().Doc().Snapshot()

	require.NoError(t, w.Invoke(context.Background(), CommandImport))
	err := settle(t, w)
	require.ErrorIs(t, err, transfer.ErrMalformedImport)
	assert.Equal(t, before, w.State().Doc().Snapshot())
	assert.Nil(t, w.Host().Current())
	msg, isErr := n.last()
	assert.Equal(t, "Import failed: invalid JSON format", msg)
	assert.True(t, isErr)
}

func TestExportHandshake(t *testing.T) {
	var payload string
	fe := dialog.FrontendFunc(func(ctx context.Context, s *dialog.Session) error {
		if err := s.Reply(dialog.Message{Type: dialog.TypeUIReady}); err != nil {
			return err
		}
		select {
		case out := <-s.Outbound():
			payload = out.Data
		case <-s.Done():
			return errors.New("closed before payload")
		}
		return s.Reply(dialog.Message{Type: dialog.TypeExportComplete})
	})
	w, n := setup(t, fe)
	mutate.AddProfile(w.State(), "")

	require.NoError(t, w.Invoke(context.Background(), CommandExport))
	require.NoError(t, settle(t, w))

	var doc transfer.Document
	require.NoError(t, json.Unmarshal([]byte(payload), &doc))
	assert.Equal(t, "2.0.0", doc.Version)
	assert.Contains(t, doc.Profiles, "profile-1")
	assert.Equal(t, "2026-01-02T03:04:05Z", doc.ExportedAt)
	msg, _ := n.last()
	assert.Equal(t, "Data copied to clipboard", msg)
}

func TestStaleSessionIsIgnored(t *testing.T) {
	release := make(chan struct{})
	var first *dialog.Session
	var once sync.Once
	fe := dialog.FrontendFunc(func(ctx context.Context, s *dialog.Session) error {
		once.Do(func() { first = s; close(release) })
		return nil
	})
	w, _ := setup(t, fe)
	ctx := context.Background()

	w.OpenImport(ctx)
	<-release
	w.OpenSettings(ctx)

	err := first.Reply(dialog.Message{Type: dialog.TypeImportData, Data: `{"profiles":{}}`})
	assert.ErrorIs(t, err, dialog.ErrSessionClosed)

	// A message that raced past the replacement is dropped by the widget.
	stale := dialog.Inbound{SessionID: first.ID, Message: dialog.Message{Type: dialog.TypeImportData, Data: `{"widgetTitle":"X"}`}}
	require.NoError(t, w.HandleMessage(ctx, stale))
	assert.Equal(t, "User Profiles", w.State().Title.Get())
	assert.NotNil(t, w.Host().Current())
}

func TestSettingsWithLanguage(t *testing.T) {
	fe := dialog.FrontendFunc(func(ctx context.Context, s *dialog.Session) error {
		ws, _ := mutate.AddField(*s.Request.Settings, "Mood", time.UnixMilli(5))
		return s.Reply(dialog.Message{Type: dialog.TypeUpdateSettings, Settings: &ws, Language: model.LanguageNL})
	})
	w, n := setup(t, fe)
	require.NoError(t, w.Invoke(context.Background(), CommandOpenSettings))
	require.NoError(t, settle(t, w))

	assert.Equal(t, model.LanguageNL, w.State().Language.Get())
	assert.Len(t, w.State().Settings().Fields, 5)
	msg, _ := n.last()
	assert.Equal(t, "Instellingen opgeslagen", msg)
}

func TestSettingsAnswerKeepsBuiltIns(t *testing.T) {
	only := model.WidgetSettings{Fields: []model.FieldConfig{{ID: "custom-1", Label: "Mood", IsVisible: true, Order: 0}}}
	w, _ := setup(t, answer(dialog.Message{Type: dialog.TypeUpdateSettings, Settings: &only}))
	require.NoError(t, w.Invoke(context.Background(), CommandOpenSettings))
	require.NoError(t, settle(t, w))

	stored := w.State().StoredSettings.Get().Fields
	assert.Empty(t, state.MissingBuiltIns(stored))
	assert.Len(t, stored, 5)
	assert.Equal(t, "custom-1", stored[0].ID)
}

func TestPickerMovesProfile(t *testing.T) {
	w, _ := setup(t, nil)
	c, _ := mutate.AddCategory(w.State(), mutate.CategoryInput{Name: "A"})
	p := mutate.AddProfile(w.State(), "")
	w.Host().SetFrontend(answer(dialog.Message{Type: dialog.TypeUpdateProfileCategory, ProfileID: p.ID, CategoryID: c.ID}))

	_, err := w.OpenCategoryPicker(context.Background(), p.ID)
	require.NoError(t, err)
	require.NoError(t, settle(t, w))
	got, _ := w.State().Profiles.Get(p.ID)
	assert.Equal(t, c.ID, got.CategoryID)
}

func TestPickerAnswerForDeletedProfileIsIgnored(t *testing.T) {
	w, n := setup(t, nil)
	c, _ := mutate.AddCategory(w.State(), mutate.CategoryInput{Name: "A"})
	p := mutate.AddProfile(w.State(), "")
	keep := mutate.AddProfile(w.State(), "")

	presented := make(chan *dialog.Session, 1)
	w.Host().SetFrontend(dialog.FrontendFunc(func(ctx context.Context, s *dialog.Session) error {
		presented <- s
		return nil
	}))
	_, err := w.OpenCategoryPicker(context.Background(), p.ID)
	require.NoError(t, err)
	s := <-presented

	_, err = mutate.DeleteProfile(w.State(), p.ID)
	require.NoError(t, err)
	require.NoError(t, s.Reply(dialog.Message{Type: dialog.TypeUpdateProfileCategory, ProfileID: p.ID, CategoryID: c.ID}))
	require.NoError(t, settle(t, w))

	assert.True(t, s.Closed())
	_, ok := w.State().Profiles.Get(p.ID)
	assert.False(t, ok)
	got, _ := w.State().Profiles.Get(keep.ID)
	assert.Equal(t, "", got.CategoryID)
	msg, isErr := n.last()
	assert.False(t, isErr, "unexpected error notification %q", msg)
}

func TestAddProfileCommandExpands(t *testing.T) {
	w, _ := setup(t, nil)
	require.NoError(t, w.Invoke(context.Background(), CommandAddProfile))
	assert.Equal(t, "profile-1", w.State().ExpandedID.Get())
	assert.NotNil(t, w.Board().Detail)
	assert.Error(t, w.Invoke(context.Background(), Command("bogus")))
}

func TestEdit_FlushesOnlyOnSuccess(t *testing.T) {
	w, _ := setup(t, nil)
	ctx := context.Background()
	p, err := w.AddProfile(ctx, model.UncategorizedID)
	require.NoError(t, err)

	err = w.Edit(ctx, "addTask", func(st *state.State) error {
		_, err := mutate.AddTask(st, p.ID, "Interview")
		return err
	})
	require.NoError(t, err)
	assert.Empty(t, w.State().Doc().Pending())
	got, _ := w.State().Profiles.Get(p.ID)
	assert.Equal(t, []string{"Interview"}, got.Tasks)

	err = w.Edit(ctx, "addTask", func(st *state.State) error {
		_, err := mutate.AddTask(st, "profile-99", "x")
		return err
	})
	assert.True(t, mutate.IsNotFound(err))
}
