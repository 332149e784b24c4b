package syncstore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

type fakeBackend struct {
	snap     Snapshot
	applied  [][]Change
	failNext bool
}

func (b *fakeBackend) Load(ctx context.Context) (Snapshot, error) { return b.snap, nil }

func (b *fakeBackend) Apply(ctx context.Context, changes []Change) error {
	if b.failNext {
		b.failNext = false
		return errors.New("boom")
	}
	b.applied = append(b.applied, append([]Change{}, changes...))
	return nil
}

func TestDocMap_ReadYourWrites(t *testing.T) {
	d := NewDoc()
	m := MapOf[record](d, "records")

	m.Set("b", record{Name: "B"})
	m.Set("a", record{Name: "A"})

	got, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, "A", got.Name)
	assert.Equal(t, []string{"a", "b"}, m.Keys())
	assert.Equal(t, 2, m.Size())

	m.Delete("a")
	_, ok = m.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, m.Size())
}

func TestDocMap_ReadsAreCopies(t *testing.T) {
	d := NewDoc()
	m := MapOf[record](d, "records")
	m.Set("a", record{Name: "A", Tags: []string{"x"}})

	got, _ := m.Get("a")
	got.Tags[0] = "mutated"
	got.Name = "mutated"

	again, _ := m.Get("a")
	assert.Equal(t, "A", again.Name)
	assert.Equal(t, []string{"x"}, again.Tags)
}

func TestDocMap_LastFullWriteWins(t *testing.T) {
	d := NewDoc()
	m := MapOf[record](d, "records")
	m.Set("a", record{Name: "W1", Tags: []string{"only-in-w1"}})
	m.Set("a", record{Name: "W2"})

	got, _ := m.Get("a")
	assert.Equal(t, record{Name: "W2"}, got)
}

func TestDocValue_DefaultAndSet(t *testing.T) {
	d := NewDoc()
	v := ValueOf(d, "title", func() string { return "default" })
	assert.Equal(t, "default", v.Get())
	v.Set("custom")
	assert.Equal(t, "custom", v.Get())
}

func TestDoc_FlushJournalsInOrder(t *testing.T) {
	b := &fakeBackend{}
	d, err := Open(context.Background(), b)
	require.NoError(t, err)

	m := MapOf[record](d, "records")
	m.Set("a", record{Name: "A"})
	m.Delete("a")
	m.Delete("missing")
	ValueOf(d, "flag", func() bool { return false }).Set(true)

	pending := d.Pending()
	require.Len(t, pending, 3)
	assert.Equal(t, OpMapSet, pending[0].Op)
	assert.Equal(t, OpMapDelete, pending[1].Op)
	assert.Equal(t, OpValueSet, pending[2].Op)
	assert.JSONEq(t, `true`, string(pending[2].Value))

	require.NoError(t, d.Flush(context.Background()))
	require.Len(t, b.applied, 1)
	assert.Len(t, b.applied[0], 3)
	assert.Empty(t, d.Pending())
}

func TestDoc_FlushFailureKeepsJournal(t *testing.T) {
	b := &fakeBackend{failNext: true}
	d, err := Open(context.Background(), b)
	require.NoError(t, err)

	MapOf[record](d, "records").Set("a", record{Name: "A"})
	require.Error(t, d.Flush(context.Background()))
	assert.Len(t, d.Pending(), 1)

	require.NoError(t, d.Flush(context.Background()))
	assert.Empty(t, d.Pending())
	require.Len(t, b.applied, 1)
}

func TestDoc_OpenLoadsSnapshotAndReloadRefusesDirtyState(t *testing.T) {
	b := &fakeBackend{snap: Snapshot{
		Maps:   map[string]map[string]json.RawMessage{"records": {"a": json.RawMessage(`{"name":"A"}`)}},
		Values: map[string]json.RawMessage{"title": json.RawMessage(`"T"`)},
	}}
	d, err := Open(context.Background(), b)
	require.NoError(t, err)

	got, ok := MapOf[record](d, "records").Get("a")
	require.True(t, ok)
	assert.Equal(t, "A", got.Name)
	assert.Equal(t, "T", ValueOf(d, "title", func() string { return "" }).Get())

	ValueOf(d, "title", func() string { return "" }).Set("changed")
	assert.ErrorIs(t, d.Reload(context.Background()), ErrPendingChanges)
}

func TestDoc_ApplyRemoteIsNotJournaled(t *testing.T) {
	d := NewDoc()
	d.ApplyRemote([]Change{
		{Op: OpMapSet, Scope: "records", Key: "a", Value: json.RawMessage(`{"name":"remote"}`)},
		{Op: OpValueSet, Key: "title", Value: json.RawMessage(`"remote title"`)},
	})
	got, ok := MapOf[record](d, "records").Get("a")
	require.True(t, ok)
	assert.Equal(t, "remote", got.Name)
	assert.Empty(t, d.Pending())
}

func TestMemoryMap(t *testing.T) {
	m := NewMemoryMap[int]()
	m.Set("b", 2)
	m.Set("a", 1)
	assert.Equal(t, []int{1, 2}, m.Values())
	assert.Equal(t, []Entry[int]{{Key: "a", Value: 1}, {Key: "b", Value: 2}}, m.Entries())
	m.Delete("a")
	assert.Equal(t, 1, m.Size())

	var _ Map[int] = m
	var _ Value[int] = NewMemoryValue(0)
}
