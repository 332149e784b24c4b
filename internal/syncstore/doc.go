package syncstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

type Op string

const (
	OpMapSet    Op = "map.set"
	OpMapDelete Op = "map.delete"
	OpValueSet  Op = "value.set"
)

// Change is one replicated write. Map operations carry the map name in Scope.
type Change struct {
	Op    Op              `json:"op"`
	Scope string          `json:"scope,omitempty"`
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value,omitempty"`
}

// Snapshot is the full persisted content of a document.
type Snapshot struct {
	Maps   map[string]map[string]json.RawMessage
	Values map[string]json.RawMessage
}

// Backend persists and replicates a document.
type Backend interface {
	Load(ctx context.Context) (Snapshot, error)
	Apply(ctx context.Context, changes []Change) error
}

var ErrPendingChanges = errors.New("document has unflushed changes")

// Doc is a journaling document: reads and writes operate on local state, and
// every write is recorded as a Change until Flush hands it to the backend.
type Doc struct {
	mu      sync.Mutex
	maps    map[string]map[string]json.RawMessage
	values  map[string]json.RawMessage
	pending []Change
	backend Backend
}

// NewDoc returns an empty document without a backend (flushes only clear the journal).
func NewDoc() *Doc {
	return &Doc{
		maps:   map[string]map[string]json.RawMessage{},
		values: map[string]json.RawMessage{},
	}
}

// Open loads a document from b.
func Open(ctx context.Context, b Backend) (*Doc, error) {
	d := NewDoc()
	d.backend = b
	if b == nil {
		return d, nil
	}
	snap, err := b.Load(ctx)
	if err != nil {
		return nil, err
	}
	d.load(snap)
	return d, nil
}

func (d *Doc) load(snap Snapshot) {
	d.maps = map[string]map[string]json.RawMessage{}
	for scope, m := range snap.Maps {
		cp := make(map[string]json.RawMessage, len(m))
		for k, v := range m {
			cp[k] = v
		}
		d.maps[scope] = cp
	}
	d.values = map[string]json.RawMessage{}
	for k, v := range snap.Values {
		d.values[k] = v
	}
}

// Flush hands the journaled changes to the backend. On failure the journal is
// kept so a later Flush retries the same changes.
func (d *Doc) Flush(ctx context.Context) error {
	d.mu.Lock()
	pending := d.pending
	d.mu.Unlock()
	if len(pending) == 0 {
		return nil
	}
	if d.backend != nil {
		if err := d.backend.Apply(ctx, pending); err != nil {
			return fmt.Errorf("flush %d changes: %w", len(pending), err)
		}
	}
	d.mu.Lock()
	d.pending = d.pending[len(pending):]
	d.mu.Unlock()
	return nil
}

// Pending returns a copy of the unflushed journal.
func (d *Doc) Pending() []Change {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Change{}, d.pending...)
}

// Reload replaces local state with the backend's current snapshot.
func (d *Doc) Reload(ctx context.Context) error {
	d.mu.Lock()
	dirty := len(d.pending) > 0
	d.mu.Unlock()
	if dirty {
		return ErrPendingChanges
	}
	if d.backend == nil {
		return nil
	}
	snap, err := d.backend.Load(ctx)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.load(snap)
	d.mu.Unlock()
	return nil
}

// ApplyRemote applies changes made by another editor. They are not journaled.
func (d *Doc) ApplyRemote(changes []Change) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range changes {
		switch c.Op {
		case OpMapSet:
			d.mapFor(c.Scope)[c.Key] = c.Value
		case OpMapDelete:
			delete(d.mapFor(c.Scope), c.Key)
		case OpValueSet:
			d.values[c.Key] = c.Value
		}
	}
}

// Snapshot returns a copy of the local state.
func (d *Doc) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := Snapshot{
		Maps:   map[string]map[string]json.RawMessage{},
		Values: map[string]json.RawMessage{},
	}
	for scope, m := range d.maps {
		cp := make(map[string]json.RawMessage, len(m))
		for k, v := range m {
			cp[k] = v
		}
		out.Maps[scope] = cp
	}
	for k, v := range d.values {
		out.Values[k] = v
	}
	return out
}

func (d *Doc) mapFor(scope string) map[string]json.RawMessage {
	m := d.maps[scope]
	if m == nil {
		m = map[string]json.RawMessage{}
		d.maps[scope] = m
	}
	return m
}

func (d *Doc) getEntry(scope, key string) (json.RawMessage, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	raw, ok := d.maps[scope][key]
	return raw, ok
}

func (d *Doc) setEntry(scope, key string, raw json.RawMessage) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mapFor(scope)[key] = raw
	d.pending = append(d.pending, Change{Op: OpMapSet, Scope: scope, Key: key, Value: raw})
}

func (d *Doc) deleteEntry(scope, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.maps[scope][key]; !ok {
		return
	}
	delete(d.maps[scope], key)
	d.pending = append(d.pending, Change{Op: OpMapDelete, Scope: scope, Key: key})
}

func (d *Doc) entries(scope string) []Entry[json.RawMessage] {
	d.mu.Lock()
	defer d.mu.Unlock()
	m := d.maps[scope]
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Entry[json.RawMessage], 0, len(keys))
	for _, k := range keys {
		out = append(out, Entry[json.RawMessage]{Key: k, Value: m[k]})
	}
	return out
}

func (d *Doc) size(scope string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.maps[scope])
}

func (d *Doc) getValue(key string) (json.RawMessage, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	raw, ok := d.values[key]
	return raw, ok
}

func (d *Doc) setValue(key string, raw json.RawMessage) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.values[key] = raw
	d.pending = append(d.pending, Change{Op: OpValueSet, Key: key, Value: raw})
}

func mustEncode(where string, v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("syncstore: encode %s: %v", where, err))
	}
	return raw
}

type docMap[V any] struct {
	d     *Doc
	scope string
}

// MapOf returns a typed Map view over the named map of d. Every read decodes a
// fresh copy, so callers can only change stored data through Set.
func MapOf[V any](d *Doc, scope string) Map[V] {
	return docMap[V]{d: d, scope: scope}
}

func (m docMap[V]) Get(key string) (V, bool) {
	var v V
	raw, ok := m.d.getEntry(m.scope, key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		var zero V
		return zero, false
	}
	return v, true
}

func (m docMap[V]) Set(key string, v V) {
	m.d.setEntry(m.scope, key, mustEncode(m.scope+"/"+key, v))
}

func (m docMap[V]) Delete(key string) { m.d.deleteEntry(m.scope, key) }

func (m docMap[V]) Keys() []string {
	es := m.d.entries(m.scope)
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.Key)
	}
	return out
}

// Values skips entries that no longer decode into V.
func (m docMap[V]) Values() []V {
	es := m.Entries()
	out := make([]V, 0, len(es))
	for _, e := range es {
		out = append(out, e.Value)
	}
	return out
}

func (m docMap[V]) Entries() []Entry[V] {
	raw := m.d.entries(m.scope)
	out := make([]Entry[V], 0, len(raw))
	for _, e := range raw {
		var v V
		if err := json.Unmarshal(e.Value, &v); err != nil {
			continue
		}
		out = append(out, Entry[V]{Key: e.Key, Value: v})
	}
	return out
}

func (m docMap[V]) Size() int { return m.d.size(m.scope) }

type docValue[T any] struct {
	d   *Doc
	key string
	def func() T
}

// ValueOf returns a typed whole-value view over key. def produces the value
// read while the key has never been written (or no longer decodes).
func ValueOf[T any](d *Doc, key string, def func() T) Value[T] {
	return docValue[T]{d: d, key: key, def: def}
}

func (v docValue[T]) Get() T {
	raw, ok := v.d.getValue(v.key)
	if !ok {
		return v.def()
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return v.def()
	}
	return out
}

func (v docValue[T]) Set(x T) {
	v.d.setValue(v.key, mustEncode(v.key, x))
}
