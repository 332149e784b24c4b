// Package syncstore defines the synchronized key-value primitives the widget
// state is built on: a per-key map and whole-value scalars.
//
// Writes are visible to later reads immediately (read-your-writes). Replication
// to other editors happens when a Doc is flushed to its Backend. The store never
// merges fields: every Set replaces the full value at its key.
package syncstore

import "sort"

type Entry[V any] struct {
	Key   string
	Value V
}

// Map is a per-key synchronized map. Concurrent writers to different keys never
// conflict; writers to the same key race and the last full write wins.
type Map[V any] interface {
	Get(key string) (V, bool)
	Set(key string, v V)
	Delete(key string)
	Keys() []string
	Values() []V
	Entries() []Entry[V]
	Size() int
}

// Value is a whole-value synchronized scalar (last writer wins).
type Value[T any] interface {
	Get() T
	Set(v T)
}

// MemoryMap is a plain in-memory Map. Keys are returned in sorted order.
type MemoryMap[V any] struct {
	m map[string]V
}

func NewMemoryMap[V any]() *MemoryMap[V] {
	return &MemoryMap[V]{m: map[string]V{}}
}

func (m *MemoryMap[V]) Get(key string) (V, bool) {
	v, ok := m.m[key]
	return v, ok
}

func (m *MemoryMap[V]) Set(key string, v V) { m.m[key] = v }

func (m *MemoryMap[V]) Delete(key string) { delete(m.m, key) }

func (m *MemoryMap[V]) Keys() []string {
	out := make([]string, 0, len(m.m))
	for k := range m.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (m *MemoryMap[V]) Values() []V {
	keys := m.Keys()
	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, m.m[k])
	}
	return out
}

func (m *MemoryMap[V]) Entries() []Entry[V] {
	keys := m.Keys()
	out := make([]Entry[V], 0, len(keys))
	for _, k := range keys {
		out = append(out, Entry[V]{Key: k, Value: m.m[k]})
	}
	return out
}

func (m *MemoryMap[V]) Size() int { return len(m.m) }

type MemoryValue[T any] struct {
	v T
}

func NewMemoryValue[T any](v T) *MemoryValue[T] { return &MemoryValue[T]{v: v} }

func (v *MemoryValue[T]) Get() T  { return v.v }
func (v *MemoryValue[T]) Set(x T) { v.v = x }
