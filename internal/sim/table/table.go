// Package table implements the keyed record tables the store is built from.
//
// Records keep insertion order in a slice; lookups go through a hash index so
// that no search depends on the slice being sorted.
package table

// Record is anything carrying its own unique key.
type Record[K ~uint32] interface {
	Key() K
}

type Table[K ~uint32, T Record[K]] struct {
	ids   IDSource
	rows  []T
	index map[K]int
}

func New[K ~uint32, T Record[K]](ids IDSource) *Table[K, T] {
	if ids == nil {
		ids = RandomIDs(1)
	}
	return &Table[K, T]{
		ids:   ids,
		index: map[K]int{},
	}
}

// Create draws ids until one is free and non-zero, then appends the record
// produced by build. build must return a record keyed by the id it is given.
func (t *Table[K, T]) Create(build func(id K) T) T {
	for {
		id := K(t.ids())
		if id == 0 {
			continue
		}
		if _, taken := t.index[id]; taken {
			continue
		}
		rec := build(id)
		t.index[id] = len(t.rows)
		t.rows = append(t.rows, rec)
		return rec
	}
}

func (t *Table[K, T]) FindByID(id K) (T, bool) {
	i, ok := t.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return t.rows[i], true
}

// UpdateByID replaces the record stored under id. A miss, or a value keyed
// differently from id, leaves the table untouched.
func (t *Table[K, T]) UpdateByID(id K, v T) (T, bool) {
	i, ok := t.index[id]
	if !ok || v.Key() != id {
		var zero T
		return zero, false
	}
	t.rows[i] = v
	return v, true
}

func (t *Table[K, T]) Len() int { return len(t.rows) }

// All returns the records in insertion order.
func (t *Table[K, T]) All() []T {
	out := make([]T, len(t.rows))
	copy(out, t.rows)
	return out
}
