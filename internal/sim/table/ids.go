package table

import "math/rand"

// IDSource yields candidate ids. Collisions and zero are retried by the table,
// so a source only needs to cover the id space, not avoid repeats.
type IDSource func() uint32

// RandomIDs samples uniformly over uint32. Not safe for concurrent use; the
// store calls it under its lock.
func RandomIDs(seed int64) IDSource {
	r := rand.New(rand.NewSource(seed))
	return r.Uint32
}

// SequenceIDs replays ids in order and then falls back to a counter past the
// largest id seen. Tests use it to force collisions.
func SequenceIDs(ids ...uint32) IDSource {
	var (
		i    int
		next uint32
	)
	for _, id := range ids {
		if id >= next {
			next = id + 1
		}
	}
	return func() uint32 {
		if i < len(ids) {
			id := ids[i]
			i++
			return id
		}
		id := next
		next++
		return id
	}
}
