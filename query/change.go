package query

import (
	"fmt"

	"owlistic-notes/notes/models"
)

type ChangeType int

const (
	Inserted ChangeType = iota + 1
	Updated
	Deleted
	Moved
)

func (t ChangeType) String() string {
	switch t {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	case Deleted:
		return "deleted"
	case Moved:
		return "moved"
	default:
		return fmt.Sprintf("ChangeType(%d)", int(t))
	}
}

// Change is one delta against a result set. Index is the entity's position
// when the change is applied in order to the list as it stands after all
// previous changes of the same batch. For Moved, Index is the source and
// NewIndex the destination (the entity is removed first, then inserted).
//
// A Moved entity may also have changed; consumers re-render moved rows.
type Change[T models.Entity] struct {
	Type     ChangeType
	Entity   T
	Index    int
	NewIndex int
}

func (c Change[T]) String() string {
	if c.Type == Moved {
		return fmt.Sprintf("%s %s %d->%d", c.Type, c.Entity.EntityID(), c.Index, c.NewIndex)
	}
	return fmt.Sprintf("%s %s @%d", c.Type, c.Entity.EntityID(), c.Index)
}

// Apply replays changes onto list, returning the updated list. It is the
// reference consumer for the sequential positions described on Change.
func Apply[T models.Entity](list []T, changes []Change[T]) []T {
	out := append([]T(nil), list...)
	for _, c := range changes {
		switch c.Type {
		case Inserted:
			out = insertAt(out, c.Index, c.Entity)
		case Deleted:
			out = append(out[:c.Index], out[c.Index+1:]...)
		case Moved:
			e := out[c.Index]
			out = append(out[:c.Index], out[c.Index+1:]...)
			out = insertAt(out, c.NewIndex, e)
		case Updated:
			out[c.Index] = c.Entity
		}
	}
	return out
}

func insertAt[E any](list []E, i int, e E) []E {
	var zero E
	list = append(list, zero)
	copy(list[i+1:], list[i:])
	list[i] = e
	return list
}
