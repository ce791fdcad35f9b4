package query

import (
	"errors"
	"fmt"
	"strings"

	"owlistic-notes/notes/models"
)

type SortKey string

const (
	ByUpdatedAt SortKey = "updated_at"
	ByCreatedAt SortKey = "created_at"
	ByTitle     SortKey = "title"
	ByName      SortKey = "name"
)

var ErrUnknownSortKey = errors.New("unknown sort key")

// Request describes a query: which entities to keep and how to order them.
// A zero SortKey selects the kind's default ordering.
type Request[T models.Entity] struct {
	Filter    Filter[T]
	SortKey   SortKey
	Ascending bool
}

// NotesByRecency is the list view's ordering: most recently updated first.
func NotesByRecency() Request[*models.Note] {
	return Request[*models.Note]{SortKey: ByUpdatedAt, Ascending: false}
}

// CategoriesByName orders categories by name, byte-wise and case-sensitive.
func CategoriesByName() Request[*models.Category] {
	return Request[*models.Category]{SortKey: ByName, Ascending: true}
}

// NoteOrder returns the ordering for notes. Equal keys fall back to
// insertion order whatever the direction.
func NoteOrder(key SortKey, ascending bool) (func(a, b *models.Note) bool, error) {
	var compare func(a, b *models.Note) int
	switch key {
	case ByUpdatedAt, "":
		compare = func(a, b *models.Note) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	case ByCreatedAt:
		compare = func(a, b *models.Note) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case ByTitle:
		compare = func(a, b *models.Note) int { return strings.Compare(a.Title, b.Title) }
	default:
		return nil, fmt.Errorf("%w %q for notes", ErrUnknownSortKey, key)
	}
	return ordered(compare, ascending), nil
}

// CategoryOrder returns the ordering for categories.
func CategoryOrder(key SortKey, ascending bool) (func(a, b *models.Category) bool, error) {
	switch key {
	case ByName, "":
		return ordered(func(a, b *models.Category) int { return strings.Compare(a.Name, b.Name) }, ascending), nil
	default:
		return nil, fmt.Errorf("%w %q for categories", ErrUnknownSortKey, key)
	}
}

func ordered[T models.Entity](compare func(a, b T) int, ascending bool) func(a, b T) bool {
	return func(a, b T) bool {
		c := compare(a, b)
		if !ascending {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return a.InsertSeq() < b.InsertSeq()
	}
}
