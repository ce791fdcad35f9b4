package query

import (
	"strings"

	"owlistic-notes/notes/models"

	"github.com/google/uuid"
)

// Filter keeps the entities for which it returns true. A nil Filter keeps
// everything.
type Filter[T models.Entity] func(T) bool

// InCategory keeps notes whose category has the given id.
func InCategory(id uuid.UUID) Filter[*models.Note] {
	return func(n *models.Note) bool {
		return n.CategoryID != nil && *n.CategoryID == id
	}
}

func Uncategorized() Filter[*models.Note] {
	return func(n *models.Note) bool {
		return n.CategoryID == nil
	}
}

// TitleContains matches case-insensitively.
func TitleContains(s string) Filter[*models.Note] {
	needle := strings.ToLower(s)
	return func(n *models.Note) bool {
		return strings.Contains(strings.ToLower(n.Title), needle)
	}
}

// IDs keeps entities whose id is in ids.
func IDs[T models.Entity](ids ...uuid.UUID) Filter[T] {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return func(e T) bool {
		return set[e.EntityID()]
	}
}

func And[T models.Entity](filters ...Filter[T]) Filter[T] {
	return func(e T) bool {
		for _, f := range filters {
			if f != nil && !f(e) {
				return false
			}
		}
		return true
	}
}
