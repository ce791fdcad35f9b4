package broker

import "owlistic-notes/notes/models"

type EventType string

const (
	// Standardized event types in format: <resource>.<action>
	NoteCreated EventType = "note.created"
	NoteUpdated EventType = "note.updated"
	NoteDeleted EventType = "note.deleted"

	CategoryCreated EventType = "category.created"
	CategoryUpdated EventType = "category.updated"
	CategoryDeleted EventType = "category.deleted"
)

type Action string

const (
	Created Action = "created"
	Updated Action = "updated"
	Deleted Action = "deleted"
)

// EventTypeFor builds the event type for an action on an entity kind.
func EventTypeFor(kind models.EntityKind, action Action) EventType {
	return EventType(string(kind) + "." + string(action))
}
