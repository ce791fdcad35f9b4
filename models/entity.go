package models

import "github.com/google/uuid"

type EntityKind string

const (
	NoteEntity     EntityKind = "note"
	CategoryEntity EntityKind = "category"
)

// Entity is a persisted record with a stable identity.
type Entity interface {
	EntityID() uuid.UUID
	EntityKind() EntityKind
	// InsertSeq is the insertion counter used to keep orderings stable.
	InsertSeq() int64
}
