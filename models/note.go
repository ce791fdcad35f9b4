package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Note struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title      string     `gorm:"not null" json:"title"`
	Contents   string     `gorm:"not null" json:"contents"`
	CategoryID *uuid.UUID `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Category   *Category  `gorm:"-" json:"-"`
	Seq        int64      `gorm:"not null;default:0;index" json:"-"`
	CreatedAt  time.Time  `gorm:"not null;autoCreateTime:false" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null;autoUpdateTime:false;index" json:"updated_at"`
}

func (n *Note) EntityID() uuid.UUID    { return n.ID }
func (n *Note) EntityKind() EntityKind { return NoteEntity }
func (n *Note) InsertSeq() int64       { return n.Seq }

// CategoryName returns the name of the referenced category, or "" when the
// note is uncategorized.
func (n *Note) CategoryName() string {
	if n.Category == nil {
		return ""
	}
	return n.Category.Name
}

// Record returns a detached copy suitable for handing to the store.
func (n *Note) Record() Note {
	rec := *n
	rec.Category = nil
	if n.CategoryID != nil {
		id := *n.CategoryID
		rec.CategoryID = &id
	}
	return rec
}

func (n *Note) FromJSON(data []byte) error {
	return json.Unmarshal(data, n)
}

func (n *Note) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}
