package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Category groups notes. The notes in a category are never stored on the
// category itself; they are looked up by Note.CategoryID.
type Category struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"not null" json:"name"`
	Seq  int64     `gorm:"not null;default:0;index" json:"-"`
}

func (c *Category) EntityID() uuid.UUID    { return c.ID }
func (c *Category) EntityKind() EntityKind { return CategoryEntity }
func (c *Category) InsertSeq() int64       { return c.Seq }

func (c *Category) Record() Category {
	return *c
}

func (c *Category) FromJSON(data []byte) error {
	return json.Unmarshal(data, c)
}

func (c *Category) ToJSON() ([]byte, error) {
	return json.Marshal(c)
}
