package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is a row of the change journal written alongside every flush.
type Event struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Event     string          `gorm:"not null" json:"event"`
	Version   int             `gorm:"not null" json:"version"`
	Entity    EntityKind      `gorm:"not null" json:"entity"`
	EntityID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"entity_id"`
	Timestamp time.Time       `gorm:"not null;index" json:"timestamp"`
	Data      json.RawMessage `gorm:"not null" json:"data"`
}

func NewEvent(event string, entity EntityKind, entityID uuid.UUID, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Event:     event,
		Version:   1,
		Entity:    entity,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
		Data:      dataBytes,
	}, nil
}
