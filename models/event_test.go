package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewEvent(t *testing.T) {
	testCases := []struct {
		name    string
		event   string
		entity  EntityKind
		data    interface{}
		wantErr bool
	}{
		{
			name:    "Valid event",
			event:   "note.created",
			entity:  NoteEntity,
			data:    map[string]interface{}{"title": "Plan"},
			wantErr: false,
		},
		{
			name:    "Invalid JSON data",
			event:   "note.created",
			entity:  NoteEntity,
			data:    make(chan int), // Unmarshalable type
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id := uuid.New()
			event, err := NewEvent(tc.event, tc.entity, id, tc.data)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.NotNil(t, event)
			assert.Equal(t, tc.event, event.Event)
			assert.Equal(t, tc.entity, event.Entity)
			assert.Equal(t, id, event.EntityID)
			assert.Equal(t, 1, event.Version)
			assert.JSONEq(t, `{"title":"Plan"}`, string(event.Data))
		})
	}
}
