package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNoteToJSON(t *testing.T) {
	categoryID := uuid.New()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	note := Note{
		ID:         uuid.New(),
		Title:      "Test Title",
		Contents:   "Test Content",
		CategoryID: &categoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	data, err := note.ToJSON()
	assert.NoError(t, err)

	var result Note
	err = json.Unmarshal(data, &result)
	assert.NoError(t, err)
	assert.Equal(t, note, result)
}

func TestNoteFromJSON(t *testing.T) {
	data := `{
		"id": "550e8400-e29b-41d4-a716-446655440000",
		"title": "Test Title",
		"contents": "Test Content",
		"category_id": "550e8400-e29b-41d4-a716-446655440001"
	}`

	var note Note
	err := note.FromJSON([]byte(data))
	assert.NoError(t, err)
	assert.Equal(t, "Test Title", note.Title)
	assert.Equal(t, "Test Content", note.Contents)
	if assert.NotNil(t, note.CategoryID) {
		assert.Equal(t, "550e8400-e29b-41d4-a716-446655440001", note.CategoryID.String())
	}
}

func TestNoteCategoryName(t *testing.T) {
	note := Note{Title: "Plan"}
	assert.Equal(t, "", note.CategoryName())

	note.Category = &Category{ID: uuid.New(), Name: "Work"}
	assert.Equal(t, "Work", note.CategoryName())
}

func TestNoteRecordDetachesCategory(t *testing.T) {
	category := &Category{ID: uuid.New(), Name: "Work"}
	note := &Note{ID: uuid.New(), Title: "Plan", CategoryID: &category.ID, Category: category}

	rec := note.Record()
	assert.Nil(t, rec.Category)
	assert.Equal(t, category.ID, *rec.CategoryID)

	// The copy must not alias the live reference.
	assert.NotSame(t, note.CategoryID, rec.CategoryID)
}
