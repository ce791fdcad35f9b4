package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCategoryToJSON(t *testing.T) {
	category := Category{
		ID:   uuid.New(),
		Name: "Work",
	}

	data, err := category.ToJSON()
	assert.NoError(t, err)

	var result Category
	err = json.Unmarshal(data, &result)
	assert.NoError(t, err)
	assert.Equal(t, category, result)
}

func TestCategoryEntity(t *testing.T) {
	category := &Category{ID: uuid.New(), Name: "Work", Seq: 7}

	var entity Entity = category
	assert.Equal(t, category.ID, entity.EntityID())
	assert.Equal(t, CategoryEntity, entity.EntityKind())
	assert.Equal(t, int64(7), entity.InsertSeq())
}
