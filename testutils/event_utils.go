package testutils

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"owlistic-notes/notes/models"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

// MockEventRows creates mock SQL rows for journal queries
func MockEventRows(events []models.Event) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "event", "version", "entity", "entity_id", "timestamp", "data",
	})

	for _, event := range events {
		if event.ID == uuid.Nil {
			event.ID = uuid.New()
		}
		if event.EntityID == uuid.Nil {
			event.EntityID = uuid.New()
		}
		if event.Version == 0 {
			event.Version = 1
		}
		if event.Timestamp.IsZero() {
			event.Timestamp = time.Now()
		}
		if event.Data == nil {
			event.Data = json.RawMessage(`{}`)
		}

		rows.AddRow(
			event.ID,
			event.Event,
			event.Version,
			string(event.Entity),
			event.EntityID,
			event.Timestamp,
			[]byte(event.Data),
		)
	}

	return rows
}

// MockNoteRows creates mock SQL rows for the notes table
func MockNoteRows(notes []models.Note) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "title", "contents", "category_id", "seq", "created_at", "updated_at",
	})
	for _, note := range notes {
		var categoryID interface{}
		if note.CategoryID != nil {
			categoryID = note.CategoryID.String()
		}
		rows.AddRow(note.ID.String(), note.Title, note.Contents, categoryID, note.Seq, note.CreatedAt, note.UpdatedAt)
	}
	return rows
}

// MockCategoryRows creates mock SQL rows for the categories table
func MockCategoryRows(categories []models.Category) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "name", "seq"})
	for _, category := range categories {
		rows.AddRow(category.ID.String(), category.Name, category.Seq)
	}
	return rows
}

func NewResult(lastInsertID, rowsAffected int64) driver.Result {
	return sqlmock.NewResult(lastInsertID, rowsAffected)
}
