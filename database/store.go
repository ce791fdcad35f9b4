package database

import (
	"fmt"

	"owlistic-notes/notes/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Snapshot is the full durable entity set, each slice in insertion order.
type Snapshot struct {
	Categories []models.Category
	Notes      []models.Note
}

// ChangeSet is everything a single flush writes.
type ChangeSet struct {
	Categories        []models.Category
	Notes             []models.Note
	DeletedNotes      []uuid.UUID
	DeletedCategories []uuid.UUID
	Events            []*models.Event
}

func (cs ChangeSet) Empty() bool {
	return len(cs.Categories) == 0 && len(cs.Notes) == 0 &&
		len(cs.DeletedNotes) == 0 && len(cs.DeletedCategories) == 0
}

// Load reads every category and note.
func (d *Database) Load() (Snapshot, error) {
	if err := d.Ping(); err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	if err := d.DB.Order("seq").Find(&snap.Categories).Error; err != nil {
		return Snapshot{}, fmt.Errorf("failed to load categories: %w", err)
	}
	if err := d.DB.Order("seq").Find(&snap.Notes).Error; err != nil {
		return Snapshot{}, fmt.Errorf("failed to load notes: %w", err)
	}
	return snap, nil
}

// Commit writes cs in one transaction. Nothing is written if any step fails.
func (d *Database) Commit(cs ChangeSet) error {
	if err := d.Ping(); err != nil {
		return err
	}
	if cs.Empty() {
		return nil
	}

	tx := d.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if len(cs.Categories) > 0 {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&cs.Categories).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to write categories: %w", err)
		}
	}

	if len(cs.Notes) > 0 {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&cs.Notes).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to write notes: %w", err)
		}
	}

	if len(cs.DeletedNotes) > 0 {
		if err := tx.Where("id IN ?", cs.DeletedNotes).Delete(&models.Note{}).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to delete notes: %w", err)
		}
	}

	if len(cs.DeletedCategories) > 0 {
		// References are nullified in memory before the flush; this catches
		// any row the context never loaded.
		if err := tx.Model(&models.Note{}).Where("category_id IN ?", cs.DeletedCategories).
			Update("category_id", nil).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to clear category references: %w", err)
		}
		if err := tx.Where("id IN ?", cs.DeletedCategories).Delete(&models.Category{}).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to delete categories: %w", err)
		}
	}

	if len(cs.Events) > 0 {
		if err := tx.Create(cs.Events).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to write change journal: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return err
	}
	return nil
}

// RecentEvents returns up to limit journal rows, newest first.
func (d *Database) RecentEvents(limit int) ([]models.Event, error) {
	if err := d.Ping(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	var events []models.Event
	err := d.DB.Order("timestamp DESC").Order("rowid DESC").Limit(limit).Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// NoteCount is used by tests and the CLI to look at durable state directly.
func (d *Database) NoteCount() (int64, error) {
	return count(d.DB, &models.Note{})
}

func count(db *gorm.DB, model interface{}) (int64, error) {
	var n int64
	err := db.Model(model).Count(&n).Error
	return n, err
}
