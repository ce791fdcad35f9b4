package database

import (
	"fmt"
	"log/slog"
	"os"

	"owlistic-notes/notes/models"

	"github.com/natefinch/atomic"
	"gorm.io/gorm"
)

// CurrentSchemaVersion is the schema this build reads and writes.
//
//	1: notes and categories without insertion order or journal
//	2: adds seq columns, schema_meta and the events journal
const CurrentSchemaVersion = 2

// RunMigrations brings the store at path up to CurrentSchemaVersion.
func RunMigrations(db *gorm.DB, path string, log *slog.Logger) error {
	version, err := SchemaVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if version == CurrentSchemaVersion {
		return nil
	}
	if version > CurrentSchemaVersion {
		return fmt.Errorf("schema version %d is newer than supported version %d", version, CurrentSchemaVersion)
	}

	if version > 0 {
		if err := backupStore(db, path); err != nil {
			return fmt.Errorf("failed to back up store before migration: %w", err)
		}
		log.Info("migrating store", "path", path, "from", version, "to", CurrentSchemaVersion)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(
			&models.Category{},
			&models.Note{},
			&models.Event{},
			&models.SchemaMeta{},
		); err != nil {
			return err
		}

		if version == 1 {
			if err := backfillSeq(tx); err != nil {
				return err
			}
		}

		return tx.Save(&models.SchemaMeta{ID: 1, Version: CurrentSchemaVersion}).Error
	})
}

// SchemaVersion returns the on-disk schema version, 0 for an empty store.
// A store that has notes but no schema_meta table predates versioning.
func SchemaVersion(db *gorm.DB) (int, error) {
	hasMeta, err := hasTable(db, "schema_meta")
	if err != nil {
		return 0, err
	}
	if !hasMeta {
		hasNotes, err := hasTable(db, "notes")
		if err != nil {
			return 0, err
		}
		if hasNotes {
			return 1, nil
		}
		return 0, nil
	}

	var meta models.SchemaMeta
	if err := db.Limit(1).Find(&meta).Error; err != nil {
		return 0, err
	}
	return meta.Version, nil
}

func hasTable(db *gorm.DB, name string) (bool, error) {
	var count int64
	err := db.Raw("SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count).Error
	return count > 0, err
}

// backfillSeq assigns insertion order to legacy rows. Categories have no
// timestamp, so their existing row order is kept; notes follow created_at.
func backfillSeq(tx *gorm.DB) error {
	var seq int64

	var categoryIDs []string
	if err := tx.Model(&models.Category{}).Order("rowid").Pluck("id", &categoryIDs).Error; err != nil {
		return err
	}
	for _, id := range categoryIDs {
		seq++
		if err := tx.Model(&models.Category{}).Where("id = ?", id).Update("seq", seq).Error; err != nil {
			return err
		}
	}

	var noteIDs []string
	if err := tx.Model(&models.Note{}).Order("created_at").Order("rowid").Pluck("id", &noteIDs).Error; err != nil {
		return err
	}
	for _, id := range noteIDs {
		seq++
		if err := tx.Model(&models.Note{}).Where("id = ?", id).Update("seq", seq).Error; err != nil {
			return err
		}
	}
	return nil
}

func backupStore(db *gorm.DB, path string) error {
	if err := db.Exec("PRAGMA wal_checkpoint(TRUNCATE)").Error; err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return atomic.WriteFile(path+".bak", f)
}
