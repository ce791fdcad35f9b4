package testutils

import (
	"database/sql"
	"path/filepath"
	"testing"

	"owlistic-notes/notes/database"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupMockDB sets up a mock database connection. The store is not
// migrated; set expectations for every statement the test triggers.
func SetupMockDB() (*database.Database, sqlmock.Sqlmock, func()) {
	var db *sql.DB
	var mock sqlmock.Sqlmock
	var err error

	db, mock, err = sqlmock.New()
	if err != nil {
		panic(err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		panic(err)
	}

	mockDB := &database.Database{
		DB: gormDB,
	}

	close := func() {
		db.Close()
	}

	return mockDB, mock, close
}

// TempStorePath returns a store location inside a per-test directory.
func TempStorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "Notes.sqlite")
}

// OpenTempStore opens a fresh SQLite store that is closed when the test ends.
func OpenTempStore(t *testing.T) *database.Database {
	t.Helper()
	return OpenStore(t, TempStorePath(t))
}

// OpenStore opens the store at path and closes it when the test ends.
func OpenStore(t *testing.T, path string) *database.Database {
	t.Helper()
	db, err := database.Open(path, database.Options{LogLevel: logger.Silent})
	if err != nil {
		t.Fatalf("failed to open store %s: %v", path, err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
