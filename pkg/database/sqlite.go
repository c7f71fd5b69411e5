package database

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB opens (and creates if needed) a sqlite database at path in
// WAL mode with a busy timeout, so concurrent appends wait instead of
// failing with "database is locked".
func NewSQLiteDB(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating sqlite dir: %w", err)
		}
	}

	dsn := "file:" + path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	return db, nil
}
