package sqlite

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewSqlite(path string) gorm.Dialector {
	db := sqlite.Open(path)
	return db
}

// InMemoryPath names a shared-cache in-memory database so every pooled connection sees the same tables.
func InMemoryPath(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}

func NewGormSqliteFromSqlite(sqlite gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// a single connection keeps the per-connection pragmas in effect and serializes writers, which
	// shared-cache databases otherwise fail with "table is locked" instead of waiting
	sqlDb, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDb.SetMaxOpenConns(1)

	pragmas := []string{
		`PRAGMA foreign_keys = ON;`,
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA busy_timeout = 5000;`,
	}

	for _, pragma := range pragmas {
		res := db.Exec(pragma)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to apply '%s': %w", pragma, res.Error)
		}
	}
	return db, nil
}
