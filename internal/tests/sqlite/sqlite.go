package sqlite

import (
	sqlite2 "github.com/Layr-Labs/txguard/internal/sqlite"
	"github.com/Layr-Labs/txguard/pkg/postgres/migrations"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GetInMemorySqliteDatabaseConnection returns a fresh, fully migrated database private to the caller.
func GetInMemorySqliteDatabaseConnection(l *zap.Logger) (*gorm.DB, error) {
	grm, err := sqlite2.NewGormSqliteFromSqlite(sqlite2.NewSqlite(sqlite2.InMemoryPath(uuid.NewString())))
	if err != nil {
		return nil, err
	}

	migrator, err := migrations.NewMigrator(nil, grm, l)
	if err != nil {
		return nil, err
	}
	if err := migrator.MigrateAll(); err != nil {
		return nil, err
	}
	return grm, nil
}
