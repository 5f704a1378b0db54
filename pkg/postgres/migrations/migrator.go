package migrations

import (
	"database/sql"
	"fmt"
	"time"

	_202610170900_verdicts "github.com/Layr-Labs/txguard/pkg/postgres/migrations/202610170900_verdicts"
	_202610171100_verdictSenderIndex "github.com/Layr-Labs/txguard/pkg/postgres/migrations/202610171100_verdictSenderIndex"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Migration interface {
	Up(db *sql.DB, grm *gorm.DB) error
	GetName() string
}

type Migrator struct {
	Db     *sql.DB
	GDb    *gorm.DB
	Logger *zap.Logger
}

// NewMigrator works against postgres and sqlite; db may be nil since every migration runs through grm.
func NewMigrator(db *sql.DB, gDb *gorm.DB, l *zap.Logger) (*Migrator, error) {
	if err := gDb.AutoMigrate(&Migrations{}); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}
	return &Migrator{
		Db:     db,
		GDb:    gDb,
		Logger: l,
	}, nil
}

func (m *Migrator) MigrateAll() error {
	migrations := []Migration{
		&_202610170900_verdicts.Migration{},
		&_202610171100_verdictSenderIndex.Migration{},
	}

	for _, migration := range migrations {
		if err := m.Migrate(migration); err != nil {
			return err
		}
	}
	return nil
}

func (m *Migrator) Migrate(migration Migration) error {
	name := migration.GetName()

	var count int64
	result := m.GDb.Model(&Migrations{}).Where("name = ?", name).Count(&count)

	if result.Error != nil {
		m.Logger.Sugar().Errorw(fmt.Sprintf("Failed to find migration '%s'", name), zap.Error(result.Error))
		return result.Error
	}
	if count > 0 {
		m.Logger.Sugar().Debugf("Migration %s already run", name)
		return nil
	}

	m.Logger.Sugar().Infof("Running migration '%s'", name)
	if err := migration.Up(m.Db, m.GDb); err != nil {
		m.Logger.Sugar().Errorw(fmt.Sprintf("Failed to run migration '%s'", name), zap.Error(err))
		return fmt.Errorf("migration '%s': %w", name, err)
	}

	migrationRecord := Migrations{
		Name: name,
	}
	if result = m.GDb.Create(&migrationRecord); result.Error != nil {
		m.Logger.Sugar().Errorw(fmt.Sprintf("Failed to record migration '%s'", name), zap.Error(result.Error))
		return result.Error
	}
	return nil
}

// Migrations leaves the timestamp column types to the dialector: timestamptz on postgres, datetime on
// sqlite, which is the only declared type the sqlite driver scans back into time.Time.
type Migrations struct {
	Name      string    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"default:current_timestamp"`
	UpdatedAt time.Time `gorm:"default:null"`
}
