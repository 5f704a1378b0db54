package sqlite

import (
	"testing"

	"github.com/Layr-Labs/txguard/pkg/postgres/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func Test_GetInMemorySqliteDatabaseConnection(t *testing.T) {
	t.Run("Should return a migrated database", func(t *testing.T) {
		grm, err := GetInMemorySqliteDatabaseConnection(zap.NewNop())
		require.Nil(t, err)

		applied := make([]*migrations.Migrations, 0)
		require.Nil(t, grm.Order("name asc").Find(&applied).Error)
		require.Len(t, applied, 2)
		assert.Equal(t, "202610170900_verdicts", applied[0].Name)
		assert.False(t, applied[0].CreatedAt.IsZero())

		assert.True(t, grm.Migrator().HasTable("verdicts"))
	})
	t.Run("Should give every caller a separate database", func(t *testing.T) {
		first, err := GetInMemorySqliteDatabaseConnection(zap.NewNop())
		require.Nil(t, err)
		second, err := GetInMemorySqliteDatabaseConnection(zap.NewNop())
		require.Nil(t, err)

		require.Nil(t, first.Exec(`insert into verdicts (id, approved, stage, chain_id, sender, call_to, created_at)
			values ('a', true, 'approved', 1, '0x1', '', current_timestamp)`).Error)

		var count int64
		second.Table("verdicts").Count(&count)
		assert.Equal(t, int64(0), count)
	})
}
