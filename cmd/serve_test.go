package cmd

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Layr-Labs/txguard/internal/config"
	"github.com/Layr-Labs/txguard/pkg/gatekeeper"
	"github.com/Layr-Labs/txguard/pkg/postgres/migrations"
	"github.com/Layr-Labs/txguard/pkg/verdictStore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func Test_OpenVerdictDatabase(t *testing.T) {
	l := zap.NewNop()
	cfg := &config.Config{DatabaseConfig: config.DatabaseConfig{
		Enabled:    true,
		SqlitePath: filepath.Join(t.TempDir(), "verdicts.db"),
	}}
	verdict := &gatekeeper.Verdict{
		Id:        uuid.New(),
		Approved:  true,
		Stage:     gatekeeper.Stage_Approved,
		ChainId:   8453,
		Sender:    common.HexToAddress("0x1111111111111111111111111111111111111111"),
		CreatedAt: time.Now().UTC(),
	}

	t.Run("Should migrate a sqlite file and store verdicts in it", func(t *testing.T) {
		grm, err := openVerdictDatabase(cfg, l)
		require.Nil(t, err)
		assert.Equal(t, "sqlite", grm.Dialector.Name())

		applied := make([]*migrations.Migrations, 0)
		require.Nil(t, grm.Find(&applied).Error)
		require.Len(t, applied, 2)
		for _, m := range applied {
			assert.False(t, m.CreatedAt.IsZero(), m.Name)
		}

		_, err = verdictStore.NewVerdictStore(grm, l).InsertVerdict(verdict)
		require.Nil(t, err)

		sqlDb, err := grm.DB()
		require.Nil(t, err)
		require.Nil(t, sqlDb.Close())
	})

	t.Run("Should reopen the same file without migrating again", func(t *testing.T) {
		grm, err := openVerdictDatabase(cfg, l)
		require.Nil(t, err)

		var count int64
		grm.Model(&migrations.Migrations{}).Count(&count)
		assert.Equal(t, int64(2), count)

		found, err := verdictStore.NewVerdictStore(grm, l).GetVerdictById(verdict.Id.String())
		require.Nil(t, err)
		assert.True(t, found.Approved)
		assert.Equal(t, "approved", found.Stage)
		assert.True(t, verdict.CreatedAt.Equal(found.CreatedAt))
	})
}
