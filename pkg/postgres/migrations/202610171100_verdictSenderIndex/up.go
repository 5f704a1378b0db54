package _202610171100_verdictSenderIndex

import (
	"database/sql"

	"gorm.io/gorm"
)

type Migration struct {
}

func (m *Migration) Up(db *sql.DB, grm *gorm.DB) error {
	queries := []string{
		`create index if not exists idx_verdicts_sender_chain_created on verdicts (sender, chain_id, created_at)`,
		`create index if not exists idx_verdicts_approved on verdicts (approved)`,
	}
	for _, query := range queries {
		if res := grm.Exec(query); res.Error != nil {
			return res.Error
		}
	}
	return nil
}

func (m *Migration) GetName() string {
	return "202610171100_verdictSenderIndex"
}
