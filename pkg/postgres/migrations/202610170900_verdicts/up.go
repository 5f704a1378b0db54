package _202610170900_verdicts

import (
	"database/sql"
	"fmt"

	"gorm.io/gorm"
)

type Migration struct {
}

func (m *Migration) Up(db *sql.DB, grm *gorm.DB) error {
	// sqlite only parses timestamps back out of columns declared as datetime
	timestampType := "timestamp with time zone"
	if grm.Dialector.Name() == "sqlite" {
		timestampType = "datetime"
	}

	queries := []string{
		fmt.Sprintf(`create table if not exists verdicts (
			id varchar not null primary key,
			approved boolean not null,
			stage varchar not null,
			reason text not null default '',
			chain_id bigint not null,
			sender varchar not null,
			call_to varchar not null,
			call_data text not null default '',
			call_value varchar not null default '0',
			classification varchar not null default '',
			function_name varchar not null default '',
			created_at %s not null
		)`, timestampType),
	}
	for _, query := range queries {
		if res := grm.Exec(query); res.Error != nil {
			return res.Error
		}
	}
	return nil
}

func (m *Migration) GetName() string {
	return "202610170900_verdicts"
}
