package helpers

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// WrapTxAndCommit runs fn inside tx, or inside a new transaction on db when tx is nil. A transaction
// it opened is rolled back when fn fails and committed otherwise; a failed commit is returned.
// A caller-owned tx is left for the caller to finish.
func WrapTxAndCommit[T any](fn func(*gorm.DB) (T, error), db *gorm.DB, tx *gorm.DB) (T, error) {
	if tx != nil {
		return fn(tx)
	}

	tx = db.Begin()
	if tx.Error != nil {
		var zero T
		return zero, errors.Wrap(tx.Error, "failed to begin transaction")
	}

	res, err := fn(tx)
	if err != nil {
		tx.Rollback()
		return res, err
	}
	if err := tx.Commit().Error; err != nil {
		var zero T
		return zero, errors.Wrap(err, "failed to commit transaction")
	}
	return res, nil
}
