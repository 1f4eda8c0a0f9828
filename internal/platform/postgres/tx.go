package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"
)

// TxRunner opens GORM transactions at a fixed isolation level.
type TxRunner struct {
	db   *gorm.DB
	opts *sql.TxOptions
}

// NewTxRunner returns a runner using READ COMMITTED on PostgreSQL. Other
// dialects (sqlite in tests) use their default isolation.
func NewTxRunner(db *gorm.DB) *TxRunner {
	r := &TxRunner{db: db}
	if db != nil && db.Dialector != nil && db.Dialector.Name() == "postgres" {
		r.opts = &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	}
	return r
}

// InTx runs fn inside a transaction, committing when fn returns nil.
func (r *TxRunner) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return errors.New("transaction runner has nil db")
	}
	if r.opts != nil {
		return r.db.WithContext(ctx).Transaction(fn, r.opts)
	}
	return r.db.WithContext(ctx).Transaction(fn)
}
