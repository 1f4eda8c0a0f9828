package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/ports"
	platformpostgres "github.com/Apurer/go-gin-orders-cqrs/internal/platform/postgres"
)

var _ ports.UnitOfWork = (*UnitOfWork)(nil)

// UnitOfWork runs each command in its own READ COMMITTED transaction.
// After-commit hooks run once the transaction has committed, detached from
// the caller's cancellation.
type UnitOfWork struct {
	runner *platformpostgres.TxRunner
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{runner: platformpostgres.NewTxRunner(db)}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(tx ports.Tx) error) error {
	if fn == nil {
		return nil
	}
	var hooks []func(context.Context)
	err := u.runner.InTx(ctx, func(db *gorm.DB) error {
		return fn(&gormTx{repo: NewRepository(db), hooks: &hooks})
	})
	if err != nil {
		return mapDBError(err)
	}
	hookCtx := context.WithoutCancel(ctx)
	for _, hook := range hooks {
		hook(hookCtx)
	}
	return nil
}

type gormTx struct {
	repo  *Repository
	hooks *[]func(context.Context)
}

func (t *gormTx) Orders() ports.Repository { return t.repo }

func (t *gormTx) AfterCommit(hook func(ctx context.Context)) {
	if hook != nil {
		*t.hooks = append(*t.hooks, hook)
	}
}
