package pg

import (
	"context"
	"fmt"

	"fxrates-ingest/internal/infrastructure/logx"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type txKey struct{}

func txFromCtx(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

// UnitOfWork runs fn in one read-committed transaction. Repos called with the
// ctx handed to fn join it; a nested Do reuses the outer tx.
type UnitOfWork struct {
	Pool *pgxpool.Pool
}

func NewUnitOfWork(db *DB) *UnitOfWork { return &UnitOfWork{Pool: db.Pool} }

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromCtx(ctx) != nil {
		return fn(ctx)
	}
	tx, err := u.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			logx.L().Warn("sql.rollback_failed", zap.Error(rbErr))
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
