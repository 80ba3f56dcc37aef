package pg

import (
	"context"
	"fmt"

	"fxrates-ingest/internal/domain"
	"fxrates-ingest/internal/infrastructure/logx"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CurrencyRepo struct{ db *DB }

func NewCurrencyRepo(db *DB) *CurrencyRepo { return &CurrencyRepo{db: db} }

func (r *CurrencyRepo) List(ctx context.Context) ([]domain.Currency, error) {
	const q = `SELECT code, name FROM currencies ORDER BY code`
	rows, err := r.db.conn(ctx).Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query currencies: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Currency, error) {
		var c domain.Currency
		err := row.Scan(&c.Code, &c.Name)
		return c, err
	})
}

// InsertIfAbsent reports whether a row was created; an existing code is left untouched.
func (r *CurrencyRepo) InsertIfAbsent(ctx context.Context, c domain.Currency) (bool, error) {
	const ins = `
        INSERT INTO currencies(code, name)
        VALUES ($1, $2)
        ON CONFLICT (code) DO NOTHING`
	tag, err := r.db.conn(ctx).Exec(ctx, ins, c.Code, c.Name)
	if err != nil {
		logx.L().Error("sql.exec_failed",
			zap.String("repo", "currency"),
			zap.String("operation", "InsertIfAbsent"),
			zap.String("code", c.Code),
			zap.Error(err),
		)
		return false, mapErr(err)
	}
	return tag.RowsAffected() == 1, nil
}
