package pg

import (
	"context"
	"fmt"

	"fxrates-ingest/internal/domain"
	"fxrates-ingest/internal/infrastructure/logx"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PairRepo struct{ db *DB }

func NewPairRepo(db *DB) *PairRepo { return &PairRepo{db: db} }

const pairCols = `id, base_currency, target_currency`

func scanPair(row pgx.Row) (domain.Pair, error) {
	var p domain.Pair
	if err := row.Scan(&p.ID, &p.Base, &p.Target); err != nil {
		return domain.Pair{}, err
	}
	return p, nil
}

// List returns every tracked pair in insertion order.
func (r *PairRepo) List(ctx context.Context) ([]domain.Pair, error) {
	rows, err := r.db.conn(ctx).Query(ctx, `SELECT `+pairCols+` FROM currency_pairs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query pairs: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Pair, error) {
		return scanPair(row)
	})
}

func (r *PairRepo) Get(ctx context.Context, id int64) (domain.Pair, error) {
	p, err := scanPair(r.db.conn(ctx).QueryRow(ctx, `SELECT `+pairCols+` FROM currency_pairs WHERE id=$1`, id))
	return p, mapErr(err)
}

func (r *PairRepo) Find(ctx context.Context, base, target string) (domain.Pair, error) {
	const q = `SELECT ` + pairCols + ` FROM currency_pairs WHERE base_currency=$1 AND target_currency=$2`
	p, err := scanPair(r.db.conn(ctx).QueryRow(ctx, q, base, target))
	return p, mapErr(err)
}

// Insert fails with application.ErrConflict for an existing tuple and with
// application.ErrForeignKey when either code is not in the catalog.
func (r *PairRepo) Insert(ctx context.Context, base, target string) (domain.Pair, error) {
	const ins = `
        INSERT INTO currency_pairs(base_currency, target_currency)
        VALUES ($1, $2)
        RETURNING ` + pairCols
	p, err := scanPair(r.db.conn(ctx).QueryRow(ctx, ins, base, target))
	if err != nil {
		err = mapErr(err)
		logx.L().Warn("sql.exec_failed",
			zap.String("repo", "pair"),
			zap.String("operation", "Insert"),
			zap.String("base", base),
			zap.String("target", target),
			zap.Error(err),
		)
		return domain.Pair{}, err
	}
	return p, nil
}
