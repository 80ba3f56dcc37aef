package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fxrates-ingest/internal/domain"
	"fxrates-ingest/internal/infrastructure/logx"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// WriteMode selects how Append treats an observation already stored for the
// same pair, source and instant.
type WriteMode string

const (
	WriteAppend WriteMode = "append" // always insert a new row
	WriteUpsert WriteMode = "upsert" // overwrite the rate of the matching row
)

func ParseWriteMode(s string) (WriteMode, error) {
	switch WriteMode(s) {
	case WriteAppend, "":
		return WriteAppend, nil
	case WriteUpsert:
		return WriteUpsert, nil
	}
	return "", fmt.Errorf("unknown rate write mode %q", s)
}

type RateRepo struct {
	db   *DB
	mode WriteMode
}

func NewRateRepo(db *DB, mode WriteMode) *RateRepo {
	if mode == "" {
		mode = WriteAppend
	}
	return &RateRepo{db: db, mode: mode}
}

const rateCols = `id, pair_id, source_id, observed_at, rate, inserted_at`

func scanRate(row pgx.Row) (domain.ExchangeRate, error) {
	var r domain.ExchangeRate
	if err := row.Scan(&r.ID, &r.PairID, &r.SourceID, &r.Timestamp, &r.Rate, &r.InsertedAt); err != nil {
		return domain.ExchangeRate{}, err
	}
	r.Timestamp, r.InsertedAt = r.Timestamp.UTC(), r.InsertedAt.UTC()
	return r, nil
}

// Append persists one observation. Each call commits on its own unless ctx
// carries a unit of work.
func (r *RateRepo) Append(ctx context.Context, pairID, sourceID int64, obs domain.Observation) (domain.ExchangeRate, error) {
	log := logx.L().With(
		zap.String("repo", "rate"),
		zap.String("mode", string(r.mode)),
		zap.Int64("pair_id", pairID),
		zap.Int64("source_id", sourceID),
	)
	var (
		rec domain.ExchangeRate
		err error
	)
	if r.mode == WriteUpsert {
		rec, err = r.upsert(ctx, pairID, sourceID, obs)
	} else {
		rec, err = r.insert(ctx, pairID, sourceID, obs)
	}
	if err != nil {
		err = mapErr(err)
		log.Error("sql.exec_failed", zap.Error(err))
		return domain.ExchangeRate{}, err
	}
	log.Debug("sql.exec_success", zap.Int64("id", rec.ID))
	return rec, nil
}

func (r *RateRepo) insert(ctx context.Context, pairID, sourceID int64, obs domain.Observation) (domain.ExchangeRate, error) {
	const ins = `
        INSERT INTO exchange_rates(pair_id, source_id, observed_at, rate)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + rateCols
	return scanRate(r.db.conn(ctx).QueryRow(ctx, ins, pairID, sourceID, obs.Timestamp, obs.Rate))
}

// upsert updates the newest row for (pair, source, instant) under a row lock,
// inserting when there is none.
func (r *RateRepo) upsert(ctx context.Context, pairID, sourceID int64, obs domain.Observation) (domain.ExchangeRate, error) {
	var out domain.ExchangeRate
	err := NewUnitOfWork(r.db).Do(ctx, func(ctx context.Context) error {
		const upd = `
            UPDATE exchange_rates SET rate=$4
            WHERE id = (
                SELECT id FROM exchange_rates
                WHERE pair_id=$1 AND source_id=$2 AND observed_at=$3
                ORDER BY id DESC LIMIT 1
                FOR UPDATE
            )
            RETURNING ` + rateCols
		rec, err := scanRate(r.db.conn(ctx).QueryRow(ctx, upd, pairID, sourceID, obs.Timestamp, obs.Rate))
		if err == nil {
			out = rec
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		out, err = r.insert(ctx, pairID, sourceID, obs)
		return err
	})
	return out, err
}

// ListByPair returns stored observations ordered by observed_at then id.
// Zero bounds are open.
func (r *RateRepo) ListByPair(ctx context.Context, pairID int64, from, to time.Time) ([]domain.ExchangeRate, error) {
	const q = `
        SELECT ` + rateCols + `
        FROM exchange_rates
        WHERE pair_id=$1
          AND ($2::timestamptz IS NULL OR observed_at >= $2)
          AND ($3::timestamptz IS NULL OR observed_at <= $3)
        ORDER BY observed_at, id`
	rows, err := r.db.conn(ctx).Query(ctx, q, pairID, nullTime(from), nullTime(to))
	if err != nil {
		return nil, fmt.Errorf("query rates: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ExchangeRate, error) {
		return scanRate(row)
	})
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
