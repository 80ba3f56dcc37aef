package pg

import (
	"context"

	"fxrates-ingest/internal/domain"
	"fxrates-ingest/internal/infrastructure/logx"

	"go.uber.org/zap"
)

type SourceRepo struct{ db *DB }

func NewSourceRepo(db *DB) *SourceRepo { return &SourceRepo{db: db} }

func (r *SourceRepo) FindByName(ctx context.Context, name string) (domain.Source, error) {
	const q = `SELECT id, name, api_url FROM sources WHERE name=$1`
	var s domain.Source
	if err := r.db.conn(ctx).QueryRow(ctx, q, name).Scan(&s.ID, &s.Name, &s.APIURL); err != nil {
		return domain.Source{}, mapErr(err)
	}
	return s, nil
}

// Insert fails with application.ErrConflict when the name is taken.
func (r *SourceRepo) Insert(ctx context.Context, name, apiURL string) (domain.Source, error) {
	const ins = `
        INSERT INTO sources(name, api_url)
        VALUES ($1, $2)
        RETURNING id, name, api_url`
	var s domain.Source
	err := r.db.conn(ctx).QueryRow(ctx, ins, name, apiURL).Scan(&s.ID, &s.Name, &s.APIURL)
	if err != nil {
		err = mapErr(err)
		logx.L().Warn("sql.exec_failed",
			zap.String("repo", "source"),
			zap.String("operation", "Insert"),
			zap.String("name", name),
			zap.Error(err),
		)
		return domain.Source{}, err
	}
	return s, nil
}
