package pg

import (
	"errors"
	"fmt"

	"fxrates-ingest/internal/application"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// mapErr translates driver errors into the port contract errors the
// application layer understands. Anything else passes through wrapped.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return application.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %w", application.ErrConflict, err)
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: %w", application.ErrForeignKey, err)
		}
	}
	return err
}
