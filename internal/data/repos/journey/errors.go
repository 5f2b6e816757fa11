package journey

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yungbote/journey-backend/internal/domain/journeyerr"
	"gorm.io/gorm"
)

// MapError translates infrastructure failures into the engine's error
// taxonomy. Anything unrecognized from this layer is a persistence_write:
// the caller gets the real cause, never a silent retry.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var je *journeyerr.Error
	if errors.As(err, &je) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return journeyerr.Wrap(journeyerr.CodeNotFound, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return journeyerr.Wrap(journeyerr.CodeRetryable, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return journeyerr.Wrap(journeyerr.CodeConflict, op, err) // unique_violation
		case "23503":
			return journeyerr.Wrap(journeyerr.CodeValidation, op, err) // foreign_key_violation
		case "40001", "40P01", "55P03":
			return journeyerr.Wrap(journeyerr.CodeRetryable, op, err) // serialization/deadlock/lock_not_available
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "already exists"):
		return journeyerr.Wrap(journeyerr.CodeConflict, op, err)
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "temporar"):
		return journeyerr.Wrap(journeyerr.CodeRetryable, op, err)
	default:
		return journeyerr.Wrap(journeyerr.CodePersistence, op, err)
	}
}
