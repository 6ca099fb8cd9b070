package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"adda-backend/internal/platform/logger"
)

const defaultCASAttempts = 5

var ErrPointsContention = errors.New("users: points changed concurrently, giving up")

// Points adds check-in points. The stored procedure is the primary path; when
// the call fails the row is updated with a compare-and-set on the value read.
type Points struct {
	db       *sql.DB
	attempts int
}

func NewPoints(conn *sql.DB) *Points {
	return &Points{db: conn, attempts: defaultCASAttempts}
}

func (p *Points) Increment(ctx context.Context, userID string) error {
	_, err := p.db.ExecContext(ctx, `CALL increment_points(?)`, userID)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	logger.WarnContext(ctx, "increment_points failed, falling back to read-modify-write", "err", err)
	return p.incrementCAS(ctx, userID)
}

func (p *Points) incrementCAS(ctx context.Context, userID string) error {
	for i := 0; i < p.attempts; i++ {
		var current int64
		err := p.db.QueryRowContext(ctx, `SELECT points FROM users WHERE id = ?`, userID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("read points: %w", err)
		}

		res, err := p.db.ExecContext(ctx, `
		UPDATE users SET points = ?
		WHERE id = ? AND points = ?`, current+1, userID, current)
		if err != nil {
			return fmt.Errorf("write points: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 1 {
			return nil
		}
	}
	return ErrPointsContention
}
