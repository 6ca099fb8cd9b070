package users

import (
	"context"
	"database/sql"
	"errors"

	"adda-backend/internal/platform/db"
)

var ErrUserNotFound = errors.New("users: not found")

type Repository interface {
	Get(ctx context.Context, id string) (User, int64, error)
	ListByPoints(ctx context.Context) ([]User, error)
}

type Store struct{ db db.DBTX }

func NewStore(conn db.DBTX) *Store { return &Store{db: conn} }

// Get returns the user together with their check-in count.
func (s *Store) Get(ctx context.Context, id string) (User, int64, error) {
	var (
		u   User
		cnt int64
	)
	err := s.db.QueryRowContext(ctx, `
	SELECT u.id, u.full_name, u.points, u.created_at,
	       (SELECT COUNT(*) FROM attendance a WHERE a.user_id = u.id) AS attendance_count
	FROM users u
	WHERE u.id = ?`, id,
	).Scan(&u.ID, &u.FullName, &u.Points, &u.CreatedAt, &cnt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, 0, ErrUserNotFound
	}
	if err != nil {
		return User{}, 0, err
	}
	return u, cnt, nil
}

// ListByPoints: every user, highest points first
func (s *Store) ListByPoints(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, full_name, points, created_at
	FROM users
	ORDER BY points DESC, full_name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Points, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
