package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"adda-backend/internal/platform/db"
)

// ErrDuplicate is returned by Insert when (user, date) already has a record.
var ErrDuplicate = errors.New("attendance: duplicate (user_id, attended_on)")

type Repository interface {
	Exists(ctx context.Context, userID, on string) (bool, error)
	Insert(ctx context.Context, a Attendance) error
	History(ctx context.Context, userID string) ([]Attendance, error)
	Stats(ctx context.Context, from, to time.Time, limit int) ([]StatsRow, error)
}

type Store struct{ db db.DBTX }

func NewStore(conn db.DBTX) *Store { return &Store{db: conn} }

// Exists: does the user have a record on the given date
func (s *Store) Exists(ctx context.Context, userID, on string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
	SELECT 1 FROM attendance
	WHERE user_id = ? AND attended_on = ? LIMIT 1`, userID, on,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Insert writes a new record. The UNIQUE(user_id, attended_on) key turns a
// lost race into ErrDuplicate.
func (s *Store) Insert(ctx context.Context, a Attendance) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO attendance (attendance_ulid, user_id, attended_on, photo_url, created_at)
	VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.AttendedOn, a.PhotoURL, a.CreatedAt.UTC(),
	)
	if db.IsDuplicateKey(err) {
		return ErrDuplicate
	}
	return err
}

// History: newest date first
func (s *Store) History(ctx context.Context, userID string) ([]Attendance, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT attendance_ulid, user_id, DATE_FORMAT(attended_on, '%Y-%m-%d') AS attended_on, photo_url, created_at
	FROM attendance
	WHERE user_id = ?
	ORDER BY attended_on DESC, attendance_id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Attendance{}
	for rows.Next() {
		var r attendanceRow
		if err := rows.Scan(&r.AttendanceULID, &r.UserID, &r.AttendedOn, &r.PhotoURL, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r.toModel())
	}
	return out, rows.Err()
}

// Stats: check-ins per user over [from, to], top N
func (s *Store) Stats(ctx context.Context, from, to time.Time, limit int) ([]StatsRow, error) {
	if limit <= 0 {
		limit = DefaultStatsLimit
	}
	rows, err := s.db.QueryContext(ctx, `
	SELECT a.user_id, u.full_name, COUNT(*) AS cnt
	FROM attendance a
	JOIN users u ON u.id = a.user_id
	WHERE a.attended_on BETWEEN ? AND ?
	GROUP BY a.user_id, u.full_name
	ORDER BY cnt DESC, a.user_id ASC
	LIMIT ?`, from.Format(DateLayout), to.Format(DateLayout), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []StatsRow{}
	for rows.Next() {
		var row StatsRow
		if err := rows.Scan(&row.UserID, &row.FullName, &row.Count); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
