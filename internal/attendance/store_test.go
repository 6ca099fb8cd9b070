package attendance

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewStore(conn), mock
}

func TestStoreExists(t *testing.T) {
	s, mock := newMockStore(t)
	q := regexp.QuoteMeta("SELECT 1 FROM attendance")

	mock.ExpectQuery(q).WithArgs("u1", "2024-03-10").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	ok, err := s.Exists(context.Background(), "u1", "2024-03-10")
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectQuery(q).WithArgs("u1", "2024-03-11").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	ok, err = s.Exists(context.Background(), "u1", "2024-03-11")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreInsertDuplicate(t *testing.T) {
	s, mock := newMockStore(t)
	at := time.Date(2024, 3, 10, 2, 0, 0, 0, time.UTC)
	a := Attendance{ID: "01HS", UserID: "u1", AttendedOn: "2024-03-10", PhotoURL: "http://x/p.jpg", CreatedAt: at}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attendance")).
		WithArgs("01HS", "u1", "2024-03-10", "http://x/p.jpg", at).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, s.Insert(context.Background(), a))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attendance")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	assert.ErrorIs(t, s.Insert(context.Background(), a), ErrDuplicate)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreHistory(t *testing.T) {
	s, mock := newMockStore(t)
	t1 := time.Date(2024, 3, 10, 2, 0, 0, 0, time.UTC)
	t0 := time.Date(2024, 3, 9, 3, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY attended_on DESC")).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"attendance_ulid", "user_id", "attended_on", "photo_url", "created_at"}).
			AddRow("B", "u1", "2024-03-10", "http://x/b.jpg", t1).
			AddRow("A", "u1", "2024-03-09", "http://x/a.jpg", t0))

	got, err := s.History(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].ID)
	assert.Equal(t, "2024-03-09", got[1].AttendedOn)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreStats(t *testing.T) {
	s, mock := newMockStore(t)
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY a.user_id, u.full_name")).
		WithArgs("2024-03-01", "2024-03-31", DefaultStatsLimit).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "full_name", "cnt"}).
			AddRow("u1", "Rahim Uddin", 12).
			AddRow("u2", "Karim", 7))

	rows, err := s.Stats(context.Background(), from, to, 0)
	require.NoError(t, err)
	assert.Equal(t, []StatsRow{{"u1", "Rahim Uddin", 12}, {"u2", "Karim", 7}}, rows)
	require.NoError(t, mock.ExpectationsWereMet())
}
