package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"adda-backend/internal/platform/db"
)

type Account struct {
	ID           string
	Email        string
	PasswordHash string
	IsDisabled   bool
	CreatedAt    time.Time
}

type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (*Account, error)
	// CreateWithProfile inserts the users row and the auth_accounts row together.
	CreateWithProfile(ctx context.Context, a *Account, fullName string) error
}

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) AccountStore {
	return &Store{db: conn}
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*Account, error) {
	const q = `
SELECT id, email, password_hash, is_disabled, created_at
FROM auth_accounts
WHERE email = ?
LIMIT 1
`
	var a Account
	var isDisabledInt int
	err := s.db.QueryRowContext(ctx, q, email).Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&isDisabledInt,
		&a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.IsDisabled = isDisabledInt != 0
	return &a, nil
}

func (s *Store) CreateWithProfile(ctx context.Context, a *Account, fullName string) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, full_name, points, created_at) VALUES (?, ?, 0, ?)`,
			a.ID, fullName, a.CreatedAt,
		); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO auth_accounts (id, email, password_hash, is_disabled, created_at) VALUES (?, ?, ?, 0, ?)`,
			a.ID, a.Email, a.PasswordHash, a.CreatedAt,
		)
		if db.IsDuplicateKey(err) {
			return ErrAlreadyExists
		}
		return err
	})
}
