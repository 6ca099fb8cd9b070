package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"

	"adda-backend/internal/platform/logger"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidCredentials = errors.New("authentication failed")
	ErrDisabled           = errors.New("account disabled")
	ErrInvalidToken       = errors.New("invalid token")
)

const (
	minPasswordLen = 8
	maxNameLen     = 255
)

type AuthService interface {
	Register(ctx context.Context, email, password, fullName string) (string, error)
	Login(ctx context.Context, email, password string) (token, userID string, err error)
}

// TokenParser resolves a bearer token to the user id in its sub claim.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// RankingInvalidator drops cached rankings; a new user must appear on the
// leaderboard straight away.
type RankingInvalidator interface {
	InvalidateLeaderboard(ctx context.Context) error
}

type Service struct {
	store   AccountStore
	secret  []byte
	ttl     time.Duration
	now     func() time.Time
	ranking RankingInvalidator
}

func NewService(store AccountStore, secret []byte, ttl time.Duration) *Service {
	return &Service{store: store, secret: secret, ttl: ttl, now: time.Now}
}

// ValidationError is returned for malformed registration input.
type ValidationError struct{ Msg string }

// SetRankingInvalidator registers the cache to drop after each registration.
func (s *Service) SetRankingInvalidator(r RankingInvalidator) { s.ranking = r }

func (e *ValidationError) Error() string { return e.Msg }

func (s *Service) Register(ctx context.Context, email, password, fullName string) (string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", err
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return "", &ValidationError{Msg: fmt.Sprintf("password must be at least %d characters", minPasswordLen)}
	}
	name := NormalizeFullName(fullName)
	if name == "" {
		return "", &ValidationError{Msg: "full_name is required"}
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "", &ValidationError{Msg: "full_name is too long"}
	}

	exists, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if exists != nil {
		return "", ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	acct := &Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateWithProfile(ctx, acct, name); err != nil {
		return "", err
	}
	if s.ranking != nil {
		if err := s.ranking.InvalidateLeaderboard(ctx); err != nil {
			logger.WarnContext(ctx, "leaderboard invalidation failed", "user_id", acct.ID, "err", err)
		}
	}
	return acct.ID, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (string, string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}
	acct, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return "", "", err
	}
	if acct == nil {
		return "", "", ErrInvalidCredentials
	}
	if acct.IsDisabled {
		return "", "", ErrDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return "", "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(acct.ID)
	if err != nil {
		return "", "", err
	}
	return token, acct.ID, nil
}

func (s *Service) IssueToken(userID string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	})
	return token.SignedString(s.secret)
}

func (s *Service) ParseToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || token == nil || !token.Valid {
		return "", ErrInvalidToken
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", &ValidationError{Msg: "email is invalid"}
	}
	return email, nil
}

// NormalizeFullName applies Unicode NFC and collapses runs of whitespace.
func NormalizeFullName(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}
