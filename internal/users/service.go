package users

import (
	"context"
	"errors"
	"fmt"

	"adda-backend/internal/platform/logger"
)

// ===== Error model =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeNotFound        Code = "NOT_FOUND"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string          { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError      { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrUnauthorized(msg string) *APIError { return &APIError{Code: CodeUnauthorized, Message: msg} }
func ErrNotFound(msg string) *APIError     { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrInternal(msg string) *APIError     { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeUnauthorized:
			return 401
		case CodeNotFound:
			return 404
		default:
			return 500
		}
	}
	return 500
}

// ===== Service =====

type Service struct {
	repo  Repository
	cache Cache
}

// NewService takes an optional cache; nil reads the store every time.
func NewService(repo Repository, cache Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// GET /users/:id
func (s *Service) Profile(ctx context.Context, id string) (ProfileResponse, error) {
	if id == "" {
		return ProfileResponse{}, ErrInvalid("user id is required")
	}
	u, cnt, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrUserNotFound) {
		return ProfileResponse{}, ErrNotFound("user not found")
	}
	if err != nil {
		return ProfileResponse{}, ErrInternal(err.Error())
	}
	return u.toProfile(cnt), nil
}

// GET /leaderboard
func (s *Service) Leaderboard(ctx context.Context, currentUserID string) (LeaderboardResponse, error) {
	list, err := s.ranked(ctx)
	if err != nil {
		return LeaderboardResponse{}, ErrInternal(err.Error())
	}
	return BuildLeaderboard(list, currentUserID), nil
}

func (s *Service) InvalidateLeaderboard(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.InvalidateLeaderboard(ctx)
}

func (s *Service) ranked(ctx context.Context) ([]User, error) {
	if s.cache != nil {
		list, ok, err := s.cache.GetLeaderboard(ctx)
		if err != nil {
			logger.WarnContext(ctx, "leaderboard cache read failed", "err", err)
		} else if ok {
			return list, nil
		}
	}
	list, err := s.repo.ListByPoints(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetLeaderboard(ctx, list); err != nil {
			logger.WarnContext(ctx, "leaderboard cache write failed", "err", err)
		}
	}
	return list, nil
}

// BuildLeaderboard ranks users already ordered by points. The last two ranks
// are flagged once there are at least two users.
func BuildLeaderboard(ordered []User, currentUserID string) LeaderboardResponse {
	n := len(ordered)
	res := LeaderboardResponse{
		Total:   n,
		Podium:  []LeaderboardEntry{},
		Entries: make([]LeaderboardEntry, 0, n),
	}
	for i, u := range ordered {
		rank := i + 1
		e := LeaderboardEntry{
			Rank:          rank,
			UserID:        u.ID,
			FullName:      u.FullName,
			FirstName:     FirstName(u.FullName),
			Points:        u.Points,
			IsCurrentUser: currentUserID != "" && u.ID == currentUserID,
			IsBottomTwo:   n >= 2 && rank > n-2,
		}
		if e.IsCurrentUser {
			res.CurrentUserRank = rank
		}
		if rank <= PodiumSize {
			res.Podium = append(res.Podium, e)
		}
		res.Entries = append(res.Entries, e)
	}
	return res
}
