package attendance

import (
	"context"
	"crypto/rand"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"adda-backend/internal/platform/events"
	"adda-backend/internal/platform/logger"
	"adda-backend/internal/platform/storage"
)

// ===== Error model =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeNotFound        Code = "NOT_FOUND"
	CodeAlreadyMarked   Code = "ALREADY_MARKED"
	CodePayloadTooLarge Code = "PAYLOAD_TOO_LARGE"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string           { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError       { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrUnauthorized(msg string) *APIError  { return &APIError{Code: CodeUnauthorized, Message: msg} }
func ErrAlreadyMarked(msg string) *APIError { return &APIError{Code: CodeAlreadyMarked, Message: msg} }
func ErrTooLarge(msg string) *APIError      { return &APIError{Code: CodePayloadTooLarge, Message: msg} }
func ErrInternal(msg string) *APIError      { return &APIError{Code: CodeInternal, Message: msg} }

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
		case CodeAlreadyMarked:
			return 409
		case CodePayloadTooLarge:
			return 413
		default:
			return 500
		}
	}
	return 500
}

const alreadyMarkedMsg = "You have already marked attendance today"

// ===== Collaborators =====

// PointsIncrementer adds one point to a user.
type PointsIncrementer interface {
	Increment(ctx context.Context, userID string) error
}

// LeaderboardInvalidator drops cached rankings after points change.
type LeaderboardInvalidator interface {
	InvalidateLeaderboard(ctx context.Context) error
}

type Options struct {
	Bucket   string
	Location *time.Location
	Cache    LeaderboardInvalidator
	Events   events.Publisher
	// MaxUploadBytes bounds the photo size; zero means unbounded.
	MaxUploadBytes int64
}

// MarkedEvent is published on events.AttendanceMarked.
type MarkedEvent struct {
	AttendanceID string    `json:"attendance_id"`
	UserID       string    `json:"user_id"`
	AttendedOn   string    `json:"attended_on"`
	PhotoURL     string    `json:"photo_url"`
	CreatedAt    time.Time `json:"created_at"`
}

// ===== Service =====

type Service struct {
	repo    Repository
	storage storage.Storage
	points  PointsIncrementer
	opts    Options
	now     func() time.Time
}

func NewService(repo Repository, st storage.Storage, points PointsIncrementer, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Events == nil {
		opts.Events = events.Nop{}
	}
	return &Service{repo: repo, storage: st, points: points, opts: opts, now: time.Now}
}

func (s *Service) MaxUploadBytes() int64 { return s.opts.MaxUploadBytes }

func (s *Service) today() string { return Today(s.now(), s.opts.Location) }

// POST /attendance
//
// Submit records today's check-in for userID: existence check, photo upload,
// record insert, then the points increment. Each step stops the flow on
// failure; earlier side effects (an uploaded photo) stay in place.
func (s *Service) Submit(ctx context.Context, userID string, p Photo) (AttendanceResponse, error) {
	if userID == "" {
		return AttendanceResponse{}, ErrUnauthorized("sign in required")
	}
	if len(p.Data) == 0 {
		return AttendanceResponse{}, ErrInvalid("photo is required")
	}
	if limit := s.opts.MaxUploadBytes; limit > 0 && int64(len(p.Data)) > limit {
		return AttendanceResponse{}, ErrTooLarge(fmt.Sprintf("photo exceeds %d bytes", limit))
	}
	ct, err := detectImage(p.Data)
	if err != nil {
		return AttendanceResponse{}, ErrInvalid(err.Error())
	}

	log := logger.WithContext(ctx)
	now := s.now()
	today := Today(now, s.opts.Location)

	// 1. already marked today?
	marked, err := s.repo.Exists(ctx, userID, today)
	if err != nil {
		return AttendanceResponse{}, ErrInternal(err.Error())
	}
	if marked {
		return AttendanceResponse{}, ErrAlreadyMarked(alreadyMarkedMsg)
	}

	// 2. upload
	key := ObjectKey(userID, now, p.Name)
	if err := s.storage.Upload(ctx, s.opts.Bucket, key, p.Data, ct); err != nil {
		return AttendanceResponse{}, ErrInternal(err.Error())
	}
	url := s.storage.PublicURL(s.opts.Bucket, key)

	// 3. record
	a := Attendance{
		ID:         newULID(now),
		UserID:     userID,
		AttendedOn: today,
		PhotoURL:   url,
		CreatedAt:  now.UTC(),
	}
	if err := s.repo.Insert(ctx, a); err != nil {
		if errors.Is(err, ErrDuplicate) {
			log.Warn("attendance insert lost race", "attended_on", today, "key", key)
			return AttendanceResponse{}, ErrAlreadyMarked(alreadyMarkedMsg)
		}
		return AttendanceResponse{}, ErrInternal(err.Error())
	}

	// 4. points
	if err := s.points.Increment(ctx, userID); err != nil {
		log.Error("points increment failed after check-in", "attendance_id", a.ID, "err", err)
		return AttendanceResponse{}, ErrInternal(err.Error())
	}

	if s.opts.Cache != nil {
		if err := s.opts.Cache.InvalidateLeaderboard(ctx); err != nil {
			log.Warn("leaderboard cache invalidation failed", "err", err)
		}
	}
	ev := MarkedEvent{AttendanceID: a.ID, UserID: a.UserID, AttendedOn: a.AttendedOn, PhotoURL: a.PhotoURL, CreatedAt: a.CreatedAt}
	if err := s.opts.Events.Publish(ctx, events.AttendanceMarked, ev); err != nil {
		log.Warn("publish attendance event failed", "err", err)
	}

	log.Info("attendance marked", "attendance_id", a.ID, "attended_on", a.AttendedOn)
	return a.toDTO(), nil
}

// GET /attendance/today
func (s *Service) TodayStatus(ctx context.Context, userID string) (TodayResponse, error) {
	if userID == "" {
		return TodayResponse{}, ErrUnauthorized("sign in required")
	}
	today := s.today()
	marked, err := s.repo.Exists(ctx, userID, today)
	if err != nil {
		return TodayResponse{}, ErrInternal(err.Error())
	}
	return TodayResponse{Date: today, Marked: marked}, nil
}

// GET /users/:id/attendance
func (s *Service) History(ctx context.Context, userID string) (HistoryResponse, error) {
	if userID == "" {
		return HistoryResponse{}, ErrInvalid("user id is required")
	}
	rows, err := s.repo.History(ctx, userID)
	if err != nil {
		return HistoryResponse{}, ErrInternal(err.Error())
	}
	items := make([]AttendanceResponse, 0, len(rows))
	for i := 0; i < len(rows); i++ {
		items = append(items, rows[i].toDTO())
	}
	return HistoryResponse{UserID: userID, Total: len(items), Items: items}, nil
}

// GET /users/:id/attendance.csv
//
// ExportCSV writes the history as UTF-8 CSV with a byte order mark so
// spreadsheet tools pick the right encoding. Times are in the service zone.
func (s *Service) ExportCSV(ctx context.Context, userID string, w io.Writer) error {
	h, err := s.History(ctx, userID)
	if err != nil {
		return err
	}
	tw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(tw)
	if err := cw.Write([]string{"attended_on", "checked_in_at", "photo_url", "attendance_id"}); err != nil {
		return err
	}
	for _, it := range h.Items {
		rec := []string{
			it.AttendedOn,
			it.CreatedAt.In(s.opts.Location).Format(time.RFC3339),
			it.PhotoURL,
			it.AttendanceID,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return tw.Close()
}

// GET /attendance/stats
func (s *Service) Stats(ctx context.Context, req StatsRequest) ([]StatsRow, error) {
	from, err := time.ParseInLocation(DateLayout, req.From, time.UTC)
	if err != nil {
		return nil, ErrInvalid("from must be YYYY-MM-DD")
	}
	to, err := time.ParseInLocation(DateLayout, req.To, time.UTC)
	if err != nil {
		return nil, ErrInvalid("to must be YYYY-MM-DD")
	}
	if to.Before(from) {
		return nil, ErrInvalid("to must be >= from")
	}
	if req.Limit > MaxStatsLimit {
		req.Limit = MaxStatsLimit
	}
	rows, err := s.repo.Stats(ctx, from, to, req.Limit)
	if err != nil {
		return nil, ErrInternal(err.Error())
	}
	return rows, nil
}

func newULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
