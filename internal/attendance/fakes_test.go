package attendance

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memRepo struct {
	mu   sync.Mutex
	rows []Attendance
	// hideExisting makes Exists miss, simulating a concurrent submit that
	// passed the pre-check.
	hideExisting bool
}

func (m *memRepo) Exists(_ context.Context, userID, on string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hideExisting {
		return false, nil
	}
	for _, r := range m.rows {
		if r.UserID == userID && r.AttendedOn == on {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) Insert(_ context.Context, a Attendance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.UserID == a.UserID && r.AttendedOn == a.AttendedOn {
			return ErrDuplicate
		}
	}
	m.rows = append(m.rows, a)
	return nil
}

func (m *memRepo) History(_ context.Context, userID string) ([]Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Attendance
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].UserID == userID {
			out = append(out, m.rows[i])
		}
	}
	return out, nil
}

func (m *memRepo) Stats(context.Context, time.Time, time.Time, int) ([]StatsRow, error) {
	return nil, nil
}

type memStorage struct {
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *memStorage) Upload(_ context.Context, bucket, key string, data []byte, ct string) error {
	if s.err != nil {
		return s.err
	}
	s.objects[bucket+"/"+key] = data
	s.types[bucket+"/"+key] = ct
	return nil
}

func (s *memStorage) PublicURL(bucket, key string) string {
	return "https://cdn.example/" + bucket + "/" + key
}

type memPoints struct {
	points map[string]int
	err    error
}

func (p *memPoints) Increment(_ context.Context, userID string) error {
	if p.err != nil {
		return p.err
	}
	p.points[userID]++
	return nil
}

type countingCache struct{ n int }

func (c *countingCache) InvalidateLeaderboard(context.Context) error {
	c.n++
	return nil
}

var errUnreachable = errors.New("connection refused")

func jpegPhoto(t *testing.T) Photo {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 12))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}))
	return Photo{Name: "attendance-1710000000000.jpg", ContentType: "image/jpeg", Data: buf.Bytes()}
}
