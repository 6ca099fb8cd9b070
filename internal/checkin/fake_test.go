package checkin

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"adda-backend/internal/attendance"
	"adda-backend/internal/capture"
)

type camTrack struct{ live *atomic.Int32 }

func (t camTrack) Stop() { t.live.Add(-1) }

type camStream struct{ track camTrack }

func (s camStream) Tracks() []capture.Track { return []capture.Track{s.track} }
func (s camStream) Frame(context.Context) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 32, 24)), nil
}

type camPlatform struct {
	live  atomic.Int32
	opens atomic.Int32
}

func (p *camPlatform) Environment() capture.Environment {
	return capture.Environment{Supported: true, Secure: true, Host: "kiosk"}
}

func (p *camPlatform) GetUserMedia(context.Context, capture.Constraints) (capture.Stream, error) {
	p.opens.Add(1)
	p.live.Add(1)
	return camStream{track: camTrack{live: &p.live}}, nil
}

type recordingSubmitter struct {
	mu     sync.Mutex
	photos []*capture.Artifact
	err    error
	// points plays the server's counter
	points int
	block  chan struct{}
}

func (r *recordingSubmitter) Submit(_ context.Context, p *capture.Artifact) (attendance.AttendanceResponse, error) {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return attendance.AttendanceResponse{}, r.err
	}
	r.photos = append(r.photos, p)
	r.points++
	return attendance.AttendanceResponse{AttendanceID: "01HS", UserID: "u1", AttendedOn: "2024-03-10"}, nil
}

func newSession(p capture.Platform) *capture.Session {
	return capture.NewSession(p, capture.WithPollInterval(time.Millisecond))
}
