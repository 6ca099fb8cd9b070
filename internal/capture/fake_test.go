package capture

import (
	"context"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
)

type fakeTrack struct {
	stopped atomic.Bool
	live    *atomic.Int32
}

func (t *fakeTrack) Stop() {
	if t.stopped.CompareAndSwap(false, true) {
		t.live.Add(-1)
	}
}

// fakeStream yields empty frames for the first `blank` calls, then solid
// frames of w x h.
type fakeStream struct {
	facing FacingMode
	track  *fakeTrack
	w, h   int

	mu       sync.Mutex
	calls    int
	blank    int
	nilFrame bool
}

func (s *fakeStream) Tracks() []Track { return []Track{s.track} }

func (s *fakeStream) Frame(context.Context) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.blank {
		return image.NewRGBA(image.Rect(0, 0, 0, 0)), nil
	}
	if s.nilFrame && s.calls > s.blank+1 {
		return nil, nil
	}
	img := image.NewRGBA(image.Rect(0, 0, s.w, s.h))
	for y := 0; y < s.h; y++ {
		for x := 0; x < s.w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 90, A: 255})
		}
	}
	return img, nil
}

type fakePlatform struct {
	env Environment
	// rejectFacing makes every constrained request fail with ErrOverconstrained.
	rejectFacing bool
	// failAll makes every request fail with this error.
	failAll error
	blank   int
	w, h    int

	mu       sync.Mutex
	requests []Constraints
	streams  []*fakeStream
	live     atomic.Int32
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		env: Environment{Supported: true, Secure: true, Host: "kiosk.example"},
		w:   64,
		h:   48,
	}
}

func (p *fakePlatform) Environment() Environment { return p.env }

func (p *fakePlatform) GetUserMedia(_ context.Context, c Constraints) (Stream, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, c)
	if p.failAll != nil {
		return nil, p.failAll
	}
	if p.rejectFacing && c.Facing != "" {
		return nil, ErrOverconstrained
	}
	p.live.Add(1)
	s := &fakeStream{facing: c.Facing, track: &fakeTrack{live: &p.live}, w: p.w, h: p.h, blank: p.blank}
	p.streams = append(p.streams, s)
	return s, nil
}

type fakeSurface struct {
	mu    sync.Mutex
	bound Stream
	binds int
}

func (f *fakeSurface) Bind(s Stream) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bound = s
	f.binds++
}

func (f *fakeSurface) Unbind() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bound = nil
}
