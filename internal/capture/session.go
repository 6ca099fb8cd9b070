package capture

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"adda-backend/internal/platform/logger"
)

const defaultPollInterval = 50 * time.Millisecond

type Option func(*Session)

// WithSurface binds opened streams to a preview surface.
func WithSurface(s Surface) Option {
	return func(sess *Session) { sess.surface = s }
}

// WithPollInterval sets how often the readiness watcher looks for the first frame.
func WithPollInterval(d time.Duration) Option {
	return func(sess *Session) {
		if d > 0 {
			sess.poll = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(sess *Session) { sess.log = l }
}

type Session struct {
	platform Platform
	surface  Surface
	poll     time.Duration
	log      *slog.Logger

	mu            sync.Mutex
	stream        Stream
	facing        FacingMode
	ready         bool
	width, height int
	readyCh       chan struct{}
	closedCh      chan struct{}
	stopWatch     context.CancelFunc
	watchDone     chan struct{}
}

func NewSession(p Platform, opts ...Option) *Session {
	s := &Session{
		platform: p,
		poll:     defaultPollInterval,
		log:      logger.Default(),
		facing:   FacingUser,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Open acquires a stream for facing, falling back to any camera when the
// constrained request is rejected. An already held stream is released first.
func (s *Session) Open(ctx context.Context, facing FacingMode) error {
	if !facing.Valid() {
		return fmt.Errorf("capture: invalid facing mode %q", facing)
	}
	if s.platform == nil {
		return ErrUnsupported
	}
	env := s.platform.Environment()
	if !env.Supported {
		return ErrUnsupported
	}
	if !env.Secure && !IsLoopback(env.Host) {
		return ErrInsecureContext
	}

	s.Close()

	stream, err := s.platform.GetUserMedia(ctx, Constraints{Facing: facing})
	if err != nil {
		s.log.Warn("camera request failed, retrying without facing constraint", "facing", facing, "err", err)
		stream, err = s.platform.GetUserMedia(ctx, Constraints{})
	}
	if err != nil {
		return fmt.Errorf("open camera: %w", err)
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.stream = stream
	s.facing = facing
	s.ready = false
	s.width, s.height = 0, 0
	s.readyCh = make(chan struct{})
	s.closedCh = make(chan struct{})
	s.stopWatch = cancel
	s.watchDone = make(chan struct{})
	readyCh, done := s.readyCh, s.watchDone
	if s.surface != nil {
		s.surface.Bind(stream)
	}
	s.mu.Unlock()

	go s.watchReady(watchCtx, stream, readyCh, done)
	return nil
}

// watchReady polls the stream until a frame with both dimensions non-zero
// shows up, then marks the session ready.
func (s *Session) watchReady(ctx context.Context, stream Stream, readyCh chan struct{}, done chan struct{}) {
	defer close(done)
	t := time.NewTicker(s.poll)
	defer t.Stop()

	for {
		img, err := stream.Frame(ctx)
		if err == nil && img != nil {
			b := img.Bounds()
			if b.Dx() > 0 && b.Dy() > 0 {
				s.mu.Lock()
				if s.stream == stream {
					s.ready = true
					s.width, s.height = b.Dx(), b.Dy()
					close(readyCh)
				}
				s.mu.Unlock()
				return
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// SwitchFacing releases the current stream, toggles the facing preference and
// reopens. There is a short window with no active stream.
func (s *Session) SwitchFacing(ctx context.Context) error {
	s.mu.Lock()
	next := s.facing.Toggle()
	s.mu.Unlock()

	s.Close()
	return s.Open(ctx, next)
}

// Close stops every track of the held stream. It is a no-op without one.
func (s *Session) Close() {
	s.mu.Lock()
	stream := s.stream
	if stream == nil {
		s.mu.Unlock()
		return
	}
	stop, done, closed := s.stopWatch, s.watchDone, s.closedCh
	s.stream = nil
	s.ready = false
	s.width, s.height = 0, 0
	s.stopWatch, s.watchDone = nil, nil
	if s.surface != nil {
		s.surface.Unbind()
	}
	s.mu.Unlock()

	stop()
	<-done
	for _, tr := range stream.Tracks() {
		tr.Stop()
	}
	close(closed)
}

func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Active reports whether a stream is held.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream != nil
}

func (s *Session) Facing() FacingMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.facing
}

// Dimensions are the native frame size, zero until ready.
func (s *Session) Dimensions() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// WaitReady blocks until the session is ready, closed, or ctx is done.
func (s *Session) WaitReady(ctx context.Context) error {
	s.mu.Lock()
	if s.stream == nil {
		s.mu.Unlock()
		return ErrNotReady
	}
	readyCh, closedCh := s.readyCh, s.closedCh
	s.mu.Unlock()

	select {
	case <-readyCh:
		return nil
	case <-closedCh:
		return ErrNotReady
	case <-ctx.Done():
		return ctx.Err()
	}
}

// currentFrame grabs the live frame together with the native dimensions.
func (s *Session) currentFrame(ctx context.Context) (image.Image, int, int, error) {
	s.mu.Lock()
	if s.stream == nil || !s.ready {
		s.mu.Unlock()
		return nil, 0, 0, ErrNotReady
	}
	stream, w, h := s.stream, s.width, s.height
	s.mu.Unlock()

	img, err := stream.Frame(ctx)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	return img, w, h, nil
}
