// Package httpcam implements capture.Platform on top of network cameras that
// serve still snapshots over HTTP.
package httpcam

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"adda-backend/internal/capture"
)

const maxSnapshotBytes = 16 << 20

var errStopped = errors.New("httpcam: stream stopped")

type Option func(*Platform)

func WithClient(c *http.Client) Option {
	return func(p *Platform) { p.client = c }
}

// WithBasicAuth sets credentials sent with every snapshot request.
func WithBasicAuth(user, pass string) Option {
	return func(p *Platform) { p.user, p.pass = user, pass }
}

type Platform struct {
	cameras map[capture.FacingMode]string
	client  *http.Client
	user    string
	pass    string
}

// New takes the snapshot URL of each physical camera. Empty URLs are ignored.
func New(cameras map[capture.FacingMode]string, opts ...Option) *Platform {
	p := &Platform{
		cameras: map[capture.FacingMode]string{},
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for f, u := range cameras {
		if u = strings.TrimSpace(u); u != "" {
			p.cameras[f] = u
		}
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// order in which an unconstrained request picks a camera
var preference = []capture.FacingMode{capture.FacingUser, capture.FacingEnvironment}

func (p *Platform) Environment() capture.Environment {
	env := capture.Environment{Supported: len(p.cameras) > 0, Secure: true}
	for _, f := range preference {
		raw, ok := p.cameras[f]
		if !ok {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme != "https" {
			env.Secure = false
		}
		if env.Host == "" && u != nil {
			env.Host = u.Host
		}
	}
	if !env.Supported {
		env.Secure = false
	}
	return env
}

func (p *Platform) GetUserMedia(ctx context.Context, c capture.Constraints) (capture.Stream, error) {
	raw, err := p.pick(c)
	if err != nil {
		return nil, err
	}
	s := &stream{platform: p, url: raw}
	// probe once so device errors surface at open time
	if _, err := s.fetch(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *Platform) pick(c capture.Constraints) (string, error) {
	if c.Facing != "" {
		if u, ok := p.cameras[c.Facing]; ok {
			return u, nil
		}
		return "", capture.ErrOverconstrained
	}
	for _, f := range preference {
		if u, ok := p.cameras[f]; ok {
			return u, nil
		}
	}
	return "", capture.ErrNoDevice
}

type stream struct {
	platform *Platform
	url      string

	mu      sync.Mutex
	stopped bool
}

func (s *stream) Tracks() []capture.Track { return []capture.Track{s} }

// Stop releases the camera; later frames fail.
func (s *stream) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

func (s *stream) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func (s *stream) Frame(ctx context.Context) (image.Image, error) {
	if s.Stopped() {
		return nil, errStopped
	}
	return s.fetch(ctx)
}

func (s *stream) fetch(ctx context.Context) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", capture.ErrNoDevice, err)
	}
	if s.platform.user != "" {
		req.SetBasicAuth(s.platform.user, s.platform.pass)
	}
	resp, err := s.platform.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", capture.ErrNoDevice, err)
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode); err != nil {
		return nil, err
	}
	img, err := imaging.Decode(io.LimitReader(resp.Body, maxSnapshotBytes), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("httpcam: decode snapshot: %w", err)
	}
	return img, nil
}

func statusError(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return capture.ErrPermissionDenied
	case code == http.StatusConflict, code == http.StatusLocked, code == http.StatusServiceUnavailable:
		return capture.ErrDeviceBusy
	case code == http.StatusNotFound:
		return capture.ErrNoDevice
	default:
		return fmt.Errorf("httpcam: unexpected status %d", code)
	}
}
