package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestOpenBecomesReadyOnlyAfterNonZeroFrame(t *testing.T) {
	p := newFakePlatform()
	p.blank = 3
	s := NewSession(p, WithPollInterval(time.Millisecond))
	defer s.Close()

	require.NoError(t, s.Open(waitCtx(t), FacingUser))
	require.NoError(t, s.WaitReady(waitCtx(t)))

	assert.True(t, s.Ready())
	w, h := s.Dimensions()
	assert.Equal(t, 64, w)
	assert.Equal(t, 48, h)
	// the blank frames were observed and ignored
	assert.Greater(t, p.streams[0].calls, p.blank)
}

func TestNotReadyWhileFramesAreEmpty(t *testing.T) {
	p := newFakePlatform()
	p.blank = 1 << 30
	s := NewSession(p, WithPollInterval(time.Millisecond))
	defer s.Close()

	require.NoError(t, s.Open(waitCtx(t), FacingUser))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.WaitReady(ctx), context.DeadlineExceeded)
	assert.False(t, s.Ready())
}

func TestOpenFallsBackToUnconstrained(t *testing.T) {
	p := newFakePlatform()
	p.rejectFacing = true
	s := NewSession(p)
	defer s.Close()

	require.NoError(t, s.Open(waitCtx(t), FacingEnvironment))
	require.Len(t, p.requests, 2)
	assert.Equal(t, Constraints{Facing: FacingEnvironment}, p.requests[0])
	assert.Equal(t, Constraints{}, p.requests[1])
	assert.True(t, s.Active())
}

func TestOpenErrors(t *testing.T) {
	tests := []struct {
		name string
		env  Environment
		fail error
		want error
	}{
		{"unsupported", Environment{Supported: false, Secure: true}, nil, ErrUnsupported},
		{"insecure remote host", Environment{Supported: true, Secure: false, Host: "192.168.1.20:8080"}, nil, ErrInsecureContext},
		{"denied", Environment{Supported: true, Secure: true}, ErrPermissionDenied, ErrPermissionDenied},
		{"busy", Environment{Supported: true, Secure: true}, ErrDeviceBusy, ErrDeviceBusy},
		{"no device", Environment{Supported: true, Secure: true}, ErrNoDevice, ErrNoDevice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFakePlatform()
			p.env = tt.env
			p.failAll = tt.fail
			s := NewSession(p)

			err := s.Open(waitCtx(t), FacingUser)
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, s.Active())
			if tt.fail != nil {
				// the unconstrained retry happened before giving up
				assert.Len(t, p.requests, 2)
			}
		})
	}
}

func TestLoopbackIsExemptFromSecureContext(t *testing.T) {
	for _, host := range []string{"localhost", "localhost:3000", "127.0.0.1", "[::1]:8443"} {
		p := newFakePlatform()
		p.env = Environment{Supported: true, Secure: false, Host: host}
		s := NewSession(p)
		assert.NoError(t, s.Open(waitCtx(t), FacingUser), host)
		s.Close()
	}
}

func TestOpenRejectsUnknownFacing(t *testing.T) {
	s := NewSession(newFakePlatform())
	assert.Error(t, s.Open(context.Background(), FacingMode("sideways")))
}

func TestCloseStopsTracksAndIsIdempotent(t *testing.T) {
	p := newFakePlatform()
	surf := &fakeSurface{}
	s := NewSession(p, WithSurface(surf), WithPollInterval(time.Millisecond))

	s.Close() // no stream yet
	require.NoError(t, s.Open(waitCtx(t), FacingUser))
	assert.Equal(t, p.streams[0], surf.bound)
	require.NoError(t, s.WaitReady(waitCtx(t)))

	s.Close()
	s.Close()
	assert.True(t, p.streams[0].track.stopped.Load())
	assert.Zero(t, p.live.Load())
	assert.Nil(t, surf.bound)
	assert.False(t, s.Ready())
	assert.ErrorIs(t, s.WaitReady(context.Background()), ErrNotReady)
}

func TestWaitReadyReturnsWhenClosed(t *testing.T) {
	p := newFakePlatform()
	p.blank = 1 << 30
	s := NewSession(p, WithPollInterval(time.Millisecond))
	require.NoError(t, s.Open(waitCtx(t), FacingUser))

	errc := make(chan error, 1)
	go func() { errc <- s.WaitReady(context.Background()) }()
	time.Sleep(5 * time.Millisecond)
	s.Close()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrNotReady)
	case <-time.After(time.Second):
		t.Fatal("WaitReady did not return after Close")
	}
}

func TestSwitchFacingLeavesExactlyOneStream(t *testing.T) {
	p := newFakePlatform()
	s := NewSession(p, WithPollInterval(time.Millisecond))
	defer s.Close()

	require.NoError(t, s.Open(waitCtx(t), FacingUser))
	for i := 0; i < 5; i++ {
		require.NoError(t, s.SwitchFacing(waitCtx(t)))
		assert.EqualValues(t, 1, p.live.Load())
	}
	// five toggles from user ends on environment
	assert.Equal(t, FacingEnvironment, s.Facing())
	assert.Len(t, p.streams, 6)
	for _, st := range p.streams[:5] {
		assert.True(t, st.track.stopped.Load())
	}
	require.NoError(t, s.WaitReady(waitCtx(t)))
}

func TestOpenTwiceReleasesPrevious(t *testing.T) {
	p := newFakePlatform()
	s := NewSession(p)
	defer s.Close()

	require.NoError(t, s.Open(waitCtx(t), FacingUser))
	require.NoError(t, s.Open(waitCtx(t), FacingUser))
	assert.EqualValues(t, 1, p.live.Load())
}

func TestFacingToggle(t *testing.T) {
	assert.Equal(t, FacingEnvironment, FacingUser.Toggle())
	assert.Equal(t, FacingUser, FacingEnvironment.Toggle())
}

func TestIsLoopback(t *testing.T) {
	assert.True(t, IsLoopback("LOCALHOST"))
	assert.True(t, IsLoopback("127.0.0.1:80"))
	assert.True(t, IsLoopback("::1"))
	assert.False(t, IsLoopback("10.0.0.1"))
	assert.False(t, IsLoopback("camera.local"))
	assert.False(t, IsLoopback(""))
}

var errBoom = errors.New("boom")

func TestOpenWrapsUnknownPlatformError(t *testing.T) {
	p := newFakePlatform()
	p.failAll = errBoom
	s := NewSession(p)
	err := s.Open(context.Background(), FacingUser)
	assert.ErrorIs(t, err, errBoom)
}
