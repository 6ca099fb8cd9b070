package checkin

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adda-backend/internal/capture"
)

func ctxT(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func filePhoto() *capture.Artifact {
	return capture.NewArtifact("selfie.jpg", "image/jpeg", []byte{0xff, 0xd8, 0xff}, time.Now())
}

func TestCameraCaptureSubmit(t *testing.T) {
	p := &camPlatform{}
	s := newSession(p)
	sub := &recordingSubmitter{points: 40}
	var order []string
	f := NewFlow(s, sub, Hooks{
		Celebrate: func() {
			assert.False(t, s.Active(), "camera must be released before celebrating")
			order = append(order, "celebrate")
		},
		Refresh: func(context.Context) { order = append(order, "refresh") },
	})

	require.NoError(t, f.UseCamera(ctxT(t), capture.FacingUser))
	require.NoError(t, s.WaitReady(ctxT(t)))
	a, err := f.Capture(ctxT(t))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", a.ContentType())
	assert.Zero(t, p.live.Load(), "capture stops the camera")

	res, err := f.Submit(ctxT(t))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", res.AttendedOn)
	assert.Len(t, sub.photos, 1)
	assert.Equal(t, 41, sub.points)
	assert.False(t, f.Open())
	assert.Nil(t, f.Photo())
	assert.Equal(t, []string{"celebrate", "refresh"}, order)
}

func TestCaptureBeforeReady(t *testing.T) {
	f := NewFlow(nil, &recordingSubmitter{}, Hooks{})
	_, err := f.Capture(ctxT(t))
	assert.ErrorIs(t, err, capture.ErrNotReady)
	assert.Nil(t, f.Photo())
}

func TestSourcesAreExclusive(t *testing.T) {
	p := &camPlatform{}
	f := NewFlow(newSession(p), &recordingSubmitter{}, Hooks{})

	require.NoError(t, f.UseCamera(ctxT(t), capture.FacingUser))
	assert.EqualValues(t, 1, p.live.Load())

	require.NoError(t, f.UseFile(filePhoto()))
	assert.Equal(t, SourceFile, f.Source())
	assert.Zero(t, p.live.Load(), "picking a file releases the camera")

	require.NoError(t, f.UseCamera(ctxT(t), capture.FacingEnvironment))
	assert.Equal(t, SourceCamera, f.Source())
	assert.Nil(t, f.Photo(), "opening the camera discards the picked file")
	f.Close()
	assert.Zero(t, p.live.Load())
}

func TestSwitchCameraKeepsOneStream(t *testing.T) {
	p := &camPlatform{}
	s := newSession(p)
	f := NewFlow(s, &recordingSubmitter{}, Hooks{})
	require.NoError(t, f.UseCamera(ctxT(t), capture.FacingUser))
	require.NoError(t, f.SwitchCamera(ctxT(t)))
	assert.EqualValues(t, 1, p.live.Load())
	assert.Equal(t, capture.FacingEnvironment, s.Facing())
	f.Close()
}

func TestRetake(t *testing.T) {
	p := &camPlatform{}
	s := newSession(p)
	f := NewFlow(s, &recordingSubmitter{}, Hooks{})
	require.NoError(t, f.UseCamera(ctxT(t), capture.FacingEnvironment))
	require.NoError(t, s.WaitReady(ctxT(t)))
	_, err := f.Capture(ctxT(t))
	require.NoError(t, err)

	require.NoError(t, f.Retake(ctxT(t)))
	assert.Nil(t, f.Photo())
	assert.True(t, s.Active())
	assert.Equal(t, capture.FacingEnvironment, s.Facing())
	f.Close()
}

func TestRetakeAfterCloseIsRejected(t *testing.T) {
	p := &camPlatform{}
	s := newSession(p)
	f := NewFlow(s, &recordingSubmitter{}, Hooks{})
	require.NoError(t, f.UseCamera(ctxT(t), capture.FacingUser))
	f.Close()

	assert.ErrorIs(t, f.Retake(ctxT(t)), ErrClosed)
	assert.ErrorIs(t, f.SwitchCamera(ctxT(t)), ErrClosed)
	_, err := f.Capture(ctxT(t))
	assert.ErrorIs(t, err, ErrClosed)
	assert.False(t, s.Active())
	assert.Zero(t, p.live.Load(), "a closed dialog holds no stream")
	assert.Equal(t, SourceNone, f.Source())
}

func TestSwitchCameraDropsCapturedPhoto(t *testing.T) {
	p := &camPlatform{}
	s := newSession(p)
	f := NewFlow(s, &recordingSubmitter{}, Hooks{})
	require.NoError(t, f.UseCamera(ctxT(t), capture.FacingUser))
	require.NoError(t, s.WaitReady(ctxT(t)))
	_, err := f.Capture(ctxT(t))
	require.NoError(t, err)
	require.NotNil(t, f.Photo())

	require.NoError(t, f.SwitchCamera(ctxT(t)))
	assert.Nil(t, f.Photo(), "the live preview replaces the captured frame")
	assert.EqualValues(t, 1, p.live.Load())
	assert.Equal(t, capture.FacingEnvironment, s.Facing())

	_, err = f.Submit(ctxT(t))
	assert.ErrorIs(t, err, ErrNoPhoto)
	f.Close()
	assert.Zero(t, p.live.Load())
}

func TestSubmitFailureKeepsDialog(t *testing.T) {
	sub := &recordingSubmitter{err: &RemoteError{Status: 409, Code: "ALREADY_MARKED", Message: "You have already marked attendance today"}}
	celebrated := false
	f := NewFlow(nil, sub, Hooks{Celebrate: func() { celebrated = true }})
	require.NoError(t, f.UseFile(filePhoto()))

	_, err := f.Submit(ctxT(t))
	require.Error(t, err)
	assert.True(t, IsAlreadyMarked(err))
	assert.Contains(t, err.Error(), "already marked")
	assert.True(t, f.Open())
	assert.NotNil(t, f.Photo())
	assert.False(t, celebrated)
}

func TestSubmitWithoutPhoto(t *testing.T) {
	f := NewFlow(nil, &recordingSubmitter{}, Hooks{})
	_, err := f.Submit(ctxT(t))
	assert.ErrorIs(t, err, ErrNoPhoto)
	assert.ErrorIs(t, f.UseFile(nil), ErrNoPhoto)

	f.Close()
	_, err = f.Submit(ctxT(t))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSubmitIsNotReentrant(t *testing.T) {
	sub := &recordingSubmitter{block: make(chan struct{})}
	f := NewFlow(nil, sub, Hooks{})
	require.NoError(t, f.UseFile(filePhoto()))

	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.submitting
	}, time.Second, time.Millisecond)

	_, err := f.Submit(ctxT(t))
	assert.ErrorIs(t, err, ErrSubmitting)
	close(sub.block)
	assert.NoError(t, <-done)
	assert.Len(t, sub.photos, 1)
}

func TestUseFilePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "me.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n0000"), 0o600))

	f := NewFlow(nil, &recordingSubmitter{}, Hooks{})
	require.NoError(t, f.UseFilePath(path))
	assert.Equal(t, "me.png", f.Photo().Name())
	assert.Equal(t, "image/png", f.Photo().ContentType())

	err := f.UseFilePath(filepath.Join(dir, "missing.jpg"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
