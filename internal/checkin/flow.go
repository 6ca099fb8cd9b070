// Package checkin drives one check-in dialog: choosing between a picked file
// and the camera, capturing, and submitting the photo.
package checkin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"adda-backend/internal/attendance"
	"adda-backend/internal/capture"
)

var (
	ErrNoPhoto    = errors.New("please select or capture a photo first")
	ErrSubmitting = errors.New("a submission is already in progress")
	ErrClosed     = errors.New("check-in dialog is closed")
)

type Source int

const (
	SourceNone Source = iota
	SourceFile
	SourceCamera
)

func (s Source) String() string {
	switch s {
	case SourceFile:
		return "file"
	case SourceCamera:
		return "camera"
	default:
		return "none"
	}
}

type Submitter interface {
	Submit(ctx context.Context, photo *capture.Artifact) (attendance.AttendanceResponse, error)
}

// Hooks run after a successful submission, in order: the dialog is closed
// first, then Celebrate, then Refresh.
type Hooks struct {
	Celebrate func()
	Refresh   func(ctx context.Context)
}

type Flow struct {
	session   *capture.Session
	capturer  *capture.Capturer
	submitter Submitter
	hooks     Hooks

	mu         sync.Mutex
	open       bool
	source     Source
	photo      *capture.Artifact
	submitting bool
}

// NewFlow opens a dialog. session may be nil when no camera is available;
// only files can be used then.
func NewFlow(session *capture.Session, sub Submitter, hooks Hooks) *Flow {
	f := &Flow{session: session, submitter: sub, hooks: hooks, open: true}
	if session != nil {
		f.capturer = capture.NewCapturer(session)
	}
	return f
}

// UseFile selects a picked file and releases the camera if it was open.
func (f *Flow) UseFile(photo *capture.Artifact) error {
	if photo == nil || photo.Size() == 0 {
		return ErrNoPhoto
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return ErrClosed
	}
	f.closeCamera()
	f.source = SourceFile
	f.photo = photo
	return nil
}

// UseFilePath reads a file from disk and selects it.
func (f *Flow) UseFilePath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return f.UseFile(capture.NewArtifact(filepath.Base(path), http.DetectContentType(data), data, info.ModTime()))
}

// UseCamera discards any picked file or earlier capture and opens the camera.
func (f *Flow) UseCamera(ctx context.Context, facing capture.FacingMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return ErrClosed
	}
	if f.session == nil {
		return capture.ErrUnsupported
	}
	f.photo = nil
	f.source = SourceCamera
	return f.session.Open(ctx, facing)
}

// SwitchCamera flips to the other camera. A captured photo is dropped, as with
// Retake.
func (f *Flow) SwitchCamera(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return ErrClosed
	}
	if f.source != SourceCamera || f.session == nil {
		return capture.ErrNotReady
	}
	f.photo = nil
	return f.session.SwitchFacing(ctx)
}

// Capture freezes the current camera frame as the photo and stops the camera.
func (f *Flow) Capture(ctx context.Context) (*capture.Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return nil, ErrClosed
	}
	if f.source != SourceCamera || f.capturer == nil {
		return nil, capture.ErrNotReady
	}
	a, err := f.capturer.Capture(ctx)
	if err != nil {
		return nil, err
	}
	f.photo = a
	f.session.Close()
	return a, nil
}

// Retake drops the captured photo and reopens the camera facing the same way.
func (f *Flow) Retake(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return ErrClosed
	}
	if f.session == nil {
		return capture.ErrUnsupported
	}
	f.photo = nil
	f.source = SourceCamera
	return f.session.Open(ctx, f.session.Facing())
}

// Submit sends the selected photo. On failure the dialog stays open with the
// photo selected so the user can retry.
func (f *Flow) Submit(ctx context.Context) (attendance.AttendanceResponse, error) {
	f.mu.Lock()
	if !f.open {
		f.mu.Unlock()
		return attendance.AttendanceResponse{}, ErrClosed
	}
	if f.submitting {
		f.mu.Unlock()
		return attendance.AttendanceResponse{}, ErrSubmitting
	}
	photo := f.photo
	if photo == nil {
		f.mu.Unlock()
		return attendance.AttendanceResponse{}, ErrNoPhoto
	}
	f.submitting = true
	f.mu.Unlock()

	res, err := f.submitter.Submit(ctx, photo)

	f.mu.Lock()
	f.submitting = false
	f.mu.Unlock()
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("submit attendance: %w", err)
	}

	f.Close()
	if f.hooks.Celebrate != nil {
		f.hooks.Celebrate()
	}
	if f.hooks.Refresh != nil {
		f.hooks.Refresh(ctx)
	}
	return res, nil
}

// Close dismisses the dialog and releases the camera.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCamera()
	f.open = false
	f.photo = nil
	f.source = SourceNone
}

func (f *Flow) Open() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *Flow) Source() Source {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.source
}

// Photo is the selected file or captured frame, nil when none.
func (f *Flow) Photo() *capture.Artifact {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.photo
}

func (f *Flow) closeCamera() {
	if f.session != nil {
		f.session.Close()
	}
}
