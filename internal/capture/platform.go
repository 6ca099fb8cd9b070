package capture

import (
	"context"
	"image"
	"net"
	"strings"
)

type FacingMode string

const (
	FacingUser        FacingMode = "user"
	FacingEnvironment FacingMode = "environment"
)

// Toggle returns the opposite physical camera.
func (f FacingMode) Toggle() FacingMode {
	if f == FacingEnvironment {
		return FacingUser
	}
	return FacingEnvironment
}

func (f FacingMode) Valid() bool {
	return f == FacingUser || f == FacingEnvironment
}

// Constraints narrows a video request. A zero value asks for any camera.
type Constraints struct {
	Facing FacingMode
}

// Environment describes where capture runs: whether the platform can capture
// at all and whether the transport to the camera is secure.
type Environment struct {
	Supported bool
	Secure    bool
	Host      string
}

// Platform is the device media layer.
type Platform interface {
	Environment() Environment
	// GetUserMedia acquires a video stream. Failures should wrap one of the
	// package's device errors so callers can tell them apart.
	GetUserMedia(ctx context.Context, c Constraints) (Stream, error)
}

type Track interface {
	Stop()
}

type Stream interface {
	Tracks() []Track
	// Frame returns the most recent frame. It may return a nil image before
	// the first frame has arrived.
	Frame(ctx context.Context) (image.Image, error)
}

// Surface is a preview the active stream is bound to.
type Surface interface {
	Bind(Stream)
	Unbind()
}

// IsLoopback reports whether host (optionally with a port) names this machine.
func IsLoopback(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
