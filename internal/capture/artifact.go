package capture

import (
	"fmt"
	"time"
)

const ContentTypeJPEG = "image/jpeg"

// Artifact is an immutable still image ready for submission.
type Artifact struct {
	name        string
	contentType string
	data        []byte
	createdAt   time.Time
}

// NewArtifact copies data so later changes by the caller are not observed.
func NewArtifact(name, contentType string, data []byte, createdAt time.Time) *Artifact {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &Artifact{name: name, contentType: contentType, data: buf, createdAt: createdAt}
}

// CapturedName is the filename given to frames taken from the camera.
func CapturedName(t time.Time) string {
	return fmt.Sprintf("attendance-%d.jpg", t.UnixMilli())
}

func (a *Artifact) Name() string         { return a.name }
func (a *Artifact) ContentType() string  { return a.contentType }
func (a *Artifact) CreatedAt() time.Time { return a.createdAt }
func (a *Artifact) Size() int            { return len(a.data) }

// Bytes returns a copy of the encoded image.
func (a *Artifact) Bytes() []byte {
	buf := make([]byte, len(a.data))
	copy(buf, a.data)
	return buf
}
