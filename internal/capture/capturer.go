package capture

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"time"

	"github.com/disintegration/imaging"
)

const JPEGQuality = 95

type Capturer struct {
	session *Session
	now     func() time.Time
}

func NewCapturer(s *Session) *Capturer {
	return &Capturer{session: s, now: time.Now}
}

// Capture freezes the current frame into a JPEG artifact at the stream's
// native size. It fails with ErrNotReady before the session is ready.
func (c *Capturer) Capture(ctx context.Context) (*Artifact, error) {
	frame, w, h, err := c.session.currentFrame(ctx)
	if err != nil {
		return nil, err
	}

	type result struct {
		data []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		data, err := encodeFrame(frame, w, h)
		ch <- result{data, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		t := c.now()
		return NewArtifact(CapturedName(t), ContentTypeJPEG, r.data, t), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func encodeFrame(frame image.Image, w, h int) ([]byte, error) {
	if frame == nil || w <= 0 || h <= 0 {
		return nil, ErrEncodeFailed
	}
	raster := imaging.New(w, h, color.Black)
	raster = imaging.Paste(raster, frame, image.Pt(0, 0))

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, raster, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, ErrEncodeFailed
	}
	if buf.Len() == 0 {
		return nil, ErrEncodeFailed
	}
	return buf.Bytes(), nil
}
