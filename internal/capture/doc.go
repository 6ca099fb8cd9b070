// Package capture manages a live camera session and freezes frames from it
// into JPEG artifacts.
//
// A Session owns at most one stream at a time. Every exit path (dismissal,
// a completed capture, a facing switch) goes through Close, which stops all
// tracks of the held stream. A session reports ready once the stream has
// produced a frame with non-zero width and height; only then will a Capturer
// encode a frame.
package capture
