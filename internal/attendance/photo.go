package attendance

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"strings"
	"time"
	"unicode"

	_ "golang.org/x/image/webp"
)

const maxNameLen = 100

var contentTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// detectImage checks that data is a decodable image and returns its media type.
func detectImage(data []byte) (string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("photo is not a supported image")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", fmt.Errorf("photo has no pixels")
	}
	ct, ok := contentTypes[format]
	if !ok {
		return "", fmt.Errorf("photo format %q is not supported", format)
	}
	return ct, nil
}

// ObjectKey is where a photo is stored: "<user>/<unix ms>-<name>".
func ObjectKey(userID string, t time.Time, name string) string {
	return fmt.Sprintf("%s/%d-%s", userID, t.UnixMilli(), sanitizeName(name))
}

func sanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "photo.jpg"
	}
	if len(out) > maxNameLen {
		out = out[len(out)-maxNameLen:]
	}
	return out
}
