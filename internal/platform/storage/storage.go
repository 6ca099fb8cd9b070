// Package storage holds the object storage backends photos are uploaded to.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"adda-backend/internal/platform/config"
)

var ErrInvalidKey = errors.New("storage: invalid object key")

// Storage is the object storage collaborator: upload bytes under a key, then
// resolve the key to a publicly reachable URL.
type Storage interface {
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error
	PublicURL(bucket, key string) string
}

// New builds the backend selected by cfg.Driver.
func New(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.LocalDir, cfg.PublicBaseURL), nil
	case "oss":
		return NewOSS(cfg.OSS)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}

// CleanKey rejects keys that are empty, absolute or escape the bucket.
func CleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned != key || cleaned == "." || strings.HasPrefix(cleaned, "../") || cleaned == ".." {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
