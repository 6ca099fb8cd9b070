package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local stores objects under <root>/<bucket>/<key>. The HTTP server exposes
// root at publicBase so PublicURL is reachable.
type Local struct {
	root       string
	publicBase string
}

func NewLocal(root, publicBase string) *Local {
	return &Local{root: root, publicBase: strings.TrimRight(publicBase, "/")}
}

func (l *Local) Root() string { return l.root }

func (l *Local) Upload(ctx context.Context, bucket, key string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := CleanKey(key)
	if err != nil {
		return err
	}
	if _, err := CleanKey(bucket); err != nil {
		return fmt.Errorf("bucket %q: %w", bucket, err)
	}

	dst := filepath.Join(l.root, bucket, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("storage: object %s/%s already exists", bucket, key)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	return nil
}

func (l *Local) PublicURL(bucket, key string) string {
	return l.publicBase + "/" + bucket + "/" + key
}
