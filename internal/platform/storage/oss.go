package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"adda-backend/internal/platform/config"
)

// OSS uploads to Alibaba Cloud Object Storage. Buckets are opened lazily and
// reused.
type OSS struct {
	client   *oss.Client
	endpoint string

	mu      sync.Mutex
	buckets map[string]*oss.Bucket
}

func NewOSS(cfg config.OSSConfig) (*OSS, error) {
	if cfg.Endpoint == "" || cfg.AccessKeyID == "" || cfg.AccessKeySecret == "" {
		return nil, fmt.Errorf("storage: oss endpoint and credentials are required")
	}
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	return &OSS{client: client, endpoint: cfg.Endpoint, buckets: map[string]*oss.Bucket{}}, nil
}

func (o *OSS) bucket(name string) (*oss.Bucket, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if b, ok := o.buckets[name]; ok {
		return b, nil
	}
	b, err := o.client.Bucket(name)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}
	o.buckets[name] = b
	return b, nil
}

func (o *OSS) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	key, err := CleanKey(key)
	if err != nil {
		return err
	}
	b, err := o.bucket(bucket)
	if err != nil {
		return err
	}
	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
		oss.ForbidOverWrite(true),
	}
	return b.PutObject(key, bytes.NewReader(data), opts...)
}

func (o *OSS) PublicURL(bucket, key string) string {
	return ossPublicURL(o.endpoint, bucket, key)
}

func ossPublicURL(endpoint, bucket, key string) string {
	end := strings.TrimPrefix(endpoint, "https://")
	end = strings.TrimPrefix(end, "http://")
	end = strings.TrimRight(end, "/")
	return fmt.Sprintf("https://%s.%s/%s", bucket, end, key)
}
