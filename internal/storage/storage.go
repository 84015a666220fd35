package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/promptpix/apiserver/config"
)

// ObjectStore defines the object operations the upload route needs,
// implemented by interchangeable backends. Get returns the content type
// recorded at upload so objects can be served back with it.
type ObjectStore interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// ResolveBackend constructs the object store named by cfg.Backend.
// An empty backend name returns (nil, nil): uploads are disabled.
func ResolveBackend(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "minio":
		return NewMinioStore(cfg.Minio)
	case "gcs":
		return NewGCSStore(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
