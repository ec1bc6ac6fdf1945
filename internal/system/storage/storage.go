// Package storage stores checklist evidence documents.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/complyhub/compliance-management-api/internal/system/config"
	"github.com/complyhub/compliance-management-api/internal/system/log"
)

// ErrObjectNotFound is returned when a key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectMetadata describes a stored object.
type ObjectMetadata struct {
	ContentType  string
	Size         int64
	UserMetadata map[string]string
}

// ObjectStorage is the evidence store contract shared by the adapters.
type ObjectStorage interface {
	Put(ctx context.Context, key string, reader io.Reader, metadata ObjectMetadata) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// New creates the adapter selected by cfg.Type.
func New(ctx context.Context, cfg *config.StorageConfig) (ObjectStorage, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "Storage"))

	switch cfg.Type {
	case "s3":
		logger.Info("Creating S3 storage adapter",
			log.String("bucket", cfg.S3.Bucket),
			log.String("region", cfg.S3.Region))
		return NewS3Storage(ctx, cfg)
	case "fs":
		logger.Info("Creating filesystem storage adapter", log.String("path", cfg.BasePath))
		return NewFileStorage(cfg.BasePath)
	default:
		return nil, fmt.Errorf("unsupported storage adapter: %s", cfg.Type)
	}
}
