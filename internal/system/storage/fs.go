package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/complyhub/compliance-management-api/internal/system/log"
)

// FileStorage implements ObjectStorage on the local filesystem.
type FileStorage struct {
	basePath string
	logger   *log.Logger
}

// NewFileStorage creates the base directory if needed.
func NewFileStorage(basePath string) (*FileStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base path: %w", err)
	}
	return &FileStorage{
		basePath: basePath,
		logger:   log.GetLogger().With(log.String(log.LoggerKeyComponentName, "FileStorage")),
	}, nil
}

func (s *FileStorage) Put(ctx context.Context, key string, reader io.Reader, metadata ObjectMetadata) error {
	objectPath, err := s.objectPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(objectPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(objectPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	written, err := io.Copy(file, reader)
	if err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	s.logger.WithContext(ctx).Debug("Object stored",
		log.String("key", key),
		log.Any("size_bytes", written),
		log.String("content_type", metadata.ContentType))
	return nil
}

func (s *FileStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	objectPath, err := s.objectPath(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(objectPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open object: %w", err)
	}
	return file, nil
}

func (s *FileStorage) Delete(_ context.Context, key string) error {
	objectPath, err := s.objectPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(objectPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (s *FileStorage) Exists(_ context.Context, key string) (bool, error) {
	objectPath, err := s.objectPath(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(objectPath)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// objectPath resolves key under basePath and rejects keys escaping it.
func (s *FileStorage) objectPath(key string) (string, error) {
	cleaned := filepath.Clean("/" + key)
	full := filepath.Join(s.basePath, cleaned)
	base := filepath.Clean(s.basePath)
	if full != base && !strings.HasPrefix(full, base+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid object key: %s", key)
	}
	return full, nil
}
