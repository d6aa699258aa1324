package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/visionex-project/pdftrans/pkg/pipeline"
)

// Client stores uploaded documents and rendered artifacts.
// ReadBytes fails with pipeline.ErrResourceNotFound for a missing object.
type Client interface {
	SaveBytes(ctx context.Context, bucketName string, objectName string, data []byte) error
	ReadBytes(ctx context.Context, bucketName string, objectName string) ([]byte, error)
}

type gcsClient struct {
	storageClient *storage.Client
}

func New(storageClient *storage.Client) Client {
	return &gcsClient{storageClient: storageClient}
}

func (s *gcsClient) SaveBytes(ctx context.Context, bucketName string, objectName string, data []byte) error {
	writer := s.storageClient.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	writer.ContentType = contentType(objectName)

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (s *gcsClient) ReadBytes(ctx context.Context, bucketName string, objectName string) ([]byte, error) {
	reader, err := s.storageClient.Bucket(bucketName).Object(objectName).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return nil, pipeline.NotFound("object %s/%s", bucketName, objectName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open GCS object: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read GCS object: %w", err)
	}
	return data, nil
}

// localClient keeps objects under <root>/<bucket>/<object>, for development without GCP.
type localClient struct {
	root string
}

func NewLocal(root string) Client {
	return &localClient{root: root}
}

func (s *localClient) SaveBytes(_ context.Context, bucketName string, objectName string, data []byte) error {
	path, err := s.path(bucketName, objectName)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (s *localClient) ReadBytes(_ context.Context, bucketName string, objectName string) ([]byte, error) {
	path, err := s.path(bucketName, objectName)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, pipeline.NotFound("object %s/%s", bucketName, objectName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func (s *localClient) path(bucketName string, objectName string) (string, error) {
	for _, part := range []string{bucketName, objectName} {
		if part == "" || strings.Contains(part, "..") || filepath.IsAbs(part) {
			return "", fmt.Errorf("invalid object path %q", part)
		}
	}
	return filepath.Join(s.root, bucketName, filepath.FromSlash(objectName)), nil
}

func contentType(objectName string) string {
	switch strings.ToLower(filepath.Ext(objectName)) {
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".json":
		return "application/json"
	}
	return "application/octet-stream"
}
