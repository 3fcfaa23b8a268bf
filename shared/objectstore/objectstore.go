package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Object is a stored object reference: the key used for later deletion and a
// retrievable URL
type Object struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Client is the narrow object-storage capability the artifact pipeline and
// upload handlers depend on
type Client interface {
	Upload(ctx context.Context, data []byte, contentType string) (Object, error)
	Delete(ctx context.Context, id string) error
}

// Config holds MinIO connection and bucket configuration
type Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Prefix        string
	UseSSL        bool
	PublicBaseURL string
}

// MinioClient implements Client on top of a MinIO / S3-compatible endpoint
type MinioClient struct {
	client *minio.Client
	config *Config
	logger *slog.Logger
}

// NewMinioClient connects to the object storage endpoint and ensures the
// configured bucket exists
func NewMinioClient(config *Config, logger *slog.Logger) (*MinioClient, error) {
	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, config.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %q: %w", config.Bucket, err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, config.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %q: %w", config.Bucket, err)
		}
		logger.Info("Created storage bucket",
			slog.String("bucket", config.Bucket),
		)
	}

	logger.Info("Object storage client initialized",
		slog.String("endpoint", config.Endpoint),
		slog.String("bucket", config.Bucket),
	)

	return &MinioClient{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

// Upload stores the given bytes under a fresh key and returns its reference
func (m *MinioClient) Upload(ctx context.Context, data []byte, contentType string) (Object, error) {
	key := path.Join(m.config.Prefix, uuid.New().String()+extensionFor(contentType))

	_, err := m.client.PutObject(ctx, m.config.Bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return Object{}, fmt.Errorf("failed to upload object %q: %w", key, err)
	}

	m.logger.Debug("Object uploaded",
		slog.String("key", key),
		slog.Int("size", len(data)),
		slog.String("content_type", contentType),
	)

	return Object{
		ID:  key,
		URL: m.publicURL(key),
	}, nil
}

// Delete removes the object stored under id. Deleting an unknown id is
// reported as an error so callers can decide whether to retry
func (m *MinioClient) Delete(ctx context.Context, id string) error {
	// RemoveObject is a no-op for missing keys, so probe first
	_, err := m.client.StatObject(ctx, m.config.Bucket, id, minio.StatObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to stat object %q: %w", id, err)
	}

	if err := m.client.RemoveObject(ctx, m.config.Bucket, id, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %q: %w", id, err)
	}

	m.logger.Debug("Object deleted",
		slog.String("key", id),
	)

	return nil
}

func (m *MinioClient) publicURL(key string) string {
	base := strings.TrimSuffix(m.config.PublicBaseURL, "/")
	if base == "" {
		scheme := "http"
		if m.config.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, m.config.Endpoint, m.config.Bucket)
	}
	return base + "/" + key
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	default:
		return ""
	}
}
