package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/richat-partners/staffing-api/internal/config"
	"go.uber.org/zap"
)

// MinIOStorage implements Storage on an S3-compatible bucket
type MinIOStorage struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

// NewMinIOStorage connects to the configured endpoint and ensures the bucket exists
func NewMinIOStorage(ctx context.Context, cfg *config.MinIOConfig, logger *zap.Logger) (*MinIOStorage, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("minio endpoint and bucket are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Location}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("MinIO bucket created", zap.String("bucket", cfg.Bucket))
	}

	logger.Info("MinIO storage initialized",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket),
	)

	return &MinIOStorage{client: client, bucket: cfg.Bucket, logger: logger}, nil
}

// Put uploads data as the object named key
func (s *MinIOStorage) Put(ctx context.Context, key string, contentType string, data io.Reader) (int64, error) {
	objectName, err := CleanKey(key)
	if err != nil {
		return 0, err
	}

	info, err := s.client.PutObject(ctx, s.bucket, objectName, data, -1, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return 0, fmt.Errorf("failed to upload object: %w", err)
	}

	s.logger.Info("File uploaded to MinIO",
		zap.String("object", objectName),
		zap.String("bucket", s.bucket),
		zap.String("contentType", contentType),
		zap.Int64("size", info.Size),
	)

	return info.Size, nil
}

// Download streams the object named key
func (s *MinIOStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	objectName, err := CleanKey(key)
	if err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to download object: %w", err)
	}
	// GetObject is lazy; Stat surfaces a missing key before the caller starts reading
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to stat object: %w", err)
	}

	return obj, nil
}

// Delete removes the object named key. Missing objects are not an error.
func (s *MinIOStorage) Delete(ctx context.Context, key string) error {
	objectName, err := CleanKey(key)
	if err != nil {
		return err
	}

	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	s.logger.Info("File deleted from MinIO",
		zap.String("object", objectName),
		zap.String("bucket", s.bucket),
	)

	return nil
}
