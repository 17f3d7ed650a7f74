package s3

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/archivus/masterdocs/internal/domain/services"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageService keeps files in an S3-compatible bucket (AWS S3 or MinIO)
type StorageService struct {
	client     *minio.Client
	bucketName string
}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

func NewStorageService(ctx context.Context, config Config) (*StorageService, error) {
	if config.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
		Region: config.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, config.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", config.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, config.Bucket, minio.MakeBucketOptions{Region: config.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", config.Bucket, err)
		}
	}

	return &StorageService{
		client:     client,
		bucketName: config.Bucket,
	}, nil
}

func (s *StorageService) Store(ctx context.Context, params services.StorageParams) (string, error) {
	fileExt := strings.ToLower(filepath.Ext(params.Filename))
	objectName := fmt.Sprintf("documents/%d-%s%s", time.Now().UnixMilli(), uuid.New().String()[:8], fileExt)

	size := params.Size
	if size <= 0 {
		size = -1
	}

	_, err := s.client.PutObject(ctx, s.bucketName, objectName, params.FileReader, size, minio.PutObjectOptions{
		ContentType: params.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return objectName, nil
}

func (s *StorageService) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	object, err := s.client.GetObject(ctx, s.bucketName, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapError(err, "failed to download file from S3")
	}

	// GetObject is lazy; Stat surfaces a missing key now instead of on first Read
	if _, err := object.Stat(); err != nil {
		object.Close()
		return nil, mapError(err, "failed to download file from S3")
	}

	return object, nil
}

func (s *StorageService) Delete(ctx context.Context, path string) error {
	// S3 deletes of absent keys succeed, so check first to report them
	if _, err := s.client.StatObject(ctx, s.bucketName, path, minio.StatObjectOptions{}); err != nil {
		return mapError(err, "failed to stat file in S3")
	}

	if err := s.client.RemoveObject(ctx, s.bucketName, path, minio.RemoveObjectOptions{}); err != nil {
		return mapError(err, "failed to delete file from S3")
	}

	return nil
}

func mapError(err error, message string) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return services.ErrFileNotFound
	}
	return fmt.Errorf("%s: %w", message, err)
}
