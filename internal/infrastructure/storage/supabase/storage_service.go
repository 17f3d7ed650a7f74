package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/archivus/masterdocs/internal/domain/services"
	"github.com/google/uuid"
	supabase "github.com/nedpals/supabase-go"
)

type StorageService struct {
	client     *supabase.Client
	bucketName string
}

type Config struct {
	URL    string
	APIKey string
	Bucket string
}

func NewStorageService(config Config) (*StorageService, error) {
	if config.Bucket == "" {
		return nil, fmt.Errorf("supabase storage bucket is required")
	}

	client := supabase.CreateClient(config.URL, config.APIKey)
	if client == nil {
		return nil, fmt.Errorf("failed to create Supabase client")
	}

	return &StorageService{
		client:     client,
		bucketName: config.Bucket,
	}, nil
}

func (s *StorageService) Store(ctx context.Context, params services.StorageParams) (string, error) {
	// Generate unique file path
	fileExt := strings.ToLower(filepath.Ext(params.Filename))
	fileName := fmt.Sprintf("documents/%d-%s%s", time.Now().UnixMilli(), uuid.New().String()[:8], fileExt)

	// Read the file content
	content, err := io.ReadAll(params.FileReader)
	if err != nil {
		return "", fmt.Errorf("failed to read file content: %w", err)
	}

	fileOptions := &supabase.FileUploadOptions{
		ContentType: params.ContentType,
		Upsert:      false,
	}

	response := s.client.Storage.From(s.bucketName).Upload(fileName, bytes.NewReader(content), fileOptions)
	if response.Key == "" {
		return "", fmt.Errorf("failed to upload file to Supabase: %s", response.Message)
	}

	return fileName, nil
}

func (s *StorageService) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	content, err := s.client.Storage.From(s.bucketName).Download(path)
	if err != nil {
		if isNotFound(err.Error()) {
			return nil, services.ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to download file from Supabase: %w", err)
	}

	return io.NopCloser(bytes.NewReader(content)), nil
}

func (s *StorageService) Delete(ctx context.Context, path string) error {
	response := s.client.Storage.From(s.bucketName).Remove([]string{path})
	if response.Key == "" && response.Message != "" {
		if isNotFound(response.Message) {
			return services.ErrFileNotFound
		}
		return fmt.Errorf("failed to delete file from Supabase: %s", response.Message)
	}

	return nil
}

// Supabase reports a missing object only through its message text
func isNotFound(message string) bool {
	message = strings.ToLower(message)
	return strings.Contains(message, "not found") || strings.Contains(message, "404")
}
