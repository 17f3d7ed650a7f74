package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/archivus/masterdocs/internal/domain/services"
	"github.com/google/uuid"
)

var errOutsideBase = errors.New("path escapes storage directory")

type StorageService struct {
	basePath string
}

func NewStorageService(basePath string) (*StorageService, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &StorageService{
		basePath: basePath,
	}, nil
}

func (s *StorageService) Store(ctx context.Context, params services.StorageParams) (string, error) {
	// Generate unique filename
	fileExt := strings.ToLower(filepath.Ext(params.Filename))
	fileName := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.New().String()[:8], fileExt)
	filePath := filepath.Join(s.basePath, fileName)

	// Create the file
	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	// Copy content to file
	if _, err := io.Copy(file, params.FileReader); err != nil {
		file.Close()
		os.Remove(filePath)
		return "", fmt.Errorf("failed to write file content: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("failed to write file content: %w", err)
	}

	return fileName, nil
}

func (s *StorageService) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

func (s *StorageService) Delete(ctx context.Context, path string) error {
	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return services.ErrFileNotFound
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// Exists reports whether a file is stored at path
func (s *StorageService) Exists(ctx context.Context, path string) (bool, error) {
	fullPath, err := s.resolve(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(fullPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// resolve joins path onto the base directory and refuses anything that
// would land outside it
func (s *StorageService) resolve(path string) (string, error) {
	fullPath := filepath.Join(s.basePath, filepath.Clean("/"+path))
	rel, err := filepath.Rel(s.basePath, fullPath)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %s", errOutsideBase, path)
	}
	return fullPath, nil
}
