package s3

import (
	"errors"
	"testing"

	"github.com/archivus/masterdocs/internal/domain/services"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		notFound bool
	}{
		{"missing key", minio.ErrorResponse{Code: "NoSuchKey"}, true},
		{"head not found", minio.ErrorResponse{Code: "NotFound"}, true},
		{"access denied", minio.ErrorResponse{Code: "AccessDenied"}, false},
		{"transport", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapError(tt.err, "op")
			assert.Equal(t, tt.notFound, errors.Is(err, services.ErrFileNotFound))
		})
	}
}
