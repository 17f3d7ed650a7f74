package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// External service interfaces that our domain services depend on

// ErrFileNotFound is returned by StorageService implementations for absent blobs.
// It wraps os.ErrNotExist so callers may test for either.
var ErrFileNotFound = fmt.Errorf("file not found: %w", os.ErrNotExist)

// StorageService interface for file storage operations (local disk, Supabase Storage or S3)
type StorageService interface {
	// Store persists the stream under a generated unique name and returns its path
	Store(ctx context.Context, params StorageParams) (string, error)
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete returns ErrFileNotFound when nothing is stored at path
	Delete(ctx context.Context, path string) error
}

// StorageParams contains parameters for storing files
type StorageParams struct {
	FileReader  io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// SearchIndexer keeps an external full-text index of master documents.
// Every call is best effort; the database stays the source of truth.
type SearchIndexer interface {
	IndexDocument(ctx context.Context, document *models.Document) error
	DeleteDocument(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
	Healthy() bool
}

// SearchResult is a single full-text hit
type SearchResult struct {
	ID          uuid.UUID        `json:"id"`
	DocumentNo  string           `json:"document_no"`
	Title       string           `json:"title"`
	Location    string           `json:"location"`
	Description string           `json:"description"`
	Status      models.DocStatus `json:"status"`
}

// TokenService issues and validates bearer tokens
type TokenService interface {
	GenerateToken(user *models.User) (string, *TokenClaims, error)
	ValidateToken(token string) (*TokenClaims, error)
}

// TokenClaims is what a validated token resolves to
type TokenClaims struct {
	TokenID   string           `json:"jti"`
	UserID    uuid.UUID        `json:"id"`
	Username  string           `json:"username"`
	UserLevel models.UserLevel `json:"user_level"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// Actor identifies the authenticated caller of a service operation
type Actor struct {
	ID       uuid.UUID
	Username string
	Level    models.UserLevel
}

// ActorFromUser builds an Actor for a loaded user
func ActorFromUser(user *models.User) Actor {
	return Actor{ID: user.ID, Username: user.Username, Level: user.UserLevel}
}

// RequestInfo carries the requester details recorded in the activity ledger
type RequestInfo struct {
	IPAddress string
	UserAgent string
}
