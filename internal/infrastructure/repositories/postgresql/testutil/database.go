package testutil

import (
	"fmt"
	"os"
	"testing"

	"github.com/archivus/masterdocs/internal/infrastructure/database"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// TestDB wraps the database for testing
type TestDB struct {
	*database.DB
}

// NewTestDB creates a new test database connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	// Use DATABASE_URL_TEST if available (for Docker), otherwise SQLite
	databaseURL := os.Getenv("DATABASE_URL_TEST")
	if databaseURL == "" {
		// A named in-memory database per test keeps tests isolated
		databaseURL = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	} else {
		t.Logf("Using PostgreSQL database for testing: %s", databaseURL)
	}

	db, err := database.New(databaseURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Auto-migrate all models
	if err := db.AutoMigrate(models.GetAllModels()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return &TestDB{DB: db}
}

// Cleanup closes the test database
func (db *TestDB) Cleanup(t *testing.T) {
	t.Helper()
	if err := db.Close(); err != nil {
		t.Errorf("Failed to close test database: %v", err)
	}
}

// CreateTestUser creates an approved, active user at the given level
func (db *TestDB) CreateTestUser(t *testing.T, level models.UserLevel) *models.User {
	t.Helper()

	suffix := uuid.New().String()[:8]
	user := &models.User{
		ID:           uuid.New(),
		Username:     fmt.Sprintf("user-%s", suffix),
		Email:        fmt.Sprintf("test-%s@example.com", suffix),
		PasswordHash: "hashedpassword",
		Name:         "Test User",
		UserLevel:    level,
		IsApproved:   true,
		IsActive:     true,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// CreateTestDocument inserts a document with a fixed number, bypassing the counter
func (db *TestDB) CreateTestDocument(t *testing.T, creator *models.User, documentNo string) *models.Document {
	t.Helper()

	document := &models.Document{
		ID:         uuid.New(),
		DocumentNo: documentNo,
		Title:      "Test Document",
		Location:   "Archive Room A",
		Status:     models.DocStatusActive,
		CreatedBy:  creator.ID,
		FilePath:   fmt.Sprintf("uploads/%s.pdf", uuid.New().String()[:8]),
		Metadata: models.JSONB{
			models.MetaOriginalName: "test-document.pdf",
			models.MetaMimeType:     "application/pdf",
			models.MetaSize:         1024,
		},
	}

	if err := db.Omit("Creator", "SubDocuments").Create(document).Error; err != nil {
		t.Fatalf("Failed to create test document: %v", err)
	}

	return document
}

// CreateTestSubDocument creates a sub-document under parent
func (db *TestDB) CreateTestSubDocument(t *testing.T, parent *models.Document, subDocumentNo string) *models.SubDocument {
	t.Helper()

	subDocument := &models.SubDocument{
		ID:               uuid.New(),
		SubDocumentNo:    subDocumentNo,
		ParentDocumentID: parent.ID,
		Title:            "Test Sub Document",
		Location:         "Archive Room B",
		Status:           models.DocStatusActive,
		FilePath:         fmt.Sprintf("uploads/%s.pdf", uuid.New().String()[:8]),
	}

	if err := db.Create(subDocument).Error; err != nil {
		t.Fatalf("Failed to create test sub-document: %v", err)
	}

	return subDocument
}
