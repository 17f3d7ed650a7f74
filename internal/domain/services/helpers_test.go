package services_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/archivus/masterdocs/internal/domain/services"
	"github.com/archivus/masterdocs/internal/infrastructure/auth/token"
	"github.com/archivus/masterdocs/internal/infrastructure/cache"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/archivus/masterdocs/internal/infrastructure/repositories/postgresql"
	"github.com/archivus/masterdocs/internal/infrastructure/repositories/postgresql/testutil"
	"github.com/archivus/masterdocs/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testPassword = "Str0ng!Pass"

var pdfContent = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")

// memoryStorage is an in-memory StorageService with per-path failure injection
type memoryStorage struct {
	mu        sync.Mutex
	files     map[string][]byte
	deleteErr map[string]error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{
		files:     make(map[string][]byte),
		deleteErr: make(map[string]error),
	}
}

func (m *memoryStorage) Store(ctx context.Context, params services.StorageParams) (string, error) {
	content, err := io.ReadAll(params.FileReader)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	path := fmt.Sprintf("mem/%s.pdf", uuid.New().String())
	m.files[path] = content
	return path, nil
}

func (m *memoryStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.files[path]
	if !ok {
		return nil, services.ErrFileNotFound
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (m *memoryStorage) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.deleteErr[path]; ok {
		return err
	}
	if _, ok := m.files[path]; !ok {
		return services.ErrFileNotFound
	}
	delete(m.files, path)
	return nil
}

func (m *memoryStorage) put(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = pdfContent
}

func (m *memoryStorage) has(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok
}

func (m *memoryStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

func (m *memoryStorage) failDelete(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteErr[path] = err
}

func (m *memoryStorage) clearFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteErr = make(map[string]error)
}

type testEnv struct {
	db        *testutil.TestDB
	repos     *postgresql.Repositories
	storage   *memoryStorage
	cache     *cache.RedisCacheService
	tokens    *token.Service
	activity  *services.ActivityService
	documents *services.DocumentService
	deletions *services.DeletionService
	users     *services.UserService
	summary   *services.SummaryService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	repos := postgresql.NewRepositories(db.DB)
	storage := newMemoryStorage()
	log := logger.NewForTesting()

	cacheService, err := cache.CreateCacheService(cache.MemoryURL)
	require.NoError(t, err)

	tokens, err := token.NewService(token.Config{Secret: "test-secret", Expiry: time.Hour})
	require.NoError(t, err)

	activity := services.NewActivityService(repos.ActivityRepo, log)
	documents := services.NewDocumentService(repos.DocumentRepo, repos.SubDocumentRepo, repos.CounterRepo,
		activity, storage, nil, log, services.DefaultDocumentServiceConfig())
	deletions := services.NewDeletionService(repos.DocumentRepo, repos.SubDocumentRepo, repos.DeletionJobRepo,
		activity, storage, nil, log)
	users := services.NewUserService(repos.UserRepo, activity, tokens, cacheService, log,
		services.UserServiceConfig{BcryptCost: 4})
	summary := services.NewSummaryService(repos.UserRepo, repos.DocumentRepo, repos.SubDocumentRepo, cacheService, log)

	return &testEnv{
		db:        db,
		repos:     repos,
		storage:   storage,
		cache:     cacheService,
		tokens:    tokens,
		activity:  activity,
		documents: documents,
		deletions: deletions,
		users:     users,
		summary:   summary,
	}
}

func (e *testEnv) Cleanup(t *testing.T) {
	e.cache.Close()
	e.db.Cleanup(t)
}

func actorFor(user *models.User) services.Actor {
	return services.ActorFromUser(user)
}

func pdfUpload(name string) *services.FileUpload {
	return &services.FileUpload{
		Reader:      bytes.NewReader(pdfContent),
		Filename:    name,
		ContentType: "application/pdf",
		Size:        int64(len(pdfContent)),
	}
}

func textUpload(name string) *services.FileUpload {
	body := "just some plain text pretending to be a pdf"
	return &services.FileUpload{
		Reader:      strings.NewReader(body),
		Filename:    name,
		ContentType: "application/pdf",
		Size:        int64(len(body)),
	}
}

// createDocument uploads a document as actor and fails the test on error
func (e *testEnv) createDocument(t *testing.T, actor *models.User, title string) *models.Document {
	t.Helper()
	document, err := e.documents.CreateDocument(context.Background(), services.CreateDocumentParams{
		Actor:    actorFor(actor),
		File:     pdfUpload(title + ".pdf"),
		Title:    title,
		Location: "Archive Room A",
	})
	require.NoError(t, err)
	return document
}

func (e *testEnv) createSubDocument(t *testing.T, actor *models.User, parent *models.Document, number string) *models.SubDocument {
	t.Helper()
	subDocument, err := e.documents.CreateSubDocument(context.Background(), services.CreateSubDocumentParams{
		Actor:            actorFor(actor),
		File:             pdfUpload("annex.pdf"),
		ParentDocumentID: parent.ID,
		SubDocumentNo:    number,
		Title:            "Annex " + number,
		Location:         "Archive Room A",
	})
	require.NoError(t, err)
	return subDocument
}

// activityDescriptions lists every ledger description, newest first
func (e *testEnv) activityDescriptions(t *testing.T) []string {
	t.Helper()
	var logs []models.ActivityLog
	require.NoError(t, e.db.Order("created_at DESC").Find(&logs).Error)
	descriptions := make([]string, 0, len(logs))
	for _, log := range logs {
		descriptions = append(descriptions, log.Description)
	}
	return descriptions
}
