package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/archivus/masterdocs/internal/app/middleware"
	"github.com/archivus/masterdocs/internal/domain/services"
	"github.com/archivus/masterdocs/internal/infrastructure/auth/token"
	"github.com/archivus/masterdocs/internal/infrastructure/cache"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/archivus/masterdocs/internal/infrastructure/repositories/postgresql"
	"github.com/archivus/masterdocs/internal/infrastructure/repositories/postgresql/testutil"
	"github.com/archivus/masterdocs/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "Str0ng!Pass"

var pdfContent = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")

var errDiskFailure = errors.New("disk failure")

// memoryStorage keeps uploads in memory and can fail deletes per path
type memoryStorage struct {
	mu        sync.Mutex
	files     map[string][]byte
	deleteErr map[string]error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{files: make(map[string][]byte), deleteErr: make(map[string]error)}
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

func (m *memoryStorage) put(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = content
}

func (m *memoryStorage) failDelete(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteErr[path] = err
}

// testAPI is the full route table on top of real services
type testAPI struct {
	router  *gin.Engine
	db      *testutil.TestDB
	storage *memoryStorage
	tokens  *token.Service
	users   *services.UserService
}

func newTestAPI(t *testing.T, loginLimit int) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	t.Cleanup(func() { db.Cleanup(t) })

	repos := postgresql.NewRepositories(db.DB)
	storage := newMemoryStorage()
	log := logger.NewForTesting()

	cacheService, err := cache.CreateCacheService(cache.MemoryURL)
	require.NoError(t, err)
	t.Cleanup(func() { cacheService.Close() })

	tokens, err := token.NewService(token.Config{Secret: "test-secret", Expiry: time.Hour})
	require.NoError(t, err)

	activity := services.NewActivityService(repos.ActivityRepo, log)
	users := services.NewUserService(repos.UserRepo, activity, tokens, cacheService, log,
		services.UserServiceConfig{BcryptCost: 4})
	documents := services.NewDocumentService(repos.DocumentRepo, repos.SubDocumentRepo, repos.CounterRepo,
		activity, storage, nil, log, services.DefaultDocumentServiceConfig())
	deletions := services.NewDeletionService(repos.DocumentRepo, repos.SubDocumentRepo, repos.DeletionJobRepo,
		activity, storage, nil, log)
	summary := services.NewSummaryService(repos.UserRepo, repos.DocumentRepo, repos.SubDocumentRepo, cacheService, log)

	config := &HandlerConfig{
		MaxPageSize:       100,
		DefaultPageSize:   20,
		MaxFileSize:       10 * 1024 * 1024,
		EnableDebugErrors: true,
		Environment:       "test",
	}

	router := gin.New()
	router.Use(middleware.SecurityHeaders())

	v1 := router.Group("/api/v1")
	authHandler := NewAuthHandler(users, summary, config, log)
	authHandler.RegisterPublicRoutes(v1, middleware.LoginRateLimit(cacheService, loginLimit, time.Minute, log))

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(users), middleware.NoStoreForNonAdmins())
	authHandler.RegisterRoutes(protected)
	NewUserHandler(users, summary, config, log).RegisterRoutes(protected)
	NewDocumentHandler(documents, deletions, summary, config, log).RegisterRoutes(protected)
	NewActivityHandler(activity, config, log).RegisterRoutes(protected)

	return &testAPI{router: router, db: db, storage: storage, tokens: tokens, users: users}
}

// userWithToken creates an approved, active user and a bearer token for it
func (api *testAPI) userWithToken(t *testing.T, level models.UserLevel) (*models.User, string) {
	t.Helper()
	user := api.db.CreateTestUser(t, level)
	signed, _, err := api.tokens.GenerateToken(user)
	require.NoError(t, err)
	return user, signed
}

func (api *testAPI) do(method, url string, body interface{}, bearer string) *httptest.ResponseRecorder {
	var reqBody bytes.Buffer
	if body != nil {
		json.NewEncoder(&reqBody).Encode(body)
	}

	req := httptest.NewRequest(method, url, &reqBody)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	return w
}

// upload posts a multipart form with content as the document field
func (api *testAPI) upload(t *testing.T, url, bearer, filename string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="document"; filename="%s"`, filename))
	header.Set("Content-Type", "application/pdf")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+bearer)

	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return response
}

func documentFields() map[string]string {
	return map[string]string{
		"title":     "Land Title Deed",
		"location":  "Archive Room A",
		"longitude": "100.5018",
		"latitude":  "13.7563",
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", services.ErrDocumentNotFound, http.StatusNotFound, "not_found"},
		{"wrapped not found", fmt.Errorf("lookup: %w", services.ErrUserNotFound), http.StatusNotFound, "not_found"},
		{"forbidden", services.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"pending", services.ErrAdminPendingApproval, http.StatusForbidden, "pending_approval"},
		{"deactivated", services.ErrAccountDeactivated, http.StatusForbidden, "account_deactivated"},
		{"credentials", services.ErrInvalidCredentials, http.StatusUnauthorized, "unauthorized"},
		{"duplicate", services.ErrDuplicateSubDocumentNo, http.StatusConflict, "conflict"},
		{"too large", services.ErrDocumentTooLarge, http.StatusRequestEntityTooLarge, "file_too_large"},
		{"not pdf", services.ErrUnsupportedFormat, http.StatusUnsupportedMediaType, "unsupported_format"},
		{"last admin", services.ErrLastAdmin, http.StatusBadRequest, "invalid_request"},
		{"partial", &services.PartialDeletionError{Err: errDiskFailure}, http.StatusInternalServerError, "partial_deletion"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := errorStatus(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestPaginationParsing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewBaseHandler(&HandlerConfig{MaxPageSize: 50, DefaultPageSize: 20}, logger.NewForTesting())
	router := gin.New()
	router.GET("/test", func(c *gin.Context) {
		page, pageSize := handler.ParsePagination(c)
		c.JSON(http.StatusOK, gin.H{"page": page, "page_size": pageSize})
	})

	tests := []struct {
		query    string
		page     float64
		pageSize float64
	}{
		{"", 1, 20},
		{"?page=3&per_page=10", 3, 10},
		{"?page=0&per_page=500", 1, 50},
		{"?page=abc&per_page=-1", 1, 20},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test"+tt.query, nil))
		require.Equal(t, http.StatusOK, w.Code)
		response := decode(t, w)
		assert.Equal(t, tt.page, response["page"], tt.query)
		assert.Equal(t, tt.pageSize, response["page_size"], tt.query)
	}
}

func TestCalculateTotalPages(t *testing.T) {
	assert.Equal(t, 1, calculateTotalPages(20, 0))
	assert.Equal(t, 1, calculateTotalPages(20, 20))
	assert.Equal(t, 2, calculateTotalPages(20, 21))
	assert.Equal(t, 1, calculateTotalPages(0, 100))
}

func TestAuthentication(t *testing.T) {
	api := newTestAPI(t, 0)

	t.Run("missing header", func(t *testing.T) {
		w := api.do(http.MethodGet, "/api/v1/documents", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "missing_authorization", decode(t, w)["error"])
	})

	t.Run("garbage token", func(t *testing.T) {
		w := api.do(http.MethodGet, "/api/v1/documents", nil, "not-a-token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "invalid_token", decode(t, w)["error"])
	})

	t.Run("deactivated user is refused on the next request", func(t *testing.T) {
		user, bearer := api.userWithToken(t, models.UserLevelLevel2)
		require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/auth/profile", nil, bearer).Code)

		require.NoError(t, api.db.Model(user).Update("is_active", false).Error)
		w := api.do(http.MethodGet, "/api/v1/auth/profile", nil, bearer)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "account_deactivated", decode(t, w)["error"])
	})

	t.Run("logout revokes the token", func(t *testing.T) {
		_, bearer := api.userWithToken(t, models.UserLevelLevel3)
		require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/v1/auth/logout", nil, bearer).Code)

		w := api.do(http.MethodGet, "/api/v1/auth/profile", nil, bearer)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "token_revoked", decode(t, w)["error"])
	})
}

func TestSecurityHeaders(t *testing.T) {
	api := newTestAPI(t, 0)

	w := api.do(http.MethodGet, "/api/v1/documents", nil, "")
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-referrer", w.Header().Get("Referrer-Policy"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'self'")
	assert.Empty(t, w.Header().Get("Pragma"), "anonymous responses skip the no-cache set")

	_, clerk := api.userWithToken(t, models.UserLevelLevel2)
	w = api.do(http.MethodGet, "/api/v1/documents", nil, clerk)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store, must-revalidate", w.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", w.Header().Get("Pragma"))
	assert.Equal(t, "0", w.Header().Get("Expires"))

	_, admin := api.userWithToken(t, models.UserLevelAdmin)
	w = api.do(http.MethodGet, "/api/v1/documents", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Cache-Control"))
	assert.Empty(t, w.Header().Get("Pragma"))
	assert.Empty(t, w.Header().Get("Expires"))
}

func TestSignupAndLogin(t *testing.T) {
	api := newTestAPI(t, 0)

	t.Run("clerk signs up and logs in", func(t *testing.T) {
		w := api.do(http.MethodPost, "/api/v1/auth/signup", gin.H{
			"username":   "clerk",
			"email":      "Clerk@Example.com",
			"password":   testPassword,
			"user_level": "level2",
		}, "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.NotEmpty(t, decode(t, w)["token"])

		w = api.do(http.MethodPost, "/api/v1/auth/login", gin.H{"username": "clerk", "password": testPassword}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		response := decode(t, w)
		assert.NotEmpty(t, response["token"])
		user := response["user"].(map[string]interface{})
		assert.Equal(t, "clerk@example.com", user["email"])
		assert.NotContains(t, user, "password_hash")
	})

	t.Run("admin signup waits for approval", func(t *testing.T) {
		w := api.do(http.MethodPost, "/api/v1/auth/signup", gin.H{
			"username":   "boss",
			"email":      "boss@example.com",
			"password":   testPassword,
			"user_level": "admin",
		}, "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Empty(t, decode(t, w)["token"])

		w = api.do(http.MethodPost, "/api/v1/auth/login", gin.H{"username": "boss", "password": testPassword}, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "pending_approval", decode(t, w)["error"])
	})

	t.Run("wrong password", func(t *testing.T) {
		w := api.do(http.MethodPost, "/api/v1/auth/login", gin.H{"username": "clerk", "password": "nope"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("weak password is rejected", func(t *testing.T) {
		w := api.do(http.MethodPost, "/api/v1/auth/signup", gin.H{
			"username": "weak",
			"email":    "weak@example.com",
			"password": "password",
		}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSummaryTracksSessions(t *testing.T) {
	api := newTestAPI(t, 0)
	_, viewer := api.userWithToken(t, models.UserLevelLevel3)

	activeSessions := func() interface{} {
		w := api.do(http.MethodGet, "/api/v1/users/summary", nil, viewer)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decode(t, w)["active_sessions"]
	}

	assert.Equal(t, float64(0), activeSessions())

	w := api.do(http.MethodPost, "/api/v1/auth/signup", gin.H{
		"username":   "clerk",
		"email":      "clerk@example.com",
		"password":   testPassword,
		"user_level": "level2",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(http.MethodPost, "/api/v1/auth/login", gin.H{"username": "clerk", "password": testPassword}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	clerk := decode(t, w)["token"].(string)

	assert.Equal(t, float64(1), activeSessions())

	w = api.do(http.MethodPost, "/api/v1/auth/logout", nil, clerk)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, float64(0), activeSessions())
}

func TestLoginRateLimit(t *testing.T) {
	api := newTestAPI(t, 2)
	credentials := gin.H{"username": "nobody", "password": "wrong"}

	for i := 0; i < 2; i++ {
		w := api.do(http.MethodPost, "/api/v1/auth/login", credentials, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := api.do(http.MethodPost, "/api/v1/auth/login", credentials, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate_limited", decode(t, w)["error"])
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestDocumentAccessByLevel(t *testing.T) {
	api := newTestAPI(t, 0)
	admin, _ := api.userWithToken(t, models.UserLevelAdmin)
	_, viewer := api.userWithToken(t, models.UserLevelLevel3)
	_, clerk := api.userWithToken(t, models.UserLevelLevel2)
	document := api.db.CreateTestDocument(t, admin, "MD-000001")

	tests := []struct {
		name   string
		method string
		url    string
		bearer string
	}{
		{"viewer cannot upload", http.MethodPost, "/api/v1/documents", viewer},
		{"viewer cannot download", http.MethodGet, "/api/v1/documents/download/" + document.ID.String(), viewer},
		{"viewer cannot edit", http.MethodPatch, "/api/v1/documents/" + document.ID.String() + "/info", viewer},
		{"viewer cannot delete", http.MethodDelete, "/api/v1/documents/" + document.ID.String(), viewer},
		{"clerk cannot delete", http.MethodDelete, "/api/v1/documents/" + document.ID.String(), clerk},
		{"clerk cannot delete sub-documents", http.MethodDelete, "/api/v1/documents/sub-document/" + uuid.New().String(), clerk},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(tt.method, tt.url, gin.H{}, tt.bearer)
			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.Equal(t, "insufficient_level", decode(t, w)["error"])
		})
	}

	t.Run("viewer can read", func(t *testing.T) {
		w := api.do(http.MethodGet, "/api/v1/documents/"+document.ID.String(), nil, viewer)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "MD-000001", decode(t, w)["document_no"])
	})
}

func TestDocumentLifecycle(t *testing.T) {
	api := newTestAPI(t, 0)
	_, clerk := api.userWithToken(t, models.UserLevelLevel2)
	_, admin := api.userWithToken(t, models.UserLevelAdmin)

	w := api.upload(t, "/api/v1/documents", clerk, "deed.pdf", pdfContent, documentFields())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "MD-000001", created["document_no"])
	assert.Equal(t, 100.5018, created["longitude"])
	documentID := created["id"].(string)

	t.Run("next sub number", func(t *testing.T) {
		w := api.do(http.MethodGet, "/api/v1/documents/"+documentID+"/next-sub-number", nil, clerk)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "SUB-001", decode(t, w)["sub_document_no"])
	})

	t.Run("sub-document upload", func(t *testing.T) {
		fields := documentFields()
		fields["parent_document_id"] = documentID
		fields["sub_document_no"] = "sub-1"
		w := api.upload(t, "/api/v1/documents/sub-document", clerk, "annex.pdf", pdfContent, fields)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, "SUB-001", decode(t, w)["sub_document_no"])

		w = api.upload(t, "/api/v1/documents/sub-document", clerk, "annex.pdf", pdfContent, fields)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("list", func(t *testing.T) {
		w := api.do(http.MethodGet, "/api/v1/documents?status=active&q=deed", nil, clerk)
		require.Equal(t, http.StatusOK, w.Code)
		response := decode(t, w)
		assert.Equal(t, float64(1), response["total"])

		w = api.do(http.MethodGet, "/api/v1/documents?status=bogus", nil, clerk)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("patch info clears only what is sent", func(t *testing.T) {
		w := api.do(http.MethodPatch, "/api/v1/documents/"+documentID+"/info", gin.H{
			"longitude":   nil,
			"description": "Signed copy",
		}, clerk)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		response := decode(t, w)
		assert.Nil(t, response["longitude"])
		assert.Equal(t, 13.7563, response["latitude"])
		assert.Equal(t, "Signed copy", response["description"])
		assert.Equal(t, "Land Title Deed", response["title"])
	})

	t.Run("download", func(t *testing.T) {
		w := api.do(http.MethodGet, "/api/v1/documents/download/"+documentID, nil, clerk)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, pdfContent, w.Body.Bytes())
		assert.Equal(t, "no-store, must-revalidate", w.Header().Get("Cache-Control"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

		w = api.do(http.MethodGet, "/api/v1/documents/download/"+documentID, nil, admin)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Cache-Control"))
	})

	t.Run("delete cascades", func(t *testing.T) {
		w := api.do(http.MethodDelete, "/api/v1/documents/"+documentID+"?mode=hard", nil, admin)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		job := decode(t, w)["job"].(map[string]interface{})
		assert.Equal(t, string(models.DeletionCompleted), job["status"])

		w = api.do(http.MethodGet, "/api/v1/documents/"+documentID, nil, clerk)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDownloadWithoutRecordedSize(t *testing.T) {
	api := newTestAPI(t, 0)
	admin, adminToken := api.userWithToken(t, models.UserLevelAdmin)

	document := api.db.CreateTestDocument(t, admin, "MD-000001")
	api.storage.put(document.FilePath, pdfContent)
	require.NoError(t, api.db.Model(document).Update("metadata", models.JSONB{
		models.MetaOriginalName: "legacy.pdf",
	}).Error)

	w := api.do(http.MethodGet, "/api/v1/documents/download/"+document.ID.String(), nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, w.Header().Get("Content-Length"))
	assert.Equal(t, pdfContent, w.Body.Bytes())
}

func TestUploadValidation(t *testing.T) {
	api := newTestAPI(t, 0)
	_, clerk := api.userWithToken(t, models.UserLevelLevel1)

	t.Run("not a pdf", func(t *testing.T) {
		w := api.upload(t, "/api/v1/documents", clerk, "notes.pdf", []byte("plain text notes"), documentFields())
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("missing title", func(t *testing.T) {
		fields := documentFields()
		delete(fields, "title")
		w := api.upload(t, "/api/v1/documents", clerk, "deed.pdf", pdfContent, fields)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad coordinate", func(t *testing.T) {
		fields := documentFields()
		fields["latitude"] = "north"
		w := api.upload(t, "/api/v1/documents", clerk, "deed.pdf", pdfContent, fields)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown parent", func(t *testing.T) {
		fields := documentFields()
		fields["parent_document_id"] = uuid.New().String()
		fields["sub_document_no"] = "SUB-001"
		w := api.upload(t, "/api/v1/documents/sub-document", clerk, "annex.pdf", pdfContent, fields)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPartialDeletionResponse(t *testing.T) {
	api := newTestAPI(t, 0)
	admin, bearer := api.userWithToken(t, models.UserLevelAdmin)
	document := api.db.CreateTestDocument(t, admin, "MD-000001")
	child := api.db.CreateTestSubDocument(t, document, "SUB-001")
	api.storage.failDelete(child.FilePath, errDiskFailure)

	w := api.do(http.MethodDelete, "/api/v1/documents/"+document.ID.String(), nil, bearer)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	response := decode(t, w)
	assert.Equal(t, "partial_deletion", response["error"])
	details := response["details"].(map[string]interface{})
	assert.Equal(t, document.ID.String(), details["document_id"])
	assert.Equal(t, services.StepChildFile, details["step"])
	assert.Equal(t, float64(0), details["children_processed"])
	assert.Equal(t, float64(1), details["children_total"])
}

func TestUserRoutes(t *testing.T) {
	api := newTestAPI(t, 0)
	_, admin := api.userWithToken(t, models.UserLevelAdmin)
	viewer, viewerToken := api.userWithToken(t, models.UserLevelLevel3)
	other, _ := api.userWithToken(t, models.UserLevelLevel2)

	t.Run("listing is admin only", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/api/v1/users", nil, viewerToken).Code)

		w := api.do(http.MethodGet, "/api/v1/users?per_page=2", nil, admin)
		require.Equal(t, http.StatusOK, w.Code)
		response := decode(t, w)
		assert.Equal(t, float64(3), response["total"])
		assert.Equal(t, float64(2), response["total_pages"])
	})

	t.Run("self or admin", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/users/"+viewer.ID.String(), nil, viewerToken).Code)
		assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/api/v1/users/"+other.ID.String(), nil, viewerToken).Code)
		assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/users/"+other.ID.String(), nil, admin).Code)
	})

	t.Run("summary is open to every level", func(t *testing.T) {
		w := api.do(http.MethodGet, "/api/v1/users/summary", nil, viewerToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(3), decode(t, w)["total_users"])
	})

	t.Run("activation requires the flag", func(t *testing.T) {
		w := api.do(http.MethodPatch, "/api/v1/users/"+other.ID.String()+"/activation", gin.H{}, admin)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = api.do(http.MethodPatch, "/api/v1/users/"+other.ID.String()+"/activation", gin.H{"active": false}, admin)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, false, decode(t, w)["is_active"])
	})

	t.Run("sessions", func(t *testing.T) {
		w := api.do(http.MethodGet, "/api/v1/users/sessions", nil, admin)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode(t, w)["sessions"], 3)
	})
}

func TestActivityLogs(t *testing.T) {
	api := newTestAPI(t, 0)
	_, admin := api.userWithToken(t, models.UserLevelAdmin)
	_, clerk := api.userWithToken(t, models.UserLevelLevel1)

	require.Equal(t, http.StatusCreated, api.upload(t, "/api/v1/documents", clerk, "deed.pdf", pdfContent, documentFields()).Code)
	require.Equal(t, http.StatusCreated, api.upload(t, "/api/v1/documents", admin, "deed.pdf", pdfContent, documentFields()).Code)

	w := api.do(http.MethodGet, "/api/v1/activity-logs", nil, clerk)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total_count"])

	w = api.do(http.MethodGet, "/api/v1/activity-logs?limit=1", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	response := decode(t, w)
	assert.Equal(t, float64(2), response["total_count"])
	assert.Equal(t, true, response["has_more"])
	assert.Len(t, response["logs"], 1)
}
