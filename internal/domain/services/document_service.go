package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/archivus/masterdocs/internal/domain/numbering"
	"github.com/archivus/masterdocs/internal/domain/repositories"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/archivus/masterdocs/pkg/logger"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrDocumentNotFound       = errors.New("document not found")
	ErrSubDocumentNotFound    = errors.New("sub-document not found")
	ErrParentNotFound         = errors.New("parent document not found")
	ErrForbidden              = errors.New("not authorized for this operation")
	ErrFileRequired           = errors.New("no file uploaded")
	ErrDocumentTooLarge       = errors.New("document exceeds maximum size limit")
	ErrUnsupportedFormat      = errors.New("unsupported document format")
	ErrMissingField           = errors.New("required field missing")
	ErrDescriptionTooLong     = errors.New("description exceeds 350 characters")
	ErrInvalidStatus          = errors.New("invalid document status")
	ErrDuplicateDocumentNo    = errors.New("document number conflict, retry the request")
	ErrDuplicateSubDocumentNo = errors.New("sub document number already used under this parent")
	ErrSubDocumentNoRequired  = numbering.ErrSubDocumentNoRequired
	ErrInvalidSubDocumentNo   = numbering.ErrInvalidSubDocumentNo
)

// MaxDescriptionLength bounds Document.Description and SubDocument.Description
const MaxDescriptionLength = 350

// sniffLength is how much of an upload is read to detect its real type
const sniffLength = 512

// DocumentServiceConfig holds configuration for the document service
type DocumentServiceConfig struct {
	MaxFileSize       int64 // bytes
	AllowedMimeTypes  []string
	MaxCreateAttempts int
	SearchLimit       int
}

// DefaultDocumentServiceConfig allows PDFs up to 10MB
func DefaultDocumentServiceConfig() DocumentServiceConfig {
	return DocumentServiceConfig{
		MaxFileSize:       10 * 1024 * 1024,
		AllowedMimeTypes:  []string{"application/pdf"},
		MaxCreateAttempts: 3,
		SearchLimit:       20,
	}
}

// DocumentService handles master documents and their sub-documents
type DocumentService struct {
	docRepo     repositories.DocumentRepository
	subDocRepo  repositories.SubDocumentRepository
	counterRepo repositories.CounterRepository

	activity       *ActivityService
	storageService StorageService
	searchIndexer  SearchIndexer
	logger         *logger.Logger
	config         DocumentServiceConfig

	seedMu sync.Mutex
	seeded bool
}

// NewDocumentService creates a new document service instance.
// searchIndexer may be nil.
func NewDocumentService(
	docRepo repositories.DocumentRepository,
	subDocRepo repositories.SubDocumentRepository,
	counterRepo repositories.CounterRepository,
	activity *ActivityService,
	storageService StorageService,
	searchIndexer SearchIndexer,
	log *logger.Logger,
	config DocumentServiceConfig,
) *DocumentService {
	if config.MaxCreateAttempts < 1 {
		config.MaxCreateAttempts = 1
	}
	if config.SearchLimit < 1 {
		config.SearchLimit = 20
	}
	return &DocumentService{
		docRepo:        docRepo,
		subDocRepo:     subDocRepo,
		counterRepo:    counterRepo,
		activity:       activity,
		storageService: storageService,
		searchIndexer:  searchIndexer,
		logger:         log,
		config:         config,
	}
}

// FileUpload is an uploaded file stream plus what the client declared about it
type FileUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// CreateDocumentParams contains parameters for a master document upload
type CreateDocumentParams struct {
	Actor       Actor
	Request     RequestInfo
	File        *FileUpload
	Title       string
	Location    string
	Description string
	Longitude   *float64
	Latitude    *float64
	Status      models.DocStatus
}

// CreateSubDocumentParams contains parameters for a sub-document upload
type CreateSubDocumentParams struct {
	Actor            Actor
	Request          RequestInfo
	File             *FileUpload
	ParentDocumentID uuid.UUID
	SubDocumentNo    string
	Title            string
	Location         string
	Description      string
	Longitude        *float64
	Latitude         *float64
	Status           models.DocStatus
}

// FloatPatch distinguishes "leave unchanged" from "set" and "clear"
type FloatPatch struct {
	Set   bool
	Value *float64
}

// UpdateDocumentParams is the full update of title, location and status
type UpdateDocumentParams struct {
	Actor      Actor
	Request    RequestInfo
	DocumentID uuid.UUID
	Title      *string
	Location   *string
	Status     *models.DocStatus
}

// UpdateInfoParams is a partial metadata update; nil fields stay unchanged
type UpdateInfoParams struct {
	Actor       Actor
	Request     RequestInfo
	ID          uuid.UUID
	Title       *string
	Location    *string
	Description *string
	Longitude   FloatPatch
	Latitude    FloatPatch
}

// Download is an open file plus what to tell the client about it
type Download struct {
	Content     io.ReadCloser
	Filename    string
	ContentType string
	Size        int64 // -1 when unknown
}

// canWrite covers create, update and download: admin, level1 and level2
func canWrite(actor Actor) bool {
	return actor.Level.IsAtLeast(models.UserLevelLevel2)
}

// CreateDocument stores the PDF and inserts the document under the next MD- number
func (s *DocumentService) CreateDocument(ctx context.Context, params CreateDocumentParams) (*models.Document, error) {
	// 1. Authorize
	if !canWrite(params.Actor) {
		return nil, ErrForbidden
	}

	// 2. Validate fields and file
	status, err := validateMetadata(params.Title, params.Location, params.Description, params.Status)
	if err != nil {
		return nil, err
	}
	file, err := s.validateUpload(params.File)
	if err != nil {
		return nil, err
	}

	// 3. Make sure the counter covers rows numbered before it existed
	if err := s.ensureCounterSeeded(ctx); err != nil {
		return nil, err
	}

	// 4. Store file
	storagePath, err := s.storageService.Store(ctx, StorageParams{
		FileReader:  file,
		Filename:    params.File.Filename,
		ContentType: params.File.ContentType,
		Size:        params.File.Size,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	// 5. Allocate the number and insert, retrying on a unique index collision
	var document *models.Document
	for attempt := 1; attempt <= s.config.MaxCreateAttempts; attempt++ {
		document = &models.Document{
			Title:       strings.TrimSpace(params.Title),
			Location:    strings.TrimSpace(params.Location),
			Description: params.Description,
			Longitude:   params.Longitude,
			Latitude:    params.Latitude,
			Status:      status,
			CreatedBy:   params.Actor.ID,
			FilePath:    storagePath,
			Metadata:    fileMetadata(params.File),
		}
		err = s.docRepo.CreateWithNextNumber(ctx, document)
		if err == nil || !errors.Is(err, repositories.ErrDuplicateKey) {
			break
		}
		s.logger.Warn("Document number collision, reseeding counter",
			"attempt", attempt,
			"error", err)
		if seedErr := s.reseedCounter(ctx); seedErr != nil {
			err = seedErr
			break
		}
	}
	if err != nil {
		// Cleanup stored file on database error
		s.cleanupFile(ctx, storagePath)
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrDuplicateDocumentNo
		}
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}

	// 6. Audit and index
	s.activity.Record(ctx, ActivityEntry{
		UserID:      params.Actor.ID,
		Action:      models.ActionCreate,
		EntityType:  models.EntityDocument,
		EntityID:    &document.ID,
		Description: fmt.Sprintf("Created master document: %s", document.Title),
		Request:     params.Request,
	})
	s.indexDocument(ctx, document)

	s.logger.Info("Document created",
		"document_id", document.ID,
		"document_no", document.DocumentNo,
		"created_by", params.Actor.ID)

	return document, nil
}

// CreateSubDocument stores the PDF and inserts it under its parent with a normalized SUB- number
func (s *DocumentService) CreateSubDocument(ctx context.Context, params CreateSubDocumentParams) (*models.SubDocument, error) {
	// 1. Authorize
	if !canWrite(params.Actor) {
		return nil, ErrForbidden
	}

	// 2. Validate
	file, err := s.validateUpload(params.File)
	if err != nil {
		return nil, err
	}
	subDocumentNo, err := numbering.NormalizeSubDocumentNo(params.SubDocumentNo)
	if err != nil {
		return nil, err
	}
	status, err := validateMetadata(params.Title, params.Location, params.Description, params.Status)
	if err != nil {
		return nil, err
	}

	// 3. Fail fast on a missing parent; the insert re-checks under lock
	if _, err := s.docRepo.GetByID(ctx, params.ParentDocumentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrParentNotFound
		}
		return nil, fmt.Errorf("failed to load parent document: %w", err)
	}

	// 4. Store file
	storagePath, err := s.storageService.Store(ctx, StorageParams{
		FileReader:  file,
		Filename:    params.File.Filename,
		ContentType: params.File.ContentType,
		Size:        params.File.Size,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	// 5. Insert inside the parent-locking transaction
	subDocument := &models.SubDocument{
		SubDocumentNo:    subDocumentNo,
		ParentDocumentID: params.ParentDocumentID,
		Title:            strings.TrimSpace(params.Title),
		Location:         strings.TrimSpace(params.Location),
		Description:      params.Description,
		Longitude:        params.Longitude,
		Latitude:         params.Latitude,
		Status:           status,
		FilePath:         storagePath,
		Metadata:         fileMetadata(params.File),
	}
	if err := s.subDocRepo.CreateForParent(ctx, subDocument); err != nil {
		s.cleanupFile(ctx, storagePath)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrParentNotFound
		case errors.Is(err, repositories.ErrDuplicateKey):
			return nil, ErrDuplicateSubDocumentNo
		}
		return nil, fmt.Errorf("failed to create sub-document record: %w", err)
	}

	// 6. Audit
	s.activity.Record(ctx, ActivityEntry{
		UserID:      params.Actor.ID,
		Action:      models.ActionCreate,
		EntityType:  models.EntitySubDocument,
		EntityID:    &subDocument.ID,
		Description: fmt.Sprintf("Created sub-document: %s", subDocument.Title),
		Request:     params.Request,
	})

	return subDocument, nil
}

// GetDocument retrieves a document with its creator and sub-documents
func (s *DocumentService) GetDocument(ctx context.Context, actor Actor, documentID uuid.UUID, request RequestInfo) (*models.Document, error) {
	document, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, ActivityEntry{
		UserID:      actor.ID,
		Action:      models.ActionView,
		EntityType:  models.EntityDocument,
		EntityID:    &document.ID,
		Description: fmt.Sprintf("Viewed master document: %s", document.Title),
		Request:     request,
	})

	return document, nil
}

// ListDocuments lists documents with filtering and pagination
func (s *DocumentService) ListDocuments(ctx context.Context, filters repositories.DocumentFilters) ([]models.Document, int64, error) {
	return s.docRepo.List(ctx, filters)
}

// SearchDocuments uses the full-text index when it is reachable and falls
// back to a database LIKE search otherwise
func (s *DocumentService) SearchDocuments(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchResult{}, nil
	}
	if limit <= 0 || limit > s.config.SearchLimit {
		limit = s.config.SearchLimit
	}

	if s.searchIndexer != nil && s.searchIndexer.Healthy() {
		results, err := s.searchIndexer.Search(ctx, query, limit)
		if err == nil {
			return results, nil
		}
		s.logger.Warn("Search index query failed, falling back to database", "error", err)
	}

	documents, err := s.docRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	results := make([]SearchResult, 0, len(documents))
	for _, document := range documents {
		results = append(results, SearchResult{
			ID:          document.ID,
			DocumentNo:  document.DocumentNo,
			Title:       document.Title,
			Location:    document.Location,
			Description: document.Description,
			Status:      document.Status,
		})
	}
	return results, nil
}

// UpdateDocument replaces title, location and status
func (s *DocumentService) UpdateDocument(ctx context.Context, params UpdateDocumentParams) (*models.Document, error) {
	document, err := s.loadDocument(ctx, params.DocumentID)
	if err != nil {
		return nil, err
	}
	if !canWrite(params.Actor) {
		return nil, ErrForbidden
	}

	if params.Title != nil {
		document.Title = strings.TrimSpace(*params.Title)
	}
	if params.Location != nil {
		document.Location = strings.TrimSpace(*params.Location)
	}
	if params.Status != nil {
		document.Status = *params.Status
	}
	if _, err := validateMetadata(document.Title, document.Location, document.Description, document.Status); err != nil {
		return nil, err
	}

	if err := s.docRepo.Update(ctx, document); err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}

	s.activity.Record(ctx, ActivityEntry{
		UserID:      params.Actor.ID,
		Action:      models.ActionUpdate,
		EntityType:  models.EntityDocument,
		EntityID:    &document.ID,
		Description: fmt.Sprintf("Updated master document: %s", document.Title),
		Request:     params.Request,
	})
	s.indexDocument(ctx, document)

	return document, nil
}

// UpdateDocumentInfo applies a partial metadata update
func (s *DocumentService) UpdateDocumentInfo(ctx context.Context, params UpdateInfoParams) (*models.Document, error) {
	document, err := s.loadDocument(ctx, params.ID)
	if err != nil {
		return nil, err
	}
	if !canWrite(params.Actor) {
		return nil, ErrForbidden
	}

	applyInfo(params, &document.Title, &document.Location, &document.Description, &document.Longitude, &document.Latitude)
	if _, err := validateMetadata(document.Title, document.Location, document.Description, document.Status); err != nil {
		return nil, err
	}

	if err := s.docRepo.Update(ctx, document); err != nil {
		return nil, fmt.Errorf("failed to update document info: %w", err)
	}

	s.activity.Record(ctx, ActivityEntry{
		UserID:      params.Actor.ID,
		Action:      models.ActionUpdate,
		EntityType:  models.EntityDocument,
		EntityID:    &document.ID,
		Description: fmt.Sprintf("Updated document info: %s", document.Title),
		Request:     params.Request,
	})
	s.indexDocument(ctx, document)

	return document, nil
}

// UpdateSubDocumentInfo applies a partial metadata update to a sub-document
func (s *DocumentService) UpdateSubDocumentInfo(ctx context.Context, params UpdateInfoParams) (*models.SubDocument, error) {
	subDocument, err := s.loadSubDocument(ctx, params.ID)
	if err != nil {
		return nil, err
	}
	if !canWrite(params.Actor) {
		return nil, ErrForbidden
	}

	applyInfo(params, &subDocument.Title, &subDocument.Location, &subDocument.Description, &subDocument.Longitude, &subDocument.Latitude)
	if _, err := validateMetadata(subDocument.Title, subDocument.Location, subDocument.Description, subDocument.Status); err != nil {
		return nil, err
	}

	if err := s.subDocRepo.Update(ctx, subDocument); err != nil {
		return nil, fmt.Errorf("failed to update sub-document info: %w", err)
	}

	s.activity.Record(ctx, ActivityEntry{
		UserID:      params.Actor.ID,
		Action:      models.ActionUpdate,
		EntityType:  models.EntitySubDocument,
		EntityID:    &subDocument.ID,
		Description: fmt.Sprintf("Updated sub-document info: %s", subDocument.Title),
		Request:     params.Request,
	})

	return subDocument, nil
}

// NextSubDocumentNumber suggests the next free SUB- number under a parent
func (s *DocumentService) NextSubDocumentNumber(ctx context.Context, actor Actor, parentID uuid.UUID) (string, error) {
	if _, err := s.loadDocument(ctx, parentID); err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return "", ErrParentNotFound
		}
		return "", err
	}
	if !canWrite(actor) {
		return "", ErrForbidden
	}

	numbers, err := s.subDocRepo.ListNumbersByParent(ctx, parentID)
	if err != nil {
		return "", err
	}
	return numbering.NextSubDocumentNo(numbers), nil
}

// DownloadDocument opens a master document's file for streaming
func (s *DocumentService) DownloadDocument(ctx context.Context, actor Actor, documentID uuid.UUID, request RequestInfo) (*Download, error) {
	document, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !canWrite(actor) {
		return nil, ErrForbidden
	}

	download, err := s.open(ctx, document.FilePath, document.DocumentNo, document.Metadata)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, ActivityEntry{
		UserID:      actor.ID,
		Action:      models.ActionDownload,
		EntityType:  models.EntityDocument,
		EntityID:    &document.ID,
		Description: fmt.Sprintf("Downloaded master document: %s", document.Title),
		Request:     request,
	})

	return download, nil
}

// DownloadSubDocument opens a sub-document's file for streaming
func (s *DocumentService) DownloadSubDocument(ctx context.Context, actor Actor, subDocumentID uuid.UUID, request RequestInfo) (*Download, error) {
	subDocument, err := s.loadSubDocument(ctx, subDocumentID)
	if err != nil {
		return nil, err
	}
	if !canWrite(actor) {
		return nil, ErrForbidden
	}

	download, err := s.open(ctx, subDocument.FilePath, subDocument.SubDocumentNo, subDocument.Metadata)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, ActivityEntry{
		UserID:      actor.ID,
		Action:      models.ActionDownload,
		EntityType:  models.EntitySubDocument,
		EntityID:    &subDocument.ID,
		Description: fmt.Sprintf("Downloaded sub-document: %s", subDocument.Title),
		Request:     request,
	})

	return download, nil
}

// SeedDocumentCounter raises the MD- counter to the highest number already
// stored, logging every value that does not parse
func SeedDocumentCounter(ctx context.Context, docRepo repositories.DocumentRepository, counterRepo repositories.CounterRepository, log *logger.Logger) (int64, error) {
	numbers, err := docRepo.ListDocumentNumbers(ctx)
	if err != nil {
		return 0, err
	}

	highest, invalid := numbering.MaxDocumentSeq(numbers)
	for _, value := range invalid {
		log.Warn("Ignoring unparsable document number", "document_no", value)
	}

	value, err := counterRepo.EnsureAtLeast(ctx, models.CounterMasterDocument, highest)
	if err != nil {
		return 0, err
	}
	return value, nil
}

// Helper methods

func (s *DocumentService) ensureCounterSeeded(ctx context.Context) error {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()

	if s.seeded {
		return nil
	}
	if _, err := SeedDocumentCounter(ctx, s.docRepo, s.counterRepo, s.logger); err != nil {
		return fmt.Errorf("failed to seed document counter: %w", err)
	}
	s.seeded = true
	return nil
}

func (s *DocumentService) reseedCounter(ctx context.Context) error {
	s.seedMu.Lock()
	s.seeded = false
	s.seedMu.Unlock()
	return s.ensureCounterSeeded(ctx)
}

func (s *DocumentService) loadDocument(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	document, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	return document, nil
}

func (s *DocumentService) loadSubDocument(ctx context.Context, id uuid.UUID) (*models.SubDocument, error) {
	subDocument, err := s.subDocRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSubDocumentNotFound
		}
		return nil, fmt.Errorf("failed to load sub-document: %w", err)
	}
	return subDocument, nil
}

// validateUpload checks size, extension and content, returning a reader that
// still yields the whole file
func (s *DocumentService) validateUpload(file *FileUpload) (io.Reader, error) {
	if file == nil || file.Reader == nil {
		return nil, ErrFileRequired
	}
	if file.Size > s.config.MaxFileSize {
		return nil, ErrDocumentTooLarge
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") || !s.isAllowedMimeType(file.ContentType) {
		return nil, ErrUnsupportedFormat
	}

	head := make([]byte, sniffLength)
	n, err := io.ReadFull(file.Reader, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	head = head[:n]
	if !s.isAllowedMimeType(mimetype.Detect(head).String()) {
		return nil, ErrUnsupportedFormat
	}

	return io.MultiReader(bytes.NewReader(head), file.Reader), nil
}

func (s *DocumentService) isAllowedMimeType(contentType string) bool {
	// Strip parameters such as "; charset=binary"
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	contentType = strings.TrimSpace(strings.ToLower(contentType))
	for _, allowed := range s.config.AllowedMimeTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}

func (s *DocumentService) cleanupFile(ctx context.Context, path string) {
	if err := s.storageService.Delete(ctx, path); err != nil && !errors.Is(err, ErrFileNotFound) {
		s.logger.Warn("Failed to remove orphaned upload", "path", path, "error", err)
	}
}

func (s *DocumentService) open(ctx context.Context, path, number string, metadata models.JSONB) (*Download, error) {
	content, err := s.storageService.Get(ctx, path)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	download := &Download{
		Content:     content,
		Filename:    number + ".pdf",
		ContentType: "application/pdf",
		Size:        -1,
	}
	if name, ok := metadata[models.MetaOriginalName].(string); ok && name != "" {
		download.Filename = name
	}
	var size int64
	switch value := metadata[models.MetaSize].(type) {
	case float64:
		size = int64(value)
	case int64:
		size = value
	case int:
		size = int64(value)
	}
	if size > 0 {
		download.Size = size
	}
	return download, nil
}

func (s *DocumentService) indexDocument(ctx context.Context, document *models.Document) {
	if s.searchIndexer == nil || !s.searchIndexer.Healthy() {
		return
	}
	if err := s.searchIndexer.IndexDocument(ctx, document); err != nil {
		s.logger.Warn("Failed to index document", "document_id", document.ID, "error", err)
	}
}

func validateMetadata(title, location, description string, status models.DocStatus) (models.DocStatus, error) {
	if strings.TrimSpace(title) == "" {
		return "", fmt.Errorf("%w: title", ErrMissingField)
	}
	if strings.TrimSpace(location) == "" {
		return "", fmt.Errorf("%w: location", ErrMissingField)
	}
	if len([]rune(description)) > MaxDescriptionLength {
		return "", ErrDescriptionTooLong
	}
	if status == "" {
		return models.DocStatusActive, nil
	}
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

func applyInfo(params UpdateInfoParams, title, location, description *string, longitude, latitude **float64) {
	if params.Title != nil {
		*title = strings.TrimSpace(*params.Title)
	}
	if params.Location != nil {
		*location = strings.TrimSpace(*params.Location)
	}
	if params.Description != nil {
		*description = *params.Description
	}
	if params.Longitude.Set {
		*longitude = params.Longitude.Value
	}
	if params.Latitude.Set {
		*latitude = params.Latitude.Value
	}
}

func fileMetadata(file *FileUpload) models.JSONB {
	return models.JSONB{
		models.MetaOriginalName: filepath.Base(file.Filename),
		models.MetaMimeType:     "application/pdf",
		models.MetaSize:         file.Size,
	}
}
