package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/archivus/masterdocs/internal/app/middleware"
	"github.com/archivus/masterdocs/internal/domain/repositories"
	"github.com/archivus/masterdocs/internal/domain/services"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/archivus/masterdocs/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Upload form field carrying the PDF
const documentFormField = "document"

// DocumentHandler handles HTTP requests for documents and sub-documents
type DocumentHandler struct {
	*BaseHandler
	documentService *services.DocumentService
	deletionService *services.DeletionService
	summaryService  *services.SummaryService
}

// NewDocumentHandler creates a new document handler. summaryService may be
// nil; when set, writes invalidate the cached dashboard summary.
func NewDocumentHandler(
	documentService *services.DocumentService,
	deletionService *services.DeletionService,
	summaryService *services.SummaryService,
	config *HandlerConfig,
	log *logger.Logger,
) *DocumentHandler {
	return &DocumentHandler{
		BaseHandler:     NewBaseHandler(config, log),
		documentService: documentService,
		deletionService: deletionService,
		summaryService:  summaryService,
	}
}

// RegisterRoutes registers all document routes
func (h *DocumentHandler) RegisterRoutes(router *gin.RouterGroup) {
	writers := middleware.RequireLevels(models.UserLevelAdmin, models.UserLevelLevel1, models.UserLevelLevel2)
	deleters := middleware.RequireLevels(models.UserLevelAdmin, models.UserLevelLevel1)

	docs := router.Group("/documents")
	{
		docs.POST("", writers, h.CreateDocument)
		docs.GET("", h.ListDocuments)
		docs.GET("/search", h.SearchDocuments)
		docs.GET("/:id", h.GetDocument)
		docs.GET("/:id/next-sub-number", writers, h.NextSubDocumentNumber)
		docs.PUT("/:id", writers, h.UpdateDocument)
		docs.PATCH("/:id/info", writers, h.UpdateDocumentInfo)
		docs.DELETE("/:id", deleters, h.DeleteDocument)
		docs.GET("/download/:id", writers, h.DownloadDocument)

		docs.POST("/sub-document", writers, h.CreateSubDocument)
		docs.PATCH("/sub-document/:id/info", writers, h.UpdateSubDocumentInfo)
		docs.DELETE("/sub-document/:id", deleters, h.DeleteSubDocument)
		docs.GET("/sub-document/download/:id", writers, h.DownloadSubDocument)
	}
}

// CreateDocument handles master document upload
// @Summary Upload a master document
// @Description Upload a PDF; the next MD- number is assigned
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param document formData file true "PDF file"
// @Param title formData string true "Title"
// @Param location formData string true "Location"
// @Success 201 {object} models.Document
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse "File too large"
// @Failure 415 {object} ErrorResponse "Not a PDF"
// @Router /api/v1/documents [post]
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	upload, closeFile, ok := h.readUpload(c)
	if !ok {
		return
	}
	defer closeFile()

	var form MetadataForm
	if err := c.ShouldBind(&form); err != nil {
		h.RespondBadRequest(c, "Invalid form data", err.Error())
		return
	}
	longitude, latitude, ok := h.parseCoordinates(c, form)
	if !ok {
		return
	}

	document, err := h.documentService.CreateDocument(c.Request.Context(), services.CreateDocumentParams{
		Actor:       userCtx.Actor(),
		Request:     requestInfo(c),
		File:        upload,
		Title:       form.Title,
		Location:    form.Location,
		Description: form.Description,
		Longitude:   longitude,
		Latitude:    latitude,
		Status:      models.DocStatus(form.Status),
	})
	if err != nil {
		h.RespondServiceError(c, err, "Failed to create document")
		return
	}

	h.invalidateSummary(c)
	h.RespondCreated(c, document)
}

// CreateSubDocument handles sub-document upload under an existing parent
// @Summary Upload a sub-document
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param document formData file true "PDF file"
// @Param parent_document_id formData string true "Parent document ID"
// @Param sub_document_no formData string true "Sub-document number, e.g. SUB-001"
// @Success 201 {object} models.SubDocument
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Parent not found"
// @Failure 409 {object} ErrorResponse "Number already used under this parent"
// @Router /api/v1/documents/sub-document [post]
func (h *DocumentHandler) CreateSubDocument(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	upload, closeFile, ok := h.readUpload(c)
	if !ok {
		return
	}
	defer closeFile()

	var form SubDocumentForm
	if err := c.ShouldBind(&form); err != nil {
		h.RespondBadRequest(c, "Invalid form data", err.Error())
		return
	}
	parentID, ok := h.ValidateUUID(c, "parent_document_id", form.ParentDocumentID)
	if !ok {
		return
	}
	longitude, latitude, ok := h.parseCoordinates(c, form.MetadataForm)
	if !ok {
		return
	}

	subDocument, err := h.documentService.CreateSubDocument(c.Request.Context(), services.CreateSubDocumentParams{
		Actor:            userCtx.Actor(),
		Request:          requestInfo(c),
		File:             upload,
		ParentDocumentID: parentID,
		SubDocumentNo:    form.SubDocumentNo,
		Title:            form.Title,
		Location:         form.Location,
		Description:      form.Description,
		Longitude:        longitude,
		Latitude:         latitude,
		Status:           models.DocStatus(form.Status),
	})
	if err != nil {
		h.RespondServiceError(c, err, "Failed to create sub-document")
		return
	}

	h.invalidateSummary(c)
	h.RespondCreated(c, subDocument)
}

// ListDocuments lists documents with filtering and pagination
// @Summary List documents
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param status query string false "Comma separated statuses"
// @Param q query string false "Title, number or location contains"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Page size" default(20)
// @Success 200 {object} PaginatedResponse
// @Router /api/v1/documents [get]
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	if _, ok := h.AuthenticateUser(c); !ok {
		return
	}

	page, pageSize := h.ParsePagination(c)
	sortBy, sortDesc := h.ParseSorting(c, "created_at")

	filters := repositories.DocumentFilters{
		ListParams: repositories.ListParams{
			Page:     page,
			PageSize: pageSize,
			SortBy:   sortBy,
			SortDesc: sortDesc,
			Search:   strings.TrimSpace(c.Query("q")),
		},
	}
	if status := c.Query("status"); status != "" {
		for _, value := range strings.Split(status, ",") {
			docStatus := models.DocStatus(strings.TrimSpace(value))
			if !docStatus.Valid() {
				h.RespondBadRequest(c, fmt.Sprintf("Invalid status %q", value))
				return
			}
			filters.Status = append(filters.Status, docStatus)
		}
	}

	documents, total, err := h.documentService.ListDocuments(c.Request.Context(), filters)
	if err != nil {
		h.RespondServiceError(c, err, "Failed to list documents")
		return
	}

	h.RespondSuccess(c, PaginatedResponse{
		Data:       documents,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: calculateTotalPages(pageSize, total),
	})
}

// SearchDocuments runs a full-text search over master documents
// @Summary Search documents
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param q query string true "Query"
// @Param limit query int false "Maximum hits"
// @Success 200 {array} services.SearchResult
// @Router /api/v1/documents/search [get]
func (h *DocumentHandler) SearchDocuments(c *gin.Context) {
	if _, ok := h.AuthenticateUser(c); !ok {
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		h.RespondBadRequest(c, "Query parameter q is required")
		return
	}

	results, err := h.documentService.SearchDocuments(c.Request.Context(), query, getIntParam(c, "limit", 0))
	if err != nil {
		h.RespondServiceError(c, err, "Search failed")
		return
	}

	h.RespondSuccess(c, gin.H{"query": query, "results": results})
}

// GetDocument retrieves a document with its creator and sub-documents
// @Summary Get document by ID
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Success 200 {object} models.Document
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/documents/{id} [get]
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	documentID, ok := h.ValidateUUID(c, "document ID", c.Param("id"))
	if !ok {
		return
	}

	document, err := h.documentService.GetDocument(c.Request.Context(), userCtx.Actor(), documentID, requestInfo(c))
	if err != nil {
		h.RespondServiceError(c, err, "Failed to retrieve document")
		return
	}

	h.RespondSuccess(c, document)
}

// NextSubDocumentNumber suggests the next free sub-document number
// @Summary Next sub-document number
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Parent document ID"
// @Success 200 {object} map[string]string
// @Router /api/v1/documents/{id}/next-sub-number [get]
func (h *DocumentHandler) NextSubDocumentNumber(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	parentID, ok := h.ValidateUUID(c, "document ID", c.Param("id"))
	if !ok {
		return
	}

	number, err := h.documentService.NextSubDocumentNumber(c.Request.Context(), userCtx.Actor(), parentID)
	if err != nil {
		h.RespondServiceError(c, err, "Failed to compute next sub-document number")
		return
	}

	h.RespondSuccess(c, gin.H{"sub_document_no": number})
}

// UpdateDocument replaces title, location and status
// @Summary Update document
// @Tags documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Param request body UpdateDocumentRequest true "Fields to update"
// @Success 200 {object} models.Document
// @Router /api/v1/documents/{id} [put]
func (h *DocumentHandler) UpdateDocument(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	documentID, ok := h.ValidateUUID(c, "document ID", c.Param("id"))
	if !ok {
		return
	}

	var req UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request format", err.Error())
		return
	}

	params := services.UpdateDocumentParams{
		Actor:      userCtx.Actor(),
		Request:    requestInfo(c),
		DocumentID: documentID,
		Title:      req.Title,
		Location:   req.Location,
	}
	if req.Status != nil {
		status := models.DocStatus(*req.Status)
		params.Status = &status
	}

	document, err := h.documentService.UpdateDocument(c.Request.Context(), params)
	if err != nil {
		h.RespondServiceError(c, err, "Failed to update document")
		return
	}

	h.RespondSuccess(c, document)
}

// UpdateDocumentInfo applies a partial metadata update
// @Summary Patch document info
// @Description Only fields present in the body change; null clears longitude or latitude
// @Tags documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Success 200 {object} models.Document
// @Router /api/v1/documents/{id}/info [patch]
func (h *DocumentHandler) UpdateDocumentInfo(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	documentID, ok := h.ValidateUUID(c, "document ID", c.Param("id"))
	if !ok {
		return
	}

	params, err := decodeInfoPatch(c)
	if err != nil {
		h.RespondBadRequest(c, "Invalid request format", err.Error())
		return
	}
	params.Actor = userCtx.Actor()
	params.Request = requestInfo(c)
	params.ID = documentID

	document, err := h.documentService.UpdateDocumentInfo(c.Request.Context(), params)
	if err != nil {
		h.RespondServiceError(c, err, "Failed to update document info")
		return
	}

	h.RespondSuccess(c, document)
}

// UpdateSubDocumentInfo applies a partial metadata update to a sub-document
// @Summary Patch sub-document info
// @Tags documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sub-document ID"
// @Success 200 {object} models.SubDocument
// @Router /api/v1/documents/sub-document/{id}/info [patch]
func (h *DocumentHandler) UpdateSubDocumentInfo(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	subDocumentID, ok := h.ValidateUUID(c, "sub-document ID", c.Param("id"))
	if !ok {
		return
	}

	params, err := decodeInfoPatch(c)
	if err != nil {
		h.RespondBadRequest(c, "Invalid request format", err.Error())
		return
	}
	params.Actor = userCtx.Actor()
	params.Request = requestInfo(c)
	params.ID = subDocumentID

	subDocument, err := h.documentService.UpdateSubDocumentInfo(c.Request.Context(), params)
	if err != nil {
		h.RespondServiceError(c, err, "Failed to update sub-document info")
		return
	}

	h.RespondSuccess(c, subDocument)
}

// DeleteDocument removes a document, its file and all of its sub-documents
// @Summary Delete document
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Param mode query string false "soft (default) or hard"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse "partial_deletion when the cascade stopped midway"
// @Router /api/v1/documents/{id} [delete]
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	documentID, ok := h.ValidateUUID(c, "document ID", c.Param("id"))
	if !ok {
		return
	}

	job, err := h.deletionService.DeleteDocument(c.Request.Context(), services.DeleteDocumentParams{
		DocumentID: documentID,
		Actor:      userCtx.Actor(),
		Mode:       models.DeletionMode(c.Query("mode")),
		Request:    requestInfo(c),
	})
	if job != nil {
		// Any side effect may have happened, successful or not
		h.invalidateSummary(c)
	}
	if err != nil {
		h.RespondServiceError(c, err, "Failed to delete document")
		return
	}

	h.RespondSuccess(c, gin.H{
		"message": "Document and sub-documents deleted successfully",
		"job":     job,
	})
}

// DeleteSubDocument removes a single sub-document
// @Summary Delete sub-document
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sub-document ID"
// @Param mode query string false "soft (default) or hard"
// @Success 200 {object} SuccessResponse
// @Router /api/v1/documents/sub-document/{id} [delete]
func (h *DocumentHandler) DeleteSubDocument(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	subDocumentID, ok := h.ValidateUUID(c, "sub-document ID", c.Param("id"))
	if !ok {
		return
	}

	err := h.deletionService.DeleteSubDocument(c.Request.Context(), services.DeleteSubDocumentParams{
		SubDocumentID: subDocumentID,
		Actor:         userCtx.Actor(),
		Mode:          models.DeletionMode(c.Query("mode")),
		Request:       requestInfo(c),
	})
	if err != nil {
		h.RespondServiceError(c, err, "Failed to delete sub-document")
		return
	}

	h.invalidateSummary(c)
	h.RespondSuccess(c, SuccessResponse{Message: "Sub-document deleted successfully", Success: true})
}

// DownloadDocument streams a master document's file
// @Summary Download document
// @Tags documents
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Success 200 {file} binary
// @Router /api/v1/documents/download/{id} [get]
func (h *DocumentHandler) DownloadDocument(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	documentID, ok := h.ValidateUUID(c, "document ID", c.Param("id"))
	if !ok {
		return
	}

	download, err := h.documentService.DownloadDocument(c.Request.Context(), userCtx.Actor(), documentID, requestInfo(c))
	if err != nil {
		h.RespondServiceError(c, err, "Failed to download document")
		return
	}

	h.stream(c, download)
}

// DownloadSubDocument streams a sub-document's file
// @Summary Download sub-document
// @Tags documents
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Sub-document ID"
// @Success 200 {file} binary
// @Router /api/v1/documents/sub-document/download/{id} [get]
func (h *DocumentHandler) DownloadSubDocument(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	subDocumentID, ok := h.ValidateUUID(c, "sub-document ID", c.Param("id"))
	if !ok {
		return
	}

	download, err := h.documentService.DownloadSubDocument(c.Request.Context(), userCtx.Actor(), subDocumentID, requestInfo(c))
	if err != nil {
		h.RespondServiceError(c, err, "Failed to download sub-document")
		return
	}

	h.stream(c, download)
}

// Helper methods

// readUpload opens the uploaded PDF. The returned func closes it.
func (h *DocumentHandler) readUpload(c *gin.Context) (*services.FileUpload, func(), bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.config.uploadBodyLimit())

	file, header, err := c.Request.FormFile(documentFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			h.RespondServiceError(c, services.ErrDocumentTooLarge, "")
		case errors.Is(err, http.ErrMissingFile):
			h.RespondServiceError(c, services.ErrFileRequired, "")
		default:
			h.RespondBadRequest(c, "Invalid multipart upload", err.Error())
		}
		return nil, nil, false
	}

	upload := uploadFromHeader(file, header)
	return upload, func() { file.Close() }, true
}

func uploadFromHeader(file multipart.File, header *multipart.FileHeader) *services.FileUpload {
	return &services.FileUpload{
		Reader:      file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}
}

func (h *DocumentHandler) parseCoordinates(c *gin.Context, form MetadataForm) (*float64, *float64, bool) {
	longitude, err := parseOptionalFloat(form.Longitude)
	if err != nil {
		h.RespondBadRequest(c, "Invalid longitude")
		return nil, nil, false
	}
	latitude, err := parseOptionalFloat(form.Latitude)
	if err != nil {
		h.RespondBadRequest(c, "Invalid latitude")
		return nil, nil, false
	}
	return longitude, latitude, true
}

func (h *DocumentHandler) stream(c *gin.Context, download *services.Download) {
	defer download.Content.Close()

	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", download.Filename),
	}

	c.DataFromReader(http.StatusOK, download.Size, download.ContentType, download.Content, headers)
}

func (h *DocumentHandler) invalidateSummary(c *gin.Context) {
	if h.summaryService != nil {
		h.summaryService.Invalidate(c.Request.Context())
	}
}

// decodeInfoPatch reads a partial update body. A key that is absent leaves
// the field unchanged; null clears longitude or latitude.
func decodeInfoPatch(c *gin.Context) (services.UpdateInfoParams, error) {
	var params services.UpdateInfoParams

	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		return params, err
	}

	for key, target := range map[string]**string{
		"title":       &params.Title,
		"location":    &params.Location,
		"description": &params.Description,
	} {
		raw, ok := body[key]
		if !ok || string(raw) == "null" {
			continue
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return params, fmt.Errorf("%s must be a string", key)
		}
		*target = &value
	}

	for key, target := range map[string]*services.FloatPatch{
		"longitude": &params.Longitude,
		"latitude":  &params.Latitude,
	} {
		raw, ok := body[key]
		if !ok {
			continue
		}
		target.Set = true
		if string(raw) == "null" {
			continue
		}
		var value float64
		if err := json.Unmarshal(raw, &value); err != nil {
			return params, fmt.Errorf("%s must be a number", key)
		}
		target.Value = &value
	}

	return params, nil
}

// Request types

// MetadataForm holds the multipart fields shared by both upload kinds
type MetadataForm struct {
	Title       string `form:"title"`
	Location    string `form:"location"`
	Description string `form:"description"`
	Longitude   string `form:"longitude"`
	Latitude    string `form:"latitude"`
	Status      string `form:"status"`
}

type SubDocumentForm struct {
	MetadataForm
	ParentDocumentID string `form:"parent_document_id"`
	SubDocumentNo    string `form:"sub_document_no"`
}

type UpdateDocumentRequest struct {
	Title    *string `json:"title"`
	Location *string `json:"location"`
	Status   *string `json:"status"`
}
