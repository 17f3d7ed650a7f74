package handlers

import (
	"errors"
	"net/http"

	"github.com/archivus/masterdocs/internal/app/middleware"
	"github.com/archivus/masterdocs/internal/domain/services"
	"github.com/archivus/masterdocs/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	config *HandlerConfig
	logger *logger.Logger
}

// NewBaseHandler creates a new base handler
func NewBaseHandler(config *HandlerConfig, log *logger.Logger) *BaseHandler {
	if config == nil {
		config = NewHandlerConfig()
	}
	return &BaseHandler{
		config: config,
		logger: log,
	}
}

// AuthenticateUser extracts and validates user context
func (b *BaseHandler) AuthenticateUser(c *gin.Context) (*middleware.UserContext, bool) {
	userCtx := middleware.GetUserContext(c)
	if userCtx == nil {
		b.RespondUnauthorized(c, "User authentication required")
		return nil, false
	}
	return userCtx, true
}

// RespondError sends a standardized error response
func (b *BaseHandler) RespondError(c *gin.Context, statusCode int, errorCode, message string, details ...interface{}) {
	response := ErrorResponse{
		Error:   errorCode,
		Message: message,
		Status:  statusCode,
	}

	// Include details based on environment
	if len(details) > 0 && b.config.EnableDebugErrors {
		response.Details = details[0]
	}

	c.JSON(statusCode, response)
}

// RespondServiceError maps a service error onto the response envelope
func (b *BaseHandler) RespondServiceError(c *gin.Context, err error, fallback string) {
	status, code := errorStatus(err)

	var partial *services.PartialDeletionError
	if errors.As(err, &partial) {
		b.logger.Error("Partial deletion",
			"document_id", partial.DocumentID,
			"step", partial.Step,
			"children_processed", partial.ChildrenProcessed,
			"children_total", partial.ChildrenTotal,
			"error", partial.Err)
		// Operators need the step to reconcile, so it is never hidden
		c.JSON(status, ErrorResponse{
			Error:   code,
			Message: "Deletion was only partially completed",
			Status:  status,
			Details: gin.H{
				"document_id":        partial.DocumentID,
				"step":               partial.Step,
				"children_processed": partial.ChildrenProcessed,
				"children_total":     partial.ChildrenTotal,
			},
		})
		return
	}

	if status == http.StatusInternalServerError {
		b.logger.Error(fallback, "path", c.FullPath(), "error", err)
		b.RespondError(c, status, code, fallback, err.Error())
		return
	}
	b.RespondError(c, status, code, err.Error())
}

// RespondUnauthorized sends a standardized unauthorized response
func (b *BaseHandler) RespondUnauthorized(c *gin.Context, message string) {
	b.RespondError(c, http.StatusUnauthorized, "unauthorized", message)
}

// RespondBadRequest sends a standardized bad request response
func (b *BaseHandler) RespondBadRequest(c *gin.Context, message string, details ...interface{}) {
	b.RespondError(c, http.StatusBadRequest, "invalid_request", message, details...)
}

// RespondSuccess sends a standardized success response
func (b *BaseHandler) RespondSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// RespondCreated sends a standardized created response
func (b *BaseHandler) RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// ParsePagination extracts and validates pagination parameters
func (b *BaseHandler) ParsePagination(c *gin.Context) (page, pageSize int) {
	page = getIntParam(c, "page", 1)
	pageSize = getIntParam(c, "per_page", b.config.DefaultPageSize)

	if page < 1 {
		page = 1
	}
	pageSize = b.config.ValidatePageSize(pageSize)

	return page, pageSize
}

// ParseSorting extracts and validates sorting parameters
func (b *BaseHandler) ParseSorting(c *gin.Context, defaultSortBy string) (sortBy string, sortDesc bool) {
	sortBy = c.DefaultQuery("sort_by", defaultSortBy)
	sortDesc = c.DefaultQuery("sort_desc", "true") == "true"
	return sortBy, sortDesc
}

// ValidateUUID validates UUID parameter and responds with error if invalid
func (b *BaseHandler) ValidateUUID(c *gin.Context, paramName, uuidStr string) (uuid.UUID, bool) {
	id, err := uuid.Parse(uuidStr)
	if err != nil {
		b.RespondBadRequest(c, "Invalid "+paramName+" format")
		return uuid.Nil, false
	}
	return id, true
}
