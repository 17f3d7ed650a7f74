package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/archivus/masterdocs/internal/domain/services"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the envelope of every error reply
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Status  int         `json:"status"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse acknowledges an operation with no payload
type SuccessResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// PaginatedResponse represents paginated API response
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// errorStatus maps service errors to an HTTP status and error code
func errorStatus(err error) (int, string) {
	var partial *services.PartialDeletionError
	switch {
	case errors.As(err, &partial):
		return http.StatusInternalServerError, "partial_deletion"

	// 404
	case errors.Is(err, services.ErrDocumentNotFound),
		errors.Is(err, services.ErrSubDocumentNotFound),
		errors.Is(err, services.ErrParentNotFound),
		errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound, "not_found"

	// 403
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, services.ErrAdminPendingApproval):
		return http.StatusForbidden, "pending_approval"
	case errors.Is(err, services.ErrAccountDeactivated):
		return http.StatusForbidden, "account_deactivated"

	// 401
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrIncorrectPassword),
		errors.Is(err, services.ErrInvalidToken),
		errors.Is(err, services.ErrTokenRevoked):
		return http.StatusUnauthorized, "unauthorized"

	// 409
	case errors.Is(err, services.ErrUserExists),
		errors.Is(err, services.ErrDuplicateDocumentNo),
		errors.Is(err, services.ErrDuplicateSubDocumentNo):
		return http.StatusConflict, "conflict"

	// 413 and 415
	case errors.Is(err, services.ErrDocumentTooLarge):
		return http.StatusRequestEntityTooLarge, "file_too_large"
	case errors.Is(err, services.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, "unsupported_format"

	// 400
	case errors.Is(err, services.ErrFileRequired),
		errors.Is(err, services.ErrMissingField),
		errors.Is(err, services.ErrDescriptionTooLong),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrSubDocumentNoRequired),
		errors.Is(err, services.ErrInvalidSubDocumentNo),
		errors.Is(err, services.ErrInvalidDeletionMode),
		errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrInvalidUsername),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrInvalidUserLevel),
		errors.Is(err, services.ErrLastAdmin),
		errors.Is(err, services.ErrCannotDeactivateAdmin):
		return http.StatusBadRequest, "invalid_request"
	}
	return http.StatusInternalServerError, "internal_error"
}

// requestInfo captures the requester details for the activity ledger
func requestInfo(c *gin.Context) services.RequestInfo {
	return services.RequestInfo{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// getIntParam safely parses an integer query parameter with a default value
func getIntParam(c *gin.Context, param string, defaultValue int) int {
	value := c.Query(param)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return parsed
}

// calculateTotalPages returns at least one page
func calculateTotalPages(pageSize int, total int64) int {
	if pageSize < 1 {
		return 1
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages == 0 {
		totalPages = 1
	}
	return totalPages
}

// parseOptionalFloat parses a form value; empty means absent
func parseOptionalFloat(value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
