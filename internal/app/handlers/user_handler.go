package handlers

import (
	"strings"
	"time"

	"github.com/archivus/masterdocs/internal/app/middleware"
	"github.com/archivus/masterdocs/internal/domain/repositories"
	"github.com/archivus/masterdocs/internal/domain/services"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/archivus/masterdocs/pkg/logger"
	"github.com/gin-gonic/gin"
)

// UserHandler handles user management and the dashboard summary
type UserHandler struct {
	*BaseHandler
	userService    *services.UserService
	summaryService *services.SummaryService
}

// NewUserHandler creates a new user handler
func NewUserHandler(
	userService *services.UserService,
	summaryService *services.SummaryService,
	config *HandlerConfig,
	log *logger.Logger,
) *UserHandler {
	return &UserHandler{
		BaseHandler:    NewBaseHandler(config, log),
		userService:    userService,
		summaryService: summaryService,
	}
}

// RegisterRoutes registers all user routes
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	adminOnly := middleware.AdminRequiredMiddleware()

	users := router.Group("/users")
	{
		// Static paths first so they are not taken for an :id
		users.GET("/summary", h.GetSummary)
		users.GET("/sessions", adminOnly, h.ListSessions)

		users.GET("", adminOnly, h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", adminOnly, h.DeleteUser)
		users.POST("/:id/change-password", h.ChangePassword)
		users.POST("/:id/reset-password", adminOnly, h.ResetPassword)
		users.POST("/:id/approve", adminOnly, h.ApproveUser)
		users.PATCH("/:id/activation", adminOnly, h.SetActivation)
	}
}

// ListUsers lists every account
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Page size" default(20)
// @Param q query string false "Username, email or name contains"
// @Success 200 {object} PaginatedResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	page, pageSize := h.ParsePagination(c)
	sortBy, sortDesc := h.ParseSorting(c, "created_at")

	users, total, err := h.userService.ListUsers(c.Request.Context(), userCtx.Actor(), repositories.ListParams{
		Page:     page,
		PageSize: pageSize,
		SortBy:   sortBy,
		SortDesc: sortDesc,
		Search:   strings.TrimSpace(c.Query("q")),
	})
	if err != nil {
		h.RespondServiceError(c, err, "Failed to list users")
		return
	}

	h.RespondSuccess(c, PaginatedResponse{
		Data:       users,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: calculateTotalPages(pageSize, total),
	})
}

// ListSessions shows who appears to be logged in
// @Summary List sessions
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} services.SessionInfo
// @Router /api/v1/users/sessions [get]
func (h *UserHandler) ListSessions(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	sessions, err := h.userService.ListSessions(c.Request.Context(), userCtx.Actor(), time.Now())
	if err != nil {
		h.RespondServiceError(c, err, "Failed to list sessions")
		return
	}

	h.RespondSuccess(c, gin.H{"sessions": sessions})
}

// GetSummary returns the dashboard counters
// @Summary Dashboard summary
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.Summary
// @Router /api/v1/users/summary [get]
func (h *UserHandler) GetSummary(c *gin.Context) {
	if _, ok := h.AuthenticateUser(c); !ok {
		return
	}

	summary, err := h.summaryService.GetSummary(c.Request.Context(), time.Now())
	if err != nil {
		h.RespondServiceError(c, err, "Failed to build summary")
		return
	}

	h.RespondSuccess(c, summary)
}

// GetUser returns one account; admins may read anyone, others only themselves
// @Summary Get user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Router /api/v1/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	userID, ok := h.ValidateUUID(c, "user ID", c.Param("id"))
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userCtx.Actor(), userID)
	if err != nil {
		h.RespondServiceError(c, err, "Failed to retrieve user")
		return
	}

	h.RespondSuccess(c, user)
}

// UpdateUser applies a partial update
// @Summary Update user
// @Description Level and approval changes are admin only
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body UpdateUserRequest true "Fields to update"
// @Success 200 {object} models.User
// @Router /api/v1/users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	userID, ok := h.ValidateUUID(c, "user ID", c.Param("id"))
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request format", err.Error())
		return
	}

	params := services.UpdateUserParams{
		Username:   req.Username,
		Email:      req.Email,
		Name:       req.Name,
		IsApproved: req.IsApproved,
	}
	if req.UserLevel != nil {
		level := models.UserLevel(*req.UserLevel)
		params.UserLevel = &level
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), userCtx.Actor(), userID, params, requestInfo(c))
	if err != nil {
		h.RespondServiceError(c, err, "Failed to update user")
		return
	}

	h.invalidateSummary(c)
	h.RespondSuccess(c, user)
}

// DeleteUser removes an account
// @Summary Delete user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse "Last admin"
// @Router /api/v1/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	userID, ok := h.ValidateUUID(c, "user ID", c.Param("id"))
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), userCtx.Actor(), userID, requestInfo(c)); err != nil {
		h.RespondServiceError(c, err, "Failed to delete user")
		return
	}

	h.invalidateSummary(c)
	h.RespondSuccess(c, SuccessResponse{Message: "User deleted successfully", Success: true})
}

// ChangePassword replaces the caller's own password
// @Summary Change password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body ChangePasswordRequest true "Passwords"
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} ErrorResponse "Current password is incorrect"
// @Router /api/v1/users/{id}/change-password [post]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	userID, ok := h.ValidateUUID(c, "user ID", c.Param("id"))
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request format", err.Error())
		return
	}

	err := h.userService.ChangePassword(c.Request.Context(), userCtx.Actor(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		h.RespondServiceError(c, err, "Failed to change password")
		return
	}

	h.RespondSuccess(c, SuccessResponse{Message: "Password changed successfully", Success: true})
}

// ResetPassword sets another user's password
// @Summary Reset password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body ResetPasswordRequest true "New password"
// @Success 200 {object} SuccessResponse
// @Router /api/v1/users/{id}/reset-password [post]
func (h *UserHandler) ResetPassword(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	userID, ok := h.ValidateUUID(c, "user ID", c.Param("id"))
	if !ok {
		return
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request format", err.Error())
		return
	}

	if err := h.userService.ResetPassword(c.Request.Context(), userCtx.Actor(), userID, req.NewPassword); err != nil {
		h.RespondServiceError(c, err, "Failed to reset password")
		return
	}

	h.RespondSuccess(c, SuccessResponse{Message: "Password reset successfully", Success: true})
}

// ApproveUser approves a pending account
// @Summary Approve user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Router /api/v1/users/{id}/approve [post]
func (h *UserHandler) ApproveUser(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	userID, ok := h.ValidateUUID(c, "user ID", c.Param("id"))
	if !ok {
		return
	}

	user, err := h.userService.ApproveUser(c.Request.Context(), userCtx.Actor(), userID, requestInfo(c))
	if err != nil {
		h.RespondServiceError(c, err, "Failed to approve user")
		return
	}

	h.invalidateSummary(c)
	h.RespondSuccess(c, user)
}

// SetActivation activates or deactivates a non-admin account
// @Summary Set activation
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body ActivationRequest true "Activation flag"
// @Success 200 {object} models.User
// @Router /api/v1/users/{id}/activation [patch]
func (h *UserHandler) SetActivation(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	userID, ok := h.ValidateUUID(c, "user ID", c.Param("id"))
	if !ok {
		return
	}

	var req ActivationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		h.RespondBadRequest(c, "Field active is required")
		return
	}

	user, err := h.userService.SetUserActive(c.Request.Context(), userCtx.Actor(), userID, *req.Active, requestInfo(c))
	if err != nil {
		h.RespondServiceError(c, err, "Failed to update activation")
		return
	}

	h.RespondSuccess(c, user)
}

func (h *UserHandler) invalidateSummary(c *gin.Context) {
	if h.summaryService != nil {
		h.summaryService.Invalidate(c.Request.Context())
	}
}

// Request types

type UpdateUserRequest struct {
	Username   *string `json:"username"`
	Email      *string `json:"email"`
	Name       *string `json:"name"`
	UserLevel  *string `json:"user_level"`
	IsApproved *bool   `json:"is_approved"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required"`
}

type ActivationRequest struct {
	Active *bool `json:"active"`
}
