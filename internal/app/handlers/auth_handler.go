package handlers

import (
	"github.com/archivus/masterdocs/internal/domain/services"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/archivus/masterdocs/pkg/logger"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles signup, login and the token lifecycle
type AuthHandler struct {
	*BaseHandler
	userService    *services.UserService
	summaryService *services.SummaryService
}

// NewAuthHandler creates a new auth handler. summaryService may be nil.
func NewAuthHandler(
	userService *services.UserService,
	summaryService *services.SummaryService,
	config *HandlerConfig,
	log *logger.Logger,
) *AuthHandler {
	return &AuthHandler{
		BaseHandler:    NewBaseHandler(config, log),
		userService:    userService,
		summaryService: summaryService,
	}
}

// RegisterPublicRoutes sets up the unauthenticated auth routes. loginGuard
// runs in front of login only.
func (h *AuthHandler) RegisterPublicRoutes(router *gin.RouterGroup, loginGuard ...gin.HandlerFunc) {
	auth := router.Group("/auth")
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/login", append(loginGuard, h.Login)...)
	}
}

// RegisterRoutes sets up the auth routes that need a bearer token
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/logout", h.Logout)
		auth.POST("/refresh-token", h.RefreshToken)
		auth.GET("/profile", h.Profile)
	}
}

// Signup handles public account creation
// @Summary Sign up
// @Description Create an account. Requesting admin creates an unapproved admin without a token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup request"
// @Success 201 {object} services.AuthResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request format", err.Error())
		return
	}

	result, err := h.userService.Signup(c.Request.Context(), req.params(c))
	if err != nil {
		h.RespondServiceError(c, err, "Failed to create account")
		return
	}

	h.invalidateSummary(c)
	h.RespondCreated(c, result)
}

// Register handles account creation by an authenticated caller
// @Summary Register user
// @Description Admins create approved accounts at any level; other callers get the signup rules
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SignupRequest true "Registration request"
// @Success 201 {object} services.AuthResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request format", err.Error())
		return
	}

	result, err := h.userService.Register(c.Request.Context(), userCtx.Actor(), req.params(c))
	if err != nil {
		h.RespondServiceError(c, err, "Failed to register user")
		return
	}

	h.invalidateSummary(c)
	h.RespondCreated(c, result)
}

// Login handles user authentication
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} services.AuthResult
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Pending approval or deactivated"
// @Failure 429 {object} ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request format", err.Error())
		return
	}

	if req.Username == "" || req.Password == "" {
		h.RespondBadRequest(c, "Username and password are required")
		return
	}

	result, err := h.userService.Login(c.Request.Context(), services.LoginParams{
		Username: req.Username,
		Password: req.Password,
		Request:  requestInfo(c),
	})
	if err != nil {
		h.RespondServiceError(c, err, "Authentication failed")
		return
	}

	h.invalidateSummary(c)
	h.RespondSuccess(c, result)
}

// Logout records the logout and revokes the presented token
// @Summary Logout user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SuccessResponse
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	if err := h.userService.Logout(c.Request.Context(), userCtx.UserID, userCtx.Claims, requestInfo(c)); err != nil {
		h.RespondServiceError(c, err, "Failed to logout")
		return
	}

	h.invalidateSummary(c)
	h.RespondSuccess(c, SuccessResponse{Message: "Logged out successfully", Success: true})
}

// RefreshToken issues a new token for the current session
// @Summary Refresh token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.AuthResult
// @Router /api/v1/auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), userCtx.UserID)
	if err != nil {
		h.RespondServiceError(c, err, "Failed to refresh token")
		return
	}

	result, err := h.userService.RefreshToken(c.Request.Context(), user, userCtx.Claims)
	if err != nil {
		h.RespondServiceError(c, err, "Failed to refresh token")
		return
	}

	h.RespondSuccess(c, result)
}

// Profile returns the current user
// @Summary Current user profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Router /api/v1/auth/profile [get]
func (h *AuthHandler) Profile(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), userCtx.UserID)
	if err != nil {
		h.RespondServiceError(c, err, "Failed to load profile")
		return
	}

	h.RespondSuccess(c, user)
}

// invalidateSummary drops the cached dashboard so user counts and
// active sessions reflect this request
func (h *AuthHandler) invalidateSummary(c *gin.Context) {
	if h.summaryService != nil {
		h.summaryService.Invalidate(c.Request.Context())
	}
}

// Request types

type SignupRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Name      string `json:"name"`
	UserLevel string `json:"user_level"`
}

func (r SignupRequest) params(c *gin.Context) services.SignupParams {
	return services.SignupParams{
		Username:  r.Username,
		Email:     r.Email,
		Password:  r.Password,
		Name:      r.Name,
		UserLevel: models.UserLevel(r.UserLevel),
		Request:   requestInfo(c),
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
