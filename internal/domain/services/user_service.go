package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/archivus/masterdocs/internal/domain/repositories"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/archivus/masterdocs/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUserExists            = errors.New("username or email already exists")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrIncorrectPassword     = errors.New("current password is incorrect")
	ErrAdminPendingApproval  = errors.New("admin account pending approval")
	ErrAccountDeactivated    = errors.New("account is deactivated")
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrTokenRevoked          = errors.New("token has been revoked")
	ErrWeakPassword          = errors.New("password must be at least 8 characters with an uppercase letter, a digit and a symbol, without spaces or underscores")
	ErrPasswordTooShort      = errors.New("password must be at least 8 characters")
	ErrInvalidUsername       = errors.New("username must be non-empty and contain no whitespace")
	ErrInvalidEmail          = errors.New("invalid email format")
	ErrInvalidUserLevel      = errors.New("invalid user level")
	ErrLastAdmin             = errors.New("cannot remove the last admin user")
	ErrCannotDeactivateAdmin = errors.New("admin accounts cannot be deactivated")
)

// Messages returned alongside auth results
const (
	MessagePendingApproval = "Account created and pending admin approval"
	MessageUserCreated     = "User registered successfully"
	MessageLoggedIn        = "User logged in successfully"
)

const MinPasswordLength = 8

var (
	emailRegex      = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)
	whitespaceRegex = regexp.MustCompile(`\s`)
	upperRegex      = regexp.MustCompile(`[A-Z]`)
	digitRegex      = regexp.MustCompile(`[0-9]`)
	symbolRegex     = regexp.MustCompile(`[^\w\s]`)
	forbiddenRegex  = regexp.MustCompile(`[\s_]`)
)

// UserServiceConfig holds configuration for user management
type UserServiceConfig struct {
	BcryptCost int
}

func DefaultUserServiceConfig() UserServiceConfig {
	return UserServiceConfig{BcryptCost: bcrypt.DefaultCost}
}

// UserService handles accounts, authentication and sessions
type UserService struct {
	userRepo     repositories.UserRepository
	activity     *ActivityService
	tokenService TokenService
	cache        CacheService
	logger       *logger.Logger
	config       UserServiceConfig
}

// NewUserService creates a new user service. cache may be nil, in which case
// logout cannot revoke tokens before they expire.
func NewUserService(
	userRepo repositories.UserRepository,
	activity *ActivityService,
	tokenService TokenService,
	cache CacheService,
	log *logger.Logger,
	config UserServiceConfig,
) *UserService {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &UserService{
		userRepo:     userRepo,
		activity:     activity,
		tokenService: tokenService,
		cache:        cache,
		logger:       log,
		config:       config,
	}
}

// SignupParams contains parameters for creating an account
type SignupParams struct {
	Username  string           `json:"username"`
	Email     string           `json:"email"`
	Password  string           `json:"password"`
	Name      string           `json:"name"`
	UserLevel models.UserLevel `json:"user_level"`
	Request   RequestInfo      `json:"-"`
}

// LoginParams contains parameters for user login
type LoginParams struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Request  RequestInfo `json:"-"`
}

// AuthResult is the outcome of signup, login and refresh. Token is empty when
// the account still needs approval or was created by an admin for someone else.
type AuthResult struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	Message   string       `json:"message"`
}

// UpdateUserParams is a partial update; nil fields stay unchanged
type UpdateUserParams struct {
	Username   *string           `json:"username"`
	Email      *string           `json:"email"`
	Name       *string           `json:"name"`
	UserLevel  *models.UserLevel `json:"user_level"`
	IsApproved *bool             `json:"is_approved"`
}

// SessionInfo is one row of the session view
type SessionInfo struct {
	ID         uuid.UUID        `json:"id"`
	Username   string           `json:"username"`
	Name       string           `json:"name"`
	UserLevel  models.UserLevel `json:"user_level"`
	LastLogin  *time.Time       `json:"last_login"`
	LastLogout *time.Time       `json:"last_logout"`
	Active     bool             `json:"active"`
}

// Signup creates an account through the public endpoint. Requesting admin
// yields an unapproved admin and no token; any unknown level becomes level3.
func (s *UserService) Signup(ctx context.Context, params SignupParams) (*AuthResult, error) {
	level := params.UserLevel
	if !level.Valid() {
		level = models.UserLevelLevel3
	}
	approved := level != models.UserLevelAdmin

	user, err := s.createUser(ctx, params, level, approved)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, ActivityEntry{
		UserID:      user.ID,
		Action:      models.ActionCreate,
		EntityType:  models.EntityUser,
		EntityID:    &user.ID,
		Description: fmt.Sprintf("Signed up: %s", user.Username),
		Request:     params.Request,
	})

	if !approved {
		return &AuthResult{User: user, Message: MessagePendingApproval}, nil
	}
	return s.issue(user, MessageUserCreated)
}

// Register creates an account on behalf of the caller. Admins may choose any
// level and the account is approved immediately; everyone else gets the
// public signup rules.
func (s *UserService) Register(ctx context.Context, actor Actor, params SignupParams) (*AuthResult, error) {
	if !actor.Level.IsExactly(models.UserLevelAdmin) {
		return s.Signup(ctx, params)
	}

	level := params.UserLevel
	if level == "" {
		level = models.UserLevelLevel3
	}
	if !level.Valid() {
		return nil, ErrInvalidUserLevel
	}

	user, err := s.createUser(ctx, params, level, true)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, ActivityEntry{
		UserID:      actor.ID,
		Action:      models.ActionCreate,
		EntityType:  models.EntityUser,
		EntityID:    &user.ID,
		Description: fmt.Sprintf("Registered user: %s", user.Username),
		Request:     params.Request,
	})

	return &AuthResult{User: user, Message: MessageUserCreated}, nil
}

// Login verifies credentials and issues a token
func (s *UserService) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(params.Username))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !s.verifyPassword(params.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if err := checkAccess(user); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLogin = &now

	s.activity.Record(ctx, ActivityEntry{
		UserID:      user.ID,
		Action:      models.ActionLogin,
		EntityType:  models.EntityUser,
		EntityID:    &user.ID,
		Description: MessageLoggedIn,
		Request:     params.Request,
	})

	return s.issue(user, MessageLoggedIn)
}

// Logout records the logout and revokes the presented token until it expires
func (s *UserService) Logout(ctx context.Context, userID uuid.UUID, claims *TokenClaims, request RequestInfo) error {
	now := time.Now().UTC()
	if err := s.userRepo.UpdateLastLogout(ctx, userID, now); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to record logout: %w", err)
	}

	if claims != nil {
		s.revoke(ctx, claims)
	}

	s.activity.Record(ctx, ActivityEntry{
		UserID:      userID,
		Action:      models.ActionLogout,
		EntityType:  models.EntityUser,
		EntityID:    &userID,
		Description: "User logged out",
		Request:     request,
	})
	return nil
}

// ResolveSession validates a bearer token and reloads its user, applying the
// same approval and activation gates as login.
func (s *UserService) ResolveSession(ctx context.Context, token string) (*models.User, *TokenClaims, error) {
	claims, err := s.tokenService.ValidateToken(token)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}

	revoked, err := s.IsTokenRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, nil, err
	}
	if revoked {
		return nil, nil, ErrTokenRevoked
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := checkAccess(user); err != nil {
		return nil, nil, err
	}
	return user, claims, nil
}

// IsTokenRevoked reports whether logout revoked the token id
func (s *UserService) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	if s.cache == nil || tokenID == "" {
		return false, nil
	}
	revoked, err := s.cache.Exists(ctx, fmt.Sprintf(RevokedTokenKeyPattern, tokenID))
	if err != nil {
		// Fail open: the signature and expiry were already checked
		s.logger.Warn("Failed to check token revocation", "error", err)
		return false, nil
	}
	return revoked, nil
}

// RefreshToken issues a new token and revokes the old one
func (s *UserService) RefreshToken(ctx context.Context, user *models.User, old *TokenClaims) (*AuthResult, error) {
	result, err := s.issue(user, "Token refreshed")
	if err != nil {
		return nil, err
	}
	if old != nil {
		s.revoke(ctx, old)
	}
	return result, nil
}

// GetProfile returns the caller's own account
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.loadUser(ctx, userID)
}

// ListUsers is admin only, newest first unless sorting is requested
func (s *UserService) ListUsers(ctx context.Context, actor Actor, params repositories.ListParams) ([]models.User, int64, error) {
	if !actor.Level.IsExactly(models.UserLevelAdmin) {
		return nil, 0, ErrForbidden
	}
	return s.userRepo.List(ctx, params)
}

// GetUser is allowed for admins and for the user themself
func (s *UserService) GetUser(ctx context.Context, actor Actor, userID uuid.UUID) (*models.User, error) {
	if !isAdminOrSelf(actor, userID) {
		return nil, ErrForbidden
	}
	return s.loadUser(ctx, userID)
}

// UpdateUser applies a partial update. Only admins may change the level or
// approval of an account.
func (s *UserService) UpdateUser(ctx context.Context, actor Actor, userID uuid.UUID, params UpdateUserParams, request RequestInfo) (*models.User, error) {
	if !isAdminOrSelf(actor, userID) {
		return nil, ErrForbidden
	}
	isAdmin := actor.Level.IsExactly(models.UserLevelAdmin)
	if !isAdmin && (params.UserLevel != nil || params.IsApproved != nil) {
		return nil, ErrForbidden
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if params.Username != nil && *params.Username != user.Username {
		username := strings.TrimSpace(*params.Username)
		if err := validateUsername(username); err != nil {
			return nil, err
		}
		if err := s.ensureAvailable(ctx, s.userRepo.ExistsByUsername, username, user.ID); err != nil {
			return nil, err
		}
		user.Username = username
	}
	if params.Email != nil && *params.Email != user.Email {
		email := strings.ToLower(strings.TrimSpace(*params.Email))
		if !emailRegex.MatchString(email) {
			return nil, ErrInvalidEmail
		}
		if err := s.ensureAvailable(ctx, s.userRepo.ExistsByEmail, email, user.ID); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if params.Name != nil {
		user.Name = strings.TrimSpace(*params.Name)
	}
	if params.UserLevel != nil {
		if !params.UserLevel.Valid() {
			return nil, ErrInvalidUserLevel
		}
		if user.UserLevel == models.UserLevelAdmin && *params.UserLevel != models.UserLevelAdmin {
			if err := s.ensureOtherAdmin(ctx); err != nil {
				return nil, err
			}
		}
		user.UserLevel = *params.UserLevel
	}
	if params.IsApproved != nil {
		user.IsApproved = *params.IsApproved
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.activity.Record(ctx, ActivityEntry{
		UserID:      actor.ID,
		Action:      models.ActionUpdate,
		EntityType:  models.EntityUser,
		EntityID:    &user.ID,
		Description: fmt.Sprintf("Updated user: %s", user.Username),
		Request:     request,
	})
	return user, nil
}

// DeleteUser is admin only and refuses to remove the last admin
func (s *UserService) DeleteUser(ctx context.Context, actor Actor, userID uuid.UUID, request RequestInfo) error {
	if !actor.Level.IsExactly(models.UserLevelAdmin) {
		return ErrForbidden
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	if user.UserLevel == models.UserLevelAdmin {
		if err := s.ensureOtherAdmin(ctx); err != nil {
			return err
		}
	}

	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.activity.Record(ctx, ActivityEntry{
		UserID:      actor.ID,
		Action:      models.ActionDelete,
		EntityType:  models.EntityUser,
		EntityID:    &user.ID,
		Description: fmt.Sprintf("Deleted user: %s", user.Username),
		Request:     request,
	})
	return nil
}

// ensureOtherAdmin fails when removing one admin would leave none
func (s *UserService) ensureOtherAdmin(ctx context.Context) error {
	counts, err := s.userRepo.CountByLevel(ctx)
	if err != nil {
		return err
	}
	if counts[models.UserLevelAdmin] <= 1 {
		return ErrLastAdmin
	}
	return nil
}

// ChangePassword lets a user replace their own password
func (s *UserService) ChangePassword(ctx context.Context, actor Actor, userID uuid.UUID, currentPassword, newPassword string) error {
	if actor.ID != userID {
		return ErrForbidden
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	if !s.verifyPassword(currentPassword, user.PasswordHash) {
		return ErrIncorrectPassword
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	return s.setPassword(ctx, user, newPassword)
}

// ResetPassword lets an admin set any user's password
func (s *UserService) ResetPassword(ctx context.Context, actor Actor, userID uuid.UUID, newPassword string) error {
	if !actor.Level.IsExactly(models.UserLevelAdmin) {
		return ErrForbidden
	}
	if len(newPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.setPassword(ctx, user, newPassword)
}

// ApproveUser marks a pending account approved
func (s *UserService) ApproveUser(ctx context.Context, actor Actor, userID uuid.UUID, request RequestInfo) (*models.User, error) {
	approved := true
	return s.UpdateUser(ctx, actor, userID, UpdateUserParams{IsApproved: &approved}, request)
}

// SetUserActive activates or deactivates a non-admin account
func (s *UserService) SetUserActive(ctx context.Context, actor Actor, userID uuid.UUID, active bool, request RequestInfo) (*models.User, error) {
	if !actor.Level.IsExactly(models.UserLevelAdmin) {
		return nil, ErrForbidden
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.UserLevel == models.UserLevelAdmin {
		return nil, ErrCannotDeactivateAdmin
	}

	user.IsActive = active
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	verb := "Deactivated"
	if active {
		verb = "Activated"
	}
	s.activity.Record(ctx, ActivityEntry{
		UserID:      actor.ID,
		Action:      models.ActionUpdate,
		EntityType:  models.EntityUser,
		EntityID:    &user.ID,
		Description: fmt.Sprintf("%s user: %s", verb, user.Username),
		Request:     request,
	})
	return user, nil
}

// ListSessions returns every user with the active-session heuristic applied at now
func (s *UserService) ListSessions(ctx context.Context, actor Actor, now time.Time) ([]SessionInfo, error) {
	if !actor.Level.IsExactly(models.UserLevelAdmin) {
		return nil, ErrForbidden
	}
	return s.Sessions(ctx, now)
}

// Sessions is ListSessions without the caller check, for maintenance commands
func (s *UserService) Sessions(ctx context.Context, now time.Time) ([]SessionInfo, error) {
	users, err := s.userRepo.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	sessions := make([]SessionInfo, 0, len(users))
	for i := range users {
		user := &users[i]
		sessions = append(sessions, SessionInfo{
			ID:         user.ID,
			Username:   user.Username,
			Name:       user.Name,
			UserLevel:  user.UserLevel,
			LastLogin:  user.LastLogin,
			LastLogout: user.LastLogout,
			Active:     IsActiveSession(user, now),
		})
	}
	return sessions, nil
}

// ForceLogout records a logout for username so the session heuristic stops
// counting it as active
func (s *UserService) ForceLogout(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.userRepo.UpdateLastLogout(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record logout: %w", err)
	}
	user.LastLogout = &now

	s.logger.Info("Forced logout", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// EnsureAdmin creates the admin account, or promotes, approves and re-keys an
// existing account with that username. It reports whether a row was created.
func (s *UserService) EnsureAdmin(ctx context.Context, username, email, password string) (*models.User, bool, error) {
	if err := validatePassword(password); err != nil {
		return nil, false, err
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, false, err
	}

	if user == nil {
		user, err = s.createUser(ctx, SignupParams{
			Username: username,
			Email:    email,
			Password: password,
			Name:     "Administrator",
		}, models.UserLevelAdmin, true)
		if err != nil {
			return nil, false, err
		}
		s.logger.Info("Admin user created", "user_id", user.ID, "username", user.Username)
		return user, true, nil
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, false, err
	}
	user.PasswordHash = hash
	user.UserLevel = models.UserLevelAdmin
	user.IsApproved = true
	user.IsActive = true
	if email != "" {
		user.Email = strings.ToLower(strings.TrimSpace(email))
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, false, fmt.Errorf("failed to update admin user: %w", err)
	}

	s.logger.Info("Admin user updated", "user_id", user.ID, "username", user.Username)
	return user, false, nil
}

// Helper methods

func (s *UserService) createUser(ctx context.Context, params SignupParams, level models.UserLevel, approved bool) (*models.User, error) {
	username := strings.TrimSpace(params.Username)
	email := strings.ToLower(strings.TrimSpace(params.Email))

	// 1. Validate input
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if !emailRegex.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if err := validatePassword(params.Password); err != nil {
		return nil, err
	}

	// 2. Check uniqueness
	if err := s.ensureAvailable(ctx, s.userRepo.ExistsByUsername, username, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.ensureAvailable(ctx, s.userRepo.ExistsByEmail, email, uuid.Nil); err != nil {
		return nil, err
	}

	// 3. Hash and create
	hash, err := s.hashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(params.Name),
		UserLevel:    level,
		IsApproved:   approved,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User created",
		"user_id", user.ID,
		"username", user.Username,
		"user_level", user.UserLevel,
		"approved", user.IsApproved)
	return user, nil
}

func (s *UserService) ensureAvailable(ctx context.Context, exists func(context.Context, string, uuid.UUID) (bool, error), value string, excludeID uuid.UUID) error {
	taken, err := exists(ctx, value, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return ErrUserExists
	}
	return nil
}

func (s *UserService) setPassword(ctx context.Context, user *models.User, password string) error {
	hash, err := s.hashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *UserService) issue(user *models.User, message string) (*AuthResult, error) {
	token, claims, err := s.tokenService.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	expiresAt := claims.ExpiresAt
	return &AuthResult{User: user, Token: token, ExpiresAt: &expiresAt, Message: message}, nil
}

func (s *UserService) revoke(ctx context.Context, claims *TokenClaims) {
	if s.cache == nil || claims.TokenID == "" {
		return
	}
	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return
	}
	key := fmt.Sprintf(RevokedTokenKeyPattern, claims.TokenID)
	if err := s.cache.Set(ctx, key, "1", ttl); err != nil {
		s.logger.Warn("Failed to revoke token", "user_id", claims.UserID, "error", err)
	}
}

func (s *UserService) loadUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	return string(bytes), err
}

func (s *UserService) verifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// checkAccess applies the login gates. Admins are exempt from the active flag.
func checkAccess(user *models.User) error {
	if user.UserLevel == models.UserLevelAdmin {
		if !user.IsApproved {
			return ErrAdminPendingApproval
		}
		return nil
	}
	if !user.IsActive {
		return ErrAccountDeactivated
	}
	return nil
}

func isAdminOrSelf(actor Actor, userID uuid.UUID) bool {
	return actor.Level.IsExactly(models.UserLevelAdmin) || actor.ID == userID
}

func validateUsername(username string) error {
	if username == "" || whitespaceRegex.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	if !upperRegex.MatchString(password) || !digitRegex.MatchString(password) || !symbolRegex.MatchString(password) {
		return ErrWeakPassword
	}
	if forbiddenRegex.MatchString(password) {
		return ErrWeakPassword
	}
	return nil
}
