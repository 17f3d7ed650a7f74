package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/archivus/masterdocs/internal/domain/services"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "masterdocs"

// Claims is the signed payload of a bearer token
type Claims struct {
	UserID    string `json:"id"`
	Username  string `json:"username"`
	UserLevel string `json:"user_level"`
	jwt.RegisteredClaims
}

// Service issues and validates HS256 tokens
type Service struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

type Config struct {
	Secret string
	Expiry time.Duration
}

func NewService(config Config) (*Service, error) {
	if config.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if config.Expiry <= 0 {
		config.Expiry = 24 * time.Hour
	}
	return &Service{
		secret: []byte(config.Secret),
		expiry: config.Expiry,
		now:    time.Now,
	}, nil
}

func (s *Service) GenerateToken(user *models.User) (string, *services.TokenClaims, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.expiry)
	tokenID := uuid.New().String()

	claims := Claims{
		UserID:    user.ID.String(),
		Username:  user.Username,
		UserLevel: string(user.UserLevel),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Issuer:    issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	return signed, &services.TokenClaims{
		TokenID:   tokenID,
		UserID:    user.ID,
		Username:  user.Username,
		UserLevel: user.UserLevel,
		ExpiresAt: expiresAt.Truncate(time.Second),
	}, nil
}

func (s *Service) ValidateToken(tokenString string) (*services.TokenClaims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", services.ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", services.ErrInvalidToken)
	}

	return &services.TokenClaims{
		TokenID:   claims.ID,
		UserID:    userID,
		Username:  claims.Username,
		UserLevel: models.UserLevel(claims.UserLevel),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
