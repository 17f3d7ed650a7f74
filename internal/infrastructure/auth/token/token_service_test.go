package token

import (
	"testing"
	"time"

	"github.com/archivus/masterdocs/internal/domain/services"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	return &models.User{ID: uuid.New(), Username: "archivist", UserLevel: models.UserLevelLevel1}
}

func TestNewService_RequiresSecret(t *testing.T) {
	_, err := NewService(Config{})
	assert.Error(t, err)
}

func TestService_RoundTrip(t *testing.T) {
	svc, err := NewService(Config{Secret: "test-secret", Expiry: time.Hour})
	require.NoError(t, err)

	user := testUser()
	signed, issued, err := svc.GenerateToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.TokenID)

	claims, err := svc.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "archivist", claims.Username)
	assert.Equal(t, models.UserLevelLevel1, claims.UserLevel)
	assert.Equal(t, issued.TokenID, claims.TokenID)
	assert.WithinDuration(t, issued.ExpiresAt, claims.ExpiresAt, time.Second)
}

func TestService_TokensAreUnique(t *testing.T) {
	svc, err := NewService(Config{Secret: "test-secret"})
	require.NoError(t, err)

	user := testUser()
	_, first, err := svc.GenerateToken(user)
	require.NoError(t, err)
	_, second, err := svc.GenerateToken(user)
	require.NoError(t, err)
	assert.NotEqual(t, first.TokenID, second.TokenID)
}

func TestService_RejectsExpired(t *testing.T) {
	svc, err := NewService(Config{Secret: "test-secret", Expiry: time.Minute})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }
	signed, _, err := svc.GenerateToken(testUser())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestService_RejectsWrongSecret(t *testing.T) {
	issuerSvc, err := NewService(Config{Secret: "secret-a"})
	require.NoError(t, err)
	verifier, err := NewService(Config{Secret: "secret-b"})
	require.NoError(t, err)

	signed, _, err := issuerSvc.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = verifier.ValidateToken(signed)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestService_RejectsOtherAlgorithms(t *testing.T) {
	svc, err := NewService(Config{Secret: "test-secret"})
	require.NoError(t, err)

	claims := Claims{
		UserID: uuid.New().String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(unsigned)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestService_RejectsGarbage(t *testing.T) {
	svc, err := NewService(Config{Secret: "test-secret"})
	require.NoError(t, err)

	_, err = svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}
