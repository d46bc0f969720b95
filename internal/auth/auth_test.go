package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vehicare/vehicare-api/internal/config"
	"github.com/vehicare/vehicare-api/internal/models"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:   "test-secret-key-that-is-long-enough",
		JWTIssuer:   "test-issuer",
		JWTAudience: "test-audience",
		JWTExpiry:   24 * time.Hour,
	}
}

func testUser() *models.User {
	return &models.User{
		Id:        123,
		Email:     "john@example.com",
		FirstName: "John",
		LastName:  "Doe",
		IsActive:  true,
		CreatedAt: time.Now(),
	}
}

func TestService_HashPassword(t *testing.T) {
	service := NewService(testConfig())

	password := "testpassword123"
	hash, err := service.HashPassword(password)

	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)
}

func TestService_CheckPassword(t *testing.T) {
	service := NewService(testConfig())

	password := "testpassword123"
	hash, _ := service.HashPassword(password)

	// Test correct password
	assert.True(t, service.CheckPassword(password, hash))

	// Test incorrect password
	assert.False(t, service.CheckPassword("wrongpassword", hash))
}

func TestService_GenerateToken(t *testing.T) {
	service := NewService(testConfig())

	token, err := service.GenerateToken(testUser())
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestService_ValidateToken(t *testing.T) {
	service := NewService(testConfig())
	user := testUser()

	token, err := service.GenerateToken(user)
	require.NoError(t, err)

	// Test valid token
	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "123", claims.UserId)
	assert.Equal(t, "123", claims.Subject)
	assert.Equal(t, "john@example.com", claims.Email)
	assert.Equal(t, "John", claims.GivenName)
	assert.Equal(t, "Doe", claims.FamilyName)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.Contains(t, claims.Audience, "test-audience")

	id, ok := claims.UserIdInt()
	assert.True(t, ok)
	assert.Equal(t, 123, id)

	// Test invalid token
	_, err = service.ValidateToken("invalid-token")
	assert.Error(t, err)
	assert.Equal(t, ErrInvalidToken, err)

	// Test token with Bearer prefix
	_, err = service.ValidateToken("Bearer " + token)
	assert.NoError(t, err)
}

func TestService_ValidateToken_WrongIssuer(t *testing.T) {
	cfg := testConfig()
	service := NewService(cfg)

	cfg.JWTIssuer = "other-issuer"
	other := NewService(cfg)

	token, err := other.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_ValidateToken_WrongAudience(t *testing.T) {
	cfg := testConfig()
	service := NewService(cfg)

	cfg.JWTAudience = "other-audience"
	other := NewService(cfg)

	token, err := other.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_ValidateToken_WrongSecret(t *testing.T) {
	cfg := testConfig()
	service := NewService(cfg)

	cfg.JWTSecret = "a-completely-different-secret"
	other := NewService(cfg)

	token, err := other.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_ValidateToken_Expired(t *testing.T) {
	cfg := testConfig()
	service := NewService(cfg)

	// Hand-craft a token that expired an hour ago.
	now := time.Now()
	expired := Claims{
		UserId: "123",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "123",
			Issuer:    cfg.JWTIssuer,
			Audience:  jwt.ClaimStrings{cfg.JWTAudience},
			IssuedAt:  jwt.NewNumericDate(now.Add(-25 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expired).SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_ExtractTokenFromHeader(t *testing.T) {
	service := NewService(testConfig())

	// Test valid header
	token := "valid-token"
	extracted, err := service.ExtractTokenFromHeader("Bearer " + token)
	assert.NoError(t, err)
	assert.Equal(t, token, extracted)

	// Test empty header
	_, err = service.ExtractTokenFromHeader("")
	assert.Error(t, err)
	assert.Equal(t, ErrInvalidToken, err)

	// Test invalid format
	_, err = service.ExtractTokenFromHeader("InvalidFormat")
	assert.Error(t, err)
	assert.Equal(t, ErrInvalidToken, err)

	// Test missing token
	_, err = service.ExtractTokenFromHeader("Bearer ")
	assert.Error(t, err)
	assert.Equal(t, ErrInvalidToken, err)
}
