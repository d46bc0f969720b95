package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/vehicare/vehicare-api/internal/config"
	"github.com/vehicare/vehicare-api/internal/models"
)

// ErrInvalidToken covers every verification failure: bad signature, wrong
// issuer or audience, expiry, malformed input. Callers get no indication of
// which check failed.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the set of claims embedded in an issued token.
type Claims struct {
	UserId     string `json:"userId"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	jwt.RegisteredClaims
}

// UserIdInt returns the numeric user id carried by the claims.
func (c *Claims) UserIdInt() (int, bool) {
	id, err := strconv.Atoi(c.UserId)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Service hashes passwords and issues and verifies tokens.
type Service struct {
	secret   []byte
	issuer   string
	audience string
	tokenExp time.Duration
}

// NewService creates an authentication service from configuration.
func NewService(cfg config.Config) *Service {
	exp := cfg.JWTExpiry
	if exp <= 0 {
		exp = 24 * time.Hour
	}
	return &Service{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.JWTIssuer,
		audience: cfg.JWTAudience,
		tokenExp: exp,
	}
}

// HashPassword hashes a password using bcrypt.
func (s *Service) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword reports whether a password matches a stored hash. A
// mismatch is just false, never an error.
func (s *Service) CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateToken issues a signed HS256 token for a user, valid for the
// configured expiry.
func (s *Service) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	id := strconv.Itoa(user.Id)

	claims := Claims{
		UserId:     id,
		Email:      user.Email,
		GivenName:  user.FirstName,
		FamilyName: user.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenExp)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken verifies signature, issuer, audience and expiry, and
// returns the embedded claims. Any failure yields ErrInvalidToken.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.audience), jwt.WithExpirationRequired())

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserId == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractTokenFromHeader extracts the bearer token from an Authorization
// header value.
func (s *Service) ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrInvalidToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrInvalidToken
	}

	return parts[1], nil
}
