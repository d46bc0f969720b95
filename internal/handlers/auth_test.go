package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vehicare/vehicare-api/internal/auth"
	"github.com/vehicare/vehicare-api/internal/config"
	"github.com/vehicare/vehicare-api/internal/db"
	"github.com/vehicare/vehicare-api/internal/middleware"
	"github.com/vehicare/vehicare-api/internal/models"
	"github.com/vehicare/vehicare-api/internal/users"
)

func testAuthHandler() (*AuthHandler, *users.Directory, *auth.Service) {
	authService := auth.NewService(config.Config{
		JWTSecret:   "test-secret",
		JWTIssuer:   "test",
		JWTAudience: "test",
		JWTExpiry:   time.Hour,
	})
	directory := users.NewDirectory(db.NewMemoryStore(), authService)
	return NewAuthHandler(directory, authService), directory, authService
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func TestAuthHandler_Register(t *testing.T) {
	handler, _, _ := testAuthHandler()

	rec := postJSON(t, handler.Register, "/api/auth/register", models.RegisterInput{
		Email:     "A@B.com",
		Password:  "secret1",
		FirstName: "A",
		LastName:  "B",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var payload models.RegisterPayload
	decodeInto(t, rec, &payload)
	require.NotNil(t, payload.User)
	assert.Empty(t, payload.Error)
	assert.Empty(t, payload.FieldErrors)

	// Email comes back normalized
	assert.Equal(t, "a@b.com", payload.User.Email)
	assert.Equal(t, 1, payload.User.Id)
	assert.True(t, payload.User.IsActive)
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	handler, _, _ := testAuthHandler()

	input := models.RegisterInput{Email: "a@b.com", Password: "secret1", FirstName: "A", LastName: "B"}
	rec := postJSON(t, handler.Register, "/api/auth/register", input)
	require.Equal(t, http.StatusCreated, rec.Code)

	// A case variant of an existing email is still a conflict
	input.Email = "A@B.COM"
	rec = postJSON(t, handler.Register, "/api/auth/register", input)
	assert.Equal(t, http.StatusOK, rec.Code)

	var payload models.RegisterPayload
	decodeInto(t, rec, &payload)
	assert.Equal(t, "User with this email already exists", payload.Error)
	assert.Nil(t, payload.User)
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	handler, _, _ := testAuthHandler()

	rec := postJSON(t, handler.Register, "/api/auth/register", models.RegisterInput{
		Email:    "not-an-email",
		Password: "123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var payload models.RegisterPayload
	decodeInto(t, rec, &payload)
	assert.Nil(t, payload.User)
	require.NotEmpty(t, payload.FieldErrors)

	fields := make(map[string]bool)
	for _, fe := range payload.FieldErrors {
		fields[fe.Field] = true
	}
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])
	assert.True(t, fields["firstName"])
	assert.True(t, fields["lastName"])
}

func TestAuthHandler_Login(t *testing.T) {
	handler, directory, authService := testAuthHandler()
	ctx := context.Background()

	_, err := directory.Create(ctx, models.RegisterInput{
		Email:     "A@B.com",
		Password:  "secret1",
		FirstName: "A",
		LastName:  "B",
	})
	require.NoError(t, err)

	// Credentials match regardless of email case
	rec := postJSON(t, handler.Login, "/api/auth/login", models.LoginInput{
		Email:    "A@B.COM",
		Password: "secret1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var payload models.LoginPayload
	decodeInto(t, rec, &payload)
	assert.Empty(t, payload.Error)
	require.NotEmpty(t, payload.Token)
	require.NotNil(t, payload.User)
	assert.Equal(t, "a@b.com", payload.User.Email)

	// The issued token verifies and identifies the user
	claims, err := authService.ValidateToken(payload.Token)
	require.NoError(t, err)
	userId, ok := claims.UserIdInt()
	require.True(t, ok)
	assert.Equal(t, payload.User.Id, userId)

	// Last login is stamped
	stored, err := directory.FindById(ctx, payload.User.Id)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt)
	assert.WithinDuration(t, time.Now(), *stored.LastLoginAt, 5*time.Second)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	handler, directory, _ := testAuthHandler()

	_, err := directory.Create(context.Background(), models.RegisterInput{
		Email:    "a@b.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	rec := postJSON(t, handler.Login, "/api/auth/login", models.LoginInput{
		Email:    "a@b.com",
		Password: "wrong",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var payload models.LoginPayload
	decodeInto(t, rec, &payload)
	assert.Equal(t, "Invalid email or password", payload.Error)
	assert.Empty(t, payload.Token)
	assert.Nil(t, payload.User)
}

func TestAuthHandler_Login_UnknownEmail(t *testing.T) {
	handler, _, _ := testAuthHandler()

	// Same message as a wrong password so account existence does not leak
	rec := postJSON(t, handler.Login, "/api/auth/login", models.LoginInput{
		Email:    "missing@example.com",
		Password: "secret1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var payload models.LoginPayload
	decodeInto(t, rec, &payload)
	assert.Equal(t, "Invalid email or password", payload.Error)
	assert.Empty(t, payload.Token)
}

func TestAuthHandler_Login_Validation(t *testing.T) {
	handler, _, _ := testAuthHandler()

	rec := postJSON(t, handler.Login, "/api/auth/login", models.LoginInput{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var payload models.LoginPayload
	decodeInto(t, rec, &payload)
	assert.Empty(t, payload.Token)
	assert.NotEmpty(t, payload.FieldErrors)
}

func TestAuthHandler_Login_InvalidJSON(t *testing.T) {
	handler, _, _ := testAuthHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_Me(t *testing.T) {
	handler, directory, authService := testAuthHandler()
	ctx := context.Background()

	user, err := directory.Create(ctx, models.RegisterInput{
		Email:     "a@b.com",
		Password:  "secret1",
		FirstName: "A",
		LastName:  "B",
	})
	require.NoError(t, err)

	token, err := authService.GenerateToken(user)
	require.NoError(t, err)
	claims, err := authService.ValidateToken(token)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, claims))
	rec := httptest.NewRecorder()
	handler.Me(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var got models.User
	decodeInto(t, rec, &got)
	assert.Equal(t, user.Id, got.Id)
	assert.Equal(t, "a@b.com", got.Email)
}

func TestAuthHandler_Me_NoIdentity(t *testing.T) {
	handler, _, _ := testAuthHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()
	handler.Me(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null\n", rec.Body.String())
}

func TestAuthHandler_Status(t *testing.T) {
	handler, _, _ := testAuthHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	handler.Status(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decodeInto(t, rec, &body)
	assert.Equal(t, "API is running", body["status"])
}
