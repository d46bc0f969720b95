package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vehicare/vehicare-api/internal/auth"
	"github.com/vehicare/vehicare-api/internal/config"
	"github.com/vehicare/vehicare-api/internal/db"
	"github.com/vehicare/vehicare-api/internal/models"
)

func testDirectory() *Directory {
	authService := auth.NewService(config.Config{
		JWTSecret:   "test-secret",
		JWTIssuer:   "test",
		JWTAudience: "test",
		JWTExpiry:   time.Hour,
	})
	return NewDirectory(db.NewMemoryStore(), authService)
}

func TestDirectory_Create(t *testing.T) {
	directory := testDirectory()
	ctx := context.Background()

	user, err := directory.Create(ctx, models.RegisterInput{
		Email:     "A@B.com",
		Password:  "secret1",
		FirstName: "A",
		LastName:  "B",
	})
	require.NoError(t, err)

	// Email is normalized to lowercase on write
	assert.Equal(t, "a@b.com", user.Email)
	assert.Equal(t, 1, user.Id)
	assert.True(t, user.IsActive)
	assert.NotZero(t, user.CreatedAt)
	assert.Nil(t, user.LastLoginAt)

	// The plaintext password is never stored
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.True(t, directory.VerifyPassword("secret1", user.PasswordHash))
}

func TestDirectory_FindByEmail(t *testing.T) {
	directory := testDirectory()
	ctx := context.Background()

	created, err := directory.Create(ctx, models.RegisterInput{
		Email:    "john.doe@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	// Any case variant finds the same record
	for _, email := range []string{
		"john.doe@example.com",
		"JOHN.DOE@EXAMPLE.COM",
		"John.Doe@Example.Com",
	} {
		found, err := directory.FindByEmail(ctx, email)
		require.NoError(t, err)
		require.NotNil(t, found, "lookup %q", email)
		assert.Equal(t, created.Id, found.Id)
	}

	// A miss is nil, not an error
	found, err := directory.FindByEmail(ctx, "missing@example.com")
	assert.NoError(t, err)
	assert.Nil(t, found)
}

func TestDirectory_FindById(t *testing.T) {
	directory := testDirectory()
	ctx := context.Background()

	created, err := directory.Create(ctx, models.RegisterInput{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)

	found, err := directory.FindById(ctx, created.Id)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.Email, found.Email)

	found, err = directory.FindById(ctx, 999)
	assert.NoError(t, err)
	assert.Nil(t, found)
}

func TestDirectory_VerifyPassword(t *testing.T) {
	directory := testDirectory()
	ctx := context.Background()

	user, err := directory.Create(ctx, models.RegisterInput{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)

	other, err := directory.Create(ctx, models.RegisterInput{Email: "c@d.com", Password: "secret2"})
	require.NoError(t, err)

	assert.True(t, directory.VerifyPassword("secret1", user.PasswordHash))
	assert.False(t, directory.VerifyPassword("secret1", other.PasswordHash))
	assert.False(t, directory.VerifyPassword("wrong", user.PasswordHash))
}

func TestDirectory_TouchLastLogin(t *testing.T) {
	directory := testDirectory()
	ctx := context.Background()

	user, err := directory.Create(ctx, models.RegisterInput{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, directory.TouchLastLogin(ctx, user.Id))

	found, err := directory.FindById(ctx, user.Id)
	require.NoError(t, err)
	require.NotNil(t, found.LastLoginAt)
	assert.WithinDuration(t, time.Now(), *found.LastLoginAt, 5*time.Second)

	// An unknown id is a silent no-op
	assert.NoError(t, directory.TouchLastLogin(ctx, 999))
}
