package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vehicare/vehicare-api/internal/auth"
	"github.com/vehicare/vehicare-api/internal/db"
	"github.com/vehicare/vehicare-api/internal/models"
)

// Directory owns user identity records. It is the sole writer of user rows.
type Directory struct {
	store       db.UserStore
	authService *auth.Service
}

// NewDirectory creates a user directory over a store.
func NewDirectory(store db.UserStore, authService *auth.Service) *Directory {
	return &Directory{
		store:       store,
		authService: authService,
	}
}

// FindByEmail looks up a user by email, case-insensitively. Returns nil
// without error when no user matches.
func (d *Directory) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := d.store.FindUserByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return user, nil
}

// FindById looks up a user by id. Returns nil without error when no user
// matches.
func (d *Directory) FindById(ctx context.Context, id int) (*models.User, error) {
	user, err := d.store.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return user, nil
}

// Create registers a new user. The email is normalized to lowercase and the
// password is hashed before storage; plaintext is never persisted. Callers
// are expected to pre-check for an existing email to produce a friendly
// duplicate error; the store's uniqueness constraint is the backstop.
func (d *Directory) Create(ctx context.Context, input models.RegisterInput) (*models.User, error) {
	hash, err := d.authService.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        strings.ToLower(input.Email),
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		CreatedAt:    time.Now().UTC(),
		IsActive:     true,
	}

	if err := d.store.InsertUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// VerifyPassword reports whether the password matches the stored hash.
func (d *Directory) VerifyPassword(password, hash string) bool {
	return d.authService.CheckPassword(password, hash)
}

// TouchLastLogin stamps the user's last login time. An unknown id is a
// silent no-op, not an error.
func (d *Directory) TouchLastLogin(ctx context.Context, id int) error {
	err := d.store.SetLastLogin(ctx, id, time.Now().UTC())
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			log.WithField("user_id", id).Debug("TouchLastLogin for unknown user ignored")
			return nil
		}
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}
