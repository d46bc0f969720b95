package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vehicare/vehicare-api/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a write violates a uniqueness
	// constraint (user email or vehicle VIN).
	ErrDuplicate = errors.New("duplicate key")
)

// UserStore defines the persistence operations for user records. Emails are
// stored lowercase; callers normalize before lookup.
type UserStore interface {
	InsertUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id int) (*models.User, error)
	SetLastLogin(ctx context.Context, id int, at time.Time) error
}

// VehicleStore defines the persistence operations for vehicle records. VINs
// are stored uppercase; callers normalize before lookup.
type VehicleStore interface {
	InsertVehicle(ctx context.Context, vehicle *models.Vehicle) error
	FindVehicleByID(ctx context.Context, id int) (*models.Vehicle, error)
	FindVehiclesByOwner(ctx context.Context, userId int) ([]models.Vehicle, error)
	FindVehicleByIDAndOwner(ctx context.Context, id, userId int) (*models.Vehicle, error)
	ReplaceVehicle(ctx context.Context, vehicle *models.Vehicle) error
	DeleteVehicleByIDAndOwner(ctx context.Context, id, userId int) (bool, error)
	VehicleExistsByVIN(ctx context.Context, vin string) (bool, error)
}

// Store combines both record stores behind one backing implementation.
type Store interface {
	UserStore
	VehicleStore
}

// normalizeVIN maps a VIN to its canonical stored form.
func normalizeVIN(vin string) string {
	return strings.ToUpper(vin)
}
