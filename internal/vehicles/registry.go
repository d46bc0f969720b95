package vehicles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vehicare/vehicare-api/internal/db"
	"github.com/vehicare/vehicare-api/internal/models"
)

// Registry owns vehicle records. It is the sole writer of vehicle rows, and
// every mutation is scoped to the owning user.
type Registry struct {
	store     db.VehicleStore
	userStore db.UserStore
}

// NewRegistry creates a vehicle registry over the vehicle and user stores.
func NewRegistry(store db.VehicleStore, userStore db.UserStore) *Registry {
	return &Registry{
		store:     store,
		userStore: userStore,
	}
}

// FindById returns the vehicle with its owner resolved, or nil when no
// vehicle matches.
func (r *Registry) FindById(ctx context.Context, id int) (*models.Vehicle, error) {
	vehicle, err := r.store.FindVehicleByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find vehicle by id: %w", err)
	}
	r.resolveOwner(ctx, vehicle)
	return vehicle, nil
}

// ListByUser returns all vehicles owned by userId, newest created first. A
// user with no vehicles gets an empty slice, never an error.
func (r *Registry) ListByUser(ctx context.Context, userId int) ([]models.Vehicle, error) {
	vehicles, err := r.store.FindVehiclesByOwner(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	return vehicles, nil
}

// Create stores a new vehicle owned by ownerId. The VIN is uppercased and
// the creation and update timestamps are set to the same instant. VIN
// uniqueness is pre-checked by callers via ExistsByVIN; the store's unique
// constraint is the backstop.
func (r *Registry) Create(ctx context.Context, input models.CreateVehicleInput, ownerId int) (*models.Vehicle, error) {
	now := time.Now().UTC()
	vehicle := &models.Vehicle{
		UserId:         ownerId,
		Make:           input.Make,
		Model:          input.Model,
		Year:           input.Year,
		VIN:            strings.ToUpper(input.VIN),
		LicensePlate:   input.LicensePlate,
		CurrentMileage: input.CurrentMileage,
		Color:          input.Color,
		PurchaseDate:   input.PurchaseDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := r.store.InsertVehicle(ctx, vehicle); err != nil {
		return nil, fmt.Errorf("create vehicle: %w", err)
	}
	r.resolveOwner(ctx, vehicle)
	return vehicle, nil
}

// Update applies a partial update to the vehicle identified by input.Id,
// but only when callerId owns it. A missing vehicle and a wrong owner are
// indistinguishable: both return nil. Provided fields overwrite the stored
// ones; absent fields (empty strings, nil pointers) are left unchanged. The
// update timestamp is refreshed on every successful call, even when no
// field changed value.
func (r *Registry) Update(ctx context.Context, input models.UpdateVehicleInput, callerId int) (*models.Vehicle, error) {
	vehicle, err := r.store.FindVehicleByIDAndOwner(ctx, input.Id, callerId)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find vehicle for update: %w", err)
	}

	if input.Make != "" {
		vehicle.Make = input.Make
	}
	if input.Model != "" {
		vehicle.Model = input.Model
	}
	if input.Year != nil {
		vehicle.Year = *input.Year
	}
	if input.VIN != "" {
		vehicle.VIN = strings.ToUpper(input.VIN)
	}
	if input.LicensePlate != "" {
		vehicle.LicensePlate = input.LicensePlate
	}
	if input.CurrentMileage != nil {
		vehicle.CurrentMileage = *input.CurrentMileage
	}
	if input.Color != "" {
		vehicle.Color = input.Color
	}
	if input.PurchaseDate != nil {
		vehicle.PurchaseDate = *input.PurchaseDate
	}
	vehicle.UpdatedAt = time.Now().UTC()

	if err := r.store.ReplaceVehicle(ctx, vehicle); err != nil {
		return nil, fmt.Errorf("update vehicle: %w", err)
	}
	r.resolveOwner(ctx, vehicle)
	return vehicle, nil
}

// Delete removes the vehicle when callerId owns it. False covers both "no
// such vehicle" and "not the owner"; the caller cannot tell which.
func (r *Registry) Delete(ctx context.Context, id, callerId int) (bool, error) {
	deleted, err := r.store.DeleteVehicleByIDAndOwner(ctx, id, callerId)
	if err != nil {
		return false, fmt.Errorf("delete vehicle: %w", err)
	}
	return deleted, nil
}

// ExistsByVIN reports whether any vehicle carries the VIN,
// case-insensitively.
func (r *Registry) ExistsByVIN(ctx context.Context, vin string) (bool, error) {
	exists, err := r.store.VehicleExistsByVIN(ctx, vin)
	if err != nil {
		return false, fmt.Errorf("check vin: %w", err)
	}
	return exists, nil
}

// resolveOwner attaches the owning user record. A failed lookup leaves the
// owner unset rather than failing the whole operation.
func (r *Registry) resolveOwner(ctx context.Context, vehicle *models.Vehicle) {
	owner, err := r.userStore.FindUserByID(ctx, vehicle.UserId)
	if err != nil {
		log.WithFields(log.Fields{
			"vehicle_id": vehicle.Id,
			"user_id":    vehicle.UserId,
		}).WithError(err).Warn("Failed to resolve vehicle owner")
		return
	}
	vehicle.User = owner
}
