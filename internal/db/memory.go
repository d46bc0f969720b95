package db

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vehicare/vehicare-api/internal/models"
)

// MemoryStore is an in-process Store backed by maps. A single mutex
// serializes every read and write across both collections; there is no
// per-record locking.
type MemoryStore struct {
	mu            sync.Mutex
	users         map[int]models.User
	vehicles      map[int]models.Vehicle
	nextUserId    int
	nextVehicleId int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[int]models.User),
		vehicles:      make(map[int]models.Vehicle),
		nextUserId:    1,
		nextVehicleId: 1,
	}
}

// InsertUser assigns a fresh id and stores the user. Fails with
// ErrDuplicate when the email is already taken.
func (s *MemoryStore) InsertUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return ErrDuplicate
		}
	}

	user.Id = s.nextUserId
	s.nextUserId++
	s.users[user.Id] = *user
	return nil
}

// FindUserByEmail performs a case-insensitive exact match.
func (s *MemoryStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			out := u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// FindUserByID returns the user with the given id.
func (s *MemoryStore) FindUserByID(ctx context.Context, id int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := u
	return &out, nil
}

// SetLastLogin stamps the user's last login time.
func (s *MemoryStore) SetLastLogin(ctx context.Context, id int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.LastLoginAt = &at
	s.users[id] = u
	return nil
}

// InsertVehicle assigns a fresh id and stores the vehicle. Fails with
// ErrDuplicate when the VIN is already registered.
func (s *MemoryStore) InsertVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.vehicles {
		if strings.EqualFold(existing.VIN, vehicle.VIN) {
			return ErrDuplicate
		}
	}

	vehicle.Id = s.nextVehicleId
	s.nextVehicleId++

	stored := *vehicle
	stored.User = nil
	s.vehicles[stored.Id] = stored
	return nil
}

// FindVehicleByID returns the vehicle with the given id.
func (s *MemoryStore) FindVehicleByID(ctx context.Context, id int) (*models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vehicles[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := v
	return &out, nil
}

// FindVehiclesByOwner returns all vehicles owned by userId, newest created
// first. An owner with no vehicles gets an empty slice.
func (s *MemoryStore) FindVehiclesByOwner(ctx context.Context, userId int) ([]models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vehicles := make([]models.Vehicle, 0)
	for _, v := range s.vehicles {
		if v.UserId == userId {
			vehicles = append(vehicles, v)
		}
	}
	sort.Slice(vehicles, func(i, j int) bool {
		if vehicles[i].CreatedAt.Equal(vehicles[j].CreatedAt) {
			return vehicles[i].Id > vehicles[j].Id
		}
		return vehicles[i].CreatedAt.After(vehicles[j].CreatedAt)
	})
	return vehicles, nil
}

// FindVehicleByIDAndOwner returns the vehicle only when it exists AND is
// owned by userId. A wrong id and a wrong owner are indistinguishable.
func (s *MemoryStore) FindVehicleByIDAndOwner(ctx context.Context, id, userId int) (*models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vehicles[id]
	if !ok || v.UserId != userId {
		return nil, ErrNotFound
	}
	out := v
	return &out, nil
}

// ReplaceVehicle overwrites the stored vehicle with the same id.
func (s *MemoryStore) ReplaceVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vehicles[vehicle.Id]; !ok {
		return ErrNotFound
	}
	stored := *vehicle
	stored.User = nil
	s.vehicles[stored.Id] = stored
	return nil
}

// DeleteVehicleByIDAndOwner deletes the vehicle when it exists and is owned
// by userId. False covers both "no such vehicle" and "not the owner".
func (s *MemoryStore) DeleteVehicleByIDAndOwner(ctx context.Context, id, userId int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vehicles[id]
	if !ok || v.UserId != userId {
		return false, nil
	}
	delete(s.vehicles, id)
	return true, nil
}

// VehicleExistsByVIN reports whether any vehicle carries the VIN,
// case-insensitively.
func (s *MemoryStore) VehicleExistsByVIN(ctx context.Context, vin string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.vehicles {
		if strings.EqualFold(v.VIN, vin) {
			return true, nil
		}
	}
	return false, nil
}
