package models

import (
	"time"
)

// Vehicle represents a vehicle owned by a user. UserId is fixed at creation;
// there is no transfer-of-ownership operation.
type Vehicle struct {
	Id             int       `bson:"_id" json:"id"`
	UserId         int       `bson:"user_id" json:"userId"`
	Make           string    `bson:"make" json:"make"`
	Model          string    `bson:"model" json:"model"`
	Year           int       `bson:"year" json:"year"`
	VIN            string    `bson:"vin" json:"vin"`
	LicensePlate   string    `bson:"license_plate,omitempty" json:"licensePlate,omitempty"`
	CurrentMileage int       `bson:"current_mileage" json:"currentMileage"`
	Color          string    `bson:"color,omitempty" json:"color,omitempty"`
	PurchaseDate   time.Time `bson:"purchase_date" json:"purchaseDate"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updatedAt"`

	// Resolved owner, never persisted with the vehicle.
	User *User `bson:"-" json:"user,omitempty"`
}

// CreateVehicleInput carries the fields for creating a vehicle.
type CreateVehicleInput struct {
	Make           string    `json:"make"`
	Model          string    `json:"model"`
	Year           int       `json:"year"`
	VIN            string    `json:"vin"`
	LicensePlate   string    `json:"licensePlate"`
	CurrentMileage int       `json:"currentMileage"`
	Color          string    `json:"color"`
	PurchaseDate   time.Time `json:"purchaseDate"`
}

// UpdateVehicleInput carries a partial update. Empty strings and nil
// pointers mean "leave unchanged"; clearing a string field to empty is not
// supported.
type UpdateVehicleInput struct {
	Id             int        `json:"id"`
	Make           string     `json:"make"`
	Model          string     `json:"model"`
	Year           *int       `json:"year"`
	VIN            string     `json:"vin"`
	LicensePlate   string     `json:"licensePlate"`
	CurrentMileage *int       `json:"currentMileage"`
	Color          string     `json:"color"`
	PurchaseDate   *time.Time `json:"purchaseDate"`
}

// CreateVehiclePayload is the result of a create attempt.
type CreateVehiclePayload struct {
	Vehicle     *Vehicle     `json:"vehicle,omitempty"`
	Error       string       `json:"error,omitempty"`
	FieldErrors []FieldError `json:"fieldErrors,omitempty"`
}

// UpdateVehiclePayload is the result of an update attempt.
type UpdateVehiclePayload struct {
	Vehicle     *Vehicle     `json:"vehicle,omitempty"`
	Error       string       `json:"error,omitempty"`
	FieldErrors []FieldError `json:"fieldErrors,omitempty"`
}

// DeleteVehiclePayload is the result of a delete attempt.
type DeleteVehiclePayload struct {
	Success          bool   `json:"success"`
	DeletedVehicleId int    `json:"deletedVehicleId,omitempty"`
	Error            string `json:"error,omitempty"`
}
