package validation

import (
	"regexp"
	"time"

	"github.com/vehicare/vehicare-api/internal/models"
)

// vinPattern matches a 17-character VIN: uppercase letters excluding I, O
// and Q, plus digits. Lowercase input is rejected, not folded.
var vinPattern = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)

// ValidateCreateVehicle checks a create request. An empty result means the
// input is valid.
func ValidateCreateVehicle(input models.CreateVehicleInput) []models.FieldError {
	now := time.Now()
	return evaluate([]rule{
		{"make", "Make is required", func() bool { return input.Make != "" }},
		{"make", "Make cannot exceed 50 characters", func() bool { return len(input.Make) <= 50 }},
		{"model", "Model is required", func() bool { return input.Model != "" }},
		{"model", "Model cannot exceed 50 characters", func() bool { return len(input.Model) <= 50 }},
		{"year", "Year must be greater than 1900", func() bool { return input.Year > 1900 }},
		{"year", "Year cannot be in the future", func() bool { return input.Year <= now.Year()+1 }},
		{"vin", "VIN is required", func() bool { return input.VIN != "" }},
		{"vin", "VIN must be exactly 17 characters", func() bool { return len(input.VIN) == 17 }},
		{"vin", "VIN contains invalid characters", func() bool { return vinPattern.MatchString(input.VIN) }},
		{"licensePlate", "License plate cannot exceed 20 characters", func() bool { return len(input.LicensePlate) <= 20 }},
		{"currentMileage", "Current mileage cannot be negative", func() bool { return input.CurrentMileage >= 0 }},
		{"color", "Color cannot exceed 30 characters", func() bool { return len(input.Color) <= 30 }},
		{"purchaseDate", "Purchase date cannot be in the future", func() bool {
			return !startOfDay(input.PurchaseDate).After(startOfDay(now))
		}},
	})
}

// ValidateUpdateVehicle checks a partial update request. Every field except
// the id is optional: an empty string or nil pointer skips its rules
// entirely.
func ValidateUpdateVehicle(input models.UpdateVehicleInput) []models.FieldError {
	now := time.Now()
	return evaluate([]rule{
		{"id", "Vehicle ID must be greater than 0", func() bool { return input.Id > 0 }},
		{"make", "Make cannot exceed 50 characters", func() bool { return input.Make == "" || len(input.Make) <= 50 }},
		{"model", "Model cannot exceed 50 characters", func() bool { return input.Model == "" || len(input.Model) <= 50 }},
		{"year", "Year must be greater than 1900", func() bool { return input.Year == nil || *input.Year > 1900 }},
		{"year", "Year cannot be in the future", func() bool { return input.Year == nil || *input.Year <= now.Year()+1 }},
		{"vin", "VIN must be exactly 17 characters", func() bool { return input.VIN == "" || len(input.VIN) == 17 }},
		{"vin", "VIN contains invalid characters", func() bool { return input.VIN == "" || vinPattern.MatchString(input.VIN) }},
		{"licensePlate", "License plate cannot exceed 20 characters", func() bool {
			return input.LicensePlate == "" || len(input.LicensePlate) <= 20
		}},
		{"currentMileage", "Current mileage cannot be negative", func() bool {
			return input.CurrentMileage == nil || *input.CurrentMileage >= 0
		}},
		{"color", "Color cannot exceed 30 characters", func() bool { return input.Color == "" || len(input.Color) <= 30 }},
		{"purchaseDate", "Purchase date cannot be in the future", func() bool {
			return input.PurchaseDate == nil || !startOfDay(*input.PurchaseDate).After(startOfDay(now))
		}},
	})
}
