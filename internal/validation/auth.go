package validation

import (
	"regexp"

	"github.com/vehicare/vehicare-api/internal/models"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateRegister checks a registration request.
func ValidateRegister(input models.RegisterInput) []models.FieldError {
	return evaluate([]rule{
		{"email", "Email is required", func() bool { return input.Email != "" }},
		{"email", "Valid email address is required", func() bool {
			return input.Email == "" || emailPattern.MatchString(input.Email)
		}},
		{"password", "Password is required", func() bool { return input.Password != "" }},
		{"password", "Password must be at least 6 characters long", func() bool {
			return input.Password == "" || len(input.Password) >= 6
		}},
		{"firstName", "First name is required", func() bool { return input.FirstName != "" }},
		{"firstName", "First name cannot exceed 50 characters", func() bool { return len(input.FirstName) <= 50 }},
		{"lastName", "Last name is required", func() bool { return input.LastName != "" }},
		{"lastName", "Last name cannot exceed 50 characters", func() bool { return len(input.LastName) <= 50 }},
	})
}

// ValidateLogin checks a login request.
func ValidateLogin(input models.LoginInput) []models.FieldError {
	return evaluate([]rule{
		{"email", "Email is required", func() bool { return input.Email != "" }},
		{"email", "Valid email address is required", func() bool {
			return input.Email == "" || emailPattern.MatchString(input.Email)
		}},
		{"password", "Password is required", func() bool { return input.Password != "" }},
	})
}
