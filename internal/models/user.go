package models

import (
	"time"
)

// User represents a registered account.
type User struct {
	Id           int        `bson:"_id" json:"id"`
	Email        string     `bson:"email" json:"email"`
	PasswordHash string     `bson:"password_hash" json:"-"`
	FirstName    string     `bson:"first_name" json:"firstName"`
	LastName     string     `bson:"last_name" json:"lastName"`
	CreatedAt    time.Time  `bson:"created_at" json:"createdAt"`
	LastLoginAt  *time.Time `bson:"last_login_at,omitempty" json:"lastLoginAt,omitempty"`
	IsActive     bool       `bson:"is_active" json:"isActive"`
}

// LoginInput carries credentials for the login operation.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// FieldError is a single validation rule violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// LoginPayload is the result of a login attempt. Either Token and User are
// set, or Error is.
type LoginPayload struct {
	Token       string       `json:"token,omitempty"`
	User        *User        `json:"user,omitempty"`
	Error       string       `json:"error,omitempty"`
	FieldErrors []FieldError `json:"fieldErrors,omitempty"`
}

// RegisterPayload is the result of a registration attempt.
type RegisterPayload struct {
	User        *User        `json:"user,omitempty"`
	Error       string       `json:"error,omitempty"`
	FieldErrors []FieldError `json:"fieldErrors,omitempty"`
}
