package handlers

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/vehicare/vehicare-api/internal/auth"
	"github.com/vehicare/vehicare-api/internal/middleware"
	"github.com/vehicare/vehicare-api/internal/models"
	"github.com/vehicare/vehicare-api/internal/users"
	"github.com/vehicare/vehicare-api/internal/validation"
)

// AuthHandler handles login, registration and identity requests.
type AuthHandler struct {
	directory   *users.Directory
	authService *auth.Service
}

// NewAuthHandler creates a new authentication handler.
func NewAuthHandler(directory *users.Directory, authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		directory:   directory,
		authService: authService,
	}
}

// Login authenticates a user and issues a token. Unknown emails and wrong
// passwords share one error message so the response does not reveal which
// accounts exist.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input models.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if violations := validation.ValidateLogin(input); len(violations) > 0 {
		writeJSON(w, http.StatusBadRequest, models.LoginPayload{FieldErrors: violations})
		return
	}

	user, err := h.directory.FindByEmail(r.Context(), input.Email)
	if err != nil {
		log.WithError(err).Error("Login lookup failed")
		writeJSON(w, http.StatusOK, models.LoginPayload{Error: "Login failed"})
		return
	}
	if user == nil {
		writeJSON(w, http.StatusOK, models.LoginPayload{Error: "Invalid email or password"})
		return
	}

	if !user.IsActive {
		writeJSON(w, http.StatusOK, models.LoginPayload{Error: "Account is disabled"})
		return
	}

	if !h.directory.VerifyPassword(input.Password, user.PasswordHash) {
		writeJSON(w, http.StatusOK, models.LoginPayload{Error: "Invalid email or password"})
		return
	}

	if err := h.directory.TouchLastLogin(r.Context(), user.Id); err != nil {
		// A stale last-login stamp is not worth failing the login over.
		log.WithField("user_id", user.Id).WithError(err).Warn("Failed to update last login")
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		log.WithError(err).Error("Token generation failed")
		writeJSON(w, http.StatusOK, models.LoginPayload{Error: "Login failed"})
		return
	}

	writeJSON(w, http.StatusOK, models.LoginPayload{Token: token, User: user})
}

// Register creates a new account. The duplicate-email check runs before the
// write so the caller gets a friendly conflict message instead of a bare
// constraint violation.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input models.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if violations := validation.ValidateRegister(input); len(violations) > 0 {
		writeJSON(w, http.StatusBadRequest, models.RegisterPayload{FieldErrors: violations})
		return
	}

	existing, err := h.directory.FindByEmail(r.Context(), input.Email)
	if err != nil {
		log.WithError(err).Error("Register lookup failed")
		writeJSON(w, http.StatusOK, models.RegisterPayload{Error: "Registration failed"})
		return
	}
	if existing != nil {
		writeJSON(w, http.StatusOK, models.RegisterPayload{Error: "User with this email already exists"})
		return
	}

	user, err := h.directory.Create(r.Context(), input)
	if err != nil {
		log.WithError(err).Error("User creation failed")
		writeJSON(w, http.StatusOK, models.RegisterPayload{Error: "Registration failed"})
		return
	}

	log.WithFields(log.Fields{
		"user_id": user.Id,
		"email":   user.Email,
	}).Info("Registered user")

	writeJSON(w, http.StatusCreated, models.RegisterPayload{User: user})
}

// Me returns the caller's user record, or null when the identity cannot be
// resolved.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	userId, ok := claims.UserIdInt()
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	user, err := h.directory.FindById(r.Context(), userId)
	if err != nil {
		log.WithError(err).Error("Me lookup failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Status is a liveness probe.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "API is running"})
}

// writeJSON writes v as a JSON response body.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}
