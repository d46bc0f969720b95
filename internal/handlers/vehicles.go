package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vehicare/vehicare-api/internal/events"
	"github.com/vehicare/vehicare-api/internal/middleware"
	"github.com/vehicare/vehicare-api/internal/models"
	"github.com/vehicare/vehicare-api/internal/validation"
	"github.com/vehicare/vehicare-api/internal/vehicles"
)

// VehicleHandler handles the vehicle CRUD requests. Every operation is
// scoped to the authenticated caller.
type VehicleHandler struct {
	registry  *vehicles.Registry
	publisher events.Publisher
}

// NewVehicleHandler creates a new vehicle handler.
func NewVehicleHandler(registry *vehicles.Registry, publisher events.Publisher) *VehicleHandler {
	return &VehicleHandler{
		registry:  registry,
		publisher: publisher,
	}
}

// GetVehicle returns a single vehicle, or null when it does not exist or is
// not owned by the caller. The two cases are indistinguishable so the
// response does not leak which ids exist.
func (h *VehicleHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	callerId, ok := callerFromContext(r)
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	vehicle, err := h.registry.FindById(r.Context(), id)
	if err != nil {
		log.WithError(err).Error("Vehicle lookup failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if vehicle == nil || vehicle.UserId != callerId {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	writeJSON(w, http.StatusOK, vehicle)
}

// ListMyVehicles returns all of the caller's vehicles, newest first.
func (h *VehicleHandler) ListMyVehicles(w http.ResponseWriter, r *http.Request) {
	callerId, ok := callerFromContext(r)
	if !ok {
		writeJSON(w, http.StatusOK, []models.Vehicle{})
		return
	}

	list, err := h.registry.ListByUser(r.Context(), callerId)
	if err != nil {
		log.WithError(err).Error("Vehicle listing failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// CreateVehicle registers a new vehicle owned by the caller.
func (h *VehicleHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	callerId, ok := callerFromContext(r)
	if !ok {
		writeJSON(w, http.StatusOK, models.CreateVehiclePayload{Error: "User not authenticated"})
		return
	}

	var input models.CreateVehicleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if violations := validation.ValidateCreateVehicle(input); len(violations) > 0 {
		writeJSON(w, http.StatusBadRequest, models.CreateVehiclePayload{FieldErrors: violations})
		return
	}

	exists, err := h.registry.ExistsByVIN(r.Context(), input.VIN)
	if err != nil {
		log.WithError(err).Error("VIN check failed")
		writeJSON(w, http.StatusOK, models.CreateVehiclePayload{Error: "Failed to create vehicle"})
		return
	}
	if exists {
		writeJSON(w, http.StatusOK, models.CreateVehiclePayload{Error: "A vehicle with this VIN already exists"})
		return
	}

	vehicle, err := h.registry.Create(r.Context(), input, callerId)
	if err != nil {
		log.WithError(err).Error("Vehicle creation failed")
		writeJSON(w, http.StatusOK, models.CreateVehiclePayload{Error: "Failed to create vehicle"})
		return
	}

	log.WithFields(log.Fields{
		"vehicle_id": vehicle.Id,
		"user_id":    callerId,
		"vin":        vehicle.VIN,
	}).Info("Created vehicle")
	h.publisher.VehicleCreated(vehicle)

	writeJSON(w, http.StatusCreated, models.CreateVehiclePayload{Vehicle: vehicle})
}

// UpdateVehicle applies a partial update to one of the caller's vehicles.
// The VIN conflict check only runs when the VIN actually changes, compared
// case-insensitively against the current record.
func (h *VehicleHandler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	callerId, ok := callerFromContext(r)
	if !ok {
		writeJSON(w, http.StatusOK, models.UpdateVehiclePayload{Error: "User not authenticated"})
		return
	}

	var input models.UpdateVehicleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if violations := validation.ValidateUpdateVehicle(input); len(violations) > 0 {
		writeJSON(w, http.StatusBadRequest, models.UpdateVehiclePayload{FieldErrors: violations})
		return
	}

	if input.VIN != "" {
		existing, err := h.registry.FindById(r.Context(), input.Id)
		if err != nil {
			log.WithError(err).Error("Vehicle lookup failed")
			writeJSON(w, http.StatusOK, models.UpdateVehiclePayload{Error: "Failed to update vehicle"})
			return
		}
		if existing == nil {
			writeJSON(w, http.StatusOK, models.UpdateVehiclePayload{Error: "Vehicle not found"})
			return
		}

		if !strings.EqualFold(existing.VIN, input.VIN) {
			exists, err := h.registry.ExistsByVIN(r.Context(), input.VIN)
			if err != nil {
				log.WithError(err).Error("VIN check failed")
				writeJSON(w, http.StatusOK, models.UpdateVehiclePayload{Error: "Failed to update vehicle"})
				return
			}
			if exists {
				writeJSON(w, http.StatusOK, models.UpdateVehiclePayload{Error: "A vehicle with this VIN already exists"})
				return
			}
		}
	}

	vehicle, err := h.registry.Update(r.Context(), input, callerId)
	if err != nil {
		log.WithError(err).Error("Vehicle update failed")
		writeJSON(w, http.StatusOK, models.UpdateVehiclePayload{Error: "Failed to update vehicle"})
		return
	}
	if vehicle == nil {
		writeJSON(w, http.StatusOK, models.UpdateVehiclePayload{
			Error: "Vehicle not found or you don't have permission to update it",
		})
		return
	}

	h.publisher.VehicleUpdated(vehicle)

	writeJSON(w, http.StatusOK, models.UpdateVehiclePayload{Vehicle: vehicle})
}

// DeleteVehicle removes one of the caller's vehicles.
func (h *VehicleHandler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	callerId, ok := callerFromContext(r)
	if !ok {
		writeJSON(w, http.StatusOK, models.DeleteVehiclePayload{Error: "User not authenticated"})
		return
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		http.Error(w, "Invalid vehicle id", http.StatusBadRequest)
		return
	}

	deleted, err := h.registry.Delete(r.Context(), id, callerId)
	if err != nil {
		log.WithError(err).Error("Vehicle deletion failed")
		writeJSON(w, http.StatusOK, models.DeleteVehiclePayload{Error: "Failed to delete vehicle"})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusOK, models.DeleteVehiclePayload{
			Error: "Vehicle not found or you don't have permission to delete it",
		})
		return
	}

	log.WithFields(log.Fields{
		"vehicle_id": id,
		"user_id":    callerId,
	}).Info("Deleted vehicle")
	h.publisher.VehicleDeleted(id, callerId)

	writeJSON(w, http.StatusOK, models.DeleteVehiclePayload{Success: true, DeletedVehicleId: id})
}

// callerFromContext resolves the authenticated caller's numeric user id.
func callerFromContext(r *http.Request) (int, bool) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		return 0, false
	}
	return claims.UserIdInt()
}
