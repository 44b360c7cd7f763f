package adaptor

import (
	"encoding/json"
	"net/http"

	"campus-carpool/internal/dto/request"
	"campus-carpool/internal/usecase"
	"campus-carpool/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type VehicleHandler struct {
	service usecase.VehicleService
	log     *zap.Logger
}

func NewVehicleHandler(service usecase.VehicleService, log *zap.Logger) *VehicleHandler {
	return &VehicleHandler{
		service: service,
		log:     log.With(zap.String("handler", "vehicle")),
	}
}

// CreateVehicle handles POST /api/vehicles (protected)
func (h *VehicleHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	vehicle, err := h.service.CreateVehicle(r.Context(), userID.String(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create vehicle")
		return
	}

	utils.ResponseCreated(w, "success", vehicle)
}

// ListForDriver handles GET /api/user/vehicles (protected)
func (h *VehicleHandler) ListForDriver(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	vehicles, err := h.service.ListForDriver(r.Context(), userID.String())
	if err != nil {
		handleServiceError(w, h.log, err, "list vehicles")
		return
	}

	utils.ResponseSuccess(w, "success", vehicles)
}

// DeleteVehicle handles DELETE /api/vehicles/{id} (protected)
func (h *VehicleHandler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	vehicleID := chi.URLParam(r, "id")
	if vehicleID == "" {
		utils.ResponseBadRequest(w, "Vehicle ID is required", nil)
		return
	}

	if err := h.service.DeleteVehicle(r.Context(), userID.String(), vehicleID); err != nil {
		handleServiceError(w, h.log, err, "delete vehicle")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}
