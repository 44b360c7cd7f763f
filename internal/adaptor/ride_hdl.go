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

type RideHandler struct {
	service usecase.RideService
	log     *zap.Logger
}

func NewRideHandler(service usecase.RideService, log *zap.Logger) *RideHandler {
	return &RideHandler{
		service: service,
		log:     log.With(zap.String("handler", "ride")),
	}
}

// CreateRide handles POST /api/rides (protected)
func (h *RideHandler) CreateRide(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateRideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	ride, err := h.service.CreateRide(r.Context(), userID.String(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create ride")
		return
	}

	utils.ResponseCreated(w, "success", ride)
}

// SearchRides handles GET /api/rides (public)
func (h *RideHandler) SearchRides(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.SearchRidesRequest{
		Destination:   query.Get("destination"),
		DepartureDate: query.Get("departure_date"),
		PaginatedRequest: request.PaginatedRequest{
			Page:    utils.ParseInt(query.Get("page"), 1),
			PerPage: utils.ParseInt(query.Get("per_page"), 10),
		},
	}

	rides, err := h.service.SearchRides(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "search rides")
		return
	}

	utils.ResponseSuccess(w, "success", rides)
}

// GetRide handles GET /api/rides/{id} (public)
func (h *RideHandler) GetRide(w http.ResponseWriter, r *http.Request) {
	rideID := chi.URLParam(r, "id")
	if rideID == "" {
		utils.ResponseBadRequest(w, "Ride ID is required", nil)
		return
	}

	ride, err := h.service.GetRide(r.Context(), rideID)
	if err != nil {
		handleServiceError(w, h.log, err, "get ride")
		return
	}

	utils.ResponseSuccess(w, "success", ride)
}

// GetSeats handles GET /api/rides/{id}/seats (public)
func (h *RideHandler) GetSeats(w http.ResponseWriter, r *http.Request) {
	rideID := chi.URLParam(r, "id")
	if rideID == "" {
		utils.ResponseBadRequest(w, "Ride ID is required", nil)
		return
	}

	seats, err := h.service.GetSeatsAvailable(r.Context(), rideID)
	if err != nil {
		handleServiceError(w, h.log, err, "get ride seats")
		return
	}

	utils.ResponseSuccess(w, "success", seats)
}

// ListForDriver handles GET /api/user/rides (protected)
func (h *RideHandler) ListForDriver(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	req := paginationFromQuery(r)

	rides, err := h.service.ListForDriver(r.Context(), userID.String(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "list rides for driver")
		return
	}

	utils.ResponseSuccess(w, "success", rides)
}

// UpdateStatus handles PATCH /api/rides/{id}/status (protected, driver only)
func (h *RideHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	rideID := chi.URLParam(r, "id")
	if rideID == "" {
		utils.ResponseBadRequest(w, "Ride ID is required", nil)
		return
	}

	var req request.UpdateRideStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	ride, err := h.service.UpdateRideStatus(r.Context(), userID.String(), rideID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update ride status")
		return
	}

	utils.ResponseSuccess(w, "success", ride)
}

// DeactivateRide handles DELETE /api/rides/{id} (protected, driver only)
func (h *RideHandler) DeactivateRide(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	rideID := chi.URLParam(r, "id")
	if rideID == "" {
		utils.ResponseBadRequest(w, "Ride ID is required", nil)
		return
	}

	if err := h.service.DeactivateRide(r.Context(), userID.String(), rideID); err != nil {
		handleServiceError(w, h.log, err, "deactivate ride")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}
