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

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// RequestBooking handles POST /api/bookings (protected)
func (h *BookingHandler) RequestBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.RequestBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	booking, err := h.service.RequestBooking(r.Context(), userID.String(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "request booking")
		return
	}

	utils.ResponseCreated(w, "success", booking)
}

// UpdateStatus handles PATCH /api/bookings/{id}/status (protected)
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	var req request.UpdateBookingStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	booking, err := h.service.SetStatus(r.Context(), userID.String(), bookingID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update booking status")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// ListForRide handles GET /api/rides/{id}/bookings (protected, driver only)
func (h *BookingHandler) ListForRide(w http.ResponseWriter, r *http.Request) {
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

	req := paginationFromQuery(r)

	bookings, err := h.service.ListForRide(r.Context(), userID.String(), rideID, req)
	if err != nil {
		handleServiceError(w, h.log, err, "list bookings for ride")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// ListForPassenger handles GET /api/user/bookings (protected)
func (h *BookingHandler) ListForPassenger(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	req := paginationFromQuery(r)

	bookings, err := h.service.ListForPassenger(r.Context(), userID.String(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "list bookings for passenger")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

func paginationFromQuery(r *http.Request) *request.PaginatedRequest {
	query := r.URL.Query()
	return &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}
}
