package adaptor

import (
	"errors"
	"net/http"
	"strings"

	"campus-carpool/internal/data/entity"
	"campus-carpool/internal/usecase"
	"campus-carpool/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth    *AuthHandler
	Vehicle *VehicleHandler
	Ride    *RideHandler
	Booking *BookingHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(service.Auth, log),
		Vehicle: NewVehicleHandler(service.Vehicle, log),
		Ride:    NewRideHandler(service.Ride, log),
		Booking: NewBookingHandler(service.Booking, log),
	}
}

// handleServiceError maps the domain error taxonomy onto HTTP responses.
// Sentinels are matched with errors.Is; anything unrecognized is a 500.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	errMsg := err.Error()

	switch {
	case errors.Is(err, entity.ErrRideNotFound), errors.Is(err, entity.ErrBookingNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, errMsg)

	case errors.Is(err, entity.ErrInsufficientSeats):
		log.Warn(operation+" failed - insufficient seats", zap.Error(err))
		utils.ResponseConflict(w, errMsg)

	case errors.Is(err, entity.ErrInvalidTransition):
		log.Warn(operation+" failed - invalid transition", zap.Error(err))
		utils.ResponseUnprocessable(w, errMsg, nil)

	case errors.Is(err, entity.ErrNotRideDriver), errors.Is(err, entity.ErrNotBookingOwner):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, errMsg)

	case errors.Is(err, entity.ErrRideInactive), errors.Is(err, entity.ErrOwnRideBooking):
		log.Warn(operation+" failed - invalid state", zap.Error(err))
		utils.ResponseUnprocessable(w, errMsg, nil)

	case errors.Is(err, entity.ErrInvariantViolation):
		// Programming defect, not caller error.
		log.Error(operation+" hit an invariant violation", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")

	case strings.Contains(errMsg, "validation failed"),
		strings.Contains(errMsg, "invalid"),
		strings.Contains(errMsg, "already"),
		strings.Contains(errMsg, "not found"):
		log.Warn(operation+" failed - bad request", zap.Error(err))
		utils.ResponseBadRequest(w, errMsg, nil)

	default:
		log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
