package usecase

import (
	"campus-carpool/internal/data/repository"
	"campus-carpool/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth    AuthService
	Vehicle VehicleService
	Ride    RideService
	Booking BookingService
}

func NewService(repo *repository.Repository, config *utils.Config, log *zap.Logger) *Service {
	// Booking engine first: the ride catalog delegates cascading rejection
	// to it when a ride is deactivated.
	booking := NewBookingService(repo, log)

	return &Service{
		Auth:    NewAuthService(repo, config, log),
		Vehicle: NewVehicleService(repo, log),
		Ride:    NewRideService(repo, booking, log),
		Booking: booking,
	}
}
