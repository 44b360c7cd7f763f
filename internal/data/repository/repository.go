package repository

import (
	"campus-carpool/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User    UserRepository
	Session SessionRepository
	Vehicle VehicleRepository
	Ride    RideRepository
	Booking BookingRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:    NewUserRepository(db, log),
		Session: NewSessionRepository(db, log),
		Vehicle: NewVehicleRepository(db, log),
		Ride:    NewRideRepository(db, log),
		Booking: NewBookingRepository(db, log),
	}
}
