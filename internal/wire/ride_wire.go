package wire

import (
	"campus-carpool/internal/adaptor"
	"campus-carpool/internal/data/repository"
	"campus-carpool/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireRide(
	r chi.Router,
	rideHandler *adaptor.RideHandler,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/rides - browse/search rides
	r.Get("/api/rides", rideHandler.SearchRides)

	// GET /api/rides/{id} - ride details
	r.Get("/api/rides/{id}", rideHandler.GetRide)

	// GET /api/rides/{id}/seats - availability probe
	r.Get("/api/rides/{id}/seats", rideHandler.GetSeats)

	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		// POST /api/rides - post a new ride (driver)
		r.Post("/api/rides", rideHandler.CreateRide)

		// GET /api/user/rides - driver's own rides
		r.Get("/api/user/rides", rideHandler.ListForDriver)

		// PATCH /api/rides/{id}/status - ride lifecycle (driver)
		r.Patch("/api/rides/{id}/status", rideHandler.UpdateStatus)

		// DELETE /api/rides/{id} - deactivate + cascading rejection (driver)
		r.Delete("/api/rides/{id}", rideHandler.DeactivateRide)

		// GET /api/rides/{id}/bookings - booking requests on a ride (driver)
		r.Get("/api/rides/{id}/bookings", bookingHandler.ListForRide)
	})
}
