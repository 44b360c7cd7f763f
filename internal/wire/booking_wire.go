package wire

import (
	"campus-carpool/internal/adaptor"
	"campus-carpool/internal/data/repository"
	"campus-carpool/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// All booking routes require auth
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		// POST /api/bookings - request seats on a ride
		r.Post("/api/bookings", bookingHandler.RequestBooking)

		// PATCH /api/bookings/{id}/status - accept/reject/cancel
		r.Patch("/api/bookings/{id}/status", bookingHandler.UpdateStatus)

		// GET /api/user/bookings - passenger's booking history
		r.Get("/api/user/bookings", bookingHandler.ListForPassenger)
	})
}
