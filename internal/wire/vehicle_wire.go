package wire

import (
	"campus-carpool/internal/adaptor"
	"campus-carpool/internal/data/repository"
	"campus-carpool/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireVehicle(
	r chi.Router,
	vehicleHandler *adaptor.VehicleHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		// POST /api/vehicles - register a vehicle (promotes user to driver)
		r.Post("/api/vehicles", vehicleHandler.CreateVehicle)

		// GET /api/user/vehicles - driver's vehicles
		r.Get("/api/user/vehicles", vehicleHandler.ListForDriver)

		// DELETE /api/vehicles/{id}
		r.Delete("/api/vehicles/{id}", vehicleHandler.DeleteVehicle)
	})
}
