package response

import (
	"time"

	"campus-carpool/internal/data/entity"
)

type VehicleResponse struct {
	ID           string    `json:"id"`
	DriverID     string    `json:"driver_id"`
	Model        string    `json:"model"`
	PlateNumber  string    `json:"plate_number"`
	Color        string    `json:"color"`
	SeatCapacity int       `json:"seat_capacity"`
	CreatedAt    time.Time `json:"created_at"`
}

func VehicleToResponse(vehicle *entity.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:           vehicle.ID.String(),
		DriverID:     vehicle.DriverID.String(),
		Model:        vehicle.Model,
		PlateNumber:  vehicle.PlateNumber,
		Color:        vehicle.Color,
		SeatCapacity: vehicle.SeatCapacity,
		CreatedAt:    vehicle.CreatedAt,
	}
}
