package response

import (
	"time"

	"campus-carpool/internal/data/entity"
)

type RideResponse struct {
	ID             string            `json:"id"`
	DriverID       string            `json:"driver_id"`
	VehicleID      *string           `json:"vehicle_id,omitempty"`
	SourceLat      float64           `json:"source_lat"`
	SourceLng      float64           `json:"source_lng"`
	SourceAddress  string            `json:"source_address"`
	DestLat        float64           `json:"dest_lat"`
	DestLng        float64           `json:"dest_lng"`
	DestAddress    string            `json:"dest_address"`
	DepartureTime  time.Time         `json:"departure_time"`
	SeatsTotal     int               `json:"seats_total"`
	SeatsAvailable int               `json:"seats_available"`
	CostPerSeat    int64             `json:"cost_per_seat"`
	IsActive       bool              `json:"is_active"`
	Status         entity.RideStatus `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
}

type RideSeatsResponse struct {
	RideID         string `json:"ride_id"`
	SeatsTotal     int    `json:"seats_total"`
	SeatsAvailable int    `json:"seats_available"`
}

func RideToResponse(ride *entity.Ride) RideResponse {
	resp := RideResponse{
		ID:             ride.ID.String(),
		DriverID:       ride.DriverID.String(),
		SourceLat:      ride.SourceLat,
		SourceLng:      ride.SourceLng,
		SourceAddress:  ride.SourceAddress,
		DestLat:        ride.DestLat,
		DestLng:        ride.DestLng,
		DestAddress:    ride.DestAddress,
		DepartureTime:  ride.DepartureTime,
		SeatsTotal:     ride.SeatsTotal,
		SeatsAvailable: ride.SeatsAvailable,
		CostPerSeat:    ride.CostPerSeat,
		IsActive:       ride.IsActive,
		Status:         ride.Status,
		CreatedAt:      ride.CreatedAt,
	}

	if ride.VehicleID != nil {
		vehicleID := ride.VehicleID.String()
		resp.VehicleID = &vehicleID
	}

	return resp
}
