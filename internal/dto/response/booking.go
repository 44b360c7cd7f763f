package response

import (
	"time"

	"campus-carpool/internal/data/entity"
)

type BookingResponse struct {
	ID          string               `json:"id"`
	RideID      string               `json:"ride_id"`
	PassengerID string               `json:"passenger_id"`
	SeatsBooked int                  `json:"seats_booked"`
	Status      entity.BookingStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

func BookingToResponse(booking *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:          booking.ID.String(),
		RideID:      booking.RideID.String(),
		PassengerID: booking.PassengerID.String(),
		SeatsBooked: booking.SeatsBooked,
		Status:      booking.Status,
		CreatedAt:   booking.CreatedAt,
		UpdatedAt:   booking.UpdatedAt,
	}
}
