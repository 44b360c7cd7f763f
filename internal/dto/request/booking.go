package request

type RequestBookingRequest struct {
	RideID      string `json:"ride_id" validate:"required,uuid4"`
	SeatsBooked int    `json:"seats_booked" validate:"required,min=1"`
}

// UpdateBookingStatusRequest is the only way to move a booking through its
// state machine: an explicit target status, validated against the
// transition table by the booking engine.
type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected cancelled"`
}
