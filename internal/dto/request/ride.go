package request

type CreateRideRequest struct {
	VehicleID     *string `json:"vehicle_id,omitempty" validate:"omitempty,uuid4"`
	SourceLat     float64 `json:"source_lat" validate:"latitude"`
	SourceLng     float64 `json:"source_lng" validate:"longitude"`
	SourceAddress string  `json:"source_address" validate:"required,max=255"`
	DestLat       float64 `json:"dest_lat" validate:"latitude"`
	DestLng       float64 `json:"dest_lng" validate:"longitude"`
	DestAddress   string  `json:"dest_address" validate:"required,max=255"`
	DepartureTime string  `json:"departure_time" validate:"required"` // RFC 3339
	SeatsTotal    int     `json:"seats_total" validate:"required,min=1,max=10"`
	CostPerSeat   int64   `json:"cost_per_seat" validate:"required,min=1"`
}

type SearchRidesRequest struct {
	Destination   string `json:"destination" validate:"omitempty,max=255"`
	DepartureDate string `json:"departure_date" validate:"omitempty,datetime=2006-01-02"`
	PaginatedRequest
}

// UpdateRideStatusRequest moves a ride along its lifecycle. Explicit named
// transition, never an open-ended field patch.
type UpdateRideStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ongoing completed"`
}
