package request

type CreateVehicleRequest struct {
	Model        string `json:"model" validate:"required,max=100"`
	PlateNumber  string `json:"plate_number" validate:"required,max=20"`
	Color        string `json:"color" validate:"required,max=50"`
	SeatCapacity int    `json:"seat_capacity" validate:"required,min=1,max=10"`
}
