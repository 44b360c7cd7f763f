package entity

import (
	"github.com/google/uuid"
)

type Vehicle struct {
	BaseNoDelete
	DriverID     uuid.UUID `db:"driver_id"`
	Model        string    `db:"model"`
	PlateNumber  string    `db:"plate_number"`
	Color        string    `db:"color"`
	SeatCapacity int       `db:"seat_capacity"`
}
