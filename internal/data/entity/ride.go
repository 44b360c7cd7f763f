package entity

import (
	"time"

	"github.com/google/uuid"
)

type RideStatus string

const (
	RideStatusScheduled RideStatus = "scheduled"
	RideStatusOngoing   RideStatus = "ongoing"
	RideStatusCompleted RideStatus = "completed"
)

// Ride is a scheduled trip offered by a driver with a fixed seat capacity.
// SeatsAvailable is the single source of truth for availability and is only
// mutated through the ride repository's seat operations.
type Ride struct {
	BaseNoDelete
	DriverID       uuid.UUID  `db:"driver_id"`
	VehicleID      *uuid.UUID `db:"vehicle_id"`
	SourceLat      float64    `db:"source_lat"`
	SourceLng      float64    `db:"source_lng"`
	SourceAddress  string     `db:"source_address"`
	DestLat        float64    `db:"dest_lat"`
	DestLng        float64    `db:"dest_lng"`
	DestAddress    string     `db:"dest_address"`
	DepartureTime  time.Time  `db:"departure_time"`
	SeatsTotal     int        `db:"seats_total"`
	SeatsAvailable int        `db:"seats_available"`
	CostPerSeat    int64      `db:"cost_per_seat"`
	IsActive       bool       `db:"is_active"`
	Status         RideStatus `db:"status"`
}

func (s RideStatus) IsValid() bool {
	switch s {
	case RideStatusScheduled, RideStatusOngoing, RideStatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether the ride lifecycle allows s -> next.
// The lifecycle only moves forward: scheduled -> ongoing -> completed.
func (s RideStatus) CanTransitionTo(next RideStatus) bool {
	switch s {
	case RideStatusScheduled:
		return next == RideStatusOngoing || next == RideStatusCompleted
	case RideStatusOngoing:
		return next == RideStatusCompleted
	}
	return false
}
