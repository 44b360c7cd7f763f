package entity

import (
	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusAccepted  BookingStatus = "accepted"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is a passenger's request for seats on a ride. Seats are reserved
// against the ride the moment the booking is created, so every transition
// out of an occupying status must refund them exactly once.
type Booking struct {
	BaseNoDelete
	RideID      uuid.UUID     `db:"ride_id"`
	PassengerID uuid.UUID     `db:"passenger_id"`
	SeatsBooked int           `db:"seats_booked"`
	Status      BookingStatus `db:"status"`
}

// IsValid reports whether s is a known booking status.
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusAccepted, BookingStatusRejected, BookingStatusCancelled:
		return true
	}
	return false
}

// Occupies reports whether a booking in status s holds seats on its ride.
func (s BookingStatus) Occupies() bool {
	return s == BookingStatusPending || s == BookingStatusAccepted
}

// CanTransitionTo reports whether s -> next is permitted. rejected and
// cancelled are terminal; an accepted booking can only be cancelled,
// never rejected.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		return next == BookingStatusAccepted || next == BookingStatusRejected || next == BookingStatusCancelled
	case BookingStatusAccepted:
		return next == BookingStatusCancelled
	}
	return false
}

// RefundsSeats reports whether the s -> next transition returns the booked
// seats to the ride. True exactly when the booking stops occupying seats.
func (s BookingStatus) RefundsSeats(next BookingStatus) bool {
	return s.CanTransitionTo(next) && s.Occupies() && !next.Occupies()
}
