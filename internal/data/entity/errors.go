package entity

import "errors"

// Domain error taxonomy. Services return these (wrapped with context) and
// handlers route on them with errors.Is; they are never retried because
// each one is either caller error or a programming defect.
var (
	ErrRideNotFound     = errors.New("ride not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrInsufficientSeats = errors.New("not enough seats available")
	ErrInvalidTransition = errors.New("status transition not permitted")

	// ErrInvariantViolation signals that the seat conservation law broke:
	// seats_available drifted outside [0, seats_total]. Logged as a defect,
	// never swallowed.
	ErrInvariantViolation = errors.New("seat accounting invariant violated")

	ErrNotRideDriver   = errors.New("user is not the ride driver")
	ErrNotBookingOwner = errors.New("user is not the booking passenger")
	ErrRideInactive    = errors.New("ride is not active")
	ErrOwnRideBooking  = errors.New("driver cannot book own ride")
)
