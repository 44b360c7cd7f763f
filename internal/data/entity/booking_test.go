package entity

import "testing"

func TestBookingStatusTransitions(t *testing.T) {
	statuses := []BookingStatus{
		BookingStatusPending,
		BookingStatusAccepted,
		BookingStatusRejected,
		BookingStatusCancelled,
	}

	allowed := map[BookingStatus]map[BookingStatus]bool{
		BookingStatusPending: {
			BookingStatusAccepted:  true,
			BookingStatusRejected:  true,
			BookingStatusCancelled: true,
		},
		BookingStatusAccepted: {
			BookingStatusCancelled: true,
		},
		BookingStatusRejected:  {},
		BookingStatusCancelled: {},
	}

	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[from][to]
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestBookingStatusOccupies(t *testing.T) {
	occupying := map[BookingStatus]bool{
		BookingStatusPending:   true,
		BookingStatusAccepted:  true,
		BookingStatusRejected:  false,
		BookingStatusCancelled: false,
	}

	for status, want := range occupying {
		if got := status.Occupies(); got != want {
			t.Errorf("Occupies(%s) = %v, want %v", status, got, want)
		}
	}
}

func TestBookingStatusRefundsSeats(t *testing.T) {
	cases := []struct {
		from, to BookingStatus
		want     bool
	}{
		{BookingStatusPending, BookingStatusAccepted, false},
		{BookingStatusPending, BookingStatusRejected, true},
		{BookingStatusPending, BookingStatusCancelled, true},
		{BookingStatusAccepted, BookingStatusCancelled, true},
		// Disallowed transitions never refund, even status-lowering ones.
		{BookingStatusAccepted, BookingStatusRejected, false},
		{BookingStatusRejected, BookingStatusCancelled, false},
		{BookingStatusCancelled, BookingStatusRejected, false},
	}

	for _, c := range cases {
		if got := c.from.RefundsSeats(c.to); got != c.want {
			t.Errorf("RefundsSeats(%s -> %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestRideStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to RideStatus
		want     bool
	}{
		{RideStatusScheduled, RideStatusOngoing, true},
		{RideStatusScheduled, RideStatusCompleted, true},
		{RideStatusOngoing, RideStatusCompleted, true},
		{RideStatusOngoing, RideStatusScheduled, false},
		{RideStatusCompleted, RideStatusOngoing, false},
		{RideStatusCompleted, RideStatusScheduled, false},
	}

	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.want {
			t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}
