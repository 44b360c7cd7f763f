package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"campus-carpool/internal/data/entity"
	"campus-carpool/internal/data/repository"
	"campus-carpool/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestBookingService(rideRepo *fakeRideRepo, bookingRepo *fakeBookingRepo) BookingService {
	repo := &repository.Repository{Ride: rideRepo, Booking: bookingRepo}
	return NewBookingService(repo, zap.NewNop())
}

func seedRide(t *testing.T, rideRepo *fakeRideRepo, driverID uuid.UUID, seats int) *entity.Ride {
	t.Helper()
	now := time.Now()
	ride := &entity.Ride{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		DriverID:       driverID,
		SourceLat:      -6.3628,
		SourceLng:      106.8269,
		SourceAddress:  "Kampus UI Depok",
		DestLat:        -6.2297,
		DestLng:        106.8295,
		DestAddress:    "Stasiun Sudirman",
		DepartureTime:  now.Add(24 * time.Hour),
		SeatsTotal:     seats,
		SeatsAvailable: seats,
		CostPerSeat:    25000,
		IsActive:       true,
		Status:         entity.RideStatusScheduled,
	}
	require.NoError(t, rideRepo.Create(context.Background(), ride))
	return ride
}

func seedBooking(t *testing.T, bookingRepo *fakeBookingRepo, rideID, passengerID uuid.UUID, seats int, status entity.BookingStatus) *entity.Booking {
	t.Helper()
	now := time.Now()
	booking := &entity.Booking{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		RideID:      rideID,
		PassengerID: passengerID,
		SeatsBooked: seats,
		Status:      status,
	}
	require.NoError(t, bookingRepo.Create(context.Background(), booking))
	return booking
}

// assertConservation checks that seats_available plus the seats held by
// pending and accepted bookings always equals seats_total.
func assertConservation(t *testing.T, rideRepo *fakeRideRepo, bookingRepo *fakeBookingRepo, rideID uuid.UUID, seatsTotal int) {
	t.Helper()
	assert.Equal(t, seatsTotal, rideRepo.seatsAvailable(rideID)+bookingRepo.reservedSeats(rideID))
}

func TestRequestBookingReservesSeats(t *testing.T) {
	rideRepo := newFakeRideRepo()
	bookingRepo := newFakeBookingRepo()
	svc := newTestBookingService(rideRepo, bookingRepo)

	ride := seedRide(t, rideRepo, uuid.New(), 4)
	passengerID := uuid.New()

	resp, err := svc.RequestBooking(context.Background(), passengerID.String(), &request.RequestBookingRequest{
		RideID:      ride.ID.String(),
		SeatsBooked: 2,
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, entity.BookingStatusPending, resp.Status)
	assert.Equal(t, 2, resp.SeatsBooked)
	assert.Equal(t, 2, rideRepo.seatsAvailable(ride.ID))
	assertConservation(t, rideRepo, bookingRepo, ride.ID, 4)
}

func TestRequestBookingInsufficientSeats(t *testing.T) {
	rideRepo := newFakeRideRepo()
	bookingRepo := newFakeBookingRepo()
	svc := newTestBookingService(rideRepo, bookingRepo)

	ride := seedRide(t, rideRepo, uuid.New(), 2)

	_, err := svc.RequestBooking(context.Background(), uuid.New().String(), &request.RequestBookingRequest{
		RideID:      ride.ID.String(),
		SeatsBooked: 3,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrInsufficientSeats)
	assert.Equal(t, 2, rideRepo.seatsAvailable(ride.ID))
}

func TestRequestBookingRideNotFound(t *testing.T) {
	svc := newTestBookingService(newFakeRideRepo(), newFakeBookingRepo())

	_, err := svc.RequestBooking(context.Background(), uuid.New().String(), &request.RequestBookingRequest{
		RideID:      uuid.New().String(),
		SeatsBooked: 1,
	})
	assert.ErrorIs(t, err, entity.ErrRideNotFound)
}

func TestRequestBookingInactiveRide(t *testing.T) {
	rideRepo := newFakeRideRepo()
	svc := newTestBookingService(rideRepo, newFakeBookingRepo())

	ride := seedRide(t, rideRepo, uuid.New(), 4)
	require.NoError(t, rideRepo.Deactivate(context.Background(), ride.ID))

	_, err := svc.RequestBooking(context.Background(), uuid.New().String(), &request.RequestBookingRequest{
		RideID:      ride.ID.String(),
		SeatsBooked: 1,
	})
	assert.ErrorIs(t, err, entity.ErrRideInactive)
}

func TestRequestBookingOwnRide(t *testing.T) {
	rideRepo := newFakeRideRepo()
	svc := newTestBookingService(rideRepo, newFakeBookingRepo())

	driverID := uuid.New()
	ride := seedRide(t, rideRepo, driverID, 4)

	_, err := svc.RequestBooking(context.Background(), driverID.String(), &request.RequestBookingRequest{
		RideID:      ride.ID.String(),
		SeatsBooked: 1,
	})
	assert.ErrorIs(t, err, entity.ErrOwnRideBooking)
	assert.Equal(t, 4, rideRepo.seatsAvailable(ride.ID))
}

func TestRequestBookingCreateFailureRefundsSeats(t *testing.T) {
	rideRepo := newFakeRideRepo()
	bookingRepo := newFakeBookingRepo()
	bookingRepo.failCreate = errors.New("insert failed")
	svc := newTestBookingService(rideRepo, bookingRepo)

	ride := seedRide(t, rideRepo, uuid.New(), 4)

	_, err := svc.RequestBooking(context.Background(), uuid.New().String(), &request.RequestBookingRequest{
		RideID:      ride.ID.String(),
		SeatsBooked: 3,
	})
	require.Error(t, err)

	// The compensating refund must have returned the reserved seats.
	assert.Equal(t, 4, rideRepo.seatsAvailable(ride.ID))
	assertConservation(t, rideRepo, bookingRepo, ride.ID, 4)
}

func TestSetStatusAcceptKeepsSeats(t *testing.T) {
	rideRepo := newFakeRideRepo()
	bookingRepo := newFakeBookingRepo()
	svc := newTestBookingService(rideRepo, bookingRepo)

	driverID := uuid.New()
	ride := seedRide(t, rideRepo, driverID, 4)
	passengerID := uuid.New()

	resp, err := svc.RequestBooking(context.Background(), passengerID.String(), &request.RequestBookingRequest{
		RideID:      ride.ID.String(),
		SeatsBooked: 2,
	})
	require.NoError(t, err)

	accepted, err := svc.SetStatus(context.Background(), driverID.String(), resp.ID,
		&request.UpdateBookingStatusRequest{Status: string(entity.BookingStatusAccepted)})
	require.NoError(t, err)

	assert.Equal(t, entity.BookingStatusAccepted, accepted.Status)
	assert.Equal(t, 2, rideRepo.seatsAvailable(ride.ID))
	assertConservation(t, rideRepo, bookingRepo, ride.ID, 4)
}

func TestSetStatusRejectRefundsSeats(t *testing.T) {
	rideRepo := newFakeRideRepo()
	bookingRepo := newFakeBookingRepo()
	svc := newTestBookingService(rideRepo, bookingRepo)

	driverID := uuid.New()
	ride := seedRide(t, rideRepo, driverID, 4)

	resp, err := svc.RequestBooking(context.Background(), uuid.New().String(), &request.RequestBookingRequest{
		RideID:      ride.ID.String(),
		SeatsBooked: 3,
	})
	require.NoError(t, err)
	require.Equal(t, 1, rideRepo.seatsAvailable(ride.ID))

	rejected, err := svc.SetStatus(context.Background(), driverID.String(), resp.ID,
		&request.UpdateBookingStatusRequest{Status: string(entity.BookingStatusRejected)})
	require.NoError(t, err)

	assert.Equal(t, entity.BookingStatusRejected, rejected.Status)
	assert.Equal(t, 4, rideRepo.seatsAvailable(ride.ID))
	assertConservation(t, rideRepo, bookingRepo, ride.ID, 4)
}

func TestSetStatusCancelRefundsSeats(t *testing.T) {
	for _, from := range []entity.BookingStatus{entity.BookingStatusPending, entity.BookingStatusAccepted} {
		t.Run(string(from), func(t *testing.T) {
			rideRepo := newFakeRideRepo()
			bookingRepo := newFakeBookingRepo()
			svc := newTestBookingService(rideRepo, bookingRepo)

			ride := seedRide(t, rideRepo, uuid.New(), 4)
			passengerID := uuid.New()
			booking := seedBooking(t, bookingRepo, ride.ID, passengerID, 2, from)
			_, err := rideRepo.ReserveSeats(context.Background(), ride.ID, 2)
			require.NoError(t, err)

			cancelled, err := svc.SetStatus(context.Background(), passengerID.String(), booking.ID.String(),
				&request.UpdateBookingStatusRequest{Status: string(entity.BookingStatusCancelled)})
			require.NoError(t, err)

			assert.Equal(t, entity.BookingStatusCancelled, cancelled.Status)
			assert.Equal(t, 4, rideRepo.seatsAvailable(ride.ID))
			assertConservation(t, rideRepo, bookingRepo, ride.ID, 4)
		})
	}
}

func TestSetStatusAcceptedCannotBeRejected(t *testing.T) {
	rideRepo := newFakeRideRepo()
	bookingRepo := newFakeBookingRepo()
	svc := newTestBookingService(rideRepo, bookingRepo)

	driverID := uuid.New()
	ride := seedRide(t, rideRepo, driverID, 4)
	booking := seedBooking(t, bookingRepo, ride.ID, uuid.New(), 2, entity.BookingStatusAccepted)
	_, err := rideRepo.ReserveSeats(context.Background(), ride.ID, 2)
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), driverID.String(), booking.ID.String(),
		&request.UpdateBookingStatusRequest{Status: string(entity.BookingStatusRejected)})
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)

	// Failed transition leaves both status and seat counter untouched.
	assert.Equal(t, entity.BookingStatusAccepted, bookingRepo.status(booking.ID))
	assert.Equal(t, 2, rideRepo.seatsAvailable(ride.ID))
}

func TestSetStatusTerminalStatesAreImmutable(t *testing.T) {
	targets := []entity.BookingStatus{
		entity.BookingStatusAccepted,
		entity.BookingStatusRejected,
		entity.BookingStatusCancelled,
	}

	for _, terminal := range []entity.BookingStatus{entity.BookingStatusRejected, entity.BookingStatusCancelled} {
		for _, target := range targets {
			t.Run(fmt.Sprintf("%s_to_%s", terminal, target), func(t *testing.T) {
				rideRepo := newFakeRideRepo()
				bookingRepo := newFakeBookingRepo()
				svc := newTestBookingService(rideRepo, bookingRepo)

				driverID := uuid.New()
				passengerID := uuid.New()
				ride := seedRide(t, rideRepo, driverID, 4)
				booking := seedBooking(t, bookingRepo, ride.ID, passengerID, 1, terminal)

				actor := driverID
				if target == entity.BookingStatusCancelled {
					actor = passengerID
				}

				_, err := svc.SetStatus(context.Background(), actor.String(), booking.ID.String(),
					&request.UpdateBookingStatusRequest{Status: string(target)})
				assert.ErrorIs(t, err, entity.ErrInvalidTransition)
				assert.Equal(t, terminal, bookingRepo.status(booking.ID))
			})
		}
	}
}

func TestSetStatusDoubleCancelRefundsOnce(t *testing.T) {
	rideRepo := newFakeRideRepo()
	bookingRepo := newFakeBookingRepo()
	svc := newTestBookingService(rideRepo, bookingRepo)

	ride := seedRide(t, rideRepo, uuid.New(), 4)
	passengerID := uuid.New()
	booking := seedBooking(t, bookingRepo, ride.ID, passengerID, 2, entity.BookingStatusPending)
	_, err := rideRepo.ReserveSeats(context.Background(), ride.ID, 2)
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), passengerID.String(), booking.ID.String(),
		&request.UpdateBookingStatusRequest{Status: string(entity.BookingStatusCancelled)})
	require.NoError(t, err)
	require.Equal(t, 4, rideRepo.seatsAvailable(ride.ID))

	_, err = svc.SetStatus(context.Background(), passengerID.String(), booking.ID.String(),
		&request.UpdateBookingStatusRequest{Status: string(entity.BookingStatusCancelled)})
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)
	assert.Equal(t, 4, rideRepo.seatsAvailable(ride.ID))
}

func TestSetStatusOwnership(t *testing.T) {
	rideRepo := newFakeRideRepo()
	bookingRepo := newFakeBookingRepo()
	svc := newTestBookingService(rideRepo, bookingRepo)

	driverID := uuid.New()
	passengerID := uuid.New()
	ride := seedRide(t, rideRepo, driverID, 4)
	booking := seedBooking(t, bookingRepo, ride.ID, passengerID, 1, entity.BookingStatusPending)

	// Only the ride's driver may accept or reject.
	_, err := svc.SetStatus(context.Background(), passengerID.String(), booking.ID.String(),
		&request.UpdateBookingStatusRequest{Status: string(entity.BookingStatusAccepted)})
	assert.ErrorIs(t, err, entity.ErrNotRideDriver)

	// Only the booking's passenger may cancel.
	_, err = svc.SetStatus(context.Background(), driverID.String(), booking.ID.String(),
		&request.UpdateBookingStatusRequest{Status: string(entity.BookingStatusCancelled)})
	assert.ErrorIs(t, err, entity.ErrNotBookingOwner)

	assert.Equal(t, entity.BookingStatusPending, bookingRepo.status(booking.ID))
}

func TestSetStatusRefundFailureRevertsStatus(t *testing.T) {
	rideRepo := newFakeRideRepo()
	bookingRepo := newFakeBookingRepo()
	svc := newTestBookingService(rideRepo, bookingRepo)

	driverID := uuid.New()
	ride := seedRide(t, rideRepo, driverID, 4)
	booking := seedBooking(t, bookingRepo, ride.ID, uuid.New(), 2, entity.BookingStatusPending)
	_, err := rideRepo.ReserveSeats(context.Background(), ride.ID, 2)
	require.NoError(t, err)

	rideRepo.failAdjust = errors.New("connection reset")

	_, err = svc.SetStatus(context.Background(), driverID.String(), booking.ID.String(),
		&request.UpdateBookingStatusRequest{Status: string(entity.BookingStatusRejected)})
	require.Error(t, err)

	// The status write was reverted so the state machine and the counter
	// stay matched.
	assert.Equal(t, entity.BookingStatusPending, bookingRepo.status(booking.ID))
	assert.Equal(t, 2, rideRepo.seatsAvailable(ride.ID))
	assertConservation(t, rideRepo, bookingRepo, ride.ID, 4)
}

func TestRequestBookingConcurrentNoOversell(t *testing.T) {
	rideRepo := newFakeRideRepo()
	bookingRepo := newFakeBookingRepo()
	svc := newTestBookingService(rideRepo, bookingRepo)

	ride := seedRide(t, rideRepo, uuid.New(), 3)

	const requests = 8
	var wg sync.WaitGroup
	results := make([]error, requests)

	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.RequestBooking(context.Background(), uuid.New().String(), &request.RequestBookingRequest{
				RideID:      ride.ID.String(),
				SeatsBooked: 1,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, entity.ErrInsufficientSeats)
		}
	}

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 0, rideRepo.seatsAvailable(ride.ID))
	assertConservation(t, rideRepo, bookingRepo, ride.ID, 3)
}

func TestRejectPendingForRide(t *testing.T) {
	rideRepo := newFakeRideRepo()
	bookingRepo := newFakeBookingRepo()
	svc := newTestBookingService(rideRepo, bookingRepo)

	ride := seedRide(t, rideRepo, uuid.New(), 5)
	pending1 := seedBooking(t, bookingRepo, ride.ID, uuid.New(), 1, entity.BookingStatusPending)
	pending2 := seedBooking(t, bookingRepo, ride.ID, uuid.New(), 2, entity.BookingStatusPending)
	accepted := seedBooking(t, bookingRepo, ride.ID, uuid.New(), 1, entity.BookingStatusAccepted)
	_, err := rideRepo.ReserveSeats(context.Background(), ride.ID, 4)
	require.NoError(t, err)

	require.NoError(t, svc.RejectPendingForRide(context.Background(), ride.ID))

	assert.Equal(t, entity.BookingStatusRejected, bookingRepo.status(pending1.ID))
	assert.Equal(t, entity.BookingStatusRejected, bookingRepo.status(pending2.ID))
	assert.Equal(t, entity.BookingStatusAccepted, bookingRepo.status(accepted.ID))

	// Only the pending seats come back; the accepted booking keeps its seat.
	assert.Equal(t, 4, rideRepo.seatsAvailable(ride.ID))
	assertConservation(t, rideRepo, bookingRepo, ride.ID, 5)
}

func TestRejectPendingForRidePartialFailure(t *testing.T) {
	rideRepo := newFakeRideRepo()
	bookingRepo := newFakeBookingRepo()
	svc := newTestBookingService(rideRepo, bookingRepo)

	ride := seedRide(t, rideRepo, uuid.New(), 5)
	healthy := seedBooking(t, bookingRepo, ride.ID, uuid.New(), 2, entity.BookingStatusPending)
	stuck := seedBooking(t, bookingRepo, ride.ID, uuid.New(), 1, entity.BookingStatusPending)
	_, err := rideRepo.ReserveSeats(context.Background(), ride.ID, 3)
	require.NoError(t, err)

	bookingRepo.failStatusFor[stuck.ID] = errors.New("write timeout")

	err = svc.RejectPendingForRide(context.Background(), ride.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")

	// The cascade kept going past the failure.
	assert.Equal(t, entity.BookingStatusRejected, bookingRepo.status(healthy.ID))
	assert.Equal(t, entity.BookingStatusPending, bookingRepo.status(stuck.ID))
	assertConservation(t, rideRepo, bookingRepo, ride.ID, 5)
}
