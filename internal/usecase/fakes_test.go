package usecase

import (
	"context"
	"fmt"
	"sync"

	"campus-carpool/internal/data/entity"
	"campus-carpool/internal/data/repository"

	"github.com/google/uuid"
)

// In-memory fakes behind the repository interfaces. All of them are
// mutex-guarded because the oversell tests hit them from many goroutines.

type fakeRideRepo struct {
	mu    sync.Mutex
	rides map[uuid.UUID]*entity.Ride

	failAdjust error // injected AdjustSeats failure
}

func newFakeRideRepo() *fakeRideRepo {
	return &fakeRideRepo{rides: make(map[uuid.UUID]*entity.Ride)}
}

func (f *fakeRideRepo) Create(ctx context.Context, ride *entity.Ride) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *ride
	f.rides[ride.ID] = &copied
	return nil
}

func (f *fakeRideRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ride, ok := f.rides[id]
	if !ok {
		return nil, nil
	}
	copied := *ride
	return &copied, nil
}

func (f *fakeRideRepo) FindActive(ctx context.Context, filter repository.RideSearchFilter, limit, offset int) ([]*entity.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rides []*entity.Ride
	for _, ride := range f.rides {
		if ride.IsActive && ride.Status == entity.RideStatusScheduled {
			copied := *ride
			rides = append(rides, &copied)
		}
	}
	return rides, nil
}

func (f *fakeRideRepo) CountActive(ctx context.Context, filter repository.RideSearchFilter) (int64, error) {
	rides, _ := f.FindActive(ctx, filter, 0, 0)
	return int64(len(rides)), nil
}

func (f *fakeRideRepo) FindByDriverID(ctx context.Context, driverID uuid.UUID, limit, offset int) ([]*entity.Ride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rides []*entity.Ride
	for _, ride := range f.rides {
		if ride.DriverID == driverID {
			copied := *ride
			rides = append(rides, &copied)
		}
	}
	return rides, nil
}

func (f *fakeRideRepo) UpdateStatus(ctx context.Context, rideID uuid.UUID, status entity.RideStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ride, ok := f.rides[rideID]
	if !ok {
		return fmt.Errorf("ride %s: %w", rideID.String(), entity.ErrRideNotFound)
	}
	ride.Status = status
	return nil
}

func (f *fakeRideRepo) Deactivate(ctx context.Context, rideID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ride, ok := f.rides[rideID]
	if !ok {
		return fmt.Errorf("ride %s: %w", rideID.String(), entity.ErrRideNotFound)
	}
	ride.IsActive = false
	return nil
}

func (f *fakeRideRepo) GetSeats(ctx context.Context, rideID uuid.UUID) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ride, ok := f.rides[rideID]
	if !ok {
		return 0, 0, fmt.Errorf("ride %s: %w", rideID.String(), entity.ErrRideNotFound)
	}
	return ride.SeatsAvailable, ride.SeatsTotal, nil
}

func (f *fakeRideRepo) ReserveSeats(ctx context.Context, rideID uuid.UUID, seats int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ride, ok := f.rides[rideID]
	if !ok {
		return false, nil
	}
	if !ride.IsActive || ride.SeatsAvailable < seats {
		return false, nil
	}
	ride.SeatsAvailable -= seats
	return true, nil
}

func (f *fakeRideRepo) AdjustSeats(ctx context.Context, rideID uuid.UUID, delta int) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAdjust != nil {
		return 0, false, f.failAdjust
	}
	ride, ok := f.rides[rideID]
	if !ok {
		return 0, false, fmt.Errorf("ride %s: %w", rideID.String(), entity.ErrRideNotFound)
	}
	raw := ride.SeatsAvailable + delta
	clamped := false
	if raw < 0 {
		raw = 0
		clamped = true
	}
	if raw > ride.SeatsTotal {
		raw = ride.SeatsTotal
		clamped = true
	}
	ride.SeatsAvailable = raw
	return raw, clamped, nil
}

func (f *fakeRideRepo) seatsAvailable(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rides[id].SeatsAvailable
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*entity.Booking

	failCreate    error                    // injected Create failure
	failStatusFor map[uuid.UUID]error      // injected UpdateStatus failure per booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings:      make(map[uuid.UUID]*entity.Booking),
		failStatusFor: make(map[uuid.UUID]error),
	}
}

func (f *fakeBookingRepo) Create(ctx context.Context, booking *entity.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return f.failCreate
	}
	copied := *booking
	f.bookings[booking.ID] = &copied
	return nil
}

func (f *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	copied := *booking
	return &copied, nil
}

func (f *fakeBookingRepo) FindByRideID(ctx context.Context, rideID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var bookings []*entity.Booking
	for _, booking := range f.bookings {
		if booking.RideID == rideID {
			copied := *booking
			bookings = append(bookings, &copied)
		}
	}
	return bookings, nil
}

func (f *fakeBookingRepo) CountByRideID(ctx context.Context, rideID uuid.UUID) (int64, error) {
	bookings, _ := f.FindByRideID(ctx, rideID, 0, 0)
	return int64(len(bookings)), nil
}

func (f *fakeBookingRepo) FindByPassengerID(ctx context.Context, passengerID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var bookings []*entity.Booking
	for _, booking := range f.bookings {
		if booking.PassengerID == passengerID {
			copied := *booking
			bookings = append(bookings, &copied)
		}
	}
	return bookings, nil
}

func (f *fakeBookingRepo) CountByPassengerID(ctx context.Context, passengerID uuid.UUID) (int64, error) {
	bookings, _ := f.FindByPassengerID(ctx, passengerID, 0, 0)
	return int64(len(bookings)), nil
}

func (f *fakeBookingRepo) FindPendingByRideID(ctx context.Context, rideID uuid.UUID) ([]*entity.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var bookings []*entity.Booking
	for _, booking := range f.bookings {
		if booking.RideID == rideID && booking.Status == entity.BookingStatusPending {
			copied := *booking
			bookings = append(bookings, &copied)
		}
	}
	return bookings, nil
}

func (f *fakeBookingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.bookings, id)
	return nil
}

func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, bookingID uuid.UUID, from, to entity.BookingStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failStatusFor[bookingID]; ok {
		return false, err
	}
	booking, ok := f.bookings[bookingID]
	if !ok || booking.Status != from {
		return false, nil
	}
	booking.Status = to
	return true, nil
}

func (f *fakeBookingRepo) status(id uuid.UUID) entity.BookingStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bookings[id].Status
}

type fakeVehicleRepo struct {
	mu       sync.Mutex
	vehicles map[uuid.UUID]*entity.Vehicle
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{vehicles: make(map[uuid.UUID]*entity.Vehicle)}
}

func (f *fakeVehicleRepo) Create(ctx context.Context, vehicle *entity.Vehicle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *vehicle
	f.vehicles[vehicle.ID] = &copied
	return nil
}

func (f *fakeVehicleRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	vehicle, ok := f.vehicles[id]
	if !ok {
		return nil, nil
	}
	copied := *vehicle
	return &copied, nil
}

func (f *fakeVehicleRepo) FindByDriverID(ctx context.Context, driverID uuid.UUID) ([]*entity.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var vehicles []*entity.Vehicle
	for _, vehicle := range f.vehicles {
		if vehicle.DriverID == driverID {
			copied := *vehicle
			vehicles = append(vehicles, &copied)
		}
	}
	return vehicles, nil
}

func (f *fakeVehicleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.vehicles, id)
	return nil
}

// reservedSeats sums seats_booked over occupying bookings on the ride, for
// checking the seat conservation law.
func (f *fakeBookingRepo) reservedSeats(rideID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, booking := range f.bookings {
		if booking.RideID == rideID && booking.Status.Occupies() {
			total += booking.SeatsBooked
		}
	}
	return total
}
