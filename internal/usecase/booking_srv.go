package usecase

import (
	"context"
	"fmt"
	"time"

	"campus-carpool/internal/data/entity"
	"campus-carpool/internal/data/repository"
	"campus-carpool/internal/dto/request"
	"campus-carpool/internal/dto/response"
	"campus-carpool/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	RequestBooking(ctx context.Context, passengerID string, req *request.RequestBookingRequest) (*response.BookingResponse, error)
	SetStatus(ctx context.Context, userID, bookingID string, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error)
	ListForRide(ctx context.Context, userID, rideID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	ListForPassenger(ctx context.Context, passengerID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)

	// RejectPendingForRide rejects every pending booking on the ride,
	// refunding seats per booking. Used for cascading rejection when a ride
	// is deactivated or completed.
	RejectPendingForRide(ctx context.Context, rideID uuid.UUID) error
}

type bookingService struct {
	repo  *repository.Repository
	locks *rideLocker
	log   *zap.Logger
}

func NewBookingService(repo *repository.Repository, log *zap.Logger) BookingService {
	return &bookingService{
		repo:  repo,
		locks: newRideLocker(),
		log:   log.With(zap.String("service", "booking")),
	}
}

// RequestBooking creates a pending booking and reserves its seats in the
// same serialized unit of work: seats are taken the moment the request is
// accepted, so a pending request can never be starved by later requests.
func (s *bookingService) RequestBooking(ctx context.Context, passengerID string, req *request.RequestBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Request booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	passengerUUID, err := uuid.Parse(passengerID)
	if err != nil {
		return nil, fmt.Errorf("invalid passenger ID format %s: %w", passengerID, err)
	}

	rideID, err := uuid.Parse(req.RideID)
	if err != nil {
		return nil, fmt.Errorf("invalid ride ID format %s: %w", req.RideID, err)
	}

	// Serialize all seat accounting on this ride.
	s.locks.Lock(rideID)
	defer s.locks.Unlock(rideID)

	ride, err := s.repo.Ride.FindByID(ctx, rideID)
	if err != nil {
		return nil, fmt.Errorf("look up ride: %w", err)
	}
	if ride == nil {
		return nil, fmt.Errorf("ride %s: %w", req.RideID, entity.ErrRideNotFound)
	}

	if !ride.IsActive || ride.Status != entity.RideStatusScheduled {
		return nil, fmt.Errorf("ride %s: %w", req.RideID, entity.ErrRideInactive)
	}

	if ride.DriverID == passengerUUID {
		return nil, fmt.Errorf("ride %s: %w", req.RideID, entity.ErrOwnRideBooking)
	}

	if req.SeatsBooked > ride.SeatsAvailable {
		return nil, fmt.Errorf("requested %d seats, %d available: %w",
			req.SeatsBooked, ride.SeatsAvailable, entity.ErrInsufficientSeats)
	}

	// Conditional decrement; the WHERE clause re-checks availability so the
	// database backstops the check above even if accounting ever drifts.
	reserved, err := s.repo.Ride.ReserveSeats(ctx, rideID, req.SeatsBooked)
	if err != nil {
		return nil, fmt.Errorf("reserve seats: %w", err)
	}
	if !reserved {
		return nil, fmt.Errorf("requested %d seats on ride %s: %w",
			req.SeatsBooked, req.RideID, entity.ErrInsufficientSeats)
	}

	now := time.Now()
	booking := &entity.Booking{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		RideID:      rideID,
		PassengerID: passengerUUID,
		SeatsBooked: req.SeatsBooked,
		Status:      entity.BookingStatusPending,
	}

	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		// Compensate: the seats are reserved but no booking exists. Refund
		// them so the conservation law holds, then surface the failure.
		if _, clamped, refundErr := s.repo.Ride.AdjustSeats(ctx, rideID, req.SeatsBooked); refundErr != nil || clamped {
			s.log.Error("Seat refund after failed booking create did not apply cleanly",
				zap.Error(refundErr),
				zap.Bool("clamped", clamped),
				zap.String("ride_id", req.RideID),
				zap.Int("seats", req.SeatsBooked),
				zap.NamedError("defect", entity.ErrInvariantViolation),
			)
		}
		s.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("ride_id", req.RideID),
			zap.String("passenger_id", passengerID),
		)
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.log.Info("Booking requested",
		zap.String("booking_id", booking.ID.String()),
		zap.String("ride_id", req.RideID),
		zap.String("passenger_id", passengerID),
		zap.Int("seats_booked", req.SeatsBooked),
	)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

// SetStatus moves a booking through the state machine and applies exactly
// the seat effect the transition table prescribes, or fails without any
// seat effect.
func (s *bookingService) SetStatus(ctx context.Context, userID, bookingID string, req *request.UpdateBookingStatusRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update booking status validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	newStatus := entity.BookingStatus(req.Status)

	// First read just locates the ride so we can take its lock.
	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("look up booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, entity.ErrBookingNotFound)
	}

	s.locks.Lock(booking.RideID)
	defer s.locks.Unlock(booking.RideID)

	// Re-read under the lock; the status may have moved while we waited.
	booking, err = s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("look up booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, entity.ErrBookingNotFound)
	}

	ride, err := s.repo.Ride.FindByID(ctx, booking.RideID)
	if err != nil {
		return nil, fmt.Errorf("look up ride: %w", err)
	}
	if ride == nil {
		return nil, fmt.Errorf("ride %s: %w", booking.RideID.String(), entity.ErrRideNotFound)
	}

	switch newStatus {
	case entity.BookingStatusAccepted, entity.BookingStatusRejected:
		if ride.DriverID != userUUID {
			return nil, fmt.Errorf("booking %s: %w", bookingID, entity.ErrNotRideDriver)
		}
	case entity.BookingStatusCancelled:
		if booking.PassengerID != userUUID {
			return nil, fmt.Errorf("booking %s: %w", bookingID, entity.ErrNotBookingOwner)
		}
	}

	updated, err := s.applyTransition(ctx, booking, newStatus)
	if err != nil {
		return nil, err
	}

	resp := response.BookingToResponse(updated)
	return &resp, nil
}

// applyTransition performs the status write and its paired seat effect.
// Caller must hold the ride lock.
func (s *bookingService) applyTransition(ctx context.Context, booking *entity.Booking, newStatus entity.BookingStatus) (*entity.Booking, error) {
	from := booking.Status

	if !from.CanTransitionTo(newStatus) {
		return nil, fmt.Errorf("booking %s: %s -> %s: %w",
			booking.ID.String(), string(from), string(newStatus), entity.ErrInvalidTransition)
	}

	// Compare-and-swap so a raced status change cannot be overwritten.
	swapped, err := s.repo.Booking.UpdateStatus(ctx, booking.ID, from, newStatus)
	if err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}
	if !swapped {
		return nil, fmt.Errorf("booking %s: status changed concurrently: %w",
			booking.ID.String(), entity.ErrInvalidTransition)
	}

	// Every status-lowering transition refunds exactly once; accepting
	// performs no seat change because the seats were reserved at request
	// time.
	if from.RefundsSeats(newStatus) {
		_, clamped, err := s.repo.Ride.AdjustSeats(ctx, booking.RideID, booking.SeatsBooked)
		if err != nil {
			// Revert the status write so booking state and seat counter
			// stay matched, then report the failure.
			if reverted, revertErr := s.repo.Booking.UpdateStatus(ctx, booking.ID, newStatus, from); revertErr != nil || !reverted {
				s.log.Error("Failed to revert booking status after refund failure",
					zap.Error(revertErr),
					zap.String("booking_id", booking.ID.String()),
					zap.NamedError("defect", entity.ErrInvariantViolation),
				)
			}
			return nil, fmt.Errorf("refund %d seats on ride %s: %w",
				booking.SeatsBooked, booking.RideID.String(), err)
		}
		if clamped {
			// The refund could not be applied in full: the counter was
			// already at or near seats_total. The clamp kept the counter
			// legal, but conservation is broken somewhere.
			s.log.Error("Seat refund clamped",
				zap.String("booking_id", booking.ID.String()),
				zap.String("ride_id", booking.RideID.String()),
				zap.Int("seats_booked", booking.SeatsBooked),
				zap.NamedError("defect", entity.ErrInvariantViolation),
			)
		}
	}

	booking.Status = newStatus
	booking.UpdatedAt = time.Now()

	s.log.Info("Booking status updated",
		zap.String("booking_id", booking.ID.String()),
		zap.String("ride_id", booking.RideID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(newStatus)),
	)

	return booking, nil
}

func (s *bookingService) ListForRide(ctx context.Context, userID, rideID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	id, err := uuid.Parse(rideID)
	if err != nil {
		return nil, fmt.Errorf("invalid ride ID format %s: %w", rideID, err)
	}

	ride, err := s.repo.Ride.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("look up ride: %w", err)
	}
	if ride == nil {
		return nil, fmt.Errorf("ride %s: %w", rideID, entity.ErrRideNotFound)
	}

	if ride.DriverID != userUUID {
		return nil, fmt.Errorf("ride %s: %w", rideID, entity.ErrNotRideDriver)
	}

	bookings, err := s.repo.Booking.FindByRideID(ctx, id, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list bookings for ride: %w", err)
	}

	total, err := s.repo.Booking.CountByRideID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count bookings for ride: %w", err)
	}

	return paginatedBookings(bookings, req, total), nil
}

func (s *bookingService) ListForPassenger(ctx context.Context, passengerID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	passengerUUID, err := uuid.Parse(passengerID)
	if err != nil {
		return nil, fmt.Errorf("invalid passenger ID format %s: %w", passengerID, err)
	}

	bookings, err := s.repo.Booking.FindByPassengerID(ctx, passengerUUID, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list bookings for passenger: %w", err)
	}

	total, err := s.repo.Booking.CountByPassengerID(ctx, passengerUUID)
	if err != nil {
		return nil, fmt.Errorf("count bookings for passenger: %w", err)
	}

	return paginatedBookings(bookings, req, total), nil
}

// RejectPendingForRide rejects every pending booking on the ride. Partial
// failure is a degraded-but-logged outcome: the cascade keeps going past
// individual failures and the aggregate error reports how many were left
// behind so the caller can retry.
func (s *bookingService) RejectPendingForRide(ctx context.Context, rideID uuid.UUID) error {
	s.locks.Lock(rideID)
	defer s.locks.Unlock(rideID)

	pending, err := s.repo.Booking.FindPendingByRideID(ctx, rideID)
	if err != nil {
		return fmt.Errorf("list pending bookings for ride %s: %w", rideID.String(), err)
	}

	failed := 0
	for _, booking := range pending {
		if _, err := s.applyTransition(ctx, booking, entity.BookingStatusRejected); err != nil {
			failed++
			s.log.Error("Cascading rejection failed for booking",
				zap.Error(err),
				zap.String("ride_id", rideID.String()),
				zap.String("booking_id", booking.ID.String()),
			)
		}
	}

	if failed > 0 {
		return fmt.Errorf("cascading rejection on ride %s: %d of %d pending bookings not rejected",
			rideID.String(), failed, len(pending))
	}

	if len(pending) > 0 {
		s.log.Info("Cascading rejection completed",
			zap.String("ride_id", rideID.String()),
			zap.Int("rejected", len(pending)),
		)
	}

	return nil
}

func paginatedBookings(bookings []*entity.Booking, req *request.PaginatedRequest, total int64) *response.PaginatedResponse[response.BookingResponse] {
	bookingResponses := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		bookingResponses[i] = response.BookingToResponse(booking)
	}
	return response.NewPaginatedResponse(bookingResponses, req.Page, req.PerPage, total)
}
