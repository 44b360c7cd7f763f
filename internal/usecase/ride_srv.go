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

type RideService interface {
	CreateRide(ctx context.Context, driverID string, req *request.CreateRideRequest) (*response.RideResponse, error)
	GetRide(ctx context.Context, rideID string) (*response.RideResponse, error)
	GetSeatsAvailable(ctx context.Context, rideID string) (*response.RideSeatsResponse, error)
	SearchRides(ctx context.Context, req *request.SearchRidesRequest) (*response.PaginatedResponse[response.RideResponse], error)
	ListForDriver(ctx context.Context, driverID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.RideResponse], error)
	UpdateRideStatus(ctx context.Context, driverID, rideID string, req *request.UpdateRideStatusRequest) (*response.RideResponse, error)
	DeactivateRide(ctx context.Context, driverID, rideID string) error
}

type rideService struct {
	repo     *repository.Repository
	bookings BookingService
	log      *zap.Logger
}

func NewRideService(repo *repository.Repository, bookings BookingService, log *zap.Logger) RideService {
	return &rideService{
		repo:     repo,
		bookings: bookings,
		log:      log.With(zap.String("service", "ride")),
	}
}

func (s *rideService) CreateRide(ctx context.Context, driverID string, req *request.CreateRideRequest) (*response.RideResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create ride validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	driverUUID, err := uuid.Parse(driverID)
	if err != nil {
		return nil, fmt.Errorf("invalid driver ID format %s: %w", driverID, err)
	}

	departureTime, err := time.Parse(time.RFC3339, req.DepartureTime)
	if err != nil {
		return nil, fmt.Errorf("invalid departure time %s: %w", req.DepartureTime, err)
	}

	if departureTime.Before(time.Now()) {
		return nil, fmt.Errorf("validation failed: departure time must be in the future")
	}

	var vehicleID *uuid.UUID
	if req.VehicleID != nil {
		id, err := uuid.Parse(*req.VehicleID)
		if err != nil {
			return nil, fmt.Errorf("invalid vehicle ID format %s: %w", *req.VehicleID, err)
		}

		vehicle, err := s.repo.Vehicle.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("look up vehicle: %w", err)
		}
		if vehicle == nil {
			return nil, fmt.Errorf("vehicle %s not found", *req.VehicleID)
		}
		if vehicle.DriverID != driverUUID {
			return nil, fmt.Errorf("vehicle %s: %w", *req.VehicleID, entity.ErrNotRideDriver)
		}
		if req.SeatsTotal > vehicle.SeatCapacity {
			return nil, fmt.Errorf("validation failed: seats_total %d exceeds vehicle capacity %d",
				req.SeatsTotal, vehicle.SeatCapacity)
		}
		vehicleID = &id
	}

	now := time.Now()
	ride := &entity.Ride{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		DriverID:       driverUUID,
		VehicleID:      vehicleID,
		SourceLat:      req.SourceLat,
		SourceLng:      req.SourceLng,
		SourceAddress:  req.SourceAddress,
		DestLat:        req.DestLat,
		DestLng:        req.DestLng,
		DestAddress:    req.DestAddress,
		DepartureTime:  departureTime,
		SeatsTotal:     req.SeatsTotal,
		SeatsAvailable: req.SeatsTotal,
		CostPerSeat:    req.CostPerSeat,
		IsActive:       true,
		Status:         entity.RideStatusScheduled,
	}

	if err := s.repo.Ride.Create(ctx, ride); err != nil {
		s.log.Error("Failed to create ride",
			zap.Error(err),
			zap.String("driver_id", driverID),
		)
		return nil, fmt.Errorf("create ride: %w", err)
	}

	s.log.Info("Ride created",
		zap.String("ride_id", ride.ID.String()),
		zap.String("driver_id", driverID),
		zap.Int("seats_total", ride.SeatsTotal),
		zap.Int64("cost_per_seat", ride.CostPerSeat),
		zap.Time("departure_time", departureTime),
	)

	resp := response.RideToResponse(ride)
	return &resp, nil
}

func (s *rideService) GetRide(ctx context.Context, rideID string) (*response.RideResponse, error) {
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

	resp := response.RideToResponse(ride)
	return &resp, nil
}

func (s *rideService) GetSeatsAvailable(ctx context.Context, rideID string) (*response.RideSeatsResponse, error) {
	id, err := uuid.Parse(rideID)
	if err != nil {
		return nil, fmt.Errorf("invalid ride ID format %s: %w", rideID, err)
	}

	available, total, err := s.repo.Ride.GetSeats(ctx, id)
	if err != nil {
		return nil, err
	}

	return &response.RideSeatsResponse{
		RideID:         rideID,
		SeatsTotal:     total,
		SeatsAvailable: available,
	}, nil
}

func (s *rideService) SearchRides(ctx context.Context, req *request.SearchRidesRequest) (*response.PaginatedResponse[response.RideResponse], error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Search rides validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	filter := repository.RideSearchFilter{
		Destination: req.Destination,
	}
	if req.DepartureDate != "" {
		date, err := time.Parse("2006-01-02", req.DepartureDate)
		if err != nil {
			return nil, fmt.Errorf("invalid departure date %s: %w", req.DepartureDate, err)
		}
		filter.DepartureDate = &date
	}

	rides, err := s.repo.Ride.FindActive(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("search rides: %w", err)
	}

	total, err := s.repo.Ride.CountActive(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count rides: %w", err)
	}

	return paginatedRides(rides, &req.PaginatedRequest, total), nil
}

func (s *rideService) ListForDriver(ctx context.Context, driverID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.RideResponse], error) {
	driverUUID, err := uuid.Parse(driverID)
	if err != nil {
		return nil, fmt.Errorf("invalid driver ID format %s: %w", driverID, err)
	}

	rides, err := s.repo.Ride.FindByDriverID(ctx, driverUUID, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list rides for driver: %w", err)
	}

	// Driver ride lists are short; count equals page content for most
	// drivers, so a dedicated count query is not worth a round trip.
	total := int64(len(rides))

	return paginatedRides(rides, req, total), nil
}

// UpdateRideStatus moves the ride lifecycle forward. Completing a ride also
// deactivates it and rejects whatever pending bookings remain.
func (s *rideService) UpdateRideStatus(ctx context.Context, driverID, rideID string, req *request.UpdateRideStatusRequest) (*response.RideResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update ride status validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	ride, err := s.ownedRide(ctx, driverID, rideID)
	if err != nil {
		return nil, err
	}

	newStatus := entity.RideStatus(req.Status)
	if !ride.Status.CanTransitionTo(newStatus) {
		return nil, fmt.Errorf("ride %s: %s -> %s: %w",
			rideID, string(ride.Status), string(newStatus), entity.ErrInvalidTransition)
	}

	if err := s.repo.Ride.UpdateStatus(ctx, ride.ID, newStatus); err != nil {
		return nil, err
	}

	ride.Status = newStatus
	ride.UpdatedAt = time.Now()

	s.log.Info("Ride status updated",
		zap.String("ride_id", rideID),
		zap.String("status", string(newStatus)),
	)

	if newStatus == entity.RideStatusCompleted {
		if err := s.deactivateWithCascade(ctx, ride.ID); err != nil {
			return nil, err
		}
		ride.IsActive = false
	}

	resp := response.RideToResponse(ride)
	return &resp, nil
}

// DeactivateRide soft-invalidates the ride and cascades rejection of its
// pending bookings, each rejection refunding seats. The ride is never hard
// deleted.
func (s *rideService) DeactivateRide(ctx context.Context, driverID, rideID string) error {
	ride, err := s.ownedRide(ctx, driverID, rideID)
	if err != nil {
		return err
	}

	if !ride.IsActive {
		// Already deactivated; cascading again is harmless and picks up
		// bookings a previous degraded cascade may have left pending.
		return s.bookings.RejectPendingForRide(ctx, ride.ID)
	}

	return s.deactivateWithCascade(ctx, ride.ID)
}

func (s *rideService) deactivateWithCascade(ctx context.Context, rideID uuid.UUID) error {
	if err := s.repo.Ride.Deactivate(ctx, rideID); err != nil {
		return err
	}

	// The ride is deactivated regardless of how the cascade fares; a
	// partial cascade is reported so the caller can retry, never silently
	// dropped.
	if err := s.bookings.RejectPendingForRide(ctx, rideID); err != nil {
		s.log.Error("Cascading rejection incomplete after ride deactivation",
			zap.Error(err),
			zap.String("ride_id", rideID.String()),
		)
		return fmt.Errorf("ride deactivated, cascade incomplete: %w", err)
	}

	return nil
}

func (s *rideService) ownedRide(ctx context.Context, driverID, rideID string) (*entity.Ride, error) {
	driverUUID, err := uuid.Parse(driverID)
	if err != nil {
		return nil, fmt.Errorf("invalid driver ID format %s: %w", driverID, err)
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

	if ride.DriverID != driverUUID {
		return nil, fmt.Errorf("ride %s: %w", rideID, entity.ErrNotRideDriver)
	}

	return ride, nil
}

func paginatedRides(rides []*entity.Ride, req *request.PaginatedRequest, total int64) *response.PaginatedResponse[response.RideResponse] {
	rideResponses := make([]response.RideResponse, len(rides))
	for i, ride := range rides {
		rideResponses[i] = response.RideToResponse(ride)
	}
	return response.NewPaginatedResponse(rideResponses, req.Page, req.PerPage, total)
}
