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

type VehicleService interface {
	CreateVehicle(ctx context.Context, driverID string, req *request.CreateVehicleRequest) (*response.VehicleResponse, error)
	ListForDriver(ctx context.Context, driverID string) ([]response.VehicleResponse, error)
	DeleteVehicle(ctx context.Context, driverID, vehicleID string) error
}

type vehicleService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewVehicleService(repo *repository.Repository, log *zap.Logger) VehicleService {
	return &vehicleService{
		repo: repo,
		log:  log.With(zap.String("service", "vehicle")),
	}
}

func (s *vehicleService) CreateVehicle(ctx context.Context, driverID string, req *request.CreateVehicleRequest) (*response.VehicleResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create vehicle validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	driverUUID, err := uuid.Parse(driverID)
	if err != nil {
		return nil, fmt.Errorf("invalid driver ID format %s: %w", driverID, err)
	}

	user, err := s.repo.User.FindByID(ctx, driverUUID)
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s not found", driverID)
	}

	now := time.Now()
	vehicle := &entity.Vehicle{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		DriverID:     driverUUID,
		Model:        req.Model,
		PlateNumber:  req.PlateNumber,
		Color:        req.Color,
		SeatCapacity: req.SeatCapacity,
	}

	if err := s.repo.Vehicle.Create(ctx, vehicle); err != nil {
		s.log.Error("Failed to create vehicle",
			zap.Error(err),
			zap.String("driver_id", driverID),
		)
		return nil, fmt.Errorf("create vehicle: %w", err)
	}

	// Adding a vehicle makes the user a driver.
	if user.Role != entity.RoleDriver {
		user.Role = entity.RoleDriver
		user.UpdatedAt = now
		if err := s.repo.User.Update(ctx, user); err != nil {
			s.log.Warn("Failed to promote user to driver",
				zap.Error(err),
				zap.String("user_id", driverID),
			)
		}
	}

	s.log.Info("Vehicle created",
		zap.String("vehicle_id", vehicle.ID.String()),
		zap.String("driver_id", driverID),
		zap.String("plate_number", vehicle.PlateNumber),
	)

	resp := response.VehicleToResponse(vehicle)
	return &resp, nil
}

func (s *vehicleService) ListForDriver(ctx context.Context, driverID string) ([]response.VehicleResponse, error) {
	driverUUID, err := uuid.Parse(driverID)
	if err != nil {
		return nil, fmt.Errorf("invalid driver ID format %s: %w", driverID, err)
	}

	vehicles, err := s.repo.Vehicle.FindByDriverID(ctx, driverUUID)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}

	vehicleResponses := make([]response.VehicleResponse, len(vehicles))
	for i, vehicle := range vehicles {
		vehicleResponses[i] = response.VehicleToResponse(vehicle)
	}

	return vehicleResponses, nil
}

func (s *vehicleService) DeleteVehicle(ctx context.Context, driverID, vehicleID string) error {
	driverUUID, err := uuid.Parse(driverID)
	if err != nil {
		return fmt.Errorf("invalid driver ID format %s: %w", driverID, err)
	}

	id, err := uuid.Parse(vehicleID)
	if err != nil {
		return fmt.Errorf("invalid vehicle ID format %s: %w", vehicleID, err)
	}

	vehicle, err := s.repo.Vehicle.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("look up vehicle: %w", err)
	}
	if vehicle == nil {
		return fmt.Errorf("vehicle %s not found", vehicleID)
	}

	if vehicle.DriverID != driverUUID {
		return fmt.Errorf("vehicle %s: %w", vehicleID, entity.ErrNotRideDriver)
	}

	if err := s.repo.Vehicle.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("Vehicle deleted",
		zap.String("vehicle_id", vehicleID),
		zap.String("driver_id", driverID),
	)

	return nil
}
