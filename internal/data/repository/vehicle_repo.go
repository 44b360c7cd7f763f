package repository

import (
	"context"
	"fmt"

	"campus-carpool/internal/data/entity"
	"campus-carpool/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *entity.Vehicle) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Vehicle, error)
	FindByDriverID(ctx context.Context, driverID uuid.UUID) ([]*entity.Vehicle, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type vehicleRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewVehicleRepository(db database.PgxIface, log *zap.Logger) VehicleRepository {
	return &vehicleRepository{
		db:  db,
		log: log.With(zap.String("repository", "vehicle")),
	}
}

const vehicleColumns = `id, driver_id, model, plate_number, color, seat_capacity, created_at, updated_at`

func scanVehicle(row pgx.Row) (*entity.Vehicle, error) {
	var vehicle entity.Vehicle
	err := row.Scan(
		&vehicle.ID,
		&vehicle.DriverID,
		&vehicle.Model,
		&vehicle.PlateNumber,
		&vehicle.Color,
		&vehicle.SeatCapacity,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *entity.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, driver_id, model, plate_number, color, seat_capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		vehicle.ID,
		vehicle.DriverID,
		vehicle.Model,
		vehicle.PlateNumber,
		vehicle.Color,
		vehicle.SeatCapacity,
		vehicle.CreatedAt,
		vehicle.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create vehicle",
			zap.Error(err),
			zap.String("driver_id", vehicle.DriverID.String()),
			zap.String("plate_number", vehicle.PlateNumber),
		)
		return fmt.Errorf("create vehicle %s: %w", vehicle.PlateNumber, err)
	}

	return nil
}

func (r *vehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`

	vehicle, err := scanVehicle(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find vehicle by ID",
			zap.Error(err),
			zap.String("vehicle_id", id.String()),
		)
		return nil, fmt.Errorf("find vehicle by ID %s: %w", id.String(), err)
	}

	return vehicle, nil
}

func (r *vehicleRepository) FindByDriverID(ctx context.Context, driverID uuid.UUID) ([]*entity.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE driver_id = $1 ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, driverID)
	if err != nil {
		r.log.Error("Failed to find vehicles by driver ID",
			zap.Error(err),
			zap.String("driver_id", driverID.String()),
		)
		return nil, fmt.Errorf("find vehicles by driver ID %s: %w", driverID.String(), err)
	}
	defer rows.Close()

	var vehicles []*entity.Vehicle
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			r.log.Error("Failed to scan vehicle row", zap.Error(err))
			return nil, fmt.Errorf("scan vehicle row: %w", err)
		}
		vehicles = append(vehicles, vehicle)
	}

	return vehicles, nil
}

func (r *vehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM vehicles WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete vehicle",
			zap.Error(err),
			zap.String("vehicle_id", id.String()),
		)
		return fmt.Errorf("delete vehicle %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("vehicle %s not found", id.String())
	}

	return nil
}
