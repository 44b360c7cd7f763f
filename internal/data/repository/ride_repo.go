package repository

import (
	"context"
	"fmt"
	"time"

	"campus-carpool/internal/data/entity"
	"campus-carpool/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// RideSearchFilter narrows FindActive results. Zero values mean "no filter".
type RideSearchFilter struct {
	Destination   string
	DepartureDate *time.Time
}

type RideRepository interface {
	Create(ctx context.Context, ride *entity.Ride) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Ride, error)
	FindActive(ctx context.Context, filter RideSearchFilter, limit, offset int) ([]*entity.Ride, error)
	CountActive(ctx context.Context, filter RideSearchFilter) (int64, error)
	FindByDriverID(ctx context.Context, driverID uuid.UUID, limit, offset int) ([]*entity.Ride, error)
	UpdateStatus(ctx context.Context, rideID uuid.UUID, status entity.RideStatus) error
	Deactivate(ctx context.Context, rideID uuid.UUID) error

	// Seat counter operations. These are the only writers of seats_available.
	GetSeats(ctx context.Context, rideID uuid.UUID) (available, total int, err error)
	ReserveSeats(ctx context.Context, rideID uuid.UUID, seats int) (bool, error)
	AdjustSeats(ctx context.Context, rideID uuid.UUID, delta int) (newAvailable int, clamped bool, err error)
}

type rideRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewRideRepository(db database.PgxIface, log *zap.Logger) RideRepository {
	return &rideRepository{
		db:  db,
		log: log.With(zap.String("repository", "ride")),
	}
}

const rideColumns = `id, driver_id, vehicle_id, source_lat, source_lng, source_address,
	       dest_lat, dest_lng, dest_address, departure_time, seats_total,
	       seats_available, cost_per_seat, is_active, status, created_at, updated_at`

func scanRide(row pgx.Row) (*entity.Ride, error) {
	var ride entity.Ride
	err := row.Scan(
		&ride.ID,
		&ride.DriverID,
		&ride.VehicleID,
		&ride.SourceLat,
		&ride.SourceLng,
		&ride.SourceAddress,
		&ride.DestLat,
		&ride.DestLng,
		&ride.DestAddress,
		&ride.DepartureTime,
		&ride.SeatsTotal,
		&ride.SeatsAvailable,
		&ride.CostPerSeat,
		&ride.IsActive,
		&ride.Status,
		&ride.CreatedAt,
		&ride.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ride, nil
}

func (r *rideRepository) Create(ctx context.Context, ride *entity.Ride) error {
	query := `
		INSERT INTO rides (id, driver_id, vehicle_id, source_lat, source_lng, source_address,
		                   dest_lat, dest_lng, dest_address, departure_time, seats_total,
		                   seats_available, cost_per_seat, is_active, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.db.Exec(ctx, query,
		ride.ID,
		ride.DriverID,
		ride.VehicleID,
		ride.SourceLat,
		ride.SourceLng,
		ride.SourceAddress,
		ride.DestLat,
		ride.DestLng,
		ride.DestAddress,
		ride.DepartureTime,
		ride.SeatsTotal,
		ride.SeatsAvailable,
		ride.CostPerSeat,
		ride.IsActive,
		ride.Status,
		ride.CreatedAt,
		ride.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create ride",
			zap.Error(err),
			zap.String("driver_id", ride.DriverID.String()),
		)
		return fmt.Errorf("create ride: %w", err)
	}

	return nil
}

func (r *rideRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find ride by ID",
			zap.Error(err),
			zap.String("ride_id", id.String()),
		)
		return nil, fmt.Errorf("find ride by ID %s: %w", id.String(), err)
	}

	return ride, nil
}

func (r *rideRepository) FindActive(ctx context.Context, filter RideSearchFilter, limit, offset int) ([]*entity.Ride, error) {
	query := `SELECT ` + rideColumns + `
		FROM rides
		WHERE is_active = TRUE AND status = 'scheduled'
		  AND ($1 = '' OR dest_address ILIKE '%' || $1 || '%')
		  AND ($2::date IS NULL OR departure_time::date = $2::date)
		ORDER BY departure_time
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(ctx, query, filter.Destination, filter.DepartureDate, limit, offset)
	if err != nil {
		r.log.Error("Failed to find active rides",
			zap.Error(err),
			zap.String("destination", filter.Destination),
		)
		return nil, fmt.Errorf("find active rides: %w", err)
	}
	defer rows.Close()

	var rides []*entity.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			r.log.Error("Failed to scan ride row", zap.Error(err))
			return nil, fmt.Errorf("scan ride row: %w", err)
		}
		rides = append(rides, ride)
	}

	return rides, nil
}

func (r *rideRepository) CountActive(ctx context.Context, filter RideSearchFilter) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM rides
		WHERE is_active = TRUE AND status = 'scheduled'
		  AND ($1 = '' OR dest_address ILIKE '%' || $1 || '%')
		  AND ($2::date IS NULL OR departure_time::date = $2::date)
	`

	var count int64
	err := r.db.QueryRow(ctx, query, filter.Destination, filter.DepartureDate).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count active rides", zap.Error(err))
		return 0, fmt.Errorf("count active rides: %w", err)
	}

	return count, nil
}

func (r *rideRepository) FindByDriverID(ctx context.Context, driverID uuid.UUID, limit, offset int) ([]*entity.Ride, error) {
	query := `SELECT ` + rideColumns + `
		FROM rides
		WHERE driver_id = $1
		ORDER BY departure_time DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, driverID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find rides by driver ID",
			zap.Error(err),
			zap.String("driver_id", driverID.String()),
		)
		return nil, fmt.Errorf("find rides by driver ID %s: %w", driverID.String(), err)
	}
	defer rows.Close()

	var rides []*entity.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			r.log.Error("Failed to scan ride row", zap.Error(err))
			return nil, fmt.Errorf("scan ride row: %w", err)
		}
		rides = append(rides, ride)
	}

	return rides, nil
}

func (r *rideRepository) UpdateStatus(ctx context.Context, rideID uuid.UUID, status entity.RideStatus) error {
	query := `UPDATE rides SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, rideID, status)
	if err != nil {
		r.log.Error("Failed to update ride status",
			zap.Error(err),
			zap.String("ride_id", rideID.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update ride %s status to %s: %w", rideID.String(), string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("ride %s: %w", rideID.String(), entity.ErrRideNotFound)
	}

	return nil
}

func (r *rideRepository) Deactivate(ctx context.Context, rideID uuid.UUID) error {
	query := `UPDATE rides SET is_active = FALSE, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, rideID)
	if err != nil {
		r.log.Error("Failed to deactivate ride",
			zap.Error(err),
			zap.String("ride_id", rideID.String()),
		)
		return fmt.Errorf("deactivate ride %s: %w", rideID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("ride %s: %w", rideID.String(), entity.ErrRideNotFound)
	}

	r.log.Info("Ride deactivated", zap.String("ride_id", rideID.String()))
	return nil
}

func (r *rideRepository) GetSeats(ctx context.Context, rideID uuid.UUID) (int, int, error) {
	query := `SELECT seats_available, seats_total FROM rides WHERE id = $1`

	var available, total int
	err := r.db.QueryRow(ctx, query, rideID).Scan(&available, &total)
	if err == pgx.ErrNoRows {
		return 0, 0, fmt.Errorf("ride %s: %w", rideID.String(), entity.ErrRideNotFound)
	}
	if err != nil {
		r.log.Error("Failed to get ride seats",
			zap.Error(err),
			zap.String("ride_id", rideID.String()),
		)
		return 0, 0, fmt.Errorf("get seats for ride %s: %w", rideID.String(), err)
	}

	return available, total, nil
}

// ReserveSeats decrements seats_available only when the ride is active and
// has enough seats. Returns false when the conditional update matched no
// row (insufficient seats or inactive ride).
func (r *rideRepository) ReserveSeats(ctx context.Context, rideID uuid.UUID, seats int) (bool, error) {
	query := `
		UPDATE rides
		SET seats_available = seats_available - $2, updated_at = NOW()
		WHERE id = $1 AND is_active = TRUE AND seats_available >= $2
	`

	result, err := r.db.Exec(ctx, query, rideID, seats)
	if err != nil {
		r.log.Error("Failed to reserve seats",
			zap.Error(err),
			zap.String("ride_id", rideID.String()),
			zap.Int("seats", seats),
		)
		return false, fmt.Errorf("reserve %d seats on ride %s: %w", seats, rideID.String(), err)
	}

	return result.RowsAffected() > 0, nil
}

// AdjustSeats applies seats_available += delta clamped to [0, seats_total].
// clamped=true means the raw result would have left the legal range, which
// indicates a defect in the caller's seat accounting.
func (r *rideRepository) AdjustSeats(ctx context.Context, rideID uuid.UUID, delta int) (int, bool, error) {
	query := `
		UPDATE rides r
		SET seats_available = LEAST(GREATEST(r.seats_available + $2, 0), r.seats_total),
		    updated_at = NOW()
		FROM (SELECT seats_available AS prev FROM rides WHERE id = $1 FOR UPDATE) old
		WHERE r.id = $1
		RETURNING r.seats_available, old.prev
	`

	var newAvailable, prev int
	err := r.db.QueryRow(ctx, query, rideID, delta).Scan(&newAvailable, &prev)
	if err == pgx.ErrNoRows {
		return 0, false, fmt.Errorf("ride %s: %w", rideID.String(), entity.ErrRideNotFound)
	}
	if err != nil {
		r.log.Error("Failed to adjust seats",
			zap.Error(err),
			zap.String("ride_id", rideID.String()),
			zap.Int("delta", delta),
		)
		return 0, false, fmt.Errorf("adjust seats on ride %s by %d: %w", rideID.String(), delta, err)
	}

	clamped := prev+delta != newAvailable
	return newAvailable, clamped, nil
}
