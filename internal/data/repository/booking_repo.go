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

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByRideID(ctx context.Context, rideID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByRideID(ctx context.Context, rideID uuid.UUID) (int64, error)
	FindByPassengerID(ctx context.Context, passengerID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByPassengerID(ctx context.Context, passengerID uuid.UUID) (int64, error)
	FindPendingByRideID(ctx context.Context, rideID uuid.UUID) ([]*entity.Booking, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateStatus is a compare-and-swap on status: the row is only written
	// when its current status equals from. Returns false when no row matched.
	UpdateStatus(ctx context.Context, bookingID uuid.UUID, from, to entity.BookingStatus) (bool, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, ride_id, passenger_id, seats_booked, status, created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.RideID,
		&booking.PassengerID,
		&booking.SeatsBooked,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, ride_id, passenger_id, seats_booked, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.RideID,
		booking.PassengerID,
		booking.SeatsBooked,
		booking.Status,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("ride_id", booking.RideID.String()),
			zap.String("passenger_id", booking.PassengerID.String()),
		)
		return fmt.Errorf("create booking on ride %s: %w", booking.RideID.String(), err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByRideID(ctx context.Context, rideID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE ride_id = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`

	return r.queryBookings(ctx, query, "ride_id", rideID, limit, offset)
}

func (r *bookingRepository) CountByRideID(ctx context.Context, rideID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE ride_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, rideID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by ride ID",
			zap.Error(err),
			zap.String("ride_id", rideID.String()),
		)
		return 0, fmt.Errorf("count bookings by ride ID %s: %w", rideID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) FindByPassengerID(ctx context.Context, passengerID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE passenger_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryBookings(ctx, query, "passenger_id", passengerID, limit, offset)
}

func (r *bookingRepository) CountByPassengerID(ctx context.Context, passengerID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE passenger_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, passengerID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by passenger ID",
			zap.Error(err),
			zap.String("passenger_id", passengerID.String()),
		)
		return 0, fmt.Errorf("count bookings by passenger ID %s: %w", passengerID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) FindPendingByRideID(ctx context.Context, rideID uuid.UUID) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE ride_id = $1 AND status = 'pending'
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, rideID)
	if err != nil {
		r.log.Error("Failed to find pending bookings by ride ID",
			zap.Error(err),
			zap.String("ride_id", rideID.String()),
		)
		return nil, fmt.Errorf("find pending bookings by ride ID %s: %w", rideID.String(), err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM bookings WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return fmt.Errorf("delete booking %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s: %w", id.String(), entity.ErrBookingNotFound)
	}

	r.log.Info("Booking deleted", zap.String("booking_id", id.String()))
	return nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, bookingID uuid.UUID, from, to entity.BookingStatus) (bool, error) {
	query := `UPDATE bookings SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`

	result, err := r.db.Exec(ctx, query, bookingID, from, to)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		return false, fmt.Errorf("update booking %s status %s -> %s: %w",
			bookingID.String(), string(from), string(to), err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *bookingRepository) queryBookings(ctx context.Context, query, field string, id uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	rows, err := r.db.Query(ctx, query, id, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings",
			zap.Error(err),
			zap.String(field, id.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find bookings by %s %s: %w", field, id.String(), err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}
