package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"karigar/internal/models"
)

const bookingColumns = `id, booking_code, customer_id, provider_user_id, service_profile_id,
                 booking_date, time_slot, status, COALESCE(service_note, ''),
                 COALESCE(cancellation_reason, ''), created_at, updated_at`

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (
				id, booking_code, customer_id, provider_user_id, service_profile_id,
				booking_date, time_slot, status, service_note, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	_, err := db.ExecContext(ctx, query,
		booking.ID,
		booking.Code,
		booking.CustomerID,
		booking.ProviderUserID,
		booking.ServiceProfileID,
		booking.Date.Format("2006-01-02"),
		booking.TimeSlot,
		booking.Status,
		booking.ServiceNote,
		now,
		now,
	)
	if err != nil {
		if mapped := mapBookingWriteError(err); errors.Is(mapped, ErrSlotTaken) || errors.Is(mapped, ErrCodeCollision) {
			return mapped
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	return db.scanBooking(db.QueryRowContext(ctx, query, id))
}

// GetBookingByCode looks up a booking by its human-readable code,
// case-insensitively (the column collates NOCASE).
func (db *DB) GetBookingByCode(ctx context.Context, code string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_code = ?`
	return db.scanBooking(db.QueryRowContext(ctx, query, code))
}

// OccupiedSlots returns the slot labels held by active bookings for the
// profile and date. Completed and cancelled bookings do not occupy slots.
func (db *DB) OccupiedSlots(ctx context.Context, serviceProfileID string, date time.Time) ([]string, error) {
	query := `SELECT time_slot FROM bookings
              WHERE service_profile_id = ? AND booking_date = ? AND status IN (?, ?)
              ORDER BY time_slot`
	rows, err := db.QueryContext(ctx, query,
		serviceProfileID, date.Format("2006-01-02"),
		models.StatusPending, models.StatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to get occupied slots: %w", err)
	}
	defer rows.Close()

	var taken []string
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		taken = append(taken, slot)
	}
	return taken, rows.Err()
}

// CancelBooking sets an active booking to cancelled with the customer's
// reason. Only the owning customer may cancel, and only from an active
// status; both conditions live in the WHERE clause so the check and the
// write are one statement.
func (db *DB) CancelBooking(ctx context.Context, id, customerID, reason string) error {
	query := `UPDATE bookings SET status = ?, cancellation_reason = ?, updated_at = ?
              WHERE id = ? AND customer_id = ? AND status IN (?, ?)`
	result, err := db.ExecContext(ctx, query,
		models.StatusCancelled, reason, time.Now(),
		id, customerID, models.StatusPending, models.StatusConfirmed)
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	return db.resolveNoRows(ctx, result, id)
}

// RescheduleBooking moves an active booking to a new date and slot and
// resets it to pending. The row moves rather than duplicates, so the
// active-slot unique index excludes the booking's own occupancy and rejects
// any other active holder of the target triple.
func (db *DB) RescheduleBooking(ctx context.Context, id, customerID string, date time.Time, slot string) error {
	query := `UPDATE bookings SET booking_date = ?, time_slot = ?, status = ?, updated_at = ?
              WHERE id = ? AND customer_id = ? AND status IN (?, ?)`
	result, err := db.ExecContext(ctx, query,
		date.Format("2006-01-02"), slot, models.StatusPending, time.Now(),
		id, customerID, models.StatusPending, models.StatusConfirmed)
	if err != nil {
		if mapped := mapBookingWriteError(err); errors.Is(mapped, ErrSlotTaken) {
			return mapped
		}
		return fmt.Errorf("failed to reschedule booking: %w", err)
	}
	return db.resolveNoRows(ctx, result, id)
}

// TransitionBookingStatus performs a provider-side status change. The
// source status and owning provider are part of the WHERE clause, making
// the transition check atomic with the write.
func (db *DB) TransitionBookingStatus(ctx context.Context, id, providerUserID, from, to string) error {
	if !models.CanTransition(from, to) {
		return ErrInvalidTransition
	}

	query := `UPDATE bookings SET status = ?, updated_at = ?
              WHERE id = ? AND provider_user_id = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, to, time.Now(), id, providerUserID, from)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return db.resolveNoRows(ctx, result, id)
}

func (db *DB) GetCustomerBookings(ctx context.Context, customerID string) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE customer_id = ? ORDER BY booking_date DESC, time_slot DESC`
	return db.queryBookings(ctx, query, customerID)
}

func (db *DB) GetProviderBookings(ctx context.Context, providerUserID string) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE provider_user_id = ? ORDER BY booking_date DESC, time_slot DESC`
	return db.queryBookings(ctx, query, providerUserID)
}

// resolveNoRows distinguishes "booking does not exist" from "exists but the
// WHERE guard rejected the write" after a zero-row UPDATE.
func (db *DB) resolveNoRows(ctx context.Context, result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	if _, err := db.GetBooking(ctx, id); err != nil {
		return err
	}
	return ErrInvalidTransition
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (db *DB) scanBooking(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	var dateStr string
	err := row.Scan(
		&b.ID, &b.Code, &b.CustomerID, &b.ProviderUserID, &b.ServiceProfileID,
		&dateStr, &b.TimeSlot, &b.Status, &b.ServiceNote,
		&b.CancellationReason, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}

	b.Date, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse booking date %s: %w", dateStr, err)
	}
	return b, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := db.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
