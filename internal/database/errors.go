package database

import (
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrSlotTaken the targeted slot is occupied by an active booking.
	ErrSlotTaken = errors.New("time slot is already booked")

	// ErrNotFound the referenced row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidTransition the booking's current status does not permit the
	// requested operation.
	ErrInvalidTransition = errors.New("status transition not allowed")

	// ErrCodeCollision the generated booking code is already in use.
	ErrCodeCollision = errors.New("booking code already in use")
)

// mapBookingWriteError translates SQLite unique violations on the bookings
// table into domain sentinels. The active-slot index and the booking_code
// constraint are told apart by the violated column set.
func mapBookingWriteError(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	if sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique &&
		sqliteErr.ExtendedCode != sqlite3.ErrConstraintPrimaryKey {
		return err
	}

	// Anything else, like a duplicate primary key, surfaces untranslated.
	msg := sqliteErr.Error()
	switch {
	case strings.Contains(msg, "bookings.booking_code"):
		return ErrCodeCollision
	case strings.Contains(msg, "bookings.service_profile_id"):
		return ErrSlotTaken
	}
	return err
}
