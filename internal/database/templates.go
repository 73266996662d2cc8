package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"karigar/internal/models"
)

// UpsertAvailabilityTemplate stores a provider's working hours for one
// weekday, replacing any previous row for the same (profile, weekday) pair.
func (db *DB) UpsertAvailabilityTemplate(ctx context.Context, tpl *models.AvailabilityTemplate) error {
	query := `INSERT INTO availability_templates
                  (service_profile_id, day_of_week, is_available, start_hour, end_hour, slot_duration_minutes)
              VALUES (?, ?, ?, ?, ?, ?)
              ON CONFLICT(service_profile_id, day_of_week) DO UPDATE SET
                  is_available = excluded.is_available,
                  start_hour = excluded.start_hour,
                  end_hour = excluded.end_hour,
                  slot_duration_minutes = excluded.slot_duration_minutes`
	_, err := db.ExecContext(ctx, query,
		tpl.ServiceProfileID, tpl.DayOfWeek, tpl.IsAvailable,
		tpl.StartHour, tpl.EndHour, tpl.SlotDurationMinutes)
	if err != nil {
		return fmt.Errorf("failed to upsert availability template: %w", err)
	}
	return nil
}

func (db *DB) GetAvailabilityTemplate(ctx context.Context, serviceProfileID string, dayOfWeek int) (*models.AvailabilityTemplate, error) {
	query := `SELECT id, service_profile_id, day_of_week, is_available, start_hour, end_hour, slot_duration_minutes
              FROM availability_templates WHERE service_profile_id = ? AND day_of_week = ?`
	tpl := &models.AvailabilityTemplate{}
	err := db.QueryRowContext(ctx, query, serviceProfileID, dayOfWeek).Scan(
		&tpl.ID, &tpl.ServiceProfileID, &tpl.DayOfWeek, &tpl.IsAvailable,
		&tpl.StartHour, &tpl.EndHour, &tpl.SlotDurationMinutes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get availability template: %w", err)
	}
	return tpl, nil
}
