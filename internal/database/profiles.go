package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"karigar/internal/models"
)

func (db *DB) CreateOrUpdateProfile(ctx context.Context, profile *models.Profile) error {
	query := `INSERT INTO profiles (user_id, name, role, contact, city, area, verified, id_hash, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
              ON CONFLICT(user_id) DO UPDATE SET
                  name = excluded.name,
                  contact = COALESCE(NULLIF(excluded.contact, ''), contact),
                  city = COALESCE(NULLIF(excluded.city, ''), city),
                  area = COALESCE(NULLIF(excluded.area, ''), area),
                  updated_at = excluded.updated_at`
	now := time.Now()
	_, err := db.ExecContext(ctx, query,
		profile.UserID, profile.Name, profile.Role, profile.Contact,
		profile.City, profile.Area, profile.Verified, profile.IDHash, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

func (db *DB) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	query := `SELECT user_id, name, role, COALESCE(contact, ''), COALESCE(city, ''),
                     COALESCE(area, ''), verified, COALESCE(id_hash, ''), created_at, updated_at
              FROM profiles WHERE user_id = ?`
	p := &models.Profile{}
	err := db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &p.Name, &p.Role, &p.Contact, &p.City,
		&p.Area, &p.Verified, &p.IDHash, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// SetProfileVerified records the outcome of an identity verification. Only
// the SHA-256 hash of the id number is stored, never the number itself.
func (db *DB) SetProfileVerified(ctx context.Context, userID, idHash string, verified bool) error {
	query := `UPDATE profiles SET verified = ?, id_hash = ?, updated_at = ? WHERE user_id = ?`
	result, err := db.ExecContext(ctx, query, verified, idHash, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to set profile verified: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) CreateServiceProfile(ctx context.Context, sp *models.ServiceProfile) error {
	query := `INSERT INTO service_profiles (id, user_id, service_type, bio, rating, available, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	_, err := db.ExecContext(ctx, query,
		sp.ID, sp.UserID, sp.ServiceType, sp.Bio, sp.Rating, sp.Available, now)
	if err != nil {
		return fmt.Errorf("failed to create service profile: %w", err)
	}
	sp.CreatedAt = now
	return nil
}

func (db *DB) GetServiceProfile(ctx context.Context, id string) (*models.ServiceProfile, error) {
	query := `SELECT id, user_id, service_type, COALESCE(bio, ''), rating, available, created_at
              FROM service_profiles WHERE id = ?`
	sp := &models.ServiceProfile{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&sp.ID, &sp.UserID, &sp.ServiceType, &sp.Bio, &sp.Rating, &sp.Available, &sp.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service profile: %w", err)
	}
	return sp, nil
}

// UpdateServiceProfileRating stores the recomputed average rating.
func (db *DB) UpdateServiceProfileRating(ctx context.Context, id string, rating float64) error {
	result, err := db.ExecContext(ctx, `UPDATE service_profiles SET rating = ? WHERE id = ?`, rating, id)
	if err != nil {
		return fmt.Errorf("failed to update service profile rating: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListServiceProfiles returns available provider offerings, optionally
// filtered by service type, best rated first.
func (db *DB) ListServiceProfiles(ctx context.Context, serviceType string) ([]*models.ServiceProfile, error) {
	query := `SELECT id, user_id, service_type, COALESCE(bio, ''), rating, available, created_at
              FROM service_profiles WHERE available = 1`
	args := []any{}
	if serviceType != "" {
		query += ` AND service_type = ?`
		args = append(args, serviceType)
	}
	query += ` ORDER BY rating DESC, created_at ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list service profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*models.ServiceProfile
	for rows.Next() {
		sp := &models.ServiceProfile{}
		err := rows.Scan(&sp.ID, &sp.UserID, &sp.ServiceType, &sp.Bio, &sp.Rating, &sp.Available, &sp.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service profile: %w", err)
		}
		profiles = append(profiles, sp)
	}
	return profiles, rows.Err()
}
