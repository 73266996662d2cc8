package database

import (
	"context"
	"fmt"
	"time"

	"karigar/internal/models"
)

func (db *DB) CreateReview(ctx context.Context, review *models.Review) error {
	query := `INSERT INTO reviews (service_profile_id, customer_id, rating, comment, created_at)
              VALUES (?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		review.ServiceProfileID, review.CustomerID, review.Rating, review.Comment, now)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	review.ID = id
	review.CreatedAt = now
	return nil
}

func (db *DB) GetProfileReviews(ctx context.Context, serviceProfileID string) ([]*models.Review, error) {
	query := `SELECT id, service_profile_id, customer_id, rating, COALESCE(comment, ''), created_at
              FROM reviews WHERE service_profile_id = ? ORDER BY created_at DESC`
	rows, err := db.QueryContext(ctx, query, serviceProfileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		r := &models.Review{}
		err := rows.Scan(&r.ID, &r.ServiceProfileID, &r.CustomerID, &r.Rating, &r.Comment, &r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}
