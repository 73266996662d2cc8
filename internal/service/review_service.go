package service

import (
	"context"

	"karigar/internal/domain"
	"karigar/internal/models"

	"github.com/rs/zerolog"
)

type ReviewService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewReviewService(repo domain.Repository, logger *zerolog.Logger) *ReviewService {
	return &ReviewService{
		repo:   repo,
		logger: logger,
	}
}

// AddReview records a customer's rating for a provider and refreshes the
// profile's average. Only customers with a completed booking may review.
func (s *ReviewService) AddReview(ctx context.Context, review *models.Review) error {
	if review.Rating < 1 || review.Rating > 5 {
		return ErrInvalidRating
	}

	bookings, err := s.repo.GetCustomerBookings(ctx, review.CustomerID)
	if err != nil {
		return err
	}
	completed := false
	for _, b := range bookings {
		if b.ServiceProfileID == review.ServiceProfileID && b.Status == models.StatusCompleted {
			completed = true
			break
		}
	}
	if !completed {
		return ErrReviewWithoutBooking
	}

	if err := s.repo.CreateReview(ctx, review); err != nil {
		return err
	}

	if err := s.refreshRating(ctx, review.ServiceProfileID); err != nil {
		s.logger.Warn().Err(err).
			Str("service_profile_id", review.ServiceProfileID).
			Msg("failed to refresh rating")
	}
	return nil
}

func (s *ReviewService) GetProfileReviews(ctx context.Context, serviceProfileID string) ([]*models.Review, error) {
	return s.repo.GetProfileReviews(ctx, serviceProfileID)
}

func (s *ReviewService) refreshRating(ctx context.Context, serviceProfileID string) error {
	reviews, err := s.repo.GetProfileReviews(ctx, serviceProfileID)
	if err != nil {
		return err
	}
	if len(reviews) == 0 {
		return nil
	}

	var sum int
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(reviews))
	return s.repo.UpdateServiceProfileRating(ctx, serviceProfileID, avg)
}
