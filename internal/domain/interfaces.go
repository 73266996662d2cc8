package domain

import (
	"context"
	"time"

	"karigar/internal/models"
)

type Repository interface {
	CreateOrUpdateProfile(ctx context.Context, profile *models.Profile) error
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	SetProfileVerified(ctx context.Context, userID, idHash string, verified bool) error
	CreateServiceProfile(ctx context.Context, sp *models.ServiceProfile) error
	GetServiceProfile(ctx context.Context, id string) (*models.ServiceProfile, error)
	ListServiceProfiles(ctx context.Context, serviceType string) ([]*models.ServiceProfile, error)
	UpdateServiceProfileRating(ctx context.Context, id string, rating float64) error
	UpsertAvailabilityTemplate(ctx context.Context, tpl *models.AvailabilityTemplate) error
	GetAvailabilityTemplate(ctx context.Context, serviceProfileID string, dayOfWeek int) (*models.AvailabilityTemplate, error)
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	GetBookingByCode(ctx context.Context, code string) (*models.Booking, error)
	OccupiedSlots(ctx context.Context, serviceProfileID string, date time.Time) ([]string, error)
	CancelBooking(ctx context.Context, id, customerID, reason string) error
	RescheduleBooking(ctx context.Context, id, customerID string, date time.Time, slot string) error
	TransitionBookingStatus(ctx context.Context, id, providerUserID, from, to string) error
	GetCustomerBookings(ctx context.Context, customerID string) ([]*models.Booking, error)
	GetProviderBookings(ctx context.Context, providerUserID string) ([]*models.Booking, error)
	CreateReview(ctx context.Context, review *models.Review) error
	GetProfileReviews(ctx context.Context, serviceProfileID string) ([]*models.Review, error)
}

// SlotCache keeps short-lived copies of per-day occupied slot lists. A miss
// is (nil, false, nil); an empty day that was cached is ([], true, nil).
type SlotCache interface {
	GetOccupied(ctx context.Context, serviceProfileID, date string) ([]string, bool, error)
	SetOccupied(ctx context.Context, serviceProfileID, date string, slots []string) error
	Invalidate(ctx context.Context, serviceProfileID, date string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Verifier checks a government id number against an external identity
// service and reports the outcome.
type Verifier interface {
	Verify(ctx context.Context, idNumber string) (bool, string, error)
}
