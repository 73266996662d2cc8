package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"karigar/internal/database"
	"karigar/internal/events"
	"karigar/internal/models"
	"karigar/internal/repository"
)

type stubVerifier struct {
	verified bool
	reason   string
	err      error
}

func (v *stubVerifier) Verify(ctx context.Context, idNumber string) (bool, string, error) {
	return v.verified, v.reason, v.err
}

type fixture struct {
	db       *database.DB
	bus      *events.EventBus
	profiles *ProfileService
	bookings *BookingService
	reviews  *ReviewService
	avail    *AvailabilityService
	verifier *stubVerifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := zerolog.Nop()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cache := repository.NewMemorySlotCache(time.Minute)
	bus := events.NewEventBus()
	verifier := &stubVerifier{verified: true}

	avail := NewAvailabilityService(db, cache, &logger)
	return &fixture{
		db:       db,
		bus:      bus,
		profiles: NewProfileService(db, verifier, bus, nil, &logger),
		bookings: NewBookingService(db, avail, bus, models.DefaultMaxAdvanceDays, &logger),
		reviews:  NewReviewService(db, &logger),
		avail:    avail,
		verifier: verifier,
	}
}

// seed registers a verified customer plus a verified provider with one
// Electrician offering, returning the service profile id.
func (f *fixture) seed(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, f.profiles.RegisterProfile(ctx, &models.Profile{
		UserID: "cust-1", Name: "Asha", Role: models.RoleCustomer,
	}))
	require.NoError(t, f.db.SetProfileVerified(ctx, "cust-1", "hash", true))

	require.NoError(t, f.profiles.RegisterProfile(ctx, &models.Profile{
		UserID: "prov-1", Name: "Ravi", Role: models.RoleProvider,
	}))
	require.NoError(t, f.db.SetProfileVerified(ctx, "prov-1", "hash2", true))

	sp, err := f.profiles.CreateServiceProfile(ctx, "prov-1", "Electrician", "house wiring")
	require.NoError(t, err)
	return sp.ID
}

func bookingDate() time.Time {
	return time.Now().AddDate(0, 0, 3)
}

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	spID := f.seed(t)

	var created []*events.Event
	f.bus.Subscribe(events.EventBookingCreated, func(e *events.Event) error {
		created = append(created, e)
		return nil
	})

	booking, err := f.bookings.CreateBooking(ctx, CreateBookingRequest{
		CustomerID:       "cust-1",
		ServiceProfileID: spID,
		Date:             bookingDate(),
		TimeSlot:         "09:00–10:00",
		ServiceNote:      "fan not working",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, booking.ID)
	assert.Regexp(t, `^bk-[0-9a-f]{8}$`, booking.Code)
	assert.Equal(t, models.StatusPending, booking.Status)
	assert.Equal(t, "prov-1", booking.ProviderUserID)
	assert.Len(t, created, 1)

	// The same slot is rejected for a second customer.
	require.NoError(t, f.profiles.RegisterProfile(ctx, &models.Profile{
		UserID: "cust-2", Name: "Meena", Role: models.RoleCustomer,
	}))
	require.NoError(t, f.db.SetProfileVerified(ctx, "cust-2", "hash3", true))

	_, err = f.bookings.CreateBooking(ctx, CreateBookingRequest{
		CustomerID:       "cust-2",
		ServiceProfileID: spID,
		Date:             bookingDate(),
		TimeSlot:         "09:00–10:00",
	})
	assert.ErrorIs(t, err, database.ErrSlotTaken)
}

func TestCreateBookingValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	spID := f.seed(t)

	tests := []struct {
		name    string
		req     CreateBookingRequest
		wantErr error
	}{
		{
			name: "past date",
			req: CreateBookingRequest{
				CustomerID: "cust-1", ServiceProfileID: spID,
				Date: time.Now().AddDate(0, 0, -1), TimeSlot: "09:00–10:00",
			},
			wantErr: ErrPastDate,
		},
		{
			name: "beyond window",
			req: CreateBookingRequest{
				CustomerID: "cust-1", ServiceProfileID: spID,
				Date: time.Now().AddDate(0, 0, models.DefaultMaxAdvanceDays+1), TimeSlot: "09:00–10:00",
			},
			wantErr: ErrDateTooFar,
		},
		{
			name: "slot not offered",
			req: CreateBookingRequest{
				CustomerID: "cust-1", ServiceProfileID: spID,
				Date: bookingDate(), TimeSlot: "03:00–04:00",
			},
			wantErr: ErrSlotNotOffered,
		},
		{
			name: "unknown profile",
			req: CreateBookingRequest{
				CustomerID: "cust-1", ServiceProfileID: "missing",
				Date: bookingDate(), TimeSlot: "09:00–10:00",
			},
			wantErr: database.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.bookings.CreateBooking(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateBookingRequiresVerification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	spID := f.seed(t)

	require.NoError(t, f.profiles.RegisterProfile(ctx, &models.Profile{
		UserID: "cust-raw", Name: "New", Role: models.RoleCustomer,
	}))

	_, err := f.bookings.CreateBooking(ctx, CreateBookingRequest{
		CustomerID:       "cust-raw",
		ServiceProfileID: spID,
		Date:             bookingDate(),
		TimeSlot:         "09:00–10:00",
	})
	assert.ErrorIs(t, err, ErrUnverified)
}

func TestCreateBookingRespectsTemplate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	spID := f.seed(t)
	date := bookingDate()

	// Switch the target weekday off entirely.
	require.NoError(t, f.profiles.SetAvailability(ctx, &models.AvailabilityTemplate{
		ServiceProfileID: spID,
		DayOfWeek:        int(date.Weekday()),
		IsAvailable:      false,
	}))

	_, err := f.bookings.CreateBooking(ctx, CreateBookingRequest{
		CustomerID:       "cust-1",
		ServiceProfileID: spID,
		Date:             date,
		TimeSlot:         "09:00–10:00",
	})
	assert.ErrorIs(t, err, ErrDayUnavailable)

	// Narrow the day to afternoons; a morning slot is no longer offered.
	require.NoError(t, f.profiles.SetAvailability(ctx, &models.AvailabilityTemplate{
		ServiceProfileID:    spID,
		DayOfWeek:           int(date.Weekday()),
		IsAvailable:         true,
		StartHour:           14,
		EndHour:             18,
		SlotDurationMinutes: 60,
	}))

	_, err = f.bookings.CreateBooking(ctx, CreateBookingRequest{
		CustomerID:       "cust-1",
		ServiceProfileID: spID,
		Date:             date,
		TimeSlot:         "09:00–10:00",
	})
	assert.ErrorIs(t, err, ErrSlotNotOffered)

	_, err = f.bookings.CreateBooking(ctx, CreateBookingRequest{
		CustomerID:       "cust-1",
		ServiceProfileID: spID,
		Date:             date,
		TimeSlot:         "14:00–15:00",
	})
	assert.NoError(t, err)
}

func TestAvailableSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	spID := f.seed(t)
	date := bookingDate()

	free, err := f.avail.AvailableSlots(ctx, spID, date)
	require.NoError(t, err)
	assert.Len(t, free, 12)

	_, err = f.bookings.CreateBooking(ctx, CreateBookingRequest{
		CustomerID:       "cust-1",
		ServiceProfileID: spID,
		Date:             date,
		TimeSlot:         "09:00–10:00",
	})
	require.NoError(t, err)

	free, err = f.avail.AvailableSlots(ctx, spID, date)
	require.NoError(t, err)
	assert.Len(t, free, 11)
	assert.NotContains(t, free, "09:00–10:00")
}

func TestCancelBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	spID := f.seed(t)
	date := bookingDate()

	booking, err := f.bookings.CreateBooking(ctx, CreateBookingRequest{
		CustomerID:       "cust-1",
		ServiceProfileID: spID,
		Date:             date,
		TimeSlot:         "09:00–10:00",
	})
	require.NoError(t, err)

	err = f.bookings.CancelBooking(ctx, booking.ID, "cust-1", "")
	assert.ErrorIs(t, err, ErrEmptyCancellationReason)

	var cancelled int
	f.bus.Subscribe(events.EventBookingCancelled, func(e *events.Event) error {
		cancelled++
		return nil
	})

	require.NoError(t, f.bookings.CancelBooking(ctx, booking.ID, "cust-1", "plans changed"))
	assert.Equal(t, 1, cancelled)

	// The slot is free again.
	free, err := f.avail.AvailableSlots(ctx, spID, date)
	require.NoError(t, err)
	assert.Contains(t, free, "09:00–10:00")
}

func TestRescheduleBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	spID := f.seed(t)
	date := bookingDate()

	booking, err := f.bookings.CreateBooking(ctx, CreateBookingRequest{
		CustomerID:       "cust-1",
		ServiceProfileID: spID,
		Date:             date,
		TimeSlot:         "09:00–10:00",
	})
	require.NoError(t, err)

	require.NoError(t, f.bookings.AcceptBooking(ctx, booking.ID, "prov-1"))

	newDate := date.AddDate(0, 0, 1)
	require.NoError(t, f.bookings.RescheduleBooking(ctx, booking.ID, "cust-1", newDate, "11:00–12:00"))

	moved, err := f.bookings.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "11:00–12:00", moved.TimeSlot)
	assert.Equal(t, models.StatusPending, moved.Status)

	// Rescheduling onto another customer's active slot fails.
	require.NoError(t, f.profiles.RegisterProfile(ctx, &models.Profile{
		UserID: "cust-2", Name: "Meena", Role: models.RoleCustomer,
	}))
	require.NoError(t, f.db.SetProfileVerified(ctx, "cust-2", "h", true))
	_, err = f.bookings.CreateBooking(ctx, CreateBookingRequest{
		CustomerID:       "cust-2",
		ServiceProfileID: spID,
		Date:             newDate,
		TimeSlot:         "12:00–13:00",
	})
	require.NoError(t, err)

	err = f.bookings.RescheduleBooking(ctx, booking.ID, "cust-1", newDate, "12:00–13:00")
	assert.ErrorIs(t, err, database.ErrSlotTaken)
}

func TestProviderLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	spID := f.seed(t)

	booking, err := f.bookings.CreateBooking(ctx, CreateBookingRequest{
		CustomerID:       "cust-1",
		ServiceProfileID: spID,
		Date:             bookingDate(),
		TimeSlot:         "09:00–10:00",
	})
	require.NoError(t, err)

	// Completing before confirming is rejected.
	err = f.bookings.CompleteBooking(ctx, booking.ID, "prov-1")
	assert.ErrorIs(t, err, database.ErrInvalidTransition)

	require.NoError(t, f.bookings.AcceptBooking(ctx, booking.ID, "prov-1"))
	require.NoError(t, f.bookings.CompleteBooking(ctx, booking.ID, "prov-1"))

	done, err := f.bookings.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)
}

func TestDeclineBookingFreesSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	spID := f.seed(t)
	date := bookingDate()

	booking, err := f.bookings.CreateBooking(ctx, CreateBookingRequest{
		CustomerID:       "cust-1",
		ServiceProfileID: spID,
		Date:             date,
		TimeSlot:         "09:00–10:00",
	})
	require.NoError(t, err)

	require.NoError(t, f.bookings.DeclineBooking(ctx, booking.ID, "prov-1"))

	free, err := f.avail.AvailableSlots(ctx, spID, date)
	require.NoError(t, err)
	assert.Contains(t, free, "09:00–10:00")
}

// Declining is only open to pending bookings; once confirmed, the provider
// must cancel or complete instead.
func TestDeclineConfirmedBookingRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	spID := f.seed(t)

	booking, err := f.bookings.CreateBooking(ctx, CreateBookingRequest{
		CustomerID:       "cust-1",
		ServiceProfileID: spID,
		Date:             bookingDate(),
		TimeSlot:         "09:00–10:00",
	})
	require.NoError(t, err)
	require.NoError(t, f.bookings.AcceptBooking(ctx, booking.ID, "prov-1"))

	err = f.bookings.DeclineBooking(ctx, booking.ID, "prov-1")
	assert.ErrorIs(t, err, database.ErrInvalidTransition)

	got, err := f.bookings.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)
}

func TestVerifyProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.profiles.RegisterProfile(ctx, &models.Profile{
		UserID: "u1", Name: "Asha", Role: models.RoleCustomer,
	}))

	verified, _, err := f.profiles.VerifyProfile(ctx, "u1", "1234-5678-9012")
	require.NoError(t, err)
	assert.True(t, verified)

	p, err := f.profiles.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, p.Verified)
	assert.Len(t, p.IDHash, 64)

	f.verifier.verified = false
	f.verifier.reason = "not found"

	verified, reason, err := f.profiles.VerifyProfile(ctx, "u1", "0000")
	require.NoError(t, err)
	assert.False(t, verified)
	assert.Equal(t, "not found", reason)

	p, err = f.profiles.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, p.Verified)
}

func TestCreateServiceProfileValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t)

	_, err := f.profiles.CreateServiceProfile(ctx, "prov-1", "Astrologer", "")
	assert.ErrorIs(t, err, ErrInvalidServiceType)

	// Customers cannot publish offerings.
	_, err = f.profiles.CreateServiceProfile(ctx, "cust-1", "Electrician", "")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestSetAvailabilityValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	spID := f.seed(t)

	bad := []*models.AvailabilityTemplate{
		{ServiceProfileID: spID, DayOfWeek: 7, IsAvailable: true, StartHour: 9, EndHour: 17, SlotDurationMinutes: 60},
		{ServiceProfileID: spID, DayOfWeek: 1, IsAvailable: true, StartHour: 17, EndHour: 9, SlotDurationMinutes: 60},
		{ServiceProfileID: spID, DayOfWeek: 1, IsAvailable: true, StartHour: 9, EndHour: 17, SlotDurationMinutes: 0},
	}
	for _, tpl := range bad {
		assert.ErrorIs(t, f.profiles.SetAvailability(ctx, tpl), ErrInvalidSchedule)
	}

	err := f.profiles.SetAvailability(ctx, &models.AvailabilityTemplate{
		ServiceProfileID: "missing", DayOfWeek: 1, IsAvailable: true,
		StartHour: 9, EndHour: 17, SlotDurationMinutes: 60,
	})
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestReviews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	spID := f.seed(t)

	review := &models.Review{ServiceProfileID: spID, CustomerID: "cust-1", Rating: 5, Comment: "great"}

	assert.ErrorIs(t, f.reviews.AddReview(ctx, &models.Review{
		ServiceProfileID: spID, CustomerID: "cust-1", Rating: 6,
	}), ErrInvalidRating)

	// No completed booking yet.
	assert.ErrorIs(t, f.reviews.AddReview(ctx, review), ErrReviewWithoutBooking)

	booking, err := f.bookings.CreateBooking(ctx, CreateBookingRequest{
		CustomerID:       "cust-1",
		ServiceProfileID: spID,
		Date:             bookingDate(),
		TimeSlot:         "09:00–10:00",
	})
	require.NoError(t, err)
	require.NoError(t, f.bookings.AcceptBooking(ctx, booking.ID, "prov-1"))
	require.NoError(t, f.bookings.CompleteBooking(ctx, booking.ID, "prov-1"))

	require.NoError(t, f.reviews.AddReview(ctx, review))

	sp, err := f.profiles.GetServiceProfile(ctx, spID)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, sp.Rating, 0.001)
}
