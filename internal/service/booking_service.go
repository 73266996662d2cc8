package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"karigar/internal/database"
	"karigar/internal/domain"
	"karigar/internal/events"
	"karigar/internal/metrics"
	"karigar/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type BookingService struct {
	repo           domain.Repository
	availability   *AvailabilityService
	eventBus       domain.EventPublisher
	maxAdvanceDays int
	logger         *zerolog.Logger
}

type CreateBookingRequest struct {
	CustomerID       string
	ServiceProfileID string
	Date             time.Time
	TimeSlot         string
	ServiceNote      string
}

func NewBookingService(repo domain.Repository, availability *AvailabilityService, eventBus domain.EventPublisher, maxAdvanceDays int, logger *zerolog.Logger) *BookingService {
	if maxAdvanceDays <= 0 {
		maxAdvanceDays = models.DefaultMaxAdvanceDays
	}
	return &BookingService{
		repo:           repo,
		availability:   availability,
		eventBus:       eventBus,
		maxAdvanceDays: maxAdvanceDays,
		logger:         logger,
	}
}

// ValidateBookingDate enforces the booking window at day precision.
func (s *BookingService) ValidateBookingDate(date time.Time) error {
	today := time.Now().Format("2006-01-02")
	target := date.Format("2006-01-02")

	if target < today {
		return ErrPastDate
	}

	maxDate := time.Now().AddDate(0, 0, s.maxAdvanceDays).Format("2006-01-02")
	if target > maxDate {
		return ErrDateTooFar
	}
	return nil
}

// CreateBooking books a slot for a verified customer. The occupancy
// pre-check is advisory; the unique index on active bookings is what
// actually decides races.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*models.Booking, error) {
	if err := s.ValidateBookingDate(req.Date); err != nil {
		return nil, err
	}
	if len(req.ServiceNote) > models.MaxServiceNoteLength {
		return nil, ErrNoteTooLong
	}

	customer, err := s.repo.GetProfile(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !customer.Verified {
		return nil, ErrUnverified
	}

	sp, err := s.repo.GetServiceProfile(ctx, req.ServiceProfileID)
	if err != nil {
		return nil, err
	}
	if !sp.Available {
		return nil, ErrProviderUnavailable
	}

	// Unverified providers may not take bookings either.
	provider, err := s.repo.GetProfile(ctx, sp.UserID)
	if err != nil {
		return nil, err
	}
	if !provider.Verified {
		return nil, ErrUnverified
	}

	offered, err := s.availability.DaySlots(ctx, req.ServiceProfileID, req.Date)
	if err != nil {
		return nil, err
	}
	if len(offered) == 0 {
		return nil, ErrDayUnavailable
	}
	if !containsSlot(offered, req.TimeSlot) {
		return nil, ErrSlotNotOffered
	}

	taken, err := s.availability.OccupiedSlots(ctx, req.ServiceProfileID, req.Date)
	if err == nil && containsSlot(taken, req.TimeSlot) {
		metrics.IncSlotConflict()
		return nil, database.ErrSlotTaken
	}

	booking := &models.Booking{
		ID:               uuid.NewString(),
		CustomerID:       req.CustomerID,
		ProviderUserID:   sp.UserID,
		ServiceProfileID: req.ServiceProfileID,
		Date:             req.Date,
		TimeSlot:         req.TimeSlot,
		Status:           models.StatusPending,
		ServiceNote:      req.ServiceNote,
	}

	for attempt := 0; attempt < models.BookingCodeAttempts; attempt++ {
		booking.Code = newBookingCode()
		err = s.repo.CreateBooking(ctx, booking)
		if !errors.Is(err, database.ErrCodeCollision) {
			break
		}
	}
	if err != nil {
		if errors.Is(err, database.ErrSlotTaken) {
			metrics.IncSlotConflict()
		}
		return nil, err
	}

	metrics.IncBookingCreated()
	s.availability.InvalidateOccupancy(ctx, req.ServiceProfileID, req.Date)
	s.publishEvent(events.EventBookingCreated, booking, "")

	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("booking_code", booking.Code).
		Str("service_profile_id", booking.ServiceProfileID).
		Str("time_slot", booking.TimeSlot).
		Msg("booking created")

	return booking, nil
}

// CancelBooking is the customer-side cancellation. A reason is mandatory.
func (s *BookingService) CancelBooking(ctx context.Context, id, customerID, reason string) error {
	if reason == "" {
		return ErrEmptyCancellationReason
	}

	if err := s.repo.CancelBooking(ctx, id, customerID, reason); err != nil {
		return err
	}

	booking, err := s.repo.GetBooking(ctx, id)
	if err == nil {
		metrics.IncStatusTransition(models.StatusCancelled)
		s.availability.InvalidateOccupancy(ctx, booking.ServiceProfileID, booking.Date)
		s.publishEvent(events.EventBookingCancelled, booking, reason)
	}
	return nil
}

// RescheduleBooking moves an active booking to a new date and slot. The
// booking returns to pending regardless of its prior status.
func (s *BookingService) RescheduleBooking(ctx context.Context, id, customerID string, date time.Time, slot string) error {
	if err := s.ValidateBookingDate(date); err != nil {
		return err
	}

	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}

	offered, err := s.availability.DaySlots(ctx, booking.ServiceProfileID, date)
	if err != nil {
		return err
	}
	if len(offered) == 0 {
		return ErrDayUnavailable
	}
	if !containsSlot(offered, slot) {
		return ErrSlotNotOffered
	}

	oldDate := booking.Date

	if err := s.repo.RescheduleBooking(ctx, id, customerID, date, slot); err != nil {
		if errors.Is(err, database.ErrSlotTaken) {
			metrics.IncSlotConflict()
		}
		return err
	}

	s.availability.InvalidateOccupancy(ctx, booking.ServiceProfileID, oldDate)
	s.availability.InvalidateOccupancy(ctx, booking.ServiceProfileID, date)

	if moved, err := s.repo.GetBooking(ctx, id); err == nil {
		s.publishEvent(events.EventBookingRescheduled, moved, "")
	}
	return nil
}

// AcceptBooking is the provider confirming a pending request.
func (s *BookingService) AcceptBooking(ctx context.Context, id, providerUserID string) error {
	return s.transition(ctx, id, providerUserID,
		models.StatusPending, models.StatusConfirmed, events.EventBookingConfirmed, false)
}

// DeclineBooking is the provider turning down a pending request, which
// frees the slot.
func (s *BookingService) DeclineBooking(ctx context.Context, id, providerUserID string) error {
	return s.transition(ctx, id, providerUserID,
		models.StatusPending, models.StatusCancelled, events.EventBookingDeclined, true)
}

// CompleteBooking marks a confirmed booking as done, which frees the slot.
func (s *BookingService) CompleteBooking(ctx context.Context, id, providerUserID string) error {
	return s.transition(ctx, id, providerUserID,
		models.StatusConfirmed, models.StatusCompleted, events.EventBookingCompleted, true)
}

func (s *BookingService) transition(ctx context.Context, id, providerUserID, from, to, eventType string, freesSlot bool) error {
	if err := s.repo.TransitionBookingStatus(ctx, id, providerUserID, from, to); err != nil {
		return err
	}

	metrics.IncStatusTransition(to)

	booking, err := s.repo.GetBooking(ctx, id)
	if err == nil {
		if freesSlot {
			s.availability.InvalidateOccupancy(ctx, booking.ServiceProfileID, booking.Date)
		}
		s.publishEvent(eventType, booking, "")
	}
	return nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

func (s *BookingService) GetBookingByCode(ctx context.Context, code string) (*models.Booking, error) {
	return s.repo.GetBookingByCode(ctx, code)
}

func (s *BookingService) GetCustomerBookings(ctx context.Context, customerID string) ([]*models.Booking, error) {
	return s.repo.GetCustomerBookings(ctx, customerID)
}

func (s *BookingService) GetProviderBookings(ctx context.Context, providerUserID string) ([]*models.Booking, error) {
	return s.repo.GetProviderBookings(ctx, providerUserID)
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, reason string) {
	payload := events.BookingEventPayload{
		BookingID:        booking.ID,
		BookingCode:      booking.Code,
		CustomerID:       booking.CustomerID,
		ProviderUserID:   booking.ProviderUserID,
		ServiceProfileID: booking.ServiceProfileID,
		Status:           booking.Status,
		Date:             booking.Date,
		TimeSlot:         booking.TimeSlot,
		Reason:           reason,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}

// newBookingCode builds a short human-readable reference like bk-9f3a21c4.
func newBookingCode() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// Extremely unlikely; fall back to a uuid fragment.
		return "bk-" + uuid.NewString()[:8]
	}
	return fmt.Sprintf("bk-%s", hex.EncodeToString(buf))
}

func containsSlot(slots []string, slot string) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}
