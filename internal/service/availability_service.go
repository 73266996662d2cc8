package service

import (
	"context"
	"errors"
	"time"

	"karigar/internal/database"
	"karigar/internal/domain"
	"karigar/internal/models"
	"karigar/internal/slots"

	"github.com/rs/zerolog"
)

// AvailabilityService resolves a provider's day schedule and computes free
// slots, consulting the occupancy cache before the database.
type AvailabilityService struct {
	repo   domain.Repository
	cache  domain.SlotCache
	logger *zerolog.Logger
}

func NewAvailabilityService(repo domain.Repository, cache domain.SlotCache, logger *zerolog.Logger) *AvailabilityService {
	return &AvailabilityService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// ResolveDay returns the schedule for one weekday. A provider without a
// stored template for that day gets the default working hours; templates
// only narrow or switch off days.
func (s *AvailabilityService) ResolveDay(ctx context.Context, serviceProfileID string, dayOfWeek int) (models.DaySchedule, error) {
	tpl, err := s.repo.GetAvailabilityTemplate(ctx, serviceProfileID, dayOfWeek)
	if errors.Is(err, database.ErrNotFound) {
		return models.DaySchedule{
			Available:           true,
			StartHour:           models.DefaultStartHour,
			EndHour:             models.DefaultEndHour,
			SlotDurationMinutes: models.DefaultSlotDurationMinutes,
		}, nil
	}
	if err != nil {
		return models.DaySchedule{}, err
	}

	return models.DaySchedule{
		Available:           tpl.IsAvailable,
		Custom:              true,
		StartHour:           tpl.StartHour,
		EndHour:             tpl.EndHour,
		SlotDurationMinutes: tpl.SlotDurationMinutes,
	}, nil
}

// DaySlots returns the slot labels a provider offers on a date, empty when
// the day is switched off.
func (s *AvailabilityService) DaySlots(ctx context.Context, serviceProfileID string, date time.Time) ([]string, error) {
	day, err := s.ResolveDay(ctx, serviceProfileID, int(date.Weekday()))
	if err != nil {
		return nil, err
	}
	if !day.Available {
		return nil, nil
	}

	generated := slots.Generate(day.StartHour, day.EndHour, day.SlotDurationMinutes)
	return slots.Labels(generated), nil
}

// OccupiedSlots returns the labels of actively booked slots for a date,
// served from the cache when fresh.
func (s *AvailabilityService) OccupiedSlots(ctx context.Context, serviceProfileID string, date time.Time) ([]string, error) {
	dateKey := date.Format("2006-01-02")

	cached, found, err := s.cache.GetOccupied(ctx, serviceProfileID, dateKey)
	if err == nil && found {
		return cached, nil
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("slot cache read failed, falling back to database")
	}

	taken, err := s.repo.OccupiedSlots(ctx, serviceProfileID, date)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetOccupied(ctx, serviceProfileID, dateKey, taken); err != nil {
		s.logger.Warn().Err(err).Msg("slot cache write failed")
	}
	return taken, nil
}

// AvailableSlots is the offered schedule minus active bookings.
func (s *AvailabilityService) AvailableSlots(ctx context.Context, serviceProfileID string, date time.Time) ([]string, error) {
	offered, err := s.DaySlots(ctx, serviceProfileID, date)
	if err != nil {
		return nil, err
	}
	if len(offered) == 0 {
		return nil, nil
	}

	taken, err := s.OccupiedSlots(ctx, serviceProfileID, date)
	if err != nil {
		return nil, err
	}

	takenSet := make(map[string]bool, len(taken))
	for _, slot := range taken {
		takenSet[slot] = true
	}

	free := make([]string, 0, len(offered))
	for _, slot := range offered {
		if !takenSet[slot] {
			free = append(free, slot)
		}
	}
	return free, nil
}

// InvalidateOccupancy drops the cached slot list after any booking write.
func (s *AvailabilityService) InvalidateOccupancy(ctx context.Context, serviceProfileID string, date time.Time) {
	dateKey := date.Format("2006-01-02")
	if err := s.cache.Invalidate(ctx, serviceProfileID, dateKey); err != nil {
		s.logger.Warn().Err(err).
			Str("service_profile_id", serviceProfileID).
			Str("date", dateKey).
			Msg("failed to invalidate slot cache")
	}
}
