package service

import (
	"context"

	"karigar/internal/domain"
	"karigar/internal/events"
	"karigar/internal/models"
	"karigar/internal/verification"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProfileService handles registration, provider offerings, availability
// templates and identity verification.
type ProfileService struct {
	repo     domain.Repository
	verifier domain.Verifier
	eventBus domain.EventPublisher
	catalog  []models.ServiceCategory
	logger   *zerolog.Logger
}

func NewProfileService(repo domain.Repository, verifier domain.Verifier, eventBus domain.EventPublisher, catalog []models.ServiceCategory, logger *zerolog.Logger) *ProfileService {
	if len(catalog) == 0 {
		catalog = models.ServiceTypes
	}
	return &ProfileService{
		repo:     repo,
		verifier: verifier,
		eventBus: eventBus,
		catalog:  catalog,
		logger:   logger,
	}
}

func (s *ProfileService) Catalog() []models.ServiceCategory {
	return s.catalog
}

func (s *ProfileService) isCatalogType(serviceType string) bool {
	for _, svc := range s.catalog {
		if svc.Name == serviceType {
			return true
		}
	}
	return false
}

func (s *ProfileService) RegisterProfile(ctx context.Context, profile *models.Profile) error {
	if profile.Name == "" {
		return ErrEmptyName
	}
	if profile.Role != models.RoleCustomer && profile.Role != models.RoleProvider {
		return ErrInvalidRole
	}
	return s.repo.CreateOrUpdateProfile(ctx, profile)
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

// CreateServiceProfile publishes a provider's offering for one trade.
func (s *ProfileService) CreateServiceProfile(ctx context.Context, userID, serviceType, bio string) (*models.ServiceProfile, error) {
	if !s.isCatalogType(serviceType) {
		return nil, ErrInvalidServiceType
	}

	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.Role != models.RoleProvider {
		return nil, ErrInvalidRole
	}

	sp := &models.ServiceProfile{
		ID:          uuid.NewString(),
		UserID:      userID,
		ServiceType: serviceType,
		Bio:         bio,
		Available:   true,
	}
	if err := s.repo.CreateServiceProfile(ctx, sp); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("service_profile_id", sp.ID).
		Str("service_type", serviceType).
		Msg("service profile created")
	return sp, nil
}

func (s *ProfileService) GetServiceProfile(ctx context.Context, id string) (*models.ServiceProfile, error) {
	return s.repo.GetServiceProfile(ctx, id)
}

// ListProviders returns available offerings, optionally filtered by trade.
func (s *ProfileService) ListProviders(ctx context.Context, serviceType string) ([]*models.ServiceProfile, error) {
	if serviceType != "" && !s.isCatalogType(serviceType) {
		return nil, ErrInvalidServiceType
	}
	return s.repo.ListServiceProfiles(ctx, serviceType)
}

// SetAvailability stores a weekday template after sanity-checking the hours.
func (s *ProfileService) SetAvailability(ctx context.Context, tpl *models.AvailabilityTemplate) error {
	if tpl.DayOfWeek < 0 || tpl.DayOfWeek > 6 {
		return ErrInvalidSchedule
	}
	if tpl.IsAvailable {
		if tpl.StartHour < 0 || tpl.EndHour > 24 || tpl.StartHour >= tpl.EndHour {
			return ErrInvalidSchedule
		}
		if tpl.SlotDurationMinutes <= 0 {
			return ErrInvalidSchedule
		}
	}

	if _, err := s.repo.GetServiceProfile(ctx, tpl.ServiceProfileID); err != nil {
		return err
	}
	return s.repo.UpsertAvailabilityTemplate(ctx, tpl)
}

// VerifyProfile runs the external identity check and records the outcome.
// Only the id number's hash is persisted.
func (s *ProfileService) VerifyProfile(ctx context.Context, userID, idNumber string) (bool, string, error) {
	if _, err := s.repo.GetProfile(ctx, userID); err != nil {
		return false, "", err
	}

	verified, reason, err := s.verifier.Verify(ctx, idNumber)
	if err != nil {
		return false, "", err
	}

	idHash := verification.HashID(idNumber)
	if err := s.repo.SetProfileVerified(ctx, userID, idHash, verified); err != nil {
		return false, "", err
	}

	if verified {
		if err := s.eventBus.PublishJSON(events.EventProfileVerified, map[string]string{
			"user_id": userID,
		}); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish verification event")
		}
	}

	s.logger.Info().
		Str("user_id", userID).
		Bool("verified", verified).
		Msg("identity verification recorded")
	return verified, reason, nil
}
