package service

import "errors"

var (
	// ErrPastDate the requested date is before today.
	ErrPastDate = errors.New("booking date is in the past")

	// ErrDateTooFar the requested date is beyond the booking window.
	ErrDateTooFar = errors.New("booking date is too far in the future")

	// ErrDayUnavailable the provider does not work on the requested day.
	ErrDayUnavailable = errors.New("provider is not available on this day")

	// ErrSlotNotOffered the slot label is not part of the provider's
	// schedule for that day.
	ErrSlotNotOffered = errors.New("time slot is not offered on this day")

	// ErrProviderUnavailable the service profile is switched off.
	ErrProviderUnavailable = errors.New("provider is not taking bookings")

	// ErrUnverified the customer has not passed identity verification.
	ErrUnverified = errors.New("profile is not verified")

	// ErrEmptyCancellationReason cancelling requires a reason.
	ErrEmptyCancellationReason = errors.New("cancellation reason is required")

	// ErrNoteTooLong the service note exceeds the allowed length.
	ErrNoteTooLong = errors.New("service note is too long")

	// ErrInvalidRating review ratings are 1 through 5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrInvalidServiceType the service type is not in the catalog.
	ErrInvalidServiceType = errors.New("unknown service type")

	// ErrInvalidRole profile role must be customer or provider.
	ErrInvalidRole = errors.New("invalid profile role")

	// ErrEmptyName profile name is required.
	ErrEmptyName = errors.New("profile name is required")

	// ErrInvalidSchedule the availability template hours are inconsistent.
	ErrInvalidSchedule = errors.New("invalid availability schedule")

	// ErrReviewWithoutBooking reviews require a completed booking.
	ErrReviewWithoutBooking = errors.New("no completed booking with this provider")
)
