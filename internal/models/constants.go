package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

const (
	RoleCustomer = "customer"
	RoleProvider = "provider"
)

const (
	// DefaultMaxAdvanceDays how far ahead a customer may book
	DefaultMaxAdvanceDays = 30

	// DefaultStartHour / DefaultEndHour bounds of the default working day
	DefaultStartHour = 8
	DefaultEndHour   = 20

	// DefaultSlotDurationMinutes slot length of the default schedule
	DefaultSlotDurationMinutes = 60

	// DefaultSlotCacheTTL lifetime of the cached occupancy set in seconds
	DefaultSlotCacheTTL = 60

	// RateLimitRequests requests allowed per window
	RateLimitRequests = 20

	// RateLimitWindow rate limit window in seconds
	RateLimitWindow = 60

	// MaxServiceNoteLength maximum length of a customer's service note
	MaxServiceNoteLength = 500

	// BookingCodeAttempts retries when a generated booking code collides
	BookingCodeAttempts = 3
)
