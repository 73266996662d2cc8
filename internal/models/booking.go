package models

import (
	"strings"
	"time"
)

type Booking struct {
	ID                 string    `json:"id"`
	Code               string    `json:"booking_code"`
	CustomerID         string    `json:"customer_id"`
	ProviderUserID     string    `json:"provider_user_id"`
	ServiceProfileID   string    `json:"service_profile_id"`
	Date               time.Time `json:"booking_date"`
	TimeSlot           string    `json:"time_slot"`
	Status             string    `json:"status"` // pending, confirmed, completed, cancelled
	ServiceNote        string    `json:"service_note,omitempty"`
	CancellationReason string    `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// DisplayCode returns the booking code in its display form. Codes are stored
// lowercase and compared case-insensitively.
func (b *Booking) DisplayCode() string {
	return strings.ToUpper(b.Code)
}

// IsActive reports whether the booking occupies its slot.
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}
