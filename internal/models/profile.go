package models

import "time"

// Profile is the marketplace-facing record of an authenticated user. The
// identity collaborator owns authentication; this row only carries what the
// booking core needs, including the verification state.
type Profile struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"` // provider, customer
	Contact   string    `json:"contact,omitempty"`
	City      string    `json:"city,omitempty"`
	Area      string    `json:"area,omitempty"`
	Verified  bool      `json:"verified"`
	IDHash    string    `json:"-"` // SHA-256 of the verified government id, never the raw number
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ServiceProfile is a provider's published offering of one service type,
// distinct from the provider's login identity.
type ServiceProfile struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ServiceType string    `json:"service_type"`
	Bio         string    `json:"bio,omitempty"`
	Rating      float64   `json:"rating"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
}
