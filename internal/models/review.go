package models

import "time"

// Review is linked to a service profile and a customer, independent of any
// booking's state.
type Review struct {
	ID               int64     `json:"id"`
	ServiceProfileID string    `json:"service_profile_id"`
	CustomerID       string    `json:"customer_id"`
	Rating           int       `json:"rating"` // 1..5
	Comment          string    `json:"comment,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
