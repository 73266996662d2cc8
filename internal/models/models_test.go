package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to string }{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusCompleted},
		{StatusConfirmed, StatusCancelled},
	}
	for _, tr := range allowed {
		assert.True(t, CanTransition(tr.from, tr.to), "%s -> %s should be allowed", tr.from, tr.to)
	}

	statuses := []string{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}
	isAllowed := func(from, to string) bool {
		for _, tr := range allowed {
			if tr.from == from && tr.to == to {
				return true
			}
		}
		return false
	}

	// Everything not explicitly allowed is rejected.
	for _, from := range statuses {
		for _, to := range statuses {
			if isAllowed(from, to) {
				continue
			}
			assert.False(t, CanTransition(from, to), "%s -> %s should be rejected", from, to)
		}
	}

	assert.False(t, CanTransition("unknown", StatusConfirmed))
}

func TestTerminalStatuses(t *testing.T) {
	assert.False(t, IsTerminalStatus(StatusPending))
	assert.False(t, IsTerminalStatus(StatusConfirmed))
	assert.True(t, IsTerminalStatus(StatusCompleted))
	assert.True(t, IsTerminalStatus(StatusCancelled))

	assert.Equal(t, []string{StatusPending, StatusConfirmed}, ActiveStatuses())
}

func TestBookingHelpers(t *testing.T) {
	b := &Booking{Code: "bk-1a2b3c4d", Status: StatusPending}
	assert.Equal(t, "BK-1A2B3C4D", b.DisplayCode())
	assert.True(t, b.IsActive())

	b.Status = StatusCancelled
	assert.False(t, b.IsActive())
	b.Status = StatusCompleted
	assert.False(t, b.IsActive())
}

func TestIsValidServiceType(t *testing.T) {
	assert.True(t, IsValidServiceType("Electrician"))
	assert.True(t, IsValidServiceType("AC Repair"))
	assert.False(t, IsValidServiceType("electrician"))
	assert.False(t, IsValidServiceType("Astrologer"))
}
