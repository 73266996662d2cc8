package models

// statusTransitions lists the allowed target statuses per source status.
// pending and confirmed are the active statuses; completed and cancelled are
// terminal. Rescheduling is not a plain transition (it also moves the slot)
// and is modeled separately, but it is only allowed from an active status.
var statusTransitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition checks if a status change is allowed.
func CanTransition(from, to string) bool {
	for _, s := range statusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ActiveStatuses returns the statuses that occupy a slot.
func ActiveStatuses() []string {
	return []string{StatusPending, StatusConfirmed}
}

// IsTerminalStatus reports whether no further transition is possible.
func IsTerminalStatus(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}
