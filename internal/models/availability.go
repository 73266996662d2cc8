package models

// AvailabilityTemplate holds a provider's configured working hours for one
// weekday (0=Sunday .. 6=Saturday). At most one row exists per
// (service profile, weekday); absence of a row means the default schedule.
type AvailabilityTemplate struct {
	ID                  int64  `json:"id"`
	ServiceProfileID    string `json:"service_profile_id"`
	DayOfWeek           int    `json:"day_of_week"`
	IsAvailable         bool   `json:"is_available"`
	StartHour           int    `json:"start_hour"`
	EndHour             int    `json:"end_hour"`
	SlotDurationMinutes int    `json:"slot_duration_minutes"`
}

// DaySchedule is the resolved schedule for one concrete date.
type DaySchedule struct {
	Available           bool `json:"available"`
	Custom              bool `json:"custom"`
	StartHour           int  `json:"start_hour,omitempty"`
	EndHour             int  `json:"end_hour,omitempty"`
	SlotDurationMinutes int  `json:"slot_duration_minutes,omitempty"`
}
