// Package slots generates the bookable time slots of a provider's day.
package slots

import "fmt"

// Slot is one bookable window, stored as minutes of day. Labels are
// formatted at the boundary only, so any slot duration works.
type Slot struct {
	Start int // minutes since midnight
	End   int
}

// Label renders the slot in its canonical display and storage form,
// "HH:MM–HH:MM" with an en-dash separator.
func (s Slot) Label() string {
	return fmt.Sprintf("%02d:%02d–%02d:%02d", s.Start/60, s.Start%60, s.End/60, s.End%60)
}

// Default returns the fixed fallback schedule: twelve one-hour slots from
// 08:00 to 20:00. Used whenever a provider has no custom template or the
// configured bounds produce no slots.
func Default() []Slot {
	out := make([]Slot, 0, 12)
	for h := 8; h < 20; h++ {
		out = append(out, Slot{Start: h * 60, End: (h + 1) * 60})
	}
	return out
}

// Generate produces consecutive non-overlapping slots of durationMinutes
// starting at startHour:00, stopping once a slot would extend past endHour.
// A degenerate configuration never yields zero bookable slots: it silently
// degrades to the default schedule.
func Generate(startHour, endHour, durationMinutes int) []Slot {
	if durationMinutes <= 0 {
		return Default()
	}

	var out []Slot
	end := endHour * 60
	for m := startHour * 60; m+durationMinutes <= end; m += durationMinutes {
		out = append(out, Slot{Start: m, End: m + durationMinutes})
	}
	if len(out) == 0 {
		return Default()
	}
	return out
}

// Labels returns the display labels of the slots, in order.
func Labels(slots []Slot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.Label()
	}
	return out
}

// Contains checks whether label is one of the generated slots.
func Contains(slots []Slot, label string) bool {
	for _, s := range slots {
		if s.Label() == label {
			return true
		}
	}
	return false
}
