package slots

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	got := Generate(9, 17, 60)
	assert.Len(t, got, 8)
	assert.Equal(t, "09:00–10:00", got[0].Label())
	assert.Equal(t, "16:00–17:00", got[7].Label())

	labels := Labels(got)
	assert.True(t, sort.StringsAreSorted(labels), "slots must be chronological")
}

func TestGenerateHalfHour(t *testing.T) {
	got := Generate(10, 12, 30)
	assert.Equal(t, []string{"10:00–10:30", "10:30–11:00", "11:00–11:30", "11:30–12:00"}, Labels(got))
}

func TestGenerateOddDuration(t *testing.T) {
	// Durations that are not multiples of 30 minutes format correctly too.
	got := Generate(9, 10, 45)
	assert.Equal(t, []string{"09:00–09:45"}, Labels(got))
}

func TestGenerateFallsBackToDefault(t *testing.T) {
	def := Default()
	assert.Len(t, def, 12)
	assert.Equal(t, "08:00–09:00", def[0].Label())
	assert.Equal(t, "19:00–20:00", def[11].Label())

	assert.Equal(t, def, Generate(0, 0, 60))
	assert.Equal(t, def, Generate(17, 9, 60))
	assert.Equal(t, def, Generate(9, 17, 0))
	assert.Equal(t, def, Generate(9, 17, -15))
}

func TestContains(t *testing.T) {
	day := Generate(9, 17, 60)
	assert.True(t, Contains(day, "09:00–10:00"))
	assert.False(t, Contains(day, "08:00–09:00"))
	// Hyphen instead of en-dash is not a valid label.
	assert.False(t, Contains(day, "09:00-10:00"))
}
