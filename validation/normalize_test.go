package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeOptional(t *testing.T) {
	assert.Nil(t, normalizeOptional(nil))
	assert.Nil(t, normalizeOptional(strPtr("")))
	assert.Nil(t, normalizeOptional(strPtr("   \t ")))

	got := normalizeOptional(strPtr("  follow up  "))
	require.NotNil(t, got)
	assert.Equal(t, "follow up", *got)
}

func TestNormalizeOptionalIdempotent(t *testing.T) {
	once := normalizeOptional(strPtr("  some notes "))
	twice := normalizeOptional(once)
	require.NotNil(t, twice)
	assert.Equal(t, *once, *twice)
}

func TestIsBlank(t *testing.T) {
	assert.True(t, isBlank(""))
	assert.True(t, isBlank("   "))
	assert.False(t, isBlank(" x "))
}

func TestCheckWindowBounds(t *testing.T) {
	v := newTestValidator(newFakeStore())

	// The bounds themselves are inside the window
	assert.Nil(t, v.checkWindow(today.AddDate(0, 0, -365), "date", "consultation"))
	assert.Nil(t, v.checkWindow(today.AddDate(0, 0, 365), "date", "consultation"))
	assert.Nil(t, v.checkWindow(today, "date", "consultation"))

	past := v.checkWindow(today.AddDate(0, 0, -366), "date", "consultation")
	require.NotNil(t, past)
	assert.Equal(t, KindOutOfRange, past.Kind)

	future := v.checkWindow(today.AddDate(0, 0, 366), "date", "consultation")
	require.NotNil(t, future)
	assert.Equal(t, KindOutOfRange, future.Kind)
}

func TestCheckWindowIgnoresTimeOfDay(t *testing.T) {
	v := newTestValidator(newFakeStore())

	boundary := today.AddDate(0, 0, -365).Add(23 * time.Hour)
	assert.Nil(t, v.checkWindow(boundary, "date", "prescription"))
}
