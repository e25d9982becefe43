package checkout

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlots_Afternoon(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.Local)
	slots := Slots(now)

	// today 17:00-21:30 is 10 slots, tomorrow 10:00-21:30 is 24
	require.Len(t, slots, 34)

	today := now.Format(slotDateFormat)
	assert.Equal(t, fmt.Sprintf("Today, %s - 5:00 PM", today), slots[0])
	assert.Equal(t, fmt.Sprintf("Today, %s - 5:30 PM", today), slots[1])
	assert.Equal(t, fmt.Sprintf("Today, %s - 9:30 PM", today), slots[9])

	tomorrow := now.AddDate(0, 0, 1).Format(slotDateFormat)
	assert.Equal(t, fmt.Sprintf("Tomorrow, %s - 10:00 AM", tomorrow), slots[10])
	assert.Equal(t, fmt.Sprintf("Tomorrow, %s - 9:30 PM", tomorrow), slots[33])
}

func TestSlots_LateEveningSkipsToday(t *testing.T) {
	now := time.Date(2026, 8, 30, 22, 15, 0, 0, time.Local)
	slots := Slots(now)

	require.Len(t, slots, 24)
	for _, s := range slots {
		assert.True(t, strings.HasPrefix(s, "Tomorrow, "), "slot %q should be tomorrow only", s)
	}
}

func TestValidateSlot(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.Local)

	require.NoError(t, ValidateSlot(now, Slots(now)[0]))

	assert.ErrorIs(t, ValidateSlot(now, ""), ErrInvalidTimeSlot)
	assert.ErrorIs(t, ValidateSlot(now, "whenever"), ErrInvalidTimeSlot)

	// a slot picked in the morning has started by evening
	morning := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)
	morningSlot := Slots(morning)[0] // 12:00 PM today
	evening := time.Date(2026, 8, 30, 18, 0, 0, 0, time.Local)
	assert.ErrorIs(t, ValidateSlot(evening, morningSlot), ErrInvalidTimeSlot)
}

func TestCanTransitionTo(t *testing.T) {
	assert.True(t, CanTransitionTo(CheckoutStatusInitiated, CheckoutStatusPaymentPending))
	assert.True(t, CanTransitionTo(CheckoutStatusPaymentPending, CheckoutStatusPaymentCompleted))
	assert.True(t, CanTransitionTo(CheckoutStatusPaymentCompleted, CheckoutStatusCompleted))
	assert.True(t, CanTransitionTo(CheckoutStatusPaymentPending, CheckoutStatusFailed))

	assert.False(t, CanTransitionTo(CheckoutStatusInitiated, CheckoutStatusCompleted))
	assert.False(t, CanTransitionTo(CheckoutStatusCompleted, CheckoutStatusFailed))
	assert.False(t, CanTransitionTo(CheckoutStatusFailed, CheckoutStatusPaymentPending))
	assert.True(t, CheckoutStatusCompleted.IsTerminal())
	assert.True(t, CheckoutStatusFailed.IsTerminal())
	assert.False(t, CheckoutStatusInitiated.IsTerminal())
}
