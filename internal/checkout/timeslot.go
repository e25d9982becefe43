package checkout

import (
	"fmt"
	"time"
)

const (
	// minimum kitchen prep time before the earliest slot today
	prepTimeHours = 2

	lastSlotHour           = 21
	tomorrowFirstSlotHour  = 10
	slotDateFormat         = "Mon, Jan 2"
)

// Slots returns the delivery time slots currently offered: half-hour slots
// today from now plus prep time through 21:30, then tomorrow 10:00 through
// 21:30. Late in the evening the today portion is empty.
func Slots(now time.Time) []string {
	var slots []string

	today := now.Format(slotDateFormat)
	tomorrow := now.AddDate(0, 0, 1).Format(slotDateFormat)

	startHour := now.Hour() + prepTimeHours
	for hour := startHour; hour <= lastSlotHour; hour++ {
		slots = append(slots, formatSlot("Today", today, hour, 0))
		slots = append(slots, formatSlot("Today", today, hour, 30))
	}

	for hour := tomorrowFirstSlotHour; hour <= lastSlotHour; hour++ {
		slots = append(slots, formatSlot("Tomorrow", tomorrow, hour, 0))
		slots = append(slots, formatSlot("Tomorrow", tomorrow, hour, 30))
	}

	return slots
}

// ValidateSlot checks that the slot is one the shopper could currently pick.
// A slot that has already started is treated as invalid.
func ValidateSlot(now time.Time, slot string) error {
	if slot == "" {
		return ErrInvalidTimeSlot
	}
	for _, s := range Slots(now) {
		if s == slot {
			return nil
		}
	}
	return ErrInvalidTimeSlot
}

func formatSlot(day, date string, hour, minute int) string {
	hour12 := hour % 12
	if hour12 == 0 {
		hour12 = 12
	}
	ampm := "AM"
	if hour >= 12 {
		ampm = "PM"
	}
	return fmt.Sprintf("%s, %s - %d:%02d %s", day, date, hour12, minute, ampm)
}
