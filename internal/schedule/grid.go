// Package schedule holds the pure time-grid math for the booking day:
// slot keys, minute conversions, span computation, overlap detection and
// card layout. Nothing in here touches the store or the network.
package schedule

import (
	"fmt"
	"time"
)

const (
	// The bookable day runs 08:00 to 23:00 in 15-minute slots.
	OpenHour    = 8
	CloseHour   = 23
	SlotMinutes = 15

	// DefaultDuration applies when an appointment has no explicit end.
	DefaultDuration = 60 * time.Minute

	// MinDuration is the shortest interval the overlap validator will
	// consider for a candidate, whatever the computed duration says.
	MinDuration = SlotMinutes * time.Minute

	minutesPerDay = 24 * 60
	openMinute    = OpenHour * 60
	closeMinute   = CloseHour * 60

	// SlotCount is the number of bookable slots per day (08:00..22:45).
	SlotCount = (closeMinute - openMinute) / SlotMinutes
)

// SlotKey formats an (hour, minute) pair as the canonical "HH:MM" key.
func SlotKey(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// MinutesOfDay parses an "HH:MM" key into minutes since midnight,
// clamped into [0, 1440) by modulo.
func MinutesOfDay(key string) (int, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(key, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("invalid time key %q: %w", key, err)
	}
	if minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time key %q: minute out of range", key)
	}
	m := (hour*60 + minute) % minutesPerDay
	if m < 0 {
		m += minutesPerDay
	}
	return m, nil
}

// KeyFromMinutes is the inverse of MinutesOfDay.
func KeyFromMinutes(min int) string {
	m := min % minutesPerDay
	if m < 0 {
		m += minutesPerDay
	}
	return SlotKey(m/60, m%60)
}

// Slots returns the ordered full-day slot sequence, 08:00 through 22:45.
func Slots() []string {
	keys := make([]string, 0, SlotCount)
	for m := openMinute; m < closeMinute; m += SlotMinutes {
		keys = append(keys, KeyFromMinutes(m))
	}
	return keys
}

// SlotIndex returns the position of key within the day sequence, or -1
// when the key is malformed, off-grid or outside the visible range.
// Callers treat -1 as "not renderable", not as an error.
func SlotIndex(key string) int {
	m, err := MinutesOfDay(key)
	if err != nil {
		return -1
	}
	if m < openMinute || m >= closeMinute || m%SlotMinutes != 0 {
		return -1
	}
	return (m - openMinute) / SlotMinutes
}

// SpanSlots computes how many grid rows an appointment occupies. With an
// end key it is ceil((end-start)/slot), minimum 1; without one the
// default duration applies.
func SpanSlots(startKey, endKey string, defaultDuration time.Duration) int {
	if endKey == "" {
		return spanFromMinutes(int(defaultDuration.Minutes()))
	}
	start, err := MinutesOfDay(startKey)
	if err != nil {
		return 1
	}
	end, err := MinutesOfDay(endKey)
	if err != nil {
		return 1
	}
	return spanFromMinutes(end - start)
}

func spanFromMinutes(minutes int) int {
	span := (minutes + SlotMinutes - 1) / SlotMinutes
	if span < 1 {
		return 1
	}
	return span
}
