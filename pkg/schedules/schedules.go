package schedules

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedSchedule marks a schedule row whose day or time cannot be
// parsed. Such rows are logged and skipped; they never abort the sync
// of other rows.
var ErrMalformedSchedule = errors.New("malformed schedule")

// ReminderLead is how long before the slot the reminder fires.
const ReminderLead = 15 * time.Minute

var dayNames = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// ParseDay accepts a lowercase-insensitive English weekday name.
func ParseDay(value string) (time.Weekday, error) {
	day, ok := dayNames[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return 0, fmt.Errorf("%w: invalid day %q", ErrMalformedSchedule, value)
	}
	return day, nil
}

// ParseTimeOfDay parses strict HH:MM.
func ParseTimeOfDay(value string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: expected HH:MM, got %q", ErrMalformedSchedule, value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: invalid hour in %q", ErrMalformedSchedule, value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: invalid minute in %q", ErrMalformedSchedule, value)
	}
	return hour, minute, nil
}

// TriggerIDs derives the stable trigger identities for a schedule row.
func TriggerIDs(scheduleID uint) (reminderID, promptID string) {
	return fmt.Sprintf("reminder_%d", scheduleID), fmt.Sprintf("prompt_%d", scheduleID)
}

// ReminderTime is the slot time minus ReminderLead. A slot earlier than
// 00:15 wraps to late evening of the same weekday, matching how the
// stored triggers have always behaved.
func ReminderTime(hour, minute int) (int, int) {
	total := hour*60 + minute - int(ReminderLead.Minutes())
	if total < 0 {
		total += 24 * 60
	}
	return total / 60, total % 60
}

// FormatDay renders a weekday the way schedules store it.
func FormatDay(day time.Weekday) string {
	return strings.ToLower(day.String())
}
