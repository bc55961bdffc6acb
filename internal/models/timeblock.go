package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Weekday is the closed set of teaching days. Classes never run on Sunday.
type Weekday string

// Teaching days.
const (
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
	Saturday  Weekday = "SATURDAY"
)

var weekdays = map[Weekday]struct{}{
	Monday:    {},
	Tuesday:   {},
	Wednesday: {},
	Thursday:  {},
	Friday:    {},
	Saturday:  {},
}

// ParseWeekday validates a day string against the closed enum.
func ParseWeekday(s string) (Weekday, error) {
	day := Weekday(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := weekdays[day]; !ok {
		return "", fmt.Errorf("invalid weekday %q", s)
	}
	return day, nil
}

// Valid reports whether the weekday belongs to the closed enum.
func (d Weekday) Valid() bool {
	_, ok := weekdays[d]
	return ok
}

// Abbrev returns the short day code used in schedule block identifiers.
func (d Weekday) Abbrev() string {
	switch d {
	case Monday:
		return "LUN"
	case Tuesday:
		return "MAR"
	case Wednesday:
		return "MIE"
	case Thursday:
		return "JUE"
	case Friday:
		return "VIE"
	case Saturday:
		return "SAB"
	}
	return ""
}

// LessonMinutes is the fixed duration of one teaching hour.
const LessonMinutes = 50

// MinuteOfDay counts minutes since midnight.
type MinuteOfDay int

// ParseClock converts "HH:MM" into minutes since midnight.
func ParseClock(s string) (MinuteOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return MinuteOfDay(hour*60 + minute), nil
}

// Clock formats the minute count back into "HH:MM".
func (m MinuteOfDay) Clock() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// TimeBlock is a day plus a half-open [start, end) minute span.
type TimeBlock struct {
	Day      Weekday     `db:"day" json:"day"`
	StartMin MinuteOfDay `db:"start_min" json:"-"`
	EndMin   MinuteOfDay `db:"end_min" json:"-"`
}

// NewTimeBlock derives the end time from the required teaching hours.
func NewTimeBlock(day Weekday, start MinuteOfDay, hours int) (TimeBlock, error) {
	if !day.Valid() {
		return TimeBlock{}, fmt.Errorf("invalid weekday %q", day)
	}
	if hours <= 0 {
		return TimeBlock{}, fmt.Errorf("hours must be positive, got %d", hours)
	}
	end := start + MinuteOfDay(hours*LessonMinutes)
	if end > 24*60 {
		return TimeBlock{}, fmt.Errorf("block ending at %s exceeds the day", end.Clock())
	}
	return TimeBlock{Day: day, StartMin: start, EndMin: end}, nil
}

// Overlaps reports whether two blocks collide. Blocks on different days never
// overlap; on the same day the half-open rule applies, so back-to-back blocks
// sharing a boundary minute do not conflict.
func (b TimeBlock) Overlaps(other TimeBlock) bool {
	if b.Day != other.Day {
		return false
	}
	return b.StartMin < other.EndMin && b.EndMin > other.StartMin
}

// SameSlot reports whether two blocks start at the identical day and minute.
func (b TimeBlock) SameSlot(other TimeBlock) bool {
	return b.Day == other.Day && b.StartMin == other.StartMin
}

// Start returns the start time as "HH:MM".
func (b TimeBlock) Start() string { return b.StartMin.Clock() }

// End returns the end time as "HH:MM".
func (b TimeBlock) End() string { return b.EndMin.Clock() }

func (b TimeBlock) String() string {
	return fmt.Sprintf("%s %s-%s", b.Day, b.Start(), b.End())
}

// ShiftCode classifies the block start into the morning, afternoon or night
// shift letter used by schedule block identifiers.
func (b TimeBlock) ShiftCode() string {
	switch {
	case b.StartMin < 12*60:
		return "M"
	case b.StartMin < 19*60:
		return "T"
	default:
		return "N"
	}
}
