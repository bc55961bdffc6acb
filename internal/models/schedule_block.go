package models

import (
	"fmt"
	"time"
)

// ScheduleBlock is a reusable catalog slot identified by a code such as
// "LUN-M1": day abbreviation, shift letter and sequence within the shift.
type ScheduleBlock struct {
	ID         string      `db:"id" json:"id"`
	Code       string      `db:"code" json:"code"`
	Day        Weekday     `db:"day" json:"day"`
	StartMin   MinuteOfDay `db:"start_min" json:"-"`
	EndMin     MinuteOfDay `db:"end_min" json:"-"`
	StartClock string      `db:"-" json:"start"`
	EndClock   string      `db:"-" json:"end"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
}

// FillClocks derives the formatted start and end times for JSON output.
func (b *ScheduleBlock) FillClocks() {
	b.StartClock = b.StartMin.Clock()
	b.EndClock = b.EndMin.Clock()
}

// Block returns the slot as a TimeBlock value.
func (b ScheduleBlock) Block() TimeBlock {
	return TimeBlock{Day: b.Day, StartMin: b.StartMin, EndMin: b.EndMin}
}

// BlockCode builds the catalog code for a slot given its ordinal within the
// day's shift.
func BlockCode(block TimeBlock, sequence int) string {
	return fmt.Sprintf("%s-%s%d", block.Day.Abbrev(), block.ShiftCode(), sequence)
}

// CreateScheduleBlockRequest registers a new catalog slot.
type CreateScheduleBlockRequest struct {
	Day   string `json:"day" validate:"required"`
	Start string `json:"start" validate:"required"`
	Hours int    `json:"hours" validate:"required,min=1,max=6"`
}

// EditScheduleBlockRequest moves an existing catalog slot. The code is
// regenerated from the new placement.
type EditScheduleBlockRequest struct {
	Day   string `json:"day" validate:"required"`
	Start string `json:"start" validate:"required"`
	Hours int    `json:"hours" validate:"required,min=1,max=6"`
}
