package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxCycle is the highest academic cycle the institution defines.
const MaxCycle = 10

// ErrMalformedStartLabel signals that a start label could not be parsed and
// the cycle was defaulted to I. Callers must surface the warning instead of
// treating the default as authoritative.
var ErrMalformedStartLabel = errors.New("malformed cycle start label")

var romanNumerals = [MaxCycle]string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X"}

// Roman converts a cycle ordinal in [1, 10] to its Roman numeral label.
func Roman(cycle int) string {
	if cycle < 1 {
		cycle = 1
	}
	if cycle > MaxCycle {
		cycle = MaxCycle
	}
	return romanNumerals[cycle-1]
}

// CycleFromRoman parses a Roman numeral label back into its ordinal.
func CycleFromRoman(label string) (int, error) {
	label = strings.ToUpper(strings.TrimSpace(label))
	for i, numeral := range romanNumerals {
		if numeral == label {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("invalid cycle label %q", label)
}

// CycleStart is the academic half-year in which a student first enrolled.
type CycleStart struct {
	Year int
	Half int // 1 = Jan-Jun, 2 = Jul-Dec
}

// ParseStartLabel parses labels like "2023-I" or "2023-II". On malformed
// input it returns a default start along with ErrMalformedStartLabel so
// callers can warn rather than fail outright.
func ParseStartLabel(label string, today time.Time) (CycleStart, error) {
	fallback := CycleStart{Year: today.Year(), Half: halfOf(today)}

	parts := strings.SplitN(strings.TrimSpace(label), "-", 2)
	if len(parts) != 2 {
		return fallback, ErrMalformedStartLabel
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1900 || year > 2200 {
		return fallback, ErrMalformedStartLabel
	}
	switch strings.ToUpper(strings.TrimSpace(parts[1])) {
	case "I":
		return CycleStart{Year: year, Half: 1}, nil
	case "II":
		return CycleStart{Year: year, Half: 2}, nil
	}
	return fallback, ErrMalformedStartLabel
}

// CurrentCycle derives the student's cycle ordinal from the start label and
// the current date. Two cycles run per year, one per half. The result is
// clamped to [1, MaxCycle]. A malformed label yields cycle 1 together with
// ErrMalformedStartLabel.
func CurrentCycle(startLabel string, today time.Time) (int, error) {
	start, err := ParseStartLabel(startLabel, today)
	if err != nil {
		return 1, err
	}

	halfIndex := (today.Year()-start.Year)*2 + (halfOf(today) - 1) - (start.Half - 1)
	cycle := halfIndex + 1
	if cycle < 1 {
		cycle = 1
	}
	if cycle > MaxCycle {
		cycle = MaxCycle
	}
	return cycle, nil
}

// EligibleCycles returns the cycle ordinals a student may enroll in. Odd
// current cycles open both the current and the next cycle, even cycles only
// the current one.
func EligibleCycles(current int) []int {
	if current%2 == 1 && current < MaxCycle {
		return []int{current, current + 1}
	}
	return []int{current}
}

func halfOf(t time.Time) int {
	if t.Month() <= time.June {
		return 1
	}
	return 2
}
