package calculator

import (
	"time"

	"PrebloomScout/internal/model"
)

// HorizonDays is the oldest age, in days, that still lands in a window.
const HorizonDays = 90

// windowUpper holds the inclusive upper age bound of each window.
var windowUpper = [model.WindowCount]int{7, 30, HorizonDays}

// AgeDays returns the whole days elapsed from ts to now, both taken in UTC.
// Timestamps after now are clamped to age 0.
func AgeDays(now, ts time.Time) int {
	d := now.UTC().Sub(ts.UTC())
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// WithinHorizon reports whether ts is no older than exactly HorizonDays
// before now. Timestamps after now are within the horizon.
func WithinHorizon(now, ts time.Time) bool {
	return now.UTC().Sub(ts.UTC()) <= HorizonDays*24*time.Hour
}

// AssignWindow maps an age in days to its window. Ages beyond HorizonDays
// fall outside the analysis horizon and report false.
func AssignWindow(age int) (model.Window, bool) {
	if age < 0 {
		age = 0
	}
	for _, w := range model.Windows {
		if age <= windowUpper[w] {
			return w, true
		}
	}
	return 0, false
}

// WindowBounds returns the inclusive [lo, hi] age range of w.
func WindowBounds(w model.Window) (lo, hi int) {
	if w > model.Window0To7 {
		lo = windowUpper[w-1] + 1
	}
	return lo, windowUpper[w]
}
