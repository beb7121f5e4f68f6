package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"PrebloomScout/internal/model"
)

var now = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

func TestAgeDays(t *testing.T) {
	tests := []struct {
		name string
		ts   time.Time
		want int
	}{
		{"same instant", now, 0},
		{"just under a day", now.Add(-23 * time.Hour), 0},
		{"one day", now.Add(-24 * time.Hour), 1},
		{"seven and a half days", now.Add(-180 * time.Hour), 7},
		{"future clamps to zero", now.Add(48 * time.Hour), 0},
		{"other zone", now.Add(-72 * time.Hour).In(time.FixedZone("X", -5*3600)), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AgeDays(now, tt.ts))
		})
	}
}

func TestWithinHorizon(t *testing.T) {
	day := 24 * time.Hour
	assert.True(t, WithinHorizon(now, now.Add(-90*day)))
	assert.True(t, WithinHorizon(now, now.Add(time.Hour)))
	assert.False(t, WithinHorizon(now, now.Add(-90*day-time.Second)))
	assert.False(t, WithinHorizon(now, now.Add(-90*day-12*time.Hour)))
}

func TestAssignWindow_Boundaries(t *testing.T) {
	tests := []struct {
		age  int
		want model.Window
		ok   bool
	}{
		{-3, model.Window0To7, true},
		{0, model.Window0To7, true},
		{7, model.Window0To7, true},
		{8, model.Window8To30, true},
		{30, model.Window8To30, true},
		{31, model.Window31To90, true},
		{90, model.Window31To90, true},
		{91, 0, false},
		{365, 0, false},
	}
	for _, tt := range tests {
		w, ok := AssignWindow(tt.age)
		assert.Equal(t, tt.ok, ok, "age %d", tt.age)
		if tt.ok {
			assert.Equal(t, tt.want, w, "age %d", tt.age)
		}
	}
}

func TestWindowBounds(t *testing.T) {
	lo, hi := WindowBounds(model.Window0To7)
	assert.Equal(t, [2]int{0, 7}, [2]int{lo, hi})
	lo, hi = WindowBounds(model.Window8To30)
	assert.Equal(t, [2]int{8, 30}, [2]int{lo, hi})
	lo, hi = WindowBounds(model.Window31To90)
	assert.Equal(t, [2]int{31, 90}, [2]int{lo, hi})
}

func TestWeeklyRate(t *testing.T) {
	assert.InDelta(t, 3.0/59*7, WeeklyRate(3, 59), 1e-12)
	assert.Equal(t, 0.0, WeeklyRate(0, 59))
	assert.Equal(t, 0.0, WeeklyRate(5, 0))
}

func TestSmoothedRatio(t *testing.T) {
	assert.Equal(t, 6.0, SmoothedRatio(5, 0))
	assert.Equal(t, 1.0, SmoothedRatio(0, 0))
	assert.InDelta(t, 1.5, SmoothedRatio(2, 1), 1e-12)
}
