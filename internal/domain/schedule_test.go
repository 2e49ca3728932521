package domain

import (
	"testing"
	"time"
)

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want time.Time
	}{
		{
			"monday stays monday",
			time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC),
			time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			"wednesday rolls back to monday",
			time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			"sunday belongs to the preceding monday",
			time.Date(2026, 3, 8, 23, 59, 0, 0, time.UTC),
			time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			"week crossing a month boundary",
			time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 30, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekStart(tt.date); !got.Equal(tt.want) {
				t.Errorf("WeekStart(%v) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}
