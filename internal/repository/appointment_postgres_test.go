package repository

import (
	"testing"
	"time"
)

func TestUTCDayBounds(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)

	tests := []struct {
		name      string
		input     time.Time
		wantStart time.Time
	}{
		{
			name:      "utc timestamp keeps its date",
			input:     time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
			wantStart: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "local early morning is previous utc day",
			// 00:30 MSK = 21:30 UTC накануне.
			input:     time.Date(2026, 3, 10, 0, 30, 0, 0, msk),
			wantStart: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "local late evening stays same utc day",
			input:     time.Date(2026, 3, 10, 23, 30, 0, 0, msk),
			wantStart: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := utcDayBounds(tt.input)
			if !start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", start, tt.wantStart)
			}
			if !end.Equal(tt.wantStart.AddDate(0, 0, 1)) {
				t.Errorf("end = %v, want %v", end, tt.wantStart.AddDate(0, 0, 1))
			}
			utcStart, _ := utcDayBounds(tt.input.UTC())
			if !start.Equal(utcStart) {
				t.Errorf("bounds depend on the input timezone")
			}
		})
	}
}
