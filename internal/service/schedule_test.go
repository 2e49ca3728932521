package service

import (
	"testing"

	"medbook/internal/domain"
)

func TestGenerateSlots(t *testing.T) {
	tests := []struct {
		name         string
		startTime    string
		endTime      string
		slotDuration int
		wantCount    int
		wantFirst    domain.Slot
		wantLast     domain.Slot
	}{
		{
			name:         "even split",
			startTime:    "09:00",
			endTime:      "12:00",
			slotDuration: 30,
			wantCount:    6,
			wantFirst:    domain.Slot{StartTime: "09:00", EndTime: "09:30"},
			wantLast:     domain.Slot{StartTime: "11:30", EndTime: "12:00"},
		},
		{
			name:         "trailing remainder is dropped",
			startTime:    "09:00",
			endTime:      "10:50",
			slotDuration: 30,
			wantCount:    3,
			wantFirst:    domain.Slot{StartTime: "09:00", EndTime: "09:30"},
			wantLast:     domain.Slot{StartTime: "10:00", EndTime: "10:30"},
		},
		{
			name:         "half hour boundaries",
			startTime:    "07:30",
			endTime:      "11:30",
			slotDuration: 30,
			wantCount:    8,
			wantFirst:    domain.Slot{StartTime: "07:30", EndTime: "08:00"},
			wantLast:     domain.Slot{StartTime: "11:00", EndTime: "11:30"},
		},
		{
			name:         "hour long slots",
			startTime:    "10:00",
			endTime:      "13:00",
			slotDuration: 60,
			wantCount:    3,
			wantFirst:    domain.Slot{StartTime: "10:00", EndTime: "11:00"},
			wantLast:     domain.Slot{StartTime: "12:00", EndTime: "13:00"},
		},
		{
			name:         "interval shorter than slot",
			startTime:    "09:00",
			endTime:      "09:20",
			slotDuration: 30,
			wantCount:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := GenerateSlots(tt.startTime, tt.endTime, tt.slotDuration)
			if err != nil {
				t.Fatalf("GenerateSlots() error = %v", err)
			}
			if len(slots) != tt.wantCount {
				t.Fatalf("GenerateSlots() returned %d slots, want %d", len(slots), tt.wantCount)
			}
			if tt.wantCount == 0 {
				return
			}
			first := slots[0]
			if first.StartTime != tt.wantFirst.StartTime || first.EndTime != tt.wantFirst.EndTime {
				t.Errorf("first slot = %s-%s, want %s-%s", first.StartTime, first.EndTime, tt.wantFirst.StartTime, tt.wantFirst.EndTime)
			}
			last := slots[len(slots)-1]
			if last.StartTime != tt.wantLast.StartTime || last.EndTime != tt.wantLast.EndTime {
				t.Errorf("last slot = %s-%s, want %s-%s", last.StartTime, last.EndTime, tt.wantLast.StartTime, tt.wantLast.EndTime)
			}
		})
	}
}

func TestGenerateSlotsContiguous(t *testing.T) {
	slots, err := GenerateSlots("08:00", "18:00", 15)
	if err != nil {
		t.Fatalf("GenerateSlots() error = %v", err)
	}
	for i := 1; i < len(slots); i++ {
		if slots[i].StartTime != slots[i-1].EndTime {
			t.Errorf("slot %d starts at %s, previous ends at %s", i, slots[i].StartTime, slots[i-1].EndTime)
		}
	}
}

func TestGenerateSlotsInvalidInput(t *testing.T) {
	tests := []struct {
		name         string
		startTime    string
		endTime      string
		slotDuration int
	}{
		{"zero duration", "09:00", "12:00", 0},
		{"negative duration", "09:00", "12:00", -15},
		{"start after end", "12:00", "09:00", 30},
		{"start equals end", "09:00", "09:00", 30},
		{"bad start format", "9 AM", "12:00", 30},
		{"bad end format", "09:00", "noon", 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := GenerateSlots(tt.startTime, tt.endTime, tt.slotDuration); err == nil {
				t.Error("GenerateSlots() expected error, got nil")
			}
		})
	}
}
