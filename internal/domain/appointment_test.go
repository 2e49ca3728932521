package domain

import "testing"

func TestAppointmentStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from AppointmentStatus
		to   AppointmentStatus
		want bool
	}{
		{"pending to confirmed", AppointmentStatusPending, AppointmentStatusConfirmed, true},
		{"pending to cancelled", AppointmentStatusPending, AppointmentStatusCancelled, true},
		{"pending to completed", AppointmentStatusPending, AppointmentStatusCompleted, false},
		{"confirmed to completed", AppointmentStatusConfirmed, AppointmentStatusCompleted, true},
		{"confirmed to cancelled", AppointmentStatusConfirmed, AppointmentStatusCancelled, true},
		{"confirmed to pending", AppointmentStatusConfirmed, AppointmentStatusPending, false},
		{"completed to cancelled", AppointmentStatusCompleted, AppointmentStatusCancelled, false},
		{"cancelled to confirmed", AppointmentStatusCancelled, AppointmentStatusConfirmed, false},
		{"cancelled to pending", AppointmentStatusCancelled, AppointmentStatusPending, false},
		{"same status", AppointmentStatusPending, AppointmentStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestAppointmentStatusIsFinal(t *testing.T) {
	tests := []struct {
		status AppointmentStatus
		want   bool
	}{
		{AppointmentStatusPending, false},
		{AppointmentStatusConfirmed, false},
		{AppointmentStatusCompleted, true},
		{AppointmentStatusCancelled, true},
	}

	for _, tt := range tests {
		if got := tt.status.IsFinal(); got != tt.want {
			t.Errorf("IsFinal(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
