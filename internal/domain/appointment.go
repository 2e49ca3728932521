package domain

import (
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// allowedTransitions is the explicit appointment lifecycle. Completed and
// cancelled are terminal.
var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending:   {AppointmentStatusConfirmed, AppointmentStatusCancelled},
	AppointmentStatusConfirmed: {AppointmentStatusCompleted, AppointmentStatusCancelled},
}

func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsFinal reports whether no further transitions are possible.
func (s AppointmentStatus) IsFinal() bool {
	return len(allowedTransitions[s]) == 0
}

type Appointment struct {
	ID                 int64             `json:"id"`
	PatientID          int64             `json:"patient_id"`
	DoctorID           int64             `json:"doctor_id"`
	ServiceID          *int64            `json:"service_id,omitempty"`
	AppointmentTime    time.Time         `json:"appointment_time"`
	Status             AppointmentStatus `json:"status"`
	CancellationReason *string           `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`

	PatientName  string `json:"patient_name,omitempty"`
	PatientPhone string `json:"patient_phone,omitempty"`
	DoctorName   string `json:"doctor_name,omitempty"`
}

type CreateAppointmentDTO struct {
	DoctorID        int64     `json:"doctor_id" binding:"required"`
	ServiceID       *int64    `json:"service_id"`
	AppointmentTime time.Time `json:"appointment_time" binding:"required"`
}

type UpdateAppointmentStatusDTO struct {
	Status AppointmentStatus `json:"status" binding:"required,oneof=pending confirmed completed cancelled"`
}

type CancelAppointmentDTO struct {
	Reason string `json:"reason" binding:"required"`
}

type AppointmentFilter struct {
	PatientID     *int64             `json:"patient_id"`
	DoctorID      *int64             `json:"doctor_id"`
	Status        *AppointmentStatus `json:"status"`
	ExcludeStatus *AppointmentStatus `json:"exclude_status"`
	StartDate     *time.Time         `json:"start_date"`
	EndDate       *time.Time         `json:"end_date"`
	Limit         int                `json:"limit"`
	Offset        int                `json:"offset"`
}
