package domain

import (
	"time"
)

// MedicalRecord is written by a doctor after a completed appointment.
type MedicalRecord struct {
	ID            int64          `json:"id"`
	AppointmentID int64          `json:"appointment_id"`
	PatientID     int64          `json:"patient_id"`
	DoctorID      int64          `json:"doctor_id"`
	Diagnosis     string         `json:"diagnosis"`
	Notes         string         `json:"notes,omitempty"`
	AttachmentURL *string        `json:"attachment_url,omitempty"`
	Prescriptions []Prescription `json:"prescriptions,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type Prescription struct {
	ID              int64     `json:"id"`
	MedicalRecordID int64     `json:"medical_record_id"`
	Medication      string    `json:"medication"`
	Dosage          string    `json:"dosage"`
	Instructions    string    `json:"instructions,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type CreateMedicalRecordDTO struct {
	AppointmentID int64  `json:"appointment_id" binding:"required"`
	Diagnosis     string `json:"diagnosis" binding:"required"`
	Notes         string `json:"notes"`
}

type UpdateMedicalRecordDTO struct {
	Diagnosis *string `json:"diagnosis"`
	Notes     *string `json:"notes"`
}

type CreatePrescriptionDTO struct {
	Medication   string `json:"medication" binding:"required"`
	Dosage       string `json:"dosage" binding:"required"`
	Instructions string `json:"instructions"`
}

type MedicalRecordFilter struct {
	PatientID *int64 `json:"patient_id"`
	DoctorID  *int64 `json:"doctor_id"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
}
