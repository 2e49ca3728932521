package domain

import (
	"time"
)

// MedicalService is an entry of the clinic's service catalog managed by admins.
type MedicalService struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	DurationMin int       `json:"duration_min"`
	SpecialtyID *int64    `json:"specialty_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateMedicalServiceDTO struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	DurationMin int     `json:"duration_min" binding:"required,gt=0"`
	SpecialtyID *int64  `json:"specialty_id"`
}

type UpdateMedicalServiceDTO struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,gt=0"`
	DurationMin *int     `json:"duration_min" binding:"omitempty,gt=0"`
	SpecialtyID *int64   `json:"specialty_id"`
}

type MedicalServiceFilter struct {
	SpecialtyID *int64 `json:"specialty_id"`
	Limit       int    `json:"limit"`
	Offset      int    `json:"offset"`
}
