package domain

import (
	"time"
)

// Doctor is the professional profile attached to a user with the doctor role.
type Doctor struct {
	ID                int64       `json:"id"`
	UserID            int64       `json:"user_id"`
	Bio               string      `json:"bio,omitempty"`
	Education         string      `json:"education,omitempty"`
	ExperienceYears   int         `json:"experience_years"`
	ConsultationPrice float64     `json:"consultation_price"`
	PhotoURL          *string     `json:"photo_url,omitempty"`
	Specialties       []Specialty `json:"specialties,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`

	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	MiddleName string `json:"middle_name,omitempty"`
}

type CreateDoctorDTO struct {
	Bio               string  `json:"bio"`
	Education         string  `json:"education"`
	ExperienceYears   int     `json:"experience_years" binding:"gte=0"`
	ConsultationPrice float64 `json:"consultation_price" binding:"required,gt=0"`
	SpecialtyIDs      []int64 `json:"specialty_ids"`
}

type UpdateDoctorDTO struct {
	Bio               *string  `json:"bio"`
	Education         *string  `json:"education"`
	ExperienceYears   *int     `json:"experience_years" binding:"omitempty,gte=0"`
	ConsultationPrice *float64 `json:"consultation_price" binding:"omitempty,gt=0"`
}

type DoctorFilter struct {
	SpecialtyID *int64 `json:"specialty_id"`
	Limit       int    `json:"limit"`
	Offset      int    `json:"offset"`
}
