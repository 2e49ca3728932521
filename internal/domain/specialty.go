package domain

import (
	"time"
)

type Specialty struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateSpecialtyDTO struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateSpecialtyDTO struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type SpecialtyFilter struct {
	Name   *string `json:"name"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}
