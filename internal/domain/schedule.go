package domain

import (
	"time"
)

// Shift is a doctor's declared working interval on one day of a specific week.
// DayOfWeek follows time.Weekday: 0 is Sunday, 6 is Saturday.
type Shift struct {
	ID           int64     `json:"id"`
	DoctorID     int64     `json:"doctor_id"`
	WeekStart    time.Time `json:"week_start"`
	DayOfWeek    int       `json:"day_of_week"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	SlotDuration int       `json:"slot_duration"`
	IsAvailable  bool      `json:"is_available"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Slot is a bookable sub-interval of a shift. Slots are derived on read and
// never persisted.
type Slot struct {
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	DateTime  time.Time `json:"date_time"`
	IsBooked  bool      `json:"is_booked"`
}

type CreateShiftDTO struct {
	WeekStart    string `json:"week_start" binding:"required"`
	DayOfWeek    int    `json:"day_of_week" binding:"min=0,max=6"`
	StartTime    string `json:"start_time" binding:"required"`
	EndTime      string `json:"end_time" binding:"required"`
	SlotDuration int    `json:"slot_duration" binding:"required"`
	IsAvailable  *bool  `json:"is_available"`
}

type UpdateShiftDTO struct {
	StartTime    *string `json:"start_time"`
	EndTime      *string `json:"end_time"`
	SlotDuration *int    `json:"slot_duration"`
	IsAvailable  *bool   `json:"is_available"`
}

type ShiftFilter struct {
	DoctorID  *int64     `json:"doctor_id"`
	WeekStart *time.Time `json:"week_start"`
	DayOfWeek *int       `json:"day_of_week"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}

// WeekStart returns the Monday of the ISO week the date belongs to,
// truncated to midnight in the date's location.
func WeekStart(date time.Time) time.Time {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	wd := int(day.Weekday())
	if wd == 0 {
		wd = 7
	}
	return day.AddDate(0, 0, 1-wd)
}
