package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"medbook/internal/domain"
)

type ScheduleRepo struct {
	db *pgxpool.Pool
}

func NewScheduleRepository(db *pgxpool.Pool) *ScheduleRepo {
	return &ScheduleRepo{
		db: db,
	}
}

func (r *ScheduleRepo) Create(ctx context.Context, shift domain.Shift) (int64, error) {
	query := `
		INSERT INTO shifts (doctor_id, week_start, day_of_week, start_time, end_time, slot_duration, is_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		shift.DoctorID,
		shift.WeekStart,
		shift.DayOfWeek,
		shift.StartTime,
		shift.EndTime,
		shift.SlotDuration,
		shift.IsAvailable,
		time.Now(),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания смены: %w", err)
	}

	return id, nil
}

func (r *ScheduleRepo) GetByID(ctx context.Context, id int64) (*domain.Shift, error) {
	query := `
		SELECT id, doctor_id, week_start, day_of_week, start_time, end_time, slot_duration, is_available, created_at, updated_at
		FROM shifts
		WHERE id = $1
	`

	var shift domain.Shift
	err := r.db.QueryRow(ctx, query, id).Scan(
		&shift.ID,
		&shift.DoctorID,
		&shift.WeekStart,
		&shift.DayOfWeek,
		&shift.StartTime,
		&shift.EndTime,
		&shift.SlotDuration,
		&shift.IsAvailable,
		&shift.CreatedAt,
		&shift.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения смены: %w", err)
	}

	return &shift, nil
}

func (r *ScheduleRepo) Update(ctx context.Context, shift domain.Shift) error {
	query := `
		UPDATE shifts
		SET start_time = $1, end_time = $2, slot_duration = $3, is_available = $4, updated_at = $5
		WHERE id = $6
	`

	_, err := r.db.Exec(ctx, query,
		shift.StartTime,
		shift.EndTime,
		shift.SlotDuration,
		shift.IsAvailable,
		time.Now(),
		shift.ID,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления смены: %w", err)
	}

	return nil
}

func (r *ScheduleRepo) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM shifts WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления смены: %w", err)
	}

	return nil
}

func (r *ScheduleRepo) List(ctx context.Context, filter domain.ShiftFilter) ([]domain.Shift, int, error) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filter.DoctorID != nil {
		conditions = append(conditions, fmt.Sprintf("doctor_id = $%d", argCount))
		args = append(args, *filter.DoctorID)
		argCount++
	}

	if filter.WeekStart != nil {
		conditions = append(conditions, fmt.Sprintf("week_start = $%d", argCount))
		args = append(args, *filter.WeekStart)
		argCount++
	}

	if filter.DayOfWeek != nil {
		conditions = append(conditions, fmt.Sprintf("day_of_week = $%d", argCount))
		args = append(args, *filter.DayOfWeek)
		argCount++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM shifts" + whereClause
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета смен: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, doctor_id, week_start, day_of_week, start_time, end_time, slot_duration, is_available, created_at, updated_at
		FROM shifts
		%s
		ORDER BY week_start, day_of_week, start_time
		LIMIT $%d OFFSET $%d
	`, whereClause, argCount, argCount+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка смен: %w", err)
	}
	defer rows.Close()

	shifts, err := scanShifts(rows)
	if err != nil {
		return nil, 0, err
	}

	return shifts, total, nil
}

func (r *ScheduleRepo) GetForDay(ctx context.Context, doctorID int64, weekStart time.Time, dayOfWeek int) ([]domain.Shift, error) {
	query := `
		SELECT id, doctor_id, week_start, day_of_week, start_time, end_time, slot_duration, is_available, created_at, updated_at
		FROM shifts
		WHERE doctor_id = $1 AND week_start = $2 AND day_of_week = $3 AND is_available = true
		ORDER BY start_time
	`

	rows, err := r.db.Query(ctx, query, doctorID, weekStart, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения смен на день: %w", err)
	}
	defer rows.Close()

	return scanShifts(rows)
}

func scanShifts(rows pgx.Rows) ([]domain.Shift, error) {
	shifts := make([]domain.Shift, 0)
	for rows.Next() {
		var shift domain.Shift
		if err := rows.Scan(
			&shift.ID,
			&shift.DoctorID,
			&shift.WeekStart,
			&shift.DayOfWeek,
			&shift.StartTime,
			&shift.EndTime,
			&shift.SlotDuration,
			&shift.IsAvailable,
			&shift.CreatedAt,
			&shift.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования смены: %w", err)
		}
		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return shifts, nil
}
