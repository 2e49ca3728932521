package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"medbook/internal/domain"
)

type AppointmentRepo struct {
	db *pgxpool.Pool
}

func NewAppointmentRepository(db *pgxpool.Pool) *AppointmentRepo {
	return &AppointmentRepo{
		db: db,
	}
}

func (r *AppointmentRepo) Create(ctx context.Context, patientID int64, dto domain.CreateAppointmentDTO) (int64, error) {
	query := `
		INSERT INTO appointments (patient_id, doctor_id, service_id, appointment_time, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		patientID,
		dto.DoctorID,
		dto.ServiceID,
		dto.AppointmentTime,
		domain.AppointmentStatusPending,
		time.Now(),
	).Scan(&id)

	if err != nil {
		// Частичные уникальные индексы закрывают гонку двух одновременных
		// бронирований одного и того же слота или дня.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "appointments_doctor_slot_key":
				return 0, domain.ErrSlotTaken
			case "appointments_patient_day_key":
				return 0, domain.ErrPatientBusy
			}
		}
		return 0, fmt.Errorf("ошибка создания записи на прием: %w", err)
	}

	return id, nil
}

const appointmentSelect = `
	SELECT a.id, a.patient_id, a.doctor_id, a.service_id, a.appointment_time, a.status, a.cancellation_reason, a.created_at, a.updated_at,
	       p.first_name || ' ' || p.last_name, p.phone,
	       du.first_name || ' ' || du.last_name
	FROM appointments a
	JOIN users p ON a.patient_id = p.id
	JOIN doctors d ON a.doctor_id = d.id
	JOIN users du ON d.user_id = du.id
`

func (r *AppointmentRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	var appointment domain.Appointment
	err := r.db.QueryRow(ctx, appointmentSelect+" WHERE a.id = $1", id).Scan(
		&appointment.ID,
		&appointment.PatientID,
		&appointment.DoctorID,
		&appointment.ServiceID,
		&appointment.AppointmentTime,
		&appointment.Status,
		&appointment.CancellationReason,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
		&appointment.PatientName,
		&appointment.PatientPhone,
		&appointment.DoctorName,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения записи на прием: %w", err)
	}

	return &appointment, nil
}

func (r *AppointmentRepo) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus, reason *string) error {
	query := `
		UPDATE appointments
		SET status = $1, cancellation_reason = COALESCE($2, cancellation_reason), updated_at = $3
		WHERE id = $4
	`

	result, err := r.db.Exec(ctx, query, status, reason, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса записи: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *AppointmentRepo) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM appointments WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления записи на прием: %w", err)
	}

	return nil
}

func buildAppointmentFilter(filter domain.AppointmentFilter) (string, []interface{}, int) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filter.PatientID != nil {
		conditions = append(conditions, fmt.Sprintf("a.patient_id = $%d", argCount))
		args = append(args, *filter.PatientID)
		argCount++
	}

	if filter.DoctorID != nil {
		conditions = append(conditions, fmt.Sprintf("a.doctor_id = $%d", argCount))
		args = append(args, *filter.DoctorID)
		argCount++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", argCount))
		args = append(args, *filter.Status)
		argCount++
	}

	if filter.ExcludeStatus != nil {
		conditions = append(conditions, fmt.Sprintf("a.status <> $%d", argCount))
		args = append(args, *filter.ExcludeStatus)
		argCount++
	}

	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("a.appointment_time >= $%d", argCount))
		args = append(args, *filter.StartDate)
		argCount++
	}

	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("a.appointment_time < $%d", argCount))
		args = append(args, *filter.EndDate)
		argCount++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	return whereClause, args, argCount
}

func (r *AppointmentRepo) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	whereClause, args, argCount := buildAppointmentFilter(filter)

	query := fmt.Sprintf(`%s %s ORDER BY a.appointment_time DESC LIMIT $%d OFFSET $%d`,
		appointmentSelect, whereClause, argCount, argCount+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка записей: %w", err)
	}
	defer rows.Close()

	appointments := make([]domain.Appointment, 0)
	for rows.Next() {
		var appointment domain.Appointment
		if err := rows.Scan(
			&appointment.ID,
			&appointment.PatientID,
			&appointment.DoctorID,
			&appointment.ServiceID,
			&appointment.AppointmentTime,
			&appointment.Status,
			&appointment.CancellationReason,
			&appointment.CreatedAt,
			&appointment.UpdatedAt,
			&appointment.PatientName,
			&appointment.PatientPhone,
			&appointment.DoctorName,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи: %w", err)
		}
		appointments = append(appointments, appointment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return appointments, nil
}

func (r *AppointmentRepo) CountByFilter(ctx context.Context, filter domain.AppointmentFilter) (int, error) {
	whereClause, args, _ := buildAppointmentFilter(filter)

	var total int
	query := "SELECT COUNT(*) FROM appointments a" + whereClause
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("ошибка подсчета записей: %w", err)
	}

	return total, nil
}

func (r *AppointmentRepo) GetBookedTimes(ctx context.Context, doctorID int64, date time.Time) ([]time.Time, error) {
	query := `
		SELECT appointment_time
		FROM appointments
		WHERE doctor_id = $1
		  AND appointment_time >= $2
		  AND appointment_time < $3
		  AND status <> 'cancelled'
		ORDER BY appointment_time
	`

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	rows, err := r.db.Query(ctx, query, doctorID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("ошибка получения занятых слотов: %w", err)
	}
	defer rows.Close()

	times := make([]time.Time, 0)
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("ошибка сканирования времени слота: %w", err)
		}
		times = append(times, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return times, nil
}

func (r *AppointmentRepo) ExistsForPatientOnDate(ctx context.Context, patientID int64, date time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM appointments
			WHERE patient_id = $1
			  AND appointment_time >= $2
			  AND appointment_time < $3
			  AND status <> 'cancelled'
		)
	`

	dayStart, dayEnd := utcDayBounds(date)

	var exists bool
	if err := r.db.QueryRow(ctx, query, patientID, dayStart, dayEnd).Scan(&exists); err != nil {
		return false, fmt.Errorf("ошибка проверки записей пациента: %w", err)
	}

	return exists, nil
}

// utcDayBounds возвращает границы календарного дня по UTC. День здесь
// должен совпадать с днем в уникальном индексе appointments_patient_day_key,
// иначе предварительная проверка и констрейнт разойдутся около полуночи.
func utcDayBounds(t time.Time) (time.Time, time.Time) {
	utc := t.UTC()
	start := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
