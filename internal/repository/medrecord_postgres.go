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

type MedicalRecordRepo struct {
	db *pgxpool.Pool
}

func NewMedicalRecordRepository(db *pgxpool.Pool) *MedicalRecordRepo {
	return &MedicalRecordRepo{
		db: db,
	}
}

func (r *MedicalRecordRepo) Create(ctx context.Context, record domain.MedicalRecord) (int64, error) {
	query := `
		INSERT INTO medical_records (appointment_id, patient_id, doctor_id, diagnosis, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		record.AppointmentID,
		record.PatientID,
		record.DoctorID,
		record.Diagnosis,
		record.Notes,
		time.Now(),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания медицинской записи: %w", err)
	}

	return id, nil
}

func (r *MedicalRecordRepo) GetByID(ctx context.Context, id int64) (*domain.MedicalRecord, error) {
	query := `
		SELECT id, appointment_id, patient_id, doctor_id, diagnosis, notes, attachment_url, created_at, updated_at
		FROM medical_records
		WHERE id = $1
	`

	var record domain.MedicalRecord
	err := r.db.QueryRow(ctx, query, id).Scan(
		&record.ID,
		&record.AppointmentID,
		&record.PatientID,
		&record.DoctorID,
		&record.Diagnosis,
		&record.Notes,
		&record.AttachmentURL,
		&record.CreatedAt,
		&record.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения медицинской записи: %w", err)
	}

	prescriptions, err := r.GetPrescriptionsByRecordID(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	record.Prescriptions = prescriptions

	return &record, nil
}

func (r *MedicalRecordRepo) Update(ctx context.Context, id int64, dto domain.UpdateMedicalRecordDTO) error {
	var updateFields []string
	var args []interface{}

	argCount := 1

	if dto.Diagnosis != nil {
		updateFields = append(updateFields, fmt.Sprintf("diagnosis = $%d", argCount))
		args = append(args, *dto.Diagnosis)
		argCount++
	}

	if dto.Notes != nil {
		updateFields = append(updateFields, fmt.Sprintf("notes = $%d", argCount))
		args = append(args, *dto.Notes)
		argCount++
	}

	if len(updateFields) == 0 {
		return nil
	}

	updateFields = append(updateFields, fmt.Sprintf("updated_at = $%d", argCount))
	args = append(args, time.Now())
	argCount++

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE medical_records
		SET %s
		WHERE id = $%d
	`, strings.Join(updateFields, ", "), argCount)

	_, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления медицинской записи: %w", err)
	}

	return nil
}

func (r *MedicalRecordRepo) List(ctx context.Context, filter domain.MedicalRecordFilter) ([]domain.MedicalRecord, int, error) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filter.PatientID != nil {
		conditions = append(conditions, fmt.Sprintf("patient_id = $%d", argCount))
		args = append(args, *filter.PatientID)
		argCount++
	}

	if filter.DoctorID != nil {
		conditions = append(conditions, fmt.Sprintf("doctor_id = $%d", argCount))
		args = append(args, *filter.DoctorID)
		argCount++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM medical_records" + whereClause
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета медицинских записей: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, appointment_id, patient_id, doctor_id, diagnosis, notes, attachment_url, created_at, updated_at
		FROM medical_records
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argCount, argCount+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка медицинских записей: %w", err)
	}
	defer rows.Close()

	records := make([]domain.MedicalRecord, 0)
	for rows.Next() {
		var record domain.MedicalRecord
		if err := rows.Scan(
			&record.ID,
			&record.AppointmentID,
			&record.PatientID,
			&record.DoctorID,
			&record.Diagnosis,
			&record.Notes,
			&record.AttachmentURL,
			&record.CreatedAt,
			&record.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования медицинской записи: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	for i := range records {
		prescriptions, err := r.GetPrescriptionsByRecordID(ctx, records[i].ID)
		if err != nil {
			return nil, 0, err
		}
		records[i].Prescriptions = prescriptions
	}

	return records, total, nil
}

func (r *MedicalRecordRepo) SetAttachment(ctx context.Context, id int64, attachmentURL *string) error {
	query := `
		UPDATE medical_records
		SET attachment_url = $1, updated_at = $2
		WHERE id = $3
	`

	_, err := r.db.Exec(ctx, query, attachmentURL, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка обновления вложения: %w", err)
	}

	return nil
}

func (r *MedicalRecordRepo) AddPrescription(ctx context.Context, recordID int64, dto domain.CreatePrescriptionDTO) (int64, error) {
	query := `
		INSERT INTO prescriptions (medical_record_id, medication, dosage, instructions, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		recordID,
		dto.Medication,
		dto.Dosage,
		dto.Instructions,
		time.Now(),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания назначения: %w", err)
	}

	return id, nil
}

func (r *MedicalRecordRepo) GetPrescriptionsByRecordID(ctx context.Context, recordID int64) ([]domain.Prescription, error) {
	query := `
		SELECT id, medical_record_id, medication, dosage, instructions, created_at
		FROM prescriptions
		WHERE medical_record_id = $1
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения назначений: %w", err)
	}
	defer rows.Close()

	prescriptions := make([]domain.Prescription, 0)
	for rows.Next() {
		var prescription domain.Prescription
		if err := rows.Scan(
			&prescription.ID,
			&prescription.MedicalRecordID,
			&prescription.Medication,
			&prescription.Dosage,
			&prescription.Instructions,
			&prescription.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования назначения: %w", err)
		}
		prescriptions = append(prescriptions, prescription)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return prescriptions, nil
}

func (r *MedicalRecordRepo) DeletePrescription(ctx context.Context, id int64) error {
	query := `DELETE FROM prescriptions WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления назначения: %w", err)
	}

	return nil
}
