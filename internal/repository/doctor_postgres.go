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

type DoctorRepo struct {
	db *pgxpool.Pool
}

func NewDoctorRepository(db *pgxpool.Pool) *DoctorRepo {
	return &DoctorRepo{
		db: db,
	}
}

func (r *DoctorRepo) Create(ctx context.Context, userID int64, dto domain.CreateDoctorDTO) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO doctors (user_id, bio, education, experience_years, consultation_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id
	`

	var id int64
	err = tx.QueryRow(ctx, query,
		userID,
		dto.Bio,
		dto.Education,
		dto.ExperienceYears,
		dto.ConsultationPrice,
		time.Now(),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания профиля врача: %w", err)
	}

	for _, specialtyID := range dto.SpecialtyIDs {
		_, err = tx.Exec(ctx,
			`INSERT INTO doctor_specialties (doctor_id, specialty_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			id, specialtyID,
		)
		if err != nil {
			return 0, fmt.Errorf("ошибка привязки специальности: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("ошибка при коммите транзакции: %w", err)
	}

	return id, nil
}

const doctorSelect = `
	SELECT d.id, d.user_id, d.bio, d.education, d.experience_years, d.consultation_price, d.photo_url, d.created_at, d.updated_at,
	       u.first_name, u.last_name, u.middle_name
	FROM doctors d
	JOIN users u ON d.user_id = u.id
`

func (r *DoctorRepo) GetByID(ctx context.Context, id int64) (*domain.Doctor, error) {
	return r.getOne(ctx, doctorSelect+" WHERE d.id = $1", id)
}

func (r *DoctorRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Doctor, error) {
	return r.getOne(ctx, doctorSelect+" WHERE d.user_id = $1", userID)
}

func (r *DoctorRepo) getOne(ctx context.Context, query string, arg interface{}) (*domain.Doctor, error) {
	var doctor domain.Doctor
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&doctor.ID,
		&doctor.UserID,
		&doctor.Bio,
		&doctor.Education,
		&doctor.ExperienceYears,
		&doctor.ConsultationPrice,
		&doctor.PhotoURL,
		&doctor.CreatedAt,
		&doctor.UpdatedAt,
		&doctor.FirstName,
		&doctor.LastName,
		&doctor.MiddleName,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения профиля врача: %w", err)
	}

	specialties, err := r.GetSpecialtiesByDoctorID(ctx, doctor.ID)
	if err != nil {
		return nil, err
	}
	doctor.Specialties = specialties

	return &doctor, nil
}

func (r *DoctorRepo) Update(ctx context.Context, id int64, dto domain.UpdateDoctorDTO) error {
	var updateFields []string
	var args []interface{}

	argCount := 1

	if dto.Bio != nil {
		updateFields = append(updateFields, fmt.Sprintf("bio = $%d", argCount))
		args = append(args, *dto.Bio)
		argCount++
	}

	if dto.Education != nil {
		updateFields = append(updateFields, fmt.Sprintf("education = $%d", argCount))
		args = append(args, *dto.Education)
		argCount++
	}

	if dto.ExperienceYears != nil {
		updateFields = append(updateFields, fmt.Sprintf("experience_years = $%d", argCount))
		args = append(args, *dto.ExperienceYears)
		argCount++
	}

	if dto.ConsultationPrice != nil {
		updateFields = append(updateFields, fmt.Sprintf("consultation_price = $%d", argCount))
		args = append(args, *dto.ConsultationPrice)
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
		UPDATE doctors
		SET %s
		WHERE id = $%d
	`, strings.Join(updateFields, ", "), argCount)

	_, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления профиля врача: %w", err)
	}

	return nil
}

func (r *DoctorRepo) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM doctors WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления профиля врача: %w", err)
	}

	return nil
}

func (r *DoctorRepo) List(ctx context.Context, filter domain.DoctorFilter) ([]domain.Doctor, int, error) {
	var conditions []string
	var args []interface{}
	argCount := 1

	joinClause := ""
	if filter.SpecialtyID != nil {
		joinClause = " JOIN doctor_specialties ds ON ds.doctor_id = d.id"
		conditions = append(conditions, fmt.Sprintf("ds.specialty_id = $%d", argCount))
		args = append(args, *filter.SpecialtyID)
		argCount++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(DISTINCT d.id) FROM doctors d" + joinClause + whereClause
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета врачей: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT d.id, d.user_id, d.bio, d.education, d.experience_years, d.consultation_price, d.photo_url, d.created_at, d.updated_at,
		       u.first_name, u.last_name, u.middle_name
		FROM doctors d
		JOIN users u ON d.user_id = u.id
		%s
		%s
		ORDER BY d.id
		LIMIT $%d OFFSET $%d
	`, joinClause, whereClause, argCount, argCount+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка врачей: %w", err)
	}
	defer rows.Close()

	doctors := make([]domain.Doctor, 0)
	for rows.Next() {
		var doctor domain.Doctor
		if err := rows.Scan(
			&doctor.ID,
			&doctor.UserID,
			&doctor.Bio,
			&doctor.Education,
			&doctor.ExperienceYears,
			&doctor.ConsultationPrice,
			&doctor.PhotoURL,
			&doctor.CreatedAt,
			&doctor.UpdatedAt,
			&doctor.FirstName,
			&doctor.LastName,
			&doctor.MiddleName,
		); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования врача: %w", err)
		}
		doctors = append(doctors, doctor)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	for i := range doctors {
		specialties, err := r.GetSpecialtiesByDoctorID(ctx, doctors[i].ID)
		if err != nil {
			return nil, 0, err
		}
		doctors[i].Specialties = specialties
	}

	return doctors, total, nil
}

func (r *DoctorRepo) UpdatePhoto(ctx context.Context, id int64, photoURL *string) error {
	query := `
		UPDATE doctors
		SET photo_url = $1, updated_at = $2
		WHERE id = $3
	`

	_, err := r.db.Exec(ctx, query, photoURL, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка обновления фото врача: %w", err)
	}

	return nil
}

func (r *DoctorRepo) AddSpecialty(ctx context.Context, doctorID, specialtyID int64) error {
	query := `INSERT INTO doctor_specialties (doctor_id, specialty_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	_, err := r.db.Exec(ctx, query, doctorID, specialtyID)
	if err != nil {
		return fmt.Errorf("ошибка привязки специальности: %w", err)
	}

	return nil
}

func (r *DoctorRepo) RemoveSpecialty(ctx context.Context, doctorID, specialtyID int64) error {
	query := `DELETE FROM doctor_specialties WHERE doctor_id = $1 AND specialty_id = $2`

	_, err := r.db.Exec(ctx, query, doctorID, specialtyID)
	if err != nil {
		return fmt.Errorf("ошибка отвязки специальности: %w", err)
	}

	return nil
}

func (r *DoctorRepo) GetSpecialtiesByDoctorID(ctx context.Context, doctorID int64) ([]domain.Specialty, error) {
	query := `
		SELECT s.id, s.name, s.description, s.created_at, s.updated_at
		FROM specialties s
		JOIN doctor_specialties ds ON ds.specialty_id = s.id
		WHERE ds.doctor_id = $1
		ORDER BY s.name
	`

	rows, err := r.db.Query(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения специальностей врача: %w", err)
	}
	defer rows.Close()

	specialties := make([]domain.Specialty, 0)
	for rows.Next() {
		var specialty domain.Specialty
		if err := rows.Scan(
			&specialty.ID,
			&specialty.Name,
			&specialty.Description,
			&specialty.CreatedAt,
			&specialty.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования специальности: %w", err)
		}
		specialties = append(specialties, specialty)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return specialties, nil
}
