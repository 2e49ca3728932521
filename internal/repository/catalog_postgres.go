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

type CatalogRepo struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepo {
	return &CatalogRepo{
		db: db,
	}
}

func (r *CatalogRepo) Create(ctx context.Context, dto domain.CreateMedicalServiceDTO) (int64, error) {
	query := `
		INSERT INTO services (name, description, price, duration_min, specialty_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		dto.Name,
		dto.Description,
		dto.Price,
		dto.DurationMin,
		dto.SpecialtyID,
		time.Now(),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания услуги: %w", err)
	}

	return id, nil
}

func (r *CatalogRepo) GetByID(ctx context.Context, id int64) (*domain.MedicalService, error) {
	query := `
		SELECT id, name, description, price, duration_min, specialty_id, created_at, updated_at
		FROM services
		WHERE id = $1
	`

	var service domain.MedicalService
	err := r.db.QueryRow(ctx, query, id).Scan(
		&service.ID,
		&service.Name,
		&service.Description,
		&service.Price,
		&service.DurationMin,
		&service.SpecialtyID,
		&service.CreatedAt,
		&service.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения услуги: %w", err)
	}

	return &service, nil
}

func (r *CatalogRepo) Update(ctx context.Context, id int64, dto domain.UpdateMedicalServiceDTO) error {
	var updateFields []string
	var args []interface{}

	argCount := 1

	if dto.Name != nil {
		updateFields = append(updateFields, fmt.Sprintf("name = $%d", argCount))
		args = append(args, *dto.Name)
		argCount++
	}

	if dto.Description != nil {
		updateFields = append(updateFields, fmt.Sprintf("description = $%d", argCount))
		args = append(args, *dto.Description)
		argCount++
	}

	if dto.Price != nil {
		updateFields = append(updateFields, fmt.Sprintf("price = $%d", argCount))
		args = append(args, *dto.Price)
		argCount++
	}

	if dto.DurationMin != nil {
		updateFields = append(updateFields, fmt.Sprintf("duration_min = $%d", argCount))
		args = append(args, *dto.DurationMin)
		argCount++
	}

	if dto.SpecialtyID != nil {
		updateFields = append(updateFields, fmt.Sprintf("specialty_id = $%d", argCount))
		args = append(args, *dto.SpecialtyID)
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
		UPDATE services
		SET %s
		WHERE id = $%d
	`, strings.Join(updateFields, ", "), argCount)

	_, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления услуги: %w", err)
	}

	return nil
}

func (r *CatalogRepo) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM services WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления услуги: %w", err)
	}

	return nil
}

func (r *CatalogRepo) List(ctx context.Context, filter domain.MedicalServiceFilter) ([]domain.MedicalService, int, error) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filter.SpecialtyID != nil {
		conditions = append(conditions, fmt.Sprintf("specialty_id = $%d", argCount))
		args = append(args, *filter.SpecialtyID)
		argCount++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM services" + whereClause
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета услуг: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, description, price, duration_min, specialty_id, created_at, updated_at
		FROM services
		%s
		ORDER BY name
		LIMIT $%d OFFSET $%d
	`, whereClause, argCount, argCount+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка услуг: %w", err)
	}
	defer rows.Close()

	services := make([]domain.MedicalService, 0)
	for rows.Next() {
		var service domain.MedicalService
		if err := rows.Scan(
			&service.ID,
			&service.Name,
			&service.Description,
			&service.Price,
			&service.DurationMin,
			&service.SpecialtyID,
			&service.CreatedAt,
			&service.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования услуги: %w", err)
		}
		services = append(services, service)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return services, total, nil
}
