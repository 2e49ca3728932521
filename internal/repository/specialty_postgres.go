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

type SpecialtyRepo struct {
	db *pgxpool.Pool
}

func NewSpecialtyRepository(db *pgxpool.Pool) *SpecialtyRepo {
	return &SpecialtyRepo{
		db: db,
	}
}

func (r *SpecialtyRepo) Create(ctx context.Context, dto domain.CreateSpecialtyDTO) (int64, error) {
	query := `
		INSERT INTO specialties (name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query, dto.Name, dto.Description, time.Now()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания специальности: %w", err)
	}

	return id, nil
}

func (r *SpecialtyRepo) GetByID(ctx context.Context, id int64) (*domain.Specialty, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM specialties
		WHERE id = $1
	`

	var specialty domain.Specialty
	err := r.db.QueryRow(ctx, query, id).Scan(
		&specialty.ID,
		&specialty.Name,
		&specialty.Description,
		&specialty.CreatedAt,
		&specialty.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения специальности: %w", err)
	}

	return &specialty, nil
}

func (r *SpecialtyRepo) Update(ctx context.Context, id int64, dto domain.UpdateSpecialtyDTO) error {
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

	if len(updateFields) == 0 {
		return nil
	}

	updateFields = append(updateFields, fmt.Sprintf("updated_at = $%d", argCount))
	args = append(args, time.Now())
	argCount++

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE specialties
		SET %s
		WHERE id = $%d
	`, strings.Join(updateFields, ", "), argCount)

	_, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления специальности: %w", err)
	}

	return nil
}

func (r *SpecialtyRepo) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM specialties WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления специальности: %w", err)
	}

	return nil
}

func (r *SpecialtyRepo) List(ctx context.Context, filter domain.SpecialtyFilter) ([]domain.Specialty, int, error) {
	var conditions []string
	var args []interface{}
	argCount := 1

	if filter.Name != nil {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argCount))
		args = append(args, "%"+*filter.Name+"%")
		argCount++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM specialties" + whereClause
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета специальностей: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, description, created_at, updated_at
		FROM specialties
		%s
		ORDER BY name
		LIMIT $%d OFFSET $%d
	`, whereClause, argCount, argCount+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка специальностей: %w", err)
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
			return nil, 0, fmt.Errorf("ошибка сканирования специальности: %w", err)
		}
		specialties = append(specialties, specialty)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return specialties, total, nil
}
