package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"medbook/internal/domain"
	"medbook/internal/repository"
)

type SpecialtyServiceImpl struct {
	repo   repository.SpecialtyRepository
	logger *zap.Logger
}

func NewSpecialtyService(repo repository.SpecialtyRepository, logger *zap.Logger) *SpecialtyServiceImpl {
	return &SpecialtyServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

func (s *SpecialtyServiceImpl) Create(ctx context.Context, dto domain.CreateSpecialtyDTO) (int64, error) {
	id, err := s.repo.Create(ctx, dto)
	if err != nil {
		s.logger.Error("ошибка создания специальности", zap.Error(err))
		return 0, errors.New("ошибка создания специальности")
	}

	return id, nil
}

func (s *SpecialtyServiceImpl) GetByID(ctx context.Context, id int64) (*domain.Specialty, error) {
	specialty, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		s.logger.Error("ошибка получения специальности", zap.Int64("specialtyId", id), zap.Error(err))
		return nil, errors.New("ошибка получения специальности")
	}

	return specialty, nil
}

func (s *SpecialtyServiceImpl) Update(ctx context.Context, id int64, dto domain.UpdateSpecialtyDTO) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return domain.ErrNotFound
	}

	if err := s.repo.Update(ctx, id, dto); err != nil {
		s.logger.Error("ошибка обновления специальности", zap.Int64("specialtyId", id), zap.Error(err))
		return errors.New("ошибка обновления специальности")
	}

	return nil
}

func (s *SpecialtyServiceImpl) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return domain.ErrNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("ошибка удаления специальности", zap.Int64("specialtyId", id), zap.Error(err))
		return errors.New("ошибка удаления специальности")
	}

	return nil
}

func (s *SpecialtyServiceImpl) List(ctx context.Context, filter domain.SpecialtyFilter) ([]domain.Specialty, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	specialties, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения списка специальностей", zap.Error(err))
		return nil, 0, errors.New("ошибка получения списка специальностей")
	}

	return specialties, total, nil
}
