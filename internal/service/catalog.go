package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"medbook/internal/domain"
	"medbook/internal/repository"
)

type CatalogServiceImpl struct {
	repo          repository.CatalogRepository
	specialtyRepo repository.SpecialtyRepository
	logger        *zap.Logger
}

func NewCatalogService(repo repository.CatalogRepository, specialtyRepo repository.SpecialtyRepository, logger *zap.Logger) *CatalogServiceImpl {
	return &CatalogServiceImpl{
		repo:          repo,
		specialtyRepo: specialtyRepo,
		logger:        logger,
	}
}

func (s *CatalogServiceImpl) Create(ctx context.Context, dto domain.CreateMedicalServiceDTO) (int64, error) {
	if dto.SpecialtyID != nil {
		if _, err := s.specialtyRepo.GetByID(ctx, *dto.SpecialtyID); err != nil {
			return 0, errors.New("специальность не найдена")
		}
	}

	id, err := s.repo.Create(ctx, dto)
	if err != nil {
		s.logger.Error("ошибка создания услуги", zap.Error(err))
		return 0, errors.New("ошибка создания услуги")
	}

	return id, nil
}

func (s *CatalogServiceImpl) GetByID(ctx context.Context, id int64) (*domain.MedicalService, error) {
	service, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		s.logger.Error("ошибка получения услуги", zap.Int64("serviceId", id), zap.Error(err))
		return nil, errors.New("ошибка получения услуги")
	}

	return service, nil
}

func (s *CatalogServiceImpl) Update(ctx context.Context, id int64, dto domain.UpdateMedicalServiceDTO) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return domain.ErrNotFound
	}

	if dto.SpecialtyID != nil {
		if _, err := s.specialtyRepo.GetByID(ctx, *dto.SpecialtyID); err != nil {
			return errors.New("специальность не найдена")
		}
	}

	if err := s.repo.Update(ctx, id, dto); err != nil {
		s.logger.Error("ошибка обновления услуги", zap.Int64("serviceId", id), zap.Error(err))
		return errors.New("ошибка обновления услуги")
	}

	return nil
}

func (s *CatalogServiceImpl) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return domain.ErrNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("ошибка удаления услуги", zap.Int64("serviceId", id), zap.Error(err))
		return errors.New("ошибка удаления услуги")
	}

	return nil
}

func (s *CatalogServiceImpl) List(ctx context.Context, filter domain.MedicalServiceFilter) ([]domain.MedicalService, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	services, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения каталога услуг", zap.Error(err))
		return nil, 0, errors.New("ошибка получения каталога услуг")
	}

	return services, total, nil
}
