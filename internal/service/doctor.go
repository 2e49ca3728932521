package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"medbook/internal/domain"
	"medbook/internal/repository"
	"medbook/internal/storage"
)

type DoctorServiceImpl struct {
	repo          repository.DoctorRepository
	userRepo      repository.UserRepository
	specialtyRepo repository.SpecialtyRepository
	fileStorage   storage.FileStorage
	logger        *zap.Logger
}

func NewDoctorService(repo repository.DoctorRepository, userRepo repository.UserRepository, specialtyRepo repository.SpecialtyRepository, fileStorage storage.FileStorage, logger *zap.Logger) *DoctorServiceImpl {
	return &DoctorServiceImpl{
		repo:          repo,
		userRepo:      userRepo,
		specialtyRepo: specialtyRepo,
		fileStorage:   fileStorage,
		logger:        logger,
	}
}

func (s *DoctorServiceImpl) Create(ctx context.Context, userID int64, dto domain.CreateDoctorDTO) (int64, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, errors.New("пользователь не найден")
	}

	if user.Role != domain.UserRoleDoctor {
		return 0, errors.New("профиль врача можно создать только для пользователя с ролью врача")
	}

	if existing, err := s.repo.GetByUserID(ctx, userID); err == nil && existing != nil {
		return 0, errors.New("профиль врача уже существует")
	}

	for _, specialtyID := range dto.SpecialtyIDs {
		if _, err := s.specialtyRepo.GetByID(ctx, specialtyID); err != nil {
			return 0, fmt.Errorf("специальность %d не найдена", specialtyID)
		}
	}

	id, err := s.repo.Create(ctx, userID, dto)
	if err != nil {
		s.logger.Error("ошибка создания профиля врача", zap.Int64("userId", userID), zap.Error(err))
		return 0, errors.New("ошибка создания профиля врача")
	}

	return id, nil
}

func (s *DoctorServiceImpl) GetByID(ctx context.Context, id int64) (*domain.Doctor, error) {
	doctor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		s.logger.Error("ошибка получения профиля врача", zap.Int64("doctorId", id), zap.Error(err))
		return nil, errors.New("ошибка получения профиля врача")
	}

	return doctor, nil
}

func (s *DoctorServiceImpl) GetByUserID(ctx context.Context, userID int64) (*domain.Doctor, error) {
	doctor, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		s.logger.Error("ошибка получения профиля врача", zap.Int64("userId", userID), zap.Error(err))
		return nil, errors.New("ошибка получения профиля врача")
	}

	return doctor, nil
}

func (s *DoctorServiceImpl) Update(ctx context.Context, id int64, dto domain.UpdateDoctorDTO) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return domain.ErrNotFound
	}

	if err := s.repo.Update(ctx, id, dto); err != nil {
		s.logger.Error("ошибка обновления профиля врача", zap.Int64("doctorId", id), zap.Error(err))
		return errors.New("ошибка обновления профиля врача")
	}

	return nil
}

func (s *DoctorServiceImpl) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return domain.ErrNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("ошибка удаления профиля врача", zap.Int64("doctorId", id), zap.Error(err))
		return errors.New("ошибка удаления профиля врача")
	}

	return nil
}

func (s *DoctorServiceImpl) List(ctx context.Context, filter domain.DoctorFilter) ([]domain.Doctor, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	doctors, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения списка врачей", zap.Error(err))
		return nil, 0, errors.New("ошибка получения списка врачей")
	}

	return doctors, total, nil
}

func (s *DoctorServiceImpl) UploadProfilePhoto(ctx context.Context, doctorID int64, photo []byte, filename string) error {
	doctor, err := s.repo.GetByID(ctx, doctorID)
	if err != nil {
		return domain.ErrNotFound
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return errors.New("допустимы только изображения jpg и png")
	}

	objectName := fmt.Sprintf("doctors/%d/%s%s", doctorID, uuid.New().String(), ext)
	fileURL, err := s.fileStorage.UploadFile(ctx, photo, objectName)
	if err != nil {
		s.logger.Error("ошибка загрузки фото", zap.Int64("doctorId", doctorID), zap.Error(err))
		return errors.New("ошибка загрузки фото")
	}

	if doctor.PhotoURL != nil {
		if err := s.fileStorage.DeleteFile(ctx, *doctor.PhotoURL); err != nil {
			s.logger.Warn("ошибка удаления старого фото", zap.Error(err))
		}
	}

	if err := s.repo.UpdatePhoto(ctx, doctorID, &fileURL); err != nil {
		s.logger.Error("ошибка сохранения ссылки на фото", zap.Int64("doctorId", doctorID), zap.Error(err))
		return errors.New("ошибка загрузки фото")
	}

	return nil
}

func (s *DoctorServiceImpl) DeleteProfilePhoto(ctx context.Context, doctorID int64) error {
	doctor, err := s.repo.GetByID(ctx, doctorID)
	if err != nil {
		return domain.ErrNotFound
	}

	if doctor.PhotoURL == nil {
		return nil
	}

	if err := s.fileStorage.DeleteFile(ctx, *doctor.PhotoURL); err != nil {
		s.logger.Warn("ошибка удаления фото из хранилища", zap.Error(err))
	}

	if err := s.repo.UpdatePhoto(ctx, doctorID, nil); err != nil {
		s.logger.Error("ошибка очистки ссылки на фото", zap.Int64("doctorId", doctorID), zap.Error(err))
		return errors.New("ошибка удаления фото")
	}

	return nil
}

func (s *DoctorServiceImpl) AddSpecialty(ctx context.Context, doctorID, specialtyID int64) error {
	if _, err := s.repo.GetByID(ctx, doctorID); err != nil {
		return domain.ErrNotFound
	}

	if _, err := s.specialtyRepo.GetByID(ctx, specialtyID); err != nil {
		return errors.New("специальность не найдена")
	}

	if err := s.repo.AddSpecialty(ctx, doctorID, specialtyID); err != nil {
		s.logger.Error("ошибка привязки специальности", zap.Int64("doctorId", doctorID), zap.Error(err))
		return errors.New("ошибка привязки специальности")
	}

	return nil
}

func (s *DoctorServiceImpl) RemoveSpecialty(ctx context.Context, doctorID, specialtyID int64) error {
	if _, err := s.repo.GetByID(ctx, doctorID); err != nil {
		return domain.ErrNotFound
	}

	if err := s.repo.RemoveSpecialty(ctx, doctorID, specialtyID); err != nil {
		s.logger.Error("ошибка отвязки специальности", zap.Int64("doctorId", doctorID), zap.Error(err))
		return errors.New("ошибка отвязки специальности")
	}

	return nil
}
