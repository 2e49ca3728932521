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

type MedicalRecordServiceImpl struct {
	repo            repository.MedicalRecordRepository
	appointmentRepo repository.AppointmentRepository
	doctorRepo      repository.DoctorRepository
	fileStorage     storage.FileStorage
	logger          *zap.Logger
}

func NewMedicalRecordService(repo repository.MedicalRecordRepository, appointmentRepo repository.AppointmentRepository, doctorRepo repository.DoctorRepository, fileStorage storage.FileStorage, logger *zap.Logger) *MedicalRecordServiceImpl {
	return &MedicalRecordServiceImpl{
		repo:            repo,
		appointmentRepo: appointmentRepo,
		doctorRepo:      doctorRepo,
		fileStorage:     fileStorage,
		logger:          logger,
	}
}

func (s *MedicalRecordServiceImpl) Create(ctx context.Context, doctorUserID int64, dto domain.CreateMedicalRecordDTO) (int64, error) {
	doctor, err := s.doctorRepo.GetByUserID(ctx, doctorUserID)
	if err != nil {
		return 0, errors.New("профиль врача не найден")
	}

	appointment, err := s.appointmentRepo.GetByID(ctx, dto.AppointmentID)
	if err != nil {
		return 0, errors.New("прием не найден")
	}

	if appointment.DoctorID != doctor.ID {
		return 0, errors.New("прием принадлежит другому врачу")
	}

	if appointment.Status != domain.AppointmentStatusCompleted {
		return 0, errors.New("медицинская запись создается только по завершенному приему")
	}

	record := domain.MedicalRecord{
		AppointmentID: dto.AppointmentID,
		PatientID:     appointment.PatientID,
		DoctorID:      doctor.ID,
		Diagnosis:     dto.Diagnosis,
		Notes:         dto.Notes,
	}

	id, err := s.repo.Create(ctx, record)
	if err != nil {
		s.logger.Error("ошибка создания медицинской записи", zap.Int64("appointmentId", dto.AppointmentID), zap.Error(err))
		return 0, errors.New("ошибка создания медицинской записи")
	}

	return id, nil
}

func (s *MedicalRecordServiceImpl) GetByID(ctx context.Context, id int64) (*domain.MedicalRecord, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		s.logger.Error("ошибка получения медицинской записи", zap.Int64("recordId", id), zap.Error(err))
		return nil, errors.New("ошибка получения медицинской записи")
	}

	return record, nil
}

func (s *MedicalRecordServiceImpl) Update(ctx context.Context, id int64, dto domain.UpdateMedicalRecordDTO) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return domain.ErrNotFound
	}

	if err := s.repo.Update(ctx, id, dto); err != nil {
		s.logger.Error("ошибка обновления медицинской записи", zap.Int64("recordId", id), zap.Error(err))
		return errors.New("ошибка обновления медицинской записи")
	}

	return nil
}

func (s *MedicalRecordServiceImpl) List(ctx context.Context, filter domain.MedicalRecordFilter) ([]domain.MedicalRecord, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения списка медицинских записей", zap.Error(err))
		return nil, 0, errors.New("ошибка получения списка медицинских записей")
	}

	return records, total, nil
}

func (s *MedicalRecordServiceImpl) UploadAttachment(ctx context.Context, recordID int64, data []byte, filename string) error {
	record, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return domain.ErrNotFound
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectName := fmt.Sprintf("records/%d/%s%s", recordID, uuid.New().String(), ext)

	fileURL, err := s.fileStorage.UploadFile(ctx, data, objectName)
	if err != nil {
		s.logger.Error("ошибка загрузки вложения", zap.Int64("recordId", recordID), zap.Error(err))
		return errors.New("ошибка загрузки вложения")
	}

	if record.AttachmentURL != nil {
		if err := s.fileStorage.DeleteFile(ctx, *record.AttachmentURL); err != nil {
			s.logger.Warn("ошибка удаления старого вложения", zap.Error(err))
		}
	}

	if err := s.repo.SetAttachment(ctx, recordID, &fileURL); err != nil {
		s.logger.Error("ошибка сохранения ссылки на вложение", zap.Int64("recordId", recordID), zap.Error(err))
		return errors.New("ошибка загрузки вложения")
	}

	return nil
}

func (s *MedicalRecordServiceImpl) AddPrescription(ctx context.Context, recordID int64, dto domain.CreatePrescriptionDTO) (int64, error) {
	if _, err := s.repo.GetByID(ctx, recordID); err != nil {
		return 0, domain.ErrNotFound
	}

	id, err := s.repo.AddPrescription(ctx, recordID, dto)
	if err != nil {
		s.logger.Error("ошибка создания назначения", zap.Int64("recordId", recordID), zap.Error(err))
		return 0, errors.New("ошибка создания назначения")
	}

	return id, nil
}

func (s *MedicalRecordServiceImpl) DeletePrescription(ctx context.Context, id int64) error {
	if err := s.repo.DeletePrescription(ctx, id); err != nil {
		s.logger.Error("ошибка удаления назначения", zap.Int64("prescriptionId", id), zap.Error(err))
		return errors.New("ошибка удаления назначения")
	}

	return nil
}
