package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"medbook/internal/domain"
	"medbook/internal/repository"
)

// cancelLeadTime is the minimal gap between a patient initiated cancellation
// and the appointment itself.
const cancelLeadTime = 5 * 24 * time.Hour

type AppointmentServiceImpl struct {
	repo          repository.AppointmentRepository
	scheduleRepo  repository.ScheduleRepository
	doctorRepo    repository.DoctorRepository
	catalogRepo   repository.CatalogRepository
	userRepo      repository.UserRepository
	notifications NotificationService
	logger        *zap.Logger
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	scheduleRepo repository.ScheduleRepository,
	doctorRepo repository.DoctorRepository,
	catalogRepo repository.CatalogRepository,
	userRepo repository.UserRepository,
	notifications NotificationService,
	logger *zap.Logger,
) *AppointmentServiceImpl {
	return &AppointmentServiceImpl{
		repo:          repo,
		scheduleRepo:  scheduleRepo,
		doctorRepo:    doctorRepo,
		catalogRepo:   catalogRepo,
		userRepo:      userRepo,
		notifications: notifications,
		logger:        logger,
	}
}

func (s *AppointmentServiceImpl) Create(ctx context.Context, patientID int64, dto domain.CreateAppointmentDTO) (int64, error) {
	if _, err := s.doctorRepo.GetByID(ctx, dto.DoctorID); err != nil {
		return 0, errors.New("врач не найден")
	}

	if !dto.AppointmentTime.After(time.Now()) {
		return 0, errors.New("запись возможна только на будущее время")
	}

	if dto.ServiceID != nil {
		if _, err := s.catalogRepo.GetByID(ctx, *dto.ServiceID); err != nil {
			return 0, errors.New("услуга не найдена")
		}
	}

	if err := s.checkSlot(ctx, dto.DoctorID, dto.AppointmentTime); err != nil {
		return 0, err
	}

	busy, err := s.repo.ExistsForPatientOnDate(ctx, patientID, dto.AppointmentTime)
	if err != nil {
		s.logger.Error("ошибка проверки записей пациента", zap.Int64("patientId", patientID), zap.Error(err))
		return 0, errors.New("ошибка создания записи")
	}
	if busy {
		return 0, domain.ErrPatientBusy
	}

	id, err := s.repo.Create(ctx, patientID, dto)
	if err != nil {
		if errors.Is(err, domain.ErrSlotTaken) || errors.Is(err, domain.ErrPatientBusy) {
			return 0, err
		}
		s.logger.Error("ошибка создания записи", zap.Int64("patientId", patientID), zap.Error(err))
		return 0, errors.New("ошибка создания записи")
	}

	s.notifyPatient(ctx, id, s.notifications.EnqueueAppointmentBooked)

	return id, nil
}

// checkSlot verifies the requested time falls on a free slot boundary of one
// of the doctor's shifts for that day.
func (s *AppointmentServiceImpl) checkSlot(ctx context.Context, doctorID int64, t time.Time) error {
	weekStart := domain.WeekStart(t)
	shifts, err := s.scheduleRepo.GetForDay(ctx, doctorID, weekStart, int(t.Weekday()))
	if err != nil {
		s.logger.Error("ошибка получения смен", zap.Int64("doctorId", doctorID), zap.Error(err))
		return errors.New("ошибка создания записи")
	}
	if len(shifts) == 0 {
		return domain.ErrNoSchedule
	}

	wallClock := t.Format(timeLayout)
	aligned := false
	for _, shift := range shifts {
		slots, err := GenerateSlots(shift.StartTime, shift.EndTime, shift.SlotDuration)
		if err != nil {
			s.logger.Warn("смена с некорректным интервалом", zap.Int64("shiftId", shift.ID), zap.Error(err))
			continue
		}
		for _, slot := range slots {
			if slot.StartTime == wallClock {
				aligned = true
				break
			}
		}
	}
	if !aligned {
		return domain.ErrSlotMisaligned
	}

	booked, err := s.repo.GetBookedTimes(ctx, doctorID, t)
	if err != nil {
		s.logger.Error("ошибка получения занятых слотов", zap.Int64("doctorId", doctorID), zap.Error(err))
		return errors.New("ошибка создания записи")
	}
	for _, b := range booked {
		if b.Equal(t) {
			return domain.ErrSlotTaken
		}
	}

	return nil
}

func (s *AppointmentServiceImpl) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		s.logger.Error("ошибка получения записи", zap.Int64("appointmentId", id), zap.Error(err))
		return nil, errors.New("ошибка получения записи")
	}

	return appointment, nil
}

func (s *AppointmentServiceImpl) UpdateStatus(ctx context.Context, id int64, dto domain.UpdateAppointmentStatusDTO) error {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.ErrNotFound
	}

	// Отмена идет через Cancel: там обязательная причина и проверка срока.
	if dto.Status == domain.AppointmentStatusCancelled {
		return domain.ErrReasonRequired
	}

	if !appointment.Status.CanTransitionTo(dto.Status) {
		return domain.ErrInvalidTransition
	}

	if err := s.repo.UpdateStatus(ctx, id, dto.Status, nil); err != nil {
		s.logger.Error("ошибка обновления статуса записи", zap.Int64("appointmentId", id), zap.Error(err))
		return errors.New("ошибка обновления статуса записи")
	}

	if dto.Status == domain.AppointmentStatusConfirmed {
		s.notifyPatient(ctx, id, s.notifications.EnqueueAppointmentConfirmed)
	}

	return nil
}

func (s *AppointmentServiceImpl) Cancel(ctx context.Context, id, actorID int64, actorRole domain.UserRole, dto domain.CancelAppointmentDTO) error {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.ErrNotFound
	}

	if dto.Reason == "" {
		return domain.ErrReasonRequired
	}

	if !appointment.Status.CanTransitionTo(domain.AppointmentStatusCancelled) {
		return domain.ErrInvalidTransition
	}

	switch actorRole {
	case domain.UserRolePatient:
		if appointment.PatientID != actorID {
			return errors.New("запись принадлежит другому пациенту")
		}
		if time.Until(appointment.AppointmentTime) < cancelLeadTime {
			return domain.ErrTooLateToCancel
		}
	case domain.UserRoleDoctor:
		doctor, err := s.doctorRepo.GetByUserID(ctx, actorID)
		if err != nil || doctor.ID != appointment.DoctorID {
			return errors.New("запись принадлежит другому врачу")
		}
	}

	if err := s.repo.UpdateStatus(ctx, id, domain.AppointmentStatusCancelled, &dto.Reason); err != nil {
		s.logger.Error("ошибка отмены записи", zap.Int64("appointmentId", id), zap.Error(err))
		return errors.New("ошибка отмены записи")
	}

	s.notifyPatient(ctx, id, s.notifications.EnqueueAppointmentCancelled)

	return nil
}

// Delete физически удаляет запись. Обычный жизненный цикл заканчивается
// статусом completed или cancelled, удаление остается за администратором.
func (s *AppointmentServiceImpl) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return domain.ErrNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("ошибка удаления записи", zap.Int64("appointmentId", id), zap.Error(err))
		return errors.New("ошибка удаления записи")
	}

	return nil
}

func (s *AppointmentServiceImpl) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	appointments, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения списка записей", zap.Error(err))
		return nil, 0, errors.New("ошибка получения списка записей")
	}

	total, err := s.repo.CountByFilter(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка подсчета записей", zap.Error(err))
		return nil, 0, errors.New("ошибка получения списка записей")
	}

	return appointments, total, nil
}

// notifyPatient перечитывает запись и ставит письмо в очередь. Сбой здесь
// не откатывает операцию.
func (s *AppointmentServiceImpl) notifyPatient(ctx context.Context, appointmentID int64, enqueue func(context.Context, *domain.User, *domain.Appointment) error) {
	appointment, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		s.logger.Warn("не удалось перечитать запись для уведомления", zap.Int64("appointmentId", appointmentID), zap.Error(err))
		return
	}

	patient, err := s.userRepo.GetByID(ctx, appointment.PatientID)
	if err != nil {
		s.logger.Warn("не удалось получить пациента для уведомления", zap.Int64("patientId", appointment.PatientID), zap.Error(err))
		return
	}

	if err := enqueue(ctx, patient, appointment); err != nil {
		s.logger.Warn("ошибка постановки уведомления в очередь", zap.Int64("appointmentId", appointmentID), zap.Error(err))
	}
}
