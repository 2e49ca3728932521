package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"medbook/internal/domain"
	"medbook/internal/repository"
)

const (
	timeLayout = "15:04"
	dateLayout = "2006-01-02"
)

type ScheduleServiceImpl struct {
	repo            repository.ScheduleRepository
	doctorRepo      repository.DoctorRepository
	appointmentRepo repository.AppointmentRepository
	logger          *zap.Logger
}

func NewScheduleService(repo repository.ScheduleRepository, doctorRepo repository.DoctorRepository, appointmentRepo repository.AppointmentRepository, logger *zap.Logger) *ScheduleServiceImpl {
	return &ScheduleServiceImpl{
		repo:            repo,
		doctorRepo:      doctorRepo,
		appointmentRepo: appointmentRepo,
		logger:          logger,
	}
}

// GenerateSlots cuts the interval [startTime, endTime) into consecutive slots
// of slotDuration minutes. A trailing remainder shorter than slotDuration is
// dropped. Returned slots carry only wall clock times, the caller binds them
// to a concrete date.
func GenerateSlots(startTime, endTime string, slotDuration int) ([]domain.Slot, error) {
	if slotDuration <= 0 {
		return nil, errors.New("длительность слота должна быть положительной")
	}

	start, err := time.Parse(timeLayout, startTime)
	if err != nil {
		return nil, fmt.Errorf("неверный формат времени начала: %w", err)
	}

	end, err := time.Parse(timeLayout, endTime)
	if err != nil {
		return nil, fmt.Errorf("неверный формат времени окончания: %w", err)
	}

	if !start.Before(end) {
		return nil, errors.New("время начала должно быть раньше времени окончания")
	}

	step := time.Duration(slotDuration) * time.Minute
	slots := make([]domain.Slot, 0)

	for current := start; !current.Add(step).After(end); current = current.Add(step) {
		slots = append(slots, domain.Slot{
			StartTime: current.Format(timeLayout),
			EndTime:   current.Add(step).Format(timeLayout),
		})
	}

	return slots, nil
}

func (s *ScheduleServiceImpl) Create(ctx context.Context, doctorUserID int64, dto domain.CreateShiftDTO) (int64, error) {
	doctor, err := s.doctorRepo.GetByUserID(ctx, doctorUserID)
	if err != nil {
		return 0, errors.New("профиль врача не найден")
	}

	weekStart, err := time.Parse(dateLayout, dto.WeekStart)
	if err != nil {
		return 0, errors.New("неверный формат даты начала недели")
	}
	weekStart = domain.WeekStart(weekStart)

	slots, err := GenerateSlots(dto.StartTime, dto.EndTime, dto.SlotDuration)
	if err != nil {
		return 0, err
	}
	if len(slots) == 0 {
		return 0, errors.New("в интервал не помещается ни одного слота")
	}

	isAvailable := true
	if dto.IsAvailable != nil {
		isAvailable = *dto.IsAvailable
	}

	shift := domain.Shift{
		DoctorID:     doctor.ID,
		WeekStart:    weekStart,
		DayOfWeek:    dto.DayOfWeek,
		StartTime:    dto.StartTime,
		EndTime:      dto.EndTime,
		SlotDuration: dto.SlotDuration,
		IsAvailable:  isAvailable,
	}

	id, err := s.repo.Create(ctx, shift)
	if err != nil {
		s.logger.Error("ошибка создания смены", zap.Int64("doctorId", doctor.ID), zap.Error(err))
		return 0, errors.New("ошибка создания смены")
	}

	return id, nil
}

func (s *ScheduleServiceImpl) GetByID(ctx context.Context, id int64) (*domain.Shift, error) {
	shift, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		s.logger.Error("ошибка получения смены", zap.Int64("shiftId", id), zap.Error(err))
		return nil, errors.New("ошибка получения смены")
	}

	return shift, nil
}

// Update modifies a shift. A non zero doctorUserID restricts the change to
// shifts owned by that doctor, admins pass zero.
func (s *ScheduleServiceImpl) Update(ctx context.Context, id, doctorUserID int64, dto domain.UpdateShiftDTO) error {
	shift, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.ErrNotFound
	}

	if doctorUserID != 0 {
		doctor, err := s.doctorRepo.GetByUserID(ctx, doctorUserID)
		if err != nil || doctor.ID != shift.DoctorID {
			return errors.New("смена принадлежит другому врачу")
		}
	}

	if dto.StartTime != nil {
		shift.StartTime = *dto.StartTime
	}
	if dto.EndTime != nil {
		shift.EndTime = *dto.EndTime
	}
	if dto.SlotDuration != nil {
		shift.SlotDuration = *dto.SlotDuration
	}
	if dto.IsAvailable != nil {
		shift.IsAvailable = *dto.IsAvailable
	}

	slots, err := GenerateSlots(shift.StartTime, shift.EndTime, shift.SlotDuration)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		return errors.New("в интервал не помещается ни одного слота")
	}

	if err := s.repo.Update(ctx, *shift); err != nil {
		s.logger.Error("ошибка обновления смены", zap.Int64("shiftId", id), zap.Error(err))
		return errors.New("ошибка обновления смены")
	}

	return nil
}

func (s *ScheduleServiceImpl) Delete(ctx context.Context, id, doctorUserID int64) error {
	shift, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.ErrNotFound
	}

	if doctorUserID != 0 {
		doctor, err := s.doctorRepo.GetByUserID(ctx, doctorUserID)
		if err != nil || doctor.ID != shift.DoctorID {
			return errors.New("смена принадлежит другому врачу")
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("ошибка удаления смены", zap.Int64("shiftId", id), zap.Error(err))
		return errors.New("ошибка удаления смены")
	}

	return nil
}

func (s *ScheduleServiceImpl) List(ctx context.Context, filter domain.ShiftFilter) ([]domain.Shift, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	shifts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения списка смен", zap.Error(err))
		return nil, 0, errors.New("ошибка получения списка смен")
	}

	return shifts, total, nil
}

func (s *ScheduleServiceImpl) GetFreeSlots(ctx context.Context, doctorID int64, date string) ([]domain.Slot, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, errors.New("неверный формат даты")
	}

	if _, err := s.doctorRepo.GetByID(ctx, doctorID); err != nil {
		return nil, domain.ErrNotFound
	}

	weekStart := domain.WeekStart(day)
	shifts, err := s.repo.GetForDay(ctx, doctorID, weekStart, int(day.Weekday()))
	if err != nil {
		s.logger.Error("ошибка получения смен на день", zap.Int64("doctorId", doctorID), zap.Error(err))
		return nil, errors.New("ошибка получения расписания")
	}

	if len(shifts) == 0 {
		return nil, domain.ErrNoSchedule
	}

	booked, err := s.appointmentRepo.GetBookedTimes(ctx, doctorID, day)
	if err != nil {
		s.logger.Error("ошибка получения занятых слотов", zap.Int64("doctorId", doctorID), zap.Error(err))
		return nil, errors.New("ошибка получения расписания")
	}

	bookedSet := make(map[string]struct{}, len(booked))
	for _, t := range booked {
		bookedSet[t.Format(timeLayout)] = struct{}{}
	}

	allSlots := make([]domain.Slot, 0)
	for _, shift := range shifts {
		slots, err := GenerateSlots(shift.StartTime, shift.EndTime, shift.SlotDuration)
		if err != nil {
			s.logger.Warn("смена с некорректным интервалом", zap.Int64("shiftId", shift.ID), zap.Error(err))
			continue
		}

		for i := range slots {
			start, _ := time.Parse(timeLayout, slots[i].StartTime)
			slots[i].DateTime = time.Date(day.Year(), day.Month(), day.Day(), start.Hour(), start.Minute(), 0, 0, day.Location())
			_, taken := bookedSet[slots[i].StartTime]
			slots[i].IsBooked = taken
			allSlots = append(allSlots, slots[i])
		}
	}

	return allSlots, nil
}
