package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"medbook/internal/domain"
	"medbook/internal/repository"
)

type fakeAppointmentRepo struct {
	repository.AppointmentRepository

	appointments map[int64]*domain.Appointment
	booked       []time.Time
	patientBusy  bool
	nextID       int64

	lastStatus domain.AppointmentStatus
	lastReason *string
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{
		appointments: make(map[int64]*domain.Appointment),
		nextID:       1,
	}
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, patientID int64, dto domain.CreateAppointmentDTO) (int64, error) {
	id := r.nextID
	r.nextID++
	r.appointments[id] = &domain.Appointment{
		ID:              id,
		PatientID:       patientID,
		DoctorID:        dto.DoctorID,
		ServiceID:       dto.ServiceID,
		AppointmentTime: dto.AppointmentTime,
		Status:          domain.AppointmentStatusPending,
	}
	return id, nil
}

func (r *fakeAppointmentRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	appointment, ok := r.appointments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *appointment
	return &copied, nil
}

func (r *fakeAppointmentRepo) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus, reason *string) error {
	appointment, ok := r.appointments[id]
	if !ok {
		return domain.ErrNotFound
	}
	appointment.Status = status
	r.lastStatus = status
	r.lastReason = reason
	return nil
}

func (r *fakeAppointmentRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.appointments[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.appointments, id)
	return nil
}

func (r *fakeAppointmentRepo) GetBookedTimes(ctx context.Context, doctorID int64, date time.Time) ([]time.Time, error) {
	return r.booked, nil
}

func (r *fakeAppointmentRepo) ExistsForPatientOnDate(ctx context.Context, patientID int64, date time.Time) (bool, error) {
	return r.patientBusy, nil
}

type fakeScheduleRepo struct {
	repository.ScheduleRepository

	shifts []domain.Shift
}

func (r *fakeScheduleRepo) GetForDay(ctx context.Context, doctorID int64, weekStart time.Time, dayOfWeek int) ([]domain.Shift, error) {
	return r.shifts, nil
}

type fakeDoctorRepo struct {
	repository.DoctorRepository

	doctors       map[int64]*domain.Doctor
	doctorsByUser map[int64]*domain.Doctor
}

func (r *fakeDoctorRepo) GetByID(ctx context.Context, id int64) (*domain.Doctor, error) {
	doctor, ok := r.doctors[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doctor, nil
}

func (r *fakeDoctorRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Doctor, error) {
	doctor, ok := r.doctorsByUser[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doctor, nil
}

type fakeUserRepo struct {
	repository.UserRepository

	users map[int64]*domain.User
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

type fakeNotifier struct {
	booked    int
	confirmed int
	cancelled int
}

func (n *fakeNotifier) EnqueueActivation(ctx context.Context, user *domain.User, token string) error {
	return nil
}

func (n *fakeNotifier) EnqueueAppointmentBooked(ctx context.Context, user *domain.User, appointment *domain.Appointment) error {
	n.booked++
	return nil
}

func (n *fakeNotifier) EnqueueAppointmentConfirmed(ctx context.Context, user *domain.User, appointment *domain.Appointment) error {
	n.confirmed++
	return nil
}

func (n *fakeNotifier) EnqueueAppointmentCancelled(ctx context.Context, user *domain.User, appointment *domain.Appointment) error {
	n.cancelled++
	return nil
}

func (n *fakeNotifier) Run(ctx context.Context) {}

type appointmentFixture struct {
	service      *AppointmentServiceImpl
	appointments *fakeAppointmentRepo
	schedule     *fakeScheduleRepo
	doctors      *fakeDoctorRepo
	notifier     *fakeNotifier
}

func newAppointmentFixture() *appointmentFixture {
	appointments := newFakeAppointmentRepo()
	schedule := &fakeScheduleRepo{
		shifts: []domain.Shift{
			{ID: 1, DoctorID: 1, StartTime: "09:00", EndTime: "12:00", SlotDuration: 30, IsAvailable: true},
		},
	}
	doctors := &fakeDoctorRepo{
		doctors:       map[int64]*domain.Doctor{1: {ID: 1, UserID: 10}},
		doctorsByUser: map[int64]*domain.Doctor{10: {ID: 1, UserID: 10}},
	}
	users := &fakeUserRepo{
		users: map[int64]*domain.User{100: {ID: 100, Email: "patient@example.com"}},
	}
	notifier := &fakeNotifier{}

	svc := NewAppointmentService(appointments, schedule, doctors, nil, users, notifier, zap.NewNop())

	return &appointmentFixture{
		service:      svc,
		appointments: appointments,
		schedule:     schedule,
		doctors:      doctors,
		notifier:     notifier,
	}
}

// futureSlot returns a future timestamp whose wall clock matches the fixture
// shift boundaries.
func futureSlot(hour, minute int) time.Time {
	day := time.Now().AddDate(0, 0, 14)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)
}

func TestAppointmentCreate(t *testing.T) {
	f := newAppointmentFixture()

	id, err := f.service.Create(context.Background(), 100, domain.CreateAppointmentDTO{
		DoctorID:        1,
		AppointmentTime: futureSlot(10, 0),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if id == 0 {
		t.Fatal("Create() returned zero id")
	}

	created, err := f.appointments.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if created.Status != domain.AppointmentStatusPending {
		t.Errorf("new appointment status = %s, want %s", created.Status, domain.AppointmentStatusPending)
	}
	if f.notifier.booked != 1 {
		t.Errorf("booked notifications = %d, want 1", f.notifier.booked)
	}
}

func TestAppointmentCreatePastTime(t *testing.T) {
	f := newAppointmentFixture()

	_, err := f.service.Create(context.Background(), 100, domain.CreateAppointmentDTO{
		DoctorID:        1,
		AppointmentTime: time.Now().Add(-time.Hour),
	})
	if err == nil {
		t.Fatal("Create() with past time expected error")
	}
}

func TestAppointmentCreateNoSchedule(t *testing.T) {
	f := newAppointmentFixture()
	f.schedule.shifts = nil

	_, err := f.service.Create(context.Background(), 100, domain.CreateAppointmentDTO{
		DoctorID:        1,
		AppointmentTime: futureSlot(10, 0),
	})
	if !errors.Is(err, domain.ErrNoSchedule) {
		t.Fatalf("Create() error = %v, want ErrNoSchedule", err)
	}
}

func TestAppointmentCreateMisalignedSlot(t *testing.T) {
	f := newAppointmentFixture()

	_, err := f.service.Create(context.Background(), 100, domain.CreateAppointmentDTO{
		DoctorID:        1,
		AppointmentTime: futureSlot(10, 17),
	})
	if !errors.Is(err, domain.ErrSlotMisaligned) {
		t.Fatalf("Create() error = %v, want ErrSlotMisaligned", err)
	}
}

func TestAppointmentCreateOutsideShift(t *testing.T) {
	f := newAppointmentFixture()

	// 12:00 is the shift end, the last slot starts at 11:30.
	_, err := f.service.Create(context.Background(), 100, domain.CreateAppointmentDTO{
		DoctorID:        1,
		AppointmentTime: futureSlot(12, 0),
	})
	if !errors.Is(err, domain.ErrSlotMisaligned) {
		t.Fatalf("Create() error = %v, want ErrSlotMisaligned", err)
	}
}

func TestAppointmentCreateSlotTaken(t *testing.T) {
	f := newAppointmentFixture()
	slot := futureSlot(10, 30)
	f.appointments.booked = []time.Time{slot}

	_, err := f.service.Create(context.Background(), 100, domain.CreateAppointmentDTO{
		DoctorID:        1,
		AppointmentTime: slot,
	})
	if !errors.Is(err, domain.ErrSlotTaken) {
		t.Fatalf("Create() error = %v, want ErrSlotTaken", err)
	}
}

func TestAppointmentCreatePatientBusy(t *testing.T) {
	f := newAppointmentFixture()
	f.appointments.patientBusy = true

	_, err := f.service.Create(context.Background(), 100, domain.CreateAppointmentDTO{
		DoctorID:        1,
		AppointmentTime: futureSlot(9, 30),
	})
	if !errors.Is(err, domain.ErrPatientBusy) {
		t.Fatalf("Create() error = %v, want ErrPatientBusy", err)
	}
}

func TestAppointmentUpdateStatus(t *testing.T) {
	f := newAppointmentFixture()
	f.appointments.appointments[5] = &domain.Appointment{
		ID: 5, PatientID: 100, DoctorID: 1,
		AppointmentTime: futureSlot(10, 0),
		Status:          domain.AppointmentStatusPending,
	}

	err := f.service.UpdateStatus(context.Background(), 5, domain.UpdateAppointmentStatusDTO{
		Status: domain.AppointmentStatusConfirmed,
	})
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if f.appointments.lastStatus != domain.AppointmentStatusConfirmed {
		t.Errorf("status = %s, want confirmed", f.appointments.lastStatus)
	}
	if f.notifier.confirmed != 1 {
		t.Errorf("confirmed notifications = %d, want 1", f.notifier.confirmed)
	}
}

func TestAppointmentUpdateStatusInvalidTransition(t *testing.T) {
	f := newAppointmentFixture()
	f.appointments.appointments[5] = &domain.Appointment{
		ID: 5, Status: domain.AppointmentStatusPending,
	}

	err := f.service.UpdateStatus(context.Background(), 5, domain.UpdateAppointmentStatusDTO{
		Status: domain.AppointmentStatusCompleted,
	})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("UpdateStatus() error = %v, want ErrInvalidTransition", err)
	}
}

func TestAppointmentUpdateStatusCancelRequiresReason(t *testing.T) {
	f := newAppointmentFixture()
	f.appointments.appointments[5] = &domain.Appointment{
		ID: 5, Status: domain.AppointmentStatusPending,
	}

	err := f.service.UpdateStatus(context.Background(), 5, domain.UpdateAppointmentStatusDTO{
		Status: domain.AppointmentStatusCancelled,
	})
	if !errors.Is(err, domain.ErrReasonRequired) {
		t.Fatalf("UpdateStatus() error = %v, want ErrReasonRequired", err)
	}
}

func TestAppointmentCancelByPatient(t *testing.T) {
	f := newAppointmentFixture()
	f.appointments.appointments[5] = &domain.Appointment{
		ID: 5, PatientID: 100, DoctorID: 1,
		AppointmentTime: time.Now().Add(6 * 24 * time.Hour),
		Status:          domain.AppointmentStatusConfirmed,
	}

	err := f.service.Cancel(context.Background(), 5, 100, domain.UserRolePatient, domain.CancelAppointmentDTO{
		Reason: "не смогу прийти",
	})
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if f.appointments.lastStatus != domain.AppointmentStatusCancelled {
		t.Errorf("status = %s, want cancelled", f.appointments.lastStatus)
	}
	if f.appointments.lastReason == nil || *f.appointments.lastReason != "не смогу прийти" {
		t.Error("cancellation reason not stored")
	}
	if f.notifier.cancelled != 1 {
		t.Errorf("cancelled notifications = %d, want 1", f.notifier.cancelled)
	}
}

func TestAppointmentCancelByPatientTooLate(t *testing.T) {
	f := newAppointmentFixture()
	f.appointments.appointments[5] = &domain.Appointment{
		ID: 5, PatientID: 100, DoctorID: 1,
		AppointmentTime: time.Now().Add(2 * 24 * time.Hour),
		Status:          domain.AppointmentStatusConfirmed,
	}

	err := f.service.Cancel(context.Background(), 5, 100, domain.UserRolePatient, domain.CancelAppointmentDTO{
		Reason: "передумал",
	})
	if !errors.Is(err, domain.ErrTooLateToCancel) {
		t.Fatalf("Cancel() error = %v, want ErrTooLateToCancel", err)
	}
}

func TestAppointmentCancelByDoctorIgnoresLeadTime(t *testing.T) {
	f := newAppointmentFixture()
	f.appointments.appointments[5] = &domain.Appointment{
		ID: 5, PatientID: 100, DoctorID: 1,
		AppointmentTime: time.Now().Add(2 * time.Hour),
		Status:          domain.AppointmentStatusConfirmed,
	}

	err := f.service.Cancel(context.Background(), 5, 10, domain.UserRoleDoctor, domain.CancelAppointmentDTO{
		Reason: "врач заболел",
	})
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
}

func TestAppointmentCancelForeignPatient(t *testing.T) {
	f := newAppointmentFixture()
	f.appointments.appointments[5] = &domain.Appointment{
		ID: 5, PatientID: 100, DoctorID: 1,
		AppointmentTime: time.Now().Add(10 * 24 * time.Hour),
		Status:          domain.AppointmentStatusPending,
	}

	err := f.service.Cancel(context.Background(), 5, 101, domain.UserRolePatient, domain.CancelAppointmentDTO{
		Reason: "чужая запись",
	})
	if err == nil {
		t.Fatal("Cancel() by foreign patient expected error")
	}
}

func TestAppointmentCancelWithoutReason(t *testing.T) {
	f := newAppointmentFixture()
	f.appointments.appointments[5] = &domain.Appointment{
		ID: 5, PatientID: 100, DoctorID: 1,
		AppointmentTime: time.Now().Add(10 * 24 * time.Hour),
		Status:          domain.AppointmentStatusPending,
	}

	err := f.service.Cancel(context.Background(), 5, 100, domain.UserRolePatient, domain.CancelAppointmentDTO{})
	if !errors.Is(err, domain.ErrReasonRequired) {
		t.Fatalf("Cancel() error = %v, want ErrReasonRequired", err)
	}
}

func TestAppointmentCancelFinalStatus(t *testing.T) {
	f := newAppointmentFixture()
	f.appointments.appointments[5] = &domain.Appointment{
		ID: 5, PatientID: 100, DoctorID: 1,
		AppointmentTime: time.Now().Add(10 * 24 * time.Hour),
		Status:          domain.AppointmentStatusCompleted,
	}

	err := f.service.Cancel(context.Background(), 5, 100, domain.UserRolePatient, domain.CancelAppointmentDTO{
		Reason: "поздно",
	})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("Cancel() error = %v, want ErrInvalidTransition", err)
	}
}

// Услуга в заявке необязательна: бронирование без service_id проходит
// и сохраняется с пустой услугой.
func TestAppointmentCreateWithoutService(t *testing.T) {
	f := newAppointmentFixture()

	id, err := f.service.Create(context.Background(), 100, domain.CreateAppointmentDTO{
		DoctorID:        1,
		AppointmentTime: futureSlot(9, 30),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if f.appointments.appointments[id].ServiceID != nil {
		t.Errorf("service id = %v, want nil", *f.appointments.appointments[id].ServiceID)
	}
}

func TestAppointmentDelete(t *testing.T) {
	f := newAppointmentFixture()

	id, err := f.service.Create(context.Background(), 100, domain.CreateAppointmentDTO{
		DoctorID:        1,
		AppointmentTime: futureSlot(10, 30),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := f.service.Delete(context.Background(), id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := f.appointments.appointments[id]; ok {
		t.Error("appointment still stored after delete")
	}

	if err := f.service.Delete(context.Background(), id); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Delete() repeated error = %v, want ErrNotFound", err)
	}
}
