package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"medbook/internal/domain"
)

type Repositories struct {
	User          UserRepository
	Auth          AuthRepository
	Specialty     SpecialtyRepository
	Doctor        DoctorRepository
	Catalog       CatalogRepository
	Schedule      ScheduleRepository
	Appointment   AppointmentRepository
	MedicalRecord MedicalRecordRepository
	Chat          ChatRepository
	Notification  NotificationRepository
}

func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		User:          NewUserRepository(db),
		Auth:          NewAuthRepository(db),
		Specialty:     NewSpecialtyRepository(db),
		Doctor:        NewDoctorRepository(db),
		Catalog:       NewCatalogRepository(db),
		Schedule:      NewScheduleRepository(db),
		Appointment:   NewAppointmentRepository(db),
		MedicalRecord: NewMedicalRecordRepository(db),
		Chat:          NewChatRepository(db),
		Notification:  NewNotificationRepository(db),
	}
}

type UserRepository interface {
	Create(ctx context.Context, user domain.CreateUserDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Update(ctx context.Context, id int64, user domain.UpdateUserDTO) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]domain.User, error)

	SetActivationToken(ctx context.Context, id int64, token string) error
	ActivateByToken(ctx context.Context, token string) (int64, error)
}

type AuthRepository interface {
	CreateSession(ctx context.Context, session domain.Session) error
	GetSessionByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteSessionsByUserID(ctx context.Context, userID int64) error
}

type SpecialtyRepository interface {
	Create(ctx context.Context, dto domain.CreateSpecialtyDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Specialty, error)
	Update(ctx context.Context, id int64, dto domain.UpdateSpecialtyDTO) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.SpecialtyFilter) ([]domain.Specialty, int, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, userID int64, dto domain.CreateDoctorDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Doctor, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Doctor, error)
	Update(ctx context.Context, id int64, dto domain.UpdateDoctorDTO) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.DoctorFilter) ([]domain.Doctor, int, error)

	UpdatePhoto(ctx context.Context, id int64, photoURL *string) error

	AddSpecialty(ctx context.Context, doctorID, specialtyID int64) error
	RemoveSpecialty(ctx context.Context, doctorID, specialtyID int64) error
	GetSpecialtiesByDoctorID(ctx context.Context, doctorID int64) ([]domain.Specialty, error)
}

type CatalogRepository interface {
	Create(ctx context.Context, dto domain.CreateMedicalServiceDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.MedicalService, error)
	Update(ctx context.Context, id int64, dto domain.UpdateMedicalServiceDTO) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.MedicalServiceFilter) ([]domain.MedicalService, int, error)
}

type ScheduleRepository interface {
	Create(ctx context.Context, shift domain.Shift) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Shift, error)
	Update(ctx context.Context, shift domain.Shift) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.ShiftFilter) ([]domain.Shift, int, error)
	GetForDay(ctx context.Context, doctorID int64, weekStart time.Time, dayOfWeek int) ([]domain.Shift, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, patientID int64, dto domain.CreateAppointmentDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus, reason *string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error)
	CountByFilter(ctx context.Context, filter domain.AppointmentFilter) (int, error)
	GetBookedTimes(ctx context.Context, doctorID int64, date time.Time) ([]time.Time, error)
	ExistsForPatientOnDate(ctx context.Context, patientID int64, date time.Time) (bool, error)
}

type MedicalRecordRepository interface {
	Create(ctx context.Context, dto domain.MedicalRecord) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.MedicalRecord, error)
	Update(ctx context.Context, id int64, dto domain.UpdateMedicalRecordDTO) error
	List(ctx context.Context, filter domain.MedicalRecordFilter) ([]domain.MedicalRecord, int, error)
	SetAttachment(ctx context.Context, id int64, attachmentURL *string) error

	AddPrescription(ctx context.Context, recordID int64, dto domain.CreatePrescriptionDTO) (int64, error)
	GetPrescriptionsByRecordID(ctx context.Context, recordID int64) ([]domain.Prescription, error)
	DeletePrescription(ctx context.Context, id int64) error
}

type ChatRepository interface {
	CreateMessage(ctx context.Context, senderID int64, dto domain.CreateChatMessageDTO) (*domain.ChatMessage, error)
	GetMessages(ctx context.Context, userID int64, filter domain.ChatMessageFilter) ([]domain.ChatMessage, error)
	MarkRead(ctx context.Context, userID, peerID int64) (int64, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
	ListConversations(ctx context.Context, userID int64) ([]domain.Conversation, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n domain.Notification) (int64, error)
	GetPending(ctx context.Context, limit, maxAttempts int) ([]domain.Notification, error)
	MarkSent(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, attempts int, lastError string, final bool) error
}
