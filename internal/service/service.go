package service

import (
	"context"

	"go.uber.org/zap"

	"medbook/config"
	"medbook/internal/domain"
	"medbook/internal/mail"
	"medbook/internal/repository"
	"medbook/internal/storage"
)

type Deps struct {
	Repos       *repository.Repositories
	Logger      *zap.Logger
	Config      *config.Config
	FileStorage storage.FileStorage
	Mailer      mail.Sender
}

type Services struct {
	User          UserService
	Auth          AuthService
	Specialty     SpecialtyService
	Doctor        DoctorService
	Catalog       CatalogService
	Schedule      ScheduleService
	Appointment   AppointmentService
	MedicalRecord MedicalRecordService
	Chat          ChatService
	Notification  NotificationService
}

func NewServices(deps Deps) *Services {
	notification := NewNotificationService(deps.Repos.Notification, deps.Mailer, deps.Config, deps.Logger)

	return &Services{
		User:          NewUserService(deps.Repos.User, deps.Repos.Auth, deps.Logger),
		Auth:          NewAuthService(deps.Repos.Auth, deps.Repos.User, notification, deps.Config.JWT, deps.Logger),
		Specialty:     NewSpecialtyService(deps.Repos.Specialty, deps.Logger),
		Doctor:        NewDoctorService(deps.Repos.Doctor, deps.Repos.User, deps.Repos.Specialty, deps.FileStorage, deps.Logger),
		Catalog:       NewCatalogService(deps.Repos.Catalog, deps.Repos.Specialty, deps.Logger),
		Schedule:      NewScheduleService(deps.Repos.Schedule, deps.Repos.Doctor, deps.Repos.Appointment, deps.Logger),
		Appointment:   NewAppointmentService(deps.Repos.Appointment, deps.Repos.Schedule, deps.Repos.Doctor, deps.Repos.Catalog, deps.Repos.User, notification, deps.Logger),
		MedicalRecord: NewMedicalRecordService(deps.Repos.MedicalRecord, deps.Repos.Appointment, deps.Repos.Doctor, deps.FileStorage, deps.Logger),
		Chat:          NewChatService(deps.Repos.Chat, deps.Repos.User, deps.FileStorage, deps.Logger),
		Notification:  notification,
	}
}

type UserService interface {
	Create(ctx context.Context, dto domain.CreateUserDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, id int64, dto domain.UpdateUserDTO) error
	UpdatePassword(ctx context.Context, id int64, dto domain.PasswordUpdateDTO) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
}

type AuthService interface {
	Register(ctx context.Context, dto domain.RegisterRequest) (int64, error)
	Activate(ctx context.Context, token string) error
	Login(ctx context.Context, dto domain.LoginRequest, userAgent, ip string) (*domain.Tokens, error)
	RefreshTokens(ctx context.Context, refreshToken, userAgent, ip string) (*domain.Tokens, error)
	Logout(ctx context.Context, refreshToken string) error
	ParseToken(ctx context.Context, token string) (int64, domain.UserRole, error)
}

type SpecialtyService interface {
	Create(ctx context.Context, dto domain.CreateSpecialtyDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Specialty, error)
	Update(ctx context.Context, id int64, dto domain.UpdateSpecialtyDTO) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.SpecialtyFilter) ([]domain.Specialty, int, error)
}

type DoctorService interface {
	Create(ctx context.Context, userID int64, dto domain.CreateDoctorDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Doctor, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Doctor, error)
	Update(ctx context.Context, id int64, dto domain.UpdateDoctorDTO) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.DoctorFilter) ([]domain.Doctor, int, error)

	UploadProfilePhoto(ctx context.Context, doctorID int64, photo []byte, filename string) error
	DeleteProfilePhoto(ctx context.Context, doctorID int64) error

	AddSpecialty(ctx context.Context, doctorID, specialtyID int64) error
	RemoveSpecialty(ctx context.Context, doctorID, specialtyID int64) error
}

type CatalogService interface {
	Create(ctx context.Context, dto domain.CreateMedicalServiceDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.MedicalService, error)
	Update(ctx context.Context, id int64, dto domain.UpdateMedicalServiceDTO) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.MedicalServiceFilter) ([]domain.MedicalService, int, error)
}

type ScheduleService interface {
	Create(ctx context.Context, doctorUserID int64, dto domain.CreateShiftDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Shift, error)
	Update(ctx context.Context, id, doctorUserID int64, dto domain.UpdateShiftDTO) error
	Delete(ctx context.Context, id, doctorUserID int64) error
	List(ctx context.Context, filter domain.ShiftFilter) ([]domain.Shift, int, error)
	GetFreeSlots(ctx context.Context, doctorID int64, date string) ([]domain.Slot, error)
}

type AppointmentService interface {
	Create(ctx context.Context, patientID int64, dto domain.CreateAppointmentDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, dto domain.UpdateAppointmentStatusDTO) error
	Cancel(ctx context.Context, id, actorID int64, actorRole domain.UserRole, dto domain.CancelAppointmentDTO) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, int, error)
}

type MedicalRecordService interface {
	Create(ctx context.Context, doctorUserID int64, dto domain.CreateMedicalRecordDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.MedicalRecord, error)
	Update(ctx context.Context, id int64, dto domain.UpdateMedicalRecordDTO) error
	List(ctx context.Context, filter domain.MedicalRecordFilter) ([]domain.MedicalRecord, int, error)

	UploadAttachment(ctx context.Context, recordID int64, data []byte, filename string) error

	AddPrescription(ctx context.Context, recordID int64, dto domain.CreatePrescriptionDTO) (int64, error)
	DeletePrescription(ctx context.Context, id int64) error
}

type ChatService interface {
	SendMessage(ctx context.Context, senderID int64, dto domain.CreateChatMessageDTO) (*domain.ChatMessage, error)
	GetMessages(ctx context.Context, userID int64, filter domain.ChatMessageFilter) ([]domain.ChatMessage, error)
	MarkRead(ctx context.Context, userID, peerID int64) (int64, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
	ListConversations(ctx context.Context, userID int64) ([]domain.Conversation, error)
	UploadAttachment(ctx context.Context, userID int64, data []byte, filename string) (string, error)
}

type NotificationService interface {
	EnqueueActivation(ctx context.Context, user *domain.User, token string) error
	EnqueueAppointmentBooked(ctx context.Context, user *domain.User, appointment *domain.Appointment) error
	EnqueueAppointmentConfirmed(ctx context.Context, user *domain.User, appointment *domain.Appointment) error
	EnqueueAppointmentCancelled(ctx context.Context, user *domain.User, appointment *domain.Appointment) error

	Run(ctx context.Context)
}
