package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"medbook/config"
	"medbook/internal/domain"
	"medbook/internal/mail"
	"medbook/internal/repository"
)

const appointmentTimeLayout = "02.01.2006 15:04"

type NotificationServiceImpl struct {
	repo   repository.NotificationRepository
	mailer mail.Sender
	cfg    *config.Config
	logger *zap.Logger
}

func NewNotificationService(repo repository.NotificationRepository, mailer mail.Sender, cfg *config.Config, logger *zap.Logger) *NotificationServiceImpl {
	return &NotificationServiceImpl{
		repo:   repo,
		mailer: mailer,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *NotificationServiceImpl) EnqueueActivation(ctx context.Context, user *domain.User, token string) error {
	link := fmt.Sprintf("%s/api/v1/auth/activate?token=%s", s.cfg.BaseURL, token)
	body := fmt.Sprintf(
		"<p>Здравствуйте, %s!</p><p>Для активации аккаунта перейдите по ссылке:</p><p><a href=%q>%s</a></p>",
		user.FirstName, link, link,
	)

	return s.enqueue(ctx, user, "Активация аккаунта", body)
}

func (s *NotificationServiceImpl) EnqueueAppointmentBooked(ctx context.Context, user *domain.User, appointment *domain.Appointment) error {
	body := fmt.Sprintf(
		"<p>Здравствуйте, %s!</p><p>Вы записаны к врачу %s на %s. Запись ожидает подтверждения.</p>",
		user.FirstName, appointment.DoctorName, appointment.AppointmentTime.Format(appointmentTimeLayout),
	)

	return s.enqueue(ctx, user, "Запись на прием создана", body)
}

func (s *NotificationServiceImpl) EnqueueAppointmentConfirmed(ctx context.Context, user *domain.User, appointment *domain.Appointment) error {
	body := fmt.Sprintf(
		"<p>Здравствуйте, %s!</p><p>Ваша запись к врачу %s на %s подтверждена.</p>",
		user.FirstName, appointment.DoctorName, appointment.AppointmentTime.Format(appointmentTimeLayout),
	)

	return s.enqueue(ctx, user, "Запись на прием подтверждена", body)
}

func (s *NotificationServiceImpl) EnqueueAppointmentCancelled(ctx context.Context, user *domain.User, appointment *domain.Appointment) error {
	reason := ""
	if appointment.CancellationReason != nil {
		reason = fmt.Sprintf("<p>Причина: %s</p>", *appointment.CancellationReason)
	}
	body := fmt.Sprintf(
		"<p>Здравствуйте, %s!</p><p>Ваша запись к врачу %s на %s отменена.</p>%s",
		user.FirstName, appointment.DoctorName, appointment.AppointmentTime.Format(appointmentTimeLayout), reason,
	)

	return s.enqueue(ctx, user, "Запись на прием отменена", body)
}

func (s *NotificationServiceImpl) enqueue(ctx context.Context, user *domain.User, subject, body string) error {
	if user.Email == "" {
		return errors.New("у пользователя не указан email")
	}

	notification := domain.Notification{
		UserID:  user.ID,
		Email:   user.Email,
		Subject: subject,
		Body:    body,
	}

	if _, err := s.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("ошибка постановки уведомления в очередь: %w", err)
	}

	return nil
}

// Run drains the outbox until the context is cancelled. Failed deliveries
// stay pending and are retried on the next tick until the attempt limit.
func (s *NotificationServiceImpl) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Outbox.Interval)
	defer ticker.Stop()

	s.logger.Info("воркер уведомлений запущен",
		zap.Duration("interval", s.cfg.Outbox.Interval),
		zap.Int("batchSize", s.cfg.Outbox.BatchSize),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("воркер уведомлений остановлен")
			return
		case <-ticker.C:
			s.processBatch(ctx)
		}
	}
}

func (s *NotificationServiceImpl) processBatch(ctx context.Context) {
	pending, err := s.repo.GetPending(ctx, s.cfg.Outbox.BatchSize, s.cfg.Outbox.MaxAttempts)
	if err != nil {
		s.logger.Error("ошибка получения очереди уведомлений", zap.Error(err))
		return
	}

	for _, n := range pending {
		if err := s.mailer.Send(n.Email, n.Subject, n.Body); err != nil {
			attempts := n.Attempts + 1
			final := attempts >= s.cfg.Outbox.MaxAttempts
			s.logger.Warn("ошибка отправки уведомления",
				zap.Int64("notificationId", n.ID),
				zap.Int("attempts", attempts),
				zap.Bool("final", final),
				zap.Error(err),
			)
			if err := s.repo.MarkFailed(ctx, n.ID, attempts, err.Error(), final); err != nil {
				s.logger.Error("ошибка обновления статуса уведомления", zap.Int64("notificationId", n.ID), zap.Error(err))
			}
			continue
		}

		if err := s.repo.MarkSent(ctx, n.ID); err != nil {
			s.logger.Error("ошибка отметки уведомления отправленным", zap.Int64("notificationId", n.ID), zap.Error(err))
		}
	}
}
