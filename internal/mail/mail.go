package mail

import (
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"medbook/config"
)

// Sender delivers a single message. Implementations hold no state between
// calls and are safe to use from the outbox worker.
type Sender interface {
	Send(to, subject, body string) error
}

type SMTPSender struct {
	cfg config.SMTPConfig
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		cfg: cfg,
	}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("ошибка отправки письма: %w", err)
	}

	return nil
}

// LogSender пишет письма в лог вместо отправки. Используется,
// когда SMTP не настроен.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(to, subject, body string) error {
	s.logger.Info("письмо не отправлено, SMTP не настроен",
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}
