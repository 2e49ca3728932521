package domain

import (
	"time"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// Notification is an outbox row. Handlers never send mail directly:
// services enqueue a row and the outbox worker delivers it.
type Notification struct {
	ID        int64              `json:"id"`
	UserID    int64              `json:"user_id"`
	Email     string             `json:"email"`
	Subject   string             `json:"subject"`
	Body      string             `json:"body"`
	Status    NotificationStatus `json:"status"`
	Attempts  int                `json:"attempts"`
	LastError *string            `json:"last_error,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	SentAt    *time.Time         `json:"sent_at,omitempty"`
}
