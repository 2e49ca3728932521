package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"medbook/internal/domain"
)

type NotificationRepo struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{
		db: db,
	}
}

func (r *NotificationRepo) Create(ctx context.Context, n domain.Notification) (int64, error) {
	query := `
		INSERT INTO notifications (user_id, email, subject, body, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		n.UserID,
		n.Email,
		n.Subject,
		n.Body,
		domain.NotificationStatusPending,
		time.Now(),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания уведомления: %w", err)
	}

	return id, nil
}

func (r *NotificationRepo) GetPending(ctx context.Context, limit, maxAttempts int) ([]domain.Notification, error) {
	// FOR UPDATE SKIP LOCKED не нужен: воркер в процессе один.
	query := `
		SELECT id, user_id, email, subject, body, status, attempts, last_error, created_at, sent_at
		FROM notifications
		WHERE status = 'pending' AND attempts < $1
		ORDER BY created_at
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения очереди уведомлений: %w", err)
	}
	defer rows.Close()

	notifications := make([]domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Email,
			&n.Subject,
			&n.Body,
			&n.Status,
			&n.Attempts,
			&n.LastError,
			&n.CreatedAt,
			&n.SentAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования уведомления: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return notifications, nil
}

func (r *NotificationRepo) MarkSent(ctx context.Context, id int64) error {
	query := `
		UPDATE notifications
		SET status = 'sent', sent_at = $1, last_error = NULL
		WHERE id = $2
	`

	_, err := r.db.Exec(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка отметки уведомления отправленным: %w", err)
	}

	return nil
}

func (r *NotificationRepo) MarkFailed(ctx context.Context, id int64, attempts int, lastError string, final bool) error {
	status := domain.NotificationStatusPending
	if final {
		status = domain.NotificationStatusFailed
	}

	query := `
		UPDATE notifications
		SET status = $1, attempts = $2, last_error = $3
		WHERE id = $4
	`

	_, err := r.db.Exec(ctx, query, status, attempts, lastError, id)
	if err != nil {
		return fmt.Errorf("ошибка отметки уведомления неуспешным: %w", err)
	}

	return nil
}
