package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"medbook/internal/domain"
)

type ChatRepo struct {
	db *pgxpool.Pool
}

func NewChatRepository(db *pgxpool.Pool) *ChatRepo {
	return &ChatRepo{
		db: db,
	}
}

func (r *ChatRepo) CreateMessage(ctx context.Context, senderID int64, dto domain.CreateChatMessageDTO) (*domain.ChatMessage, error) {
	query := `
		INSERT INTO chat_messages (sender_id, recipient_id, message_type, content, file_url, file_name, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, $7)
		RETURNING id, created_at
	`

	message := domain.ChatMessage{
		SenderID:    senderID,
		RecipientID: dto.RecipientID,
		Type:        dto.Type,
		Content:     dto.Content,
		FileURL:     dto.FileURL,
		FileName:    dto.FileName,
	}

	err := r.db.QueryRow(ctx, query,
		senderID,
		dto.RecipientID,
		dto.Type,
		dto.Content,
		dto.FileURL,
		dto.FileName,
		time.Now(),
	).Scan(&message.ID, &message.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения сообщения: %w", err)
	}

	return &message, nil
}

func (r *ChatRepo) GetMessages(ctx context.Context, userID int64, filter domain.ChatMessageFilter) ([]domain.ChatMessage, error) {
	query := `
		SELECT m.id, m.sender_id, m.recipient_id, m.message_type, m.content, m.file_url, m.file_name, m.is_read, m.read_at, m.created_at,
		       u.first_name || ' ' || u.last_name
		FROM chat_messages m
		JOIN users u ON m.sender_id = u.id
		WHERE (m.sender_id = $1 AND m.recipient_id = $2)
		   OR (m.sender_id = $2 AND m.recipient_id = $1)
		ORDER BY m.created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(ctx, query, userID, filter.PeerID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения сообщений: %w", err)
	}
	defer rows.Close()

	messages := make([]domain.ChatMessage, 0)
	for rows.Next() {
		var message domain.ChatMessage
		if err := rows.Scan(
			&message.ID,
			&message.SenderID,
			&message.RecipientID,
			&message.Type,
			&message.Content,
			&message.FileURL,
			&message.FileName,
			&message.IsRead,
			&message.ReadAt,
			&message.CreatedAt,
			&message.SenderName,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования сообщения: %w", err)
		}
		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return messages, nil
}

func (r *ChatRepo) MarkRead(ctx context.Context, userID, peerID int64) (int64, error) {
	query := `
		UPDATE chat_messages
		SET is_read = true, read_at = $1
		WHERE recipient_id = $2 AND sender_id = $3 AND is_read = false
	`

	result, err := r.db.Exec(ctx, query, time.Now(), userID, peerID)
	if err != nil {
		return 0, fmt.Errorf("ошибка отметки сообщений прочитанными: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *ChatRepo) CountUnread(ctx context.Context, userID int64) (int, error) {
	query := `SELECT COUNT(*) FROM chat_messages WHERE recipient_id = $1 AND is_read = false`

	var count int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчета непрочитанных сообщений: %w", err)
	}

	return count, nil
}

func (r *ChatRepo) ListConversations(ctx context.Context, userID int64) ([]domain.Conversation, error) {
	// Последнее сообщение каждого диалога плюс счетчик непрочитанных.
	query := `
		WITH last_messages AS (
			SELECT DISTINCT ON (peer_id) *
			FROM (
				SELECT m.*,
				       CASE WHEN m.sender_id = $1 THEN m.recipient_id ELSE m.sender_id END AS peer_id
				FROM chat_messages m
				WHERE m.sender_id = $1 OR m.recipient_id = $1
			) d
			ORDER BY peer_id, created_at DESC
		)
		SELECT lm.peer_id,
		       u.first_name || ' ' || u.last_name,
		       u.role,
		       lm.id, lm.sender_id, lm.recipient_id, lm.message_type, lm.content, lm.file_url, lm.file_name, lm.is_read, lm.read_at, lm.created_at,
		       (SELECT COUNT(*) FROM chat_messages c WHERE c.recipient_id = $1 AND c.sender_id = lm.peer_id AND c.is_read = false)
		FROM last_messages lm
		JOIN users u ON u.id = lm.peer_id
		ORDER BY lm.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка диалогов: %w", err)
	}
	defer rows.Close()

	conversations := make([]domain.Conversation, 0)
	for rows.Next() {
		var conversation domain.Conversation
		if err := rows.Scan(
			&conversation.PeerID,
			&conversation.PeerName,
			&conversation.PeerRole,
			&conversation.LastMessage.ID,
			&conversation.LastMessage.SenderID,
			&conversation.LastMessage.RecipientID,
			&conversation.LastMessage.Type,
			&conversation.LastMessage.Content,
			&conversation.LastMessage.FileURL,
			&conversation.LastMessage.FileName,
			&conversation.LastMessage.IsRead,
			&conversation.LastMessage.ReadAt,
			&conversation.LastMessage.CreatedAt,
			&conversation.UnreadCount,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования диалога: %w", err)
		}
		conversations = append(conversations, conversation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return conversations, nil
}
