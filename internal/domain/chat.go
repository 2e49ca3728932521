package domain

import (
	"time"
)

// MessageType represents the type of a chat message
type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeFile   MessageType = "file"
	MessageTypeSystem MessageType = "system"
)

// ChatMessage is a direct message between two users (patient and doctor,
// or a user and support).
type ChatMessage struct {
	ID          int64       `json:"id"`
	SenderID    int64       `json:"sender_id"`
	RecipientID int64       `json:"recipient_id"`
	Type        MessageType `json:"message_type"`
	Content     string      `json:"content"`
	FileURL     *string     `json:"file_url,omitempty"`
	FileName    *string     `json:"file_name,omitempty"`
	IsRead      bool        `json:"is_read"`
	ReadAt      *time.Time  `json:"read_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`

	SenderName string `json:"sender_name,omitempty"`
}

// Conversation is a derived view: the peer plus the tail of the dialog.
type Conversation struct {
	PeerID      int64       `json:"peer_id"`
	PeerName    string      `json:"peer_name"`
	PeerRole    UserRole    `json:"peer_role"`
	LastMessage ChatMessage `json:"last_message"`
	UnreadCount int         `json:"unread_count"`
}

type CreateChatMessageDTO struct {
	RecipientID int64       `json:"recipient_id" binding:"required"`
	Type        MessageType `json:"message_type" binding:"required,oneof=text file system"`
	Content     string      `json:"content" binding:"required"`
	FileURL     *string     `json:"file_url"`
	FileName    *string     `json:"file_name"`
}

type ChatMessageFilter struct {
	PeerID int64 `json:"peer_id"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}
