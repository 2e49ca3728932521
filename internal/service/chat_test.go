package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"medbook/internal/domain"
	"medbook/internal/repository"
	"medbook/internal/storage"
)

type fakeChatRepo struct {
	repository.ChatRepository

	created *domain.ChatMessage
}

func (r *fakeChatRepo) CreateMessage(ctx context.Context, senderID int64, dto domain.CreateChatMessageDTO) (*domain.ChatMessage, error) {
	r.created = &domain.ChatMessage{
		ID:          1,
		SenderID:    senderID,
		RecipientID: dto.RecipientID,
		Type:        dto.Type,
		Content:     dto.Content,
		FileURL:     dto.FileURL,
		FileName:    dto.FileName,
	}
	return r.created, nil
}

func newChatFixture() (*ChatServiceImpl, *fakeChatRepo) {
	chatRepo := &fakeChatRepo{}
	users := &fakeUserRepo{
		users: map[int64]*domain.User{
			1: {ID: 1, FirstName: "Иван", LastName: "Петров", IsActive: true},
			2: {ID: 2, FirstName: "Анна", LastName: "Сидорова", IsActive: true},
			3: {ID: 3, FirstName: "Олег", LastName: "Неактивный", IsActive: false},
		},
	}
	return NewChatService(chatRepo, users, nil, zap.NewNop()), chatRepo
}

func TestChatSendMessage(t *testing.T) {
	svc, repo := newChatFixture()

	message, err := svc.SendMessage(context.Background(), 1, domain.CreateChatMessageDTO{
		RecipientID: 2,
		Type:        domain.MessageTypeText,
		Content:     "здравствуйте",
	})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if repo.created == nil {
		t.Fatal("message not persisted")
	}
	if message.SenderName != "Иван Петров" {
		t.Errorf("sender name = %q", message.SenderName)
	}
}

func TestChatSendMessageToSelf(t *testing.T) {
	svc, _ := newChatFixture()

	_, err := svc.SendMessage(context.Background(), 1, domain.CreateChatMessageDTO{
		RecipientID: 1,
		Type:        domain.MessageTypeText,
		Content:     "сам себе",
	})
	if err == nil {
		t.Fatal("SendMessage() to self expected error")
	}
}

func TestChatSendMessageInactiveRecipient(t *testing.T) {
	svc, _ := newChatFixture()

	_, err := svc.SendMessage(context.Background(), 1, domain.CreateChatMessageDTO{
		RecipientID: 3,
		Type:        domain.MessageTypeText,
		Content:     "тест",
	})
	if err == nil {
		t.Fatal("SendMessage() to inactive recipient expected error")
	}
}

func TestChatSendMessageUnknownRecipient(t *testing.T) {
	svc, _ := newChatFixture()

	_, err := svc.SendMessage(context.Background(), 1, domain.CreateChatMessageDTO{
		RecipientID: 99,
		Type:        domain.MessageTypeText,
		Content:     "тест",
	})
	if err == nil {
		t.Fatal("SendMessage() to unknown recipient expected error")
	}
}

func TestChatSendFileMessageWithoutURL(t *testing.T) {
	svc, _ := newChatFixture()

	_, err := svc.SendMessage(context.Background(), 1, domain.CreateChatMessageDTO{
		RecipientID: 2,
		Type:        domain.MessageTypeFile,
		Content:     "документ",
	})
	if err == nil {
		t.Fatal("file message without URL expected error")
	}
}

// Без настроенного S3 загрузка вложений возвращает ошибку, а не падает.
func TestChatUploadAttachmentStorageDisabled(t *testing.T) {
	chatRepo := &fakeChatRepo{}
	users := &fakeUserRepo{users: map[int64]*domain.User{}}
	svc := NewChatService(chatRepo, users, storage.NewDisabledStorage(), zap.NewNop())

	if _, err := svc.UploadAttachment(context.Background(), 1, []byte("data"), "scan.pdf"); err == nil {
		t.Fatal("UploadAttachment() without storage expected error")
	}
}
