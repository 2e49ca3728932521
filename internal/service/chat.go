package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"medbook/internal/domain"
	"medbook/internal/repository"
	"medbook/internal/storage"
)

type ChatServiceImpl struct {
	repo        repository.ChatRepository
	userRepo    repository.UserRepository
	fileStorage storage.FileStorage
	logger      *zap.Logger
}

func NewChatService(repo repository.ChatRepository, userRepo repository.UserRepository, fileStorage storage.FileStorage, logger *zap.Logger) *ChatServiceImpl {
	return &ChatServiceImpl{
		repo:        repo,
		userRepo:    userRepo,
		fileStorage: fileStorage,
		logger:      logger,
	}
}

func (s *ChatServiceImpl) SendMessage(ctx context.Context, senderID int64, dto domain.CreateChatMessageDTO) (*domain.ChatMessage, error) {
	if senderID == dto.RecipientID {
		return nil, errors.New("нельзя отправить сообщение самому себе")
	}

	recipient, err := s.userRepo.GetByID(ctx, dto.RecipientID)
	if err != nil {
		return nil, errors.New("получатель не найден")
	}
	if !recipient.IsActive {
		return nil, errors.New("получатель недоступен")
	}

	if dto.Type == domain.MessageTypeFile && dto.FileURL == nil {
		return nil, errors.New("для файлового сообщения требуется ссылка на файл")
	}

	message, err := s.repo.CreateMessage(ctx, senderID, dto)
	if err != nil {
		s.logger.Error("ошибка сохранения сообщения", zap.Int64("senderId", senderID), zap.Error(err))
		return nil, errors.New("ошибка отправки сообщения")
	}

	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err == nil {
		message.SenderName = sender.FirstName + " " + sender.LastName
	}

	return message, nil
}

func (s *ChatServiceImpl) GetMessages(ctx context.Context, userID int64, filter domain.ChatMessageFilter) ([]domain.ChatMessage, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}

	messages, err := s.repo.GetMessages(ctx, userID, filter)
	if err != nil {
		s.logger.Error("ошибка получения сообщений", zap.Int64("userId", userID), zap.Error(err))
		return nil, errors.New("ошибка получения сообщений")
	}

	return messages, nil
}

func (s *ChatServiceImpl) MarkRead(ctx context.Context, userID, peerID int64) (int64, error) {
	count, err := s.repo.MarkRead(ctx, userID, peerID)
	if err != nil {
		s.logger.Error("ошибка отметки сообщений прочитанными", zap.Int64("userId", userID), zap.Error(err))
		return 0, errors.New("ошибка отметки сообщений прочитанными")
	}

	return count, nil
}

func (s *ChatServiceImpl) CountUnread(ctx context.Context, userID int64) (int, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Error("ошибка подсчета непрочитанных сообщений", zap.Int64("userId", userID), zap.Error(err))
		return 0, errors.New("ошибка подсчета непрочитанных сообщений")
	}

	return count, nil
}

func (s *ChatServiceImpl) ListConversations(ctx context.Context, userID int64) ([]domain.Conversation, error) {
	conversations, err := s.repo.ListConversations(ctx, userID)
	if err != nil {
		s.logger.Error("ошибка получения списка диалогов", zap.Int64("userId", userID), zap.Error(err))
		return nil, errors.New("ошибка получения списка диалогов")
	}

	return conversations, nil
}

func (s *ChatServiceImpl) UploadAttachment(ctx context.Context, userID int64, data []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	objectName := fmt.Sprintf("chat/%d/%s%s", userID, uuid.New().String(), ext)

	fileURL, err := s.fileStorage.UploadFile(ctx, data, objectName)
	if err != nil {
		s.logger.Error("ошибка загрузки файла чата", zap.Int64("userId", userID), zap.Error(err))
		return "", errors.New("ошибка загрузки файла")
	}

	return fileURL, nil
}
