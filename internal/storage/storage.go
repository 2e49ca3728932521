package storage

import (
	"context"
	"time"
)

// FileStorage хранит загружаемые файлы: фото врачей, вложения чата
// и документы медкарт. Имя объекта вместе с префиксом и расширением
// формирует вызывающая сторона.
type FileStorage interface {
	// UploadFile сохраняет данные и возвращает публичный URL объекта.
	UploadFile(ctx context.Context, data []byte, objectName string) (string, error)

	DeleteFile(ctx context.Context, fileURL string) error

	GetFile(ctx context.Context, fileURL string) ([]byte, error)

	// GetPresignedURL выдает временную ссылку на приватный объект.
	GetPresignedURL(ctx context.Context, fileURL string, expiry time.Duration) (string, error)
}
