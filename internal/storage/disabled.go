package storage

import (
	"context"
	"errors"
	"time"
)

// ErrStorageDisabled возвращается, когда S3 не сконфигурирован.
var ErrStorageDisabled = errors.New("файловое хранилище не настроено")

// DisabledStorage подставляется вместо S3, если он не настроен:
// сервис стартует, а операции с файлами возвращают понятную ошибку.
type DisabledStorage struct{}

func NewDisabledStorage() *DisabledStorage {
	return &DisabledStorage{}
}

func (DisabledStorage) UploadFile(ctx context.Context, data []byte, objectName string) (string, error) {
	return "", ErrStorageDisabled
}

func (DisabledStorage) DeleteFile(ctx context.Context, fileURL string) error {
	return ErrStorageDisabled
}

func (DisabledStorage) GetFile(ctx context.Context, fileURL string) ([]byte, error) {
	return nil, ErrStorageDisabled
}

func (DisabledStorage) GetPresignedURL(ctx context.Context, fileURL string, expiry time.Duration) (string, error) {
	return "", ErrStorageDisabled
}
