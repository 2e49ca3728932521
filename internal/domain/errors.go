package domain

import "errors"

// Booking and cancellation business rule errors. The transport layer maps
// them to 4xx responses with the message as is.
var (
	ErrNoSchedule         = errors.New("у врача нет расписания на выбранный день")
	ErrSlotMisaligned     = errors.New("выбранное время не совпадает с границей слота")
	ErrSlotTaken          = errors.New("выбранный слот времени уже занят")
	ErrPatientBusy        = errors.New("у пациента уже есть запись на этот день")
	ErrInvalidTransition  = errors.New("недопустимая смена статуса записи")
	ErrTooLateToCancel    = errors.New("отмена возможна не позднее чем за 5 дней до приема")
	ErrReasonRequired     = errors.New("необходимо указать причину отмены")
	ErrAccountNotActive   = errors.New("аккаунт не активирован")
	ErrNotFound           = errors.New("не найдено")
)
