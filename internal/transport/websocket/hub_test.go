package websocket

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"medbook/internal/domain"
)

func TestHubOfflineDelivery(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)

	if hub.IsUserOnline(42) {
		t.Error("empty hub reports user online")
	}

	// Доставка офлайн-пользователю просто пропускается.
	hub.DeliverMessage(&domain.ChatMessage{
		ID: 1, SenderID: 1, RecipientID: 42,
		Content:   "привет",
		CreatedAt: time.Now(),
	})
	hub.DeliverMessage(nil)
	hub.NotifyRead(42, 1)
}

func TestClientSendAfterClose(t *testing.T) {
	client := &Client{UserID: 7, send: make(chan []byte, 1)}

	if !client.trySend([]byte("a")) {
		t.Fatal("send to open client failed")
	}

	client.closeSend()
	client.closeSend() // повторное закрытие безопасно

	if client.trySend([]byte("b")) {
		t.Error("send to closed client reported success")
	}
}

// Переподключение пользователя во время доставки не должно ронять хаб:
// вытесненный клиент закрывается, а отправка по его устаревшему
// указателю молча отбрасывается.
func TestHubDeliveryDuringReconnect(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)
	go hub.Run()

	const rounds = 200
	message := &domain.ChatMessage{
		ID: 1, SenderID: 1, RecipientID: 42,
		Content:   "привет",
		CreatedAt: time.Now(),
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			hub.register <- &Client{UserID: 42, Hub: hub, send: make(chan []byte, 4)}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			hub.DeliverMessage(message)
		}
	}()

	wg.Wait()

	if !hub.IsUserOnline(42) {
		t.Error("user offline after reconnect")
	}
}
