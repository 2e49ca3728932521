package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"medbook/internal/domain"
	"medbook/internal/service"
)

// Event types exchanged over the chat socket.
const (
	EventMessage    = "message"
	EventTyping     = "typing"
	EventStopTyping = "stop-typing"
	EventRead       = "read"
	EventPing       = "ping"
	EventPong       = "pong"
	EventError      = "error"
)

// ChatEvent is the envelope for all messages on the chat socket.
type ChatEvent struct {
	Type      string      `json:"type"`
	From      int64       `json:"from,omitempty"`
	To        int64       `json:"to,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// messagePayload is the Data of an inbound EventMessage.
type messagePayload struct {
	Type     domain.MessageType `json:"message_type"`
	Content  string             `json:"content"`
	FileURL  *string            `json:"file_url,omitempty"`
	FileName *string            `json:"file_name,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	UserID int64
	Role   domain.UserRole
	Conn   *websocket.Conn
	Hub    *Hub

	// Канал send закрывается только через closeSend под тем же мьютексом,
	// которым защищена запись, иначе отправка по вытесненному клиенту
	// попадет в закрытый канал и уронит процесс.
	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// trySend queues data for the write pump without blocking. It reports
// false if the client is already closed or its buffer is full.
func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Hub maintains the set of active chat clients and routes events between them.
// Messages received over the socket are persisted through the chat service
// before delivery, so a recipient who is offline still gets them via REST.
type Hub struct {
	// Registered clients by user ID
	clients map[int64]*Client

	// Inbound events from the clients
	inbound chan inboundEvent

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	logger   *zap.Logger
	services *service.Services

	mutex sync.RWMutex
}

type inboundEvent struct {
	client *Client
	data   []byte
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Авторизация делается по JWT в query, Origin не проверяем.
		return true
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// NewHub creates a new chat hub
func NewHub(logger *zap.Logger, services *service.Services) *Hub {
	return &Hub{
		clients:    make(map[int64]*Client),
		inbound:    make(chan inboundEvent),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
		services:   services,
	}
}

// Run starts the hub loop. It must run in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			// Одно соединение на пользователя, старое вытесняется.
			if old, ok := h.clients[client.UserID]; ok {
				old.closeSend()
			}
			h.clients[client.UserID] = client
			h.mutex.Unlock()
			h.logger.Info("chat client connected",
				zap.Int64("user_id", client.UserID),
				zap.String("role", string(client.Role)))

		case client := <-h.unregister:
			h.mutex.Lock()
			if current, ok := h.clients[client.UserID]; ok && current == client {
				delete(h.clients, client.UserID)
				client.closeSend()
			}
			h.mutex.Unlock()
			h.logger.Info("chat client disconnected", zap.Int64("user_id", client.UserID))

		case ev := <-h.inbound:
			var event ChatEvent
			if err := json.Unmarshal(ev.data, &event); err != nil {
				h.logger.Warn("не удалось разобрать событие чата", zap.Error(err))
				continue
			}
			event.From = ev.client.UserID
			event.Timestamp = time.Now().Format(time.RFC3339)
			h.handleEvent(ev.client, &event)
		}
	}
}

func (h *Hub) handleEvent(client *Client, event *ChatEvent) {
	switch event.Type {
	case EventMessage:
		h.handleMessage(client, event)
	case EventTyping, EventStopTyping:
		// Индикаторы набора не сохраняются, только пересылаются.
		h.forwardToUser(event.To, event)
	case EventRead:
		h.handleRead(client, event)
	case EventPing:
		h.sendToUser(client.UserID, &ChatEvent{
			Type:      EventPong,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	default:
		h.logger.Warn("unknown chat event type", zap.String("type", event.Type))
	}
}

// handleMessage persists an inbound message and delivers it to the recipient.
func (h *Hub) handleMessage(client *Client, event *ChatEvent) {
	raw, err := json.Marshal(event.Data)
	if err != nil {
		h.sendError(client.UserID, "неверный формат сообщения")
		return
	}

	var payload messagePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.sendError(client.UserID, "неверный формат сообщения")
		return
	}
	if payload.Type == "" {
		payload.Type = domain.MessageTypeText
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	message, err := h.services.Chat.SendMessage(ctx, client.UserID, domain.CreateChatMessageDTO{
		RecipientID: event.To,
		Type:        payload.Type,
		Content:     payload.Content,
		FileURL:     payload.FileURL,
		FileName:    payload.FileName,
	})
	if err != nil {
		h.logger.Warn("ошибка при отправке сообщения через сокет",
			zap.Int64("sender_id", client.UserID),
			zap.Error(err))
		h.sendError(client.UserID, err.Error())
		return
	}

	// Отправителю возвращается сохраненное сообщение с ID и временем.
	saved := &ChatEvent{
		Type:      EventMessage,
		From:      message.SenderID,
		To:        message.RecipientID,
		Data:      message,
		Timestamp: message.CreatedAt.Format(time.RFC3339),
	}
	h.sendToUser(client.UserID, saved)
	h.sendToUser(message.RecipientID, saved)
}

// handleRead marks the dialog with event.To as read and notifies the peer.
func (h *Hub) handleRead(client *Client, event *ChatEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := h.services.Chat.MarkRead(ctx, client.UserID, event.To); err != nil {
		h.logger.Warn("ошибка при отметке сообщений прочитанными",
			zap.Int64("user_id", client.UserID),
			zap.Error(err))
		return
	}

	h.forwardToUser(event.To, event)
}

// DeliverMessage pushes a message persisted over REST to the recipient's
// socket, if the recipient is online. Called by the REST handler.
func (h *Hub) DeliverMessage(message *domain.ChatMessage) {
	if message == nil {
		return
	}
	h.sendToUser(message.RecipientID, &ChatEvent{
		Type:      EventMessage,
		From:      message.SenderID,
		To:        message.RecipientID,
		Data:      message,
		Timestamp: message.CreatedAt.Format(time.RFC3339),
	})
}

// NotifyRead tells peerID that readerID has read their dialog.
func (h *Hub) NotifyRead(peerID, readerID int64) {
	h.sendToUser(peerID, &ChatEvent{
		Type:      EventRead,
		From:      readerID,
		To:        peerID,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// IsUserOnline checks if a user has an active chat connection.
func (h *Hub) IsUserOnline(userID int64) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	_, exists := h.clients[userID]
	return exists
}

func (h *Hub) forwardToUser(userID int64, event *ChatEvent) {
	h.sendToUser(userID, event)
}

func (h *Hub) sendError(userID int64, message string) {
	h.sendToUser(userID, &ChatEvent{
		Type:      EventError,
		Data:      map[string]string{"error": message},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (h *Hub) sendToUser(userID int64, event *ChatEvent) {
	h.mutex.RLock()
	client, exists := h.clients[userID]
	h.mutex.RUnlock()
	if !exists {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal chat event", zap.Error(err))
		return
	}

	if !client.trySend(data) {
		// Клиент вытеснен или буфер переполнен, соединение закроется само.
		h.logger.Warn("chat client unreachable",
			zap.Int64("user_id", userID),
			zap.String("event_type", event.Type))
	}
}

// HandleWebSocket authenticates the connection by JWT from the query string
// and upgrades it to a chat socket.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "требуется токен"})
		return
	}

	userID, role, err := h.services.Auth.ParseToken(c.Request.Context(), token)
	if err != nil {
		h.logger.Warn("invalid websocket token", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "недействительный токен"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}

	client := &Client{
		UserID: userID,
		Role:   role,
		Conn:   conn,
		Hub:    h,
		send:   make(chan []byte, 256),
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(64 * 1024)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Error("websocket error", zap.Error(err))
			}
			break
		}

		c.Hub.inbound <- inboundEvent{client: c, data: data}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Hub.logger.Error("failed to write message to websocket",
					zap.Int64("user_id", c.UserID),
					zap.Error(err))
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
