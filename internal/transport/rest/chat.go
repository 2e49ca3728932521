package rest

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medbook/internal/domain"
)

// @Summary Получить список диалогов
// @Description Возвращает диалоги пользователя с последним сообщением и числом непрочитанных
// @Tags Чат
// @Accept json
// @Produce json
// @Success 200 {array} domain.Conversation "Список диалогов"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Security ApiKeyAuth
// @Router /chat/conversations [get]
func (h *Handler) getConversations(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	conversations, err := h.services.Chat.ListConversations(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("ошибка при получении диалогов", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, conversations)
}

// @Summary Получить сообщения диалога
// @Tags Чат
// @Accept json
// @Produce json
// @Param peer_id query int true "ID собеседника"
// @Param limit query int false "Лимит сообщений (по умолчанию 50)"
// @Param offset query int false "Смещение (по умолчанию 0)"
// @Success 200 {array} domain.ChatMessage "Сообщения диалога"
// @Failure 400 {object} errorResponseBody "Не указан собеседник"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Security ApiKeyAuth
// @Router /chat/messages [get]
func (h *Handler) getChatMessages(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	peerID, err := strconv.ParseInt(c.Query("peer_id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "не указан собеседник")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	messages, err := h.services.Chat.GetMessages(c.Request.Context(), userID, domain.ChatMessageFilter{
		PeerID: peerID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.logger.Error("ошибка при получении сообщений", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, messages)
}

// @Summary Отправить сообщение
// @Description Сохраняет сообщение и доставляет его получателю, если тот онлайн
// @Tags Чат
// @Accept json
// @Produce json
// @Param input body domain.CreateChatMessageDTO true "Данные сообщения"
// @Success 201 {object} domain.ChatMessage "Отправленное сообщение"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Security ApiKeyAuth
// @Router /chat/messages [post]
func (h *Handler) sendChatMessage(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var req domain.CreateChatMessageDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	message, err := h.services.Chat.SendMessage(c.Request.Context(), userID, req)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	h.chatHub.DeliverMessage(message)

	createdResponse(c, message)
}

// @Summary Отметить диалог прочитанным
// @Tags Чат
// @Accept json
// @Produce json
// @Param peerId path int true "ID собеседника"
// @Success 200 {object} map[string]interface{} "Число отмеченных сообщений"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Security ApiKeyAuth
// @Router /chat/conversations/{peerId}/read [post]
func (h *Handler) markConversationRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	peerID, err := strconv.ParseInt(c.Param("peerId"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID собеседника")
		return
	}

	count, err := h.services.Chat.MarkRead(c.Request.Context(), userID, peerID)
	if err != nil {
		internalServerErrorResponse(c)
		return
	}

	h.chatHub.NotifyRead(peerID, userID)

	successResponse(c, http.StatusOK, map[string]interface{}{
		"marked": count,
	})
}

// @Summary Число непрочитанных сообщений
// @Tags Чат
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Счетчик непрочитанных"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Security ApiKeyAuth
// @Router /chat/unread [get]
func (h *Handler) getUnreadCount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	count, err := h.services.Chat.CountUnread(c.Request.Context(), userID)
	if err != nil {
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, map[string]interface{}{
		"unread": count,
	})
}

// @Summary Загрузить файл для чата
// @Description Загружает файл и возвращает ссылку для файлового сообщения
// @Tags Чат
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Файл"
// @Success 201 {object} map[string]interface{} "Ссылка на файл"
// @Failure 400 {object} errorResponseBody "Не передан файл"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Security ApiKeyAuth
// @Router /chat/attachments [post]
func (h *Handler) uploadChatAttachment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequestResponse(c, "не передан файл")
		return
	}

	if fileHeader.Size > maxUploadSize {
		badRequestResponse(c, "файл слишком большой")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		internalServerErrorResponse(c)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		internalServerErrorResponse(c)
		return
	}

	fileURL, err := h.services.Chat.UploadAttachment(c.Request.Context(), userID, data, fileHeader.Filename)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{
		"file_url":  fileURL,
		"file_name": fileHeader.Filename,
	})
}
