package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medbook/internal/domain"
)

// @Summary Регистрация
// @Description Создает учетную запись и отправляет письмо со ссылкой активации
// @Tags Авторизация
// @Accept json
// @Produce json
// @Param input body domain.RegisterRequest true "Данные для регистрации"
// @Success 201 {object} map[string]interface{} "ID пользователя"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Router /auth/register [post]
func (h *Handler) register(c *gin.Context) {
	var dto domain.RegisterRequest
	if err := c.ShouldBindJSON(&dto); err != nil {
		h.logger.Warn("неверное тело запроса при регистрации", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Auth.Register(c.Request.Context(), dto)
	if err != nil {
		h.logger.Error("ошибка при регистрации", zap.String("email", dto.Email), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{"id": id})
}

// @Summary Активация учетной записи
// @Description Подтверждает email по токену из письма, токен одноразовый
// @Tags Авторизация
// @Accept json
// @Produce json
// @Param token query string false "Токен активации"
// @Param input body domain.ActivateRequest false "Токен активации"
// @Success 200 {object} messageResponseType "Учетная запись активирована"
// @Failure 400 {object} errorResponseBody "Недействительный токен"
// @Router /auth/activate [post]
func (h *Handler) activate(c *gin.Context) {
	// Токен приходит либо в query по ссылке из письма, либо в теле.
	token := c.Query("token")
	if token == "" {
		var dto domain.ActivateRequest
		if err := c.ShouldBindJSON(&dto); err != nil {
			badRequestResponse(c, "не передан токен активации")
			return
		}
		token = dto.Token
	}

	if err := h.services.Auth.Activate(c.Request.Context(), token); err != nil {
		badRequestResponse(c, err.Error())
		return
	}

	messageResponse(c, http.StatusOK, "аккаунт активирован")
}

// @Summary Вход
// @Description Проверяет учетные данные и выдает пару токенов
// @Tags Авторизация
// @Accept json
// @Produce json
// @Param input body domain.LoginRequest true "Email и пароль"
// @Success 200 {object} domain.Tokens "Токены доступа и обновления"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 401 {object} errorResponseBody "Неверные учетные данные"
// @Router /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var dto domain.LoginRequest
	if err := c.ShouldBindJSON(&dto); err != nil {
		h.logger.Warn("неверное тело запроса при входе", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	tokens, err := h.services.Auth.Login(c.Request.Context(), dto, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		h.logger.Warn("неудачный вход", zap.String("login", dto.Login), zap.Error(err))
		errorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}

	successResponse(c, http.StatusOK, tokens)
}

// @Summary Обновление токенов
// @Description Меняет refresh-токен на новую пару токенов, старая сессия закрывается
// @Tags Авторизация
// @Accept json
// @Produce json
// @Param input body domain.RefreshTokenRequest true "Токен обновления"
// @Success 200 {object} domain.Tokens "Новая пара токенов"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 401 {object} errorResponseBody "Недействительный токен обновления"
// @Router /auth/refresh [post]
func (h *Handler) refreshTokens(c *gin.Context) {
	var dto domain.RefreshTokenRequest
	if err := c.ShouldBindJSON(&dto); err != nil {
		h.logger.Warn("неверное тело запроса при обновлении токенов", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	tokens, err := h.services.Auth.RefreshTokens(c.Request.Context(), dto.RefreshToken, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		h.logger.Warn("ошибка при обновлении токенов", zap.Error(err))
		errorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}

	successResponse(c, http.StatusOK, tokens)
}

// @Summary Выход
// @Description Закрывает сессию по refresh-токену
// @Tags Авторизация
// @Accept json
// @Produce json
// @Param input body domain.RefreshTokenRequest true "Токен обновления"
// @Success 204 {object} nil "Сессия закрыта"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Router /auth/logout [post]
func (h *Handler) logout(c *gin.Context) {
	var dto domain.RefreshTokenRequest
	if err := c.ShouldBindJSON(&dto); err != nil {
		h.logger.Warn("неверное тело запроса при выходе", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Auth.Logout(c.Request.Context(), dto.RefreshToken); err != nil {
		h.logger.Error("ошибка при выходе", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	noContentResponse(c)
}
