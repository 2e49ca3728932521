package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medbook/internal/domain"
)

// Доступ к чужому профилю разрешен только администратору.
func (h *Handler) resolveUserAccess(c *gin.Context, targetID int64) bool {
	currentID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return false
	}
	if currentID == targetID {
		return true
	}
	role, err := getUserRole(c)
	if err != nil {
		unauthorizedResponse(c)
		return false
	}
	if role != domain.UserRoleAdmin {
		forbiddenResponse(c)
		return false
	}
	return true
}

// @Summary Создать учетную запись
// @Description Создает пользователя с указанной ролью, доступно администратору
// @Tags Пользователи
// @Accept json
// @Produce json
// @Param input body domain.CreateUserDTO true "Данные новой учетной записи"
// @Success 201 {object} map[string]interface{} "ID пользователя"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /users [post]
func (h *Handler) createUser(c *gin.Context) {
	var dto domain.CreateUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		h.logger.Warn("неверное тело запроса при создании пользователя", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.User.Create(c.Request.Context(), dto)
	if err != nil {
		h.logger.Error("не удалось создать пользователя", zap.String("email", dto.Email), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{"id": id})
}

// @Summary Профиль пользователя
// @Description Возвращает пользователя по ID, свой профиль или любой для администратора
// @Tags Пользователи
// @Accept json
// @Produce json
// @Param id path int true "ID пользователя"
// @Success 200 {object} domain.User "Профиль"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Пользователь не найден"
// @Security ApiKeyAuth
// @Router /users/{id} [get]
func (h *Handler) getUserByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if !h.resolveUserAccess(c, id) {
		return
	}

	user, err := h.services.User.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "пользователь не найден")
			return
		}
		h.logger.Error("не удалось получить пользователя", zap.Int64("user_id", id), zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, user)
}

// @Summary Обновить профиль
// @Description Обновляет имя, телефон и прочие данные пользователя
// @Tags Пользователи
// @Accept json
// @Produce json
// @Param id path int true "ID пользователя"
// @Param input body domain.UpdateUserDTO true "Изменяемые поля"
// @Success 204 {object} nil "Профиль обновлен"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Пользователь не найден"
// @Security ApiKeyAuth
// @Router /users/{id} [put]
func (h *Handler) updateUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if !h.resolveUserAccess(c, id) {
		return
	}

	var dto domain.UpdateUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		h.logger.Warn("неверное тело запроса при обновлении пользователя", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	// Флаг активности меняет только администратор, иначе деактивированный
	// пользователь снял бы блокировку с себя еще живым токеном.
	if role, err := getUserRole(c); err != nil || role != domain.UserRoleAdmin {
		dto.IsActive = nil
	}

	if err := h.services.User.Update(c.Request.Context(), id, dto); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "пользователь не найден")
			return
		}
		h.logger.Error("не удалось обновить пользователя", zap.Int64("user_id", id), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	noContentResponse(c)
}

// @Summary Сменить пароль
// @Description Меняет пароль после проверки текущего, только для владельца учетной записи
// @Tags Пользователи
// @Accept json
// @Produce json
// @Param id path int true "ID пользователя"
// @Param input body domain.PasswordUpdateDTO true "Текущий и новый пароль"
// @Success 204 {object} nil "Пароль изменен"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /users/{id}/password [put]
func (h *Handler) updatePassword(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	currentID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}
	// Пароль меняет только сам пользователь, администратор не исключение.
	if currentID != id {
		forbiddenResponse(c)
		return
	}

	var dto domain.PasswordUpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		h.logger.Warn("неверное тело запроса при смене пароля", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.User.UpdatePassword(c.Request.Context(), id, dto); err != nil {
		h.logger.Error("не удалось сменить пароль", zap.Int64("user_id", id), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	noContentResponse(c)
}

// @Summary Удалить учетную запись
// @Description Удаляет пользователя, доступно администратору
// @Tags Пользователи
// @Accept json
// @Produce json
// @Param id path int true "ID пользователя"
// @Success 204 {object} nil "Учетная запись удалена"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Пользователь не найден"
// @Security ApiKeyAuth
// @Router /users/{id} [delete]
func (h *Handler) deleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if err := h.services.User.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "пользователь не найден")
			return
		}
		h.logger.Error("не удалось удалить пользователя", zap.Int64("user_id", id), zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	noContentResponse(c)
}

// @Summary Список пользователей
// @Description Возвращает пользователей постранично, доступно администратору
// @Tags Пользователи
// @Accept json
// @Produce json
// @Param limit query int false "Размер страницы (по умолчанию 20)"
// @Param offset query int false "Смещение (по умолчанию 0)"
// @Success 200 {array} domain.User "Пользователи"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /users [get]
func (h *Handler) getUsers(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	users, err := h.services.User.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("не удалось получить список пользователей", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, users)
}

// @Summary Текущий пользователь
// @Description Возвращает профиль пользователя из токена авторизации
// @Tags Пользователи
// @Accept json
// @Produce json
// @Success 200 {object} domain.User "Профиль"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /users/me [get]
func (h *Handler) getCurrentUser(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	user, err := h.services.User.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("не удалось получить текущего пользователя", zap.Int64("user_id", userID), zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, user)
}
