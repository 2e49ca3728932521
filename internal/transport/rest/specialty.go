package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medbook/internal/domain"
)

// @Summary Получить список специальностей
// @Description Возвращает список специальностей с пагинацией и поиском по названию
// @Tags Специальности
// @Accept json
// @Produce json
// @Param name query string false "Поиск по названию"
// @Param limit query int false "Лимит записей на странице (по умолчанию 20)"
// @Param offset query int false "Смещение (по умолчанию 0)"
// @Success 200 {object} paginatedResponse "Список специальностей"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Router /specialties [get]
func (h *Handler) getSpecialties(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	var name *string
	if v := c.Query("name"); v != "" {
		name = &v
	}

	filter := domain.SpecialtyFilter{
		Name:   name,
		Limit:  limit,
		Offset: offset,
	}

	specialties, total, err := h.services.Specialty.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("ошибка при получении специальностей", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	page := offset/limit + 1

	paginatedSuccessResponse(c, specialties, total, page, limit)
}

// @Summary Получить специальность по ID
// @Tags Специальности
// @Accept json
// @Produce json
// @Param id path int true "ID специальности"
// @Success 200 {object} domain.Specialty "Данные специальности"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 404 {object} errorResponseBody "Специальность не найдена"
// @Router /specialties/{id} [get]
func (h *Handler) getSpecialtyByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	specialty, err := h.services.Specialty.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "специальность не найдена")
			return
		}
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, specialty)
}

// @Summary Создать специальность
// @Description Создает новую специальность (только для администраторов)
// @Tags Специальности
// @Accept json
// @Produce json
// @Param input body domain.CreateSpecialtyDTO true "Данные специальности"
// @Success 201 {object} map[string]interface{} "ID созданной специальности"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /specialties [post]
func (h *Handler) createSpecialty(c *gin.Context) {
	var req domain.CreateSpecialtyDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Specialty.Create(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("ошибка при создании специальности", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{
		"id": id,
	})
}

// @Summary Обновить специальность
// @Tags Специальности
// @Accept json
// @Produce json
// @Param id path int true "ID специальности"
// @Param input body domain.UpdateSpecialtyDTO true "Новые данные специальности"
// @Success 204 {object} nil "Специальность обновлена"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 404 {object} errorResponseBody "Специальность не найдена"
// @Security ApiKeyAuth
// @Router /specialties/{id} [put]
func (h *Handler) updateSpecialty(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	var req domain.UpdateSpecialtyDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Specialty.Update(c.Request.Context(), id, req); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "специальность не найдена")
			return
		}
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	noContentResponse(c)
}

// @Summary Удалить специальность
// @Tags Специальности
// @Accept json
// @Produce json
// @Param id path int true "ID специальности"
// @Success 204 {object} nil "Специальность удалена"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 404 {object} errorResponseBody "Специальность не найдена"
// @Security ApiKeyAuth
// @Router /specialties/{id} [delete]
func (h *Handler) deleteSpecialty(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if err := h.services.Specialty.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "специальность не найдена")
			return
		}
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	noContentResponse(c)
}
