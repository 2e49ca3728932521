package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medbook/internal/domain"
)

// @Summary Получить каталог услуг
// @Description Возвращает список медицинских услуг, опционально по специальности
// @Tags Услуги
// @Accept json
// @Produce json
// @Param specialty_id query int false "ID специальности"
// @Param limit query int false "Лимит записей на странице (по умолчанию 20)"
// @Param offset query int false "Смещение (по умолчанию 0)"
// @Success 200 {object} paginatedResponse "Каталог услуг"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Router /services [get]
func (h *Handler) getServices(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	filter := domain.MedicalServiceFilter{
		Limit:  limit,
		Offset: offset,
	}

	if specialtyStr := c.Query("specialty_id"); specialtyStr != "" {
		specialtyID, err := strconv.ParseInt(specialtyStr, 10, 64)
		if err != nil {
			badRequestResponse(c, "неверный формат ID специальности")
			return
		}
		filter.SpecialtyID = &specialtyID
	}

	services, total, err := h.services.Catalog.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("ошибка при получении каталога услуг", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	page := offset/limit + 1

	paginatedSuccessResponse(c, services, total, page, limit)
}

// @Summary Получить услугу по ID
// @Tags Услуги
// @Accept json
// @Produce json
// @Param id path int true "ID услуги"
// @Success 200 {object} domain.MedicalService "Данные услуги"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 404 {object} errorResponseBody "Услуга не найдена"
// @Router /services/{id} [get]
func (h *Handler) getServiceByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	service, err := h.services.Catalog.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "услуга не найдена")
			return
		}
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, service)
}

// @Summary Создать услугу
// @Description Создает новую услугу в каталоге (только для администраторов)
// @Tags Услуги
// @Accept json
// @Produce json
// @Param input body domain.CreateMedicalServiceDTO true "Данные услуги"
// @Success 201 {object} map[string]interface{} "ID созданной услуги"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Security ApiKeyAuth
// @Router /services [post]
func (h *Handler) createService(c *gin.Context) {
	var req domain.CreateMedicalServiceDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Catalog.Create(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("ошибка при создании услуги", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{
		"id": id,
	})
}

// @Summary Обновить услугу
// @Tags Услуги
// @Accept json
// @Produce json
// @Param id path int true "ID услуги"
// @Param input body domain.UpdateMedicalServiceDTO true "Новые данные услуги"
// @Success 204 {object} nil "Услуга обновлена"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 404 {object} errorResponseBody "Услуга не найдена"
// @Security ApiKeyAuth
// @Router /services/{id} [put]
func (h *Handler) updateService(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	var req domain.UpdateMedicalServiceDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Catalog.Update(c.Request.Context(), id, req); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "услуга не найдена")
			return
		}
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	noContentResponse(c)
}

// @Summary Удалить услугу
// @Tags Услуги
// @Accept json
// @Produce json
// @Param id path int true "ID услуги"
// @Success 204 {object} nil "Услуга удалена"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 404 {object} errorResponseBody "Услуга не найдена"
// @Security ApiKeyAuth
// @Router /services/{id} [delete]
func (h *Handler) deleteService(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if err := h.services.Catalog.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "услуга не найдена")
			return
		}
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	noContentResponse(c)
}
