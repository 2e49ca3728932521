package rest

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medbook/internal/domain"
)

// @Summary Получить список смен
// @Description Возвращает смены расписания с фильтрацией по врачу, неделе и дню
// @Tags Расписание
// @Accept json
// @Produce json
// @Param doctor_id query int false "ID врача"
// @Param week_start query string false "Начало недели (YYYY-MM-DD)"
// @Param day_of_week query int false "День недели (0 - воскресенье)"
// @Param limit query int false "Лимит записей на странице (по умолчанию 20)"
// @Param offset query int false "Смещение (по умолчанию 0)"
// @Success 200 {object} paginatedResponse "Список смен"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Router /schedules [get]
func (h *Handler) getShifts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	filter := domain.ShiftFilter{
		Limit:  limit,
		Offset: offset,
	}

	if doctorStr := c.Query("doctor_id"); doctorStr != "" {
		doctorID, err := strconv.ParseInt(doctorStr, 10, 64)
		if err != nil {
			badRequestResponse(c, "неверный формат ID врача")
			return
		}
		filter.DoctorID = &doctorID
	}

	if weekStr := c.Query("week_start"); weekStr != "" {
		week, err := time.Parse("2006-01-02", weekStr)
		if err != nil {
			badRequestResponse(c, "неверный формат даты начала недели")
			return
		}
		week = domain.WeekStart(week)
		filter.WeekStart = &week
	}

	if dayStr := c.Query("day_of_week"); dayStr != "" {
		day, err := strconv.Atoi(dayStr)
		if err != nil || day < 0 || day > 6 {
			badRequestResponse(c, "неверный день недели")
			return
		}
		filter.DayOfWeek = &day
	}

	shifts, total, err := h.services.Schedule.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("ошибка при получении списка смен", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	page := offset/limit + 1

	paginatedSuccessResponse(c, shifts, total, page, limit)
}

// @Summary Получить смену по ID
// @Tags Расписание
// @Accept json
// @Produce json
// @Param id path int true "ID смены"
// @Success 200 {object} domain.Shift "Данные смены"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 404 {object} errorResponseBody "Смена не найдена"
// @Router /schedules/{id} [get]
func (h *Handler) getShiftByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	shift, err := h.services.Schedule.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "смена не найдена")
			return
		}
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, shift)
}

// @Summary Создать смену
// @Description Врач создает смену в собственном расписании
// @Tags Расписание
// @Accept json
// @Produce json
// @Param input body domain.CreateShiftDTO true "Данные смены"
// @Success 201 {object} map[string]interface{} "ID созданной смены"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Security ApiKeyAuth
// @Router /schedules [post]
func (h *Handler) createShift(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var req domain.CreateShiftDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Schedule.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.logger.Error("ошибка при создании смены", zap.Error(err))
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{
		"id": id,
	})
}

// @Summary Обновить смену
// @Tags Расписание
// @Accept json
// @Produce json
// @Param id path int true "ID смены"
// @Param input body domain.UpdateShiftDTO true "Новые данные смены"
// @Success 204 {object} nil "Смена обновлена"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 403 {object} errorResponseBody "Смена принадлежит другому врачу"
// @Failure 404 {object} errorResponseBody "Смена не найдена"
// @Security ApiKeyAuth
// @Router /schedules/{id} [put]
func (h *Handler) updateShift(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var req domain.UpdateShiftDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Schedule.Update(c.Request.Context(), id, userID, req); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "смена не найдена")
			return
		}
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	noContentResponse(c)
}

// @Summary Удалить смену
// @Tags Расписание
// @Accept json
// @Produce json
// @Param id path int true "ID смены"
// @Success 204 {object} nil "Смена удалена"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 403 {object} errorResponseBody "Смена принадлежит другому врачу"
// @Failure 404 {object} errorResponseBody "Смена не найдена"
// @Security ApiKeyAuth
// @Router /schedules/{id} [delete]
func (h *Handler) deleteShift(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	if err := h.services.Schedule.Delete(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "смена не найдена")
			return
		}
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	noContentResponse(c)
}

// @Summary Свободные слоты врача на дату
// @Description Возвращает слоты врача на указанную дату с признаком занятости
// @Tags Расписание
// @Accept json
// @Produce json
// @Param id path int true "ID врача"
// @Param date query string true "Дата (YYYY-MM-DD)"
// @Success 200 {array} domain.Slot "Слоты на дату"
// @Failure 400 {object} errorResponseBody "Неверные параметры"
// @Failure 404 {object} errorResponseBody "Нет расписания на выбранный день"
// @Router /doctors/{id}/free-slots [get]
func (h *Handler) getFreeSlots(c *gin.Context) {
	doctorID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID врача")
		return
	}

	date := c.Query("date")
	if date == "" {
		badRequestResponse(c, "не указана дата")
		return
	}

	slots, err := h.services.Schedule.GetFreeSlots(c.Request.Context(), doctorID, date)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoSchedule):
			notFoundResponse(c, err.Error())
		case errors.Is(err, domain.ErrNotFound):
			notFoundResponse(c, "врач не найден")
		default:
			errorResponse(c, http.StatusBadRequest, err.Error())
		}
		return
	}

	successResponse(c, http.StatusOK, slots)
}
