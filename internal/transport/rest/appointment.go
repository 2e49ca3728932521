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

func appointmentErrorResponse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrSlotTaken),
		errors.Is(err, domain.ErrPatientBusy),
		errors.Is(err, domain.ErrInvalidTransition):
		errorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrNoSchedule),
		errors.Is(err, domain.ErrSlotMisaligned),
		errors.Is(err, domain.ErrTooLateToCancel),
		errors.Is(err, domain.ErrReasonRequired):
		errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		notFoundResponse(c, "запись не найдена")
	default:
		errorResponse(c, http.StatusInternalServerError, err.Error())
	}
}

// @Summary Создать запись на прием
// @Description Пациент записывается к врачу на свободный слот
// @Tags Записи на прием
// @Accept json
// @Produce json
// @Param input body domain.CreateAppointmentDTO true "Данные записи"
// @Success 201 {object} map[string]interface{} "ID созданной записи"
// @Failure 400 {object} errorResponseBody "Ошибка валидации или нерабочее время"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 409 {object} errorResponseBody "Слот занят или у пациента уже есть запись"
// @Security ApiKeyAuth
// @Router /appointments [post]
func (h *Handler) createAppointment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	userRole, err := getUserRole(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	if userRole != domain.UserRolePatient {
		forbiddenResponse(c, "записаться на прием может только пациент")
		return
	}

	var req domain.CreateAppointmentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Appointment.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.logger.Warn("ошибка при создании записи", zap.Int64("patientId", userID), zap.Error(err))
		appointmentErrorResponse(c, err)
		return
	}

	createdResponse(c, map[string]interface{}{
		"id": id,
	})
}

// @Summary Получить запись по ID
// @Tags Записи на прием
// @Accept json
// @Produce json
// @Param id path int true "ID записи"
// @Success 200 {object} domain.Appointment "Данные записи"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Security ApiKeyAuth
// @Router /appointments/{id} [get]
func (h *Handler) getAppointmentByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	appointment, err := h.services.Appointment.GetByID(c.Request.Context(), id)
	if err != nil {
		appointmentErrorResponse(c, err)
		return
	}

	if !h.canViewAppointment(c, appointment) {
		return
	}

	successResponse(c, http.StatusOK, appointment)
}

func (h *Handler) canViewAppointment(c *gin.Context, appointment *domain.Appointment) bool {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return false
	}

	userRole, err := getUserRole(c)
	if err != nil {
		unauthorizedResponse(c)
		return false
	}

	switch userRole {
	case domain.UserRoleAdmin:
		return true
	case domain.UserRolePatient:
		if appointment.PatientID == userID {
			return true
		}
	case domain.UserRoleDoctor:
		doctor, err := h.services.Doctor.GetByUserID(c.Request.Context(), userID)
		if err == nil && doctor.ID == appointment.DoctorID {
			return true
		}
	}

	forbiddenResponse(c)
	return false
}

// @Summary Получить список записей
// @Description Пациент видит свои записи, врач записи к себе, администратор все
// @Tags Записи на прием
// @Accept json
// @Produce json
// @Param status query string false "Статус записи"
// @Param date_from query string false "Начальная дата (YYYY-MM-DD)"
// @Param date_to query string false "Конечная дата (YYYY-MM-DD)"
// @Param patient_id query int false "ID пациента (только администратор)"
// @Param doctor_id query int false "ID врача (только администратор)"
// @Param limit query int false "Лимит записей на странице (по умолчанию 20)"
// @Param offset query int false "Смещение (по умолчанию 0)"
// @Success 200 {object} paginatedResponse "Список записей"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Security ApiKeyAuth
// @Router /appointments [get]
func (h *Handler) getAppointments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	userRole, err := getUserRole(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	filter := domain.AppointmentFilter{
		Limit:  limit,
		Offset: offset,
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.AppointmentStatus(statusStr)
		filter.Status = &status
	}

	if dateFrom := c.Query("date_from"); dateFrom != "" {
		parsed, err := time.Parse("2006-01-02", dateFrom)
		if err == nil {
			filter.StartDate = &parsed
		}
	}

	if dateTo := c.Query("date_to"); dateTo != "" {
		parsed, err := time.Parse("2006-01-02", dateTo)
		if err == nil {
			parsed = parsed.AddDate(0, 0, 1)
			filter.EndDate = &parsed
		}
	}

	switch userRole {
	case domain.UserRolePatient:
		filter.PatientID = &userID
	case domain.UserRoleDoctor:
		doctor, err := h.services.Doctor.GetByUserID(c.Request.Context(), userID)
		if err != nil {
			notFoundResponse(c, "профиль врача не найден")
			return
		}
		filter.DoctorID = &doctor.ID
	case domain.UserRoleAdmin:
		if patientStr := c.Query("patient_id"); patientStr != "" {
			patientID, err := strconv.ParseInt(patientStr, 10, 64)
			if err == nil {
				filter.PatientID = &patientID
			}
		}
		if doctorStr := c.Query("doctor_id"); doctorStr != "" {
			doctorID, err := strconv.ParseInt(doctorStr, 10, 64)
			if err == nil {
				filter.DoctorID = &doctorID
			}
		}
	}

	appointments, total, err := h.services.Appointment.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("ошибка при получении записей", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	page := offset/limit + 1

	paginatedSuccessResponse(c, appointments, total, page, limit)
}

// @Summary Сменить статус записи
// @Description Врач подтверждает или завершает запись, отмена идет через /cancel
// @Tags Записи на прием
// @Accept json
// @Produce json
// @Param id path int true "ID записи"
// @Param input body domain.UpdateAppointmentStatusDTO true "Новый статус"
// @Success 204 {object} nil "Статус обновлен"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Failure 409 {object} errorResponseBody "Недопустимая смена статуса"
// @Security ApiKeyAuth
// @Router /appointments/{id}/status [put]
func (h *Handler) updateAppointmentStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	userRole, err := getUserRole(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	if userRole == domain.UserRolePatient {
		forbiddenResponse(c, "статус записи меняет врач или администратор")
		return
	}

	appointment, err := h.services.Appointment.GetByID(c.Request.Context(), id)
	if err != nil {
		appointmentErrorResponse(c, err)
		return
	}

	if userRole == domain.UserRoleDoctor && !h.canViewAppointment(c, appointment) {
		return
	}

	var req domain.UpdateAppointmentStatusDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Appointment.UpdateStatus(c.Request.Context(), id, req); err != nil {
		appointmentErrorResponse(c, err)
		return
	}

	noContentResponse(c)
}

// @Summary Отменить запись
// @Description Пациент отменяет не позднее чем за 5 дней до приема с указанием причины
// @Tags Записи на прием
// @Accept json
// @Produce json
// @Param id path int true "ID записи"
// @Param input body domain.CancelAppointmentDTO true "Причина отмены"
// @Success 204 {object} nil "Запись отменена"
// @Failure 400 {object} errorResponseBody "Поздняя отмена или не указана причина"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Failure 409 {object} errorResponseBody "Запись уже в конечном статусе"
// @Security ApiKeyAuth
// @Router /appointments/{id}/cancel [post]
func (h *Handler) cancelAppointment(c *gin.Context) {
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

	userRole, err := getUserRole(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var req domain.CancelAppointmentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, domain.ErrReasonRequired.Error())
		return
	}

	if err := h.services.Appointment.Cancel(c.Request.Context(), id, userID, userRole, req); err != nil {
		appointmentErrorResponse(c, err)
		return
	}

	noContentResponse(c)
}

// @Summary Удалить запись на прием
// @Description Физически удаляет запись, доступно администратору
// @Tags Записи на прием
// @Accept json
// @Produce json
// @Param id path int true "ID записи"
// @Success 204 {object} nil "Запись удалена"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Security ApiKeyAuth
// @Router /appointments/{id} [delete]
func (h *Handler) deleteAppointment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if err := h.services.Appointment.Delete(c.Request.Context(), id); err != nil {
		appointmentErrorResponse(c, err)
		return
	}

	noContentResponse(c)
}
