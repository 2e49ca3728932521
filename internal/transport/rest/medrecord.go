package rest

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medbook/internal/domain"
)

// @Summary Создать медицинскую запись
// @Description Врач оформляет запись по завершенному приему
// @Tags Медицинские записи
// @Accept json
// @Produce json
// @Param input body domain.CreateMedicalRecordDTO true "Данные записи"
// @Success 201 {object} map[string]interface{} "ID созданной записи"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Security ApiKeyAuth
// @Router /medical-records [post]
func (h *Handler) createMedicalRecord(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var req domain.CreateMedicalRecordDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.MedicalRecord.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.logger.Error("ошибка при создании медицинской записи", zap.Error(err))
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{
		"id": id,
	})
}

// @Summary Получить медицинскую запись по ID
// @Description Запись видят пациент, лечащий врач и администратор
// @Tags Медицинские записи
// @Accept json
// @Produce json
// @Param id path int true "ID записи"
// @Success 200 {object} domain.MedicalRecord "Медицинская запись"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Security ApiKeyAuth
// @Router /medical-records/{id} [get]
func (h *Handler) getMedicalRecordByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	record, err := h.services.MedicalRecord.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "медицинская запись не найдена")
			return
		}
		internalServerErrorResponse(c)
		return
	}

	if !h.canViewMedicalRecord(c, record) {
		return
	}

	successResponse(c, http.StatusOK, record)
}

func (h *Handler) canViewMedicalRecord(c *gin.Context, record *domain.MedicalRecord) bool {
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
		if record.PatientID == userID {
			return true
		}
	case domain.UserRoleDoctor:
		doctor, err := h.services.Doctor.GetByUserID(c.Request.Context(), userID)
		if err == nil && doctor.ID == record.DoctorID {
			return true
		}
	}

	forbiddenResponse(c)
	return false
}

// @Summary Получить список медицинских записей
// @Description Пациент видит свои записи, врач свои, администратор фильтрует произвольно
// @Tags Медицинские записи
// @Accept json
// @Produce json
// @Param patient_id query int false "ID пациента (только администратор)"
// @Param doctor_id query int false "ID врача (только администратор)"
// @Param limit query int false "Лимит записей на странице (по умолчанию 20)"
// @Param offset query int false "Смещение (по умолчанию 0)"
// @Success 200 {object} paginatedResponse "Список медицинских записей"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Security ApiKeyAuth
// @Router /medical-records [get]
func (h *Handler) getMedicalRecords(c *gin.Context) {
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

	filter := domain.MedicalRecordFilter{
		Limit:  limit,
		Offset: offset,
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

	records, total, err := h.services.MedicalRecord.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("ошибка при получении медицинских записей", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	page := offset/limit + 1

	paginatedSuccessResponse(c, records, total, page, limit)
}

// @Summary Обновить медицинскую запись
// @Tags Медицинские записи
// @Accept json
// @Produce json
// @Param id path int true "ID записи"
// @Param input body domain.UpdateMedicalRecordDTO true "Новые данные"
// @Success 204 {object} nil "Запись обновлена"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Security ApiKeyAuth
// @Router /medical-records/{id} [put]
func (h *Handler) updateMedicalRecord(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	record, err := h.services.MedicalRecord.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "медицинская запись не найдена")
			return
		}
		internalServerErrorResponse(c)
		return
	}

	if !h.canViewMedicalRecord(c, record) {
		return
	}

	var req domain.UpdateMedicalRecordDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.MedicalRecord.Update(c.Request.Context(), id, req); err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	noContentResponse(c)
}

// @Summary Загрузить вложение к медицинской записи
// @Tags Медицинские записи
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "ID записи"
// @Param file formData file true "Файл вложения"
// @Success 204 {object} nil "Вложение загружено"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Security ApiKeyAuth
// @Router /medical-records/{id}/attachment [post]
func (h *Handler) uploadMedicalRecordAttachment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	record, err := h.services.MedicalRecord.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "медицинская запись не найдена")
			return
		}
		internalServerErrorResponse(c)
		return
	}

	if !h.canViewMedicalRecord(c, record) {
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

	if err := h.services.MedicalRecord.UploadAttachment(c.Request.Context(), id, data, fileHeader.Filename); err != nil {
		h.logger.Error("ошибка при загрузке вложения", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	noContentResponse(c)
}

// @Summary Добавить назначение
// @Tags Медицинские записи
// @Accept json
// @Produce json
// @Param id path int true "ID записи"
// @Param input body domain.CreatePrescriptionDTO true "Данные назначения"
// @Success 201 {object} map[string]interface{} "ID созданного назначения"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Security ApiKeyAuth
// @Router /medical-records/{id}/prescriptions [post]
func (h *Handler) addPrescription(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	record, err := h.services.MedicalRecord.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "медицинская запись не найдена")
			return
		}
		internalServerErrorResponse(c)
		return
	}

	if !h.canViewMedicalRecord(c, record) {
		return
	}

	var req domain.CreatePrescriptionDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	prescriptionID, err := h.services.MedicalRecord.AddPrescription(c.Request.Context(), id, req)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{
		"id": prescriptionID,
	})
}

// @Summary Удалить назначение
// @Tags Медицинские записи
// @Accept json
// @Produce json
// @Param prescriptionId path int true "ID назначения"
// @Success 204 {object} nil "Назначение удалено"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Security ApiKeyAuth
// @Router /medical-records/prescriptions/{prescriptionId} [delete]
func (h *Handler) deletePrescription(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("prescriptionId"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if err := h.services.MedicalRecord.DeletePrescription(c.Request.Context(), id); err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	noContentResponse(c)
}
