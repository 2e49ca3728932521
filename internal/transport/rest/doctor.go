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

const maxUploadSize = 10 << 20 // 10 МБ

// @Summary Получить список врачей
// @Description Возвращает список врачей, опционально по специальности
// @Tags Врачи
// @Accept json
// @Produce json
// @Param specialty_id query int false "ID специальности"
// @Param limit query int false "Лимит записей на странице (по умолчанию 20)"
// @Param offset query int false "Смещение (по умолчанию 0)"
// @Success 200 {object} paginatedResponse "Список врачей"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Router /doctors [get]
func (h *Handler) getDoctors(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	filter := domain.DoctorFilter{
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

	doctors, total, err := h.services.Doctor.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("ошибка при получении списка врачей", zap.Error(err))
		internalServerErrorResponse(c)
		return
	}

	page := offset/limit + 1

	paginatedSuccessResponse(c, doctors, total, page, limit)
}

// @Summary Получить врача по ID
// @Tags Врачи
// @Accept json
// @Produce json
// @Param id path int true "ID врача"
// @Success 200 {object} domain.Doctor "Профиль врача"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 404 {object} errorResponseBody "Врач не найден"
// @Router /doctors/{id} [get]
func (h *Handler) getDoctorByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	doctor, err := h.services.Doctor.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "врач не найден")
			return
		}
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, doctor)
}

// @Summary Получить собственный профиль врача
// @Tags Врачи
// @Accept json
// @Produce json
// @Success 200 {object} domain.Doctor "Профиль врача"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 404 {object} errorResponseBody "Профиль не найден"
// @Security ApiKeyAuth
// @Router /doctors/me [get]
func (h *Handler) getMyDoctorProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	doctor, err := h.services.Doctor.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "профиль врача не найден")
			return
		}
		internalServerErrorResponse(c)
		return
	}

	successResponse(c, http.StatusOK, doctor)
}

type createDoctorRequest struct {
	UserID int64 `json:"user_id"`
	domain.CreateDoctorDTO
}

// @Summary Создать профиль врача
// @Description Врач создает собственный профиль, администратор может указать user_id
// @Tags Врачи
// @Accept json
// @Produce json
// @Param input body createDoctorRequest true "Данные профиля"
// @Success 201 {object} map[string]interface{} "ID созданного профиля"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 401 {object} errorResponseBody "Не авторизован"
// @Failure 500 {object} errorResponseBody "Внутренняя ошибка сервера"
// @Security ApiKeyAuth
// @Router /doctors [post]
func (h *Handler) createDoctor(c *gin.Context) {
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

	var req createDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	// Админ может создать профиль любому пользователю, врач только себе.
	targetUserID := userID
	if userRole == domain.UserRoleAdmin && req.UserID != 0 {
		targetUserID = req.UserID
	}

	id, err := h.services.Doctor.Create(c.Request.Context(), targetUserID, req.CreateDoctorDTO)
	if err != nil {
		h.logger.Error("ошибка при создании профиля врача", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{
		"id": id,
	})
}

func (h *Handler) canManageDoctor(c *gin.Context, doctorID int64) bool {
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

	if userRole == domain.UserRoleAdmin {
		return true
	}

	doctor, err := h.services.Doctor.GetByID(c.Request.Context(), doctorID)
	if err != nil {
		notFoundResponse(c, "врач не найден")
		return false
	}

	if doctor.UserID != userID {
		forbiddenResponse(c)
		return false
	}

	return true
}

// @Summary Обновить профиль врача
// @Tags Врачи
// @Accept json
// @Produce json
// @Param id path int true "ID врача"
// @Param input body domain.UpdateDoctorDTO true "Новые данные профиля"
// @Success 204 {object} nil "Профиль обновлен"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Failure 404 {object} errorResponseBody "Врач не найден"
// @Security ApiKeyAuth
// @Router /doctors/{id} [put]
func (h *Handler) updateDoctor(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if !h.canManageDoctor(c, id) {
		return
	}

	var req domain.UpdateDoctorDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Doctor.Update(c.Request.Context(), id, req); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "врач не найден")
			return
		}
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	noContentResponse(c)
}

// @Summary Удалить профиль врача
// @Tags Врачи
// @Accept json
// @Produce json
// @Param id path int true "ID врача"
// @Success 204 {object} nil "Профиль удален"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 404 {object} errorResponseBody "Врач не найден"
// @Security ApiKeyAuth
// @Router /doctors/{id} [delete]
func (h *Handler) deleteDoctor(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if err := h.services.Doctor.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFoundResponse(c, "врач не найден")
			return
		}
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	noContentResponse(c)
}

// @Summary Загрузить фото врача
// @Tags Врачи
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "ID врача"
// @Param photo formData file true "Файл изображения (jpg или png)"
// @Success 204 {object} nil "Фото загружено"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Security ApiKeyAuth
// @Router /doctors/{id}/photo [post]
func (h *Handler) uploadDoctorPhoto(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if !h.canManageDoctor(c, id) {
		return
	}

	fileHeader, err := c.FormFile("photo")
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

	if err := h.services.Doctor.UploadProfilePhoto(c.Request.Context(), id, data, fileHeader.Filename); err != nil {
		h.logger.Error("ошибка при загрузке фото", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	noContentResponse(c)
}

// @Summary Удалить фото врача
// @Tags Врачи
// @Accept json
// @Produce json
// @Param id path int true "ID врача"
// @Success 204 {object} nil "Фото удалено"
// @Failure 403 {object} errorResponseBody "Доступ запрещен"
// @Security ApiKeyAuth
// @Router /doctors/{id}/photo [delete]
func (h *Handler) deleteDoctorPhoto(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	if !h.canManageDoctor(c, id) {
		return
	}

	if err := h.services.Doctor.DeleteProfilePhoto(c.Request.Context(), id); err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	noContentResponse(c)
}

// @Summary Привязать специальность к врачу
// @Tags Врачи
// @Accept json
// @Produce json
// @Param id path int true "ID врача"
// @Param specialtyId path int true "ID специальности"
// @Success 204 {object} nil "Специальность привязана"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Security ApiKeyAuth
// @Router /doctors/{id}/specialties/{specialtyId} [post]
func (h *Handler) addDoctorSpecialty(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	specialtyID, err := strconv.ParseInt(c.Param("specialtyId"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID специальности")
		return
	}

	if err := h.services.Doctor.AddSpecialty(c.Request.Context(), id, specialtyID); err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	noContentResponse(c)
}

// @Summary Отвязать специальность от врача
// @Tags Врачи
// @Accept json
// @Produce json
// @Param id path int true "ID врача"
// @Param specialtyId path int true "ID специальности"
// @Success 204 {object} nil "Специальность отвязана"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Security ApiKeyAuth
// @Router /doctors/{id}/specialties/{specialtyId} [delete]
func (h *Handler) removeDoctorSpecialty(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID")
		return
	}

	specialtyID, err := strconv.ParseInt(c.Param("specialtyId"), 10, 64)
	if err != nil {
		badRequestResponse(c, "неверный формат ID специальности")
		return
	}

	if err := h.services.Doctor.RemoveSpecialty(c.Request.Context(), id, specialtyID); err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	noContentResponse(c)
}
