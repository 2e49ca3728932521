package rest

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"medbook/config"
	"medbook/internal/service"
	"medbook/internal/transport/websocket"
)

type Handler struct {
	services *service.Services
	logger   *zap.Logger
	config   *config.Config
	chatHub  *websocket.Hub
}

func NewHandler(services *service.Services, logger *zap.Logger, config *config.Config, chatHub *websocket.Hub) *Handler {
	return &Handler{
		services: services,
		logger:   logger,
		config:   config,
		chatHub:  chatHub,
	}
}

func (h *Handler) InitRoutes(router *gin.Engine) {
	router.Use(h.loggerMiddleware())

	router.Use(h.errorMiddleware())

	router.Use(h.corsMiddleware())

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.register)
			auth.GET("/activate", h.activate)
			auth.POST("/activate", h.activate)
			auth.POST("/login", h.login)
			auth.POST("/refresh", h.refreshTokens)
			auth.POST("/logout", h.logout)
		}

		users := api.Group("/users")
		users.Use(h.authMiddleware())
		{
			users.GET("/me", h.getCurrentUser)
			users.GET("/:id", h.getUserByID)
			users.PUT("/:id", h.updateUser)
			users.PUT("/:id/password", h.updatePassword)

			admin := users.Group("/")
			admin.Use(h.adminMiddleware())
			{
				admin.POST("/", h.createUser)
				admin.GET("/", h.getUsers)
				admin.DELETE("/:id", h.deleteUser)
			}
		}

		specialties := api.Group("/specialties")
		{
			specialties.GET("/", h.getSpecialties)
			specialties.GET("/:id", h.getSpecialtyByID)

			admin := specialties.Group("/")
			admin.Use(h.authMiddleware(), h.adminMiddleware())
			{
				admin.POST("/", h.createSpecialty)
				admin.PUT("/:id", h.updateSpecialty)
				admin.DELETE("/:id", h.deleteSpecialty)
			}
		}

		doctors := api.Group("/doctors")
		{
			doctors.GET("/", h.getDoctors)
			doctors.GET("/me", h.authMiddleware(), h.getMyDoctorProfile)
			doctors.GET("/:id", h.getDoctorByID)
			doctors.GET("/:id/free-slots", h.getFreeSlots)

			auth := doctors.Group("/", h.authMiddleware())
			{
				auth.POST("/", h.createDoctor)
				auth.PUT("/:id", h.updateDoctor)
				auth.DELETE("/:id", h.adminMiddleware(), h.deleteDoctor)

				auth.POST("/:id/photo", h.uploadDoctorPhoto)
				auth.DELETE("/:id/photo", h.deleteDoctorPhoto)

				admin := auth.Group("/", h.adminMiddleware())
				{
					admin.POST("/:id/specialties/:specialtyId", h.addDoctorSpecialty)
					admin.DELETE("/:id/specialties/:specialtyId", h.removeDoctorSpecialty)
				}
			}
		}

		services := api.Group("/services")
		{
			services.GET("/", h.getServices)
			services.GET("/:id", h.getServiceByID)

			admin := services.Group("/")
			admin.Use(h.authMiddleware(), h.adminMiddleware())
			{
				admin.POST("/", h.createService)
				admin.PUT("/:id", h.updateService)
				admin.DELETE("/:id", h.deleteService)
			}
		}

		schedules := api.Group("/schedules")
		{
			schedules.GET("/", h.getShifts)
			schedules.GET("/:id", h.getShiftByID)

			doctor := schedules.Group("/", h.authMiddleware(), h.doctorMiddleware())
			{
				doctor.POST("/", h.createShift)
				doctor.PUT("/:id", h.updateShift)
				doctor.DELETE("/:id", h.deleteShift)
			}
		}

		appointments := api.Group("/appointments")
		appointments.Use(h.authMiddleware())
		{
			appointments.POST("/", h.createAppointment)
			appointments.GET("/", h.getAppointments)
			appointments.GET("/:id", h.getAppointmentByID)
			appointments.PUT("/:id/status", h.updateAppointmentStatus)
			appointments.POST("/:id/cancel", h.cancelAppointment)
			appointments.DELETE("/:id", h.adminMiddleware(), h.deleteAppointment)
		}

		records := api.Group("/medical-records")
		records.Use(h.authMiddleware())
		{
			records.GET("/", h.getMedicalRecords)
			records.GET("/:id", h.getMedicalRecordByID)

			doctor := records.Group("/", h.doctorMiddleware())
			{
				doctor.POST("/", h.createMedicalRecord)
				doctor.PUT("/:id", h.updateMedicalRecord)
				doctor.POST("/:id/attachment", h.uploadMedicalRecordAttachment)
				doctor.POST("/:id/prescriptions", h.addPrescription)
				doctor.DELETE("/prescriptions/:prescriptionId", h.deletePrescription)
			}
		}

		chat := api.Group("/chat")
		chat.Use(h.authMiddleware())
		{
			chat.GET("/conversations", h.getConversations)
			chat.GET("/messages", h.getChatMessages)
			chat.POST("/messages", h.sendChatMessage)
			chat.POST("/conversations/:peerId/read", h.markConversationRead)
			chat.GET("/unread", h.getUnreadCount)
			chat.POST("/attachments", h.uploadChatAttachment)
		}
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Auth происходит внутри по query параметру token.
	router.GET("/ws/chat", h.chatHub.HandleWebSocket)
}
