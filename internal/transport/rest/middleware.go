package rest

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medbook/internal/domain"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
	userIDCtx           = "user_id"
	userRoleCtx         = "user_role"
)

func (h *Handler) loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String("user-agent", c.Request.UserAgent()),
		}

		switch {
		case status >= http.StatusInternalServerError:
			h.logger.Error("server error", fields...)
		case status >= http.StatusBadRequest:
			h.logger.Warn("client error", fields...)
		default:
			h.logger.Info("request processed", fields...)
		}
	}
}

func (h *Handler) errorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, err := range c.Errors {
			h.logger.Error("request error", zap.Error(err))
		}
	}
}

func (h *Handler) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Set("Access-Control-Allow-Origin", "*")
		header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		header.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Origin, Accept, User-Agent, X-Requested-With, Cache-Control, DNT, Referer")
		header.Set("Access-Control-Expose-Headers", "Content-Length, Authorization, Content-Type")
		header.Set("Access-Control-Max-Age", "86400")

		// Авторизованным запросам нужен точный Origin, wildcard
		// с credentials браузеры отклоняют.
		origin := c.Request.Header.Get("Origin")
		if origin != "" && c.Request.Header.Get(authorizationHeader) != "" {
			header.Set("Access-Control-Allow-Origin", origin)
			header.Set("Access-Control-Allow-Credentials", "true")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(authorizationHeader)
		if header == "" {
			errorResponse(c, http.StatusUnauthorized, "пустой заголовок авторизации")
			return
		}

		token, ok := strings.CutPrefix(header, bearerPrefix)
		if !ok || token == "" {
			errorResponse(c, http.StatusUnauthorized, "неверный формат заголовка авторизации")
			return
		}

		userID, userRole, err := h.services.Auth.ParseToken(c.Request.Context(), token)
		if err != nil {
			errorResponse(c, http.StatusUnauthorized, err.Error())
			return
		}

		c.Set(userIDCtx, userID)
		c.Set(userRoleCtx, userRole)

		c.Next()
	}
}

func (h *Handler) requireRole(want domain.UserRole, denied string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := getUserRole(c)
		if err != nil {
			errorResponse(c, http.StatusUnauthorized, "пользователь не авторизован")
			return
		}

		if role != want {
			errorResponse(c, http.StatusForbidden, denied)
			return
		}

		c.Next()
	}
}

func (h *Handler) adminMiddleware() gin.HandlerFunc {
	return h.requireRole(domain.UserRoleAdmin, "доступ запрещен")
}

func (h *Handler) doctorMiddleware() gin.HandlerFunc {
	return h.requireRole(domain.UserRoleDoctor, "доступ запрещен, требуется роль врача")
}

func getUserID(c *gin.Context) (int64, error) {
	value, exists := c.Get(userIDCtx)
	if !exists {
		return 0, errors.New("пользователь не авторизован")
	}

	id, ok := value.(int64)
	if !ok {
		return 0, errors.New("некорректный ID пользователя")
	}

	return id, nil
}

func getUserRole(c *gin.Context) (domain.UserRole, error) {
	value, exists := c.Get(userRoleCtx)
	if !exists {
		return "", errors.New("пользователь не авторизован")
	}

	role, ok := value.(domain.UserRole)
	if !ok {
		return "", errors.New("некорректная роль пользователя")
	}

	return role, nil
}
