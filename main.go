package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medbook/config"
	_ "medbook/docs"
	"medbook/internal/mail"
	"medbook/internal/repository"
	"medbook/internal/service"
	"medbook/internal/storage"
	"medbook/internal/transport/rest"
	"medbook/internal/transport/websocket"
	"medbook/pkg/database"
	applogger "medbook/pkg/logger"
)

// @title MedBook API
// @version 1.0
// @description API для онлайн-записи к врачам

// @contact.name API Support
// @contact.email support@medbook.ru

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	logger, err := applogger.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatal("Не удалось загрузить конфигурацию", zap.Error(err))
	}

	db, err := database.NewPostgresDB(context.Background(), cfg.Postgres)
	if err != nil {
		logger.Fatal("Не удалось подключиться к БД", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Запуск миграций базы данных")
	if err := database.RunMigrations(db, "./migrations", logger); err != nil {
		logger.Fatal("Ошибка при выполнении миграций", zap.Error(err))
	}
	logger.Info("Миграции успешно выполнены")

	var fileStorage storage.FileStorage
	if cfg.S3.Endpoint != "" {
		s3Storage, err := storage.NewS3Storage(cfg.S3, logger)
		if err != nil {
			logger.Fatal("Не удалось инициализировать S3 хранилище", zap.Error(err))
		}
		fileStorage = s3Storage
		logger.Info("S3 хранилище успешно инициализировано", zap.String("endpoint", cfg.S3.Endpoint))
	} else {
		fileStorage = storage.NewDisabledStorage()
		logger.Warn("S3 хранилище не настроено, загрузка файлов будет недоступна")
	}

	var mailer mail.Sender
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPSender(cfg.SMTP)
		logger.Info("SMTP отправка писем включена", zap.String("host", cfg.SMTP.Host))
	} else {
		logger.Warn("SMTP не настроен, письма будут логироваться без отправки")
		mailer = mail.NewLogSender(logger)
	}

	repos := repository.NewRepositories(db)

	services := service.NewServices(service.Deps{
		Repos:       repos,
		Logger:      logger,
		Config:      cfg,
		FileStorage: fileStorage,
		Mailer:      mailer,
	})

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	// Фоновая доставка писем из очереди notifications.
	go services.Notification.Run(workerCtx)

	chatHub := websocket.NewHub(logger, services)
	go chatHub.Run()

	handler := rest.NewHandler(services, logger, cfg, chatHub)

	router := gin.Default()

	handler.InitRoutes(router)

	router.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	logger.Info("Сервер запущен", zap.String("addr", srv.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Выключение сервера...")

	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Ошибка при остановке сервера", zap.Error(err))
	}

	logger.Info("Сервер успешно остановлен")
}
