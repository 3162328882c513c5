// Package main is the application entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bridge-go/internal/config"
	"bridge-go/internal/fixture"
	"bridge-go/internal/handler"
	"bridge-go/internal/middleware"
	"bridge-go/internal/model"
	"bridge-go/internal/repository"
	"bridge-go/internal/service"
	"bridge-go/pkg/database"
	"bridge-go/pkg/gemini"
	"bridge-go/pkg/kafka"
	"bridge-go/pkg/log"
	"bridge-go/pkg/storage"
	"bridge-go/pkg/token"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	// 1. Load configuration.
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. Initialize the logger.
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("Logger initialized")

	// 3. Initialize MySQL, Redis, MinIO, and the Kafka producer.
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)
	kafka.InitProducer(cfg.Kafka)

	if err := database.DB.AutoMigrate(
		&model.ServiceRecord{},
		&model.User{},
		&model.Appointment{},
		&model.Conversation{},
		&model.DirectMessage{},
		&model.SearchLog{},
	); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	// 4. Initialize repositories.
	serviceRepo := repository.NewServiceRepository(database.DB)
	userRepo := repository.NewUserRepository(database.DB)
	appointmentRepo := repository.NewAppointmentRepository(database.DB)
	messageRepo := repository.NewMessageRepository(database.DB)
	searchLogRepo := repository.NewSearchLogRepository(database.DB)
	chatHistoryRepo := repository.NewChatHistoryRepository(database.RDB, cfg.Chat.HistoryLimit)

	// 5. Initialize services (dependency injection).
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	geminiClient := gemini.NewClient(cfg.Gemini)
	hasCredential := cfg.Gemini.APIKey != ""
	if !hasCredential {
		log.Warnf("No Gemini API key configured, search will serve local data only")
	}

	userService := service.NewUserService(userRepo, jwtManager)
	searchService := service.NewSearchService(serviceRepo, geminiClient, cfg.Search, hasCredential)
	chatService := service.NewChatService(serviceRepo, geminiClient, chatHistoryRepo)
	adminService := service.NewAdminService(serviceRepo, userRepo, appointmentRepo, messageRepo, searchLogRepo, cfg.MinIO)
	appointmentService := service.NewAppointmentService(appointmentRepo, serviceRepo)
	messageService := service.NewMessageService(messageRepo, userRepo)
	analyticsService := service.NewAnalyticsService(searchLogRepo)

	// 6. Start the background analytics consumer.
	go kafka.StartConsumer(cfg.Kafka, analyticsService)

	// 6.1 Seed the directory with the bundled NYC catalog (idempotent).
	go seedServices(serviceRepo)

	// 7. Set up the router.
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.CORS(), middleware.RequestLogger(), gin.Recovery())

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	// 8. Register routes.
	apiV1 := r.Group("/api/v1")
	{
		apiV1.POST("/search", handler.NewSearchHandler(searchService).Search)

		auth := apiV1.Group("/auth")
		{
			auth.POST("/refreshToken", handler.NewAuthHandler(userService).RefreshToken)
		}

		users := apiV1.Group("/users")
		{
			users.POST("/register", handler.NewUserHandler(userService).Register)
			users.POST("/login", handler.NewUserHandler(userService).Login)

			authed := users.Group("/")
			authed.Use(middleware.AuthMiddleware(jwtManager, userService))
			{
				authed.GET("/me", handler.NewUserHandler(userService).GetProfile)
			}
		}

		appointments := apiV1.Group("/appointments")
		appointments.Use(middleware.AuthMiddleware(jwtManager, userService))
		{
			appointments.POST("", handler.NewAppointmentHandler(appointmentService).Create)
			appointments.GET("", handler.NewAppointmentHandler(appointmentService).List)
			appointments.DELETE("/:id", handler.NewAppointmentHandler(appointmentService).Cancel)
		}

		conversations := apiV1.Group("/conversations")
		conversations.Use(middleware.AuthMiddleware(jwtManager, userService))
		{
			conversations.POST("", handler.NewMessageHandler(messageService).StartConversation)
			conversations.GET("", handler.NewMessageHandler(messageService).ListConversations)
			conversations.GET("/:id/messages", handler.NewMessageHandler(messageService).ListMessages)
			conversations.POST("/:id/messages", handler.NewMessageHandler(messageService).SendMessage)
		}

		chatGroup := apiV1.Group("/chat")
		{
			chatGroup.GET("/websocket-token", handler.NewChatHandler(chatService, userService, jwtManager).GetWebsocketStopToken)
		}
		r.GET("/chat/:token", handler.NewChatHandler(chatService, userService, jwtManager).Handle)

		admin := apiV1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(jwtManager, userService), middleware.AdminAuthMiddleware())
		{
			adminHandler := handler.NewAdminHandler(adminService, appointmentService)
			admin.GET("/services", adminHandler.ListServices)
			admin.POST("/services", adminHandler.CreateService)
			admin.PUT("/services/:id", adminHandler.UpdateService)
			admin.DELETE("/services/:id", adminHandler.DeleteService)
			admin.GET("/stats", adminHandler.GetStats)
			admin.GET("/users", adminHandler.ListUsers)
			admin.POST("/export", adminHandler.ExportCatalog)
			admin.GET("/search-logs", adminHandler.GetSearchLogs)
			admin.PUT("/appointments/:id/status", adminHandler.UpdateAppointmentStatus)
		}
	}

	// 9. Start the HTTP server with graceful shutdown.
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown signal received, stopping server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP server shutdown failed: %v", err)
	}

	// The Kafka consumer loop ends with the process; no explicit close needed.
	log.Info("Server stopped")
}

// seedServices imports the bundled catalog on first start. Records are keyed
// by name, so a restart never duplicates them.
func seedServices(serviceRepo repository.ServiceRepository) {
	records, err := fixture.SeedServices()
	if err != nil {
		log.Errorf("seedServices: failed to load bundled catalog: %v", err)
		return
	}

	var created int
	for i := range records {
		record := records[i]
		_, err := serviceRepo.FindByName(record.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("seedServices: lookup failed for '%s': %v", record.Name, err)
			continue
		}
		if err := serviceRepo.Create(&record); err != nil {
			log.Warnf("seedServices: failed to create '%s': %v", record.Name, err)
			continue
		}
		created++
	}
	if created > 0 {
		log.Infof("seedServices: imported %d services", created)
	}
}
