package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "vortexkeep/internal/app"
	"vortexkeep/internal/bootstrap"
	"vortexkeep/internal/cache"
	"vortexkeep/internal/platform/rabbitmq"
	"vortexkeep/internal/repository"
	"vortexkeep/internal/transport/http/handler"
	"vortexkeep/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	taskRepo := repository.NewTaskRepository(app.MySQL)
	taskCache := cache.NewTaskListCache(
		app.Redis,
		time.Duration(app.Config.Redis.TaskTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.TaskDirtyTTLSeconds)*time.Second,
	)
	eventPublisher := rabbitmq.NewEventPublisher(app.MQConn, app.Config.RabbitMQ.TaskEventQueue)

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	taskService := appsvc.NewTaskService(taskRepo, taskCache, eventPublisher)

	authHandler := handler.NewAuthHandler(authService)
	taskHandler := handler.NewTaskHandler(taskService)

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/signup", authHandler.Signup)
	authGroup.POST("/login", authHandler.Login)

	authRequired := middleware.AuthJWT(app.Config.Auth.JWTSecret)

	taskGroup := api.Group("/tasks")
	taskGroup.Use(authRequired)
	taskGroup.GET("", taskHandler.List)
	taskGroup.POST("", taskHandler.Create)
	taskGroup.PUT("/:id", taskHandler.Update)
	taskGroup.DELETE("/:id", taskHandler.Delete)

	protectedGroup := api.Group("/protected")
	protectedGroup.Use(authRequired)
	protectedGroup.GET("/profile", authHandler.Profile)

	return router
}
