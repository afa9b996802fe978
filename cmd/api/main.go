package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/warbler-social/warbler/internal/config"
	"github.com/warbler-social/warbler/internal/handlers"
	"github.com/warbler-social/warbler/internal/middleware"
	"github.com/warbler-social/warbler/internal/repository"
	"github.com/warbler-social/warbler/internal/services"
	"github.com/warbler-social/warbler/internal/session"
	"github.com/warbler-social/warbler/pkg/cache"
	"github.com/warbler-social/warbler/pkg/logger"
	"github.com/warbler-social/warbler/pkg/queue"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger(cfg.Log.Level)
	logger.Info("Starting Warbler API server...")

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	redisClient := cache.NewRedisClient(
		cfg.Redis.Addr(),
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
		cfg.Redis.MinIdleConns,
	)
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}

	userEventsProducer := queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.UserEvents)
	defer userEventsProducer.Close()

	graphEventsProducer := queue.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.GraphEvents)
	defer graphEventsProducer.Close()

	userRepo := repository.NewUserRepository(db.DB)
	followRepo := repository.NewFollowRepository(db.DB)
	messageRepo := repository.NewMessageRepository(db.DB)
	likeRepo := repository.NewLikeRepository(db.DB)

	sessions := session.NewStore(redisClient, userRepo, cfg.Session.TTL)

	userService := services.NewUserService(userRepo, userEventsProducer, logger)
	graphService := services.NewGraphService(userRepo, followRepo, likeRepo, messageRepo, graphEventsProducer, logger)
	messageService := services.NewMessageService(messageRepo, graphEventsProducer, logger)

	userHandler := handlers.NewUserHandler(userService, graphService, sessions, cfg.JWT.Secret)
	messageHandler := handlers.NewMessageHandler(messageService, graphService)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.NewSessionAuth(sessions, cfg.JWT.Secret))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api := router.Group("/api/v1")
	{
		users := api.Group("/users")
		{
			users.GET("", userHandler.ListUsers)
			users.POST("/signup", userHandler.Signup)
			users.POST("/login", userHandler.Login)
			users.POST("/logout", userHandler.Logout)
			users.GET("/search", userHandler.SearchUsers)
			users.PUT("/me", userHandler.UpdateProfile)
			users.GET("/:id", userHandler.GetProfile)
			users.GET("/:id/followers", userHandler.GetFollowers)
			users.GET("/:id/following", userHandler.GetFollowing)
			users.GET("/:id/likes", userHandler.GetLikedMessages)
			users.GET("/:id/messages", messageHandler.GetUserMessages)
			users.POST("/:id/follow", userHandler.Follow)
			users.DELETE("/:id/follow", userHandler.Unfollow)
			users.DELETE("/me", userHandler.DeleteAccount)
		}

		messages := api.Group("/messages")
		{
			messages.POST("", messageHandler.PostMessage)
			messages.GET("/:id", messageHandler.GetMessage)
			messages.DELETE("/:id", messageHandler.DeleteMessage)
			messages.POST("/:id/like", messageHandler.ToggleLike)
			messages.GET("/:id/likes", messageHandler.GetLikeCount)
		}
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

func init() {
	if err := os.MkdirAll("configs", 0755); err != nil {
		log.Printf("Failed to create configs directory: %v", err)
		return
	}

	configPath := "configs/config.yaml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := createDefaultConfig(configPath); err != nil {
			log.Printf("Failed to create default config: %v", err)
		}
	}
}

func createDefaultConfig(path string) error {
	defaultConfig := `server:
  port: ":8080"
  mode: "debug"
  read_timeout: 30s
  write_timeout: 30s

database:
  host: "localhost"
  port: 5432
  user: "warbler"
  password: "warbler"
  dbname: "warbler"
  sslmode: "disable"
  max_open_conns: 100
  max_idle_conns: 10

redis:
  host: "localhost"
  port: 6379
  password: ""
  db: 0
  pool_size: 100
  min_idle_conns: 10

kafka:
  brokers:
    - "localhost:9092"
  topics:
    user_events: "user-events"
    graph_events: "graph-events"

jwt:
  secret: "your-secret-key-change-in-production"

session:
  ttl: 24h

log:
  level: "info"`

	return os.WriteFile(path, []byte(defaultConfig), 0644)
}
