package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dating-app/internal/config"
	"dating-app/internal/database"
	"dating-app/internal/handlers"
	"dating-app/internal/metrics"
	"dating-app/internal/middleware"
	"dating-app/internal/redis"
	"dating-app/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	setupLogging(cfg)

	db, err := database.Initialize(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.Close(db)

	// Redis is optional; without it like toggles lock in-process.
	var locker services.Locker = services.NewLocalLocker()
	if cfg.RedisURL != "" {
		redisClient, err := redis.Initialize(cfg.RedisURL)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer redisClient.Close()
		locker = services.NewRedisLocker(redisClient)
	}

	storage, err := services.NewPhotoStorage(context.Background(), cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize photo storage")
	}

	h := handlers.Handlers{
		Auth:    handlers.NewAuthHandler(services.NewAccountService(db, cfg.JWTSecret, cfg.JWTExpiry)),
		User:    handlers.NewUserHandler(services.NewMemberService(db, storage, cfg.MaxFileSize, cfg.AllowedImageTypes), cfg.MaxFileSize),
		Match:   handlers.NewMatchHandler(services.NewLikeService(db, locker)),
		Message: handlers.NewMessageHandler(services.NewMessageService(db)),
	}

	router := setupRouter(cfg, db, h)
	if local, ok := storage.(*services.LocalStorage); ok {
		router.Static("/uploads", local.Dir())
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("port", cfg.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server forced to shut down")
	}
}

func setupLogging(cfg *config.Config) {
	if cfg.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.WithField("log_level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func setupRouter(cfg *config.Config, db *gorm.DB, h handlers.Handlers) *gin.Engine {
	gin.SetMode(cfg.GinMode)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(metrics.Middleware())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())

	handlers.SetupRoutes(router, h, cfg.JWTSecret)
	return router
}
