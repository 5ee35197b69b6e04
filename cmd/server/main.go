package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitforja/solped/internal/config"
	"github.com/bitforja/solped/internal/middleware"
	"github.com/bitforja/solped/internal/solped/entity"
	"github.com/bitforja/solped/internal/solped/handler"
	"github.com/bitforja/solped/internal/solped/repository"
	"github.com/bitforja/solped/internal/solped/service"
	"github.com/bitforja/solped/internal/solped/sse"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting solped service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Area{},
		&entity.Unit{},
		&entity.Sequence{},
		&entity.Requisition{},
		&entity.RequisitionItem{},
		&entity.HistoryRecord{},
		&entity.Notification{},
		&entity.Comment{},
		&entity.Todo{},
		&entity.Attachment{},
	); err != nil {
		zapLogger.Fatal("AutoMigrate failed", zap.Error(err))
	}

	if err := seedDefaults(db, zapLogger); err != nil {
		zapLogger.Warn("Seeding defaults failed", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)
	hub := sse.NewHub(zapLogger)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, hub, cfg, zapLogger)
	handlers := handler.NewHandlers(services, hub)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // Disable for SSE long-lived connections
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// SSE needs the token as a query param: EventSource cannot set headers.
		sseGroup := v1.Group("/sse")
		sseGroup.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			sseGroup.GET("/events", h.SSE.Stream)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.POST("/auth/logout", h.Auth.Logout)

			users := authorized.Group("/users")
			users.Use(middleware.RequireRole(entity.RoleSupervisor))
			{
				users.GET("", h.User.List)
				users.GET("/:id", h.User.Get)
				users.POST("", h.User.Create)
				users.PUT("/:id", h.User.Update)
				users.DELETE("/:id", h.User.Delete)
			}

			requisitions := authorized.Group("/requisitions")
			{
				requisitions.GET("", h.Requisition.List)
				requisitions.GET("/statistics", h.Requisition.Statistics)
				requisitions.GET("/export", h.Requisition.Export)
				requisitions.GET("/:id", h.Requisition.Get)
				requisitions.POST("", h.Requisition.Create)
				requisitions.PUT("/:id", h.Requisition.Update)
				requisitions.PATCH("/:id/status", h.Requisition.UpdateStatus)
				requisitions.PUT("/:id/items", h.Requisition.UpdateItems)
				requisitions.DELETE("/:id", h.Requisition.Delete)

				requisitions.GET("/:id/comments", h.Comment.List)
				requisitions.POST("/:id/comments", h.Comment.Create)
				requisitions.GET("/:id/todos", h.Todo.List)
				requisitions.POST("/:id/todos", h.Todo.Create)
				requisitions.GET("/:id/attachments", h.Attachment.List)
				requisitions.POST("/:id/attachments", h.Attachment.Upload)
			}

			authorized.PATCH("/todos/:id", h.Todo.UpdateCompleted)
			authorized.GET("/attachments/:id/download", h.Attachment.Download)
			authorized.DELETE("/attachments/:id", h.Attachment.Delete)

			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.GET("/unread-count", h.Notification.UnreadCount)
				notifications.PATCH("/:id/read", h.Notification.MarkRead)
				notifications.POST("/read-all", h.Notification.MarkAllRead)
			}

			authorized.GET("/areas", h.Catalog.ListAreas)
			authorized.GET("/units", h.Catalog.ListUnits)

			catalogAdmin := authorized.Group("")
			catalogAdmin.Use(middleware.RequireRole(entity.RoleSupervisor))
			{
				catalogAdmin.POST("/areas", h.Catalog.CreateArea)
				catalogAdmin.DELETE("/areas/:id", h.Catalog.DeleteArea)
				catalogAdmin.POST("/units", h.Catalog.CreateUnit)
				catalogAdmin.DELETE("/units/:id", h.Catalog.DeleteUnit)
			}
		}
	}
}

// seedDefaults creates the bootstrap supervisor account and the base catalog
// entries on an empty database.
func seedDefaults(db *gorm.DB, zapLogger *zap.Logger) error {
	var userCount int64
	if err := db.Model(&entity.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount == 0 {
		password := os.Getenv("SEED_ADMIN_PASSWORD")
		if password == "" {
			password = "admin123"
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		admin := &entity.User{
			ID:       uuid.New().String()[:32],
			Username: "admin",
			Password: string(hash),
			FullName: "Administrator",
			Role:     entity.RoleSupervisor,
			Active:   true,
		}
		if err := db.Create(admin).Error; err != nil {
			return err
		}
		zapLogger.Info("Seeded bootstrap supervisor account", zap.String("username", "admin"))
	}

	var unitCount int64
	if err := db.Model(&entity.Unit{}).Count(&unitCount).Error; err != nil {
		return err
	}
	if unitCount == 0 {
		units := []entity.Unit{
			{ID: uuid.New().String()[:32], Name: "Unit", Symbol: "u", Active: true},
			{ID: uuid.New().String()[:32], Name: "Kilogram", Symbol: "kg", Active: true},
			{ID: uuid.New().String()[:32], Name: "Meter", Symbol: "m", Active: true},
			{ID: uuid.New().String()[:32], Name: "Liter", Symbol: "l", Active: true},
			{ID: uuid.New().String()[:32], Name: "Box", Symbol: "box", Active: true},
			{ID: uuid.New().String()[:32], Name: "Set", Symbol: "set", Active: true},
		}
		if err := db.Create(&units).Error; err != nil {
			return err
		}
	}

	return nil
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}
