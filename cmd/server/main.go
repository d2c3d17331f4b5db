package main

import (
	"fmt"
	"log"
	"net/http"

	"carxpress/internal/config"
	"carxpress/internal/handlers"
	"carxpress/internal/middleware"
	"carxpress/internal/repositories/mongodb"
	"carxpress/internal/services"
	"carxpress/internal/utils"
	"carxpress/pkg/cache"
	"carxpress/pkg/database"
	"carxpress/pkg/logger"
	"carxpress/pkg/storage"
	"carxpress/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: "json",
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// MongoDB
	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Close()

	if err := database.NewMigrator(db.Database).Up(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis is optional; repositories tolerate a nil cache.
	var redisCache *cache.RedisCache
	redisCache, err = cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Warn("Redis unavailable, continuing without cache")
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	provider, err := newStorageProvider(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage provider: %v", err)
	}

	// Repositories
	var cacheService mongodb.CacheService
	if redisCache != nil {
		cacheService = redisCache
	}
	userRepo := mongodb.NewUserRepository(db.Database, cacheService)
	carRepo := mongodb.NewCarRepository(db.Database, cacheService)
	rentalRepo := mongodb.NewRentalRepository(db.Database)
	saleRepo := mongodb.NewSaleRepository(db.Database)
	approvalRepo := mongodb.NewApprovalRepository(db.Database)

	// Services
	authService := services.NewAuthService(userRepo, cfg.Security.JWTSecret, appLogger)
	bookingService := services.NewBookingService(rentalRepo, carRepo, db, appLogger)
	saleService := services.NewSaleService(saleRepo, carRepo, db, cfg.App.Currency, appLogger)
	catalogService := services.NewCatalogService(carRepo, rentalRepo, provider, cfg.Storage.Folder, appLogger)
	approvalService := services.NewApprovalService(approvalRepo, userRepo, carRepo, rentalRepo, provider, db, appLogger)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, approvalService)
	carHandler := handlers.NewCarHandler(catalogService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	rentalHandler := handlers.NewRentalHandler(bookingService)
	saleHandler := handlers.NewSaleHandler(saleService)
	approvalHandler := handlers.NewApprovalHandler(approvalService)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(appLogger))

	jwtSecret := cfg.Security.JWTSecret
	v1 := router.Group("/api/v1")
	{
		routes.SetupAuthRoutes(v1, authHandler, jwtSecret)
		routes.SetupCarRoutes(v1, carHandler, rentalHandler, saleHandler, jwtSecret)
		routes.SetupCatalogRoutes(v1, catalogHandler)
		routes.SetupRentalRoutes(v1, rentalHandler, jwtSecret)
		routes.SetupSaleRoutes(v1, saleHandler, jwtSecret)
		routes.SetupApprovalRoutes(v1, approvalHandler, rentalHandler, saleHandler, jwtSecret)
	}

	// Locally stored images are served straight from disk.
	if cfg.Storage.Provider == "local" {
		router.Static("/uploads", cfg.Storage.Local.BasePath)
	}

	router.GET("/health", func(c *gin.Context) {
		status := "healthy"
		code := http.StatusOK
		if err := db.Ping(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":  status,
			"version": utils.AppVersion,
		})
	})

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	appLogger.Infof("Starting %s on %s", cfg.App.Name, addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func newStorageProvider(cfg *config.StorageConfig) (storage.Provider, error) {
	switch cfg.Provider {
	case "s3":
		return storage.NewAWSS3Storage(cfg.AWS.Region, cfg.AWS.Bucket, cfg.AWS.CDNDomain)
	case "gcs":
		return storage.NewGCPStorage(cfg.GCP.Bucket, cfg.GCP.CredentialsFile, cfg.GCP.CDNDomain)
	default:
		return storage.NewLocalStorage(cfg.Local.BasePath, cfg.Local.BaseURL)
	}
}
