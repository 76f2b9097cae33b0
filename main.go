package main

import (
	"context"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/prepress-orders-api/config"
	"github.com/kendall-kelly/prepress-orders-api/controllers"
	"github.com/kendall-kelly/prepress-orders-api/logger"
	"github.com/kendall-kelly/prepress-orders-api/middleware"
	"github.com/kendall-kelly/prepress-orders-api/services"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	config.SetConfig(cfg)

	if err := logger.Initialize(cfg.LogLevel, cfg.GoEnv); err != nil {
		panic(err)
	}
	defer func() { _ = logger.Log.Sync() }()

	logger.Log.Info("starting prepress orders API", zap.String("env", cfg.GoEnv))

	if err := config.ConnectDatabase(cfg); err != nil {
		logger.Log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := config.MigrateDatabase(config.GetDB()); err != nil {
		logger.Log.Fatal("failed to migrate database", zap.Error(err))
	}
	logger.Log.Info("database migration completed")

	if _, err := services.InitFileStorage(context.Background(), cfg); err != nil {
		logger.Log.Fatal("failed to initialize file storage", zap.Error(err))
	}

	authenticate, err := middleware.EnsureValidToken(cfg)
	if err != nil {
		logger.Log.Fatal("failed to set up token validation", zap.Error(err))
	}

	router := setupRouter(cfg, authenticate)

	addr := ":" + cfg.Port
	logger.Log.Info("server is running", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Log.Fatal("failed to start server", zap.Error(err))
	}
}

// setupRouter builds the HTTP surface; authenticate guards everything except health endpoints and file downloads
func setupRouter(cfg *config.Config, authenticate gin.HandlerFunc) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(logger.RequestLogger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", logger.RequestIDHeader)
	corsConfig.ExposeHeaders = []string{logger.RequestIDHeader}
	router.Use(cors.New(corsConfig))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)
	}
	auth := []gin.HandlerFunc{authenticate}
	if cfg.Auth0RequiredScope != "" {
		auth = append(auth, middleware.RequireScope(cfg.Auth0RequiredScope))
	}
	controllers.RegisterRoutes(v1, auth...)

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Prepress Orders API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	if err := config.PingDatabase(c.Request.Context(), db); err != nil {
		logger.Log.Warn("database ping failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	tables, err := db.Migrator().GetTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
