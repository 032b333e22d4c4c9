package app

import (
	"context"
	"net/http"
	"time"

	"staffsync/internal/config"
	"staffsync/internal/metrics"
	"staffsync/internal/middleware"
	"staffsync/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// BuildApp connects the infrastructure and mounts every module on router.
func BuildApp(router *gin.Engine, cfg config.Config) error {
	logger := zap.L().Named("app")

	// 1. Setup Infrastructure
	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, logger)
	if err != nil {
		return err
	}
	logger.Info("database connection established")

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	redisClient, err := connection.ConnectRedisWithRetry(cfg.Redis, logger)
	if err != nil {
		return err
	}
	logger.Info("redis connection established")

	if cfg.DB.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := migrate(ctx, gormDB, sqlDB, logger); err != nil {
			return err
		}
	}

	// 2. Global middleware
	router.Use(
		middleware.RequestID(),
		middleware.ContextLogger(logger),
		middleware.Metrics(),
		middleware.RateLimitByIP(rate.Limit(cfg.RateLimit.PerIP), cfg.RateLimit.IPBurst),
	)

	router.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// 3. Register Modules & Routes
	return registerModules(router, cfg, sqlDB, gormDB, redisClient, logger)
}
