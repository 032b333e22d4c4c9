package app

import (
	"database/sql"

	"staffsync/internal/config"
	"staffsync/internal/employee"
	"staffsync/internal/leave"
	"staffsync/internal/messaging/kafka"
	"staffsync/internal/middleware"
	"staffsync/internal/rbac"
	"staffsync/internal/rbac/infra"
	"staffsync/internal/shared/audit"
	"staffsync/internal/shared/clock"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) error {
	isolation, err := cfg.Leave.IsolationLevel()
	if err != nil {
		return err
	}

	// --- Repositories ---
	employeeRepo := employee.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer, logger)
	if err := rbacService.LoadPolicy(rbac.DefaultPermissions, rbac.RoleInheritance); err != nil {
		return err
	}

	// --- Services ---
	employeeService := employee.NewService(employeeRepo, rdb, logger)
	leaveService := leave.NewService(
		db,
		leaveRepo,
		outboxRepo,
		audit.NewZapLogger(logger),
		clock.NewRealClock(),
		isolation,
		logger,
	)

	// --- Handlers ---
	employeeHandler := employee.NewHandler(employeeService, logger)
	leaveHandler := leave.NewHandler(leaveService, logger)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	api.Use(
		middleware.AuthMiddleware(cfg.JWT.Secret),
		middleware.RateLimitByEmployee(rate.Limit(cfg.RateLimit.PerUser), cfg.RateLimit.UserBurst),
	)
	{
		employee.RegisterRoutes(api, employeeHandler, rbacService)
		leave.RegisterRoutes(api, leaveHandler, rbacService, middleware.Idempotency(rdb, logger))
	}

	return nil
}
