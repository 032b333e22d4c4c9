package app

import (
	"context"
	"database/sql"

	"staffsync/internal/employee"
	"staffsync/internal/leave"
	"staffsync/internal/messaging/kafka"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// migrate creates the tables the API and the relay worker rely on. Gorm owns
// employees and leave_requests; the outbox is plain SQL.
func migrate(ctx context.Context, gormDB *gorm.DB, sqlDB *sql.DB, logger *zap.Logger) error {
	if err := gormDB.WithContext(ctx).AutoMigrate(&employee.Employee{}, &leave.LeaveRequest{}); err != nil {
		return err
	}
	if err := kafka.EnsureOutboxTable(ctx, sqlDB); err != nil {
		return err
	}
	logger.Info("database schema migrated")
	return nil
}
