package bootstrap

import (
	"staffsync/internal/config"

	"go.uber.org/zap"
)

// NewLogger returns a production logger for APP_ENV=production and a
// development logger otherwise. LOG_LEVEL overrides the default level.
func NewLogger(cfg config.AppConfig) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.Env == "production" {
		zcfg = zap.NewProductionConfig()
	}
	if cfg.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		zcfg.Level = level
	}
	return zcfg.Build()
}
