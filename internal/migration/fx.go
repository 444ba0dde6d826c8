package migration

import (
	"github.com/railzwaylabs/catalogadmin/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := Run(sqlDB, cfg.Database.Driver); err != nil {
			return err
		}
		log.Named("migration").Info("schema up to date", zap.String("driver", cfg.Database.Driver))
		return nil
	}),
)
