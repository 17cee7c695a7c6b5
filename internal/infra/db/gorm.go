package db

import (
	"storefront/internal/config"
	"storefront/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

// kv_entries を作る
func Migrate(gormDB *gorm.DB) error {
	return gormDB.AutoMigrate(&model.KVEntry{})
}
