package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/restaurant-pos/config"
)

// InitDB 根据配置打开数据库连接
// TranslateError 让唯一约束冲突在各驱动下都表现为 gorm.ErrDuplicatedKey，
// 支付幂等逻辑依赖这一点。
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{TranslateError: true}

	switch cfg.Database.Driver {
	case "postgres":
		return gorm.Open(postgres.Open(cfg.Database.DSN), gormCfg)
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.Database.DSN), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}
