package repository

import (
	"BetX/internal/model"

	"gorm.io/gorm"
)

// AutoMigrate 库表不存在则自动创建（按依赖顺序迁移）
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Client{},
		&model.Match{},
		&model.Market{},
		&model.Selection{},
	)
}
