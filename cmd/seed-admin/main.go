// seed-admin 为身份提供方中已存在的用户写入超级管理员资料
//
//	go run ./cmd/seed-admin -uid <firebase uid> -email admin@example.com
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"BetX/internal/config"
	"BetX/internal/model"
	"BetX/internal/repository"

	"github.com/sirupsen/logrus"
)

func main() {
	uid := flag.String("uid", "", "identity provider uid")
	email := flag.String("email", "", "admin email")
	name := flag.String("name", "Super Admin", "display name")
	flag.Parse()

	if *uid == "" || *email == "" {
		log.Fatal("-uid and -email are required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}
	logger := logrus.New()

	db, err := repository.Open(cfg.Database, false, logger)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		logger.Fatalf("数据库表结构迁移失败: %v", err)
	}

	now := time.Now().UTC()
	users := repository.NewUserRepository(db)
	if err := users.UpsertUser(context.Background(), &model.User{
		UID:       *uid,
		Email:     *email,
		Name:      *name,
		Role:      model.RoleAdmin,
		Status:    model.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		logger.Fatalf("写入管理员资料失败: %v", err)
	}
	logger.WithField("uid", *uid).Info("超级管理员资料已写入")
}
