package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"BetX/internal/adapter"
	"BetX/internal/adapter/firebase"
	"BetX/internal/api"
	"BetX/internal/config"
	"BetX/internal/interfaces"
	"BetX/internal/metrics"
	"BetX/internal/middleware"
	"BetX/internal/publisher"
	"BetX/internal/repository"
	"BetX/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func newLogger(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

// newRedis 未配置时返回 nil，变更推送与赔率缓存随之关闭
func newRedis(ctx context.Context, cfg config.RedisConfig, logger *logrus.Logger) *redis.Client {
	if cfg.URL == "" {
		logger.Info("未配置 Redis，变更推送与赔率缓存已关闭")
		return nil
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		logger.WithError(err).Warn("Redis URL 无效，已忽略")
		return nil
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.WithError(err).Warn("Redis 连接失败，变更推送与赔率缓存已关闭")
		_ = client.Close()
		return nil
	}
	logger.Info("Redis连接成功")
	return client
}

func main() {
	ctx := context.Background()

	// 1. 加载配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}

	// 2. 初始化日志
	logger := newLogger(cfg.Log)
	logger.Info("配置文件加载成功")

	// 3. PostgreSQL 连接与迁移
	db, err := repository.Open(cfg.Database, cfg.Server.Mode == gin.DebugMode, logger)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	logger.Info("PostgreSQL连接成功")
	if err := repository.AutoMigrate(db); err != nil {
		logger.Fatalf("数据库表结构迁移失败: %v", err)
	}
	logger.Info("数据库表结构检查完成（不存在则已创建）")

	// 4. 外部依赖：Redis、身份提供方、数据源
	redisClient := newRedis(ctx, cfg.Redis, logger)
	var changes interfaces.ChangePublisher = publisher.Noop()
	if redisClient != nil {
		changes = publisher.NewStreamPublisher(redisClient, cfg.Redis.Stream)
	}

	identity, err := firebase.NewAuth(ctx, cfg.Firebase)
	if err != nil {
		logger.Fatalf("初始化身份提供方失败: %v", err)
	}

	feeds := adapter.NewFeedRegistry(cfg, redisClient, logger)
	logger.WithField("feeds", feeds.Enabled()).Info("数据源初始化完成")

	// 5. 服务组装
	m := metrics.New()
	matchRepo := repository.NewMatchRepository(db)
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)

	oddsTimeout := cfg.Feeds[config.FeedOdds].FeedTimeout()
	deps := api.Deps{
		Guard:      service.NewGuardService(identity, userRepo, m, logger),
		Import:     service.NewImportService(matchRepo, feeds.Odds, changes, m, oddsTimeout, logger),
		Market:     service.NewMarketService(matchRepo, changes, m, logger),
		Settlement: service.NewSettlementService(matchRepo, changes, m, logger),
		OddsSync:   service.NewOddsSyncService(matchRepo, feeds.Odds, changes, m, oddsTimeout, logger),
		Clients:    service.NewClientService(clientRepo, logger),
		SubAdmins:  service.NewSubAdminService(identity, userRepo, logger),
		Profiles:   service.NewProfileService(userRepo, logger),
		MatchFeed:  feeds.Matches,
		Metrics:    m,
		AuthWindow: cfg.RateLimit.AuthWindow,
		AuthBurst:  cfg.RateLimit.AuthBurst,
		Logger:     logger,
	}

	// 6. Gin
	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Server.FrontendOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// 注册ppof 方便调试和监测性能问题
	pprof.Register(r)
	r.GET("/metrics", gin.WrapH(m.Handler()))
	logger.Infof("Gin运行模式: %s", cfg.Server.Mode)

	api.Register(r, deps)

	// 7. 启动服务
	port := cfg.Server.Port
	logger.Infof("服务启动成功，端口：%d", port)
	if err := r.Run(fmt.Sprintf(":%d", port)); err != nil {
		logger.Fatalf("启动服务失败: %v", err)
	}
}
