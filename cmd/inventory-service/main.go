// cmd/inventory-service/main.go
package main

import (
	"context"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"stockpile/internal/pkg/bootstrap"
	"stockpile/internal/pkg/constants"
	"stockpile/internal/pkg/database"
	"stockpile/internal/pkg/logger"
	"stockpile/internal/pkg/mq"
	"stockpile/internal/pkg/redis"
	"stockpile/internal/service/inventory/application"
	"stockpile/internal/service/inventory/domain"
	"stockpile/internal/service/inventory/infrastructure"
	"stockpile/internal/service/inventory/infrastructure/rule"
	"stockpile/internal/service/inventory/interfaces"
	"stockpile/internal/zookeeper"
)

const serviceName = constants.InventoryService

// main 是组装根：创建并组装所有依赖，然后启动服务。
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()
	lockWait := time.Duration(cfg.App.LockWaitTimeoutMs) * time.Millisecond

	var (
		repo    domain.StockRepository
		sqlDB   *gorm.DB
		zkConn  *zookeeper.Conn
		rdb     *redis.Client
		cleanup []func()
	)

	// 1. 存储层：默认 MySQL，STORAGE=memory 时用进程内实现（开发与测试）
	if os.Getenv("STORAGE") == "memory" {
		repo = infrastructure.NewMemoryStockRepository(lockWait)
	} else {
		db, err := database.NewMySQL(cfg.Infra.MySQL.DSN)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("failed to connect to mysql")
		}
		sqlDB = db
		gormRepo := infrastructure.NewGormStockRepository(db, lockWait)
		if err := gormRepo.AutoMigrate(); err != nil {
			logger.Logger.Fatal().Err(err).Msg("failed to migrate stock table")
		}
		repo = gormRepo
	}

	// 2. 可选的 ZooKeeper 分布式锁装饰层
	if cfg.App.LockBackend == "zookeeper" {
		conn, err := zookeeper.Connect(cfg.Infra.Zookeeper.Addrs)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("failed to connect to zookeeper")
		}
		zkConn = conn
		repo = infrastructure.NewZkLockedRepository(repo, conn, lockWait)
	}

	// 3. 可选的 Redis 读缓存装饰层
	if ttl := cfg.App.StockCacheTTLSeconds; ttl > 0 {
		cache, err := redis.NewClient(cfg.Infra.Redis.Addrs)
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable, running without stock cache")
		} else {
			rdb = cache
			repo = infrastructure.NewCachedStockRepository(repo, cache, time.Duration(ttl)*time.Second)
		}
	}

	// 4. 事件与告警规则
	writer := mq.NewKafkaWriter(bootstrap.KafkaBrokers(cfg), constants.TopicStockEvents)
	publisher := infrastructure.NewKafkaStockPublisher(writer, constants.TopicStockEvents)

	alerts, err := rule.NewCELAlertEngine(cfg.App.RestockRules)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("invalid restock alert rules")
	}

	service := application.NewStockService(repo, publisher, alerts, otel.Tracer(serviceName))
	handler := interfaces.NewStockHandler(service)

	cleanup = append(cleanup, func() { writer.Close() })
	if rdb != nil {
		cleanup = append(cleanup, func() { rdb.Close() })
	}
	if zkConn != nil {
		cleanup = append(cleanup, func() { zkConn.Close() })
	}
	if sqlDB != nil {
		cleanup = append(cleanup, func() {
			if db, err := sqlDB.DB(); err == nil {
				db.Close()
			}
		})
	}

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8082,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			for _, fn := range cleanup {
				fn()
			}
		},
	})
}
