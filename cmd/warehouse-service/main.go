// cmd/warehouse-service/main.go
package main

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"

	"stockpile/internal/pkg/bootstrap"
	"stockpile/internal/pkg/constants"
	"stockpile/internal/pkg/database"
	"stockpile/internal/pkg/logger"
	"stockpile/internal/pkg/mq"
	"stockpile/internal/pkg/redis"
	"stockpile/internal/service/warehouse/application"
	"stockpile/internal/service/warehouse/domain"
	"stockpile/internal/service/warehouse/infrastructure"
	"stockpile/internal/service/warehouse/interfaces"
)

const serviceName = constants.WarehouseService

func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	db, err := database.NewMySQL(cfg.Infra.MySQL.DSN)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to connect to mysql")
	}

	var repo domain.WarehouseRepository
	gormRepo, err := infrastructure.NewGormWarehouseRepository(db)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to initialize warehouse repository")
	}
	repo = gormRepo

	var rdb *redis.Client
	if ttl := cfg.App.StockCacheTTLSeconds; ttl > 0 {
		cache, err := redis.NewClient(cfg.Infra.Redis.Addrs)
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable, running without warehouse cache")
		} else {
			rdb = cache
			repo = infrastructure.NewCachedWarehouseRepository(repo, cache, time.Duration(ttl)*time.Second)
		}
	}

	writer := mq.NewKafkaWriter(bootstrap.KafkaBrokers(cfg), constants.TopicWarehouseEvents)
	publisher := infrastructure.NewKafkaWarehousePublisher(writer, constants.TopicWarehouseEvents)

	service := application.NewWarehouseService(repo, publisher, otel.Tracer(serviceName))
	handler := interfaces.NewWarehouseHandler(service)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8083,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			writer.Close()
			if rdb != nil {
				rdb.Close()
			}
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		},
	})
}
