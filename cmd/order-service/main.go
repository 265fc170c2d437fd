// cmd/order-service/main.go
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
	"stockpile/internal/pkg/httpclient"
	"stockpile/internal/pkg/logger"
	"stockpile/internal/pkg/mq"
	"stockpile/internal/service/order/application"
	"stockpile/internal/service/order/domain"
	"stockpile/internal/service/order/infrastructure"
	"stockpile/internal/service/order/infrastructure/adapter"
	"stockpile/internal/service/order/interfaces"
)

const serviceName = constants.OrderService

// main 是组装根：创建并组装所有依赖，然后启动服务。
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	var (
		orders  domain.OrderRepository
		sqlDB   *gorm.DB
		cleanup []func()
	)

	if os.Getenv("STORAGE") == "memory" {
		orders = infrastructure.NewMemoryOrderRepository()
	} else {
		db, err := database.NewMySQL(cfg.Infra.MySQL.DSN)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("failed to connect to mysql")
		}
		sqlDB = db
		repo, err := infrastructure.NewGormOrderRepository(db)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("failed to initialize order repository")
		}
		orders = repo
	}

	writer := mq.NewKafkaWriter(bootstrap.KafkaBrokers(cfg), constants.TopicOrderEvents)
	publisher := infrastructure.NewKafkaOrderPublisher(writer, constants.TopicOrderEvents)
	cleanup = append(cleanup, func() { writer.Close() })
	if sqlDB != nil {
		cleanup = append(cleanup, func() {
			if db, err := sqlDB.DB(); err == nil {
				db.Close()
			}
		})
	}

	tracer := otel.Tracer(serviceName)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8081,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			// 库存网关依赖 Nacos 做服务发现，只有到这里才拿得到 naming client
			gateway := adapter.NewInventoryHTTPAdapter(
				httpclient.NewClient(tracer, appCtx.Nacos),
				time.Duration(cfg.App.GatewayTimeoutMs)*time.Millisecond,
			)
			service := application.NewOrderService(orders, gateway, publisher, tracer)
			interfaces.NewOrderHandler(service).RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			for _, fn := range cleanup {
				fn()
			}
		},
	})
}
