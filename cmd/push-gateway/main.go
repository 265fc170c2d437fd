// cmd/push-gateway/main.go
package main

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stockpile/internal/pkg/bootstrap"
	"stockpile/internal/pkg/constants"
	"stockpile/internal/pkg/mq"
	"stockpile/internal/service/pushgateway"
)

const serviceName = constants.PushGateway

// push-gateway 把库存事件流实时推送给运维看板的 WebSocket 连接。
// 每个节点用独立的消费组 ID，所有节点都收到全量事件。
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	hub := pushgateway.NewHub()
	go hub.Run()

	groupID := serviceName + "-" + uuid.New().String()[:8]
	reader := mq.NewKafkaReader(bootstrap.KafkaBrokers(cfg), constants.TopicStockEvents, groupID)
	consumer := pushgateway.NewConsumer(reader, hub)

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	go consumer.Run(consumerCtx)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8084,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
			appCtx.Mux.HandleFunc("/ws", hub.ServeWS)
			appCtx.Mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"clients":` + strconv.Itoa(hub.ClientCount()) + `}`))
			})
		},
		OnShutdown: func(ctx context.Context) {
			stopConsumer()
			consumer.Close()
		},
	})
}
