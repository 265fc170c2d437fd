// internal/service/inventory/infrastructure/kafka_publisher.go
package infrastructure

import (
	"context"
	"encoding/json"

	"stockpile/internal/pkg/logger"
	"stockpile/internal/pkg/metrics"
	"stockpile/internal/pkg/mq"
	"stockpile/internal/service/inventory/domain"

	"github.com/segmentio/kafka-go"
)

// KafkaStockPublisher 把库存事件发往 Kafka。
// 事件是尽力而为的通知：发送失败记日志、打点，绝不影响已经
// 完成的库存变更，也不做重试（下游按 at-least-once 消费）。
type KafkaStockPublisher struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaStockPublisher 创建发布器。
func NewKafkaStockPublisher(writer *kafka.Writer, topic string) *KafkaStockPublisher {
	return &KafkaStockPublisher{writer: writer, topic: topic}
}

// PublishStockEvent 以 SKU 为 key 发送事件，同一 SKU 落同一分区。
func (p *KafkaStockPublisher) PublishStockEvent(ctx context.Context, event *domain.StockEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("sku", event.SKU).Msg("failed to marshal stock event")
		return
	}
	if err := mq.ProduceMessage(ctx, p.writer, []byte(event.SKU), payload); err != nil {
		metrics.EventPublishFailures.WithLabelValues(p.topic).Inc()
		logger.Ctx(ctx).Error().Err(err).
			Str("sku", event.SKU).
			Str("event", event.EventType).
			Msg("failed to publish stock event")
	}
}
