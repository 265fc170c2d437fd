// internal/service/warehouse/infrastructure/kafka_publisher.go
package infrastructure

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"stockpile/internal/pkg/logger"
	"stockpile/internal/pkg/metrics"
	"stockpile/internal/pkg/mq"
	"stockpile/internal/service/warehouse/domain"
)

// KafkaWarehousePublisher 仓库事件的 Kafka 发布器，尽力而为。
type KafkaWarehousePublisher struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaWarehousePublisher(writer *kafka.Writer, topic string) *KafkaWarehousePublisher {
	return &KafkaWarehousePublisher{writer: writer, topic: topic}
}

func (p *KafkaWarehousePublisher) PublishWarehouseEvent(ctx context.Context, event *domain.WarehouseEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("code", event.Code).Msg("failed to marshal warehouse event")
		return
	}
	if err := mq.ProduceMessage(ctx, p.writer, []byte(event.Code), payload); err != nil {
		metrics.EventPublishFailures.WithLabelValues(p.topic).Inc()
		logger.Ctx(ctx).Error().Err(err).
			Str("code", event.Code).
			Str("event", event.EventType).
			Msg("failed to publish warehouse event")
	}
}
