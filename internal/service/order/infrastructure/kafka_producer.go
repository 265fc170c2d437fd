// internal/service/order/infrastructure/kafka_producer.go
package infrastructure

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"stockpile/internal/pkg/logger"
	"stockpile/internal/pkg/metrics"
	"stockpile/internal/pkg/mq"
	"stockpile/internal/service/order/domain"
)

// KafkaOrderPublisher 把订单事件发往 Kafka。
// 与库存事件一致：尽力而为，失败只记日志和打点。
type KafkaOrderPublisher struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaOrderPublisher(writer *kafka.Writer, topic string) *KafkaOrderPublisher {
	return &KafkaOrderPublisher{writer: writer, topic: topic}
}

// PublishOrderEvent 以订单号为 key 发送，同一订单的事件保序。
func (p *KafkaOrderPublisher) PublishOrderEvent(ctx context.Context, event *domain.OrderEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("order_number", event.OrderNumber).Msg("failed to marshal order event")
		return
	}
	if err := mq.ProduceMessage(ctx, p.writer, []byte(event.OrderNumber), payload); err != nil {
		metrics.EventPublishFailures.WithLabelValues(p.topic).Inc()
		logger.Ctx(ctx).Error().Err(err).
			Str("order_number", event.OrderNumber).
			Str("event", event.EventType).
			Msg("failed to publish order event")
	}
}
