// internal/service/pushgateway/consumer.go
package pushgateway

import (
	"context"

	"github.com/segmentio/kafka-go"

	"stockpile/internal/pkg/logger"
	"stockpile/internal/pkg/mq"
)

// Consumer 消费库存事件并广播到 Hub。
// 看板推送是纯通知，消费失败只记日志不重试。
type Consumer struct {
	reader *kafka.Reader
	hub    *Hub
}

func NewConsumer(reader *kafka.Reader, hub *Hub) *Consumer {
	return &Consumer{reader: reader, hub: hub}
}

// Run 阻塞消费直到 ctx 取消。
func (c *Consumer) Run(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Logger.Error().Err(err).Msg("failed to read stock event")
			continue
		}
		msgCtx := mq.ExtractTraceContext(ctx, &msg)
		logger.Ctx(msgCtx).Debug().
			Str("key", string(msg.Key)).
			Int("size", len(msg.Value)).
			Msg("broadcasting stock event")
		c.hub.Broadcast(msg.Value)
	}
}

// Close 关闭底层 reader。
func (c *Consumer) Close() error {
	return c.reader.Close()
}
