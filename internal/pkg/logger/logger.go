// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Logger 是全局的 zerolog 实例，Init 之后可直接使用。
var Logger zerolog.Logger

func init() {
	// 默认配置，保证在 Init 被调用前日志也可用（例如单元测试）
	Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Init 初始化全局日志器，service 会作为固定字段输出。
func Init(service string) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	Logger = zerolog.New(os.Stderr).With().
		Timestamp().
		Str("service", service).
		Logger()
}

// Ctx 返回一个带链路信息的日志器。
// 如果上下文中存在有效的 Span，会自动附加 trace_id / span_id，
// 方便在 Jaeger 和日志之间互相跳转。
func Ctx(ctx context.Context) *zerolog.Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return &Logger
	}
	l := Logger.With().
		Str("trace_id", spanCtx.TraceID().String()).
		Str("span_id", spanCtx.SpanID().String()).
		Logger()
	return &l
}
