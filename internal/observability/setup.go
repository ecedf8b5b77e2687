package observability

import (
	"context"
	"log/slog"

	"github.com/honeynil/LavenderPOS/internal/infrastructure/observability"
)

// Setup wires logging, metrics and tracing. The returned func flushes spans.
func Setup(ctx context.Context, serviceName, otlpEndpoint string) func(context.Context) error {
	observability.InitLogger(slog.LevelInfo)
	observability.InitMetrics()
	return observability.InitTracing(ctx, serviceName, otlpEndpoint)
}
