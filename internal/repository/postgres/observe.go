package repository

import (
	"context"
	"time"

	"github.com/honeynil/LavenderPOS/internal/infrastructure/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// startCall opens a span for a repository method. The returned func records
// metrics and span status and must be deferred with a pointer to the method's error.
func startCall(ctx context.Context, tracerName, method string) (context.Context, trace.Span, func(*error)) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, method)
	start := time.Now()
	return ctx, span, func(errp *error) {
		status := "success"
		if errp != nil && *errp != nil {
			status = "error"
			span.RecordError(*errp)
			span.SetStatus(codes.Error, (*errp).Error())
		}
		observability.RepositoryCalls.WithLabelValues(method, status).Inc()
		observability.RepositoryDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
		span.End()
	}
}
