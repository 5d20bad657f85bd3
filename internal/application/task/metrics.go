package task

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/rezkam/taskboard/internal/application/task"

// serviceMetrics counts task mutations. Instruments come from the global
// meter provider, which is a no-op until observability is initialised.
type serviceMetrics struct {
	mutations metric.Int64Counter
	rejected  metric.Int64Counter
}

func newServiceMetrics() serviceMetrics {
	meter := otel.Meter(meterName)
	mutations, _ := meter.Int64Counter("taskboard.task.mutations",
		metric.WithDescription("Tasks written, by operation"),
		metric.WithUnit("{task}"))
	rejected, _ := meter.Int64Counter("taskboard.task.rejections",
		metric.WithDescription("Requests rejected by validation or business rules, by operation"),
		metric.WithUnit("{request}"))
	return serviceMetrics{mutations: mutations, rejected: rejected}
}

func (m serviceMetrics) recordMutation(ctx context.Context, op string, n int) {
	if m.mutations == nil || n <= 0 {
		return
	}
	m.mutations.Add(ctx, int64(n), metric.WithAttributes(attribute.String("operation", op)))
}

func (m serviceMetrics) recordRejection(ctx context.Context, op string) {
	if m.rejected == nil {
		return
	}
	m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
}
