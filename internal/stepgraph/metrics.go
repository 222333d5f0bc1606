package stepgraph

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mirepoix/mirepoix/internal/telemetry"
)

const meterScopeName = "github.com/mirepoix/mirepoix/stepgraph"

// Engine operation counters. Instruments are created against the global
// meter provider, which is a no-op unless telemetry is enabled.
var (
	metricsOnce     sync.Once
	mutationCounter metric.Int64Counter
	refusalCounter  metric.Int64Counter
)

func initMetrics() {
	m := telemetry.Meter(meterScopeName)
	mutationCounter, _ = m.Int64Counter("mpx.engine.mutations",
		metric.WithDescription("Step graph mutations applied, by operation"),
	)
	refusalCounter, _ = m.Int64Counter("mpx.engine.refusals",
		metric.WithDescription("Step graph operations refused by validation, by operation"),
	)
}

// recordMutation counts an applied mutation (create, delete, move).
func recordMutation(ctx context.Context, op string) {
	metricsOnce.Do(initMetrics)
	mutationCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("mpx.operation", op)))
}

// recordRefusal counts a validation refusal for the named operation.
func recordRefusal(ctx context.Context, op string) {
	metricsOnce.Do(initMetrics)
	refusalCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("mpx.operation", op)))
}
