// Package observability instruments the Plan Store with OpenTelemetry
// counters, using an in-process metric reader so the kernel runs
// instrumented with no collector configured. The budget ledger is not
// instrumented.
package observability

import (
	"context"
	"fmt"

	"github.com/agentkit/plankernel/pkg/planstore"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// PlanMetrics implements planstore.Metrics on top of otel counters, same RED-metrics shape as the kernel's request/
// error counters, scoped to the Plan Store's mutation vocabulary instead of
// HTTP requests.
type PlanMetrics struct {
	provider        *sdkmetric.MeterProvider
	reader          *sdkmetric.ManualReader
	mutationCounter metric.Int64Counter
	failureCounter  metric.Int64Counter
}

// NewPlanMetrics builds a PlanMetrics backed by an in-memory ManualReader.
// Collect reads the accumulated totals back out for tests or a debug
// endpoint; nothing is exported over the network.
func NewPlanMetrics() (*PlanMetrics, error) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("plankernel.planstore")

	mutationCounter, err := meter.Int64Counter("planstore.mutations.total",
		metric.WithDescription("Plan Store mutations committed, by operation"),
		metric.WithUnit("{mutation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("observability: mutation counter: %w", err)
	}
	failureCounter, err := meter.Int64Counter("planstore.failures.total",
		metric.WithDescription("Plan Store mutations rejected, by operation and failure kind"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("observability: failure counter: %w", err)
	}

	return &PlanMetrics{
		provider:        provider,
		reader:          reader,
		mutationCounter: mutationCounter,
		failureCounter:  failureCounter,
	}, nil
}

// RecordMutation satisfies planstore.Metrics.
func (m *PlanMetrics) RecordMutation(op string) {
	m.mutationCounter.Add(context.Background(), 1, metric.WithAttributes(attribute.String("op", op)))
}

// RecordFailure satisfies planstore.Metrics.
func (m *PlanMetrics) RecordFailure(op string, kind planstore.Kind) {
	m.failureCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("op", op), attribute.String("kind", string(kind))))
}

// Collect returns the current accumulated data points, for tests or a debug
// endpoint that wants the raw otel resource metrics without standing up a
// collector.
func (m *PlanMetrics) Collect(ctx context.Context) (*metricdata.ResourceMetrics, error) {
	var rm metricdata.ResourceMetrics
	if err := m.reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("observability: collect: %w", err)
	}
	return &rm, nil
}

// Shutdown flushes and releases the provider.
func (m *PlanMetrics) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}
