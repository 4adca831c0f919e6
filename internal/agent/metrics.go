// Package agent metrics instrumentation.
package agent

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/advisord/internal/agent"

// Metrics holds pipeline-level metrics.
type Metrics struct {
	meter       metric.Meter
	logger      *zap.Logger
	invocations metric.Int64Counter
	duration    metric.Float64Histogram
}

// NewMetrics creates a Metrics instance backed by the global meter provider.
func NewMetrics(logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Metrics{
		meter:  otel.Meter(instrumentationName),
		logger: logger,
	}
	m.init()
	return m
}

func (m *Metrics) init() {
	var err error

	m.invocations, err = m.meter.Int64Counter(
		"advisord.capability.invocations_total",
		metric.WithDescription("Total capability invocations labeled by capability name and outcome (analyzed, skipped, failed)."),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		m.logger.Warn("failed to create invocations counter", zap.Error(err))
	}

	m.duration, err = m.meter.Float64Histogram(
		"advisord.capability.duration_seconds",
		metric.WithDescription("Capability invocation duration in seconds, labeled by capability name and outcome."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		m.logger.Warn("failed to create duration histogram", zap.Error(err))
	}
}

// Record registers one invocation outcome.
func (m *Metrics) Record(ctx context.Context, capability string, outcome ResultKind, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("capability", capability),
		attribute.String("outcome", string(outcome)),
	)
	if m.invocations != nil {
		m.invocations.Add(ctx, 1, attrs)
	}
	if m.duration != nil {
		m.duration.Record(ctx, elapsed.Seconds(), attrs)
	}
}

// Instrument wraps a capability so every invocation is measured.
func (m *Metrics) Instrument(c Capability) Capability {
	return &instrumented{inner: c, metrics: m}
}

type instrumented struct {
	inner   Capability
	metrics *Metrics
}

func (i *instrumented) Name() string {
	return i.inner.Name()
}

func (i *instrumented) Invoke(ctx context.Context, req *Request) (Result, error) {
	start := time.Now()
	res, err := i.inner.Invoke(ctx, req)

	outcome := res.Kind
	if err != nil {
		outcome = ResultFailed
	}
	i.metrics.Record(ctx, i.inner.Name(), outcome, time.Since(start))
	return res, err
}
