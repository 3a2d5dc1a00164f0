package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records orchestrator level measurements through OpenTelemetry,
// exported on the Prometheus registry. A nil *Observability is valid and
// records nothing.
type Observability struct {
	meterProvider *metric.MeterProvider
	intentCounter otelmetric.Int64Counter
	fetchDuration otelmetric.Float64Histogram
}

func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	intentCounter, err := meter.Int64Counter(
		"search.intents",
		otelmetric.WithDescription("Intents dispatched to the search orchestrator"),
	)
	if err != nil {
		return nil, err
	}

	fetchDuration, err := meter.Float64Histogram(
		"search.fetch.duration",
		otelmetric.WithDescription("Result-set fetch duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &Observability{
		meterProvider: provider,
		intentCounter: intentCounter,
		fetchDuration: fetchDuration,
	}, nil
}

func (o *Observability) RecordIntent(ctx context.Context, intent string, accepted bool) {
	if o == nil || o.intentCounter == nil {
		return
	}
	o.intentCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("intent", intent),
		attribute.Bool("accepted", accepted),
	))
}

func (o *Observability) RecordFetch(ctx context.Context, kind string, d time.Duration, outcome string) {
	if o == nil || o.fetchDuration == nil {
		return
	}
	o.fetchDuration.Record(ctx, float64(d.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
