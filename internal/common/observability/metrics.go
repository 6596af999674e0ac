package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Observability records evaluation metrics through OpenTelemetry and opens spans
// around snapshot loads and evaluations. The Prometheus exporter registers with the
// default registry, so these metrics are served next to the promauto ones.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	evaluations    otelmetric.Int64Counter
	evalDuration   otelmetric.Float64Histogram
	evalResults    otelmetric.Int64Histogram
	snapshotLoaded otelmetric.Int64Counter
}

func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}

	res := resource.NewSchemaless(attribute.String("service.name", serviceName))

	provider := metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res))
	otel.SetMeterProvider(provider)

	// Spans are sampled in-process only; no span exporter is configured.
	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
	otel.SetTracerProvider(tracerProvider)

	o := newWithMeter(provider.Meter(serviceName), tracerProvider.Tracer(serviceName))
	o.meterProvider = provider
	o.tracerProvider = tracerProvider
	return o, nil
}

// NewNoop is used where no exporter is wanted, such as tests.
func NewNoop() *Observability {
	return &Observability{tracer: otel.Tracer("noop")}
}

func newWithMeter(meter otelmetric.Meter, tracer trace.Tracer) *Observability {
	evaluations, _ := meter.Int64Counter(
		"catalog.evaluations",
		otelmetric.WithDescription("Number of listing evaluations"),
	)
	evalDuration, _ := meter.Float64Histogram(
		"catalog.evaluation.duration",
		otelmetric.WithDescription("Listing evaluation duration"),
		otelmetric.WithUnit("ms"),
	)
	evalResults, _ := meter.Int64Histogram(
		"catalog.evaluation.results",
		otelmetric.WithDescription("Products shown per listing evaluation"),
	)
	snapshotLoaded, _ := meter.Int64Counter(
		"catalog.snapshot.products",
		otelmetric.WithDescription("Products read into snapshots"),
	)

	return &Observability{
		tracer:         tracer,
		evaluations:    evaluations,
		evalDuration:   evalDuration,
		evalResults:    evalResults,
		snapshotLoaded: snapshotLoaded,
	}
}

// StartSpan opens a span named name carrying attrs.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordEvaluation(ctx context.Context, sortKey string, shown int, duration time.Duration) {
	attrs := otelmetric.WithAttributes(attribute.String("sort_key", sortKey))
	if o.evaluations != nil {
		o.evaluations.Add(ctx, 1, attrs)
	}
	if o.evalDuration != nil {
		o.evalDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	}
	if o.evalResults != nil {
		o.evalResults.Record(ctx, int64(shown), attrs)
	}
}

func (o *Observability) RecordSnapshot(ctx context.Context, source string, size int) {
	if o.snapshotLoaded != nil {
		o.snapshotLoaded.Add(ctx, int64(size), otelmetric.WithAttributes(attribute.String("source", source)))
	}
}

func (o *Observability) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var errs []error
	if o.tracerProvider != nil {
		errs = append(errs, o.tracerProvider.Shutdown(ctx))
	}
	if o.meterProvider != nil {
		errs = append(errs, o.meterProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
