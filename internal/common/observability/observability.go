package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         oteltrace.Tracer
	iterCounter    otelmetric.Int64Counter
	iterDuration   otelmetric.Float64Histogram
}

// New wires an otel meter backed by the Prometheus exporter and, when a
// collector endpoint is given, a tracer backed by the Jaeger exporter.
func New(serviceName, jaegerEndpoint string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	meter := provider.Meter(serviceName)

	iterCounter, _ := meter.Int64Counter(
		"retrieval.iterations",
		otelmetric.WithDescription("Number of retrieval iterations executed"),
	)
	iterDuration, _ := meter.Float64Histogram(
		"retrieval.iteration.duration",
		otelmetric.WithDescription("Retrieval iteration duration"),
		otelmetric.WithUnit("ms"),
	)

	obs := &Observability{
		meterProvider: provider,
		meter:         meter,
		iterCounter:   iterCounter,
		iterDuration:  iterDuration,
	}

	if jaegerEndpoint != "" {
		traceExporter, err := jaeger.New(
			jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(jaegerEndpoint)),
		)
		if err != nil {
			log.Printf("Failed to create Jaeger exporter: %v", err)
			return obs
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(traceExporter),
			sdktrace.WithResource(sdkresource.NewWithAttributes(
				semconv.SchemaURL,
				semconv.ServiceName(serviceName),
			)),
		)
		otel.SetTracerProvider(tp)
		obs.tracerProvider = tp
		obs.tracer = tp.Tracer(serviceName)
	}

	return obs
}

// StartIterationSpan opens a span for one retrieval iteration.
func (o *Observability) StartIterationSpan(ctx context.Context, index int) (context.Context, oteltrace.Span) {
	if o.tracer == nil {
		return ctx, oteltrace.SpanFromContext(ctx)
	}
	return o.tracer.Start(ctx, "retrieval.iteration",
		oteltrace.WithAttributes(attribute.Int("iteration.index", index)))
}

func (o *Observability) RecordIteration(ctx context.Context, converged bool) {
	if o.iterCounter != nil {
		o.iterCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.Bool("converged", converged),
		))
	}
}

func (o *Observability) RecordIterationDuration(ctx context.Context, duration time.Duration) {
	if o.iterDuration != nil {
		o.iterDuration.Record(ctx, float64(duration.Milliseconds()))
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down meter provider: %v", err)
		}
	}
	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		}
	}
}
