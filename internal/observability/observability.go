package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Config controls observability initialisation.
type Config struct {
	Enabled        bool
	ServiceName    string
	Environment    string
	OTLPEndpoint   string
	OTLPHeaders    map[string]string
	OTLPInsecure   bool
	MetricsAddress string
}

// Providers exposes configured telemetry providers.
type Providers struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Propagator     propagation.TextMapPropagator
	MetricsHandler http.Handler
	Shutdown       func(ctx context.Context) error
	Config         Config
}

var (
	initOnce sync.Once

	harvestTracer trace.Tracer

	fetchDuration   metric.Float64Histogram
	fetchTotal      metric.Int64Counter
	discoveryTotal  metric.Int64Counter
	harvestDuration metric.Float64Histogram
	harvestEntries  metric.Int64Counter
)

// Init configures tracing and metrics exporters. When cfg.Enabled is false the function is a no-op.
func Init(ctx context.Context, cfg Config) (*Providers, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = "sitescout"
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}

	var spanExporter sdktrace.SpanExporter
	if cfg.OTLPEndpoint != "" {
		clientOpts := []otlptracehttp.Option{
			getOTLPEndpointOption(cfg.OTLPEndpoint),
		}
		if cfg.OTLPInsecure {
			clientOpts = append(clientOpts, otlptracehttp.WithInsecure())
		}
		if len(cfg.OTLPHeaders) > 0 {
			clientOpts = append(clientOpts, otlptracehttp.WithHeaders(cfg.OTLPHeaders))
		}

		exp, err := otlptracehttp.New(ctx, clientOpts...)
		if err != nil {
			// Log error but don't fail app startup - observability is optional
			fmt.Printf("WARN: Failed to create OTLP trace exporter (traces disabled): %v\n", err)
			fmt.Printf("WARN: Endpoint: %s\n", cfg.OTLPEndpoint)
		} else {
			spanExporter = exp
			fmt.Printf("INFO: OTLP trace exporter initialised successfully for endpoint: %s\n", cfg.OTLPEndpoint)
		}
	}

	traceOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
	}
	if spanExporter != nil {
		traceOpts = append(traceOpts, sdktrace.WithBatcher(spanExporter))
	}

	tracerProvider := sdktrace.NewTracerProvider(traceOpts...)
	otel.SetTracerProvider(tracerProvider)

	prop := propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
	otel.SetTextMapPropagator(prop)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	promExporter, err := otelprom.New(
		otelprom.WithRegisterer(registry),
	)
	if err != nil {
		_ = tracerProvider.Shutdown(ctx) // best-effort cleanup
		return nil, fmt.Errorf("create Prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(promExporter),
	)
	otel.SetMeterProvider(meterProvider)

	initOnce.Do(func() {
		harvestTracer = tracerProvider.Tracer("sitescout/harvest")
		_ = initHarvestInstruments(meterProvider)
	})

	shutdown := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		var allErr error
		if err := meterProvider.Shutdown(ctx); err != nil {
			allErr = errors.Join(allErr, fmt.Errorf("metric provider shutdown: %w", err))
		}
		if err := tracerProvider.Shutdown(ctx); err != nil {
			allErr = errors.Join(allErr, fmt.Errorf("trace provider shutdown: %w", err))
		}
		return allErr
	}

	return &Providers{
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
		Propagator:     prop,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Shutdown:       shutdown,
		Config:         cfg,
	}, nil
}

func getOTLPEndpointOption(endpoint string) otlptracehttp.Option {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return otlptracehttp.WithEndpointURL(endpoint)
	}
	return otlptracehttp.WithEndpoint(endpoint)
}

// WrapHandler applies OpenTelemetry instrumentation to an http.Handler when the providers are active.
func WrapHandler(handler http.Handler, prov *Providers) http.Handler {
	if prov == nil || prov.TracerProvider == nil {
		return handler
	}

	options := []otelhttp.Option{
		otelhttp.WithTracerProvider(prov.TracerProvider),
		otelhttp.WithPropagators(prov.Propagator),
		otelhttp.WithMeterProvider(prov.MeterProvider),
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			return fmt.Sprintf("%s %s", r.Method, r.URL.Path)
		}),
		// Skip tracing for health checks to reduce noise
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}),
	}

	return otelhttp.NewHandler(handler, "http.server", options...)
}

func initHarvestInstruments(meterProvider *sdkmetric.MeterProvider) error {
	if meterProvider == nil {
		return nil
	}

	meter := meterProvider.Meter("sitescout/harvest")

	var err error
	fetchDuration, err = meter.Float64Histogram(
		"scout.fetch.duration_ms",
		metric.WithUnit("ms"),
		metric.WithDescription("Time taken by a fetch including its retries"),
	)
	if err != nil {
		return err
	}

	fetchTotal, err = meter.Int64Counter(
		"scout.fetch.total",
		metric.WithDescription("Counts fetches by final status class"),
	)
	if err != nil {
		return err
	}

	discoveryTotal, err = meter.Int64Counter(
		"scout.discovery.total",
		metric.WithDescription("Counts discovery outcomes by winning strategy"),
	)
	if err != nil {
		return err
	}

	harvestDuration, err = meter.Float64Histogram(
		"scout.harvest.duration_ms",
		metric.WithUnit("ms"),
		metric.WithDescription("Time taken to run a full harvest"),
	)
	if err != nil {
		return err
	}

	harvestEntries, err = meter.Int64Counter(
		"scout.harvest.entries.total",
		metric.WithDescription("Counts URL entries produced by harvests"),
	)
	return err
}

// statusClass buckets a status code for metric labels (2xx, 4xx, ...).
func statusClass(code int) string {
	if code <= 0 {
		return "error"
	}
	return fmt.Sprintf("%dxx", code/100)
}

// RecordFetch emits fetch metrics when instrumentation is initialised.
func RecordFetch(ctx context.Context, statusCode, attempts int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("fetch.status_class", statusClass(statusCode)),
		attribute.Bool("fetch.retried", attempts > 1),
	)

	if fetchDuration != nil {
		fetchDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
	if fetchTotal != nil {
		fetchTotal.Add(ctx, 1, attrs)
	}
}

// RecordDiscovery counts the strategy that settled a discovery.
func RecordDiscovery(ctx context.Context, strategy string) {
	if discoveryTotal != nil {
		discoveryTotal.Add(ctx, 1,
			metric.WithAttributes(attribute.String("discovery.strategy", strategy)))
	}
}

// HarvestSpanInfo describes the attributes used when starting a harvest span.
type HarvestSpanInfo struct {
	BaseURLs     []string
	MaxDepth     int
	IgnoreErrors bool
}

// HarvestMetrics describes a completed harvest for metric recording.
type HarvestMetrics struct {
	Status   string
	Entries  int
	Errors   int
	Duration time.Duration
}

// StartHarvestSpan starts a span covering one harvest invocation.
func StartHarvestSpan(ctx context.Context, info HarvestSpanInfo) (context.Context, trace.Span) {
	t := harvestTracer
	if t == nil {
		t = otel.Tracer("sitescout/harvest")
	}

	attrs := []attribute.KeyValue{
		attribute.StringSlice("harvest.base_urls", info.BaseURLs),
		attribute.Int("harvest.max_depth", info.MaxDepth),
		attribute.Bool("harvest.ignore_errors", info.IgnoreErrors),
	}

	return t.Start(ctx, "harvest.collect", trace.WithAttributes(attrs...))
}

// RecordHarvest emits harvest metrics when instrumentation is initialised.
func RecordHarvest(ctx context.Context, metrics HarvestMetrics) {
	statusAttr := metric.WithAttributes(attribute.String("harvest.status", metrics.Status))

	if harvestDuration != nil {
		harvestDuration.Record(ctx, float64(metrics.Duration.Milliseconds()), statusAttr)
	}
	if harvestEntries != nil {
		harvestEntries.Add(ctx, int64(metrics.Entries), statusAttr)
	}
}
