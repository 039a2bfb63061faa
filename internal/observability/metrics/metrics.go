package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes storefront admin instruments. A nil *Metrics is a valid no-op.
type Metrics struct {
	sizeWrites         metric.Int64Counter
	categoryChanges    metric.Int64Counter
	productUpdates     metric.Int64Counter
	mediaOperations    metric.Int64Counter
	newsletterSignups  metric.Int64Counter
	systemLogEntries   metric.Int64Counter
	rateLimitAllowed   metric.Int64Counter
	rateLimitDenied    metric.Int64Counter
	mediaUploadedBytes metric.Int64Histogram
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "pistache"
	}
	meter := provider.Meter(name)

	var (
		m   Metrics
		err error
	)
	if m.sizeWrites, err = meter.Int64Counter("pistache_size_writes_total"); err != nil {
		return nil, err
	}
	if m.categoryChanges, err = meter.Int64Counter("pistache_category_changes_total"); err != nil {
		return nil, err
	}
	if m.productUpdates, err = meter.Int64Counter("pistache_product_updates_total"); err != nil {
		return nil, err
	}
	if m.mediaOperations, err = meter.Int64Counter("pistache_media_operations_total"); err != nil {
		return nil, err
	}
	if m.newsletterSignups, err = meter.Int64Counter("pistache_newsletter_signups_total"); err != nil {
		return nil, err
	}
	if m.systemLogEntries, err = meter.Int64Counter("pistache_system_log_entries_total"); err != nil {
		return nil, err
	}
	if m.rateLimitAllowed, err = meter.Int64Counter("pistache_rate_limit_allowed_total"); err != nil {
		return nil, err
	}
	if m.rateLimitDenied, err = meter.Int64Counter("pistache_rate_limit_denied_total"); err != nil {
		return nil, err
	}
	if m.mediaUploadedBytes, err = meter.Int64Histogram("pistache_media_uploaded_bytes", metric.WithUnit("By")); err != nil {
		return nil, err
	}

	return &m, nil
}

// RecordSizeWrite counts size/stock mutations by operation (create, update, delete).
func (m *Metrics) RecordSizeWrite(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("operation", strings.TrimSpace(operation)))
	m.sizeWrites.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCategoryChange counts association changes (add, remove, replace).
func (m *Metrics) RecordCategoryChange(ctx context.Context, operation string, count int) {
	if m == nil || count <= 0 {
		return
	}
	attrs := FilterAttributes(attribute.String("operation", strings.TrimSpace(operation)))
	m.categoryChanges.Add(ctx, int64(count), metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordProductUpdate(ctx context.Context) {
	if m == nil {
		return
	}
	m.productUpdates.Add(ctx, 1)
}

// RecordMediaOperation counts storage calls by operation and outcome.
func (m *Metrics) RecordMediaOperation(ctx context.Context, operation, outcome string, size int64) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("operation", strings.TrimSpace(operation)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.mediaOperations.Add(ctx, 1, metric.WithAttributes(attrs...))
	if size > 0 {
		m.mediaUploadedBytes.Record(ctx, size)
	}
}

func (m *Metrics) RecordNewsletterSignup(ctx context.Context, source string, created bool) {
	if m == nil {
		return
	}
	outcome := "duplicate"
	if created {
		outcome = "created"
	}
	attrs := FilterAttributes(
		attribute.String("source", strings.TrimSpace(source)),
		attribute.String("outcome", outcome),
	)
	m.newsletterSignups.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordSystemLogEntry(ctx context.Context, level string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("level", strings.TrimSpace(level)))
	m.systemLogEntries.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitAllowed increments rate limit allow counts.
func (m *Metrics) RecordRateLimitAllowed(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("endpoint", strings.TrimSpace(endpoint)))
	m.rateLimitAllowed.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitDenied increments rate limit deny counts.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"endpoint":    {},
	"status_code": {},
	"operation":   {},
	"outcome":     {},
	"source":      {},
	"level":       {},
	"reason":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
