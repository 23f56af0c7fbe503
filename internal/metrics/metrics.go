// Package metrics installs the OpenTelemetry meter provider and serves the
// Prometheus scrape endpoint.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/fd1az/swapquote/internal/apperror"
	"github.com/fd1az/swapquote/internal/logger"
)

type MetricProvider interface {
	Meter(name string, options ...metric.MeterOption) metric.Meter
	Shutdown(ctx context.Context) error
	// Handler serves the Prometheus registry, 404 when no Prometheus reader
	// is configured.
	Handler() http.Handler
}

type meterProvider struct {
	*sdkmetric.MeterProvider
	registry *promclient.Registry
}

func (p *meterProvider) Handler() http.Handler {
	if p.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func getReaders(ctx context.Context, cfg Config) ([]sdkmetric.Reader, *promclient.Registry, error) {
	var (
		readers  []sdkmetric.Reader
		registry *promclient.Registry
	)

	for _, provider := range cfg.Provider {
		switch provider.Provider {
		case PrometheusProvider:
			if registry != nil {
				continue
			}
			registry = promclient.NewRegistry()
			promExporter, err := prometheus.New(prometheus.WithRegisterer(registry))
			if err != nil {
				return nil, nil, err
			}

			readers = append(readers, promExporter)
		case OtelCollector:
			opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithHeaders(provider.Headers)}
			if provider.Endpoint != "" {
				opts = append(opts, otlpmetricgrpc.WithEndpointURL(provider.Endpoint))
			}

			if provider.Insecure {
				opts = append(opts, otlpmetricgrpc.WithInsecure())
			}

			exp, err := otlpmetricgrpc.New(ctx, opts...)
			if err != nil {
				return nil, nil, err
			}

			readers = append(readers, sdkmetric.NewPeriodicReader(exp))
		default:
			return nil, nil, fmt.Errorf("unknown metric provider %q", provider.Provider)
		}
	}

	return readers, registry, nil
}

// NewMetricProvider builds the configured readers and installs the provider
// globally. With no readers the instruments record into nothing.
func NewMetricProvider(ctx context.Context, options ...OptionFn) (MetricProvider, error) {
	var cfg Config

	for _, opt := range options {
		cfg = opt(cfg)
	}

	readers, registry, err := getReaders(ctx, cfg)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeConfigurationError, "metric readers")
	}

	metricsOps := []sdkmetric.Option{
		sdkmetric.WithResource(resource.NewSchemaless(semconv.ServiceNameKey.String(cfg.ServiceName))),
	}
	for _, reader := range readers {
		metricsOps = append(metricsOps, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(metricsOps...)

	otel.SetMeterProvider(mp)

	return &meterProvider{MeterProvider: mp, registry: registry}, nil
}

// Server exposes /metrics on its own port.
type Server struct {
	port    int
	handler http.Handler
	logger  logger.LoggerInterface
	server  *http.Server
}

// NewServer creates a scrape server for provider.
func NewServer(port int, provider MetricProvider, log logger.LoggerInterface) *Server {
	return &Server{
		port:    port,
		handler: provider.Handler(),
		logger:  log,
	}
}

// Start serves in the background.
func (s *Server) Start(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.handler)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info(ctx, "serving metrics", "addr", s.server.Addr, "path", "/metrics")

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(ctx, "metrics server failed", "error", err)
		}
	}()
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
