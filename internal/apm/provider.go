package apm

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/fd1az/swapquote/internal/apperror"
	"github.com/fd1az/swapquote/internal/logger"
)

// Provider names a span exporter.
type Provider string

const (
	ConsoleProvider  Provider = "console"
	ZipkinProvider   Provider = "zipkin"
	OTLPGRPCProvider Provider = "otlp-grpc"
	OTLPHTTPProvider Provider = "otlp-http"
	EmptyProvider    Provider = "none"
)

// TraceProvider is a running provider that must be stopped to flush spans.
type TraceProvider interface {
	Stop() error
}

type traceProvider struct {
	tp *sdktrace.TracerProvider
}

type emptyTraceProvider struct{}

func (emptyTraceProvider) Stop() error { return nil }

// TracerOptions collects the settings applied by TracerOption.
type TracerOptions struct {
	provider    Provider
	serviceName string
	endpoint    string
	headers     map[string]string
	writer      io.Writer
	exporter    sdktrace.SpanExporter
}

// TracerOption configures NewTraceProvider.
type TracerOption func(*TracerOptions)

// WithProvider selects the exporter.
func WithProvider(provider Provider) TracerOption {
	return func(o *TracerOptions) {
		o.provider = provider
	}
}

// WithServiceName sets the service.name resource attribute.
func WithServiceName(name string) TracerOption {
	return func(o *TracerOptions) {
		o.serviceName = name
	}
}

// WithEndpoint sets the collector endpoint URL for the zipkin and otlp
// exporters.
func WithEndpoint(url string) TracerOption {
	return func(o *TracerOptions) {
		o.endpoint = url
	}
}

// WithHeaders sets extra headers for the otlp exporters.
func WithHeaders(headers map[string]string) TracerOption {
	return func(o *TracerOptions) {
		o.headers = headers
	}
}

// WithWriter redirects the console exporter, stdout by default.
func WithWriter(w io.Writer) TracerOption {
	return func(o *TracerOptions) {
		o.writer = w
	}
}

// WithExporter installs a prebuilt exporter and ignores the provider.
func WithExporter(exp sdktrace.SpanExporter) TracerOption {
	return func(o *TracerOptions) {
		o.exporter = exp
	}
}

// ParseHeaders parses "k1=v1,k2=v2" as used by OTEL_EXPORTER_OTLP_HEADERS.
func ParseHeaders(s string) (map[string]string, error) {
	headers := make(map[string]string)
	for _, kv := range strings.Split(s, ",") {
		kv = strings.TrimSpace(kv)
		if kv == "" {
			continue
		}
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, apperror.Newf(apperror.CodeConfigurationError, "otlp header %q: expected key=value", kv)
		}
		headers[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return headers, nil
}

// NewTraceProvider builds the exporter, installs the provider and the
// W3C propagators globally, and returns a handle to stop it.
func NewTraceProvider(ctx context.Context, log logger.LoggerInterface, options ...TracerOption) (TraceProvider, error) {
	opts := &TracerOptions{provider: ConsoleProvider}
	for _, opt := range options {
		opt(opts)
	}

	exp := opts.exporter
	if exp == nil {
		var err error
		exp, err = newExporter(ctx, opts)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeConfigurationError, "trace exporter "+string(opts.provider))
		}
	}
	if exp == nil {
		log.Info(ctx, "tracing disabled")
		return emptyTraceProvider{}, nil
	}

	rsrc, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(opts.serviceName),
			attribute.String("otel.provider", string(opts.provider)),
		))
	if err != nil {
		// conflicting schema URLs; the attributes alone are enough
		rsrc = resource.NewSchemaless(semconv.ServiceNameKey.String(opts.serviceName))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(rsrc),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

	log.Info(ctx, "tracing enabled", "provider", opts.provider, "endpoint", opts.endpoint)

	return &traceProvider{tp}, nil
}

func newExporter(ctx context.Context, opts *TracerOptions) (sdktrace.SpanExporter, error) {
	switch opts.provider {
	case EmptyProvider, "":
		return nil, nil
	case ConsoleProvider:
		w := opts.writer
		if w == nil {
			w = os.Stdout
		}
		return stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	case ZipkinProvider:
		return zipkin.New(opts.endpoint)
	case OTLPGRPCProvider:
		grpcOpts := []otlptracegrpc.Option{otlptracegrpc.WithHeaders(opts.headers)}
		if opts.endpoint != "" {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithEndpointURL(opts.endpoint))
		}
		return otlptracegrpc.New(ctx, grpcOpts...)
	case OTLPHTTPProvider:
		httpOpts := []otlptracehttp.Option{otlptracehttp.WithHeaders(opts.headers)}
		if opts.endpoint != "" {
			httpOpts = append(httpOpts, otlptracehttp.WithEndpointURL(opts.endpoint))
		}
		return otlptracehttp.New(ctx, httpOpts...)
	default:
		return nil, apperror.Newf(apperror.CodeConfigurationError, "unknown trace provider %q", opts.provider)
	}
}

// Stop flushes pending spans and shuts the provider down.
func (o *traceProvider) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
	defer cancel()

	return o.tp.Shutdown(ctx)
}
