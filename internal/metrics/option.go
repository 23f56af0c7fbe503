package metrics

import "strings"

// Provider names a metric reader.
type Provider string

const (
	PrometheusProvider Provider = "prometheus"
	OtelCollector      Provider = "otlp-grpc"
)

// Values for NewOtelCollectorConfig's insecure flag.
const (
	InsecureOtel = true
	SecureOtel   = false
)

// NewOtelCollectorConfig describes an OTLP/gRPC collector.
func NewOtelCollectorConfig(url string, headers map[string]string, insecure bool) ProviderCfg {
	return ProviderCfg{
		Provider: OtelCollector,
		Endpoint: url,
		Headers:  headers,
		Insecure: insecure,
	}
}

// NewPrometheusConfig describes the pull-based Prometheus reader.
func NewPrometheusConfig() ProviderCfg {
	return ProviderCfg{Provider: PrometheusProvider}
}

type Config struct {
	ServiceName string
	Provider    []ProviderCfg
}

type ProviderCfg struct {
	Provider Provider
	Endpoint string
	Headers  map[string]string
	Insecure bool
}

type OptionFn func(config Config) Config

func WithProviderConfig(provider ProviderCfg) OptionFn {
	return func(config Config) Config {
		config.Provider = append(config.Provider, provider)

		return config
	}
}

func WithServiceName(serviceName string) OptionFn {
	return func(config Config) Config {
		config.ServiceName = serviceName

		return config
	}
}

// ReaderOptions picks the metric readers for a telemetry provider. The
// Prometheus reader is always installed; an "otlp-grpc" provider also pushes
// to the collector at endpoint, insecurely for plain http URLs.
func ReaderOptions(provider, endpoint string, headers map[string]string) []OptionFn {
	opts := []OptionFn{WithProviderConfig(NewPrometheusConfig())}
	if Provider(provider) == OtelCollector {
		insecure := SecureOtel
		if strings.HasPrefix(endpoint, "http://") {
			insecure = InsecureOtel
		}
		opts = append(opts, WithProviderConfig(NewOtelCollectorConfig(endpoint, headers, insecure)))
	}
	return opts
}
