package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Prometheus pairs a meter backed by a Prometheus exporter with the handler
// serving its /metrics scrape endpoint.
type Prometheus struct {
	Meter    metric.Meter
	Handler  http.Handler
	provider *sdkmetric.MeterProvider
}

// NewPrometheus creates an independent Prometheus registry, attaches an OTel
// exporter to it and returns a meter whose instruments are scraped from the
// handler. Go runtime and process collectors are registered alongside.
func NewPrometheus() (*Prometheus, error) {
	registry := prometheus.NewRegistry()

	registerErr := registry.Register(collectors.NewGoCollector())
	if registerErr != nil {
		return nil, fmt.Errorf("register go collector: %w", registerErr)
	}

	registerErr = registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if registerErr != nil {
		return nil, fmt.Errorf("register process collector: %w", registerErr)
	}

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
	)
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	return &Prometheus{
		Meter:    provider.Meter(scopeName),
		Handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		provider: provider,
	}, nil
}

// MeterProvider returns the provider behind Meter.
func (p *Prometheus) MeterProvider() *sdkmetric.MeterProvider {
	return p.provider
}
