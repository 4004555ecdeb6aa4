// Package metrics provides interfaces for defining self-contained, reusable metrics.
//
// Each metric is a computation unit that:
//   - Declares its input requirements
//   - Computes a typed output
//   - Provides metadata for documentation and serialization
//
// This design allows the same metric to feed terminal, HTML and API output.
package metrics

import (
	"sort"
	"time"
)

// Metric is the core interface that all metrics must implement.
// Each metric is a self-contained computation with metadata.
type Metric[In, Out any] interface {
	// Name returns the machine-readable identifier (snake_case, unique).
	Name() string

	// DisplayName returns a human-readable name for UI/reports.
	DisplayName() string

	// Description returns detailed documentation including:
	// - What the metric measures.
	// - How to interpret the value.
	// - Units (if applicable).
	Description() string

	// Type returns the metric category (e.g., "aggregate", "breakdown", "time_series").
	Type() string

	// Compute calculates the metric value from input data.
	Compute(input In) Out
}

// Metric categories.
const (
	TypeAggregate  = "aggregate"
	TypeBreakdown  = "breakdown"
	TypeTimeSeries = "time_series"
)

// TimePoint is a single data point in a time series.
type TimePoint struct {
	At    time.Time `json:"at"`
	Value float64   `json:"value"`
}

// MetricMeta holds the common metadata for a metric.
// Embed this in metric implementations to satisfy metadata methods.
type MetricMeta struct {
	MetricName        string
	MetricDisplayName string
	MetricDescription string
	MetricType        string
}

// Name returns the machine-readable identifier.
func (m MetricMeta) Name() string { return m.MetricName }

// DisplayName returns a human-readable name for UI/reports.
func (m MetricMeta) DisplayName() string { return m.MetricDisplayName }

// Description returns detailed documentation.
func (m MetricMeta) Description() string { return m.MetricDescription }

// Type returns the metric category.
func (m MetricMeta) Type() string { return m.MetricType }

// Info is the serializable metadata of a registered metric.
type Info struct {
	Name        string `json:"name"        yaml:"name"`
	DisplayName string `json:"displayName" yaml:"display_name"`
	Description string `json:"description" yaml:"description"`
	Type        string `json:"type"        yaml:"type"`
}

type describer interface {
	Name() string
	DisplayName() string
	Description() string
	Type() string
}

// Registry holds a collection of metrics that can be computed together.
type Registry struct {
	metrics map[string]any // name -> Metric[In, Out].
}

// NewRegistry creates an empty metric registry.
func NewRegistry() *Registry {
	return &Registry{metrics: make(map[string]any)}
}

// Register adds a metric to the registry.
func Register[In, Out any](r *Registry, m Metric[In, Out]) {
	r.metrics[m.Name()] = m
}

// Get retrieves a metric by name.
func (r *Registry) Get(name string) (any, bool) {
	m, ok := r.metrics[name]

	return m, ok
}

// Names returns all registered metric names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.metrics))

	for name := range r.metrics {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Describe returns the metadata of every registered metric, sorted by name.
func (r *Registry) Describe() []Info {
	names := r.Names()
	infos := make([]Info, 0, len(names))

	for _, name := range names {
		d, ok := r.metrics[name].(describer)
		if !ok {
			continue
		}

		infos = append(infos, Info{
			Name:        d.Name(),
			DisplayName: d.DisplayName(),
			Description: d.Description(),
			Type:        d.Type(),
		})
	}

	return infos
}

// Compute looks up a metric by name and runs it when its input and output
// types match. The second result is false when the metric is missing or typed
// differently.
func Compute[In, Out any](r *Registry, name string, input In) (Out, bool) {
	var zero Out

	m, ok := r.metrics[name].(Metric[In, Out])
	if !ok {
		return zero, false
	}

	return m.Compute(input), true
}
