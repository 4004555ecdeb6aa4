package commits

import (
	"github.com/Sumatoshi-tech/locstats/pkg/linelog"
	"github.com/Sumatoshi-tech/locstats/pkg/metrics"
)

// Metric names.
const (
	MetricSummary   = "summary"
	MetricLanguages = "languages"
	MetricFileTypes = "file_types"
	MetricGrowth    = "growth"
)

// Input is the data every commit metric is computed from.
type Input struct {
	Records []linelog.LineRecord
	Commits []Commit
	Files   []File
}

// NewInput aggregates records into a metric input.
func NewInput(agg Aggregator, records []linelog.LineRecord) Input {
	return Input{
		Records: records,
		Commits: agg.Commits(records),
		Files:   agg.Files(records),
	}
}

// SummaryMetric computes the headline statistics.
type SummaryMetric struct {
	metrics.MetricMeta
}

// NewSummaryMetric creates the summary metric.
func NewSummaryMetric() *SummaryMetric {
	return &SummaryMetric{
		MetricMeta: metrics.MetricMeta{
			MetricName:        MetricSummary,
			MetricDisplayName: "Summary",
			MetricDescription: "Total lines of code, commits, files, average and longest file, " +
				"longest line, deepest nesting and distinct authors.",
			MetricType: metrics.TypeAggregate,
		},
	}
}

// Compute implements metrics.Metric.
func (m *SummaryMetric) Compute(in Input) Summary {
	return ComputeSummary(in.Records, in.Commits)
}

// LanguageBreakdownMetric computes the per-type share of lines.
type LanguageBreakdownMetric struct {
	metrics.MetricMeta
}

// NewLanguageBreakdownMetric creates the language breakdown metric.
func NewLanguageBreakdownMetric() *LanguageBreakdownMetric {
	return &LanguageBreakdownMetric{
		MetricMeta: metrics.MetricMeta{
			MetricName:        MetricLanguages,
			MetricDisplayName: "Languages",
			MetricDescription: "Number of lines per language type and its proportion of all lines.",
			MetricType:        metrics.TypeBreakdown,
		},
	}
}

// Compute implements metrics.Metric.
func (m *LanguageBreakdownMetric) Compute(in Input) Breakdown {
	return LanguageBreakdown(in.Records)
}

// FileTypesMetric computes the per-file-per-type rollup.
type FileTypesMetric struct {
	metrics.MetricMeta
}

// NewFileTypesMetric creates the file types metric.
func NewFileTypesMetric() *FileTypesMetric {
	return &FileTypesMetric{
		MetricMeta: metrics.MetricMeta{
			MetricName:        MetricFileTypes,
			MetricDisplayName: "File Types",
			MetricDescription: "Lines per language type within each file, files ordered by size.",
			MetricType:        metrics.TypeBreakdown,
		},
	}
}

// Compute implements metrics.Metric.
func (m *FileTypesMetric) Compute(in Input) []FileTypes {
	return FileTypeBreakdown(in.Files)
}

// GrowthMetric computes cumulative lines of code per commit.
type GrowthMetric struct {
	metrics.MetricMeta
}

// NewGrowthMetric creates the growth metric.
func NewGrowthMetric() *GrowthMetric {
	return &GrowthMetric{
		MetricMeta: metrics.MetricMeta{
			MetricName:        MetricGrowth,
			MetricDisplayName: "Growth",
			MetricDescription: "Running total of annotated lines, one point per commit in chronological order.",
			MetricType:        metrics.TypeTimeSeries,
		},
	}
}

// Compute implements metrics.Metric.
func (m *GrowthMetric) Compute(in Input) []metrics.TimePoint {
	points := make([]metrics.TimePoint, 0, len(in.Commits))
	total := 0

	for _, c := range in.Commits {
		total += c.TotalLines
		points = append(points, metrics.TimePoint{At: c.Datetime, Value: float64(total)})
	}

	return points
}

// NewRegistry returns a registry holding every commit metric.
func NewRegistry() *metrics.Registry {
	r := metrics.NewRegistry()

	metrics.Register[Input, Summary](r, NewSummaryMetric())
	metrics.Register[Input, Breakdown](r, NewLanguageBreakdownMetric())
	metrics.Register[Input, []FileTypes](r, NewFileTypesMetric())
	metrics.Register[Input, []metrics.TimePoint](r, NewGrowthMetric())

	return r
}

// Report is the output of every commit metric.
type Report struct {
	Summary   Summary             `json:"summary"   yaml:"summary"`
	Languages Breakdown           `json:"languages" yaml:"languages"`
	FileTypes []FileTypes         `json:"fileTypes" yaml:"file_types"`
	Growth    []metrics.TimePoint `json:"growth"    yaml:"growth"`
}

// ComputeAll runs every commit metric over the input.
func ComputeAll(in Input) Report {
	return Report{
		Summary:   NewSummaryMetric().Compute(in),
		Languages: NewLanguageBreakdownMetric().Compute(in),
		FileTypes: NewFileTypesMetric().Compute(in),
		Growth:    NewGrowthMetric().Compute(in),
	}
}
