package model

import (
	"time"

	"github.com/secmon-lab/phenodash/pkg/domain/types"
)

// MetricMode selects which metric cards the dashboard shows
type MetricMode string

const (
	// MetricModeFixed always shows Total, MRSA, VRSA and Wild
	MetricModeFixed MetricMode = "fixed"
	// MetricModeSelected shows Total plus one card per selected phenotype
	MetricModeSelected MetricMode = "selected"
)

// IsValid checks if the metric mode is known
func (m MetricMode) IsValid() bool {
	return m == MetricModeFixed || m == MetricModeSelected
}

// TotalMetricLabel is the label of the total isolates card
const TotalMetricLabel = "Total isolates"

// Metric is one labelled scalar card
type Metric struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// Point is one week of a chart series
type Point struct {
	Week  time.Time `json:"week"`
	Count int64     `json:"count"`
}

// Series is the time series of one phenotype over the filtered weeks
type Series struct {
	Phenotype types.Phenotype `json:"phenotype"`
	Color     string          `json:"color"`
	Points    []Point         `json:"points"`
}

// View is everything the presentation layer needs for one render
type View struct {
	Title     string            `json:"title"`
	Subtitle  string            `json:"subtitle,omitempty"`
	Caption   string            `json:"caption,omitempty"`
	DatasetID types.DatasetID   `json:"dataset_id"`
	Bounds    DateRange         `json:"bounds"`
	Range     DateRange         `json:"range"`
	Options   []types.Phenotype `json:"options"`
	Selected  []types.Phenotype `json:"selected"`
	Metrics   []Metric          `json:"metrics"`
	Summary   Summary           `json:"summary"`
	Series    []Series          `json:"series"`
	Rows      []WeeklyRecord    `json:"rows"`
}

// BuildMetrics returns the metric cards for a summary
func BuildMetrics(s Summary, selected []types.Phenotype, mode MetricMode) []Metric {
	metrics := []Metric{{Label: TotalMetricLabel, Value: s.Total}}

	cards := []types.Phenotype{types.PhenotypeMRSA, types.PhenotypeVRSA, types.PhenotypeWild}
	if mode == MetricModeSelected {
		cards = selected
	}

	for _, p := range cards {
		metrics = append(metrics, Metric{Label: p.String(), Value: s.Count(p)})
	}
	return metrics
}

// Count returns the summed count of a phenotype
func (s Summary) Count(p types.Phenotype) int64 {
	switch p {
	case types.PhenotypeMRSA:
		return s.MRSA
	case types.PhenotypeVRSA:
		return s.VRSA
	case types.PhenotypeWild:
		return s.Wild
	case types.PhenotypeOthers:
		return s.Others
	default:
		return 0
	}
}

// BuildSeries projects rows onto week plus one series per selected phenotype
func BuildSeries(rows []WeeklyRecord, selected []types.Phenotype, colors map[types.Phenotype]string) []Series {
	series := make([]Series, 0, len(selected))
	for _, p := range selected {
		points := make([]Point, 0, len(rows))
		for _, r := range rows {
			points = append(points, Point{Week: r.Week, Count: r.Count(p)})
		}
		series = append(series, Series{
			Phenotype: p,
			Color:     colors[p],
			Points:    points,
		})
	}
	return series
}
