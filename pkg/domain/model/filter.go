package model

import (
	"time"

	"github.com/secmon-lab/phenodash/pkg/domain/types"
)

// DateRange is a closed calendar date interval [Start, End]
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange creates a range with both bounds truncated to calendar dates
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: Date(start), End: Date(end)}
}

// EmptyRange returns a range that contains no date
func EmptyRange() DateRange {
	return DateRange{Start: time.Unix(1, 0).UTC(), End: time.Unix(0, 0).UTC()}
}

// IsEmpty reports whether Start is after End
func (r DateRange) IsEmpty() bool {
	return r.Start.After(r.End)
}

// Contains reports whether Start <= t <= End
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// FilterRange returns the records whose week lies in r, preserving order.
// A range with Start after End yields an empty result.
func FilterRange(records []WeeklyRecord, r DateRange) []WeeklyRecord {
	result := make([]WeeklyRecord, 0, len(records))
	if r.IsEmpty() {
		return result
	}
	for _, rec := range records {
		if r.Contains(rec.Week) {
			result = append(result, rec)
		}
	}
	return result
}

// Query holds the two user selections. A nil field means "not given".
type Query struct {
	Start      *time.Time
	End        *time.Time
	Phenotypes []types.Phenotype
}

// RangeQuery returns a query selecting r with default phenotypes
func RangeQuery(r DateRange) Query {
	return Query{Start: &r.Start, End: &r.End}
}

// ResolvedQuery is a Query with the defaults applied
type ResolvedQuery struct {
	Range      DateRange
	Phenotypes []types.Phenotype
}

// Resolve applies the dataset defaults: a missing bound is taken from the
// full span and a missing selection becomes the default phenotypes. An
// explicitly empty selection stays empty.
func (q Query) Resolve(dataset *Dataset) ResolvedQuery {
	resolved := ResolvedQuery{
		Range:      dataset.Bounds(),
		Phenotypes: types.DefaultPhenotypes(),
	}
	if q.Start != nil {
		resolved.Range.Start = Date(*q.Start)
	}
	if q.End != nil {
		resolved.Range.End = Date(*q.End)
	}
	if q.Phenotypes != nil {
		resolved.Phenotypes = types.NormalizePhenotypes(q.Phenotypes)
	}
	return resolved
}
