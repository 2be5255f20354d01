package model

import (
	"time"

	"github.com/secmon-lab/phenodash/pkg/domain/types"
)

// SourceVersion identifies the state of a dataset source. Two equal versions
// produce the same Dataset, so it is used as the memo key of the cache.
type SourceVersion struct {
	Path    string
	ModTime time.Time
	Size    int64
}

// Equal reports whether both versions describe the same source state
func (v SourceVersion) Equal(other SourceVersion) bool {
	return v.Path == other.Path && v.Size == other.Size && v.ModTime.Equal(other.ModTime)
}

// Dataset is an immutable snapshot of the weekly records.
// Records are sorted by week ascending and weeks are unique.
type Dataset struct {
	ID       types.DatasetID
	Version  SourceVersion
	LoadedAt time.Time
	Records  []WeeklyRecord
}

// NewDataset creates a snapshot from records already sorted by week
func NewDataset(version SourceVersion, records []WeeklyRecord) *Dataset {
	return &Dataset{
		ID:       types.NewDatasetID(),
		Version:  version,
		LoadedAt: time.Now(),
		Records:  records,
	}
}

// Bounds returns the full span [min(week), max(week)] of the dataset.
// An empty dataset yields an empty range.
func (d *Dataset) Bounds() DateRange {
	if d == nil || len(d.Records) == 0 {
		return EmptyRange()
	}
	return DateRange{
		Start: d.Records[0].Week,
		End:   d.Records[len(d.Records)-1].Week,
	}
}

// Len returns the number of records
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}
