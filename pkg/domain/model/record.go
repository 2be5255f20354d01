package model

import (
	"time"

	"github.com/secmon-lab/phenodash/pkg/domain/types"
)

// DateLayout is the calendar date format used on the wire and in exports
const DateLayout = "2006-01-02"

// WeeklyRecord holds the phenotype counts of one calendar week
type WeeklyRecord struct {
	Week   time.Time `json:"week"`
	MRSA   int64     `json:"mrsa"`
	VRSA   int64     `json:"vrsa"`
	Wild   int64     `json:"wild"`
	Others int64     `json:"others"`
	Total  int64     `json:"total"`
}

// Count returns the count of the given phenotype category
func (r WeeklyRecord) Count(p types.Phenotype) int64 {
	switch p {
	case types.PhenotypeMRSA:
		return r.MRSA
	case types.PhenotypeVRSA:
		return r.VRSA
	case types.PhenotypeWild:
		return r.Wild
	case types.PhenotypeOthers:
		return r.Others
	default:
		return 0
	}
}

// WeekLabel returns the week formatted as YYYY-MM-DD
func (r WeeklyRecord) WeekLabel() string {
	return r.Week.Format(DateLayout)
}

// Date truncates t to its calendar date at UTC midnight, keeping the
// year, month and day as seen in t's own location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Date(t), nil
}
