package repository

import (
	"time"

	"github.com/secmon-lab/phenodash/pkg/domain/model"
)

const sampleWeeks = 52

// sampleStart is a Monday
var sampleStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// SampleRecords returns one year of generated weekly counts for demos.
// The values are deterministic so screenshots and tests stay stable.
func SampleRecords() []model.WeeklyRecord {
	records := make([]model.WeeklyRecord, 0, sampleWeeks)
	for i := range sampleWeeks {
		// a slow winter peak plus a short 3 week wobble
		season := int64((i*7)%sampleWeeks - sampleWeeks/2)
		if season < 0 {
			season = -season
		}
		wobble := int64(i % 3)

		rec := model.WeeklyRecord{
			Week:   sampleStart.AddDate(0, 0, 7*i),
			MRSA:   4 + season/4 + wobble,
			VRSA:   int64(i % 2),
			Wild:   20 + season/2 - wobble,
			Others: 1 + wobble,
		}
		rec.Total = rec.MRSA + rec.VRSA + rec.Wild + rec.Others
		records = append(records, rec)
	}
	return records
}
