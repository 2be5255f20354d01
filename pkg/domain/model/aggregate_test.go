package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/phenodash/pkg/domain/model"
)

func TestAggregate(t *testing.T) {
	t.Run("single week", func(t *testing.T) {
		rows := model.FilterRange(twoWeeks(), model.NewDateRange(day("2024-01-01"), day("2024-01-01")))
		s := model.Aggregate(rows)
		gt.Equal(t, s.MRSA, int64(5))
		gt.Equal(t, s.VRSA, int64(1))
		gt.Equal(t, s.Wild, int64(10))
		gt.Equal(t, s.Total, int64(16))
		gt.Equal(t, s.Rows, 1)
	})

	t.Run("full range", func(t *testing.T) {
		s := model.Aggregate(twoWeeks())
		gt.Equal(t, s.MRSA, int64(8))
		gt.Equal(t, s.VRSA, int64(1))
		gt.Equal(t, s.Wild, int64(18))
		gt.Equal(t, s.Others, int64(1))
		gt.Equal(t, s.Total, int64(28))
	})

	t.Run("empty input is all zero", func(t *testing.T) {
		gt.Equal(t, model.Aggregate(nil), model.Summary{})
	})

	t.Run("total is not reconciled with categories", func(t *testing.T) {
		rows := []model.WeeklyRecord{{Week: day("2024-01-01"), MRSA: 1, Total: 100}}
		s := model.Aggregate(rows)
		gt.Equal(t, s.Total, int64(100))
		gt.Equal(t, s.MRSA, int64(1))
	})
}

func TestAggregateIsAdditive(t *testing.T) {
	records := weeks(30)
	start := day("2024-01-01")
	end := day("2024-07-15")

	for _, split := range []string{"2024-01-01", "2024-02-01", "2024-03-11", "2024-05-20", "2024-07-15"} {
		t.Run(split, func(t *testing.T) {
			e := day(split)
			left := model.Aggregate(model.FilterRange(records, model.NewDateRange(start, e)))
			right := model.Aggregate(model.FilterRange(records, model.NewDateRange(e.AddDate(0, 0, 1), end)))
			whole := model.Aggregate(model.FilterRange(records, model.NewDateRange(start, end)))
			gt.Equal(t, left.Add(right), whole)
		})
	}
}
