package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/phenodash/pkg/domain/model"
	"github.com/secmon-lab/phenodash/pkg/domain/types"
	"github.com/secmon-lab/phenodash/pkg/repository"
	"github.com/secmon-lab/phenodash/pkg/service/dataset"
	"github.com/secmon-lab/phenodash/pkg/service/metrics"
	"github.com/secmon-lab/phenodash/pkg/usecase"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	gt.NoError(t, err).Required()
	return d
}

func newDashboard(t *testing.T, cfg *model.DashboardConfig) *usecase.Dashboard {
	t.Helper()
	src := repository.NewMemory(
		model.WeeklyRecord{Week: day(t, "2024-01-01"), MRSA: 5, VRSA: 1, Wild: 10, Others: 0, Total: 16},
		model.WeeklyRecord{Week: day(t, "2024-01-08"), MRSA: 3, VRSA: 0, Wild: 8, Others: 1, Total: 12},
	)
	return usecase.NewDashboard(dataset.NewCache(src), cfg, metrics.New())
}

func TestDashboardRender(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to full range and default phenotypes", func(t *testing.T) {
		view, err := newDashboard(t, nil).Render(ctx, model.Query{})
		gt.NoError(t, err).Required()

		gt.Equal(t, len(view.Rows), 2)
		gt.Equal(t, view.Range, view.Bounds)
		gt.Equal(t, view.Selected, types.DefaultPhenotypes())
		gt.Equal(t, len(view.Series), 3)
		gt.Equal(t, view.Summary.Total, int64(28))
		gt.Equal(t, view.Metrics[0], model.Metric{Label: model.TotalMetricLabel, Value: 28})
		gt.Equal(t, view.Title, model.DefaultDashboardConfig().Title)
		gt.NotEqual(t, view.DatasetID.String(), "")
	})

	t.Run("single week range", func(t *testing.T) {
		r := model.NewDateRange(day(t, "2024-01-01"), day(t, "2024-01-01"))
		view, err := newDashboard(t, nil).Render(ctx, model.RangeQuery(r))
		gt.NoError(t, err).Required()

		gt.Equal(t, len(view.Rows), 1)
		gt.Equal(t, view.Metrics, []model.Metric{
			{Label: model.TotalMetricLabel, Value: 16},
			{Label: "MRSA", Value: 5},
			{Label: "VRSA", Value: 1},
			{Label: "Wild", Value: 10},
		})
		gt.Equal(t, len(view.Series[0].Points), 1)
	})

	t.Run("inverted range renders an empty view", func(t *testing.T) {
		r := model.NewDateRange(day(t, "2024-01-08"), day(t, "2024-01-01"))
		view, err := newDashboard(t, nil).Render(ctx, model.RangeQuery(r))
		gt.NoError(t, err).Required()

		gt.Equal(t, len(view.Rows), 0)
		gt.Equal(t, view.Summary, model.Summary{})
		for _, m := range view.Metrics {
			gt.Equal(t, m.Value, int64(0))
		}
	})

	t.Run("category selection does not filter rows", func(t *testing.T) {
		view, err := newDashboard(t, nil).Render(ctx, model.Query{
			Phenotypes: []types.Phenotype{types.PhenotypeOthers},
		})
		gt.NoError(t, err).Required()

		gt.Equal(t, len(view.Rows), 2)
		gt.Equal(t, len(view.Series), 1)
		gt.Equal(t, view.Series[0].Phenotype, types.PhenotypeOthers)
		// fixed metric cards ignore the selection
		gt.Equal(t, view.Metrics[1].Label, "MRSA")
	})

	t.Run("selected metric mode follows the selection", func(t *testing.T) {
		cfg := model.DefaultDashboardConfig()
		cfg.MetricMode = model.MetricModeSelected
		view, err := newDashboard(t, cfg).Render(ctx, model.Query{
			Phenotypes: []types.Phenotype{types.PhenotypeOthers},
		})
		gt.NoError(t, err).Required()

		gt.Equal(t, view.Metrics, []model.Metric{
			{Label: model.TotalMetricLabel, Value: 28},
			{Label: "others", Value: 1},
		})
	})

	t.Run("configured default phenotypes apply when none selected", func(t *testing.T) {
		cfg := model.DefaultDashboardConfig()
		cfg.DefaultPhenotypes = []types.Phenotype{types.PhenotypeWild}
		view, err := newDashboard(t, cfg).Render(ctx, model.Query{})
		gt.NoError(t, err).Required()
		gt.Equal(t, view.Selected, []types.Phenotype{types.PhenotypeWild})
	})

	t.Run("load failure is a data load error", func(t *testing.T) {
		uc := usecase.NewDashboard(dataset.NewCache(repository.NewMemory()), nil, nil)
		view, err := uc.Render(ctx, model.Query{})
		gt.Error(t, err)
		gt.True(t, model.IsDataLoadError(err))
		gt.Nil(t, view)
	})
}
