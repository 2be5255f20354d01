package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/phenodash/pkg/domain/interfaces"
	"github.com/secmon-lab/phenodash/pkg/domain/model"
	"github.com/secmon-lab/phenodash/pkg/domain/types"
	"github.com/secmon-lab/phenodash/pkg/service/metrics"
)

// Dashboard renders views of the current dataset
type Dashboard struct {
	provider interfaces.DatasetProvider
	config   *model.DashboardConfig
	metrics  *metrics.Metrics
}

// NewDashboard creates a new Dashboard use case. A nil config means the
// built-in presentation settings.
func NewDashboard(provider interfaces.DatasetProvider, config *model.DashboardConfig, m *metrics.Metrics) *Dashboard {
	if config == nil {
		config = model.DefaultDashboardConfig()
	}
	return &Dashboard{
		provider: provider,
		config:   config,
		metrics:  m,
	}
}

// Config returns the presentation settings
func (uc *Dashboard) Config() *model.DashboardConfig {
	return uc.config
}

// Render filters the current snapshot by the query, aggregates the filtered
// rows and projects them for charts and tables. The only failure is a
// DataLoadError from the dataset provider.
func (uc *Dashboard) Render(ctx context.Context, query model.Query) (*model.View, error) {
	start := time.Now()

	ds, err := uc.provider.Get(ctx)
	if err != nil {
		uc.metrics.ObserveRender(time.Since(start).Seconds(), err)
		return nil, goerr.Wrap(err, "failed to get dataset", goerr.T(model.ErrTagDataLoad))
	}

	if query.Phenotypes == nil && uc.config.DefaultPhenotypes != nil {
		query.Phenotypes = uc.config.DefaultPhenotypes
	}

	view := BuildView(ds, query, uc.config)
	uc.metrics.ObserveRender(time.Since(start).Seconds(), nil)

	ctxlog.From(ctx).Debug("Dashboard rendered",
		"dataset_id", ds.ID,
		"start", view.Range.Start.Format(model.DateLayout),
		"end", view.Range.End.Format(model.DateLayout),
		"phenotypes", view.Selected,
		"rows", len(view.Rows),
	)
	return view, nil
}

// BuildView is the pure projection of a snapshot and a query into a View
func BuildView(ds *model.Dataset, query model.Query, config *model.DashboardConfig) *model.View {
	resolved := query.Resolve(ds)
	rows := model.FilterRange(ds.Records, resolved.Range)
	summary := model.Aggregate(rows)

	return &model.View{
		Title:     config.Title,
		Subtitle:  config.Subtitle,
		Caption:   config.Caption,
		DatasetID: ds.ID,
		Bounds:    ds.Bounds(),
		Range:     resolved.Range,
		Options:   types.AllPhenotypes(),
		Selected:  resolved.Phenotypes,
		Metrics:   model.BuildMetrics(summary, resolved.Phenotypes, config.MetricMode),
		Summary:   summary,
		Series:    model.BuildSeries(rows, resolved.Phenotypes, config.Colors),
		Rows:      rows,
	}
}

var _ interfaces.Dashboard = (*Dashboard)(nil)
