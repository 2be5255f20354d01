package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/phenodash/pkg/cli/config"
	"github.com/secmon-lab/phenodash/pkg/domain/model"
	"github.com/secmon-lab/phenodash/pkg/service/dataset"
	"github.com/secmon-lab/phenodash/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdSummary() *cli.Command {
	var (
		datasetCfg   config.Dataset
		dashboardCfg config.Dashboard
		filterCfg    config.Filter
		asJSON       bool
	)

	flags := joinFlags(
		datasetCfg.Flags(),
		dashboardCfg.Flags(),
		filterCfg.Flags(),
		[]cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "Print the full view as JSON",
				Destination: &asJSON,
			},
		},
	)

	return &cli.Command{
		Name:  "summary",
		Usage: "Print the metric cards for a period",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			view, err := renderView(ctx, &datasetCfg, &dashboardCfg, &filterCfg)
			if err != nil {
				return err
			}

			w := c.Root().Writer
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if err := enc.Encode(view); err != nil {
					return goerr.Wrap(err, "failed to encode view")
				}
				return nil
			}
			return printSummary(w, view)
		},
	}
}

// renderView loads the dataset once and renders a view for the filter flags
func renderView(ctx context.Context, datasetCfg *config.Dataset, dashboardCfg *config.Dashboard, filterCfg *config.Filter) (*model.View, error) {
	query, err := filterCfg.Query()
	if err != nil {
		return nil, err
	}

	dashCfg, err := dashboardCfg.Configure()
	if err != nil {
		return nil, err
	}

	uc := usecase.NewDashboard(dataset.NewCache(datasetCfg.Configure()), dashCfg, nil)
	return uc.Render(ctx, query)
}

func printSummary(w io.Writer, view *model.View) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if view.Range.IsEmpty() {
		fmt.Fprintf(tw, "Period\t(empty)\n")
	} else {
		fmt.Fprintf(tw, "Period\t%s to %s\n",
			view.Range.Start.Format(model.DateLayout),
			view.Range.End.Format(model.DateLayout))
	}
	fmt.Fprintf(tw, "Weeks\t%d\n", view.Summary.Rows)
	for _, m := range view.Metrics {
		fmt.Fprintf(tw, "%s\t%d\n", m.Label, m.Value)
	}

	if err := tw.Flush(); err != nil {
		return goerr.Wrap(err, "failed to write summary")
	}
	return nil
}
