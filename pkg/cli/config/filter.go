package config

import (
	"log/slog"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/phenodash/pkg/domain/model"
	"github.com/secmon-lab/phenodash/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Filter holds the date range and phenotype selection of a command
type Filter struct {
	Start      string
	End        string
	Phenotypes []string
}

// Flags returns CLI flags for Filter configuration
func (f *Filter) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "start",
			Usage:       "First week to include (YYYY-MM-DD, default: first week of the data)",
			Category:    "Filter",
			Destination: &f.Start,
		},
		&cli.StringFlag{
			Name:        "end",
			Usage:       "Last week to include (YYYY-MM-DD, default: last week of the data)",
			Category:    "Filter",
			Destination: &f.End,
		},
		&cli.StringSliceFlag{
			Name:        "phenotype",
			Aliases:     []string{"p"},
			Usage:       "Phenotype to include (MRSA, VRSA, Wild, others); repeatable",
			Category:    "Filter",
			Destination: &f.Phenotypes,
		},
	}
}

// Query converts the flags to a dashboard query
func (f *Filter) Query() (model.Query, error) {
	var query model.Query

	if s := strings.TrimSpace(f.Start); s != "" {
		start, err := model.ParseDate(s)
		if err != nil {
			return model.Query{}, goerr.Wrap(err, "invalid start date", goerr.V("start", f.Start))
		}
		query.Start = &start
	}
	if s := strings.TrimSpace(f.End); s != "" {
		end, err := model.ParseDate(s)
		if err != nil {
			return model.Query{}, goerr.Wrap(err, "invalid end date", goerr.V("end", f.End))
		}
		query.End = &end
	}

	for _, name := range f.Phenotypes {
		for _, part := range strings.Split(name, ",") {
			if part = strings.TrimSpace(part); part == "" {
				continue
			}
			p, err := types.ParsePhenotype(part)
			if err != nil {
				return model.Query{}, goerr.Wrap(err, "invalid phenotype")
			}
			query.Phenotypes = append(query.Phenotypes, p)
		}
	}

	return query, nil
}

// LogValue returns structured log value
func (f Filter) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("start", f.Start),
		slog.String("end", f.End),
		slog.Any("phenotypes", f.Phenotypes),
	)
}
