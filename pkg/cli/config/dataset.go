package config

import (
	"log/slog"

	"github.com/secmon-lab/phenodash/pkg/domain/interfaces"
	"github.com/secmon-lab/phenodash/pkg/repository"
	"github.com/urfave/cli/v3"
)

// DefaultDataPath is the CSV file read when no path is given
const DefaultDataPath = "weekly_staph_phenotypes.csv"

// Dataset holds the dataset source configuration
type Dataset struct {
	Path string
	Demo bool
}

// Flags returns CLI flags for Dataset configuration
func (d *Dataset) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "data",
			Aliases:     []string{"d"},
			Usage:       "Weekly phenotype CSV file",
			Category:    "Dataset",
			Value:       DefaultDataPath,
			Sources:     cli.EnvVars("PHENODASH_DATA"),
			Destination: &d.Path,
		},
		&cli.BoolFlag{
			Name:        "demo",
			Usage:       "Serve generated sample data instead of a CSV file",
			Category:    "Dataset",
			Sources:     cli.EnvVars("PHENODASH_DEMO"),
			Destination: &d.Demo,
		},
	}
}

// IsFile reports whether the source is a file on disk
func (d *Dataset) IsFile() bool {
	return !d.Demo
}

// Configure creates the dataset source
func (d *Dataset) Configure() interfaces.DatasetSource {
	if d.Demo {
		return repository.NewMemory(repository.SampleRecords()...)
	}
	return repository.NewCSV(d.Path)
}

// LogValue returns structured log value
func (d Dataset) LogValue() slog.Value {
	if d.Demo {
		return slog.GroupValue(slog.Bool("demo", true))
	}
	return slog.GroupValue(slog.String("path", d.Path))
}
