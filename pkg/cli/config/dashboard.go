package config

import (
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/phenodash/pkg/domain/model"
	"github.com/secmon-lab/phenodash/pkg/domain/types"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Dashboard holds the path of the optional presentation settings file
type Dashboard struct {
	Path string
}

// Flags returns CLI flags for Dashboard configuration
func (d *Dashboard) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Dashboard configuration YAML file",
			Sources:     cli.EnvVars("PHENODASH_CONFIG"),
			Destination: &d.Path,
		},
	}
}

// Configure loads the configuration file, or returns the built-in
// settings when no file is given
func (d *Dashboard) Configure() (*model.DashboardConfig, error) {
	if d.Path == "" {
		return model.DefaultDashboardConfig(), nil
	}
	return LoadDashboardFromFile(d.Path)
}

// LogValue returns structured log value
func (d Dashboard) LogValue() slog.Value {
	return slog.GroupValue(slog.String("path", d.Path))
}

// LoadDashboardFromFile loads dashboard settings from YAML file
func LoadDashboardFromFile(path string) (*model.DashboardConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(err, "configuration file not found",
				goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to read configuration file",
			goerr.V("path", path))
	}

	var config model.DashboardConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse YAML configuration",
			goerr.V("path", path))
	}

	if err := canonicalize(&config); err != nil {
		return nil, goerr.Wrap(err, "invalid configuration",
			goerr.V("path", path))
	}
	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid configuration",
			goerr.V("path", path))
	}

	return &config, nil
}

// canonicalize accepts phenotype names in any case
func canonicalize(config *model.DashboardConfig) error {
	for i, p := range config.DefaultPhenotypes {
		parsed, err := types.ParsePhenotype(string(p))
		if err != nil {
			return err
		}
		config.DefaultPhenotypes[i] = parsed
	}

	if config.Colors == nil {
		return nil
	}
	colors := make(map[types.Phenotype]string, len(config.Colors))
	for p, color := range config.Colors {
		parsed, err := types.ParsePhenotype(string(p))
		if err != nil {
			return err
		}
		colors[parsed] = color
	}
	config.Colors = colors
	return nil
}
