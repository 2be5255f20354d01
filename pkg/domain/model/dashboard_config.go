package model

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/phenodash/pkg/domain/types"
)

// DashboardConfig holds presentation settings of the dashboard
type DashboardConfig struct {
	Title             string                     `yaml:"title"`
	Subtitle          string                     `yaml:"subtitle,omitempty"`
	Caption           string                     `yaml:"caption,omitempty"`
	MetricMode        MetricMode                 `yaml:"metric_mode,omitempty"`
	DefaultPhenotypes []types.Phenotype          `yaml:"default_phenotypes,omitempty"`
	Colors            map[types.Phenotype]string `yaml:"colors,omitempty"`
}

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// DefaultDashboardConfig returns the built-in presentation settings
func DefaultDashboardConfig() *DashboardConfig {
	return &DashboardConfig{
		Title:             "Weekly MRSA/VRSA Dashboard",
		Subtitle:          "Weekly evolution of Staphylococcus aureus phenotypes",
		MetricMode:        MetricModeFixed,
		DefaultPhenotypes: types.DefaultPhenotypes(),
		Colors:            DefaultColors(),
	}
}

// DefaultColors returns the built-in series colors
func DefaultColors() map[types.Phenotype]string {
	return map[types.Phenotype]string{
		types.PhenotypeMRSA:   "#636efa",
		types.PhenotypeVRSA:   "#ef553b",
		types.PhenotypeWild:   "#00cc96",
		types.PhenotypeOthers: "#ab63fa",
	}
}

// ApplyDefaults fills fields left empty in a loaded configuration
func (c *DashboardConfig) ApplyDefaults() {
	defaults := DefaultDashboardConfig()
	if c.Title == "" {
		c.Title = defaults.Title
	}
	if c.MetricMode == "" {
		c.MetricMode = defaults.MetricMode
	}
	if c.DefaultPhenotypes == nil {
		c.DefaultPhenotypes = defaults.DefaultPhenotypes
	}
	if c.Colors == nil {
		c.Colors = make(map[types.Phenotype]string)
	}
	for p, color := range defaults.Colors {
		if _, ok := c.Colors[p]; !ok {
			c.Colors[p] = color
		}
	}
}

// Validate validates the dashboard configuration
func (c *DashboardConfig) Validate() error {
	if c.Title == "" {
		return goerr.New("dashboard title is required")
	}
	if !c.MetricMode.IsValid() {
		return goerr.New("invalid metric mode", goerr.V("metric_mode", c.MetricMode))
	}

	seen := make(map[types.Phenotype]bool)
	for i, p := range c.DefaultPhenotypes {
		if !p.IsValid() {
			return goerr.New("invalid default phenotype",
				goerr.V("index", i),
				goerr.V("phenotype", p))
		}
		if seen[p] {
			return goerr.New("duplicate default phenotype", goerr.V("phenotype", p))
		}
		seen[p] = true
	}

	for p, color := range c.Colors {
		if !p.IsValid() {
			return goerr.New("color given for unknown phenotype", goerr.V("phenotype", p))
		}
		if !colorPattern.MatchString(color) {
			return goerr.New("color must be #rrggbb",
				goerr.V("phenotype", p),
				goerr.V("color", color))
		}
	}

	return nil
}
