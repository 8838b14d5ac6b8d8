// Package config holds the settings of one conversion run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rtm0/patchgrid/internal/grid"
	"github.com/rtm0/patchgrid/internal/patch"
)

// ErrNoInput is returned when no input file was given.
var ErrNoInput = errors.New("input file must be given")

// Output file name suffixes appended to the input stem.
const (
	SumSuffix  = "-no_patch"
	GridSuffix = "-2d"
)

// Config is the configuration of a single conversion run.
type Config struct {
	Input    string `yaml:"-"`
	Output   string `yaml:"output"`
	Verbose  bool   `yaml:"verbose"`
	Compress bool   `yaml:"compress"`

	// Region names the extent of a synthesized grid.
	Region string `yaml:"region"`
	// Workers bounds the goroutines used for nearest-cell queries.
	Workers int `yaml:"workers"`

	Naming  Naming                 `yaml:"naming"`
	Regions map[string]grid.Region `yaml:"regions"`
}

// Naming lists the dimension and variable names the converters look for.
type Naming struct {
	LandDims  []string `yaml:"land_dims"`
	Fraction  string   `yaml:"fraction"`
	Latitude  []string `yaml:"latitude"`
	Longitude []string `yaml:"longitude"`
	LocalLat  string   `yaml:"local_lat"`
	LocalLon  string   `yaml:"local_lon"`
	Area      []string `yaml:"area"`
	GridX     string   `yaml:"grid_x"`
	GridY     string   `yaml:"grid_y"`
}

// Default returns the settings for CABLE and CASA output.
func Default() Config {
	return Config{
		Region: "australia",
		Naming: Naming{
			LandDims:  []string{"land", "ntile"},
			Fraction:  "patchfrac",
			Latitude:  []string{"latitude"},
			Longitude: []string{"longitude"},
			LocalLat:  "local_lat",
			LocalLon:  "local_lon",
			Area:      []string{"area_gridcell"},
			GridX:     "x",
			GridY:     "y",
		},
	}
}

// Load reads a YAML file over the defaults. Keys absent from the file keep
// their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the settings both conversions need before any dataset is
// opened. The region is only resolved by RegionExtent.
func (c *Config) Validate() error {
	if c.Input == "" {
		return ErrNoInput
	}
	if len(c.Naming.LandDims) == 0 {
		return errors.New("naming: at least one land dimension is required")
	}
	if c.Naming.Fraction == "" {
		return errors.New("naming: fraction variable name is empty")
	}
	if len(c.Naming.Latitude) == 0 || len(c.Naming.Longitude) == 0 {
		return errors.New("naming: latitude and longitude names are required")
	}
	return nil
}

// RegionExtent resolves the configured region.
func (c *Config) RegionExtent() (grid.Region, error) {
	return grid.LookupRegion(c.Region, c.Regions)
}

// Roles returns the role name lists for patch.ResolveRoles.
func (n Naming) Roles() patch.Names {
	return patch.Names{Latitude: n.Latitude, Longitude: n.Longitude, Area: n.Area}
}

// IsLandDim reports whether dim is a land/tile dimension.
func (n Naming) IsLandDim(dim string) bool {
	for _, d := range n.LandDims {
		if d == dim {
			return true
		}
	}
	return false
}

// OutputPath returns Output if set, else the input path with suffix
// inserted before its extension.
func (c *Config) OutputPath(suffix string) string {
	if c.Output != "" {
		return c.Output
	}
	return OutputPath(c.Input, suffix)
}

// OutputPath inserts suffix between the stem and the extension of input.
func OutputPath(input, suffix string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + suffix + ext
}
