package grid

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownRegion is returned when a region preset name cannot be resolved.
var ErrUnknownRegion = errors.New("unknown region")

// Region is the extent of a synthesized grid. Cells start at LatMin/LonMin
// (shifted by the sub-degree phase of the input) and span LatSpan/LonSpan
// degrees.
type Region struct {
	LatMin  float64 `yaml:"lat_min"`
	LonMin  float64 `yaml:"lon_min"`
	LatSpan float64 `yaml:"lat_span"`
	LonSpan float64 `yaml:"lon_span"`
}

var presets = map[string]Region{
	// Antarctica is excluded.
	"global":    {LatMin: -60, LonMin: -180, LatSpan: 150, LonSpan: 360},
	"australia": {LatMin: -44, LonMin: 110, LatSpan: 34, LonSpan: 45},
}

// LookupRegion resolves name, case-insensitively, against custom regions
// first and the built-in presets second.
func LookupRegion(name string, custom map[string]Region) (Region, error) {
	key := strings.ToLower(name)
	for n, r := range custom {
		if strings.ToLower(n) == key {
			return r, r.validate(n)
		}
	}
	if r, ok := presets[key]; ok {
		return r, nil
	}
	return Region{}, fmt.Errorf("%w %q (known: %s)", ErrUnknownRegion, name, strings.Join(RegionNames(custom), ", "))
}

// RegionNames lists the built-in and custom region names in sorted order.
func RegionNames(custom map[string]Region) []string {
	names := make([]string, 0, len(presets)+len(custom))
	for n := range presets {
		names = append(names, n)
	}
	for n := range custom {
		if _, ok := presets[strings.ToLower(n)]; !ok {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

func (r Region) validate(name string) error {
	if r.LatSpan <= 0 || r.LonSpan <= 0 {
		return fmt.Errorf("region %q: spans must be positive, got lat %g lon %g", name, r.LatSpan, r.LonSpan)
	}
	return nil
}
