package grid

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// ErrDegenerateCoordinates is returned when the grid spacing cannot be
// derived from the input coordinates.
var ErrDegenerateCoordinates = errors.New("degenerate coordinates")

// Grid is a regular latitude/longitude grid given by its two axes.
type Grid struct {
	Lat []float64
	Lon []float64
}

// NLat returns the number of rows.
func (g *Grid) NLat() int { return len(g.Lat) }

// NLon returns the number of columns.
func (g *Grid) NLon() int { return len(g.Lon) }

// Centers returns the cell-center latitudes and longitudes as two
// [nlat, nlon] arrays.
func (g *Grid) Centers() (lat2d, lon2d *sparse.DenseArray) {
	lat2d = sparse.ZerosDense(len(g.Lat), len(g.Lon))
	lon2d = sparse.ZerosDense(len(g.Lat), len(g.Lon))
	for j, la := range g.Lat {
		for i, lo := range g.Lon {
			lat2d.Elements[j*len(g.Lon)+i] = la
			lon2d.Elements[j*len(g.Lon)+i] = lo
		}
	}
	return lat2d, lon2d
}

// Synthesize derives a regular grid covering region whose resolution is the
// smallest spacing found in the input coordinates and whose cell centers
// share the sub-degree phase of the smallest input latitude and longitude.
func Synthesize(lats, lons []float64, r Region) (*Grid, error) {
	if len(lats) == 0 || len(lons) == 0 {
		return nil, fmt.Errorf("synthesize grid: %w: no land points", ErrDegenerateCoordinates)
	}
	if err := r.validate("region"); err != nil {
		return nil, err
	}
	dlon, err := minSpacing(lons)
	if err != nil {
		return nil, fmt.Errorf("synthesize grid: longitude: %w", err)
	}
	dlat := dlon
	if !allEqual(lats) {
		if dlat, err = minSpacing(lats); err != nil {
			return nil, fmt.Errorf("synthesize grid: latitude: %w", err)
		}
	}

	nlat := max(int(math.RoundToEven(r.LatSpan/dlat)), 1)
	nlon := max(int(math.RoundToEven(r.LonSpan/dlon)), 1)
	clat := phase(floats.Min(lats))
	clon := phase(floats.Min(lons))

	return &Grid{
		Lat: axis(nlat, r.LatMin+clat, r.LatSpan-dlat),
		Lon: axis(nlon, r.LonMin+clon, r.LonSpan-dlon),
	}, nil
}

// minSpacing returns the smallest gap between distinct sorted values.
func minSpacing(vals []float64) (float64, error) {
	s := append([]float64(nil), vals...)
	sort.Float64s(s)
	d := math.Inf(1)
	for i := 1; i < len(s); i++ {
		if gap := s[i] - s[i-1]; gap > 0 && gap < d {
			d = gap
		}
	}
	if math.IsInf(d, 1) {
		return 0, fmt.Errorf("%w: fewer than two distinct values", ErrDegenerateCoordinates)
	}
	return d, nil
}

func allEqual(vals []float64) bool {
	for _, v := range vals[1:] {
		if v != vals[0] {
			return false
		}
	}
	return true
}

// phase is x modulo 1, always in [0, 1).
func phase(x float64) float64 {
	m := math.Mod(x, 1)
	if m < 0 {
		m++
	}
	return m
}

func axis(n int, start, extent float64) []float64 {
	if n == 1 {
		return []float64{start}
	}
	return floats.Span(make([]float64, n), start, start+extent)
}
