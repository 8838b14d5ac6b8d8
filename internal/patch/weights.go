package patch

import (
	"fmt"
	"math"

	"github.com/ctessum/sparse"
)

// Fraction holds per-patch area fractions, either static [land] or
// time-varying [time, land]. Missing entries are NaN.
type Fraction struct {
	timeDim string
	rows    [][]float64
}

// NewFraction wraps a fraction field with dimension names dims. Entries
// equal to fill become NaN.
func NewFraction(data *sparse.DenseArray, dims []string, fill float64) (*Fraction, error) {
	if len(data.Shape) != len(dims) {
		return nil, fmt.Errorf("patch fraction: %d dims for shape %v", len(dims), data.Shape)
	}
	f := &Fraction{}
	switch len(data.Shape) {
	case 1:
		f.rows = [][]float64{masked(data.Elements, fill)}
	case 2:
		f.timeDim = dims[0]
		nland := data.Shape[1]
		for t := 0; t < data.Shape[0]; t++ {
			f.rows = append(f.rows, masked(data.Elements[t*nland:(t+1)*nland], fill))
		}
	default:
		return nil, fmt.Errorf("patch fraction: rank %d not supported, want [land] or [time, land]", len(data.Shape))
	}
	if len(f.rows) == 0 {
		return nil, fmt.Errorf("patch fraction: empty time axis")
	}
	return f, nil
}

// NLand returns the length of the land axis.
func (f *Fraction) NLand() int { return len(f.rows[0]) }

func masked(vals []float64, fill float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		if v == fill {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

// Weights is a fraction broadcast against one variable: the variable viewed
// as [outer, land] gets weight row Row(outer).
type Weights struct {
	rows  [][]float64
	inner int
	timed bool
}

// Broadcast aligns f with a variable of the given dims and shape, land axis
// last. When the variable's first axis is the fraction's time axis the
// fraction follows it; all other leading axes, and variables without the
// time axis, see the first fraction row.
func (f *Fraction) Broadcast(dims []string, shape []int) (Weights, error) {
	r := len(shape)
	if r == 0 || len(dims) != r {
		return Weights{}, fmt.Errorf("patch fraction: cannot broadcast to dims %v shape %v", dims, shape)
	}
	if shape[r-1] != f.NLand() {
		return Weights{}, fmt.Errorf("patch fraction: land length %d, variable has %d", f.NLand(), shape[r-1])
	}
	w := Weights{rows: f.rows, inner: 1}
	if r > 1 && f.timeDim != "" && dims[0] == f.timeDim {
		if shape[0] != len(f.rows) {
			return Weights{}, fmt.Errorf("patch fraction: %s length %d, variable has %d", f.timeDim, len(f.rows), shape[0])
		}
		w.timed = true
		for _, d := range shape[1 : r-1] {
			w.inner *= d
		}
	}
	return w, nil
}

// Row returns the weights applying to the outer-th land row of the variable.
func (w Weights) Row(outer int) []float64 {
	if !w.timed {
		return w.rows[0]
	}
	return w.rows[outer/w.inner]
}

func (w Weights) valid() bool { return len(w.rows) > 0 }
