package patch

import (
	"fmt"
	"math"

	"github.com/ctessum/sparse"
)

// Reduce collapses the land axis (the last axis) of src from one entry per
// patch to one entry per group:
//   - coordinate roles take the value of the group's first member,
//   - RoleArea sums the members,
//   - RoleGeneric sums member * fraction using w.
//
// Members equal to fill or NaN, and members with a missing fraction, are left
// out of sums. A group without valid members is fill.
func Reduce(src *sparse.DenseArray, groups []Group, role Role, w Weights, fill float64) (*sparse.DenseArray, error) {
	r := len(src.Shape)
	if r == 0 {
		return nil, fmt.Errorf("reduce: scalar has no land axis")
	}
	nland := src.Shape[r-1]
	if n := covered(groups); n != nland {
		return nil, fmt.Errorf("reduce: groups cover %d records, land axis has %d", n, nland)
	}
	if role == RoleGeneric && !w.valid() {
		return nil, fmt.Errorf("reduce: weighted sum without patch fraction")
	}

	shape := append([]int(nil), src.Shape...)
	shape[r-1] = len(groups)
	out := sparse.ZerosDense(shape...)
	nouter := 0
	if nland > 0 {
		nouter = len(src.Elements) / nland
	}
	for o := 0; o < nouter; o++ {
		in := src.Elements[o*nland : (o+1)*nland]
		dst := out.Elements[o*len(groups) : (o+1)*len(groups)]
		switch {
		case role.IsCoordinate():
			for gi, g := range groups {
				dst[gi] = in[g.Start]
			}
		case role == RoleArea:
			for gi, g := range groups {
				dst[gi] = sum(in[g.Start:g.End()], nil, fill)
			}
		default:
			frac := w.Row(o)
			for gi, g := range groups {
				dst[gi] = sum(in[g.Start:g.End()], frac[g.Start:g.End()], fill)
			}
		}
	}
	return out, nil
}

// sum adds vals, each multiplied by its weight when weights is non-nil.
func sum(vals, weights []float64, fill float64) float64 {
	var s float64
	n := 0
	for i, v := range vals {
		if v == fill || math.IsNaN(v) {
			continue
		}
		if weights != nil {
			if math.IsNaN(weights[i]) {
				continue
			}
			v *= weights[i]
		}
		s += v
		n++
	}
	if n == 0 {
		return fill
	}
	return s
}

func covered(groups []Group) int {
	if len(groups) == 0 {
		return 0
	}
	return groups[len(groups)-1].End()
}
