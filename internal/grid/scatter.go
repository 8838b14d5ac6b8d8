package grid

import (
	"fmt"

	"github.com/ctessum/sparse"
)

// Scatter places the land axis (the last axis) of src onto an [nrow, ncol]
// grid using a. Leading axes are kept. Cells that receive no land point hold
// fill. When several land points share a cell the last one in land order
// wins.
func Scatter(src *sparse.DenseArray, a Assignment, nrow, ncol int, fill float64) (*sparse.DenseArray, error) {
	if len(src.Shape) == 0 {
		return nil, fmt.Errorf("scatter: scalar has no land axis")
	}
	lead := src.Shape[:len(src.Shape)-1]
	nland := src.Shape[len(src.Shape)-1]
	if nland != a.Len() {
		return nil, fmt.Errorf("scatter: %d land points but %d assignments", nland, a.Len())
	}
	for i := range a.Row {
		if a.Row[i] < 0 || a.Row[i] >= nrow || a.Col[i] < 0 || a.Col[i] >= ncol {
			return nil, fmt.Errorf("scatter: land point %d assigned outside %dx%d grid: (%d, %d)", i, nrow, ncol, a.Row[i], a.Col[i])
		}
	}

	out := filled(fill, append(append([]int(nil), lead...), nrow, ncol)...)
	ncell := nrow * ncol
	for o := 0; o < outerLen(lead); o++ {
		in := src.Elements[o*nland : (o+1)*nland]
		dst := out.Elements[o*ncell : (o+1)*ncell]
		for i, v := range in {
			dst[a.Row[i]*ncol+a.Col[i]] = v
		}
	}
	return out, nil
}

// Tile repeats a 2-D field under the given leading shape.
func Tile(field *sparse.DenseArray, lead []int) *sparse.DenseArray {
	out := sparse.ZerosDense(append(append([]int(nil), lead...), field.Shape...)...)
	n := len(field.Elements)
	for o := 0; o < outerLen(lead); o++ {
		copy(out.Elements[o*n:(o+1)*n], field.Elements)
	}
	return out
}

func filled(fill float64, shape ...int) *sparse.DenseArray {
	a := sparse.ZerosDense(shape...)
	for i := range a.Elements {
		a.Elements[i] = fill
	}
	return a
}

func outerLen(lead []int) int {
	n := 1
	for _, d := range lead {
		n *= d
	}
	return n
}
