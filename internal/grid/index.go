package grid

import (
	"fmt"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/ctessum/sparse"
)

// center is a cell center stored in the tree; X is longitude, Y latitude.
type center struct {
	geom.Point
	cell Cell
}

// Indexer answers nearest-cell queries over a set of grid-cell centers.
// It is immutable after construction and safe for concurrent queries.
type Indexer struct {
	tree *rtree.Rtree
	nrow int
	ncol int
}

// NewIndexer builds an Indexer from [nrow, ncol] arrays of cell-center
// latitudes and longitudes. Cells are inserted in row-major order, which
// fixes the tie-break between equidistant centers.
func NewIndexer(lat2d, lon2d *sparse.DenseArray) (*Indexer, error) {
	if len(lat2d.Shape) != 2 || len(lon2d.Shape) != 2 {
		return nil, fmt.Errorf("grid index: coordinates must be 2-D, got %v and %v", lat2d.Shape, lon2d.Shape)
	}
	if lat2d.Shape[0] != lon2d.Shape[0] || lat2d.Shape[1] != lon2d.Shape[1] {
		return nil, fmt.Errorf("grid index: shape mismatch %v vs %v", lat2d.Shape, lon2d.Shape)
	}
	nrow, ncol := lat2d.Shape[0], lat2d.Shape[1]
	if nrow*ncol == 0 {
		return nil, fmt.Errorf("grid index: empty grid %v", lat2d.Shape)
	}
	tree := rtree.NewTree(25, 50)
	for j := 0; j < nrow; j++ {
		for i := 0; i < ncol; i++ {
			k := j*ncol + i
			tree.Insert(&center{
				Point: geom.Point{X: lon2d.Elements[k], Y: lat2d.Elements[k]},
				cell:  Cell{Row: j, Col: i},
			})
		}
	}
	return &Indexer{tree: tree, nrow: nrow, ncol: ncol}, nil
}

// Query returns the cell whose center is nearest to (lat, lon) under
// Euclidean distance in degree space.
func (ix *Indexer) Query(lat, lon float64) Cell {
	nn := ix.tree.NearestNeighbor(geom.Point{X: lon, Y: lat})
	return nn.(*center).cell
}

// Shape returns the number of rows and columns of the indexed grid.
func (ix *Indexer) Shape() (nrow, ncol int) {
	return ix.nrow, ix.ncol
}
