package grid

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Assignment maps each land point, by index, to its nearest grid cell.
type Assignment struct {
	Row []int
	Col []int
}

// Len returns the number of assigned land points.
func (a Assignment) Len() int { return len(a.Row) }

const pointsPerTask = 1024

// Assign queries ix once per land point. Queries run on up to workers
// goroutines (runtime.NumCPU() if workers < 1); the result does not depend
// on the worker count.
func Assign(ctx context.Context, ix *Indexer, pts []LandPoint, workers int) (Assignment, error) {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	a := Assignment{Row: make([]int, len(pts)), Col: make([]int, len(pts))}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for begin := 0; begin < len(pts); begin += pointsPerTask {
		limit := min(begin+pointsPerTask, len(pts))
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			for i := begin; i < limit; i++ {
				c := ix.Query(pts[i].Latitude, pts[i].Longitude)
				a.Row[i], a.Col[i] = c.Row, c.Col
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Assignment{}, err
	}
	return a, nil
}
