package convert

import (
	"context"
	"fmt"
	"time"

	"github.com/rtm0/patchgrid/internal/config"
	"github.com/rtm0/patchgrid/internal/grid"
	"github.com/rtm0/patchgrid/internal/ncio"
	"github.com/rtm0/patchgrid/internal/patch"
)

// Grid2D writes a copy of the input in which the land axis of every variable
// is replaced by a (y, x) latitude/longitude grid. Each land point goes to
// its nearest grid cell. The grid is read from the input's x and y variables
// when it has an x dimension, and synthesized for the configured region
// otherwise.
func Grid2D(ctx context.Context, env Env) (err error) {
	cfg, logger, naming := env.Config, env.Logger, env.Config.Naming
	if err := cfg.Validate(); err != nil {
		return err
	}
	region, err := cfg.RegionExtent()
	if err != nil {
		return err
	}
	start := time.Now()

	src, err := env.Open(cfg.Input)
	if err != nil {
		return err
	}
	defer src.Close()
	s := src.Schema()

	land, err := landVars(s, naming)
	if err != nil {
		return err
	}
	latNames, lonNames := naming.Latitude, naming.Longitude
	if _, ok := s.Var(naming.LocalLat); ok {
		latNames, lonNames = []string{naming.LocalLat}, []string{naming.LocalLon}
	}
	lats, lons, err := readCoords(src, latNames, lonNames)
	if err != nil {
		return err
	}

	g, err := targetGrid(src, naming, lats, lons, region)
	if err != nil {
		return err
	}
	lat2d, lon2d := g.Centers()
	ix, err := grid.NewIndexer(lat2d, lon2d)
	if err != nil {
		return err
	}
	asg, err := grid.Assign(ctx, ix, grid.Points(lats, lons), cfg.Workers)
	if err != nil {
		return err
	}
	logger.Info("Grid", "landPoints", len(lats), "nlat", g.NLat(), "nlon", g.NLon())

	out := gridSchema(s, naming, land, g)
	out.Attrs = appendHistory(out, env.History)
	out.Format = outputFormat(s, cfg)
	path := cfg.OutputPath(config.GridSuffix)
	logger.Info("Output file", "path", path, "format", out.Format.String())
	dst, err := env.Create(path, out)
	if err != nil {
		return err
	}
	defer closeSink(dst, &err)

	roles := patch.ResolveRoles(s.VarNames(), naming.Roles())
	prog := newProgress(logger, len(s.Vars), cfg.Verbose)
	for i := range s.Vars {
		if err := ctx.Err(); err != nil {
			return err
		}
		v := &s.Vars[i]
		prog.step(i)
		data, err := src.Read(v.Name)
		if err != nil {
			return err
		}
		if land[v.Name] {
			lead := v.Shape[:len(v.Shape)-1]
			switch roles[v.Name] {
			case patch.RoleLatitude:
				data = grid.Tile(lat2d, lead)
			case patch.RoleLongitude:
				data = grid.Tile(lon2d, lead)
			default:
				if data, err = grid.Scatter(data, asg, g.NLat(), g.NLon(), v.Fill); err != nil {
					return fmt.Errorf("%s: %w", v.Name, err)
				}
			}
		}
		if err := dst.Write(v.Name, data); err != nil {
			return err
		}
	}
	prog.done(start)
	return nil
}

// targetGrid returns the input's own grid if it has one, else a grid
// synthesized from the land point coordinates.
func targetGrid(src Source, naming config.Naming, lats, lons []float64, region grid.Region) (*grid.Grid, error) {
	s := src.Schema()
	if _, ok := s.Dim(naming.GridX); !ok {
		return grid.Synthesize(lats, lons, region)
	}
	yv, err := findVar(s, naming.GridY)
	if err != nil {
		return nil, err
	}
	xv, err := findVar(s, naming.GridX)
	if err != nil {
		return nil, err
	}
	y, err := readAxis(src, yv)
	if err != nil {
		return nil, err
	}
	x, err := readAxis(src, xv)
	if err != nil {
		return nil, err
	}
	return &grid.Grid{Lat: y, Lon: x}, nil
}

// gridSchema derives the output schema: land dimensions are removed, y and
// x are sized to the grid, and the land axis of each variable becomes (y, x).
func gridSchema(s *ncio.Schema, naming config.Naming, land map[string]bool, g *grid.Grid) *ncio.Schema {
	out := s.Clone()
	for _, d := range naming.LandDims {
		out.RemoveDim(d)
	}
	for i := range out.Vars {
		v := &out.Vars[i]
		if land[v.Name] {
			v.Dims = append(v.Dims[:len(v.Dims)-1], naming.GridY, naming.GridX)
		}
	}
	out.SetDim(naming.GridY, g.NLat())
	out.SetDim(naming.GridX, g.NLon())
	return out
}
