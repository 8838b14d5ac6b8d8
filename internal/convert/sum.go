package convert

import (
	"context"
	"fmt"
	"time"

	"github.com/rtm0/patchgrid/internal/config"
	"github.com/rtm0/patchgrid/internal/patch"
)

// SumPatches writes a copy of the input in which all patches of a land
// point are collapsed into one land point: coordinates are taken from the
// first patch, areas are summed and every other land variable is summed
// weighted by the patch fraction.
func SumPatches(ctx context.Context, env Env) (err error) {
	cfg, logger, naming := env.Config, env.Logger, env.Config.Naming
	if err := cfg.Validate(); err != nil {
		return err
	}
	start := time.Now()

	src, err := env.Open(cfg.Input)
	if err != nil {
		return err
	}
	defer src.Close()
	s := src.Schema()

	fv, ok := s.Var(naming.Fraction)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingVariable, naming.Fraction)
	}
	land, err := landVars(s, naming)
	if err != nil {
		return err
	}
	if !land[fv.Name] {
		return fmt.Errorf("%w: %s has dims %v", ErrLandAxis, fv.Name, fv.Dims)
	}
	lats, lons, err := readCoords(src, naming.Latitude, naming.Longitude)
	if err != nil {
		return err
	}
	groups := patch.Groups(lats, lons)
	fdata, err := src.Read(fv.Name)
	if err != nil {
		return err
	}
	frac, err := patch.NewFraction(fdata, fv.Dims, fv.Fill)
	if err != nil {
		return err
	}
	logger.Info("Land points", "patches", len(lats), "points", len(groups))

	out := s.Clone()
	out.Format = outputFormat(s, cfg)
	for _, d := range naming.LandDims {
		if _, ok := out.Dim(d); ok {
			out.SetDim(d, len(groups))
		}
	}
	out.Attrs = appendHistory(out, env.History)

	path := cfg.OutputPath(config.SumSuffix)
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
			role := roles[v.Name]
			var w patch.Weights
			if role == patch.RoleGeneric {
				if w, err = frac.Broadcast(v.Dims, v.Shape); err != nil {
					return fmt.Errorf("%s: %w", v.Name, err)
				}
			}
			if data, err = patch.Reduce(data, groups, role, w, v.Fill); err != nil {
				return fmt.Errorf("%s: %w", v.Name, err)
			}
		}
		if err := dst.Write(v.Name, data); err != nil {
			return err
		}
	}
	prog.done(start)
	return nil
}
