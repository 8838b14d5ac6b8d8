// Package convert drives the conversion of patch-indexed land model output:
// summing patches per land point, and scattering land points onto a
// latitude/longitude grid.
package convert

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ctessum/sparse"

	"github.com/rtm0/patchgrid/internal/config"
	"github.com/rtm0/patchgrid/internal/ncio"
)

var (
	// ErrMissingVariable is returned when a variable the conversion needs is
	// not in the input.
	ErrMissingVariable = errors.New("variable not in input file")
	// ErrLandAxis is returned when a variable's land axis is not its last axis.
	ErrLandAxis = errors.New("land dimension must be the last dimension")
)

// Source is an open input dataset.
type Source interface {
	Schema() *ncio.Schema
	Read(name string) (*sparse.DenseArray, error)
	Close() error
}

// Sink is an output dataset whose schema is already defined.
type Sink interface {
	Write(name string, data *sparse.DenseArray) error
	Close() error
}

// OpenFunc opens the input dataset.
type OpenFunc func(path string) (Source, error)

// CreateFunc creates the output dataset with schema s.
type CreateFunc func(path string, s *ncio.Schema) (Sink, error)

// Env is everything one conversion run needs.
type Env struct {
	Config config.Config
	Logger *slog.Logger
	Open   OpenFunc
	Create CreateFunc
	// History is appended to the output's history attribute.
	History string
}

// NewEnv returns an Env reading and writing NetCDF files. args is recorded
// in the output history.
func NewEnv(cfg config.Config, logger *slog.Logger, args []string) Env {
	return Env{
		Config: cfg,
		Logger: logger,
		Open: func(path string) (Source, error) {
			d, err := ncio.Open(path)
			if err != nil {
				return nil, err
			}
			if len(d.Skipped()) > 0 {
				logger.Warn("Skipping variables of unsupported type", "vars", d.Skipped())
			}
			logger.Info("Input file", d.Summary()...)
			return d, nil
		},
		Create: func(path string, s *ncio.Schema) (Sink, error) {
			w, err := ncio.Create(path, s, logger)
			if err != nil {
				return nil, err
			}
			return w, nil
		},
		History: time.Now().Format(time.ANSIC) + ": " + strings.Join(args, " "),
	}
}

// landAxis reports whether v has a land dimension, which must be its last.
func landAxis(v *ncio.Variable, naming config.Naming) (bool, error) {
	for i, d := range v.Dims {
		if !naming.IsLandDim(d) {
			continue
		}
		if i != len(v.Dims)-1 {
			return false, fmt.Errorf("%w: %s has dims %v", ErrLandAxis, v.Name, v.Dims)
		}
		return true, nil
	}
	return false, nil
}

// landVars tags each variable of s with whether it has the land axis.
func landVars(s *ncio.Schema, naming config.Naming) (map[string]bool, error) {
	out := make(map[string]bool, len(s.Vars))
	for i := range s.Vars {
		ok, err := landAxis(&s.Vars[i], naming)
		if err != nil {
			return nil, err
		}
		out[s.Vars[i].Name] = ok
	}
	return out, nil
}

// findVar returns the first of names present in s.
func findVar(s *ncio.Schema, names ...string) (*ncio.Variable, error) {
	for _, n := range names {
		if v, ok := s.Var(n); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrMissingVariable, strings.Join(names, " or "))
}

// readAxis reads a one-dimensional variable.
func readAxis(src Source, v *ncio.Variable) ([]float64, error) {
	if len(v.Dims) != 1 {
		return nil, fmt.Errorf("%s must be one-dimensional, has dims %v", v.Name, v.Dims)
	}
	a, err := src.Read(v.Name)
	if err != nil {
		return nil, err
	}
	return a.Elements, nil
}

// readCoords reads the land point latitudes and longitudes.
func readCoords(src Source, latNames, lonNames []string) (lats, lons []float64, err error) {
	s := src.Schema()
	lv, err := findVar(s, latNames...)
	if err != nil {
		return nil, nil, err
	}
	ov, err := findVar(s, lonNames...)
	if err != nil {
		return nil, nil, err
	}
	if lats, err = readAxis(src, lv); err != nil {
		return nil, nil, err
	}
	if lons, err = readAxis(src, ov); err != nil {
		return nil, nil, err
	}
	if len(lats) != len(lons) {
		return nil, nil, fmt.Errorf("%s has %d values, %s has %d", lv.Name, len(lats), ov.Name, len(lons))
	}
	return lats, lons, nil
}

func closeSink(dst Sink, err *error) {
	if cerr := dst.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

func outputFormat(s *ncio.Schema, cfg config.Config) ncio.Format {
	return ncio.OutputFormat(s.Format, cfg.Compress)
}

func appendHistory(s *ncio.Schema, entry string) []ncio.Attribute {
	if entry == "" {
		return s.Attrs
	}
	return ncio.AppendHistory(s.Attrs, entry)
}
