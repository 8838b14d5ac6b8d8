package ncio

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Writer is a NetCDF classic file being written. Its header is fixed at
// creation; each variable is then written whole.
type Writer struct {
	path   string
	file   *os.File
	cf     *cdf.File
	schema *Schema
	closed bool
}

type encodeFunc func(elems []float64) any

var zeroValues = map[Type]any{
	TypeByte:   []int8{0},
	TypeShort:  []int16{0},
	TypeInt:    []int32{0},
	TypeFloat:  []float32{0},
	TypeDouble: []float64{0},
}

var encodeFuncs = map[Type]encodeFunc{
	TypeByte:   encode[int8],
	TypeShort:  encode[int16],
	TypeInt:    encode[int32],
	TypeFloat:  encode[float32],
	TypeDouble: encode[float64],
}

func encode[T int8 | int16 | int32 | float32 | float64](elems []float64) any {
	out := make([]T, len(elems))
	for i, e := range elems {
		out[i] = T(e)
	}
	return out
}

// Create defines a file at path with schema s and writes its header. The
// classic writer cannot produce NetCDF-4 or CDF-5 files; those formats are
// written as 64-bit offset classic with a warning.
func Create(path string, s *Schema, logger *slog.Logger) (*Writer, error) {
	switch s.Format {
	case FormatNetCDF4, FormatCDF5:
		logger.Warn("Output format not supported, writing classic NetCDF", "requested", s.Format.String(), "path", path)
	}

	names := make([]string, len(s.Dims))
	lengths := make([]int, len(s.Dims))
	for i, d := range s.Dims {
		names[i], lengths[i] = d.Name, d.Len
	}
	h := cdf.NewHeader(names, lengths)
	for _, a := range s.Attrs {
		h.AddAttribute("", a.Name, a.Value)
	}
	for _, v := range s.Vars {
		zero, ok := zeroValues[v.Type]
		if !ok {
			return nil, fmt.Errorf("create %s: variable %s has invalid type %d", path, v.Name, v.Type)
		}
		h.AddVariable(v.Name, v.Dims, zero)
		for _, a := range v.Attrs {
			if a.Name == fillValueAttr {
				continue
			}
			h.AddAttribute(v.Name, a.Name, a.Value)
		}
		h.AddAttribute(v.Name, fillValueAttr, encodeFuncs[v.Type]([]float64{v.Fill}))
	}
	h.Define()

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	cf, err := cdf.Create(f, h)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &Writer{path: path, file: f, cf: cf, schema: s}, nil
}

// Write stores the whole variable called name. data must have the
// variable's shape.
func (w *Writer) Write(name string, data *sparse.DenseArray) error {
	v, ok := w.schema.Var(name)
	if !ok {
		return fmt.Errorf("write %s: no variable %q", w.path, name)
	}
	n := 1
	for _, l := range v.Shape {
		n *= l
	}
	if len(data.Elements) != n {
		return fmt.Errorf("write %s: %s: shape %v holds %d values, got %d", w.path, name, v.Shape, n, len(data.Elements))
	}
	if n == 0 {
		return nil
	}
	if _, err := w.cf.Writer(name, nil, nil).Write(encodeFuncs[v.Type](data.Elements)); err != nil {
		return fmt.Errorf("write %s: %s: %w", w.path, name, err)
	}
	return nil
}

// Close flushes and closes the file. It is safe to call more than once.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", w.path, err)
	}
	return nil
}
