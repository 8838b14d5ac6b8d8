package ncio

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/ctessum/sparse"
)

// Dataset is an open NetCDF file. Variables are read whole.
type Dataset struct {
	path    string
	nc      api.Group
	schema  *Schema
	getters map[string]api.VarGetter
	skipped []string
	closed  bool
}

// Open opens the NetCDF file at path (classic, 64-bit offset or NetCDF-4)
// and enumerates its schema. Variables of types that cannot be held as
// numbers, such as char, are listed by Skipped and left out of the schema.
func Open(path string) (*Dataset, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	d := &Dataset{
		path:    path,
		nc:      nc,
		schema:  &Schema{Format: format, Attrs: attributes(nc.Attributes())},
		getters: make(map[string]api.VarGetter),
	}
	for _, name := range nc.ListDimensions() {
		n, _ := nc.GetDimension(name)
		d.schema.Dims = append(d.schema.Dims, Dim{Name: name, Len: int(n)})
	}
	for _, name := range nc.ListVariables() {
		vg, err := nc.GetVarGetter(name)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("open %s: variable %s: %w", path, name, err)
		}
		t, ok := typeOf(vg.GoType())
		if !ok {
			d.skipped = append(d.skipped, name)
			continue
		}
		attrs := attributes(vg.Attributes())
		dims := vg.Dimensions()
		d.schema.Vars = append(d.schema.Vars, Variable{
			Name:    name,
			Type:    t,
			Dims:    dims,
			Shape:   d.schema.shapeOf(dims),
			Fill:    fillValue(attrs, t),
			Missing: missingValues(attrs),
			Attrs:   attrs,
		})
		d.getters[name] = vg
	}
	return d, nil
}

// Schema returns the dataset's schema. It must not be modified.
func (d *Dataset) Schema() *Schema { return d.schema }

// Skipped returns the names of variables left out of the schema.
func (d *Dataset) Skipped() []string { return d.skipped }

// Read returns the whole variable called name. Values equal to one of the
// variable's missing values are returned as its fill value.
func (d *Dataset) Read(name string) (*sparse.DenseArray, error) {
	vg, ok := d.getters[name]
	if !ok {
		return nil, fmt.Errorf("read %s: no variable %q", d.path, name)
	}
	v, _ := d.schema.Var(name)
	vals, err := vg.Values()
	if err != nil {
		return nil, fmt.Errorf("read %s: %s: %w", d.path, name, err)
	}
	elems, err := flatten(vals)
	if err != nil {
		return nil, fmt.Errorf("read %s: %s: %w", d.path, name, err)
	}
	a := sparse.ZerosDense(v.Shape...)
	if len(elems) != len(a.Elements) {
		return nil, fmt.Errorf("read %s: %s: shape %v holds %d values, got %d", d.path, name, v.Shape, len(a.Elements), len(elems))
	}
	copy(a.Elements, elems)
	if len(v.Missing) > 0 {
		for i, e := range a.Elements {
			if slices.Contains(v.Missing, e) {
				a.Elements[i] = v.Fill
			}
		}
	}
	return a, nil
}

// Close closes the file. It is safe to call more than once.
func (d *Dataset) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.nc.Close()
	return nil
}

// Summary returns information about the dataset suitable for logging.
func (d *Dataset) Summary() []any {
	return []any{
		"path", d.path,
		"format", d.schema.Format.String(),
		"dimCnt", len(d.schema.Dims),
		"varCnt", len(d.schema.Vars),
		"skipped", d.skipped,
	}
}

// flatten walks the nested slices returned by the reader in row-major order.
func flatten(v any) ([]float64, error) {
	var out []float64
	var walk func(rv reflect.Value) error
	walk = func(rv reflect.Value) error {
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			for i := 0; i < rv.Len(); i++ {
				if err := walk(rv.Index(i)); err != nil {
					return err
				}
			}
		case reflect.Interface, reflect.Pointer:
			return walk(rv.Elem())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			out = append(out, float64(rv.Int()))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			out = append(out, float64(rv.Uint()))
		case reflect.Float32, reflect.Float64:
			out = append(out, rv.Float())
		default:
			return fmt.Errorf("unsupported value kind %s", rv.Kind())
		}
		return nil
	}
	if err := walk(reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	return out, nil
}
