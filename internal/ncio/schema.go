// Package ncio reads and writes NetCDF datasets as whole in-memory variables.
package ncio

import (
	"slices"
	"strings"
)

// Type is the external type of a variable in the output container.
type Type int

const (
	TypeByte Type = iota + 1
	TypeShort
	TypeInt
	TypeFloat
	TypeDouble
)

func (t Type) String() string {
	switch t {
	case TypeByte:
		return "byte"
	case TypeShort:
		return "short"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	default:
		return "invalid"
	}
}

// DefaultFill returns the NetCDF default fill value of t.
func (t Type) DefaultFill() float64 {
	switch t {
	case TypeByte:
		return -127
	case TypeShort:
		return -32767
	case TypeInt:
		return -2147483647
	case TypeFloat:
		return float64(float32(9.9692099683868690e+36))
	default:
		return 9.9692099683868690e+36
	}
}

// typeOf maps the Go element type reported by the reader to the type that
// holds it in a classic container. Types classic files cannot hold are
// widened.
func typeOf(goType string) (Type, bool) {
	switch strings.TrimLeft(goType, "[]") {
	case "int8":
		return TypeByte, true
	case "int16", "uint8":
		return TypeShort, true
	case "int32", "uint16":
		return TypeInt, true
	case "float32":
		return TypeFloat, true
	case "float64", "int64", "uint32", "uint64":
		return TypeDouble, true
	default:
		return 0, false
	}
}

// Dim is a named dimension.
type Dim struct {
	Name string
	Len  int
}

// Attribute is a named attribute value: a string or a numeric slice.
type Attribute struct {
	Name  string
	Value any
}

// Variable describes a variable without its data.
type Variable struct {
	Name  string
	Type  Type
	Dims  []string
	Shape []int
	Fill  float64
	// Missing holds the missing_value entries; Read replaces them with Fill.
	Missing []float64
	Attrs   []Attribute
}

// Schema describes a dataset: its format, dimensions, variables and global
// attributes, all in declaration order.
type Schema struct {
	Format Format
	Dims   []Dim
	Vars   []Variable
	Attrs  []Attribute
}

// Var returns the variable called name.
func (s *Schema) Var(name string) (*Variable, bool) {
	for i := range s.Vars {
		if s.Vars[i].Name == name {
			return &s.Vars[i], true
		}
	}
	return nil, false
}

// Dim returns the dimension called name.
func (s *Schema) Dim(name string) (Dim, bool) {
	for _, d := range s.Dims {
		if d.Name == name {
			return d, true
		}
	}
	return Dim{}, false
}

// VarNames returns the variable names in declaration order.
func (s *Schema) VarNames() []string {
	names := make([]string, len(s.Vars))
	for i, v := range s.Vars {
		names[i] = v.Name
	}
	return names
}

// Clone returns a deep copy of s. Attribute values are shared.
func (s *Schema) Clone() *Schema {
	c := &Schema{
		Format: s.Format,
		Dims:   slices.Clone(s.Dims),
		Vars:   make([]Variable, len(s.Vars)),
		Attrs:  slices.Clone(s.Attrs),
	}
	for i, v := range s.Vars {
		v.Dims = slices.Clone(v.Dims)
		v.Shape = slices.Clone(v.Shape)
		v.Missing = slices.Clone(v.Missing)
		v.Attrs = slices.Clone(v.Attrs)
		c.Vars[i] = v
	}
	return c
}

// shapeOf returns the lengths of dims.
func (s *Schema) shapeOf(dims []string) []int {
	shape := make([]int, len(dims))
	for i, name := range dims {
		d, _ := s.Dim(name)
		shape[i] = d.Len
	}
	return shape
}

// SetDim sets the length of dimension name, appending it if missing, and
// updates variable shapes.
func (s *Schema) SetDim(name string, n int) {
	i := slices.IndexFunc(s.Dims, func(d Dim) bool { return d.Name == name })
	if i < 0 {
		s.Dims = append(s.Dims, Dim{Name: name, Len: n})
	} else {
		s.Dims[i].Len = n
	}
	s.UpdateShapes()
}

// RemoveDim drops dimension name. Variables still using it must be fixed by
// the caller.
func (s *Schema) RemoveDim(name string) {
	s.Dims = slices.DeleteFunc(s.Dims, func(d Dim) bool { return d.Name == name })
}

// UpdateShapes recomputes every variable's shape from its dimensions.
func (s *Schema) UpdateShapes() {
	for i := range s.Vars {
		s.Vars[i].Shape = s.shapeOf(s.Vars[i].Dims)
	}
}
