package ncio

import (
	"reflect"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

const (
	fillValueAttr    = "_FillValue"
	missingValueAttr = "missing_value"
	historyAttr      = "history"
)

func attributes(am api.AttributeMap) []Attribute {
	if am == nil {
		return nil
	}
	var attrs []Attribute
	for _, k := range am.Keys() {
		v, ok := am.Get(k)
		if !ok {
			continue
		}
		if nv, ok := normalize(v); ok {
			attrs = append(attrs, Attribute{Name: k, Value: nv})
		}
	}
	return attrs
}

// normalize turns an attribute value into a string or one of the numeric
// slice types a classic container can hold.
func normalize(v any) (any, bool) {
	switch x := v.(type) {
	case nil:
		return nil, false
	case string:
		return x, true
	case []string:
		if len(x) == 1 {
			return x[0], true
		}
		return nil, false
	case []int8, []int16, []int32, []float32, []float64:
		return x, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		// Scalars become one-element slices.
		s := reflect.MakeSlice(reflect.SliceOf(rv.Type()), 1, 1)
		s.Index(0).Set(rv)
		rv = s
	}
	switch rv.Type().Elem().Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Float32, reflect.Float64:
		return rv.Interface(), true
	case reflect.Uint8:
		return convertSlice[int16](rv), true
	case reflect.Uint16:
		return convertSlice[int32](rv), true
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint32, reflect.Uint64:
		return convertSlice[float64](rv), true
	}
	return nil, false
}

func convertSlice[T int16 | int32 | float64](rv reflect.Value) []T {
	out := make([]T, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Convert(reflect.TypeOf(out[i])).Interface().(T)
	}
	return out
}

// scalar returns the first element of a numeric attribute value.
func scalar(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		if rv.Len() == 0 {
			return 0, false
		}
		rv = rv.Index(0)
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func fillValue(attrs []Attribute, t Type) float64 {
	for _, a := range attrs {
		if a.Name == fillValueAttr {
			if f, ok := scalar(a.Value); ok {
				return f
			}
		}
	}
	return t.DefaultFill()
}

// missingValues returns every value of the missing_value attribute.
func missingValues(attrs []Attribute) []float64 {
	for _, a := range attrs {
		if a.Name != missingValueAttr {
			continue
		}
		rv := reflect.ValueOf(a.Value)
		if rv.Kind() != reflect.Slice {
			return nil
		}
		var out []float64
		for i := 0; i < rv.Len(); i++ {
			if f, ok := scalar(rv.Index(i).Interface()); ok {
				out = append(out, f)
			}
		}
		return out
	}
	return nil
}

// AppendHistory returns attrs with entry added as a new line of the history
// attribute.
func AppendHistory(attrs []Attribute, entry string) []Attribute {
	out := make([]Attribute, 0, len(attrs)+1)
	found := false
	for _, a := range attrs {
		if a.Name == historyAttr {
			if s, ok := a.Value.(string); ok && s != "" {
				a.Value = s + "\n" + entry
			} else {
				a.Value = entry
			}
			found = true
		}
		out = append(out, a)
	}
	if !found {
		out = append(out, Attribute{Name: historyAttr, Value: entry})
	}
	return out
}
