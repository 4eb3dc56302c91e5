package nativert

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// readField reads a field from a struct by its Go name, or from a map by
// its GraphQL name and then its Go name.
func readField(source any, name, goName string) (any, error) {
	if source == nil {
		return nil, nil
	}
	if m, ok := source.(map[string]any); ok {
		if v, ok := m[name]; ok {
			return v, nil
		}
		return m[goName], nil
	}

	rv := reflect.ValueOf(source)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("nativert: cannot read %s from %T", name, source)
	}
	fv := rv.FieldByName(goName)
	if !fv.IsValid() {
		return nil, fmt.Errorf("nativert: %s has no field %s", rv.Type(), goName)
	}
	if !fv.CanInterface() {
		return nil, fmt.Errorf("nativert: field %s of %s is not exported", goName, rv.Type())
	}
	return fv.Interface(), nil
}

func serializeLeaf(typeName string, value any) (any, error) {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil, nil
	}

	switch typeName {
	case "ID":
		switch rv.Kind() {
		case reflect.String:
			return rv.String(), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return strconv.FormatInt(rv.Int(), 10), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return strconv.FormatUint(rv.Uint(), 10), nil
		}
	case "Int":
		var n int64
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n = rv.Int()
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if rv.Uint() > math.MaxInt32 {
				return nil, fmt.Errorf("Int cannot represent %d", rv.Uint())
			}
			n = int64(rv.Uint())
		case reflect.Float32, reflect.Float64:
			f := rv.Float()
			if f != math.Trunc(f) {
				return nil, fmt.Errorf("Int cannot represent non-integer value %v", f)
			}
			n = int64(f)
		default:
			return nil, fmt.Errorf("Int cannot represent %T", value)
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, fmt.Errorf("Int cannot represent %d: outside 32-bit range", n)
		}
		return int(n), nil
	case "Float":
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			return rv.Float(), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return float64(rv.Int()), nil
		}
	case "String":
		if rv.Kind() == reflect.String {
			return rv.String(), nil
		}
		if s, ok := value.(fmt.Stringer); ok {
			return s.String(), nil
		}
	case "Boolean":
		if rv.Kind() == reflect.Bool {
			return rv.Bool(), nil
		}
	default:
		// enums and custom scalars
		if rv.Kind() == reflect.String {
			return rv.String(), nil
		}
		return rv.Interface(), nil
	}
	return nil, fmt.Errorf("%s cannot represent %T", typeName, value)
}
