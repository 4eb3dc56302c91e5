// Package structs reads fields from plain Go structs, the compact
// declaration style. Defaults come from the default struct tag.
package structs

import (
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
)

// Unset marks an absent default or default factory.
var Unset = unset{}

type unset struct{}

func (unset) String() string { return "<unset>" }

// FieldInfo describes one exported struct field.
type FieldInfo struct {
	Name           string
	Type           reflect.Type
	Default        any
	DefaultFactory any
	Index          []int
	Tag            reflect.StructTag
}

// Factories is implemented by structs that supply default factories by
// field name.
type Factories interface {
	DefaultFactories() map[string]func() any
}

var factoriesType = reflect.TypeOf((*Factories)(nil)).Elem()

// IsStruct reports whether t is a named struct type.
func IsStruct(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Struct && t.Name() != ""
}

// Fields lists the own exported fields of t in declaration order. Embedded
// fields are not listed; they describe bases.
func Fields(t reflect.Type) ([]FieldInfo, error) {
	if !IsStruct(t) {
		return nil, fmt.Errorf("structs: %v is not a named struct", t)
	}
	factories := factoriesOf(t)

	var out []FieldInfo
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous || !sf.IsExported() || sf.Tag.Get("graphql") == "-" {
			continue
		}
		fi := FieldInfo{
			Name:           sf.Name,
			Type:           sf.Type,
			Default:        Unset,
			DefaultFactory: Unset,
			Index:          sf.Index,
			Tag:            sf.Tag,
		}
		if raw, ok := sf.Tag.Lookup("default"); ok {
			v, err := decodeDefault(raw, sf.Type)
			if err != nil {
				return nil, fmt.Errorf("structs: default of %s.%s: %w", t.Name(), sf.Name, err)
			}
			fi.Default = v
		}
		if fn, ok := factories[sf.Name]; ok && fn != nil {
			fi.DefaultFactory = fn
		}
		out = append(out, fi)
	}
	return out, nil
}

// EmbeddedTypes returns the struct types embedded in t, in declaration
// order. Pointer embeddings are dereferenced.
func EmbeddedTypes(t reflect.Type) []reflect.Type {
	var out []reflect.Type
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.Anonymous {
			continue
		}
		et := sf.Type
		if et.Kind() == reflect.Pointer {
			et = et.Elem()
		}
		if et.Kind() == reflect.Struct {
			out = append(out, et)
		}
	}
	return out
}

func decodeDefault(raw string, t reflect.Type) (any, error) {
	ptr := reflect.New(t)
	if err := yaml.Unmarshal([]byte(raw), ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

func factoriesOf(t reflect.Type) map[string]func() any {
	if !t.Implements(factoriesType) && !reflect.PointerTo(t).Implements(factoriesType) {
		return nil
	}
	f, ok := reflect.New(t).Interface().(Factories)
	if !ok {
		return nil
	}
	return f.DefaultFactories()
}
