package compat

import (
	"fmt"
	"reflect"

	"github.com/hanpama/fieldgraph/internal/annotation"
	"github.com/hanpama/fieldgraph/internal/field"
	"github.com/hanpama/fieldgraph/internal/record"
	"github.com/hanpama/fieldgraph/internal/structs"
)

// Representation identifies how a type declares its fields.
type Representation int

const (
	Unsupported Representation = iota
	Record
	Struct
)

func (r Representation) String() string {
	switch r {
	case Record:
		return "record"
	case Struct:
		return "struct"
	}
	return "unsupported"
}

// UnsupportedTypeError is returned for types that use neither declaration
// style.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("compat: %v declares no fields in a supported representation", e.Type)
}

// Classify determines the declaration style of t. Record wins when a struct
// also implements record.Declarer.
func Classify(t reflect.Type) Representation {
	switch {
	case record.IsRecord(t):
		return Record
	case structs.IsStruct(t):
		return Struct
	}
	return Unsupported
}

// IsTypeSupported reports whether GetFields accepts t.
func IsTypeSupported(t reflect.Type) bool {
	return Classify(t) != Unsupported
}

// GetFields returns the own field descriptors of t in declaration order.
func GetFields(t reflect.Type) ([]*field.Field, error) {
	return GetFieldsAs(t, Classify(t))
}

// GetFieldsAs is GetFields with a representation classified earlier.
func GetFieldsAs(t reflect.Type, rep Representation) ([]*field.Field, error) {
	switch rep {
	case Record:
		return record.Fields(t), nil
	case Struct:
		infos, err := structs.Fields(t)
		if err != nil {
			return nil, err
		}
		out := make([]*field.Field, 0, len(infos))
		for _, fi := range infos {
			f, err := wrap(fi)
			if err != nil {
				return nil, fmt.Errorf("compat: %s.%s: %w", t.Name(), fi.Name, err)
			}
			out = append(out, f)
		}
		return out, nil
	}
	return nil, &UnsupportedTypeError{Type: t}
}

func wrap(fi structs.FieldInfo) (*field.Field, error) {
	ann, err := annotation.FromGoType(fi.Type)
	if err != nil {
		return nil, err
	}
	f := field.New(fi.Name).WithAnnotation(ann)
	if !IsMissing(fi.Default) {
		f.Default = fi.Default
	}
	if !IsMissing(fi.DefaultFactory) {
		f.DefaultFactory = fi.DefaultFactory
	}
	if name := fi.Tag.Get("graphql"); name != "" {
		f.PublicName = name
	}
	if desc := fi.Tag.Get("description"); desc != "" {
		f.Description = desc
	}
	return f, nil
}
