// Package annotation holds deferred field type expressions and the scopes
// they are resolved in.
//
// An Annotation is created when a type is declared, but the names it
// mentions are only looked up when the schema is built. Types may
// therefore reference each other in any order.
package annotation

import (
	"fmt"
	"reflect"
)

// ID is a string that is exposed as the ID scalar.
type ID string

// Private wraps a field value that must never be exposed in a schema.
type Private[T any] struct {
	Value T
}

func (Private[T]) privateField() {}

type privateMarker interface{ privateField() }

var privateMarkerType = reflect.TypeOf((*privateMarker)(nil)).Elem()

// Annotation is a type expression paired with the scope it resolves in.
// Scope is nil until the annotation is bound to its declaring type.
type Annotation struct {
	Expr   string
	GoType reflect.Type
	Scope  *Scope
}

// New returns an unbound annotation for a GraphQL type expression such as
// "[Book!]!".
func New(expr string) *Annotation {
	return &Annotation{Expr: expr}
}

// FromGoType derives an unbound annotation from a Go type.
func FromGoType(t reflect.Type) (*Annotation, error) {
	if IsPrivate(t) {
		return &Annotation{GoType: t}, nil
	}
	expr, err := ExprOf(t)
	if err != nil {
		return nil, err
	}
	return &Annotation{Expr: expr, GoType: t}, nil
}

// Bind returns a copy of a bound to scope. An annotation that already has
// a scope is returned as is.
func (a *Annotation) Bind(scope *Scope) *Annotation {
	if a == nil || a.Scope != nil {
		return a
	}
	c := *a
	c.Scope = scope
	return &c
}

// IsPrivate reports whether the annotation refers to a Private field.
func (a *Annotation) IsPrivate() bool {
	return a != nil && a.GoType != nil && IsPrivate(a.GoType)
}

// NamedGoType returns the named struct at the core of a Go-derived
// annotation, looking through pointers, slices and arrays. It is nil for
// expression annotations and for scalars.
func (a *Annotation) NamedGoType() reflect.Type {
	if a == nil || a.GoType == nil {
		return nil
	}
	t := a.GoType
	for {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array:
			t = t.Elem()
			continue
		case reflect.Struct:
			if t.Name() != "" && !IsPrivate(t) {
				return t
			}
		}
		return nil
	}
}

// Resolve resolves the annotation in its own scope.
func (a *Annotation) Resolve() (*Resolved, error) {
	return Resolve(a.Expr, a.Scope)
}

func (a *Annotation) String() string {
	if a == nil {
		return "<nil>"
	}
	if a.Scope == nil {
		return a.Expr
	}
	return a.Expr + "@" + a.Scope.Name()
}

// IsPrivate reports whether t is an instantiation of Private.
func IsPrivate(t reflect.Type) bool {
	return t != nil && t.Implements(privateMarkerType)
}

var idType = reflect.TypeOf(ID(""))

// ExprOf maps a Go type to a GraphQL type expression. Values are non-null
// unless behind a pointer.
func ExprOf(t reflect.Type) (string, error) {
	if t.Kind() == reflect.Pointer {
		inner, err := ExprOf(t.Elem())
		if err != nil {
			return "", err
		}
		return stripNonNull(inner), nil
	}
	name, err := namedExpr(t)
	if err != nil {
		return "", err
	}
	return name + "!", nil
}

func namedExpr(t reflect.Type) (string, error) {
	if t == idType {
		return "ID", nil
	}
	switch t.Kind() {
	case reflect.String:
		return "String", nil
	case reflect.Bool:
		return "Boolean", nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return "Int", nil
	case reflect.Float32, reflect.Float64:
		return "Float", nil
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return "", fmt.Errorf("annotation: byte sequences have no GraphQL type (%s)", t)
		}
		elem, err := ExprOf(t.Elem())
		if err != nil {
			return "", err
		}
		return "[" + elem + "]", nil
	case reflect.Struct, reflect.Interface:
		if t.Name() == "" {
			return "", fmt.Errorf("annotation: anonymous %s has no GraphQL type", t.Kind())
		}
		return t.Name(), nil
	}
	return "", fmt.Errorf("annotation: unsupported Go type %s", t)
}

func stripNonNull(expr string) string {
	if n := len(expr); n > 0 && expr[n-1] == '!' {
		return expr[:n-1]
	}
	return expr
}
