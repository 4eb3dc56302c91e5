// Package field defines the canonical field descriptor shared by every
// declaration style, and the canonical Missing sentinel.
package field

import (
	"context"
	"maps"

	"github.com/hanpama/fieldgraph/internal/annotation"
)

// Missing marks a default or default factory that was not provided.
var Missing = missing{}

type missing struct{}

func (missing) String() string   { return "MISSING" }
func (missing) GoString() string { return "field.Missing" }

// Resolver computes the value of a field for one source object.
type Resolver func(ctx context.Context, source any, args map[string]any) (any, error)

// Factory produces a fresh default value.
type Factory func() any

// Origin is the declared type that first introduced a field.
type Origin interface {
	TypeName() string
}

// Flags carry construction and presentation semantics of a field.
// Hash is nil when unset.
type Flags struct {
	Repr    bool
	Hash    *bool
	Init    bool
	Compare bool
	KwOnly  bool
}

// DefaultFlags returns the flag set used when a declaration carries none.
func DefaultFlags() Flags {
	return Flags{Repr: true, Init: true, Compare: true}
}

// Argument is an input argument of a resolver-backed field.
type Argument struct {
	Name        string
	Description string
	Type        *annotation.Annotation
	Default     any
}

// Field is the canonical field descriptor.
//
// Default and DefaultFactory hold either a value or one of the absence
// markers; a freshly created Field holds Missing in both.
type Field struct {
	Name              string
	PublicName        string
	Type              *annotation.Annotation
	Default           any
	DefaultFactory    any
	Resolver          Resolver
	Origin            Origin
	Flags             Flags
	Metadata          map[string]any
	Description       string
	DeprecationReason string
	Arguments         []*Argument
}

// New returns a descriptor named name with no type, no defaults and
// default flags.
func New(name string) *Field {
	return &Field{
		Name:           name,
		Default:        Missing,
		DefaultFactory: Missing,
		Flags:          DefaultFlags(),
		Metadata:       map[string]any{},
	}
}

func (f *Field) WithType(expr string) *Field {
	f.Type = annotation.New(expr)
	return f
}

func (f *Field) WithAnnotation(a *annotation.Annotation) *Field {
	f.Type = a
	return f
}

func (f *Field) WithPublicName(name string) *Field {
	f.PublicName = name
	return f
}

func (f *Field) WithDefault(v any) *Field {
	f.Default = v
	return f
}

func (f *Field) WithDefaultFactory(fn Factory) *Field {
	f.DefaultFactory = fn
	return f
}

func (f *Field) WithResolver(r Resolver) *Field {
	f.Resolver = r
	return f
}

func (f *Field) WithDescription(desc string) *Field {
	f.Description = desc
	return f
}

func (f *Field) Deprecate(reason string) *Field {
	f.DeprecationReason = reason
	return f
}

func (f *Field) WithMetadata(key string, v any) *Field {
	if f.Metadata == nil {
		f.Metadata = map[string]any{}
	}
	f.Metadata[key] = v
	return f
}

func (f *Field) WithFlags(flags Flags) *Field {
	f.Flags = flags
	return f
}

// WithArgument appends an argument declared with a type expression.
func (f *Field) WithArgument(name, expr string, def any) *Field {
	f.Arguments = append(f.Arguments, &Argument{Name: name, Type: annotation.New(expr), Default: def})
	return f
}

// GraphQLName returns the public name, falling back to Name.
func (f *Field) GraphQLName() string {
	if f.PublicName != "" {
		return f.PublicName
	}
	return f.Name
}

// Factory returns the default factory when one is set.
func (f *Field) Factory() (Factory, bool) {
	switch fn := f.DefaultFactory.(type) {
	case Factory:
		return fn, fn != nil
	case func() any:
		return fn, fn != nil
	}
	return nil, false
}

// Deprecated reports whether a deprecation reason is set.
func (f *Field) Deprecated() bool { return f.DeprecationReason != "" }

// Clone returns a copy that shares no mutable state with f.
func (f *Field) Clone() *Field {
	c := *f
	c.Metadata = maps.Clone(f.Metadata)
	if c.Metadata == nil {
		c.Metadata = map[string]any{}
	}
	if f.Arguments != nil {
		c.Arguments = make([]*Argument, len(f.Arguments))
		for i, a := range f.Arguments {
			ac := *a
			c.Arguments[i] = &ac
		}
	}
	if f.Flags.Hash != nil {
		h := *f.Flags.Hash
		c.Flags.Hash = &h
	}
	return &c
}
