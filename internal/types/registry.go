package types

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/hanpama/fieldgraph/internal/annotation"
	"github.com/hanpama/fieldgraph/internal/compat"
	"github.com/hanpama/fieldgraph/internal/field"
	"github.com/hanpama/fieldgraph/internal/structs"
)

// Registry maps Go types to their records. Each type is registered once.
type Registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]*TypeRecord
	byName map[string]*TypeRecord
	order  []*TypeRecord
	scopes map[string]*annotation.Scope
}

func NewRegistry() *Registry {
	return &Registry{
		byType: map[reflect.Type]*TypeRecord{},
		byName: map[string]*TypeRecord{},
		scopes: map[string]*annotation.Scope{},
	}
}

type options struct {
	name        string
	description string
	kind        Kind
	scope       *annotation.Scope
	fields      []*field.Field
	bases       []reflect.Type
}

// Option configures a registration.
type Option func(*options)

// WithName sets the GraphQL type name. The Go type name is used otherwise.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

func WithDescription(desc string) Option {
	return func(o *options) { o.description = desc }
}

// AsInterface registers the type as an interface.
func AsInterface() Option {
	return func(o *options) { o.kind = KindInterface }
}

// AsInput registers the type as an input object.
func AsInput() Option {
	return func(o *options) { o.kind = KindInput }
}

// InScope declares the type's annotations in scope instead of the scope of
// its Go package.
func InScope(scope *annotation.Scope) Option {
	return func(o *options) { o.scope = scope }
}

// WithField attaches an explicit descriptor. A descriptor whose Name
// matches a declared field is attached to it; any other becomes an
// additional field that exists only through its resolver.
func WithField(f *field.Field) Option {
	return func(o *options) { o.fields = append(o.fields, f) }
}

// WithBases adds registered types as bases after the embedded ones.
func WithBases(bases ...reflect.Type) Option {
	return func(o *options) { o.bases = append(o.bases, bases...) }
}

// AlreadyRegisteredError is returned when a Go type or GraphQL name is
// registered twice.
type AlreadyRegisteredError struct {
	Name string
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("types: %s is already registered", e.Name)
}

// Register creates the record of the struct type T.
func Register[T any](r *Registry, opts ...Option) (*TypeRecord, error) {
	return r.Register(reflect.TypeFor[T](), opts...)
}

// Register creates the record of t. Pointer types register their element.
func (r *Registry) Register(t reflect.Type, opts ...Option) (*TypeRecord, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	rep := compat.Classify(t)
	natives, err := compat.GetFieldsAs(t, rep)
	if err != nil {
		return nil, err
	}

	rec := &TypeRecord{
		Name:           o.name,
		Description:    o.description,
		Kind:           o.kind,
		GoType:         t,
		Representation: rep,
	}
	if rec.Name == "" {
		rec.Name = t.Name()
	}
	rec.Locals = locals(natives, o.fields)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byType[t]; ok {
		return nil, &AlreadyRegisteredError{Name: t.String()}
	}
	if _, ok := r.byName[rec.Name]; ok {
		return nil, &AlreadyRegisteredError{Name: rec.Name}
	}

	for _, et := range structs.EmbeddedTypes(t) {
		if base, ok := r.byType[et]; ok {
			rec.Bases = append(rec.Bases, base)
		}
	}
	for _, bt := range o.bases {
		for bt.Kind() == reflect.Pointer {
			bt = bt.Elem()
		}
		base, ok := r.byType[bt]
		if !ok {
			return nil, fmt.Errorf("types: base %s of %s is not registered", bt, t)
		}
		rec.Bases = append(rec.Bases, base)
	}

	rec.Scope = o.scope
	if rec.Scope == nil {
		rec.Scope = r.scopeLocked(t.PkgPath())
	}
	rec.Scope.Define(rec.Name, rec)
	if t.Name() != rec.Name {
		rec.Scope.Define(t.Name(), rec)
	}

	r.byType[t] = rec
	r.byName[rec.Name] = rec
	r.order = append(r.order, rec)
	return rec, nil
}

func locals(natives, explicit []*field.Field) []Local {
	out := make([]Local, 0, len(natives)+len(explicit))
	index := map[string]int{}
	for _, n := range natives {
		index[n.Name] = len(out)
		out = append(out, Local{Name: n.Name, Native: n})
	}
	for _, e := range explicit {
		if i, ok := index[e.Name]; ok {
			out[i].Explicit = e
			continue
		}
		index[e.Name] = len(out)
		out = append(out, Local{Name: e.Name, Explicit: e})
	}
	return out
}

// Scope returns the annotation scope of a Go package path, creating it on
// first use.
func (r *Registry) Scope(pkgPath string) *annotation.Scope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scopeLocked(pkgPath)
}

func (r *Registry) scopeLocked(pkgPath string) *annotation.Scope {
	s, ok := r.scopes[pkgPath]
	if !ok {
		s = annotation.NewScope(pkgPath, annotation.Universe)
		r.scopes[pkgPath] = s
	}
	return s
}

// Lookup returns the record of t.
func (r *Registry) Lookup(t reflect.Type) (*TypeRecord, bool) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byType[t]
	return rec, ok
}

// LookupName returns the record registered under a GraphQL name.
func (r *Registry) LookupName(name string) (*TypeRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byName[name]
	return rec, ok
}

// Records returns all records in registration order.
func (r *Registry) Records() []*TypeRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*TypeRecord(nil), r.order...)
}
