package schema

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"

	"github.com/vektah/gqlparser/v2/ast"
	"golang.org/x/sync/errgroup"

	"github.com/hanpama/fieldgraph/internal/annotation"
	"github.com/hanpama/fieldgraph/internal/compat"
	"github.com/hanpama/fieldgraph/internal/field"
	"github.com/hanpama/fieldgraph/internal/names"
	"github.com/hanpama/fieldgraph/internal/types"
)

// ErrNoQueryType is returned when no registered type can serve as the query
// root.
var ErrNoQueryType = errors.New("schema: no query root type registered")

// Options configure Build.
type Options struct {
	Description      string
	QueryType        string
	MutationType     string
	SubscriptionType string
	Names            names.Converter
	// Resolve resolves type expressions. Annotations derived from a Go
	// struct type bypass it and are looked up in the registry.
	Resolve     annotation.ResolveFunc
	Cache       *FieldCache
	Concurrency int
	Logger      *slog.Logger
}

type Option func(*Options)

func WithDescription(desc string) Option {
	return func(o *Options) { o.Description = desc }
}

// WithRootTypes overrides the conventional root type names. Empty names
// keep the default.
func WithRootTypes(query, mutation, subscription string) Option {
	return func(o *Options) {
		if query != "" {
			o.QueryType = query
		}
		if mutation != "" {
			o.MutationType = mutation
		}
		if subscription != "" {
			o.SubscriptionType = subscription
		}
	}
}

func WithNameConverter(c names.Converter) Option {
	return func(o *Options) { o.Names = c }
}

func WithResolveFunc(fn annotation.ResolveFunc) Option {
	return func(o *Options) { o.Resolve = fn }
}

// WithFieldCache shares merged field lists between builds.
func WithFieldCache(c *FieldCache) Option {
	return func(o *Options) { o.Cache = c }
}

// WithConcurrency bounds the number of types built in parallel.
func WithConcurrency(n int) Option {
	return func(o *Options) { o.Concurrency = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

type builder struct {
	opts Options
	reg  *types.Registry
}

// Build builds an executable schema from every type in reg. Any failure
// while merging fields or resolving annotations aborts the build; no
// partial schema is returned.
func Build(reg *types.Registry, opts ...Option) (*Schema, error) {
	o := Options{
		QueryType:        "Query",
		MutationType:     "Mutation",
		SubscriptionType: "Subscription",
		Names:            names.Default,
		Resolve:          annotation.Resolve,
		Concurrency:      runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Cache == nil {
		o.Cache = NewFieldCache(nil)
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	b := &builder{opts: o, reg: reg}

	records := reg.Records()
	built := make([]*Type, len(records))

	var g errgroup.Group
	g.SetLimit(max(o.Concurrency, 1))
	for i, rec := range records {
		g.Go(func() error {
			t, err := b.buildType(rec)
			if err != nil {
				return err
			}
			built[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		o.Logger.Error("schema build failed", "error", err)
		return nil, err
	}

	s := NewSchema(o.Description)
	addBuiltins(s)
	for _, t := range built {
		s.AddType(t)
	}
	linkPossibleTypes(s, built)

	if s.Types[o.QueryType] == nil {
		return nil, ErrNoQueryType
	}
	s.SetQueryType(o.QueryType)
	if s.Types[o.MutationType] != nil {
		s.SetMutationType(o.MutationType)
	}
	if s.Types[o.SubscriptionType] != nil {
		s.SetSubscriptionType(o.SubscriptionType)
	}

	o.Logger.Debug("schema built", "types", len(built), "cached", o.Cache.Len())
	return s, nil
}

func kindOf(k types.Kind) TypeKind {
	switch k {
	case types.KindInterface:
		return TypeKindInterface
	case types.KindInput:
		return TypeKindInputObject
	}
	return TypeKindObject
}

func (b *builder) buildType(rec *types.TypeRecord) (*Type, error) {
	fields, err := b.opts.Cache.Fields(rec)
	if err != nil {
		return nil, err
	}
	t := NewType(rec.Name, kindOf(rec.Kind), rec.Description)
	t.Record = rec
	input := t.Kind == TypeKindInputObject

	if !input {
		for _, iface := range rec.Interfaces() {
			t.AddInterface(iface.Name)
		}
	}
	for _, f := range fields {
		if err := b.addField(t, f, input); err != nil {
			return nil, fmt.Errorf("schema: %s.%s: %w", rec.Name, f.Name, err)
		}
	}
	return t, nil
}

func (b *builder) addField(t *Type, f *field.Field, input bool) error {
	ref, err := b.typeRef(f.Type, input)
	if err != nil {
		return err
	}
	name := b.opts.Names.Field(f)

	if input {
		if f.Resolver != nil {
			return errors.New("input fields cannot have resolvers")
		}
		iv := NewInputValue(name, f.Description, ref).SetDefault(inputDefault(f))
		iv.GoName = f.Name
		if f.Deprecated() {
			iv.IsDeprecated = true
			iv.DeprecationReason = f.DeprecationReason
		}
		t.AddInputField(iv)
		return nil
	}

	out := NewField(name, f.Description, ref).SetAsync(f.Resolver != nil)
	out.Descriptor = f
	if f.Deprecated() {
		out.Deprecate(f.DeprecationReason)
	}
	for _, a := range f.Arguments {
		aref, err := b.typeRef(a.Type.Bind(f.Type.Scope), true)
		if err != nil {
			return fmt.Errorf("argument %s: %w", a.Name, err)
		}
		def := a.Default
		if compat.IsMissing(def) {
			def = nil
		}
		out.AddArgument(NewInputValue(b.opts.Names.Argument(a), a.Description, aref).SetDefault(def))
	}
	t.AddField(out)
	return nil
}

// inputDefault returns the schema default of an input field, or nil.
func inputDefault(f *field.Field) any {
	if !compat.IsMissing(f.Default) {
		return f.Default
	}
	if fn, ok := f.Factory(); ok {
		return fn()
	}
	return nil
}

// typeRef resolves a and checks that it names a type usable in an input or
// output position.
func (b *builder) typeRef(a *annotation.Annotation, input bool) (*TypeRef, error) {
	if a == nil {
		return nil, errors.New("missing type")
	}
	// A field typed with a Go struct names that exact type, whatever package
	// declares it, so it is found by Go type rather than by name in scope.
	if gt := a.NamedGoType(); gt != nil {
		rec, ok := b.reg.Lookup(gt)
		if !ok {
			return nil, fmt.Errorf("type %s is not registered", gt)
		}
		if err := checkUsage(rec, input); err != nil {
			return nil, err
		}
		t, err := annotation.ParseExpr(a.Expr)
		if err != nil {
			return nil, err
		}
		return namedRef(t, rec.Name), nil
	}

	res, err := b.opts.Resolve(a.Expr, a.Scope)
	if err != nil {
		return nil, err
	}
	switch target := res.Target.(type) {
	case annotation.Builtin:
		return namedRef(res.Type, string(target)), nil
	case *types.TypeRecord:
		if rec, ok := b.reg.LookupName(target.Name); !ok || rec != target {
			return nil, fmt.Errorf("type %s is not part of this registry", target.Name)
		}
		if err := checkUsage(target, input); err != nil {
			return nil, err
		}
		return namedRef(res.Type, target.Name), nil
	}
	return nil, fmt.Errorf("%q resolves to %T, not a type", res.Named, res.Target)
}

func checkUsage(rec *types.TypeRecord, input bool) error {
	if (rec.Kind == types.KindInput) != input {
		return fmt.Errorf("%s type %s cannot be used here", rec.Kind, rec.Name)
	}
	return nil
}

// namedRef converts t, renaming its innermost type to named.
func namedRef(t *ast.Type, named string) *TypeRef {
	ref := FromAST(t)
	cur := ref
	for cur.OfType != nil {
		cur = cur.OfType
	}
	cur.Named = named
	return ref
}

func linkPossibleTypes(s *Schema, built []*Type) {
	for _, t := range built {
		if t.Kind != TypeKindObject {
			continue
		}
		for _, iface := range t.Interfaces {
			if it := s.Types[iface]; it != nil {
				it.AddPossibleType(t.Name)
			}
		}
	}
	for _, t := range built {
		slices.Sort(t.PossibleTypes)
	}
}
