// Package introspection answers __schema and __type queries on top of
// another runtime.
package introspection

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/hanpama/fieldgraph/internal/executor"
	"github.com/hanpama/fieldgraph/internal/schema"
)

// Runtime resolves the introspection types and delegates every other field
// to the wrapped runtime.
type Runtime struct {
	executor.Runtime
	schema *schema.Schema
}

// Wrap returns a runtime answering introspection for s, and the schema to
// execute against: s extended with the introspection types.
func Wrap(base executor.Runtime, s *schema.Schema) (*Runtime, *schema.Schema) {
	ext := extend(s)
	return &Runtime{Runtime: base, schema: ext}, ext
}

func (r *Runtime) ResolveSync(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	switch objectType {
	case "__Schema":
		return r.schemaField(field)
	case "__Type":
		return r.typeField(source, field, args)
	case "__Field":
		return fieldField(source.(*schema.Field), field, args)
	case "__InputValue":
		return inputValueField(source.(*schema.InputValue), field)
	case "__EnumValue":
		return enumValueField(source.(*schema.EnumValue), field)
	case "__Directive":
		return directiveField(source.(*schema.Directive), field, args)
	case r.schema.QueryType:
		switch field {
		case "__schema":
			return r.schema, nil
		case "__type":
			name, _ := args["name"].(string)
			if t := r.schema.Types[name]; t != nil {
				return t, nil
			}
			return nil, nil
		}
	}
	return r.Runtime.ResolveSync(ctx, objectType, field, source, args)
}

func unknownField(typ, field string) error {
	return fmt.Errorf("introspection: %s has no field %s", typ, field)
}

func (r *Runtime) schemaField(field string) (any, error) {
	s := r.schema
	switch field {
	case "description":
		return optional(s.Description), nil
	case "types":
		types := slices.Collect(maps.Values(s.Types))
		slices.SortFunc(types, func(a, b *schema.Type) int { return cmp.Compare(a.Name, b.Name) })
		return types, nil
	case "queryType":
		return s.GetQueryType(), nil
	case "mutationType":
		return nilIfAbsent(s.GetMutationType()), nil
	case "subscriptionType":
		return nilIfAbsent(s.GetSubscriptionType()), nil
	case "directives":
		dirs := slices.Collect(maps.Values(s.Directives))
		slices.SortFunc(dirs, func(a, b *schema.Directive) int { return cmp.Compare(a.Name, b.Name) })
		return dirs, nil
	}
	return nil, unknownField("__Schema", field)
}

// typeField resolves __Type fields. Named types are *schema.Type; list and
// non-null wrappers stay *schema.TypeRef.
func (r *Runtime) typeField(source any, field string, args map[string]any) (any, error) {
	if ref, ok := source.(*schema.TypeRef); ok {
		if ref.Kind == schema.TypeRefKindNamed {
			return r.typeField(r.schema.Types[ref.Named], field, args)
		}
		switch field {
		case "kind":
			return string(ref.Kind), nil
		case "ofType":
			return r.wrap(ref.OfType), nil
		}
		return nil, nil
	}

	t, _ := source.(*schema.Type)
	if t == nil {
		return nil, nil
	}
	withDeprecated, _ := args["includeDeprecated"].(bool)
	switch field {
	case "kind":
		return string(t.Kind), nil
	case "name":
		return t.Name, nil
	case "description":
		return optional(t.Description), nil
	case "specifiedByURL":
		if t.SpecifiedByURL == nil {
			return nil, nil
		}
		return *t.SpecifiedByURL, nil
	case "fields":
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			return nil, nil
		}
		return filter(t.Fields, func(f *schema.Field) bool {
			return !schema.IsReserved(f.Name) && (withDeprecated || !f.IsDeprecated)
		}), nil
	case "interfaces":
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			return nil, nil
		}
		return r.lookup(t.Interfaces), nil
	case "possibleTypes":
		if !t.Kind.IsAbstract() {
			return nil, nil
		}
		return r.lookup(t.PossibleTypes), nil
	case "enumValues":
		if t.Kind != schema.TypeKindEnum {
			return nil, nil
		}
		return filter(t.EnumValues, func(v *schema.EnumValue) bool { return withDeprecated || !v.IsDeprecated }), nil
	case "inputFields":
		if t.Kind != schema.TypeKindInputObject {
			return nil, nil
		}
		return filter(t.InputFields, func(v *schema.InputValue) bool { return withDeprecated || !v.IsDeprecated }), nil
	case "ofType":
		return nil, nil
	case "isOneOf":
		if t.Kind != schema.TypeKindInputObject {
			return nil, nil
		}
		return t.OneOf, nil
	}
	return nil, unknownField("__Type", field)
}

// wrap returns the __Type value of ref.
func (r *Runtime) wrap(ref *schema.TypeRef) any {
	if ref == nil {
		return nil
	}
	if ref.Kind == schema.TypeRefKindNamed {
		return nilIfAbsent(r.schema.Types[ref.Named])
	}
	return ref
}

func (r *Runtime) lookup(names []string) []*schema.Type {
	out := make([]*schema.Type, 0, len(names))
	for _, name := range names {
		if t := r.schema.Types[name]; t != nil {
			out = append(out, t)
		}
	}
	return out
}

func fieldField(f *schema.Field, field string, args map[string]any) (any, error) {
	switch field {
	case "name":
		return f.Name, nil
	case "description":
		return optional(f.Description), nil
	case "args":
		withDeprecated, _ := args["includeDeprecated"].(bool)
		return filter(f.Arguments, func(v *schema.InputValue) bool { return withDeprecated || !v.IsDeprecated }), nil
	case "type":
		return f.Type, nil
	case "isDeprecated":
		return f.IsDeprecated, nil
	case "deprecationReason":
		return deprecation(f.IsDeprecated, f.DeprecationReason), nil
	}
	return nil, unknownField("__Field", field)
}

func inputValueField(v *schema.InputValue, field string) (any, error) {
	switch field {
	case "name":
		return v.Name, nil
	case "description":
		return optional(v.Description), nil
	case "type":
		return v.Type, nil
	case "defaultValue":
		if v.DefaultValue == nil {
			return nil, nil
		}
		return schema.RenderValue(v.DefaultValue), nil
	case "isDeprecated":
		return v.IsDeprecated, nil
	case "deprecationReason":
		return deprecation(v.IsDeprecated, v.DeprecationReason), nil
	}
	return nil, unknownField("__InputValue", field)
}

func enumValueField(v *schema.EnumValue, field string) (any, error) {
	switch field {
	case "name":
		return v.Name, nil
	case "description":
		return optional(v.Description), nil
	case "isDeprecated":
		return v.IsDeprecated, nil
	case "deprecationReason":
		return deprecation(v.IsDeprecated, v.DeprecationReason), nil
	}
	return nil, unknownField("__EnumValue", field)
}

func directiveField(d *schema.Directive, field string, args map[string]any) (any, error) {
	switch field {
	case "name":
		return d.Name, nil
	case "description":
		return optional(d.Description), nil
	case "isRepeatable":
		return d.IsRepeatable, nil
	case "locations":
		return d.Locations, nil
	case "args":
		withDeprecated, _ := args["includeDeprecated"].(bool)
		return filter(d.Arguments, func(v *schema.InputValue) bool { return withDeprecated || !v.IsDeprecated }), nil
	}
	return nil, unknownField("__Directive", field)
}

// optional maps an empty description to null.
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func deprecation(deprecated bool, reason string) any {
	if !deprecated {
		return nil
	}
	return reason
}

// nilIfAbsent keeps a missing type from becoming a typed nil.
func nilIfAbsent(t *schema.Type) any {
	if t == nil {
		return nil
	}
	return t
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
