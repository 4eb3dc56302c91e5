package schema

import (
	"reflect"
	"slices"
	"sync"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/hanpama/fieldgraph/internal/field"
	"github.com/hanpama/fieldgraph/internal/language"
	"github.com/hanpama/fieldgraph/internal/types"
)

// Schema is an executable GraphQL schema.
type Schema struct {
	QueryType        string
	MutationType     string
	SubscriptionType string
	Types            map[string]*Type // All named types keyed by name
	Directives       map[string]*Directive
	Description      string

	astOnce sync.Once
	ast     *ast.Schema
	astErr  error
}

func NewSchema(description string) *Schema {
	return &Schema{
		Types:       map[string]*Type{},
		Directives:  map[string]*Directive{},
		Description: description,
	}
}

func (s *Schema) SetQueryType(name string) *Schema {
	s.QueryType = name
	return s
}

func (s *Schema) SetMutationType(name string) *Schema {
	s.MutationType = name
	return s
}

func (s *Schema) SetSubscriptionType(name string) *Schema {
	s.SubscriptionType = name
	return s
}

// AddType adds t, replacing a type with the same name.
func (s *Schema) AddType(t *Type) *Schema {
	if s.Types == nil {
		s.Types = map[string]*Type{}
	}
	s.Types[t.Name] = t
	return s
}

func (s *Schema) AddDirective(d *Directive) *Schema {
	if s.Directives == nil {
		s.Directives = map[string]*Directive{}
	}
	s.Directives[d.Name] = d
	return s
}

// GetQueryType returns the root query type (may be nil if absent)
func (s *Schema) GetQueryType() *Type { return s.Types[s.QueryType] }

// GetMutationType returns the root mutation type (may be nil if absent)
func (s *Schema) GetMutationType() *Type { return s.Types[s.MutationType] }

// GetSubscriptionType returns the root subscription type (may be nil if absent)
func (s *Schema) GetSubscriptionType() *Type { return s.Types[s.SubscriptionType] }

// RootType returns the root type of an operation kind.
func (s *Schema) RootType(op language.Operation) *Type {
	switch op {
	case language.Query:
		return s.GetQueryType()
	case language.Mutation:
		return s.GetMutationType()
	case language.Subscription:
		return s.GetSubscriptionType()
	}
	return nil
}

// TypeForGo returns the type built from the Go type t.
func (s *Schema) TypeForGo(t reflect.Type) *Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	for _, typ := range s.Types {
		if typ.Record != nil && typ.Record.GoType == t {
			return typ
		}
	}
	return nil
}

// Type is a named GraphQL type (object, interface, union, scalar, enum, input)
type Type struct {
	Name           string
	Kind           TypeKind
	Description    string
	Fields         []*Field      // For OBJECT and INTERFACE
	Interfaces     []string      // For OBJECT and INTERFACE (implemented/extended)
	PossibleTypes  []string      // For INTERFACE and UNION
	EnumValues     []*EnumValue  // For ENUM
	InputFields    []*InputValue // For INPUT_OBJECT
	SpecifiedByURL *string
	OneOf          bool

	// Record is the declaration the type was built from.
	Record *types.TypeRecord `json:"-"`
}

func NewType(name string, kind TypeKind, description string) *Type {
	return &Type{Name: name, Kind: kind, Description: description}
}

func (t *Type) AddField(f *Field) *Type {
	t.Fields = append(t.Fields, f)
	return t
}

func (t *Type) AddInterface(name string) *Type {
	if !slices.Contains(t.Interfaces, name) {
		t.Interfaces = append(t.Interfaces, name)
	}
	return t
}

func (t *Type) AddPossibleType(name string) *Type {
	if !slices.Contains(t.PossibleTypes, name) {
		t.PossibleTypes = append(t.PossibleTypes, name)
	}
	return t
}

func (t *Type) AddInputField(v *InputValue) *Type {
	t.InputFields = append(t.InputFields, v)
	return t
}

func (t *Type) AddEnumValue(v *EnumValue) *Type {
	t.EnumValues = append(t.EnumValues, v)
	return t
}

func (t *Type) SetOneOf(oneOf bool) *Type {
	t.OneOf = oneOf
	return t
}

// FieldByName returns the field named name, or nil.
func (t *Type) FieldByName(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Implements reports whether t is, implements or is a member of the
// abstract type named abstract.
func (s *Schema) Implements(t *Type, abstract string) bool {
	if t.Name == abstract {
		return true
	}
	if slices.Contains(t.Interfaces, abstract) {
		return true
	}
	if a := s.Types[abstract]; a != nil && a.Kind == TypeKindUnion {
		return slices.Contains(a.PossibleTypes, t.Name)
	}
	return false
}

// Field represents a field on an object or interface
type Field struct {
	Name              string
	Description       string
	Type              *TypeRef
	Arguments         []*InputValue
	Async             bool
	IsDeprecated      bool
	DeprecationReason string

	// Descriptor is the merged field descriptor the field was built from.
	Descriptor *field.Field `json:"-"`
}

func NewField(name, description string, typ *TypeRef) *Field {
	return &Field{Name: name, Description: description, Type: typ}
}

// SetAsync marks fields that are resolved in batches.
func (f *Field) SetAsync(async bool) *Field {
	f.Async = async
	return f
}

func (f *Field) Deprecate(reason string) *Field {
	f.IsDeprecated = true
	f.DeprecationReason = reason
	return f
}

func (f *Field) AddArgument(v *InputValue) *Field {
	f.Arguments = append(f.Arguments, v)
	return f
}

// TypeKind represents the kind of GraphQL type
type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
)

// IsAbstract reports whether values of the kind need type resolution.
func (k TypeKind) IsAbstract() bool {
	return k == TypeKindInterface || k == TypeKindUnion
}

// TypeRef represents a reference to a type (can be wrapped)
type TypeRef struct {
	Kind   TypeRefKind
	OfType *TypeRef // For List and NonNull
	Named  string   // For named types
}

type TypeRefKind string

const (
	TypeRefKindNamed   TypeRefKind = "NAMED"
	TypeRefKindList    TypeRefKind = "LIST"
	TypeRefKindNonNull TypeRefKind = "NON_NULL"
)

func (t *TypeRef) IsNonNull() bool {
	return t != nil && t.Kind == TypeRefKindNonNull
}

// IsList reports whether t is a list, possibly wrapped in Non-Null.
func (t *TypeRef) IsList() bool {
	if t.Kind == TypeRefKindNonNull && t.OfType != nil {
		t = t.OfType
	}
	return t.Kind == TypeRefKindList
}

// Unwrap removes one layer of Non-Null or List wrapping.
func (t *TypeRef) Unwrap() *TypeRef {
	if t.Kind == TypeRefKindNonNull || t.Kind == TypeRefKindList {
		return t.OfType
	}
	return t
}

// GetNamedType returns the innermost type name.
func (t *TypeRef) GetNamedType() string {
	for cur := t; cur != nil; cur = cur.OfType {
		if cur.Named != "" {
			return cur.Named
		}
	}
	return ""
}

func (t *TypeRef) String() string { return renderTypeRef(t) }

type EnumValue struct {
	Name              string
	Description       string
	IsDeprecated      bool
	DeprecationReason string
}

type InputValue struct {
	Name              string
	Description       string
	Type              *TypeRef
	DefaultValue      any
	IsDeprecated      bool
	DeprecationReason string

	// GoName is the declared field name for input object fields.
	GoName string `json:"-"`
}

func NewInputValue(name, description string, typ *TypeRef) *InputValue {
	return &InputValue{Name: name, Description: description, Type: typ}
}

// SetDefault sets the default value; nil means none.
func (v *InputValue) SetDefault(def any) *InputValue {
	v.DefaultValue = def
	return v
}

type Directive struct {
	Name         string
	Description  string
	Locations    []string
	Arguments    []*InputValue
	IsRepeatable bool
}

func NonNullType(t *TypeRef) *TypeRef { return &TypeRef{Kind: TypeRefKindNonNull, OfType: t} }
func ListType(t *TypeRef) *TypeRef    { return &TypeRef{Kind: TypeRefKindList, OfType: t} }
func NamedType(name string) *TypeRef  { return &TypeRef{Kind: TypeRefKindNamed, Named: name} }

// FromAST converts a parsed type expression.
func FromAST(t *ast.Type) *TypeRef {
	if t == nil {
		return nil
	}
	var ref *TypeRef
	if t.Elem != nil {
		ref = ListType(FromAST(t.Elem))
	} else {
		ref = NamedType(t.NamedType)
	}
	if t.NonNull {
		ref = NonNullType(ref)
	}
	return ref
}

func IsNonNull(t *TypeRef) bool { return t != nil && t.IsNonNull() }

func IsList(t *TypeRef) bool { return t != nil && t.IsList() }

func Unwrap(t *TypeRef) *TypeRef { return t.Unwrap() }

func GetNamedType(t *TypeRef) string { return t.GetNamedType() }
