package introspection

import (
	"maps"

	"github.com/hanpama/fieldgraph/internal/schema"
)

var (
	str         = schema.NamedType("String")
	nonNullStr  = schema.NonNullType(schema.NamedType("String"))
	nonNullBool = schema.NonNullType(schema.NamedType("Boolean"))
)

func named(name string) *schema.TypeRef { return schema.NamedType(name) }

func nonNull(name string) *schema.TypeRef { return schema.NonNullType(named(name)) }

// listOf returns [name!]!.
func listOf(name string) *schema.TypeRef {
	return schema.NonNullType(schema.ListType(nonNull(name)))
}

// includeDeprecated is the argument shared by the list fields that skip
// deprecated entries by default.
func includeDeprecated() *schema.InputValue {
	return schema.NewInputValue("includeDeprecated", "", named("Boolean")).SetDefault(false)
}

// extend returns a copy of s with the introspection types and the __schema
// and __type root fields. s itself is not modified.
func extend(s *schema.Schema) *schema.Schema {
	out := schema.NewSchema(s.Description)
	out.QueryType, out.MutationType, out.SubscriptionType = s.QueryType, s.MutationType, s.SubscriptionType
	maps.Copy(out.Types, s.Types)
	maps.Copy(out.Directives, s.Directives)
	for _, t := range metaTypes() {
		out.AddType(t)
	}

	if q := s.GetQueryType(); q != nil {
		root := *q
		root.Fields = append(q.Fields[:len(q.Fields):len(q.Fields)],
			schema.NewField("__schema", "Access the current type schema of this server.", nonNull("__Schema")),
			schema.NewField("__type", "Request the type information of a single type.", named("__Type")).
				AddArgument(schema.NewInputValue("name", "", nonNullStr)),
		)
		out.AddType(&root)
	}
	return out
}

func metaTypes() []*schema.Type {
	obj := func(name, desc string, fields ...*schema.Field) *schema.Type {
		t := schema.NewType(name, schema.TypeKindObject, desc)
		for _, f := range fields {
			t.AddField(f)
		}
		return t
	}
	field := schema.NewField

	typeKind := schema.NewType("__TypeKind", schema.TypeKindEnum, "An enum describing what kind of type a given `__Type` is.")
	for _, k := range []schema.TypeKind{
		schema.TypeKindScalar, schema.TypeKindObject, schema.TypeKindInterface,
		schema.TypeKindUnion, schema.TypeKindEnum, schema.TypeKindInputObject,
	} {
		typeKind.AddEnumValue(&schema.EnumValue{Name: string(k)})
	}
	typeKind.AddEnumValue(&schema.EnumValue{Name: string(schema.TypeRefKindList)})
	typeKind.AddEnumValue(&schema.EnumValue{Name: string(schema.TypeRefKindNonNull)})

	location := schema.NewType("__DirectiveLocation", schema.TypeKindEnum,
		"A Directive can be adjacent to many parts of the GraphQL language.")
	for _, l := range directiveLocations {
		location.AddEnumValue(&schema.EnumValue{Name: l})
	}

	return []*schema.Type{
		obj("__Schema", "A GraphQL Schema defines the capabilities of a GraphQL server.",
			field("description", "", str),
			field("types", "A list of all types supported by this server.", listOf("__Type")),
			field("queryType", "The type that query operations will be rooted at.", nonNull("__Type")),
			field("mutationType", "", named("__Type")),
			field("subscriptionType", "", named("__Type")),
			field("directives", "A list of all directives supported by this server.", listOf("__Directive")),
		),
		obj("__Type", "",
			field("kind", "", nonNull("__TypeKind")),
			field("name", "", str),
			field("description", "", str),
			field("specifiedByURL", "", str),
			field("fields", "", schema.ListType(nonNull("__Field"))).AddArgument(includeDeprecated()),
			field("interfaces", "", schema.ListType(nonNull("__Type"))),
			field("possibleTypes", "", schema.ListType(nonNull("__Type"))),
			field("enumValues", "", schema.ListType(nonNull("__EnumValue"))).AddArgument(includeDeprecated()),
			field("inputFields", "", schema.ListType(nonNull("__InputValue"))).AddArgument(includeDeprecated()),
			field("ofType", "", named("__Type")),
			field("isOneOf", "", named("Boolean")),
		),
		obj("__Field", "",
			field("name", "", nonNullStr),
			field("description", "", str),
			field("args", "", listOf("__InputValue")).AddArgument(includeDeprecated()),
			field("type", "", nonNull("__Type")),
			field("isDeprecated", "", nonNullBool),
			field("deprecationReason", "", str),
		),
		obj("__InputValue", "",
			field("name", "", nonNullStr),
			field("description", "", str),
			field("type", "", nonNull("__Type")),
			field("defaultValue", "A GraphQL-formatted string representing the default value for this input value.", str),
			field("isDeprecated", "", nonNullBool),
			field("deprecationReason", "", str),
		),
		obj("__EnumValue", "",
			field("name", "", nonNullStr),
			field("description", "", str),
			field("isDeprecated", "", nonNullBool),
			field("deprecationReason", "", str),
		),
		obj("__Directive", "",
			field("name", "", nonNullStr),
			field("description", "", str),
			field("isRepeatable", "", nonNullBool),
			field("locations", "", listOf("__DirectiveLocation")),
			field("args", "", listOf("__InputValue")).AddArgument(includeDeprecated()),
		),
		typeKind,
		location,
	}
}

var directiveLocations = []string{
	"QUERY", "MUTATION", "SUBSCRIPTION", "FIELD", "FRAGMENT_DEFINITION",
	"FRAGMENT_SPREAD", "INLINE_FRAGMENT", "VARIABLE_DEFINITION",
	"SCHEMA", "SCALAR", "OBJECT", "FIELD_DEFINITION", "ARGUMENT_DEFINITION",
	"INTERFACE", "UNION", "ENUM", "ENUM_VALUE", "INPUT_OBJECT", "INPUT_FIELD_DEFINITION",
}
