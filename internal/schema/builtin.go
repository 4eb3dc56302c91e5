package schema

import "slices"

func scalar(name, desc string) *Type {
	return &Type{Name: name, Kind: TypeKindScalar, Description: desc}
}

// Built-in scalars and directives are shared by every Schema and never
// rendered. Identity, not name, marks them as built in, so a user type
// that shadows one of the names is still printed.
var (
	builtinScalars = []*Type{
		scalar("String", "The `String` scalar type represents textual data, represented as UTF-8 character sequences."),
		scalar("Int", "The `Int` scalar type represents non-fractional signed whole numeric values."),
		scalar("Float", "The `Float` scalar type represents signed double-precision fractional values."),
		scalar("Boolean", "The `Boolean` scalar type represents `true` or `false`."),
		scalar("ID", "The `ID` scalar type represents a unique identifier, often used to refetch an object or as a key for caching."),
	}

	builtinDirectives = []*Directive{
		conditionDirective("include", "include this field or fragment only when the `if` argument is true", "Included when true."),
		conditionDirective("skip", "skip this field or fragment when the `if` argument is true", "Skipped when true."),
		{
			Name:        "deprecated",
			Description: "Marks an element of a GraphQL schema as no longer supported.",
			Arguments: []*InputValue{
				NewInputValue("reason", "Explains why this element was deprecated.", NamedType("String")).
					SetDefault("No longer supported"),
			},
			Locations: []string{"FIELD_DEFINITION", "ARGUMENT_DEFINITION", "INPUT_FIELD_DEFINITION", "ENUM_VALUE"},
		},
	}
)

// conditionDirective builds @include and @skip, which differ only in wording.
func conditionDirective(name, does, ifDesc string) *Directive {
	return &Directive{
		Name:        name,
		Description: "Directs the executor to " + does + ".",
		Arguments:   []*InputValue{NewInputValue("if", ifDesc, NonNullType(NamedType("Boolean")))},
		Locations:   []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
	}
}

func addBuiltins(s *Schema) {
	for _, t := range builtinScalars {
		s.AddType(t)
	}
	for _, d := range builtinDirectives {
		s.AddDirective(d)
	}
}

func isBuiltinType(t *Type) bool { return slices.Contains(builtinScalars, t) }

func isBuiltinDirective(d *Directive) bool { return slices.Contains(builtinDirectives, d) }
