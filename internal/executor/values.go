package executor

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/hanpama/fieldgraph/internal/language"
	"github.com/hanpama/fieldgraph/internal/schema"
)

// coerceVariableValues coerces the provided variables against the operation's
// variable definitions.
func coerceVariableValues(s *schema.Schema, operation *language.OperationDefinition, provided map[string]any) (map[string]any, error) {
	coerced := map[string]any{}
	for _, def := range operation.VariableDefinitions {
		name := def.Variable
		val, ok := provided[name]
		if !ok {
			switch {
			case def.DefaultValue != nil:
				val = valueFromAST(def.DefaultValue, nil)
			case def.Type.NonNull:
				return nil, gqlerror.Errorf("variable $%s of required type %s was not provided", name, def.Type)
			default:
				continue
			}
		}
		cv, err := coerceValue(s, val, schema.FromAST(def.Type))
		if err != nil {
			return nil, gqlerror.Errorf("variable $%s of type %s: %v", name, def.Type, err)
		}
		coerced[name] = cv
	}
	return coerced, nil
}

// coerceArgumentValues coerces the arguments of one field. Problems are
// recorded as errors at path and the argument is left out.
func coerceArgumentValues(state *executionState, def *schema.Field, arguments language.ArgumentList, path ast.Path) map[string]any {
	coerced := map[string]any{}
	for _, argDef := range def.Arguments {
		arg := arguments.ForName(argDef.Name)
		if arg == nil || (arg.Value.Kind == language.Variable && !hasVariable(state, arg.Value.Raw)) {
			switch {
			case argDef.DefaultValue != nil:
				coerced[argDef.Name] = argDef.DefaultValue
			case schema.IsNonNull(argDef.Type):
				state.addError(path, fmt.Errorf("argument %q of required type %s was not provided", argDef.Name, argDef.Type))
			}
			continue
		}
		cv, err := coerceValue(state.schema, valueFromAST(arg.Value, state.variableValues), argDef.Type)
		if err != nil {
			state.addError(path, fmt.Errorf("argument %q: %w", argDef.Name, err))
			continue
		}
		coerced[argDef.Name] = cv
	}
	return coerced
}

func hasVariable(state *executionState, name string) bool {
	_, ok := state.variableValues[name]
	return ok
}

// valueFromAST converts a literal to a Go value, substituting variables.
func valueFromAST(value *language.Value, variables map[string]any) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.Variable:
		return variables[value.Raw]
	case language.IntValue:
		if iv, err := strconv.ParseInt(value.Raw, 10, 64); err == nil {
			return int(iv)
		}
		return nil
	case language.FloatValue:
		fv, _ := strconv.ParseFloat(value.Raw, 64)
		return fv
	case language.StringValue, language.BlockValue, language.EnumValue:
		return value.Raw
	case language.BooleanValue:
		return value.Raw == "true"
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = valueFromAST(c.Value, variables)
		}
		return out
	case language.ObjectValue:
		out := make(map[string]any, len(value.Children))
		for _, c := range value.Children {
			out[c.Name] = valueFromAST(c.Value, variables)
		}
		return out
	}
	return nil
}

// coerceValue coerces an input value to the given type.
func coerceValue(s *schema.Schema, value any, t *schema.TypeRef) (any, error) {
	if schema.IsNonNull(t) {
		if value == nil {
			return nil, fmt.Errorf("expected a value of type %s, got null", t)
		}
		return coerceValue(s, value, schema.Unwrap(t))
	}
	if value == nil {
		return nil, nil
	}
	if schema.IsList(t) {
		inner := schema.Unwrap(t)
		items, ok := value.([]any)
		if !ok {
			// a single item is coerced to a list of one
			items = []any{value}
		}
		out := make([]any, len(items))
		for i, item := range items {
			cv, err := coerceValue(s, item, inner)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			out[i] = cv
		}
		return out, nil
	}

	named := schema.GetNamedType(t)
	switch named {
	case "Int":
		return coerceInt(value)
	case "Float":
		return coerceFloat(value)
	case "String":
		if v, ok := value.(string); ok {
			return v, nil
		}
		return nil, fmt.Errorf("cannot use %v as String", value)
	case "Boolean":
		if v, ok := value.(bool); ok {
			return v, nil
		}
		return nil, fmt.Errorf("cannot use %v as Boolean", value)
	case "ID":
		switch v := value.(type) {
		case string:
			return v, nil
		case int:
			return strconv.Itoa(v), nil
		case float64:
			if v == math.Trunc(v) {
				return strconv.FormatInt(int64(v), 10), nil
			}
		}
		return nil, fmt.Errorf("cannot use %v as ID", value)
	}

	typ := s.Types[named]
	if typ == nil {
		return nil, fmt.Errorf("unknown type %s", named)
	}
	switch typ.Kind {
	case schema.TypeKindInputObject:
		return coerceInputObject(s, typ, value)
	case schema.TypeKindEnum:
		name, ok := value.(string)
		if !ok || !slices.ContainsFunc(typ.EnumValues, func(ev *schema.EnumValue) bool { return ev.Name == name }) {
			return nil, fmt.Errorf("%v is not a value of enum %s", value, typ.Name)
		}
		return name, nil
	}
	return value, nil
}

// coerceInputObject coerces value to an input object, applying field
// defaults for absent keys.
func coerceInputObject(s *schema.Schema, typ *schema.Type, value any) (map[string]any, error) {
	in, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object for %s, got %T", typ.Name, value)
	}
	for key := range in {
		if !slices.ContainsFunc(typ.InputFields, func(f *schema.InputValue) bool { return f.Name == key }) {
			return nil, fmt.Errorf("field %q is not defined by type %s", key, typ.Name)
		}
	}
	out := make(map[string]any, len(typ.InputFields))
	for _, f := range typ.InputFields {
		v, present := in[f.Name]
		if !present {
			switch {
			case f.DefaultValue != nil:
				out[f.Name] = f.DefaultValue
			case schema.IsNonNull(f.Type):
				return nil, fmt.Errorf("field %s.%s of required type %s was not provided", typ.Name, f.Name, f.Type)
			}
			continue
		}
		cv, err := coerceValue(s, v, f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", typ.Name, f.Name, err)
		}
		out[f.Name] = cv
	}
	return out, nil
}

func coerceInt(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		// JSON numbers arrive as float64
		if v == math.Trunc(v) && v >= math.MinInt32 && v <= math.MaxInt32 {
			return int(v), nil
		}
	}
	return nil, fmt.Errorf("cannot use %v as Int", value)
}

func coerceFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return nil, fmt.Errorf("cannot use %v as Float", value)
}
