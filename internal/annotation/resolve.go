package annotation

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Resolved is the outcome of resolving a type expression.
type Resolved struct {
	// Type is the parsed expression including list and non-null wrappers.
	Type *ast.Type
	// Named is the innermost named type.
	Named string
	// Target is what Named is bound to in the scope.
	Target any
}

// ResolveFunc resolves a type expression in a scope. The schema builder
// accepts one so that callers can substitute their own lookup.
type ResolveFunc func(expr string, scope *Scope) (*Resolved, error)

// UnresolvedReferenceError reports a type name that is not defined in the
// scope an annotation was bound to.
type UnresolvedReferenceError struct {
	Name  string
	Scope string
	Expr  string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("annotation: %q in %q is not defined in scope %s", e.Name, e.Expr, e.Scope)
}

// ParseExpr parses a GraphQL type expression.
func ParseExpr(expr string) (*ast.Type, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: "annotation", Input: "query($v: " + expr + ") { __typename }"})
	if err != nil {
		return nil, fmt.Errorf("annotation: invalid type expression %q: %w", expr, err)
	}
	if len(doc.Operations) != 1 || len(doc.Operations[0].VariableDefinitions) != 1 {
		return nil, fmt.Errorf("annotation: invalid type expression %q", expr)
	}
	return doc.Operations[0].VariableDefinitions[0].Type, nil
}

// Resolve is the default ResolveFunc.
func Resolve(expr string, scope *Scope) (*Resolved, error) {
	t, err := ParseExpr(expr)
	if err != nil {
		return nil, err
	}
	named := t.Name()
	if scope == nil {
		scope = Universe
	}
	target, ok := scope.Lookup(named)
	if !ok {
		return nil, &UnresolvedReferenceError{Name: named, Scope: scope.Name(), Expr: expr}
	}
	return &Resolved{Type: t, Named: named, Target: target}, nil
}
