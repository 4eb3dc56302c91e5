// Package language exposes the slice of gqlparser the engine works with:
// query documents, selections and literal values.
package language

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

type (
	QueryDocument       = ast.QueryDocument
	OperationDefinition = ast.OperationDefinition
	SelectionSet        = ast.SelectionSet
	Field               = ast.Field
	InlineFragment      = ast.InlineFragment
	FragmentSpread      = ast.FragmentSpread
	Directive           = ast.Directive
	DirectiveList       = ast.DirectiveList
	ArgumentList        = ast.ArgumentList
	Value               = ast.Value
)

// Operation is the keyword an operation definition starts with.
type Operation = ast.Operation

const (
	Query        Operation = ast.Query
	Mutation     Operation = ast.Mutation
	Subscription Operation = ast.Subscription
)

// Literal kinds read when coercing arguments.
const (
	Variable     = ast.Variable
	IntValue     = ast.IntValue
	FloatValue   = ast.FloatValue
	StringValue  = ast.StringValue
	BlockValue   = ast.BlockValue
	BooleanValue = ast.BooleanValue
	EnumValue    = ast.EnumValue
	ListValue    = ast.ListValue
	ObjectValue  = ast.ObjectValue
)

func ParseQuery(source string) (*QueryDocument, error) {
	return ParseQueryWithOptions(source, 0)
}

// ParseQueryWithOptions parses source, failing once more than maxTokens
// tokens have been read. Zero means no limit.
func ParseQueryWithOptions(source string, maxTokens int) (*QueryDocument, error) {
	doc, err := parser.ParseQueryWithTokenLimit(&ast.Source{Input: source}, maxTokens)
	if err != nil {
		return nil, err
	}
	return doc, nil
}
