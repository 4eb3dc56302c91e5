package executor

import (
	"context"
)

// Runtime is the host integration surface of the Executor.
//
// The Executor runs breadth first. At each depth it resolves sync fields
// immediately through ResolveSync, then hands every async field found at
// that depth to a single BatchResolveAsync call. ResolveSync is never called
// for async fields.
//
// Errors returned by any method become GraphQL errors located at the field's
// response path. Implementations must be safe for concurrent use by separate
// operations and must not mutate sources or arguments.
type Runtime interface {
	// ResolveSync resolves a field that has no resolver of its own, usually
	// by reading it off the source value. (nil, nil) is a GraphQL null.
	ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error)

	// BatchResolveAsync resolves one depth of async fields. It must return
	// exactly one result per task, in task order. A failing element does not
	// fail the others.
	BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult

	// ResolveType returns the concrete object type name of a value whose
	// declared type is an interface or union.
	ResolveType(ctx context.Context, abstractType string, value any) (string, error)

	// SerializeLeafValue converts a scalar or enum value to a JSON-safe value.
	SerializeLeafValue(ctx context.Context, typeName string, value any) (any, error)
}

type AsyncResolveTask struct {
	// ObjectType is the parent GraphQL object type name.
	ObjectType string
	Field      string
	// Source is the parent value; the root value for root fields.
	Source any
	// Args are coerced and keyed by GraphQL argument name.
	Args map[string]any
}

type AsyncResolveResult struct {
	Value any
	Error error
}
