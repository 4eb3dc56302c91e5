package executor

import (
	"context"
	"fmt"
	"sync"
)

type stubResolver func(source any, args map[string]any) (any, error)

func value(v any) stubResolver {
	return func(any, map[string]any) (any, error) { return v, nil }
}

func fail(err error) stubResolver {
	return func(any, map[string]any) (any, error) { return nil, err }
}

// call records one async resolution. Calls in the same batch share Batch.
type call struct {
	Field string
	Args  map[string]any
	Batch int
}

// stubRuntime resolves async fields through resolvers keyed by
// "Type.field" and sync fields by reading map sources.
type stubRuntime struct {
	mu        sync.Mutex
	resolvers map[string]stubResolver
	calls     []call
	batches   int
	syncCalls int
}

func newStubRuntime(resolvers map[string]stubResolver) *stubRuntime {
	return &stubRuntime{resolvers: resolvers}
}

func (r *stubRuntime) ResolveSync(_ context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	r.mu.Lock()
	r.syncCalls++
	fn := r.resolvers[objectType+"."+field]
	r.mu.Unlock()
	if fn != nil {
		return fn(source, args)
	}
	m, ok := source.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("cannot read %s.%s from %T", objectType, field, source)
	}
	return m[field], nil
}

func (r *stubRuntime) BatchResolveAsync(_ context.Context, tasks []AsyncResolveTask) []AsyncResolveResult {
	r.mu.Lock()
	r.batches++
	batch := r.batches
	for _, t := range tasks {
		r.calls = append(r.calls, call{Field: t.ObjectType + "." + t.Field, Args: t.Args, Batch: batch})
	}
	r.mu.Unlock()

	out := make([]AsyncResolveResult, len(tasks))
	for i, t := range tasks {
		fn := r.resolvers[t.ObjectType+"."+t.Field]
		if fn == nil {
			out[i].Error = fmt.Errorf("no resolver for %s.%s", t.ObjectType, t.Field)
			continue
		}
		out[i].Value, out[i].Error = fn(t.Source, t.Args)
	}
	return out
}

func (r *stubRuntime) ResolveType(_ context.Context, abstractType string, v any) (string, error) {
	if m, ok := v.(map[string]any); ok {
		if name, ok := m["__typename"].(string); ok {
			return name, nil
		}
	}
	return "", fmt.Errorf("cannot resolve concrete type of %s", abstractType)
}

func (r *stubRuntime) SerializeLeafValue(_ context.Context, _ string, v any) (any, error) {
	return v, nil
}

func (r *stubRuntime) Calls() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]call(nil), r.calls...)
}
