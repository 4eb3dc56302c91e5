// Package nativert resolves fields through the descriptors a schema was
// built from. Fields with a resolver call it; other fields are read off the
// source value, a struct or a map.
package nativert

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hanpama/fieldgraph/internal/eventbus"
	"github.com/hanpama/fieldgraph/internal/events"
	"github.com/hanpama/fieldgraph/internal/executor"
	"github.com/hanpama/fieldgraph/internal/schema"
)

// Runtime implements executor.Runtime for schemas built by schema.Build.
type Runtime struct {
	schema      *schema.Schema
	concurrency int
	logger      *slog.Logger
}

var _ executor.Runtime = (*Runtime)(nil)

type Option func(*Runtime)

// WithConcurrency bounds the number of resolvers running at once within a
// batch. Values below one mean one.
func WithConcurrency(n int) Option {
	return func(r *Runtime) { r.concurrency = max(n, 1) }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) { r.logger = l }
}

func New(s *schema.Schema, opts ...Option) *Runtime {
	r := &Runtime{
		schema:      s,
		concurrency: runtime.GOMAXPROCS(0),
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runtime) field(objectType, name string) (*schema.Field, error) {
	t := r.schema.Types[objectType]
	if t == nil {
		return nil, fmt.Errorf("nativert: unknown type %s", objectType)
	}
	f := t.FieldByName(name)
	if f == nil {
		return nil, fmt.Errorf("nativert: type %s has no field %s", objectType, name)
	}
	return f, nil
}

// ResolveSync reads the field off source.
func (r *Runtime) ResolveSync(ctx context.Context, objectType, name string, source any, args map[string]any) (any, error) {
	f, err := r.field(objectType, name)
	if err != nil {
		return nil, err
	}
	if f.Descriptor != nil && f.Descriptor.Resolver != nil {
		return f.Descriptor.Resolver(ctx, source, args)
	}
	goName := name
	if f.Descriptor != nil {
		goName = f.Descriptor.Name
	}
	return readField(source, name, goName)
}

// BatchResolveAsync calls the resolvers of tasks concurrently.
func (r *Runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	results := make([]executor.AsyncResolveResult, len(tasks))
	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, task := range tasks {
		g.Go(func() error {
			results[i].Value, results[i].Error = r.resolve(ctx, task)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (r *Runtime) resolve(ctx context.Context, task executor.AsyncResolveTask) (value any, err error) {
	f, err := r.field(task.ObjectType, task.Field)
	if err != nil {
		return nil, err
	}
	if f.Descriptor == nil || f.Descriptor.Resolver == nil {
		return r.ResolveSync(ctx, task.ObjectType, task.Field, task.Source, task.Args)
	}

	start := time.Now()
	eventbus.Publish(ctx, events.ResolverStart{ObjectType: task.ObjectType, Field: task.Field})
	defer func() {
		if p := recover(); p != nil {
			r.logger.ErrorContext(ctx, "resolver panicked", "type", task.ObjectType, "field", task.Field, "panic", p)
			value, err = nil, fmt.Errorf("resolver for %s.%s panicked: %v", task.ObjectType, task.Field, p)
		}
		eventbus.Publish(ctx, events.ResolverFinish{
			ObjectType: task.ObjectType,
			Field:      task.Field,
			Err:        err,
			Duration:   time.Since(start),
		})
	}()
	return f.Descriptor.Resolver(ctx, task.Source, task.Args)
}

// ResolveType maps a value to the object type built from its Go type. Maps
// name their type under "__typename".
func (r *Runtime) ResolveType(_ context.Context, abstractType string, value any) (string, error) {
	if m, ok := value.(map[string]any); ok {
		if name, ok := m["__typename"].(string); ok {
			return name, nil
		}
		return "", fmt.Errorf("nativert: map value for %s has no __typename", abstractType)
	}
	if t := r.schema.TypeForGo(reflect.TypeOf(value)); t != nil {
		return t.Name, nil
	}
	return "", fmt.Errorf("nativert: %T is not a registered type of %s", value, abstractType)
}

// SerializeLeafValue converts scalars to their JSON form.
func (r *Runtime) SerializeLeafValue(_ context.Context, typeName string, value any) (any, error) {
	return serializeLeaf(typeName, value)
}
