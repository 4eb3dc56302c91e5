package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/hanpama/fieldgraph/internal/execution"
	"github.com/hanpama/fieldgraph/internal/language"
	"github.com/hanpama/fieldgraph/internal/schema"
)

// executionState holds the state of one operation while it runs.
type executionState struct {
	runtime        Runtime
	schema         *schema.Schema
	document       *language.QueryDocument
	variableValues map[string]any
	ctx            context.Context
	pending        []asyncTask
	errors         gqlerror.List
	// response paths nulled by a Non-Null violation
	nullified map[string]struct{}
}

// asyncTask is a field queued for the next batch.
type asyncTask struct {
	Task AsyncResolveTask
	Path ast.Path
	// Boundary is the nearest nullable ancestor of the field.
	Boundary  ast.Path
	FieldType *schema.TypeRef
	Fields    []*language.Field
}

type asyncPending struct{}

type Executor struct {
	runtime Runtime
	schema  *schema.Schema
	opts    options
}

func NewExecutor(runtime Runtime, schema *schema.Schema, opts ...Option) *Executor {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return &Executor{runtime: runtime, schema: schema, opts: o}
}

// ExecuteRequest runs an already validated document.
func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
) *execution.ExecutionResult {
	operation := document.Operations.ForName(operationName)
	if operation == nil {
		return errorResult(gqlerror.Errorf("operation %q not found", operationName))
	}
	res, err := e.executeOperation(ctx, document, operation, variableValues, initialValue)
	if err != nil {
		return errorResult(err)
	}
	return res
}

// executeOperation runs operation. A non-nil error means no resolver ran.
func (e *Executor) executeOperation(
	ctx context.Context,
	document *language.QueryDocument,
	operation *language.OperationDefinition,
	variableValues map[string]any,
	initialValue any,
) (*execution.ExecutionResult, *gqlerror.Error) {
	coerced, err := coerceVariableValues(e.schema, operation, variableValues)
	if err != nil {
		return nil, gqlerror.WrapIfUnwrapped(err)
	}

	rootType := e.schema.RootType(operation.Operation)
	if rootType == nil {
		return nil, gqlerror.Errorf("schema does not support %s operations", operation.Operation)
	}

	state := &executionState{
		runtime:        e.runtime,
		schema:         e.schema,
		document:       document,
		variableValues: coerced,
		ctx:            ctx,
		nullified:      map[string]struct{}{},
	}

	data := map[string]any{}
	if operation.Operation == language.Mutation {
		// one root field at a time, each fully resolved before the next
		for _, cf := range collectFields(state, rootType, operation.SelectionSet).orderedFields() {
			single := map[string]any{}
			writeField(state, rootType, initialValue, cf, nil, nil, single)
			state.drain(single)
			for k, v := range single {
				data[k] = v
			}
		}
	} else {
		for k, v := range executeSelectionSet(state, rootType, operation.SelectionSet, initialValue, nil, nil) {
			data[k] = v
		}
		state.drain(data)
	}

	if len(state.errors) > 0 {
		e.opts.logger.DebugContext(ctx, "operation finished with errors", "operation", operation.Name, "errors", len(state.errors))
	}
	return &execution.ExecutionResult{Data: data, Errors: state.errors}, nil
}

func errorResult(err *gqlerror.Error) *execution.ExecutionResult {
	return &execution.ExecutionResult{Errors: gqlerror.List{err}}
}

// drain resolves queued async fields one depth at a time until none are
// left.
func (s *executionState) drain(root map[string]any) {
	for len(s.pending) > 0 {
		tasks, results := s.flush()
		for i, r := range results {
			completeAsyncField(s, tasks[i], r, root)
		}
	}
}

// executeSelectionSet executes a selection set without flushing
func executeSelectionSet(state *executionState, objectType *schema.Type, selectionSet language.SelectionSet, objectValue any, path, boundary ast.Path) map[string]any {
	result := map[string]any{}
	for _, cf := range collectFields(state, objectType, selectionSet).orderedFields() {
		if !writeField(state, objectType, objectValue, cf, path, boundary, result) {
			state.markNullified(path)
			return nil
		}
	}
	return result
}

// writeField executes one collected field into result. It reports false
// when a Non-Null violation nulls the enclosing object.
func writeField(state *executionState, objectType *schema.Type, objectValue any, cf collectedField, path, boundary ast.Path, result map[string]any) bool {
	fieldPath := appendPath(path, ast.PathName(cf.ResponseName))
	value := executeFieldGroup(state, objectType, objectValue, cf.Fields, fieldPath, boundary)

	if cf.Fields[0].Name == "__typename" {
		result[cf.ResponseName] = value
		return true
	}
	def := objectType.FieldByName(cf.Fields[0].Name)
	if def == nil {
		return true
	}
	if isNullish(value) {
		if schema.IsNonNull(def.Type) && len(path) > 0 {
			return false
		}
		result[cf.ResponseName] = nil
		return true
	}
	result[cf.ResponseName] = value
	return true
}

func executeFieldGroup(state *executionState, objectType *schema.Type, objectValue any, fields []*language.Field, path, boundary ast.Path) any {
	fieldName := fields[0].Name
	if fieldName == "__typename" {
		return objectType.Name
	}

	def := objectType.FieldByName(fieldName)
	if def == nil {
		state.addError(path, fmt.Errorf("cannot query field %q on type %q", fieldName, objectType.Name))
		return nil
	}

	args := coerceArgumentValues(state, def, fields[0].Arguments, path)

	if !def.Async {
		value, err := state.runtime.ResolveSync(state.ctx, objectType.Name, fieldName, objectValue, args)
		if err != nil {
			state.addError(path, err)
			return nil
		}
		return completeValue(state, def.Type, fields, value, path, boundary)
	}

	state.pending = append(state.pending, asyncTask{
		Task: AsyncResolveTask{
			ObjectType: objectType.Name,
			Field:      fieldName,
			Source:     objectValue,
			Args:       args,
		},
		Path:      path,
		Boundary:  boundary,
		FieldType: def.Type,
		Fields:    fields,
	})
	return asyncPending{}
}

// flush resolves the queued tasks that are still live in one batch.
func (s *executionState) flush() ([]asyncTask, []AsyncResolveResult) {
	live := make([]asyncTask, 0, len(s.pending))
	for _, at := range s.pending {
		if !s.isNullified(at.Path) {
			live = append(live, at)
		}
	}
	s.pending = nil

	tasks := make([]AsyncResolveTask, len(live))
	for i, at := range live {
		tasks[i] = at.Task
	}
	results := s.runtime.BatchResolveAsync(s.ctx, tasks)
	if len(results) != len(tasks) {
		err := fmt.Errorf("runtime returned %d results for %d tasks", len(results), len(tasks))
		results = make([]AsyncResolveResult, len(tasks))
		for i := range results {
			results[i].Error = err
		}
	}
	return live, results
}

// completeAsyncField writes one batch result into the response tree.
func completeAsyncField(state *executionState, at asyncTask, res AsyncResolveResult, root map[string]any) {
	path := at.Path
	if state.isNullified(path) {
		return
	}

	var completed any
	if res.Error != nil {
		state.addError(path, res.Error)
	} else {
		completed = completeValue(state, at.FieldType, at.Fields, res.Value, path, at.Boundary)
	}

	if isNullish(completed) {
		if schema.IsNonNull(at.FieldType) {
			if res.Error == nil && !state.hasErrorUnder(path) {
				state.addError(path, fmt.Errorf("cannot return null for non-nullable field %s", path))
			}
			target := at.Boundary
			if len(target) == 0 {
				target = topLevelFieldPath(path)
			}
			setValueAtPath(root, target, nil)
			state.markNullified(target)
			return
		}
		setValueAtPath(root, path, nil)
		return
	}
	setValueAtPath(root, path, completed)
}

// completeValue completes result against fieldType. boundary is the nearest
// nullable ancestor of path.
func completeValue(state *executionState, fieldType *schema.TypeRef, fields []*language.Field, result any, path, boundary ast.Path) any {
	if _, ok := result.(asyncPending); ok {
		return result
	}
	if schema.IsNonNull(fieldType) {
		if isNullish(result) {
			if !state.hasErrorUnder(path) {
				state.addError(path, fmt.Errorf("cannot return null for non-nullable field %s", path))
			}
			return nil
		}
		return completeNonNull(state, schema.Unwrap(fieldType), fields, result, path, boundary)
	}
	if isNullish(result) {
		return nil
	}
	return completeNonNull(state, fieldType, fields, result, path, path)
}

func completeNonNull(state *executionState, fieldType *schema.TypeRef, fields []*language.Field, result any, path, boundary ast.Path) any {
	if schema.IsList(fieldType) {
		return completeListValue(state, fieldType, fields, result, path, boundary)
	}

	named := schema.GetNamedType(fieldType)
	typ := state.schema.Types[named]
	if typ == nil {
		state.addError(path, fmt.Errorf("unknown type %s", named))
		return nil
	}

	switch typ.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		v, err := state.runtime.SerializeLeafValue(state.ctx, named, result)
		if err != nil {
			state.addError(path, err)
			return nil
		}
		return v
	case schema.TypeKindObject:
		return executeSelectionSet(state, typ, mergeSelectionSets(fields), result, path, boundary)
	case schema.TypeKindInterface, schema.TypeKindUnion:
		return completeAbstractValue(state, typ, fields, result, path, boundary)
	}
	state.addError(path, fmt.Errorf("cannot complete value of type %s", typ.Kind))
	return nil
}

func completeListValue(state *executionState, listType *schema.TypeRef, fields []*language.Field, result any, path, boundary ast.Path) any {
	items, ok := result.([]any)
	if !ok {
		rv := reflect.ValueOf(result)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			state.addError(path, fmt.Errorf("expected a list, got %T", result))
			return nil
		}
		items = make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
	}

	inner := schema.Unwrap(listType)
	out := make([]any, len(items))
	for i, item := range items {
		v := completeValue(state, inner, fields, item, appendPath(path, ast.PathIndex(i)), boundary)
		if isNullish(v) && schema.IsNonNull(inner) {
			state.markNullified(path)
			return nil
		}
		out[i] = v
	}
	return out
}

func completeAbstractValue(state *executionState, abstract *schema.Type, fields []*language.Field, result any, path, boundary ast.Path) any {
	typeName, err := state.runtime.ResolveType(state.ctx, abstract.Name, result)
	if err != nil {
		state.addError(path, err)
		return nil
	}
	objectType := state.schema.Types[typeName]
	if objectType == nil || objectType.Kind != schema.TypeKindObject || !state.schema.Implements(objectType, abstract.Name) {
		state.addError(path, fmt.Errorf("abstract type %s must resolve to an object type that implements it, got %q", abstract.Name, typeName))
		return nil
	}
	return executeSelectionSet(state, objectType, mergeSelectionSets(fields), result, path, boundary)
}

func appendPath(path ast.Path, elem ast.PathElement) ast.Path {
	out := make(ast.Path, len(path)+1)
	copy(out, path)
	out[len(path)] = elem
	return out
}

func (s *executionState) markNullified(p ast.Path) {
	if len(p) > 0 {
		s.nullified[p.String()] = struct{}{}
	}
}

func (s *executionState) isNullified(p ast.Path) bool {
	if len(s.nullified) == 0 {
		return false
	}
	for i := 1; i <= len(p); i++ {
		if _, ok := s.nullified[p[:i].String()]; ok {
			return true
		}
	}
	return false
}

func topLevelFieldPath(p ast.Path) ast.Path {
	if len(p) == 0 {
		return nil
	}
	return ast.Path{p[0]}
}

// addError records err at path. Errors that already carry a path keep it.
func (s *executionState) addError(path ast.Path, err error) {
	var gqlErr *gqlerror.Error
	if errors.As(err, &gqlErr) {
		if gqlErr.Path == nil {
			cp := *gqlErr
			cp.Path = path
			gqlErr = &cp
		}
		s.errors = append(s.errors, gqlErr)
		return
	}
	s.errors = append(s.errors, gqlerror.WrapPath(path, err))
}

// hasErrorUnder reports whether an error was recorded at path or below it.
func (s *executionState) hasErrorUnder(path ast.Path) bool {
	for _, err := range s.errors {
		if hasPrefix(err.Path, path) {
			return true
		}
	}
	return false
}

func hasPrefix(p, prefix ast.Path) bool {
	if len(p) < len(prefix) {
		return false
	}
	for i := range prefix {
		if p[i] != prefix[i] {
			return false
		}
	}
	return true
}

// setValueAtPath writes value into the response tree at path. Nothing is
// written below a null.
func setValueAtPath(root map[string]any, path ast.Path, value any) {
	if len(path) == 0 {
		return
	}
	var current any = root
	for _, elem := range path[:len(path)-1] {
		switch e := elem.(type) {
		case ast.PathName:
			m, ok := current.(map[string]any)
			if !ok {
				return
			}
			next := m[string(e)]
			if next == nil {
				return
			}
			current = next
		case ast.PathIndex:
			list, ok := current.([]any)
			if !ok || int(e) >= len(list) || list[e] == nil {
				return
			}
			current = list[e]
		}
	}
	switch last := path[len(path)-1].(type) {
	case ast.PathName:
		if m, ok := current.(map[string]any); ok {
			m[string(last)] = value
		}
	case ast.PathIndex:
		if list, ok := current.([]any); ok && int(last) < len(list) {
			list[last] = value
		}
	}
}

func mergeSelectionSets(fields []*language.Field) language.SelectionSet {
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

// isNullish returns true for nil interfaces and typed nils (map, slice, ptr, interface)
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
