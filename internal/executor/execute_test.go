package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/validator/rules"

	"github.com/hanpama/fieldgraph/internal/eventbus"
	"github.com/hanpama/fieldgraph/internal/events"
	"github.com/hanpama/fieldgraph/internal/execution"
	"github.com/hanpama/fieldgraph/internal/language"
)

var queriesOnly = []language.Operation{language.Query}

type contextRuntime struct {
	*stubRuntime
	seen *execution.ExecutionContext
}

func (r *contextRuntime) BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult {
	r.seen, _ = execution.FromContext(ctx)
	return r.stubRuntime.BatchResolveAsync(ctx, tasks)
}

func viewerRuntime() *stubRuntime {
	return newStubRuntime(map[string]stubResolver{
		"Query.viewer":     value(map[string]any{"id": "u1", "name": "ann"}),
		"Mutation.publish": value(true),
	})
}

func TestExecute(t *testing.T) {
	rt := &contextRuntime{stubRuntime: viewerRuntime()}
	s := buildSchema(t)
	ec := execution.New(`query Me { viewer { name } }`, s, queriesOnly, execution.WithVariables(map[string]any{}))
	ec.SetExtensionResult("cost", 1)

	res := NewExecutor(rt, s).Execute(context.Background(), ec)

	require.False(t, execution.IsPreExecution(res))
	out := execution.Unwrap(res)
	require.Empty(t, out.Errors)
	require.Equal(t, map[string]any{"viewer": map[string]any{"name": "ann"}}, out.Data)
	require.Equal(t, map[string]any{"cost": 1}, out.Extensions)

	require.Equal(t, execution.Completed, ec.State())
	require.Same(t, res, ec.Result)
	require.NotNil(t, ec.Document)
	require.Same(t, ec, rt.seen)
	name, ok := ec.OperationName()
	require.True(t, ok)
	require.Equal(t, "Me", name)
}

func TestExecuteCompletedContextIsNotRerun(t *testing.T) {
	rt := viewerRuntime()
	s := buildSchema(t)
	ex := NewExecutor(rt, s)
	ec := execution.New(`{ viewer { name } }`, s, queriesOnly)

	first := ex.Execute(context.Background(), ec)
	second := ex.Execute(context.Background(), ec)
	require.Same(t, first, second)
	require.Equal(t, 1, rt.batches)
}

func TestExecuteUsesProvidedDocument(t *testing.T) {
	s := buildSchema(t)
	doc, err := language.ParseQuery(`{ viewer { id } }`)
	require.NoError(t, err)
	ec := execution.New("", s, queriesOnly, execution.WithDocument(doc))

	res := NewExecutor(viewerRuntime(), s).Execute(context.Background(), ec)
	require.Equal(t, map[string]any{"viewer": map[string]any{"id": "u1"}}, execution.Unwrap(res).Data)
	require.Same(t, doc, ec.Document)
}

func TestExecutePreExecutionFailures(t *testing.T) {
	s := buildSchema(t)
	for _, tc := range []struct {
		name    string
		query   string
		opts    []execution.Option
		message string
	}{
		{name: "empty", query: "", message: "no query provided"},
		{name: "syntax", query: `{ viewer {`, message: "Expected Name, found <EOF>"},
		{name: "unknown operation", query: `query A { viewer { name } }`, opts: []execution.Option{execution.WithOperationName("B")}, message: `unknown operation named "B"`},
		{name: "validation", query: `{ viewer { nam } }`, message: `Cannot query field "nam" on type "User". Did you mean "name"?`},
		{name: "variables", query: `query($id: ID!) { user(id: $id) { name } }`, message: "variable $id of required type ID! was not provided"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rt := viewerRuntime()
			ec := execution.New(tc.query, s, queriesOnly, tc.opts...)
			res := NewExecutor(rt, s).Execute(context.Background(), ec)

			require.True(t, execution.IsPreExecution(res))
			out := execution.Unwrap(res)
			require.Nil(t, out.Data)
			require.Len(t, out.Errors, 1)
			require.Equal(t, tc.message, out.Errors[0].Message)
			require.Equal(t, out.Errors, ec.PreExecutionErrors)
			require.Zero(t, rt.batches)
		})
	}
}

func TestExecuteRejectsDisallowedOperation(t *testing.T) {
	s := buildSchema(t)
	rt := viewerRuntime()
	ec := execution.New(`mutation { publish(id: "p1") }`, s, queriesOnly)

	res := NewExecutor(rt, s).Execute(context.Background(), ec)
	require.True(t, execution.IsPreExecution(res))
	require.ErrorIs(t, execution.Unwrap(res).Errors[0], ErrOperationNotAllowed)
	require.Zero(t, rt.batches)

	ec = execution.New(`mutation { publish(id: "p1") }`, s, []language.Operation{language.Query, language.Mutation})
	res = NewExecutor(rt, s).Execute(context.Background(), ec)
	require.Equal(t, map[string]any{"publish": true}, execution.Unwrap(res).Data)
}

func TestExecuteWithoutFieldSuggestions(t *testing.T) {
	s := buildSchema(t)
	ec := execution.New(`{ viewer { nam } }`, s, queriesOnly)
	res := NewExecutor(viewerRuntime(), s, WithoutFieldSuggestions()).Execute(context.Background(), ec)
	require.Equal(t, `Cannot query field "nam" on type "User".`, execution.Unwrap(res).Errors[0].Message)
}

func TestExecuteCustomValidationRules(t *testing.T) {
	s := buildSchema(t)
	// no rules at all: the unknown field reaches execution
	ec := execution.New(`{ viewer { nam } }`, s, queriesOnly, execution.WithValidationRules(rules.NewRules()))
	res := NewExecutor(viewerRuntime(), s).Execute(context.Background(), ec)
	require.False(t, execution.IsPreExecution(res))
	require.Equal(t, `cannot query field "nam" on type "User"`, execution.Unwrap(res).Errors[0].Message)
}

func TestExecutePublishesOperationEvents(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	var started []events.OperationStart
	var finished []events.OperationFinish
	eventbus.Subscribe(func(_ context.Context, e events.OperationStart) { started = append(started, e) })
	eventbus.Subscribe(func(_ context.Context, e events.OperationFinish) { finished = append(finished, e) })

	s := buildSchema(t)
	ex := NewExecutor(viewerRuntime(), s)
	ex.Execute(context.Background(), execution.New(`query Me { viewer { name } }`, s, queriesOnly))
	ex.Execute(context.Background(), execution.New(`{ viewer {`, s, queriesOnly))

	require.Equal(t, []events.OperationStart{{OperationName: "Me", OperationType: "query"}}, started)
	require.Len(t, finished, 2)
	require.Equal(t, "Me", finished[0].OperationName)
	require.False(t, finished[0].PreExecution)
	require.True(t, finished[1].PreExecution)
	require.Len(t, finished[1].Errors, 1)
}
