package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/hanpama/fieldgraph/internal/execution"
	"github.com/hanpama/fieldgraph/internal/language"
)

func run(t *testing.T, rt Runtime, query string, vars map[string]any) *execution.ExecutionResult {
	t.Helper()
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	return NewExecutor(rt, buildSchema(t)).ExecuteRequest(context.Background(), doc, "", vars, nil)
}

func TestOneBatchPerAsyncDepth(t *testing.T) {
	rt := newStubRuntime(map[string]stubResolver{
		"Query.users": value([]any{
			map[string]any{"id": "u1", "name": "ann"},
			map[string]any{"id": "u2", "name": "bob"},
		}),
		"User.posts": func(source any, _ map[string]any) (any, error) {
			if source.(map[string]any)["id"] == "u1" {
				return []any{map[string]any{"id": "p1", "title": "Hello"}}, nil
			}
			return []any{}, nil
		},
		"Post.author": value(map[string]any{"id": "u1", "name": "ann"}),
	})

	res := run(t, rt, `{ users { name posts { title author { name } } } }`, nil)
	require.Empty(t, res.Errors)

	want := map[string]any{
		"users": []any{
			map[string]any{
				"name": "ann",
				"posts": []any{
					map[string]any{"title": "Hello", "author": map[string]any{"name": "ann"}},
				},
			},
			map[string]any{"name": "bob", "posts": []any{}},
		},
	}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}

	wantCalls := []call{
		{Field: "Query.users", Args: map[string]any{}, Batch: 1},
		{Field: "User.posts", Args: map[string]any{}, Batch: 2},
		{Field: "User.posts", Args: map[string]any{}, Batch: 2},
		{Field: "Post.author", Args: map[string]any{}, Batch: 3},
	}
	if diff := cmp.Diff(wantCalls, rt.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestSyncFieldsDoNotAddDepth(t *testing.T) {
	rt := newStubRuntime(map[string]stubResolver{
		"Query.viewer": value(map[string]any{"id": "u1", "name": "ann", "email": nil}),
	})
	res := run(t, rt, `{ viewer { id name email __typename } }`, nil)
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{
		"viewer": map[string]any{"id": "u1", "name": "ann", "email": nil, "__typename": "User"},
	}, res.Data)
	require.Equal(t, 1, rt.batches)
	require.Equal(t, 3, rt.syncCalls)
}

func TestNonNullViolationNullsNullableParent(t *testing.T) {
	rt := newStubRuntime(map[string]stubResolver{
		"Query.user": value(map[string]any{"id": "u1", "name": nil}),
	})
	res := run(t, rt, `{ user(id: "u1") { name posts { title } } }`, nil)

	require.Equal(t, map[string]any{"user": nil}, res.Data)
	require.Len(t, res.Errors, 1)
	require.Equal(t, ast.Path{ast.PathName("user"), ast.PathName("name")}, res.Errors[0].Path)
	require.Equal(t, "cannot return null for non-nullable field user.name", res.Errors[0].Message)
	// posts was never queued
	require.Equal(t, 1, rt.batches)
}

func TestAsyncNonNullViolationStopsAtNullableAncestor(t *testing.T) {
	rt := newStubRuntime(map[string]stubResolver{
		"Query.user":   value(map[string]any{"id": "u1", "name": "ann"}),
		"Query.viewer": value(map[string]any{"id": "u2", "name": "bob"}),
		"User.posts":   value(nil),
	})
	res := run(t, rt, `{ user(id: "u1") { name posts { title } } viewer { name } }`, nil)

	require.Equal(t, map[string]any{
		"user":   nil,
		"viewer": map[string]any{"name": "bob"},
	}, res.Data)
	require.Len(t, res.Errors, 1)
	require.Equal(t, "user.posts", res.Errors[0].Path.String())
}

func TestNonNullRootFieldErrorNullsField(t *testing.T) {
	rt := newStubRuntime(map[string]stubResolver{
		"Query.viewer": fail(errors.New("no session")),
		"Query.search": value([]any{map[string]any{"title": "Hello"}}),
	})
	res := run(t, rt, `{ viewer { name } search { title } }`, nil)

	require.Equal(t, map[string]any{
		"viewer": nil,
		"search": []any{map[string]any{"title": "Hello"}},
	}, res.Data)
	require.Len(t, res.Errors, 1)
	require.Equal(t, "no session", res.Errors[0].Message)
	require.Equal(t, ast.Path{ast.PathName("viewer")}, res.Errors[0].Path)
}

func TestResolverErrorsArePartial(t *testing.T) {
	boom := errors.New("boom")
	rt := newStubRuntime(map[string]stubResolver{
		"Query.search": fail(boom),
		"Query.viewer": value(map[string]any{"name": "ann"}),
	})
	res := run(t, rt, `{ search { title } viewer { name } }`, nil)

	require.Equal(t, map[string]any{"search": nil, "viewer": map[string]any{"name": "ann"}}, res.Data)
	require.Len(t, res.Errors, 1)
	require.ErrorIs(t, res.Errors[0], boom)
	require.Equal(t, "search", res.Errors[0].Path.String())
}

func TestListItemPaths(t *testing.T) {
	rt := newStubRuntime(map[string]stubResolver{
		"Query.users": value([]any{
			map[string]any{"name": "ann"},
			map[string]any{"name": nil},
		}),
	})
	res := run(t, rt, `{ users { name } }`, nil)

	// [User!]! has no nullable ancestor below the root field
	require.Equal(t, map[string]any{"users": nil}, res.Data)
	require.Len(t, res.Errors, 1)
	require.Equal(t, "users[1].name", res.Errors[0].Path.String())
}

func TestAbstractTypes(t *testing.T) {
	rt := newStubRuntime(map[string]stubResolver{
		"Query.node": func(_ any, args map[string]any) (any, error) {
			switch args["id"] {
			case "p1":
				return map[string]any{"__typename": "Post", "id": "p1", "title": "Hello"}, nil
			case "u1":
				return map[string]any{"__typename": "User", "id": "u1", "name": "ann"}, nil
			}
			return map[string]any{"__typename": "PostFilter"}, nil
		},
	})
	query := `query($id: ID!) {
		node(id: $id) {
			__typename
			... on Node { id }
			... on Post { title }
			...UserParts
		}
	}
	fragment UserParts on User { name }`

	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	ex := NewExecutor(rt, buildSchema(t))

	res := ex.ExecuteRequest(context.Background(), doc, "", map[string]any{"id": "p1"}, nil)
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{
		"node": map[string]any{"__typename": "Post", "id": "p1", "title": "Hello"},
	}, res.Data)

	res = ex.ExecuteRequest(context.Background(), doc, "", map[string]any{"id": "u1"}, nil)
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{
		"node": map[string]any{"__typename": "User", "id": "u1", "name": "ann"},
	}, res.Data)

	res = ex.ExecuteRequest(context.Background(), doc, "", map[string]any{"id": "x"}, nil)
	require.Equal(t, map[string]any{"node": nil}, res.Data)
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0].Message, `must resolve to an object type that implements it, got "PostFilter"`)
}

func TestArgumentsAndVariables(t *testing.T) {
	rt := newStubRuntime(map[string]stubResolver{
		"Query.user":   value(map[string]any{"id": "u1"}),
		"Query.search": value([]any{map[string]any{"title": "Hello"}}),
		"User.posts":   value([]any{}),
	})
	query := `query($f: PostFilter, $id: ID!) {
		user(id: $id) { posts(filter: $f) { title } }
		search(filter: {titlePrefix: "He"}) { title }
	}`
	res := run(t, rt, query, map[string]any{"id": "u1", "f": map[string]any{"first": float64(2)}})
	require.Empty(t, res.Errors)

	wantCalls := []call{
		{Field: "Query.user", Args: map[string]any{"id": "u1"}, Batch: 1},
		{Field: "Query.search", Args: map[string]any{"filter": map[string]any{"first": 10, "titlePrefix": "He"}}, Batch: 1},
		{Field: "User.posts", Args: map[string]any{"filter": map[string]any{"first": 2}}, Batch: 2},
	}
	if diff := cmp.Diff(wantCalls, rt.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestVariableCoercionFailures(t *testing.T) {
	rt := newStubRuntime(nil)

	res := run(t, rt, `query($id: ID!) { user(id: $id) { name } }`, nil)
	require.Nil(t, res.Data)
	require.Len(t, res.Errors, 1)
	require.Equal(t, "variable $id of required type ID! was not provided", res.Errors[0].Message)

	res = run(t, rt, `query($f: PostFilter) { search(filter: $f) { title } }`,
		map[string]any{"f": map[string]any{"unknown": true}})
	require.Nil(t, res.Data)
	require.Contains(t, res.Errors[0].Message, `field "unknown" is not defined by type PostFilter`)
	require.Zero(t, rt.batches)
}

func TestMutationRootFieldsRunSerially(t *testing.T) {
	rt := newStubRuntime(map[string]stubResolver{
		"Mutation.createPost": func(_ any, args map[string]any) (any, error) {
			return map[string]any{"title": args["title"]}, nil
		},
		"Post.author":      value(map[string]any{"name": "ann"}),
		"Mutation.publish": value(true),
	})
	res := run(t, rt, `mutation {
		first: createPost(title: "a") { title author { name } }
		second: publish(id: "p1")
	}`, nil)
	require.Empty(t, res.Errors)

	require.Equal(t, map[string]any{
		"first":  map[string]any{"title": "a", "author": map[string]any{"name": "ann"}},
		"second": true,
	}, res.Data)
	wantCalls := []call{
		{Field: "Mutation.createPost", Args: map[string]any{"title": "a"}, Batch: 1},
		{Field: "Post.author", Args: map[string]any{}, Batch: 2},
		{Field: "Mutation.publish", Args: map[string]any{"id": "p1"}, Batch: 3},
	}
	if diff := cmp.Diff(wantCalls, rt.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestSkipAndInclude(t *testing.T) {
	rt := newStubRuntime(map[string]stubResolver{
		"Query.viewer": value(map[string]any{"id": "u1", "name": "ann"}),
	})
	res := run(t, rt, `query($skip: Boolean!) {
		viewer { name @skip(if: $skip) id @include(if: false) email @include(if: true) }
	}`, map[string]any{"skip": true})
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"viewer": map[string]any{"email": nil}}, res.Data)
}

func TestRuntimeResultCountMismatch(t *testing.T) {
	res := run(t, shortRuntime{newStubRuntime(nil)}, `{ search { title } }`, nil)
	require.Equal(t, map[string]any{"search": nil}, res.Data)
	require.Len(t, res.Errors, 1)
	require.Equal(t, "runtime returned 0 results for 1 tasks", res.Errors[0].Message)
}

type shortRuntime struct{ *stubRuntime }

func (shortRuntime) BatchResolveAsync(context.Context, []AsyncResolveTask) []AsyncResolveResult {
	return nil
}
