package schema

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"

	"github.com/hanpama/fieldgraph/internal/annotation"
	"github.com/hanpama/fieldgraph/internal/field"
	"github.com/hanpama/fieldgraph/internal/names"
	"github.com/hanpama/fieldgraph/internal/schema/internal/catalog"
	"github.com/hanpama/fieldgraph/internal/types"
)

type Node struct {
	ID annotation.ID
}

type Book struct {
	Node
	Title    string
	Subtitle *string
	Author   *Author
	Internal annotation.Private[int]
}

type Author struct {
	Node
	Name  string
	Books []*Book
}

type BookFilter struct {
	TitlePrefix string `default:"The"`
	Limit       int    `default:"10"`
	Tags        []string
}

func (BookFilter) DefaultFactories() map[string]func() any {
	return map[string]func() any{"Tags": func() any { return []string{"new"} }}
}

type Query struct{}

func noop(context.Context, any, map[string]any) (any, error) { return nil, nil }

func newRegistry(t *testing.T) *types.Registry {
	t.Helper()
	reg := types.NewRegistry()
	_, err := types.Register[Node](reg, types.AsInterface(), types.WithDescription("An object with an ID"))
	require.NoError(t, err)
	// Book refers to Author before Author is registered.
	_, err = types.Register[Book](reg)
	require.NoError(t, err)
	_, err = types.Register[Author](reg, types.WithField(field.New("Books").Deprecate("use search")))
	require.NoError(t, err)
	_, err = types.Register[BookFilter](reg, types.AsInput())
	require.NoError(t, err)
	_, err = types.Register[Query](reg,
		types.WithField(field.New("books").WithType("[Book!]!").WithResolver(noop).
			WithArgument("filter", "BookFilter", nil)),
		types.WithField(field.New("node").WithType("Node").WithResolver(noop).
			WithArgument("id", "ID!", field.Missing)),
	)
	require.NoError(t, err)
	return reg
}

const wantSDL = `type Author implements Node {
  id: ID!
  name: String!
  books: [Book]! @deprecated(reason: "use search")
}

type Book implements Node {
  id: ID!
  title: String!
  subtitle: String
  author: Author
}

input BookFilter {
  titlePrefix: String! = "The"
  limit: Int! = 10
  tags: [String!]! = ["new"]
}

"""
An object with an ID
"""
interface Node {
  id: ID!
}

type Query {
  books(filter: BookFilter): [Book!]!
  node(id: ID!): Node
}
`

func TestBuildAndRender(t *testing.T) {
	s, err := Build(newRegistry(t))
	require.NoError(t, err)

	if diff := cmp.Diff(wantSDL, Render(s)); diff != "" {
		t.Errorf("rendered schema mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "Query", s.QueryType)
	require.Empty(t, s.MutationType)
	require.Equal(t, []string{"Author", "Book"}, s.Types["Node"].PossibleTypes)

	books := s.GetQueryType().FieldByName("books")
	require.True(t, books.Async)
	require.NotNil(t, books.Descriptor)
	title := s.Types["Book"].FieldByName("title")
	require.False(t, title.Async)
	require.Equal(t, "Title", title.Descriptor.Name)
	require.Equal(t, "TitlePrefix", s.Types["BookFilter"].InputFields[0].GoName)
}

func TestASTValidatesQueries(t *testing.T) {
	s, err := Build(newRegistry(t))
	require.NoError(t, err)
	sch, err := s.AST()
	require.NoError(t, err)
	again, err := s.AST()
	require.NoError(t, err)
	require.Same(t, sch, again)

	doc, perr := parser.ParseQuery(&ast.Source{Input: `{ books(filter: {limit: 2}) { id title author { name } } }`})
	require.NoError(t, perr)
	require.Empty(t, validator.ValidateWithRules(sch, doc, nil))

	doc, perr = parser.ParseQuery(&ast.Source{Input: `{ books { internal } }`})
	require.NoError(t, perr)
	require.NotEmpty(t, validator.ValidateWithRules(sch, doc, nil))
}

func TestBuildWithoutCamelCase(t *testing.T) {
	s, err := Build(newRegistry(t), WithNameConverter(names.Converter{}))
	require.NoError(t, err)
	require.NotNil(t, s.Types["Book"].FieldByName("Title"))
}

func TestBuildFailsOnUnresolvedReference(t *testing.T) {
	reg := types.NewRegistry()
	_, err := types.Register[Query](reg, types.WithField(field.New("author").WithType("Author").WithResolver(noop)))
	require.NoError(t, err)

	_, err = Build(reg)
	var unresolved *annotation.UnresolvedReferenceError
	require.True(t, errors.As(err, &unresolved), "got %v", err)
	require.Equal(t, "Author", unresolved.Name)

	// Book.Author is a Go struct that was never registered.
	reg = types.NewRegistry()
	_, err = types.Register[Book](reg, types.WithName("Query"))
	require.NoError(t, err)
	_, err = Build(reg)
	require.ErrorContains(t, err, "type schema.Author is not registered")
}

type Shelf struct {
	Owner  catalog.Author
	Former []*catalog.Author
}

func TestGoTypedFieldsResolveAcrossPackages(t *testing.T) {
	shelfQuery := types.WithField(field.New("shelf").WithType("Shelf").WithResolver(noop))

	t.Run("no same-named type in the declaring package", func(t *testing.T) {
		reg := types.NewRegistry()
		_, err := types.Register[catalog.Author](reg)
		require.NoError(t, err)
		_, err = types.Register[Shelf](reg)
		require.NoError(t, err)
		_, err = types.Register[Query](reg, shelfQuery)
		require.NoError(t, err)

		s, err := Build(reg)
		require.NoError(t, err)
		require.Equal(t, "Author!", renderTypeRef(s.Types["Shelf"].FieldByName("owner").Type))
	})

	t.Run("same-named type in the declaring package", func(t *testing.T) {
		reg := newRegistry(t)
		_, err := types.Register[catalog.Author](reg, types.WithName("CatalogAuthor"))
		require.NoError(t, err)
		_, err = types.Register[Shelf](reg)
		require.NoError(t, err)

		s, err := Build(reg)
		require.NoError(t, err)
		shelf := s.Types["Shelf"]
		require.Equal(t, "CatalogAuthor!", renderTypeRef(shelf.FieldByName("owner").Type))
		require.Equal(t, "[CatalogAuthor]!", renderTypeRef(shelf.FieldByName("former").Type))
		require.Equal(t, "Author", renderTypeRef(s.Types["Book"].FieldByName("author").Type))
	})
}

func TestBuildFailsWithoutQuery(t *testing.T) {
	reg := types.NewRegistry()
	_, err := types.Register[Node](reg)
	require.NoError(t, err)
	_, err = Build(reg)
	require.ErrorIs(t, err, ErrNoQueryType)
}

func TestBuildRejectsMisplacedInput(t *testing.T) {
	reg := types.NewRegistry()
	_, err := types.Register[BookFilter](reg, types.AsInput())
	require.NoError(t, err)
	_, err = types.Register[Query](reg, types.WithField(field.New("filter").WithType("BookFilter").WithResolver(noop)))
	require.NoError(t, err)
	_, err = Build(reg)
	require.ErrorContains(t, err, "cannot be used here")
}

func TestCustomResolveFunc(t *testing.T) {
	var calls atomic.Int64
	resolve := func(expr string, scope *annotation.Scope) (*annotation.Resolved, error) {
		calls.Add(1)
		return annotation.Resolve(expr, scope)
	}
	_, err := Build(newRegistry(t), WithResolveFunc(resolve))
	require.NoError(t, err)
	require.Positive(t, calls.Load())
}

func TestFieldCacheComputesOnce(t *testing.T) {
	reg := newRegistry(t)
	rec, ok := reg.LookupName("Book")
	require.True(t, ok)

	var computed atomic.Int64
	release := make(chan struct{})
	cache := NewFieldCache(func(r *types.TypeRecord) ([]*field.Field, error) {
		computed.Add(1)
		<-release
		return types.ResolveFields(r)
	})

	var wg sync.WaitGroup
	results := make([][]*field.Field, 8)
	errs := make([]error, len(results))
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = cache.Fields(rec)
		}()
	}
	close(release)
	wg.Wait()

	require.Equal(t, int64(1), computed.Load())
	for i, fs := range results {
		require.NoError(t, errs[i])
		require.Equal(t, results[0], fs)
	}
	require.Equal(t, 1, cache.Len())
}

func TestFieldCacheDoesNotKeepFailures(t *testing.T) {
	var calls int
	cache := NewFieldCache(func(*types.TypeRecord) ([]*field.Field, error) {
		calls++
		return nil, errors.New("boom")
	})
	rec := &types.TypeRecord{Name: "X"}
	_, err := cache.Fields(rec)
	require.Error(t, err)
	_, err = cache.Fields(rec)
	require.Error(t, err)
	require.Equal(t, 2, calls)
}

func TestRenderValue(t *testing.T) {
	require.Equal(t, `{a: 1, b: ["x", null]}`, renderValue(map[string]any{"b": []any{"x", nil}, "a": 1}))
	require.Equal(t, "RED", renderValue(EnumLiteral("RED")))
	require.Equal(t, "2.5", renderValue(float32(2.5)))
}
