package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanpama/fieldgraph/internal/annotation"
	"github.com/hanpama/fieldgraph/internal/field"
	"github.com/hanpama/fieldgraph/internal/schema"
	"github.com/hanpama/fieldgraph/internal/types"
)

type Node struct {
	ID annotation.ID
}

type User struct {
	Node
	Name  string
	Email *string
}

type Post struct {
	Node
	Title string
}

type PostFilter struct {
	First       int `default:"10"`
	TitlePrefix *string
}

type Query struct{}

type Mutation struct{}

// The runtime under test decides what resolvers return; descriptors only
// need a resolver to be marked async.
func unused(context.Context, any, map[string]any) (any, error) { return nil, nil }

func resolved(name, expr string) *field.Field {
	return field.New(name).WithType(expr).WithResolver(unused)
}

func buildSchema(t *testing.T) *schema.Schema {
	t.Helper()
	reg := types.NewRegistry()
	register := func(err error) {
		t.Helper()
		require.NoError(t, err)
	}
	_, err := types.Register[Node](reg, types.AsInterface())
	register(err)
	_, err = types.Register[User](reg,
		types.WithField(resolved("posts", "[Post!]!").WithArgument("filter", "PostFilter", nil)))
	register(err)
	_, err = types.Register[Post](reg, types.WithField(resolved("author", "User!")))
	register(err)
	_, err = types.Register[PostFilter](reg, types.AsInput())
	register(err)
	_, err = types.Register[Query](reg,
		types.WithField(resolved("users", "[User!]!")),
		types.WithField(resolved("viewer", "User!")),
		types.WithField(resolved("user", "User").WithArgument("id", "ID!", field.Missing)),
		types.WithField(resolved("node", "Node").WithArgument("id", "ID!", field.Missing)),
		types.WithField(resolved("search", "[Post!]").WithArgument("filter", "PostFilter", nil)),
	)
	register(err)
	_, err = types.Register[Mutation](reg,
		types.WithField(resolved("createPost", "Post!").WithArgument("title", "String!", field.Missing)),
		types.WithField(resolved("publish", "Boolean!").WithArgument("id", "ID!", field.Missing)),
	)
	register(err)

	s, err := schema.Build(reg)
	require.NoError(t, err)
	return s
}
