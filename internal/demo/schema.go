package demo

import (
	"context"
	"fmt"

	"github.com/hanpama/fieldgraph/internal/annotation"
	"github.com/hanpama/fieldgraph/internal/field"
	"github.com/hanpama/fieldgraph/internal/names"
	"github.com/hanpama/fieldgraph/internal/schema"
	"github.com/hanpama/fieldgraph/internal/types"
)

// Register declares the bookstore types in reg. Page sizes of list fields
// are capped at maxResults. Resolvers read input fields under the names
// conv gives them, which must be the converter the schema is built with.
func Register(reg *types.Registry, store *Store, maxResults int, conv names.Converter) error {
	r := &resolvers{store: store, maxResults: maxResults, names: conv}

	steps := []func() error{
		func() error {
			_, err := types.Register[Node](reg, types.AsInterface(), types.WithDescription("An object with a globally unique ID"))
			return err
		},
		func() error {
			_, err := types.Register[Author](reg, types.WithField(
				field.New("books").WithType("[Book!]!").WithResolver(r.authorBooks)))
			return err
		},
		func() error {
			_, err := types.Register[Book](reg,
				types.WithField(field.New("Tags").WithDescription("Shelf categories")),
				types.WithField(field.New("author").WithType("Author!").WithResolver(r.bookAuthor)),
				types.WithField(field.New("reviews").WithType("[Review!]!").WithResolver(r.bookReviews)),
			)
			return err
		},
		func() error {
			_, err := types.Register[Review](reg)
			return err
		},
		func() error {
			_, err := types.Register[BookFilter](reg, types.AsInput())
			return err
		},
		func() error {
			_, err := types.Register[ReviewInput](reg, types.AsInput())
			return err
		},
		func() error {
			_, err := types.Register[Query](reg,
				types.WithField(field.New("books").WithType("[Book!]!").
					WithArgument("filter", "BookFilter", nil).WithResolver(r.books)),
				types.WithField(field.New("book").WithType("Book").
					WithArgument("id", "ID!", field.Missing).WithResolver(r.book)),
				types.WithField(field.New("authors").WithType("[Author!]!").WithResolver(r.authors)),
				types.WithField(field.New("node").WithType("Node").
					WithArgument("id", "ID!", field.Missing).WithResolver(r.node)),
			)
			return err
		},
		func() error {
			_, err := types.Register[Mutation](reg,
				types.WithField(field.New("addReview").WithType("Review!").
					WithArgument("input", "ReviewInput!", field.Missing).WithResolver(r.addReview)),
			)
			return err
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("demo: %w", err)
		}
	}
	return nil
}

// Schema registers the bookstore in a fresh registry and builds it.
func Schema(store *Store, maxResults int, opts ...schema.Option) (*schema.Schema, error) {
	o := schema.Options{Names: names.Default}
	for _, opt := range opts {
		opt(&o)
	}
	reg := types.NewRegistry()
	if err := Register(reg, store, maxResults, o.Names); err != nil {
		return nil, err
	}
	return schema.Build(reg, opts...)
}

type resolvers struct {
	store      *Store
	maxResults int
	names      names.Converter
}

// input returns the value of the input field declared as goName.
func (r *resolvers) input(obj map[string]any, goName string) any {
	return obj[r.names.Apply(goName)]
}

func idArg(args map[string]any, name string) annotation.ID {
	s, _ := args[name].(string)
	return annotation.ID(s)
}

func (r *resolvers) books(_ context.Context, _ any, args map[string]any) (any, error) {
	q := BookQuery{First: r.maxResults}
	if filter, ok := args["filter"].(map[string]any); ok {
		if s, ok := r.input(filter, "TitlePrefix").(string); ok {
			q.TitlePrefix = s
		}
		if s, ok := r.input(filter, "Tag").(string); ok {
			q.Tag = s
		}
		if n, ok := r.input(filter, "First").(int); ok {
			if n < 0 {
				return nil, fmt.Errorf("first must not be negative, got %d", n)
			}
			q.First = min(n, r.maxResults)
		}
	}
	return r.store.Books(q), nil
}

func (r *resolvers) book(_ context.Context, _ any, args map[string]any) (any, error) {
	if b, ok := r.store.Book(idArg(args, "id")); ok {
		return b, nil
	}
	return nil, nil
}

func (r *resolvers) authors(context.Context, any, map[string]any) (any, error) {
	return r.store.Authors(), nil
}

func (r *resolvers) node(_ context.Context, _ any, args map[string]any) (any, error) {
	id := idArg(args, "id")
	if b, ok := r.store.Book(id); ok {
		return b, nil
	}
	if a, ok := r.store.Author(id); ok {
		return a, nil
	}
	if rv, ok := r.store.Review(id); ok {
		return rv, nil
	}
	return nil, nil
}

func (r *resolvers) authorBooks(_ context.Context, source any, _ map[string]any) (any, error) {
	return r.store.Books(BookQuery{AuthorID: source.(*Author).ID, First: r.maxResults}), nil
}

func (r *resolvers) bookAuthor(_ context.Context, source any, _ map[string]any) (any, error) {
	b := source.(*Book)
	if a, ok := r.store.Author(b.AuthorID); ok {
		return a, nil
	}
	return nil, fmt.Errorf("book %s has no author", b.ID)
}

func (r *resolvers) bookReviews(_ context.Context, source any, _ map[string]any) (any, error) {
	return r.store.Reviews(source.(*Book).ID), nil
}

func (r *resolvers) addReview(_ context.Context, _ any, args map[string]any) (any, error) {
	input, _ := args["input"].(map[string]any)
	stars, _ := r.input(input, "Stars").(int)
	var text *string
	if s, ok := r.input(input, "Text").(string); ok {
		text = &s
	}
	bookID, _ := r.input(input, "BookID").(string)
	return r.store.AddReview(annotation.ID(bookID), stars, text)
}
