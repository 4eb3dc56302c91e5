// Package demo is a small bookstore schema. Authors use the record
// declaration style, everything else plain structs.
package demo

import (
	"github.com/hanpama/fieldgraph/internal/annotation"
	"github.com/hanpama/fieldgraph/internal/record"
)

type Node struct {
	ID annotation.ID `description:"Globally unique identifier"`
}

type Author struct {
	Node
	Name string
	Born int
}

func (Author) DeclareFields() []*record.Field {
	return []*record.Field{
		record.New("Name", "String!").WithDescription("Full name"),
		record.New("Born", "Int").WithDescription("Year of birth, if known"),
	}
}

type Book struct {
	Node
	Title    string
	Subtitle *string
	Tags     []string
	Price    float64
	// Cost is what the store paid; never exposed.
	Cost     annotation.Private[float64]
	AuthorID annotation.ID `graphql:"-"`
}

type Review struct {
	Node
	Stars int
	Text  *string
}

type BookFilter struct {
	TitlePrefix *string
	Tag         *string
	First       int `default:"10"`
}

type ReviewInput struct {
	BookID annotation.ID
	Stars  int
	Text   *string
}

type Query struct{}

type Mutation struct{}
