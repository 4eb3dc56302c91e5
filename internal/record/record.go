// Package record is the rich declaration style: a type lists its fields as
// full descriptors by implementing Declarer.
//
//	type Book struct{ ID annotation.ID; Title string }
//
//	func (Book) DeclareFields() []*record.Field {
//		return []*record.Field{
//			record.New("ID", "ID!"),
//			record.New("Title", "String!").WithDescription("Book title"),
//		}
//	}
package record

import (
	"reflect"

	"github.com/hanpama/fieldgraph/internal/field"
)

// Field is the descriptor type of this declaration style.
type Field = field.Field

// NoDefault marks an absent default or default factory.
var NoDefault = noDefault{}

type noDefault struct{}

func (noDefault) String() string { return "NO_DEFAULT" }

// Declarer is implemented by types that declare their fields explicitly.
type Declarer interface {
	DeclareFields() []*Field
}

var declarerType = reflect.TypeOf((*Declarer)(nil)).Elem()

// New returns a descriptor whose absent values use NoDefault.
func New(name, expr string) *Field {
	f := field.New(name).WithType(expr)
	f.Default = NoDefault
	f.DefaultFactory = NoDefault
	return f
}

// IsRecord reports whether t or *t implements Declarer.
func IsRecord(t reflect.Type) bool {
	if t == nil || t.Kind() != reflect.Struct {
		return false
	}
	return t.Implements(declarerType) || reflect.PointerTo(t).Implements(declarerType)
}

// Fields calls DeclareFields on a zero value of t. It returns nil when t is
// not a record.
func Fields(t reflect.Type) []*Field {
	if !IsRecord(t) {
		return nil
	}
	d, ok := reflect.New(t).Interface().(Declarer)
	if !ok {
		return nil
	}
	return d.DeclareFields()
}
