// Package types keeps the declared type hierarchy and merges inherited and
// local fields into the final field list of each type.
package types

import (
	"reflect"

	"github.com/hanpama/fieldgraph/internal/annotation"
	"github.com/hanpama/fieldgraph/internal/compat"
	"github.com/hanpama/fieldgraph/internal/field"
)

// Kind is the GraphQL kind a declared type is exposed as.
type Kind int

const (
	KindObject Kind = iota
	KindInterface
	KindInput
)

func (k Kind) String() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindInput:
		return "input"
	}
	return "object"
}

// TypeRecord is the registration record of one declared type. It is not
// modified after registration.
type TypeRecord struct {
	Name           string
	Description    string
	Kind           Kind
	GoType         reflect.Type
	Representation compat.Representation
	// Scope is where annotations first declared on this type resolve.
	Scope  *annotation.Scope
	Bases  []*TypeRecord
	Locals []Local
}

// Local is one field declared directly on a type.
type Local struct {
	Name string
	// Native is the descriptor read from the Go declaration. It is nil for
	// fields that only exist through an explicit descriptor.
	Native *field.Field
	// Explicit is a descriptor attached at registration.
	Explicit *field.Field
}

// TypeName implements field.Origin.
func (r *TypeRecord) TypeName() string { return r.Name }

func (r *TypeRecord) String() string { return r.Name }

// Declares reports whether name is one of r's locals.
func (r *TypeRecord) Declares(name string) bool {
	for _, l := range r.Locals {
		if l.Name == name {
			return true
		}
	}
	return false
}

// Interfaces returns the interface-kind bases of r, nearest first and
// without duplicates.
func (r *TypeRecord) Interfaces() []*TypeRecord {
	seen := map[*TypeRecord]bool{}
	var out []*TypeRecord
	var walk func(*TypeRecord)
	walk = func(t *TypeRecord) {
		for _, b := range t.Bases {
			if seen[b] {
				continue
			}
			seen[b] = true
			if b.Kind == KindInterface {
				out = append(out, b)
			}
			walk(b)
		}
	}
	walk(r)
	return out
}
