// Package compat unifies the two field declaration styles behind one
// canonical descriptor model.
package compat

import (
	"reflect"

	"github.com/hanpama/fieldgraph/internal/field"
	"github.com/hanpama/fieldgraph/internal/record"
	"github.com/hanpama/fieldgraph/internal/structs"
)

var markerTypes = [...]reflect.Type{
	reflect.TypeOf(field.Missing),
	reflect.TypeOf(record.NoDefault),
	reflect.TypeOf(structs.Unset),
}

// IsMissing reports whether v is field.Missing, record.NoDefault or
// structs.Unset. It is false for every other value, including nil and zero
// values, and never panics.
func IsMissing(v any) bool {
	if v == nil {
		return false
	}
	// compared by type: v may be uncomparable
	t := reflect.TypeOf(v)
	for _, m := range markerTypes {
		if t == m {
			return true
		}
	}
	return false
}
