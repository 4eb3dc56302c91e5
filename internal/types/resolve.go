package types

import (
	"github.com/hanpama/fieldgraph/internal/annotation"
	"github.com/hanpama/fieldgraph/internal/compat"
	"github.com/hanpama/fieldgraph/internal/field"
)

// ResolveFields computes the final ordered field list of t.
//
// Fields of the bases come first, in linearization order, each keeping the
// position where its name was first introduced. Locals of t then replace
// inherited fields in place or are appended. Every returned descriptor is a
// fresh copy; neither records nor declared descriptors are modified, so
// concurrent calls are safe. Results are not cached.
func ResolveFields(t *TypeRecord) ([]*field.Field, error) {
	lin, err := Linearize(t)
	if err != nil {
		return nil, err
	}
	merged := map[*TypeRecord]*fieldSet{}
	for _, r := range lin {
		set, err := mergeOne(r, merged)
		if err != nil {
			return nil, err
		}
		merged[r] = set
	}
	set := merged[t]

	names := map[string]string{}
	out := make([]*field.Field, 0, len(set.keys))
	for _, k := range set.keys {
		f := set.values[k]
		if f.Resolver != nil {
			if !compat.IsMissing(f.Default) {
				return nil, &ConflictingDefaultError{Type: t.Name, Field: f.Name}
			}
			if !compat.IsMissing(f.DefaultFactory) {
				return nil, &ConflictingDefaultFactoryError{Type: t.Name, Field: f.Name}
			}
		}
		pub := f.GraphQLName()
		if prev, ok := names[pub]; ok {
			return nil, &DuplicateFieldError{Type: t.Name, PublicName: pub, Fields: [2]string{prev, f.Name}}
		}
		names[pub] = f.Name
		out = append(out, f.Clone())
	}
	return out, nil
}

// mergeOne merges r's locals over the merged sets of its bases. The sets of
// r's bases must already be in merged.
func mergeOne(r *TypeRecord, merged map[*TypeRecord]*fieldSet) (*fieldSet, error) {
	set := newFieldSet()
	baseLin, err := Linearize(r)
	if err != nil {
		return nil, err
	}
	for _, b := range baseLin[:len(baseLin)-1] {
		for _, k := range merged[b].keys {
			set.put(k, merged[b].values[k])
		}
	}

	for _, l := range r.Locals {
		origin := originOf(l.Name, baseLin)
		var f *field.Field
		switch {
		case l.Explicit != nil:
			f = l.Explicit.Clone()
			if f.Type == nil && l.Native != nil {
				f.Type = l.Native.Type
			}
			if f.Type == nil && origin != r {
				f.Type = declaredType(origin, l.Name)
			}
			if f.Type.IsPrivate() || (l.Native != nil && l.Native.Type.IsPrivate()) {
				return nil, &PrivateFieldPromotedError{Type: r.Name, Field: l.Name}
			}
		case l.Native == nil:
			continue
		case l.Native.Type.IsPrivate():
			set.remove(l.Name)
			continue
		default:
			f = l.Native.Clone()
		}
		if f.Type == nil {
			return nil, &UntypedFieldError{Type: r.Name, Field: l.Name}
		}
		f.Type = f.Type.Bind(origin.Scope)
		if f.Origin == nil {
			f.Origin = origin
		}
		set.put(l.Name, f)
	}
	return set, nil
}

// originOf returns the first record in lin that declares name.
func originOf(name string, lin []*TypeRecord) *TypeRecord {
	for _, r := range lin {
		if r.Declares(name) {
			return r
		}
	}
	return lin[len(lin)-1]
}

// declaredType returns the annotation rec declares for name, preferring
// the native declaration.
func declaredType(rec *TypeRecord, name string) *annotation.Annotation {
	for _, l := range rec.Locals {
		if l.Name != name {
			continue
		}
		if l.Native != nil {
			return l.Native.Type
		}
		if l.Explicit != nil {
			return l.Explicit.Type
		}
	}
	return nil
}

type fieldSet struct {
	keys   []string
	values map[string]*field.Field
}

func newFieldSet() *fieldSet {
	return &fieldSet{values: map[string]*field.Field{}}
}

// put keeps the position of an existing key.
func (s *fieldSet) put(k string, f *field.Field) {
	if _, ok := s.values[k]; !ok {
		s.keys = append(s.keys, k)
	}
	s.values[k] = f
}

func (s *fieldSet) remove(k string) {
	if _, ok := s.values[k]; !ok {
		return
	}
	delete(s.values, k)
	for i, key := range s.keys {
		if key == k {
			s.keys = append(s.keys[:i:i], s.keys[i+1:]...)
			return
		}
	}
}
