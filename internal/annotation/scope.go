package annotation

import (
	"sync"
)

// Scope is a namespace that annotations are resolved against. Lookups fall
// through to the parent scope.
type Scope struct {
	name   string
	parent *Scope

	mu      sync.RWMutex
	entries map[string]any
}

// Builtin is the target of a built-in scalar name.
type Builtin string

// Universe is the root scope holding the built-in scalars.
var Universe = func() *Scope {
	s := &Scope{name: "universe", entries: map[string]any{}}
	for _, n := range []string{"Int", "Float", "String", "Boolean", "ID"} {
		s.entries[n] = Builtin(n)
	}
	return s
}()

// NewScope returns an empty scope whose lookups fall through to parent.
func NewScope(name string, parent *Scope) *Scope {
	return &Scope{name: name, parent: parent, entries: map[string]any{}}
}

func (s *Scope) Name() string { return s.name }

func (s *Scope) Parent() *Scope { return s.parent }

// Define binds name to target, replacing any earlier binding in s.
func (s *Scope) Define(name string, target any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[name] = target
}

// Lookup finds name in s or its ancestors.
func (s *Scope) Lookup(name string) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		v, ok := cur.entries[name]
		cur.mu.RUnlock()
		if ok {
			return v, true
		}
	}
	return nil, false
}
