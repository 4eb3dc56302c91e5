package executor

import (
	"github.com/hanpama/fieldgraph/internal/language"
	"github.com/hanpama/fieldgraph/internal/schema"
)

// collectedFieldMap groups fields by response name in query order.
type collectedFieldMap struct {
	fields []collectedField
	index  map[string]int
}

type collectedField struct {
	ResponseName string
	Fields       []*language.Field
}

func (m *collectedFieldMap) add(responseName string, f *language.Field) {
	if i, ok := m.index[responseName]; ok {
		m.fields[i].Fields = append(m.fields[i].Fields, f)
		return
	}
	m.index[responseName] = len(m.fields)
	m.fields = append(m.fields, collectedField{ResponseName: responseName, Fields: []*language.Field{f}})
}

func (m *collectedFieldMap) orderedFields() []collectedField {
	return m.fields
}

func collectFields(state *executionState, objectType *schema.Type, selectionSet language.SelectionSet) *collectedFieldMap {
	grouped := &collectedFieldMap{index: map[string]int{}}
	collectInto(state, objectType, selectionSet, grouped, map[string]bool{})
	return grouped
}

func collectInto(state *executionState, objectType *schema.Type, selectionSet language.SelectionSet, grouped *collectedFieldMap, visited map[string]bool) {
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *language.Field:
			if !shouldInclude(state, sel.Directives) {
				continue
			}
			name := sel.Alias
			if name == "" {
				name = sel.Name
			}
			grouped.add(name, sel)

		case *language.InlineFragment:
			if !shouldInclude(state, sel.Directives) || !fragmentApplies(state, objectType, sel.TypeCondition) {
				continue
			}
			collectInto(state, objectType, sel.SelectionSet, grouped, visited)

		case *language.FragmentSpread:
			if !shouldInclude(state, sel.Directives) || visited[sel.Name] {
				continue
			}
			visited[sel.Name] = true
			def := state.document.Fragments.ForName(sel.Name)
			if def == nil || !fragmentApplies(state, objectType, def.TypeCondition) {
				continue
			}
			collectInto(state, objectType, def.SelectionSet, grouped, visited)
		}
	}
}

// fragmentApplies reports whether a fragment with the given type condition
// applies to objectType, either directly or through an interface or union.
func fragmentApplies(state *executionState, objectType *schema.Type, typeCondition string) bool {
	if typeCondition == "" {
		return true
	}
	return state.schema.Implements(objectType, typeCondition)
}

// shouldInclude evaluates @skip and @include.
func shouldInclude(state *executionState, directives language.DirectiveList) bool {
	if skip := directives.ForName("skip"); skip != nil {
		if v, ok := directiveArg(state, skip, "if").(bool); ok && v {
			return false
		}
	}
	if include := directives.ForName("include"); include != nil {
		if v, ok := directiveArg(state, include, "if").(bool); ok && !v {
			return false
		}
	}
	return true
}

func directiveArg(state *executionState, d *language.Directive, name string) any {
	arg := d.Arguments.ForName(name)
	if arg == nil {
		return nil
	}
	return valueFromAST(arg.Value, state.variableValues)
}
