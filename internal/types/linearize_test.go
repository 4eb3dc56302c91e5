package types

import (
	"errors"
	"testing"

	"github.com/hanpama/fieldgraph/internal/annotation"
	"github.com/hanpama/fieldgraph/internal/field"
	"github.com/stretchr/testify/require"
)

func rec(name string, bases ...*TypeRecord) *TypeRecord {
	return &TypeRecord{Name: name, Bases: bases, Scope: annotation.NewScope(name, annotation.Universe)}
}

func recNames(rs []*TypeRecord) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}

func local(name, expr string) Local {
	return Local{Name: name, Native: field.New(name).WithType(expr)}
}

func TestLinearizeDiamond(t *testing.T) {
	a := rec("A")
	b := rec("B", a)
	c := rec("C", a)
	d := rec("D", b, c)

	lin, err := Linearize(d)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "C", "B", "D"}, recNames(lin))

	lin, err = Linearize(a)
	require.NoError(t, err)
	require.Equal(t, []string{"A"}, recNames(lin))
}

// A base that is also a base of a later sibling is still placed before it.
func TestLinearizeSharedBaseListedFirst(t *testing.T) {
	x := rec("X")
	y := rec("Y", x)
	c := rec("C", x, y)

	lin, err := Linearize(c)
	require.NoError(t, err)
	require.Equal(t, []string{"X", "Y", "C"}, recNames(lin))
}

func TestLinearizeCycle(t *testing.T) {
	a := rec("A")
	b := rec("B", a)
	a.Bases = []*TypeRecord{b}
	c := rec("C", a)

	_, err := Linearize(c)
	var cyclic *CyclicHierarchyError
	require.True(t, errors.As(err, &cyclic))
	require.Equal(t, []string{"A", "B", "A"}, cyclic.Path)

	_, err = ResolveFields(c)
	require.True(t, errors.As(err, &cyclic))
}

// The first declared base wins for fields that both bases declare, while
// positions follow the last declared base.
func TestResolveFieldsMultipleBases(t *testing.T) {
	left := rec("Left")
	left.Locals = []Local{local("shared", "Int"), local("l", "Int")}
	right := rec("Right")
	right.Locals = []Local{local("r", "Int"), local("shared", "String")}
	both := rec("Both", left, right)
	both.Locals = []Local{local("own", "Int")}

	fs, err := ResolveFields(both)
	require.NoError(t, err)
	require.Equal(t, []string{"r", "shared", "l", "own"}, names(fs))
	require.Equal(t, "Int", fs[1].Type.Expr)
	require.Same(t, left, fs[1].Origin)
	require.Same(t, left.Scope, fs[1].Type.Scope)
}

func TestOriginScopeIsFirstDeclaringType(t *testing.T) {
	base := rec("Base")
	base.Locals = []Local{local("owner", "User")}
	child := rec("Child", base)
	child.Locals = []Local{local("owner", "User!")}

	// User only exists where owner was first declared
	base.Scope.Define("User", "user")

	fs, err := ResolveFields(child)
	require.NoError(t, err)
	require.Equal(t, "User!", fs[0].Type.Expr)
	require.Same(t, base, fs[0].Origin)
	r, err := fs[0].Type.Resolve()
	require.NoError(t, err)
	require.Equal(t, "user", r.Target)
}

func TestInterfaces(t *testing.T) {
	node := rec("Node")
	node.Kind = KindInterface
	entity := rec("Entity", node)
	entity.Kind = KindInterface
	plain := rec("Plain")
	book := rec("Book", entity, plain, node)

	require.Equal(t, []string{"Entity", "Node"}, recNames(book.Interfaces()))
}
