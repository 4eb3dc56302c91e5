package schema

import (
	"fmt"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

// AST returns the schema in gqlparser form, used to validate queries. It is
// built from the rendered SDL on first use; the schema must not change
// afterwards.
func (s *Schema) AST() (*ast.Schema, error) {
	s.astOnce.Do(func() {
		sch, err := gqlparser.LoadSchema(&ast.Source{Name: "schema", Input: Render(s)})
		if err != nil {
			s.astErr = fmt.Errorf("schema: load rendered schema: %w", err)
			return
		}
		s.ast = sch
	})
	return s.ast, s.astErr
}
