package types

// Linearize orders t and all of its transitive bases so that every type
// comes after its bases and t comes last. Bases are walked depth first in
// reverse declaration order, so of two unrelated bases the one declared
// first ends up later and takes precedence when fields are merged.
func Linearize(t *TypeRecord) ([]*TypeRecord, error) {
	var (
		out      []*TypeRecord
		done     = map[*TypeRecord]bool{}
		visiting = map[*TypeRecord]int{}
		path     []*TypeRecord
	)
	var visit func(r *TypeRecord) error
	visit = func(r *TypeRecord) error {
		if done[r] {
			return nil
		}
		if at, ok := visiting[r]; ok {
			cycle := make([]string, 0, len(path)-at+1)
			for _, p := range path[at:] {
				cycle = append(cycle, p.Name)
			}
			return &CyclicHierarchyError{Path: append(cycle, r.Name)}
		}
		visiting[r] = len(path)
		path = append(path, r)
		for i := len(r.Bases) - 1; i >= 0; i-- {
			if err := visit(r.Bases[i]); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		delete(visiting, r)
		done[r] = true
		out = append(out, r)
		return nil
	}
	if err := visit(t); err != nil {
		return nil, err
	}
	return out, nil
}
