package dag

import "slices"

// RemoveEdge deletes the edge from→to. It reports whether the edge existed.
func (d *DAG) RemoveEdge(from, to string) bool {
	i := slices.IndexFunc(d.edges, func(e Edge) bool { return e.From == from && e.To == to })
	if i < 0 {
		return false
	}
	d.edges = slices.Delete(d.edges, i, i+1)
	d.outgoing[from] = slices.DeleteFunc(d.outgoing[from], func(id string) bool { return id == to })
	d.incoming[to] = slices.DeleteFunc(d.incoming[to], func(id string) bool { return id == from })
	return true
}

// TransitiveReduction removes every edge u→v for which v is also reachable
// from u through another child of u, and returns how many were removed.
// Metadata of kept edges is preserved.
//
// The reduction is only defined for acyclic graphs; a cyclic graph is left
// untouched and [ErrGraphHasCycle] is returned.
func TransitiveReduction(g *DAG) (int, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}

	index := make(map[string]int, len(g.order))
	for i, id := range g.order {
		index[id] = i
	}
	adjacency := make([][]int, len(g.order))
	for _, e := range g.edges {
		adjacency[index[e.From]] = append(adjacency[index[e.From]], index[e.To])
	}
	reach := reachability(adjacency)

	removed := 0
	for _, e := range g.Edges() {
		src, dst := index[e.From], index[e.To]
		for _, mid := range adjacency[src] {
			if mid != dst && reach[mid][dst] {
				g.RemoveEdge(e.From, e.To)
				removed++
				break
			}
		}
	}
	return removed, nil
}

// reachability returns reach[i][j] = j is reachable from i (including i itself).
func reachability(adjacency [][]int) [][]bool {
	reach := make([][]bool, len(adjacency))
	for i := range reach {
		reach[i] = make([]bool, len(adjacency))
	}

	var visit func(src, cur int)
	visit = func(src, cur int) {
		if reach[src][cur] {
			return
		}
		reach[src][cur] = true
		for _, next := range adjacency[cur] {
			visit(src, next)
		}
	}
	for i := range reach {
		visit(i, i)
	}
	return reach
}
