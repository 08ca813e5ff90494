package graph

import "sort"

// Neighbors returns the outgoing edges of a resource, sorted. Nil when
// the resource has none or is not in the graph.
func (g *Graph) Neighbors(ivoid string) []Edge {
	edges := g.outgoing[normalizeID(ivoid)]
	if len(edges) == 0 {
		return nil
	}
	out := make([]Edge, len(edges))
	copy(out, edges)
	sortEdges(out)
	return out
}

// Incoming returns the edges pointing at a resource, sorted.
func (g *Graph) Incoming(ivoid string) []Edge {
	edges := g.incoming[normalizeID(ivoid)]
	if len(edges) == 0 {
		return nil
	}
	out := make([]Edge, len(edges))
	copy(out, edges)
	sortEdges(out)
	return out
}

// Path returns the shortest directed path between two resources as a
// list of identifiers, both endpoints included. Nil when no path
// exists. Traversal follows edge direction; cycles are safe.
func (g *Graph) Path(from, to string) []string {
	fromID := normalizeID(from)
	toID := normalizeID(to)
	if !g.Has(fromID) || !g.Has(toID) {
		return nil
	}
	if fromID == toID {
		return []string{fromID}
	}

	// BFS over outgoing edges; parent links reconstruct the path.
	parent := map[string]string{fromID: ""}
	queue := []string{fromID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, edge := range g.Neighbors(current) {
			if _, seen := parent[edge.To]; seen {
				continue
			}
			parent[edge.To] = current
			if edge.To == toID {
				return rebuildPath(parent, fromID, toID)
			}
			queue = append(queue, edge.To)
		}
	}
	return nil
}

func rebuildPath(parent map[string]string, from, to string) []string {
	var reversed []string
	for id := to; id != ""; id = parent[id] {
		reversed = append(reversed, id)
		if id == from {
			break
		}
	}
	path := make([]string, len(reversed))
	for i, id := range reversed {
		path[len(reversed)-1-i] = id
	}
	return path
}

// Roots returns the identifiers of resources nothing points at,
// sorted. In a served-by graph these are the data collections rather
// than the services.
func (g *Graph) Roots() []string {
	var roots []string
	for id := range g.nodes {
		if len(g.incoming[id]) == 0 {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)
	return roots
}

// Leaves returns the identifiers of resources pointing at nothing,
// sorted.
func (g *Graph) Leaves() []string {
	var leaves []string
	for id := range g.nodes {
		if len(g.outgoing[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	sort.Strings(leaves)
	return leaves
}

// Stats returns node and edge counts.
func (g *Graph) Stats() Stats {
	return Stats{
		Nodes:  len(g.nodes),
		Edges:  g.edgeCount,
		Roots:  len(g.Roots()),
		Leaves: len(g.Leaves()),
	}
}

// HasCycles reports whether any relationship chain loops back on
// itself. Mutual relationships (a mirror-of b, b mirror-of a) count.
func (g *Graph) HasCycles() bool {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	var walk func(id string) bool
	walk = func(id string) bool {
		visited[id] = true
		onStack[id] = true
		for _, edge := range g.outgoing[id] {
			if onStack[edge.To] {
				return true
			}
			if !visited[edge.To] && walk(edge.To) {
				return true
			}
		}
		onStack[id] = false
		return false
	}

	for id := range g.nodes {
		if !visited[id] && walk(id) {
			return true
		}
	}
	return false
}
