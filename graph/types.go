package graph

import "sort"

// Graph is a directed graph of registry resources. Nodes are resources
// keyed by identifier; edges carry the relationship type that links
// them. The zero value is not usable; call New.
type Graph struct {
	nodes map[string]*Node

	// outgoing and incoming index edges by their endpoint identifiers.
	outgoing map[string][]Edge
	incoming map[string][]Edge

	edgeCount int
}

// Node is a resource in the graph.
type Node struct {
	// IVOID is the resource identifier.
	IVOID string `json:"ivoid"`

	// Title is the resource's display name, when known. Nodes created
	// as relationship targets often only have the related_name the
	// publisher supplied, which may be empty.
	Title string `json:"title,omitempty"`
}

// Edge is one relationship between two resources.
type Edge struct {
	// From is the identifier of the resource declaring the relationship.
	From string `json:"from"`

	// To is the identifier of the related resource.
	To string `json:"to"`

	// Type is the relationship kind, e.g. "served-by" or "mirror-of".
	Type string `json:"type"`
}

// Stats summarizes a graph.
type Stats struct {
	// Nodes is the number of resources in the graph.
	Nodes int

	// Edges is the number of relationships.
	Edges int

	// Roots is the number of resources nothing points at.
	Roots int

	// Leaves is the number of resources pointing at nothing.
	Leaves int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]Edge),
		incoming: make(map[string][]Edge),
	}
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// Has reports whether the graph contains the identifier.
func (g *Graph) Has(ivoid string) bool {
	_, ok := g.nodes[normalizeID(ivoid)]
	return ok
}

// Get returns the node for an identifier, or nil.
func (g *Graph) Get(ivoid string) *Node {
	return g.nodes[normalizeID(ivoid)]
}

// Nodes returns all nodes sorted by identifier.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, node := range g.nodes {
		out = append(out, node)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IVOID < out[j].IVOID })
	return out
}

// Edges returns all edges sorted by source, target, and type.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.edgeCount)
	for _, edges := range g.outgoing {
		out = append(out, edges...)
	}
	sortEdges(out)
	return out
}

func sortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		if edges[i].To != edges[j].To {
			return edges[i].To < edges[j].To
		}
		return edges[i].Type < edges[j].Type
	})
}
