package graph

import (
	"strings"

	regtap "github.com/openvo/go-regtap"
)

// normalizeID lowercases and trims an identifier so lookups behave the
// same way the registry's identifier columns do.
func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// AddNode adds a resource node, returning it. Adding an existing
// identifier updates the title when a non-empty one is given.
func (g *Graph) AddNode(ivoid, title string) *Node {
	id := normalizeID(ivoid)
	if id == "" {
		return nil
	}
	if node, ok := g.nodes[id]; ok {
		if title != "" {
			node.Title = title
		}
		return node
	}
	node := &Node{IVOID: id, Title: title}
	g.nodes[id] = node
	return node
}

// AddEdge adds a relationship edge, creating endpoint nodes as needed.
// Self-loops and exact duplicates are dropped.
func (g *Graph) AddEdge(from, to, relType string) {
	fromID := normalizeID(from)
	toID := normalizeID(to)
	if fromID == "" || toID == "" || fromID == toID {
		return
	}

	edge := Edge{From: fromID, To: toID, Type: strings.ToLower(strings.TrimSpace(relType))}
	for _, existing := range g.outgoing[fromID] {
		if existing == edge {
			return
		}
	}

	g.AddNode(fromID, "")
	g.AddNode(toID, "")
	g.outgoing[fromID] = append(g.outgoing[fromID], edge)
	g.incoming[toID] = append(g.incoming[toID], edge)
	g.edgeCount++
}

// AddRelationships adds one resource's relationship rows as edges from
// that resource. Related names become titles on target nodes.
func (g *Graph) AddRelationships(from string, rels []regtap.Relationship) {
	for _, rel := range rels {
		if rel.RelatedIVOID == "" {
			continue
		}
		g.AddEdge(from, rel.RelatedIVOID, rel.Type)
		if rel.RelatedName != "" {
			g.AddNode(rel.RelatedIVOID, rel.RelatedName)
		}
	}
}

// AddResource adds a described resource together with its relationship
// edges. Resources without relationships become isolated nodes.
func (g *Graph) AddResource(res *regtap.Resource) {
	if res == nil || res.IVOID == "" {
		return
	}
	g.AddNode(res.IVOID, res.Title)
	g.AddRelationships(res.IVOID, res.Relationships)
}

// FromResource builds a graph from one described resource.
func FromResource(res *regtap.Resource) *Graph {
	g := New()
	g.AddResource(res)
	return g
}

// Build constructs a graph from relationship rows fetched for a single
// resource, such as the result of Client.Relationships.
func Build(ivoid string, rels []regtap.Relationship) *Graph {
	g := New()
	g.AddNode(ivoid, "")
	g.AddRelationships(ivoid, rels)
	return g
}
