package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const separatorWidth = 60 // Width of separator lines in text output

// ToText writes a human-readable view of the graph: summary counts
// followed by one relationship tree per root. Revisited resources are
// marked instead of expanded again, so cyclic graphs render fully.
func (g *Graph) ToText(w io.Writer) error {
	var b strings.Builder

	b.WriteString("Resource Relationship Graph\n")
	b.WriteString(strings.Repeat("=", separatorWidth) + "\n\n")

	stats := g.Stats()
	fmt.Fprintf(&b, "Resources: %d\n", stats.Nodes)
	fmt.Fprintf(&b, "Relationships: %d\n", stats.Edges)
	b.WriteString("\n")

	roots := g.Roots()
	if len(roots) == 0 && g.Len() > 0 {
		// Fully cyclic graph; start the tree anywhere, deterministically.
		roots = []string{g.Nodes()[0].IVOID}
	}

	for i, root := range roots {
		if i > 0 {
			b.WriteString("\n")
		}
		onPath := make(map[string]bool)
		g.writeTree(&b, root, "", true, onPath)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// writeTree renders one node and its outgoing edges with tree
// connectors.
func (g *Graph) writeTree(b *strings.Builder, id, prefix string, isLast bool, onPath map[string]bool) {
	if prefix == "" {
		b.WriteString(g.nodeLabel(id))
	} else {
		connector := "├── "
		if isLast {
			connector = "└── "
		}
		b.WriteString(prefix + connector + g.nodeLabel(id))
	}

	if onPath[id] {
		b.WriteString(" (circular)\n")
		return
	}
	b.WriteString("\n")

	onPath[id] = true
	defer delete(onPath, id)

	edges := g.Neighbors(id)
	for i, edge := range edges {
		isLastChild := i == len(edges)-1
		childPrefix := prefix
		if prefix != "" {
			if isLast {
				childPrefix += "    "
			} else {
				childPrefix += "│   "
			}
		}
		g.writeEdgeTree(b, edge, childPrefix, isLastChild, onPath)
	}
}

func (g *Graph) writeEdgeTree(b *strings.Builder, edge Edge, prefix string, isLast bool, onPath map[string]bool) {
	connector := "├── "
	if isLast {
		connector = "└── "
	}
	label := g.nodeLabel(edge.To)
	if edge.Type != "" {
		label = "[" + edge.Type + "] " + label
	}
	b.WriteString(prefix + connector + label)

	if onPath[edge.To] {
		b.WriteString(" (circular)\n")
		return
	}
	b.WriteString("\n")

	onPath[edge.To] = true
	defer delete(onPath, edge.To)

	children := g.Neighbors(edge.To)
	for i, child := range children {
		isLastChild := i == len(children)-1
		childPrefix := prefix
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}
		g.writeEdgeTree(b, child, childPrefix, isLastChild, onPath)
	}
}

// nodeLabel renders an identifier with its title when one is known.
func (g *Graph) nodeLabel(id string) string {
	node := g.nodes[id]
	if node == nil || node.Title == "" {
		return id
	}
	return fmt.Sprintf("%s (%s)", id, node.Title)
}

// ToDOT writes the graph in Graphviz DOT format. Relationship types
// become edge labels.
func (g *Graph) ToDOT(w io.Writer) error {
	var b strings.Builder

	b.WriteString("digraph relationships {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box];\n\n")

	for _, node := range g.Nodes() {
		label := node.IVOID
		if node.Title != "" {
			label += "\\n" + node.Title
		}
		fmt.Fprintf(&b, "  %q [label=\"%s\"];\n", node.IVOID, label)
	}

	b.WriteString("\n")
	for _, edge := range g.Edges() {
		if edge.Type != "" {
			fmt.Fprintf(&b, "  %q -> %q [label=%q];\n", edge.From, edge.To, edge.Type)
		} else {
			fmt.Fprintf(&b, "  %q -> %q;\n", edge.From, edge.To)
		}
	}

	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// jsonGraph is the serialized shape: flat node and edge lists, sorted.
type jsonGraph struct {
	Nodes []*Node `json:"nodes"`
	Edges []Edge  `json:"edges"`
}

// ToJSON writes the graph as indented JSON with deterministic
// ordering.
func (g *Graph) ToJSON(w io.Writer) error {
	doc := jsonGraph{Nodes: g.Nodes(), Edges: g.Edges()}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
