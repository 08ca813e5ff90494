package graph

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	regtap "github.com/openvo/go-regtap"
)

// Helper to create a test graph:
//
//	ivo://org/survey
//	├── [served-by] ivo://org/cone
//	└── [served-by] ivo://org/tap
//	ivo://org/atlas
//	└── [derived-from] ivo://org/survey
func createTestGraph() *Graph {
	g := New()
	g.AddNode("ivo://org/survey", "Deep Survey")
	g.AddNode("ivo://org/atlas", "Derived Atlas")
	g.AddEdge("ivo://org/survey", "ivo://org/cone", "served-by")
	g.AddEdge("ivo://org/survey", "ivo://org/tap", "served-by")
	g.AddEdge("ivo://org/atlas", "ivo://org/survey", "derived-from")
	return g
}

// =============================================================================
// Construction
// =============================================================================

func TestAddNode(t *testing.T) {
	g := New()

	node := g.AddNode("IVO://ORG/Survey", "Deep Survey")
	if node == nil {
		t.Fatal("AddNode returned nil")
	}
	if node.IVOID != "ivo://org/survey" {
		t.Errorf("identifier should be normalized, got %q", node.IVOID)
	}

	// Re-adding keeps the node and fills in a missing title.
	again := g.AddNode("ivo://org/survey", "")
	if again != node {
		t.Error("re-adding should return the existing node")
	}
	if node.Title != "Deep Survey" {
		t.Errorf("empty title should not clobber, got %q", node.Title)
	}
	if g.Len() != 1 {
		t.Errorf("Len = %d, want 1", g.Len())
	}

	if g.AddNode("", "ghost") != nil {
		t.Error("empty identifiers should be rejected")
	}
}

func TestAddEdge(t *testing.T) {
	g := New()
	g.AddEdge("ivo://a/x", "ivo://b/y", "served-by")
	g.AddEdge("ivo://a/x", "ivo://b/y", "served-by") // duplicate
	g.AddEdge("ivo://a/x", "ivo://a/x", "mirror-of") // self-loop

	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1 (duplicates and self-loops dropped)", g.EdgeCount())
	}
	if g.Len() != 2 {
		t.Errorf("Len = %d, want 2 (endpoints auto-created)", g.Len())
	}
}

func TestAddEdge_DifferentTypesCoexist(t *testing.T) {
	g := New()
	g.AddEdge("ivo://a/x", "ivo://b/y", "mirror-of")
	g.AddEdge("ivo://a/x", "ivo://b/y", "related-to")

	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount = %d, want 2", g.EdgeCount())
	}
}

func TestBuild(t *testing.T) {
	rels := []regtap.Relationship{
		{Type: "served-by", RelatedIVOID: "ivo://org/cone", RelatedName: "Cone Service"},
		{Type: "served-by", RelatedIVOID: "ivo://org/tap", RelatedName: "TAP Service"},
		{Type: "related-to", RelatedIVOID: ""},
	}

	g := Build("ivo://org/survey", rels)

	if g.Len() != 3 {
		t.Fatalf("Len = %d, want 3", g.Len())
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount = %d, want 2 (blank target dropped)", g.EdgeCount())
	}
	if got := g.Get("ivo://org/cone").Title; got != "Cone Service" {
		t.Errorf("related names should become titles, got %q", got)
	}
}

func TestFromResource(t *testing.T) {
	res := &regtap.Resource{
		IVOID: "ivo://org/survey",
		Title: "Deep Survey",
		Relationships: []regtap.Relationship{
			{Type: "Served-By", RelatedIVOID: "IVO://ORG/CONE"},
		},
	}

	g := FromResource(res)

	if !g.Has("ivo://org/cone") {
		t.Error("relationship targets should be nodes")
	}
	edges := g.Neighbors("ivo://org/survey")
	if len(edges) != 1 || edges[0].Type != "served-by" {
		t.Errorf("Neighbors = %+v", edges)
	}

	if FromResource(nil).Len() != 0 {
		t.Error("nil resource should build an empty graph")
	}
}

// =============================================================================
// Queries
// =============================================================================

func TestNeighbors(t *testing.T) {
	g := createTestGraph()

	edges := g.Neighbors("ivo://org/survey")
	if len(edges) != 2 {
		t.Fatalf("Neighbors = %+v", edges)
	}
	// Sorted by target.
	if edges[0].To != "ivo://org/cone" || edges[1].To != "ivo://org/tap" {
		t.Errorf("edges should be sorted by target: %+v", edges)
	}

	if g.Neighbors("ivo://org/cone") != nil {
		t.Error("leaf should have no outgoing edges")
	}
	if g.Neighbors("ivo://nope/x") != nil {
		t.Error("unknown identifiers should return nil")
	}
}

func TestIncoming(t *testing.T) {
	g := createTestGraph()

	edges := g.Incoming("ivo://org/survey")
	if len(edges) != 1 || edges[0].From != "ivo://org/atlas" {
		t.Errorf("Incoming = %+v", edges)
	}
}

func TestPath(t *testing.T) {
	g := createTestGraph()

	got := g.Path("ivo://org/atlas", "ivo://org/tap")
	want := []string{"ivo://org/atlas", "ivo://org/survey", "ivo://org/tap"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Path = %v, want %v", got, want)
	}

	if g.Path("ivo://org/tap", "ivo://org/atlas") != nil {
		t.Error("paths should follow edge direction")
	}
	if got := g.Path("ivo://org/survey", "ivo://org/survey"); len(got) != 1 {
		t.Errorf("self path = %v", got)
	}
	if g.Path("ivo://nope/x", "ivo://org/tap") != nil {
		t.Error("unknown endpoints should have no path")
	}
}

func TestPath_CycleSafe(t *testing.T) {
	g := New()
	g.AddEdge("ivo://a/1", "ivo://b/2", "mirror-of")
	g.AddEdge("ivo://b/2", "ivo://a/1", "mirror-of")
	g.AddEdge("ivo://b/2", "ivo://c/3", "served-by")

	got := g.Path("ivo://a/1", "ivo://c/3")
	want := []string{"ivo://a/1", "ivo://b/2", "ivo://c/3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Path = %v, want %v", got, want)
	}
}

func TestRootsAndLeaves(t *testing.T) {
	g := createTestGraph()

	if got := g.Roots(); !reflect.DeepEqual(got, []string{"ivo://org/atlas"}) {
		t.Errorf("Roots = %v", got)
	}
	if got := g.Leaves(); !reflect.DeepEqual(got, []string{"ivo://org/cone", "ivo://org/tap"}) {
		t.Errorf("Leaves = %v", got)
	}
}

func TestStats(t *testing.T) {
	g := createTestGraph()
	stats := g.Stats()

	if stats.Nodes != 4 || stats.Edges != 3 {
		t.Errorf("Stats = %+v", stats)
	}
	if stats.Roots != 1 || stats.Leaves != 2 {
		t.Errorf("Stats = %+v", stats)
	}
}

func TestHasCycles(t *testing.T) {
	if createTestGraph().HasCycles() {
		t.Error("acyclic graph misreported")
	}

	g := New()
	g.AddEdge("ivo://a/1", "ivo://b/2", "mirror-of")
	g.AddEdge("ivo://b/2", "ivo://a/1", "mirror-of")
	if !g.HasCycles() {
		t.Error("mutual mirrors are a cycle")
	}
}

// =============================================================================
// Rendering
// =============================================================================

func TestToText(t *testing.T) {
	g := createTestGraph()

	var sb strings.Builder
	if err := g.ToText(&sb); err != nil {
		t.Fatalf("ToText failed: %v", err)
	}
	out := sb.String()

	if !strings.Contains(out, "Resources: 4") {
		t.Errorf("summary missing: %s", out)
	}
	if !strings.Contains(out, "ivo://org/atlas (Derived Atlas)") {
		t.Errorf("root line missing: %s", out)
	}
	if !strings.Contains(out, "└── [derived-from] ivo://org/survey (Deep Survey)") {
		t.Errorf("tree connector missing: %s", out)
	}
	if !strings.Contains(out, "├── [served-by] ivo://org/cone") {
		t.Errorf("branch connector missing: %s", out)
	}
}

func TestToText_MarksCycles(t *testing.T) {
	g := New()
	g.AddEdge("ivo://a/1", "ivo://b/2", "mirror-of")
	g.AddEdge("ivo://b/2", "ivo://a/1", "mirror-of")

	var sb strings.Builder
	if err := g.ToText(&sb); err != nil {
		t.Fatalf("ToText failed: %v", err)
	}
	if !strings.Contains(sb.String(), "(circular)") {
		t.Errorf("cycle marker missing: %s", sb.String())
	}
}

func TestToDOT(t *testing.T) {
	g := createTestGraph()

	var sb strings.Builder
	if err := g.ToDOT(&sb); err != nil {
		t.Fatalf("ToDOT failed: %v", err)
	}
	out := sb.String()

	if !strings.HasPrefix(out, "digraph relationships {") {
		t.Errorf("DOT header missing: %s", out)
	}
	if !strings.Contains(out, `"ivo://org/survey" -> "ivo://org/cone" [label="served-by"];`) {
		t.Errorf("labelled edge missing: %s", out)
	}
	if !strings.Contains(out, `label="ivo://org/survey\nDeep Survey"`) {
		t.Errorf("node label missing: %s", out)
	}
}

func TestToJSON(t *testing.T) {
	g := createTestGraph()

	var sb strings.Builder
	if err := g.ToJSON(&sb); err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	var doc struct {
		Nodes []Node `json:"nodes"`
		Edges []Edge `json:"edges"`
	}
	if err := json.Unmarshal([]byte(sb.String()), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(doc.Nodes) != 4 || len(doc.Edges) != 3 {
		t.Errorf("nodes=%d edges=%d", len(doc.Nodes), len(doc.Edges))
	}
	if doc.Nodes[0].IVOID != "ivo://org/atlas" {
		t.Errorf("nodes should be sorted, first = %q", doc.Nodes[0].IVOID)
	}
	if doc.Edges[0].From != "ivo://org/atlas" {
		t.Errorf("edges should be sorted, first = %+v", doc.Edges[0])
	}
}
