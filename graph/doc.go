// Package graph builds and renders resource relationship graphs.
//
// Registry records point at each other: a data collection is served-by
// a service, a mirrored catalog is a mirror-of its original, derived
// data products are derived-from their sources. This package turns
// those relationship rows into a directed graph that can be queried
// and rendered.
//
// # Building a Graph
//
// Graphs are built from described resources or raw relationship rows:
//
//	res, _ := client.Describe(ctx, "ivo://nasa.heasarc/rosmaster")
//	g := graph.FromResource(res)
//
//	// or incrementally
//	g := graph.New()
//	g.AddResource(res)
//	g.AddResource(other)
//
// # Querying
//
//	edges := g.Neighbors("ivo://nasa.heasarc/rosmaster")
//	path := g.Path("ivo://a/survey", "ivo://b/archive")
//	roots := g.Roots()
//
// # Output Formats
//
//	g.ToText(os.Stdout)  // tree view
//	g.ToDOT(os.Stdout)   // Graphviz
//	g.ToJSON(os.Stdout)  // machine-readable
package graph
