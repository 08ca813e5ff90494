// Package dal invokes the data access services the registry points at.
//
// Discovery ends with an access URL; this package makes the call. It
// covers the simple cone search protocol: a GET with RA, DEC and SR
// parameters answered by a VOTable of sources.
//
//	svc, _ := regtap.ResolveService(ctx, "ivo://nasa.heasarc/rosmaster", regtap.ServiceConeSearch)
//	table, err := dal.ConeSearch(ctx, svc.BaseURL, 83.63, 22.01, 0.5)
//
// Registry access URLs come in two shapes: complete endpoints and
// "base" URLs already ending in ? or & that expect parameters appended
// verbatim. ConeSearch handles both.
package dal
