// Package votable parses VOTable documents, the XML tabular interchange
// format Virtual Observatory services return.
//
// This package implements the subset of the format that TAP and DAL
// responses use: metadata (FIELD declarations, INFO status records) and
// the three inline data serializations. It enables:
//
//   - Decoding response bodies into tables with named, typed columns
//   - Uniform null handling across serializations
//   - Service error extraction from QUERY_STATUS records
//
// # Document Structure
//
// A VOTable document nests as follows:
//
//	VOTABLE
//	└── RESOURCE (type="results")
//	    ├── INFO (name="QUERY_STATUS" value="OK" | "ERROR" | "OVERFLOW")
//	    └── TABLE
//	        ├── FIELD (name, datatype, arraysize, ...)
//	        └── DATA
//	            └── TABLEDATA | BINARY | BINARY2
//
// Documents in any of the VOTable 1.1 through 1.4 namespaces parse
// identically; element matching ignores the namespace.
//
// # Usage
//
// Parse a response body and take the result table:
//
//	doc, err := votable.Parse(resp.Body)
//	if err != nil {
//	    // malformed XML
//	}
//	table, err := doc.FirstTable()
//	if err != nil {
//	    // no table, or the service reported QUERY_STATUS=ERROR
//	}
//	for _, row := range table.Rows {
//	    // cells are nil, bool, int16/32/64, uint8, float32/64, string,
//	    // or a typed slice for array columns
//	}
package votable
