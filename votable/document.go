package votable

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Sentinel errors for common parse failures.
var (
	// ErrNoTable indicates the document carries no TABLE element.
	ErrNoTable = errors.New("votable: document contains no table")
)

// StatusError reports a service-side failure delivered as a QUERY_STATUS
// INFO record inside an otherwise well-formed document.
type StatusError struct {
	// Status is the reported status value ("ERROR", "ABORTED", ...).
	Status string

	// Message is the human-readable explanation from the service.
	Message string
}

func (e *StatusError) Error() string {
	var b strings.Builder
	b.WriteString("votable: query status ")
	b.WriteString(e.Status)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Document is a parsed VOTable document tree. Data sections are kept in
// their wire form; FirstTable decodes them on demand.
type Document struct {
	XMLName   xml.Name   `xml:"VOTABLE"`
	Version   string     `xml:"version,attr"`
	Infos     []Info     `xml:"INFO"`
	Resources []Resource `xml:"RESOURCE"`
}

// Resource groups tables and status records. TAP responses put the result
// table in a RESOURCE with type="results".
type Resource struct {
	Name      string         `xml:"name,attr"`
	Type      string         `xml:"type,attr"`
	Infos     []Info         `xml:"INFO"`
	Tables    []TableElement `xml:"TABLE"`
	Resources []Resource     `xml:"RESOURCE"`
}

// Info is a name/value status record. Some services put the explanation
// in the value attribute, others in the element content.
type Info struct {
	Name    string `xml:"name,attr"`
	Value   string `xml:"value,attr"`
	Content string `xml:",chardata"`
}

// Message returns the most specific explanation the record carries.
func (i Info) Message() string {
	if msg := strings.TrimSpace(i.Content); msg != "" {
		return msg
	}
	return i.Value
}

// TableElement is the undecoded TABLE element.
type TableElement struct {
	Name        string  `xml:"name,attr"`
	Description string  `xml:"DESCRIPTION"`
	Fields      []Field `xml:"FIELD"`
	Data        *Data   `xml:"DATA"`
}

// Data holds exactly one serialization of the table rows.
type Data struct {
	TableData *TableData `xml:"TABLEDATA"`
	Binary    *Binary    `xml:"BINARY"`
	Binary2   *Binary    `xml:"BINARY2"`
}

// TableData is the plain-text row serialization.
type TableData struct {
	Rows []TR `xml:"TR"`
}

// TR is one TABLEDATA row.
type TR struct {
	Cells []TD `xml:"TD"`
}

// TD is one TABLEDATA cell.
type TD struct {
	Value string `xml:",chardata"`
}

// Binary wraps the base64 STREAM used by both BINARY and BINARY2.
type Binary struct {
	Stream Stream `xml:"STREAM"`
}

// Stream carries encoded row bytes. Only inline base64 content is
// supported; href streams would require a second fetch.
type Stream struct {
	Encoding string `xml:"encoding,attr"`
	Href     string `xml:"href,attr"`
	Content  string `xml:",chardata"`
}

// Parse reads a complete VOTable document from r.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("votable: malformed document: %w", err)
	}
	return &doc, nil
}

// ParseBytes parses a document held in memory.
func ParseBytes(b []byte) (*Document, error) {
	return Parse(strings.NewReader(string(b)))
}

// ParseFile parses a document from the local filesystem.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

// FirstTable locates and decodes the result table.
//
// The search prefers a RESOURCE with type="results" and falls back to the
// first TABLE anywhere in the tree. A QUERY_STATUS=ERROR record anywhere
// on the path converts to a *StatusError even when a table is present,
// since services pair error records with empty placeholder tables.
func (d *Document) FirstTable() (*Table, error) {
	if err := d.statusError(); err != nil {
		return nil, err
	}

	res, elem := d.findResultTable()
	if elem == nil {
		return nil, ErrNoTable
	}

	table, err := decodeTable(elem)
	if err != nil {
		return nil, err
	}

	table.Infos = append(append([]Info{}, d.Infos...), res.Infos...)
	for _, info := range table.Infos {
		if info.Name == "QUERY_STATUS" && info.Value == "OVERFLOW" {
			table.Overflow = true
		}
	}
	return table, nil
}

// statusError scans all INFO records for a reported failure.
func (d *Document) statusError() error {
	infos := append([]Info{}, d.Infos...)
	var walk func(rs []Resource)
	walk = func(rs []Resource) {
		for _, r := range rs {
			infos = append(infos, r.Infos...)
			walk(r.Resources)
		}
	}
	walk(d.Resources)

	for _, info := range infos {
		if info.Name != "QUERY_STATUS" {
			continue
		}
		switch info.Value {
		case "ERROR", "ABORTED":
			return &StatusError{Status: info.Value, Message: info.Message()}
		}
	}
	return nil
}

// findResultTable picks the table to decode, preferring results resources.
func (d *Document) findResultTable() (*Resource, *TableElement) {
	var fallbackRes *Resource
	var fallbackElem *TableElement

	var walk func(rs []Resource) (*Resource, *TableElement)
	walk = func(rs []Resource) (*Resource, *TableElement) {
		for i := range rs {
			r := &rs[i]
			if len(r.Tables) > 0 {
				if r.Type == "results" {
					return r, &r.Tables[0]
				}
				if fallbackElem == nil {
					fallbackRes, fallbackElem = r, &r.Tables[0]
				}
			}
			if res, elem := walk(r.Resources); elem != nil {
				return res, elem
			}
		}
		return nil, nil
	}

	if res, elem := walk(d.Resources); elem != nil {
		return res, elem
	}
	return fallbackRes, fallbackElem
}

// decodeTable materializes rows from whichever serialization is present.
func decodeTable(elem *TableElement) (*Table, error) {
	table := &Table{
		Name:   elem.Name,
		Fields: elem.Fields,
	}

	if elem.Data == nil {
		return table, nil
	}

	switch {
	case elem.Data.TableData != nil:
		rows, err := decodeTableData(elem.Fields, elem.Data.TableData)
		if err != nil {
			return nil, err
		}
		table.Rows = rows
	case elem.Data.Binary2 != nil:
		rows, err := decodeBinaryStream(elem.Fields, &elem.Data.Binary2.Stream, true)
		if err != nil {
			return nil, err
		}
		table.Rows = rows
	case elem.Data.Binary != nil:
		rows, err := decodeBinaryStream(elem.Fields, &elem.Data.Binary.Stream, false)
		if err != nil {
			return nil, err
		}
		table.Rows = rows
	}

	return table, nil
}

// decodeTableData converts TABLEDATA rows to typed cells.
func decodeTableData(fields []Field, data *TableData) ([][]any, error) {
	rows := make([][]any, 0, len(data.Rows))
	for i, tr := range data.Rows {
		if len(tr.Cells) != len(fields) {
			return nil, fmt.Errorf("votable: row %d has %d cells, want %d", i, len(tr.Cells), len(fields))
		}
		row := make([]any, len(fields))
		for j := range fields {
			v, err := fields[j].decodeText(tr.Cells[j].Value)
			if err != nil {
				return nil, fmt.Errorf("votable: row %d column %q: %w", i, fields[j].Name, err)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}
