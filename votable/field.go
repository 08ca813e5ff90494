package votable

import (
	"fmt"
	"strconv"
	"strings"
)

// Field declares one table column: its name, datatype and shape.
type Field struct {
	ID          string  `xml:"ID,attr"`
	Name        string  `xml:"name,attr"`
	Datatype    string  `xml:"datatype,attr"`
	Arraysize   string  `xml:"arraysize,attr"`
	Unit        string  `xml:"unit,attr"`
	UCD         string  `xml:"ucd,attr"`
	XType       string  `xml:"xtype,attr"`
	Description string  `xml:"DESCRIPTION"`
	Values      *Values `xml:"VALUES"`
}

// Values carries the declared null literal for a column.
type Values struct {
	Null string `xml:"null,attr"`
}

// Key returns the name used for column lookup: the name attribute, or the
// ID when the name is absent.
func (f *Field) Key() string {
	if f.Name != "" {
		return f.Name
	}
	return f.ID
}

// isCharString reports whether cells of this column decode to Go strings.
func (f *Field) isCharString() bool {
	return f.Datatype == "char" || f.Datatype == "unicodeChar"
}

// shape describes the column's array layout on the wire.
type shape struct {
	count    int  // fixed element count; 1 for scalars
	variable bool // true when a row carries its own element count
}

// arrayShape parses the arraysize attribute.
//
// Supported forms: "" (scalar), "*" (variable), "N" (fixed), "N*"
// (variable with an advisory bound). Multidimensional sizes ("NxM") are
// not supported.
func (f *Field) arrayShape() (shape, error) {
	a := strings.TrimSpace(f.Arraysize)
	switch {
	case a == "":
		return shape{count: 1}, nil
	case a == "*":
		return shape{variable: true}, nil
	case strings.ContainsAny(a, "xX"):
		return shape{}, fmt.Errorf("unsupported multidimensional arraysize %q", f.Arraysize)
	case strings.HasSuffix(a, "*"):
		return shape{variable: true}, nil
	default:
		n, err := strconv.Atoi(a)
		if err != nil || n < 1 {
			return shape{}, fmt.Errorf("invalid arraysize %q", f.Arraysize)
		}
		return shape{count: n}, nil
	}
}

// isScalar reports whether the column holds exactly one primitive per row.
// Character columns are never scalar in this sense: their array dimension
// is string length.
func (f *Field) isScalar() bool {
	sh, err := f.arrayShape()
	return err == nil && !sh.variable && sh.count == 1
}

// nullLiteral returns the declared null representation, if any.
func (f *Field) nullLiteral() (string, bool) {
	if f.Values == nil || f.Values.Null == "" {
		return "", false
	}
	return f.Values.Null, true
}

// decodeText converts one TABLEDATA cell to its Go value.
//
// Null cells decode to nil: an empty cell of a non-character column, any
// cell equal to the declared null literal, and "?" or empty booleans.
// Float NaN is a value, not a null.
func (f *Field) decodeText(raw string) (any, error) {
	if f.isCharString() {
		if null, ok := f.nullLiteral(); ok && raw == null {
			return nil, nil
		}
		return raw, nil
	}

	s := strings.TrimSpace(raw)
	if null, ok := f.nullLiteral(); ok && s == null {
		return nil, nil
	}

	if f.isScalar() {
		return f.decodeScalarText(s)
	}

	if s == "" {
		return nil, nil
	}
	return f.decodeArrayText(strings.Fields(s))
}

// decodeScalarText parses a single primitive value.
func (f *Field) decodeScalarText(s string) (any, error) {
	if s == "" {
		return nil, nil
	}

	switch f.Datatype {
	case "boolean":
		return parseBoolText(s)
	case "unsignedByte":
		v, err := strconv.ParseUint(s, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid unsignedByte %q", s)
		}
		return uint8(v), nil
	case "short":
		v, err := strconv.ParseInt(s, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid short %q", s)
		}
		return int16(v), nil
	case "int":
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid int %q", s)
		}
		return int32(v), nil
	case "long":
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid long %q", s)
		}
		return v, nil
	case "float":
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q", s)
		}
		return float32(v), nil
	case "double":
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid double %q", s)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported datatype %q", f.Datatype)
	}
}

// decodeArrayText parses a whitespace-separated array cell into a typed
// slice. TABLEDATA is lenient about element counts; structural length
// checks only apply to the binary serializations.
func (f *Field) decodeArrayText(parts []string) (any, error) {
	switch f.Datatype {
	case "short":
		out := make([]int16, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseInt(p, 10, 16)
			if err != nil {
				return nil, fmt.Errorf("invalid short %q", p)
			}
			out[i] = int16(v)
		}
		return out, nil
	case "int":
		out := make([]int32, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseInt(p, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid int %q", p)
			}
			out[i] = int32(v)
		}
		return out, nil
	case "long":
		out := make([]int64, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseInt(p, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid long %q", p)
			}
			out[i] = v
		}
		return out, nil
	case "float":
		out := make([]float32, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseFloat(p, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid float %q", p)
			}
			out[i] = float32(v)
		}
		return out, nil
	case "double":
		out := make([]float64, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid double %q", p)
			}
			out[i] = v
		}
		return out, nil
	case "unsignedByte":
		out := make([]uint8, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseUint(p, 10, 8)
			if err != nil {
				return nil, fmt.Errorf("invalid unsignedByte %q", p)
			}
			out[i] = uint8(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported array datatype %q", f.Datatype)
	}
}

// parseBoolText decodes the VOTable boolean text forms.
func parseBoolText(s string) (any, error) {
	switch strings.ToLower(s) {
	case "t", "true", "1":
		return true, nil
	case "f", "false", "0":
		return false, nil
	case "", "?":
		return nil, nil
	default:
		return nil, fmt.Errorf("invalid boolean %q", s)
	}
}
