package votable

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
)

// decodeBinaryStream materializes rows from a BINARY or BINARY2 STREAM.
// BINARY2 (masked=true) prefixes every row with a null bitmask covering
// all columns, most significant bit first.
func decodeBinaryStream(fields []Field, stream *Stream, masked bool) ([][]any, error) {
	if stream.Href != "" {
		return nil, fmt.Errorf("votable: external stream href %q not supported", stream.Href)
	}
	switch stream.Encoding {
	case "", "base64":
	default:
		return nil, fmt.Errorf("votable: unsupported stream encoding %q", stream.Encoding)
	}

	raw, err := base64.StdEncoding.DecodeString(stripSpace(stream.Content))
	if err != nil {
		return nil, fmt.Errorf("votable: malformed base64 stream: %w", err)
	}

	dec := &binaryDecoder{r: bytes.NewReader(raw), fields: fields, masked: masked}
	var rows [][]any
	for {
		row, err := dec.readRow()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("votable: row %d: %w", len(rows), err)
		}
		rows = append(rows, row)
	}
}

// stripSpace removes all whitespace from base64 content. Services wrap
// streams at arbitrary column widths.
func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

type binaryDecoder struct {
	r      *bytes.Reader
	fields []Field
	masked bool

	// rowBytes counts bytes consumed in the current row, distinguishing
	// a clean end of stream from a truncated row.
	rowBytes int
}

// readRow decodes the next row. Returns io.EOF at a clean row boundary.
func (d *binaryDecoder) readRow() ([]any, error) {
	d.rowBytes = 0

	var mask []byte
	if d.masked {
		mask = make([]byte, (len(d.fields)+7)/8)
		if err := d.readFull(mask); err != nil {
			return nil, err
		}
	}

	row := make([]any, len(d.fields))
	for i := range d.fields {
		v, err := d.readValue(&d.fields[i])
		if err != nil {
			return nil, err
		}
		if d.masked && mask[i/8]&(1<<(7-uint(i%8))) != 0 {
			// BINARY2 serializes masked values anyway; the bit wins.
			v = nil
		} else if isDeclaredNull(&d.fields[i], v) {
			v = nil
		}
		row[i] = v
	}
	return row, nil
}

// readFull reads exactly len(p) bytes, converting EOF at a row boundary
// into io.EOF and EOF mid-row into an unexpected-EOF error.
func (d *binaryDecoder) readFull(p []byte) error {
	n, err := io.ReadFull(d.r, p)
	d.rowBytes += n
	if err == io.EOF && d.rowBytes == 0 {
		return io.EOF
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("truncated stream: %w", io.ErrUnexpectedEOF)
	}
	return err
}

// readValue decodes one cell.
func (d *binaryDecoder) readValue(f *Field) (any, error) {
	sh, err := f.arrayShape()
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", f.Name, err)
	}

	count := sh.count
	if sh.variable {
		n, err := d.readCount()
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", f.Name, err)
		}
		count = n
	}

	switch f.Datatype {
	case "char":
		buf := make([]byte, count)
		if err := d.readFull(buf); err != nil {
			return nil, err
		}
		return trimCharPadding(string(buf), !sh.variable), nil
	case "unicodeChar":
		buf := make([]byte, 2*count)
		if err := d.readFull(buf); err != nil {
			return nil, err
		}
		units := make([]uint16, count)
		for i := range units {
			units[i] = binary.BigEndian.Uint16(buf[2*i:])
		}
		return trimCharPadding(string(utf16.Decode(units)), !sh.variable), nil
	case "boolean":
		if count != 1 {
			return nil, fmt.Errorf("column %q: boolean arrays not supported", f.Name)
		}
		var b [1]byte
		if err := d.readFull(b[:]); err != nil {
			return nil, err
		}
		return parseBoolByte(b[0])
	}

	size, err := primitiveSize(f.Datatype)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", f.Name, err)
	}
	buf := make([]byte, count*size)
	if err := d.readFull(buf); err != nil {
		return nil, err
	}

	if sh.count == 1 && !sh.variable {
		return decodePrimitive(f.Datatype, buf), nil
	}
	return decodePrimitiveSlice(f.Datatype, buf, count), nil
}

// readCount reads the 4-byte element count of a variable-length value.
func (d *binaryDecoder) readCount() (int, error) {
	var b [4]byte
	if err := d.readFull(b[:]); err != nil {
		return 0, err
	}
	n := binary.BigEndian.Uint32(b[:])
	if n > uint32(d.r.Len()) {
		return 0, fmt.Errorf("implausible element count %d", n)
	}
	return int(n), nil
}

// primitiveSize returns the wire size of one element.
func primitiveSize(datatype string) (int, error) {
	switch datatype {
	case "unsignedByte":
		return 1, nil
	case "short":
		return 2, nil
	case "int", "float":
		return 4, nil
	case "long", "double":
		return 8, nil
	default:
		return 0, fmt.Errorf("unsupported datatype %q", datatype)
	}
}

// decodePrimitive converts one big-endian element.
func decodePrimitive(datatype string, buf []byte) any {
	switch datatype {
	case "unsignedByte":
		return buf[0]
	case "short":
		return int16(binary.BigEndian.Uint16(buf))
	case "int":
		return int32(binary.BigEndian.Uint32(buf))
	case "long":
		return int64(binary.BigEndian.Uint64(buf))
	case "float":
		return math.Float32frombits(binary.BigEndian.Uint32(buf))
	case "double":
		return math.Float64frombits(binary.BigEndian.Uint64(buf))
	}
	return nil
}

// decodePrimitiveSlice converts a packed big-endian array to a typed slice.
func decodePrimitiveSlice(datatype string, buf []byte, count int) any {
	switch datatype {
	case "unsignedByte":
		out := make([]uint8, count)
		copy(out, buf)
		return out
	case "short":
		out := make([]int16, count)
		for i := range out {
			out[i] = int16(binary.BigEndian.Uint16(buf[2*i:]))
		}
		return out
	case "int":
		out := make([]int32, count)
		for i := range out {
			out[i] = int32(binary.BigEndian.Uint32(buf[4*i:]))
		}
		return out
	case "long":
		out := make([]int64, count)
		for i := range out {
			out[i] = int64(binary.BigEndian.Uint64(buf[8*i:]))
		}
		return out
	case "float":
		out := make([]float32, count)
		for i := range out {
			out[i] = math.Float32frombits(binary.BigEndian.Uint32(buf[4*i:]))
		}
		return out
	case "double":
		out := make([]float64, count)
		for i := range out {
			out[i] = math.Float64frombits(binary.BigEndian.Uint64(buf[8*i:]))
		}
		return out
	}
	return nil
}

// parseBoolByte decodes the single-byte boolean forms.
func parseBoolByte(b byte) (any, error) {
	switch b {
	case 'T', 't', '1':
		return true, nil
	case 'F', 'f', '0':
		return false, nil
	case '?', ' ', 0:
		return nil, nil
	default:
		return nil, fmt.Errorf("invalid boolean byte 0x%02x", b)
	}
}

// trimCharPadding removes NUL padding, and for fixed-width columns the
// trailing space padding services use to fill the declared width.
func trimCharPadding(s string, fixed bool) string {
	s = strings.TrimRight(s, "\x00")
	if fixed {
		s = strings.TrimRight(s, " ")
	}
	return s
}

// isDeclaredNull compares a decoded value against the column's declared
// null literal. Applies to integer and character columns; floats encode
// null as NaN on the wire, which stays NaN.
func isDeclaredNull(f *Field, v any) bool {
	literal, ok := f.nullLiteral()
	if !ok || v == nil {
		return false
	}
	switch x := v.(type) {
	case string:
		return x == literal
	case uint8:
		n, err := strconv.ParseInt(literal, 10, 64)
		return err == nil && int64(x) == n
	case int16:
		n, err := strconv.ParseInt(literal, 10, 64)
		return err == nil && int64(x) == n
	case int32:
		n, err := strconv.ParseInt(literal, 10, 64)
		return err == nil && int64(x) == n
	case int64:
		n, err := strconv.ParseInt(literal, 10, 64)
		return err == nil && x == n
	}
	return false
}
