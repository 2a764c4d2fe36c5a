package mcsv

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Writer emits typed rows as CSV under a description's dialect, formatting
// each value back to text with the column's compiled rule. Writer is the
// inverse of Reader: a row read with a description and written with the
// same one reproduces the original text.
type Writer struct {
	desc  *Description
	w     *bufio.Writer
	procs []FieldProcessor
}

// NewWriter writes CSV described by desc to w. The stream is emitted in the
// dialect's declared encoding, with a BOM when the dialect declares one.
func NewWriter(w io.Writer, desc *Description) (*Writer, error) {
	if desc == nil {
		desc = NewDescription()
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	encoded, err := desc.Dialect.EncodingWriter(w)
	if err != nil {
		return nil, err
	}

	bw := bufio.NewWriter(encoded)
	if desc.Dialect.BOM && desc.Dialect.isUTF8() {
		bw.Write([]byte{0xEF, 0xBB, 0xBF})
	}

	wr := &Writer{desc: desc, w: bw}
	for _, c := range desc.Columns {
		wr.procs = append(wr.procs, c.Type().Processor(desc.NullValue))
	}
	return wr, nil
}

// WriteHeader emits the header record.
func (w *Writer) WriteHeader(names []string) error {
	return w.writeRecord(names)
}

// Write formats and emits one typed row. Columns beyond the declared schema
// pass through the any rule.
func (w *Writer) Write(row Row) error {
	fields := make([]string, len(row))
	for i, v := range row {
		proc := AnyType.Processor(w.desc.NullValue)
		if i < len(w.procs) {
			proc = w.procs[i]
		}
		text, err := proc.Format(v)
		if err != nil {
			return fmt.Errorf("mcsv: column %d: %w", i+1, err)
		}
		fields[i] = text
	}
	return w.writeRecord(fields)
}

// Flush writes buffered output to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

func (w *Writer) writeRecord(fields []string) error {
	return writeRecord(w.w, w.desc.Dialect, fields)
}

// DictWriter emits name-keyed rows in a fixed column order.
type DictWriter struct {
	w     *Writer
	names []string
}

// NewDictWriter writes CSV described by desc, with columns ordered by
// names. The header is emitted immediately.
func NewDictWriter(w io.Writer, desc *Description, names []string) (*DictWriter, error) {
	wr, err := NewWriter(w, desc)
	if err != nil {
		return nil, err
	}
	if err := wr.WriteHeader(names); err != nil {
		return nil, err
	}
	return &DictWriter{w: wr, names: names}, nil
}

// Write emits one row. Missing keys are written as nulls of the column's
// declared type.
func (d *DictWriter) Write(row map[string]Value) error {
	out := make(Row, len(d.names))
	for i, name := range d.names {
		v, ok := row[name]
		if !ok {
			v = NullValue(d.w.desc.TypeFor(i + 1).DataType())
		}
		out[i] = v
	}
	return d.w.Write(out)
}

// Flush writes buffered output to the underlying writer.
func (d *DictWriter) Flush() error { return d.w.Flush() }

// writeRecord emits one record under the dialect's quoting rules and line
// terminator.
func writeRecord(w *bufio.Writer, d Dialect, fields []string) error {
	lt := d.LineTerminator
	if lt == "" {
		lt = "\r\n"
	}
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(d.Delimiter); err != nil {
				return err
			}
		}
		if err := writeField(w, d, f); err != nil {
			return err
		}
	}
	_, err := w.WriteString(lt)
	return err
}

func writeField(w *bufio.Writer, d Dialect, field string) error {
	if !fieldNeedsQuoting(field, d) {
		_, err := w.WriteString(field)
		return err
	}
	useEscape := !d.DoubleQuote && d.EscapeChar != 0
	if err := w.WriteByte(d.QuoteChar); err != nil {
		return err
	}
	for i := 0; i < len(field); i++ {
		b := field[i]
		switch {
		case useEscape && (b == d.QuoteChar || b == d.EscapeChar):
			// Inside quotes the reader treats the escape char as an escape,
			// so a literal escape char must itself be escaped.
			if err := w.WriteByte(d.EscapeChar); err != nil {
				return err
			}
		case b == d.QuoteChar && d.DoubleQuote:
			if err := w.WriteByte(d.QuoteChar); err != nil {
				return err
			}
		case b == d.QuoteChar:
			return fmt.Errorf("mcsv: cannot write %q: quote character with double_quote off and no escape_char", field)
		}
		if err := w.WriteByte(b); err != nil {
			return err
		}
	}
	return w.WriteByte(d.QuoteChar)
}

func fieldNeedsQuoting(field string, d Dialect) bool {
	if field == "" {
		return false
	}
	if !d.DoubleQuote && d.EscapeChar != 0 && strings.IndexByte(field, d.EscapeChar) >= 0 {
		return true
	}
	return strings.IndexByte(field, d.Delimiter) >= 0 ||
		strings.IndexByte(field, d.QuoteChar) >= 0 ||
		strings.ContainsAny(field, "\r\n")
}
