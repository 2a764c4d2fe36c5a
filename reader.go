package mcsv

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ErrorPolicy selects what a Reader does with a cell that fails to cast.
type ErrorPolicy int

const (
	// ErrorFail surfaces the cast failure as a row-scoped *DecodeError.
	ErrorFail ErrorPolicy = iota
	// ErrorNull replaces the failing cell with a null of the declared type.
	ErrorNull
	// ErrorText replaces the failing cell with its raw text.
	ErrorText
)

// ReaderOption configures a Reader or DictReader.
type ReaderOption func(*readerOptions)

type readerOptions struct {
	includeTypes bool
	policy       ErrorPolicy
	logger       *slog.Logger
}

// IncludeTypes makes the first yielded row carry each column's canonical
// type label instead of data.
func IncludeTypes() ReaderOption {
	return func(o *readerOptions) { o.includeTypes = true }
}

// OnError sets the policy applied to cells that fail to cast.
func OnError(p ErrorPolicy) ReaderOption {
	return func(o *readerOptions) { o.policy = p }
}

// WithLogger sets the logger used for non-fatal diagnostics such as header
// names that contradict declared names. Defaults to slog.Default().
func WithLogger(l *slog.Logger) ReaderOption {
	return func(o *readerOptions) { o.logger = l }
}

// Reader decodes a typed CSV stream row by row. It is pull-based and
// single-pass: each Read call consumes exactly one record. A *DecodeError
// from Read is row-scoped; the next call continues with the next record.
// Any other error is fatal and sticky.
type Reader struct {
	desc      *Description
	tok       *tokenizer
	opts      readerOptions
	names     []string
	procs     []FieldProcessor
	labels    []string
	kinds     []DataType
	row       int // 1-based data row counter
	typesSent bool
	closer    io.Closer
	err       error
}

// NewReader decodes the data CSV in r as described by desc. The first
// record is consumed immediately as the header row: declared column names
// are authoritative, header names fill the gaps, and a header cell that
// contradicts a declared name is logged as a warning.
func NewReader(r io.Reader, desc *Description, opts ...ReaderOption) (*Reader, error) {
	if desc == nil {
		desc = NewDescription()
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	o := readerOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	decoded, err := desc.Dialect.DecodingReader(r)
	if err != nil {
		return nil, err
	}

	rd := &Reader{
		desc: desc,
		tok:  newTokenizer(decoded, desc.Dialect),
		opts: o,
	}
	if err := rd.readHeader(); err != nil {
		return nil, err
	}
	return rd, nil
}

func (r *Reader) readHeader() error {
	header, err := r.tok.ReadRow()
	if err == io.EOF {
		r.err = io.EOF
		return nil
	}
	if err != nil {
		return err
	}

	width := len(header)
	if n := len(r.desc.Columns); n > width {
		width = n
	}
	r.names = make([]string, width)
	r.procs = make([]FieldProcessor, width)
	r.labels = make([]string, width)
	r.kinds = make([]DataType, width)

	for i := 0; i < width; i++ {
		index := i + 1
		fd := r.desc.TypeFor(index)
		r.procs[i] = fd.Processor(r.desc.NullValue)
		r.labels[i] = fd.Label()
		r.kinds[i] = fd.DataType()

		var headerName string
		if i < len(header) {
			headerName = header[i]
		}
		if c, ok := r.desc.Column(index); ok && c.Name != "" {
			if headerName != "" && headerName != c.Name {
				r.opts.logger.Warn("header name differs from declared name",
					"column", index,
					"header", headerName,
					"declared", c.Name)
			}
			r.names[i] = c.Name
		} else if headerName != "" {
			r.names[i] = headerName
		} else {
			r.names[i] = fmt.Sprintf("col%d", index)
		}
	}
	return nil
}

// Header returns the resolved column names.
func (r *Reader) Header() []string { return r.names }

// TypeLabels returns the canonical type token of each column.
func (r *Reader) TypeLabels() []string { return r.labels }

// DataTypes returns the semantic type of each column.
func (r *Reader) DataTypes() []DataType { return r.kinds }

// Description returns the description the reader decodes with.
func (r *Reader) Description() *Description { return r.desc }

// Read returns the next typed row. It returns io.EOF at the end of the
// stream. A *DecodeError reports a problem scoped to one row and leaves
// the reader usable; every other error is fatal.
func (r *Reader) Read() (Row, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.opts.includeTypes && !r.typesSent {
		r.typesSent = true
		row := make(Row, len(r.labels))
		for i, label := range r.labels {
			row[i] = TextValue(label)
		}
		return row, nil
	}

	rec, err := r.tok.ReadRow()
	if err == io.EOF {
		r.err = io.EOF
		return nil, io.EOF
	}
	if err != nil {
		r.err = err
		return nil, err
	}
	r.row++

	if len(rec) != len(r.names) {
		return nil, &DecodeError{
			Row: r.row,
			Err: fmt.Errorf("expected %d fields, got %d", len(r.names), len(rec)),
		}
	}

	row := make(Row, len(rec))
	for i, cell := range rec {
		v, err := r.procs[i].Cast(cell)
		if err != nil {
			switch r.opts.policy {
			case ErrorNull:
				v = NullValue(r.kinds[i])
			case ErrorText:
				v = TextValue(cell)
			default:
				return nil, r.decodeError(i, cell, err)
			}
		}
		row[i] = v
	}
	return row, nil
}

func (r *Reader) decodeError(i int, cell string, err error) *DecodeError {
	de := &DecodeError{
		Row:    r.row,
		Column: i + 1,
		Name:   r.names[i],
		Value:  cell,
		Label:  r.labels[i],
		Err:    err,
	}
	if ce, ok := err.(*castError); ok {
		de.Err = ce.err
	}
	return de
}

// Close releases the underlying file when the reader was opened from a path.
// Readers built over a caller-owned io.Reader close nothing.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	c := r.closer
	r.closer = nil
	return c.Close()
}

// OpenReader opens a data file and its sidecar. An empty metaPath derives
// the sidecar path by swapping the data file's extension for ".mcsv".
func OpenReader(dataPath, metaPath string, opts ...ReaderOption) (*Reader, error) {
	if metaPath == "" {
		metaPath = ToMetaPath(dataPath)
	}
	desc, err := LoadDescriptionFile(metaPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(dataPath)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(f, desc, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// DictReader decodes rows into name-keyed maps instead of positional rows.
type DictReader struct {
	r *Reader
}

// NewDictReader wraps a data stream in dict mode.
func NewDictReader(r io.Reader, desc *Description, opts ...ReaderOption) (*DictReader, error) {
	rd, err := NewReader(r, desc, opts...)
	if err != nil {
		return nil, err
	}
	return &DictReader{r: rd}, nil
}

// OpenDictReader opens a data file and its sidecar in dict mode. An empty
// metaPath derives the sidecar path from the data path.
func OpenDictReader(dataPath, metaPath string, opts ...ReaderOption) (*DictReader, error) {
	rd, err := OpenReader(dataPath, metaPath, opts...)
	if err != nil {
		return nil, err
	}
	return &DictReader{r: rd}, nil
}

// Header returns the resolved column names, in file order.
func (d *DictReader) Header() []string { return d.r.Header() }

// Description returns the description the reader decodes with.
func (d *DictReader) Description() *Description { return d.r.Description() }

// Read returns the next row keyed by resolved column name. Error semantics
// match Reader.Read.
func (d *DictReader) Read() (map[string]Value, error) {
	row, err := d.r.Read()
	if err != nil {
		return nil, err
	}
	m := make(map[string]Value, len(row))
	for i, v := range row {
		m[d.r.names[i]] = v
	}
	return m, nil
}

// Close releases the underlying file when opened from a path.
func (d *DictReader) Close() error { return d.r.Close() }
