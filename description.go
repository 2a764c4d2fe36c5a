package mcsv

import "fmt"

// ColumnSpec is one declared column of a MetaCSV description.
type ColumnSpec struct {
	// Index is the 1-based position of the column in the data file.
	Index int
	// Name is the declared column name. Empty means the data file's header
	// supplies the name.
	Name string
	// TypeToken is the declared type token as written in the sidecar. Empty
	// means the column is untyped and decodes through the any rule.
	TypeToken string
	// Description is the compiled form of TypeToken, nil when untyped.
	Description FieldDescription
}

// Type returns the compiled field description, falling back to the any
// passthrough for untyped columns.
func (c ColumnSpec) Type() FieldDescription {
	if c.Description == nil {
		return AnyType
	}
	return c.Description
}

// Label returns the canonical type token for the column.
func (c ColumnSpec) Label() string {
	return c.Type().Label()
}

// Description is the interpreted content of a MetaCSV sidecar: the data
// file's dialect, the null marker, and the declared column schema. A
// Description is immutable once built and safe to share between readers.
type Description struct {
	// Dialect holds the file and csv domain directives.
	Dialect Dialect
	// NullValue is the data-domain null marker. The default is the empty
	// string, so empty cells of typed columns decode to null.
	NullValue string
	// Columns are the declared columns, ordered by index, contiguous from 1.
	// The data file may have more columns than declared; the extras decode
	// through the any rule.
	Columns []ColumnSpec
	// Meta carries the ignored meta-domain pairs verbatim, for round-trips.
	Meta map[string]string
}

// NewDescription returns a Description with the default dialect and no
// declared columns: every column of the data file decodes as any.
func NewDescription() *Description {
	return &Description{Dialect: RFC4180Dialect()}
}

// Column returns the spec for a 1-based index and whether it is declared.
func (d *Description) Column(index int) (ColumnSpec, bool) {
	if index < 1 || index > len(d.Columns) {
		return ColumnSpec{}, false
	}
	return d.Columns[index-1], true
}

// TypeFor returns the compiled rule for a 1-based column index, falling back
// to the any passthrough beyond the declared schema.
func (d *Description) TypeFor(index int) FieldDescription {
	if c, ok := d.Column(index); ok {
		return c.Type()
	}
	return AnyType
}

// Validate checks the description's internal consistency: a valid dialect
// and column indices contiguous from 1.
func (d *Description) Validate() error {
	if err := d.Dialect.Validate(); err != nil {
		return err
	}
	for i, c := range d.Columns {
		if c.Index != i+1 {
			return loadErrorf(0, "column indices must be contiguous from 1, got %d at position %d", c.Index, i+1)
		}
	}
	return nil
}

// columnDraft accumulates the col/<N>/... directives for one index while the
// sidecar is being parsed. Lines are kept for error reporting.
type columnDraft struct {
	name     string
	hasName  bool
	token    string
	hasToken bool
	typeLine int
}

// descriptionBuilder assembles a Description from parsed sidecar directives
// and enforces the structural rules at Build time.
type descriptionBuilder struct {
	dialect   Dialect
	nullValue string
	meta      map[string]string
	cols      map[int]*columnDraft
}

func newDescriptionBuilder() *descriptionBuilder {
	return &descriptionBuilder{
		dialect: RFC4180Dialect(),
		cols:    make(map[int]*columnDraft),
	}
}

func (b *descriptionBuilder) column(index int) *columnDraft {
	c, ok := b.cols[index]
	if !ok {
		c = &columnDraft{}
		b.cols[index] = c
	}
	return c
}

func (b *descriptionBuilder) setColumnName(index int, name string, line int) error {
	c := b.column(index)
	if c.hasName {
		return loadErrorf(line, "duplicate name for column %d", index)
	}
	c.name = name
	c.hasName = true
	return nil
}

func (b *descriptionBuilder) setColumnType(index int, token string, line int) error {
	c := b.column(index)
	if c.hasToken {
		return loadErrorf(line, "duplicate type for column %d", index)
	}
	c.token = token
	c.hasToken = true
	c.typeLine = line
	return nil
}

func (b *descriptionBuilder) setMeta(key, value string) {
	if b.meta == nil {
		b.meta = make(map[string]string)
	}
	b.meta[key] = value
}

// build validates contiguity, compiles every declared type token, and
// returns the finished Description.
func (b *descriptionBuilder) build() (*Description, error) {
	d := &Description{
		Dialect:   b.dialect,
		NullValue: b.nullValue,
		Meta:      b.meta,
	}
	if err := d.Dialect.Validate(); err != nil {
		return nil, err
	}

	if len(b.cols) == 0 {
		return d, nil
	}
	d.Columns = make([]ColumnSpec, len(b.cols))
	for index, c := range b.cols {
		if index < 1 || index > len(b.cols) {
			return nil, loadErrorf(0, "column indices must be contiguous from 1, missing or out-of-range index near %d", index)
		}
		spec := ColumnSpec{Index: index, Name: c.name, TypeToken: c.token}
		if c.hasToken {
			fd, err := CompileType(c.token)
			if err != nil {
				if le, ok := err.(*LoadError); ok && le.Line == 0 {
					le.Line = c.typeLine
					le.Msg = fmt.Sprintf("column %d: %s", index, le.Msg)
				}
				return nil, err
			}
			spec.Description = fd
		}
		d.Columns[index-1] = spec
	}
	return d, nil
}
