package mcsv

import (
	"errors"
	"fmt"
)

var (
	// ErrBareQuote is returned when a quote character appears inside an
	// unquoted field.
	ErrBareQuote = errors.New("mcsv: bare quote in non-quoted field")
	// ErrUnterminatedQuote is returned when a quoted field is not closed
	// before the end of the stream.
	ErrUnterminatedQuote = errors.New("mcsv: unterminated quoted field")
	// ErrNoMetaFile is returned when no MetaCSV sidecar exists for a data file.
	ErrNoMetaFile = errors.New("mcsv: meta file not found")
)

// LoadError reports a structural problem in a MetaCSV sidecar: a malformed
// header, a duplicate or missing column index, or an unsupported type token.
// Load errors are fatal and detected before any data row is produced.
type LoadError struct {
	Line int    // 1-based line in the sidecar, 0 if not line-scoped
	Msg  string
	Err  error
}

func (e *LoadError) Error() string {
	if e == nil {
		return ""
	}
	if e.Line > 0 {
		return fmt.Sprintf("mcsv: load error on line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("mcsv: load error: %s", e.Msg)
}

func (e *LoadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func loadErrorf(line int, format string, args ...any) *LoadError {
	return &LoadError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// DialectError reports unsupported or contradictory dialect settings, such as
// a delimiter equal to the quote character or an encoding that cannot be
// resolved. Dialect errors are fatal.
type DialectError struct {
	Setting string
	Msg     string
}

func (e *DialectError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("mcsv: dialect error (%s): %s", e.Setting, e.Msg)
}

func dialectErrorf(setting, format string, args ...any) *DialectError {
	return &DialectError{Setting: setting, Msg: fmt.Sprintf(format, args...)}
}

// DecodeError reports a row-scoped problem while decoding data rows: an
// arity mismatch or a cell that does not match its declared type. A
// DecodeError does not invalidate the stream; the reader keeps its position
// and the next Read call returns the next row.
type DecodeError struct {
	Row    int    // 1-based data row number (header excluded)
	Column int    // 1-based column index, 0 if the whole row is at fault
	Name   string // resolved column name, empty if the whole row is at fault
	Value  string // raw cell value
	Label  string // expected type label, e.g. "date/YYYY-MM-dd"
	Err    error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return ""
	}
	if e.Column == 0 {
		return fmt.Sprintf("mcsv: row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("mcsv: row %d, column %d (%s): cannot cast %q to %s: %v",
		e.Row, e.Column, e.Name, e.Value, e.Label, e.Err)
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StreamError reports a fatal I/O or character-decoding failure in the
// underlying byte stream. Offset is the byte position when known, -1 otherwise.
type StreamError struct {
	Offset int64
	Err    error
}

func (e *StreamError) Error() string {
	if e == nil {
		return ""
	}
	if e.Offset >= 0 {
		return fmt.Sprintf("mcsv: stream error at byte %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("mcsv: stream error: %v", e.Err)
}

func (e *StreamError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// castError is the internal failure returned by field processors. The reader
// wraps it into a DecodeError carrying the column identity and row number.
type castError struct {
	value string
	label string
	err   error
}

func (e *castError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("cannot cast %q to %s: %v", e.value, e.label, e.err)
	}
	return fmt.Sprintf("cannot cast %q to %s", e.value, e.label)
}

func (e *castError) Unwrap() error { return e.err }
