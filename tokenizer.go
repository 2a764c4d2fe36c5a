package mcsv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// tokenizer is a byte-level CSV state machine parameterized by a Dialect.
// It yields records lazily and never enforces a field count; arity is the
// decoder's concern. LF, CRLF and CR all terminate records on read,
// whatever the dialect's write terminator.
type tokenizer struct {
	r          *bufio.Reader
	dialect    Dialect
	line       int // current 1-based physical line
	recordLine int // line the last returned record started on
	done       bool
}

func newTokenizer(r io.Reader, d Dialect) *tokenizer {
	return &tokenizer{
		r:       bufio.NewReaderSize(r, 64*1024),
		dialect: d,
		line:    1,
	}
}

// Line returns the 1-based physical line the last record started on.
func (t *tokenizer) Line() int { return t.recordLine }

func (t *tokenizer) peek() (byte, bool) {
	bs, err := t.r.Peek(1)
	if err != nil || len(bs) == 0 {
		return 0, false
	}
	return bs[0], true
}

// ReadRow returns the next record, skipping fully blank lines. It returns
// io.EOF when the stream is exhausted without a pending record, so a
// trailing line terminator does not produce a spurious empty row.
func (t *tokenizer) ReadRow() ([]string, error) {
	if t.done {
		return nil, io.EOF
	}

	d := t.dialect
	useEscape := !d.DoubleQuote && d.EscapeChar != 0

	var (
		fields     []string
		field      []byte
		inQuotes   bool
		afterQuote bool // a closing quote was seen; only delimiter or EOL may follow
		fieldStart = true
		skipSpaces bool // eating spaces right after a delimiter
		sawAny     bool // the record has content beyond line terminators
	)
	t.recordLine = t.line

	endField := func() {
		fields = append(fields, string(field))
		field = field[:0]
		fieldStart = true
		afterQuote = false
		skipSpaces = d.SkipInitialSpace
		sawAny = true
	}

	for {
		b, err := t.r.ReadByte()
		if err != nil {
			if err != io.EOF {
				var se *StreamError
				if errors.As(err, &se) {
					return nil, err
				}
				return nil, &StreamError{Offset: -1, Err: err}
			}
			t.done = true
			if inQuotes {
				return nil, fmt.Errorf("line %d: %w", t.recordLine, ErrUnterminatedQuote)
			}
			if !sawAny {
				return nil, io.EOF
			}
			fields = append(fields, string(field))
			return fields, nil
		}

		if inQuotes {
			switch {
			case useEscape && b == d.EscapeChar:
				nb, err := t.r.ReadByte()
				if err != nil {
					field = append(field, b)
					continue
				}
				if nb == '\n' {
					t.line++
				}
				field = append(field, nb)
			case b == d.QuoteChar:
				if d.DoubleQuote {
					if nb, ok := t.peek(); ok && nb == d.QuoteChar {
						t.r.ReadByte()
						field = append(field, d.QuoteChar)
						continue
					}
				}
				inQuotes = false
				afterQuote = true
			case b == '\n':
				t.line++
				field = append(field, b)
			default:
				field = append(field, b)
			}
			continue
		}

		if skipSpaces {
			if b == ' ' {
				continue
			}
			skipSpaces = false
		}

		switch {
		case b == d.Delimiter:
			endField()
		case b == '\n', b == '\r':
			if b == '\r' {
				if nb, ok := t.peek(); ok && nb == '\n' {
					t.r.ReadByte()
				}
			}
			t.line++
			if !sawAny && len(fields) == 0 && len(field) == 0 {
				// blank line
				t.recordLine = t.line
				continue
			}
			fields = append(fields, string(field))
			return fields, nil
		case afterQuote:
			return nil, fmt.Errorf("line %d: %w", t.line, ErrBareQuote)
		case b == d.QuoteChar:
			if !fieldStart || len(field) > 0 {
				return nil, fmt.Errorf("line %d: %w", t.line, ErrBareQuote)
			}
			inQuotes = true
			fieldStart = false
			sawAny = true
		case useEscape && b == d.EscapeChar:
			nb, err := t.r.ReadByte()
			if err != nil {
				field = append(field, b)
				continue
			}
			if nb == '\n' {
				t.line++
			}
			field = append(field, nb)
			fieldStart = false
			sawAny = true
		default:
			field = append(field, b)
			fieldStart = false
			sawAny = true
		}
	}
}
