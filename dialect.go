package mcsv

import (
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// Dialect holds the lexical rules needed to tokenize a CSV stream: field
// delimiter, quoting, escaping, line terminator and text encoding.
//
// The zero Dialect is not usable; start from RFC4180Dialect and override.
type Dialect struct {
	// Delimiter separates fields. Default ','.
	Delimiter byte
	// QuoteChar wraps fields containing delimiters, quotes or newlines.
	// Default '"'.
	QuoteChar byte
	// DoubleQuote, when true, escapes a quote inside a quoted field by
	// doubling it. When false, EscapeChar is used instead. Default true.
	DoubleQuote bool
	// EscapeChar escapes the next character when DoubleQuote is false.
	// Zero means no escape character.
	EscapeChar byte
	// SkipInitialSpace drops spaces immediately following a delimiter.
	SkipInitialSpace bool
	// LineTerminator ends a record on write. On read, LF, CRLF and CR are
	// all accepted. Default "\r\n".
	LineTerminator string
	// Encoding is the IANA name of the stream's character encoding.
	// Default "utf-8".
	Encoding string
	// BOM indicates a leading byte order mark that must be skipped.
	BOM bool
}

// RFC4180Dialect returns the default dialect: comma-separated, double-quoted
// UTF-8 with CRLF line endings.
func RFC4180Dialect() Dialect {
	return Dialect{
		Delimiter:      ',',
		QuoteChar:      '"',
		DoubleQuote:    true,
		LineTerminator: "\r\n",
		Encoding:       "utf-8",
	}
}

// Validate checks the dialect for contradictory or unsupported settings.
func (d Dialect) Validate() error {
	if d.Delimiter == 0 {
		return dialectErrorf("delimiter", "missing delimiter")
	}
	if d.QuoteChar == 0 {
		return dialectErrorf("quote_char", "missing quote character")
	}
	if d.Delimiter == d.QuoteChar {
		return dialectErrorf("delimiter", "delimiter %q equals quote character", d.Delimiter)
	}
	if d.EscapeChar != 0 && (d.EscapeChar == d.Delimiter || d.EscapeChar == d.QuoteChar) {
		return dialectErrorf("escape_char", "escape character %q collides with delimiter or quote", d.EscapeChar)
	}
	if d.Delimiter == '\n' || d.Delimiter == '\r' || d.QuoteChar == '\n' || d.QuoteChar == '\r' {
		return dialectErrorf("delimiter", "newline characters cannot delimit or quote fields")
	}
	switch d.LineTerminator {
	case "\n", "\r\n", "\r", "":
	default:
		return dialectErrorf("line_terminator", "unsupported line terminator %q", d.LineTerminator)
	}
	if !d.isUTF8() {
		if _, err := lookupEncoding(d.Encoding); err != nil {
			return err
		}
	}
	return nil
}

func (d Dialect) isUTF8() bool {
	switch strings.ToLower(d.Encoding) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}

// lookupEncoding resolves an IANA encoding name to an x/text encoding.
func lookupEncoding(name string) (encoding.Encoding, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, dialectErrorf("encoding", "unsupported encoding %q", name)
	}
	return enc, nil
}

// DecodingReader wraps r so that the bytes read are UTF-8, whatever the
// dialect's declared encoding. A BOM is skipped when the dialect declares
// one (and tolerated for plain UTF-8, where Excel adds it unannounced).
// For UTF-8 input the stream is validated and an invalid sequence surfaces
// as a StreamError with the byte offset.
func (d Dialect) DecodingReader(r io.Reader) (io.Reader, error) {
	if d.isUTF8() {
		return newUTF8ValidatingReader(newBOMSkippingReader(r)), nil
	}
	enc, err := lookupEncoding(d.Encoding)
	if err != nil {
		return nil, err
	}
	decoded := io.Reader(transform.NewReader(r, enc.NewDecoder()))
	if d.BOM {
		// After transcoding the BOM is U+FEFF in UTF-8, whatever bytes the
		// source encoding used for it.
		decoded = newBOMSkippingReader(decoded)
	}
	return decoded, nil
}

// EncodingWriter wraps w so that UTF-8 text written to it is emitted in the
// dialect's declared encoding.
func (d Dialect) EncodingWriter(w io.Writer) (io.Writer, error) {
	if d.isUTF8() {
		return w, nil
	}
	enc, err := lookupEncoding(d.Encoding)
	if err != nil {
		return nil, err
	}
	return transform.NewWriter(w, enc.NewEncoder()), nil
}
