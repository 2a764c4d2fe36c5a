package mcsv

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// parser.go loads a MetaCSV sidecar into a Description. The sidecar itself
// is RFC 4180 CSV with the fixed header "domain,key,value"; directives are
// interpreted per domain and unknown domain/key pairs are ignored so that
// files written by newer tools still load.

// LoadDescriptionFile loads the sidecar at path. A missing file is reported
// as ErrNoMetaFile so callers can distinguish it from a malformed one.
func LoadDescriptionFile(path string) (*Description, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoMetaFile, path)
		}
		return nil, err
	}
	defer f.Close()
	return LoadDescription(f)
}

// LoadDescription parses a MetaCSV sidecar from r. The returned Description
// has every declared type compiled; any structural problem is a *LoadError
// and no partially interpreted Description is returned.
func LoadDescription(r io.Reader) (*Description, error) {
	// Sidecars are UTF-8; tolerate a BOM from spreadsheet exports.
	tok := newTokenizer(newBOMSkippingReader(r), RFC4180Dialect())

	header, err := tok.ReadRow()
	if err == io.EOF {
		return nil, loadErrorf(1, "empty meta file, expected header domain,key,value")
	}
	if err != nil {
		return nil, &LoadError{Line: tok.Line(), Msg: "unreadable meta file", Err: err}
	}
	if len(header) != 3 || header[0] != "domain" || header[1] != "key" || header[2] != "value" {
		return nil, loadErrorf(tok.Line(), "bad meta header %q, expected domain,key,value", strings.Join(header, ","))
	}

	b := newDescriptionBuilder()
	for {
		row, err := tok.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &LoadError{Line: tok.Line(), Msg: "unreadable meta file", Err: err}
		}
		if len(row) != 3 {
			return nil, loadErrorf(tok.Line(), "expected 3 fields, got %d", len(row))
		}
		if err := applyDirective(b, row[0], row[1], row[2], tok.Line()); err != nil {
			return nil, err
		}
	}
	return b.build()
}

// applyDirective interprets one domain,key,value row.
func applyDirective(b *descriptionBuilder, domain, key, value string, line int) error {
	switch domain {
	case "file":
		return applyFileDirective(b, key, value, line)
	case "csv":
		return applyCSVDirective(b, key, value, line)
	case "data":
		return applyDataDirective(b, key, value, line)
	case "meta":
		b.setMeta(key, value)
		return nil
	default:
		// Unknown domain: ignore.
		return nil
	}
}

func applyFileDirective(b *descriptionBuilder, key, value string, line int) error {
	switch key {
	case "encoding":
		b.dialect.Encoding = value
	case "bom":
		v, err := parseBoolValue("file", key, value, line)
		if err != nil {
			return err
		}
		b.dialect.BOM = v
	case "line_terminator":
		b.dialect.LineTerminator = unescapeLineTerminator(value)
	}
	return nil
}

func applyCSVDirective(b *descriptionBuilder, key, value string, line int) error {
	switch key {
	case "delimiter":
		c, err := parseCharValue("csv", key, value, line)
		if err != nil {
			return err
		}
		b.dialect.Delimiter = c
	case "quote_char":
		c, err := parseCharValue("csv", key, value, line)
		if err != nil {
			return err
		}
		b.dialect.QuoteChar = c
	case "escape_char":
		c, err := parseCharValue("csv", key, value, line)
		if err != nil {
			return err
		}
		b.dialect.EscapeChar = c
	case "double_quote":
		v, err := parseBoolValue("csv", key, value, line)
		if err != nil {
			return err
		}
		b.dialect.DoubleQuote = v
	case "skip_initial_space":
		v, err := parseBoolValue("csv", key, value, line)
		if err != nil {
			return err
		}
		b.dialect.SkipInitialSpace = v
	}
	return nil
}

func applyDataDirective(b *descriptionBuilder, key, value string, line int) error {
	if key == "null_value" {
		b.nullValue = value
		return nil
	}
	parts := strings.Split(key, "/")
	if len(parts) != 3 || parts[0] != "col" {
		// Unknown data key: ignore.
		return nil
	}
	index, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil
	}
	if index < 1 {
		return loadErrorf(line, "column index must be >= 1, got %d", index)
	}
	switch parts[2] {
	case "type":
		return b.setColumnType(index, value, line)
	case "name":
		return b.setColumnName(index, value, line)
	default:
		return nil
	}
}

func parseBoolValue(domain, key, value string, line int) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, loadErrorf(line, "%s %s: expected true or false, got %q", domain, key, value)
}

func parseCharValue(domain, key, value string, line int) (byte, error) {
	if len(value) != 1 {
		return 0, loadErrorf(line, "%s %s: expected a single character, got %q", domain, key, value)
	}
	return value[0], nil
}
