package mcsv

import (
	"bufio"
	"io"
	"sort"
	"strconv"
)

// RenderOption configures RenderDescription.
type RenderOption func(*renderOptions)

type renderOptions struct {
	verbose bool
}

// Verbose makes the renderer emit every directive, including those whose
// value is the default. The minimal form writes only what differs from the
// defaults, which round-trips through LoadDescription to an equal
// Description.
func Verbose() RenderOption {
	return func(o *renderOptions) { o.verbose = true }
}

// RenderDescription serializes a Description back to MetaCSV sidecar form.
func RenderDescription(w io.Writer, desc *Description, opts ...RenderOption) error {
	var o renderOptions
	for _, opt := range opts {
		opt(&o)
	}

	bw := bufio.NewWriter(w)
	dialect := RFC4180Dialect()
	emit := func(domain, key, value string) error {
		return writeRecord(bw, dialect, []string{domain, key, value})
	}

	if err := emit("domain", "key", "value"); err != nil {
		return err
	}

	d := desc.Dialect
	def := RFC4180Dialect()
	if o.verbose || d.Encoding != def.Encoding {
		if err := emit("file", "encoding", d.Encoding); err != nil {
			return err
		}
	}
	if o.verbose || d.BOM {
		if err := emit("file", "bom", strconv.FormatBool(d.BOM)); err != nil {
			return err
		}
	}
	if o.verbose || d.LineTerminator != def.LineTerminator {
		if err := emit("file", "line_terminator", escapeLineTerminator(d.LineTerminator)); err != nil {
			return err
		}
	}
	if o.verbose || d.Delimiter != def.Delimiter {
		if err := emit("csv", "delimiter", string(d.Delimiter)); err != nil {
			return err
		}
	}
	if o.verbose || d.QuoteChar != def.QuoteChar {
		if err := emit("csv", "quote_char", string(d.QuoteChar)); err != nil {
			return err
		}
	}
	if o.verbose || d.DoubleQuote != def.DoubleQuote {
		if err := emit("csv", "double_quote", strconv.FormatBool(d.DoubleQuote)); err != nil {
			return err
		}
	}
	if d.EscapeChar != 0 {
		if err := emit("csv", "escape_char", string(d.EscapeChar)); err != nil {
			return err
		}
	}
	if o.verbose || d.SkipInitialSpace {
		if err := emit("csv", "skip_initial_space", strconv.FormatBool(d.SkipInitialSpace)); err != nil {
			return err
		}
	}
	if o.verbose || desc.NullValue != "" {
		if err := emit("data", "null_value", desc.NullValue); err != nil {
			return err
		}
	}

	for _, c := range desc.Columns {
		n := strconv.Itoa(c.Index)
		if c.Name != "" {
			if err := emit("data", "col/"+n+"/name", c.Name); err != nil {
				return err
			}
		}
		switch {
		case c.TypeToken != "":
			if err := emit("data", "col/"+n+"/type", c.TypeToken); err != nil {
				return err
			}
		case o.verbose:
			if err := emit("data", "col/"+n+"/type", c.Label()); err != nil {
				return err
			}
		}
	}

	metaKeys := make([]string, 0, len(desc.Meta))
	for k := range desc.Meta {
		metaKeys = append(metaKeys, k)
	}
	sort.Strings(metaKeys)
	for _, k := range metaKeys {
		if err := emit("meta", k, desc.Meta[k]); err != nil {
			return err
		}
	}

	return bw.Flush()
}
