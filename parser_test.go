package mcsv

import (
	"errors"
	"strings"
	"testing"
)

func mustLoad(t *testing.T, sidecar string) *Description {
	t.Helper()
	desc, err := LoadDescription(strings.NewReader(sidecar))
	if err != nil {
		t.Fatalf("LoadDescription: %v", err)
	}
	return desc
}

func TestLoadDescription(t *testing.T) {
	sidecar := strings.Join([]string{
		"domain,key,value",
		"file,encoding,iso-8859-1",
		"file,bom,false",
		`file,line_terminator,\n`,
		"csv,delimiter,;",
		"csv,quote_char,'",
		"csv,double_quote,false",
		"csv,escape_char,\\",
		"csv,skip_initial_space,true",
		"data,null_value,NULL",
		"data,col/1/name,id",
		"data,col/1/type,integer",
		"data,col/2/name,when",
		"data,col/2/type,date/yyyy-MM-dd",
		"data,col/3/type,boolean/yes/no",
		"meta,author,jdoe",
	}, "\n") + "\n"

	desc := mustLoad(t, sidecar)

	d := desc.Dialect
	if d.Encoding != "iso-8859-1" {
		t.Errorf("Encoding = %q", d.Encoding)
	}
	if d.BOM {
		t.Error("BOM = true")
	}
	if d.LineTerminator != "\n" {
		t.Errorf("LineTerminator = %q", d.LineTerminator)
	}
	if d.Delimiter != ';' || d.QuoteChar != '\'' || d.EscapeChar != '\\' {
		t.Errorf("delimiter/quote/escape = %q %q %q", d.Delimiter, d.QuoteChar, d.EscapeChar)
	}
	if d.DoubleQuote {
		t.Error("DoubleQuote = true")
	}
	if !d.SkipInitialSpace {
		t.Error("SkipInitialSpace = false")
	}
	if desc.NullValue != "NULL" {
		t.Errorf("NullValue = %q", desc.NullValue)
	}
	if len(desc.Columns) != 3 {
		t.Fatalf("len(Columns) = %d, want 3", len(desc.Columns))
	}
	if c := desc.Columns[0]; c.Name != "id" || c.Description.DataType() != DataInteger {
		t.Errorf("column 1 = %+v", c)
	}
	if c := desc.Columns[1]; c.Name != "when" || c.Description.DataType() != DataDate {
		t.Errorf("column 2 = %+v", c)
	}
	if c := desc.Columns[2]; c.Name != "" || c.Description.DataType() != DataBoolean {
		t.Errorf("column 3 = %+v", c)
	}
	if desc.Meta["author"] != "jdoe" {
		t.Errorf("Meta = %v", desc.Meta)
	}
}

func TestLoadDescriptionDefaults(t *testing.T) {
	desc := mustLoad(t, "domain,key,value\n")

	want := RFC4180Dialect()
	if desc.Dialect != want {
		t.Errorf("Dialect = %+v, want defaults %+v", desc.Dialect, want)
	}
	if desc.NullValue != "" {
		t.Errorf("NullValue = %q, want empty", desc.NullValue)
	}
	if len(desc.Columns) != 0 {
		t.Errorf("Columns = %v, want none", desc.Columns)
	}
}

func TestLoadDescriptionIgnoresUnknownDirectives(t *testing.T) {
	sidecar := strings.Join([]string{
		"domain,key,value",
		"file,compression,gzip",
		"csv,dialect_name,excel",
		"data,col/1/width,10",
		"data,col/x/type,integer",
		"future,anything,goes",
		"data,col/1/type,integer",
	}, "\n") + "\n"

	desc := mustLoad(t, sidecar)
	if len(desc.Columns) != 1 || desc.Columns[0].Description.DataType() != DataInteger {
		t.Errorf("Columns = %+v", desc.Columns)
	}
}

func TestLoadDescriptionQuotedValues(t *testing.T) {
	// A comma delimiter directive must itself be quoted in the sidecar.
	sidecar := "domain,key,value\ncsv,delimiter,\",\"\ndata,null_value,\"N,A\"\n"
	desc := mustLoad(t, sidecar)
	if desc.Dialect.Delimiter != ',' {
		t.Errorf("Delimiter = %q", desc.Dialect.Delimiter)
	}
	if desc.NullValue != "N,A" {
		t.Errorf("NullValue = %q", desc.NullValue)
	}
}

func TestLoadDescriptionErrors(t *testing.T) {
	tests := []struct {
		name    string
		sidecar string
	}{
		{name: "empty file", sidecar: ""},
		{name: "wrong header", sidecar: "domain,key\nfile,encoding,utf-8\n"},
		{name: "wrong field count", sidecar: "domain,key,value\nfile,encoding\n"},
		{name: "bad bool", sidecar: "domain,key,value\nfile,bom,maybe\n"},
		{name: "multichar delimiter", sidecar: "domain,key,value\ncsv,delimiter,ab\n"},
		{name: "zero column index", sidecar: "domain,key,value\ndata,col/0/type,integer\n"},
		{name: "gap in column indices", sidecar: "domain,key,value\ndata,col/1/type,integer\ndata,col/3/type,integer\n"},
		{name: "duplicate type for column", sidecar: "domain,key,value\ndata,col/1/type,integer\ndata,col/1/type,float\n"},
		{name: "bad type token", sidecar: "domain,key,value\ndata,col/1/type,varchar\n"},
		{name: "bad date pattern", sidecar: "domain,key,value\ndata,col/1/type,date/QQQQ\n"},
		{name: "unknown encoding", sidecar: "domain,key,value\nfile,encoding,not-a-charset\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDescription(strings.NewReader(tt.sidecar))
			if err == nil {
				t.Fatal("LoadDescription succeeded, want error")
			}
			var le *LoadError
			var de *DialectError
			if !errors.As(err, &le) && !errors.As(err, &de) {
				t.Errorf("error = %T (%v), want *LoadError or *DialectError", err, err)
			}
		})
	}
}

func TestLoadDescriptionErrorCarriesLine(t *testing.T) {
	sidecar := "domain,key,value\nfile,bom,true\ndata,col/1/type,varchar\n"
	_, err := LoadDescription(strings.NewReader(sidecar))
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("error = %T, want *LoadError", err)
	}
	if le.Line != 3 {
		t.Errorf("Line = %d, want 3", le.Line)
	}
}
