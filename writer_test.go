package mcsv

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestWriterFormatsTypedRows(t *testing.T) {
	sidecar := "domain,key,value\n" +
		"data,col/1/name,id\n" +
		"data,col/1/type,integer\n" +
		"data,col/2/name,price\n" +
		"data,col/2/type,currency/pre/$/decimal\n" +
		"data,col/3/name,when\n" +
		"data,col/3/type,date/yyyy-MM-dd\n"
	desc := mustLoad(t, sidecar)

	var buf bytes.Buffer
	w, err := NewWriter(&buf, desc)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.WriteHeader([]string{"id", "price", "when"}); err != nil {
		t.Fatal(err)
	}
	row := Row{
		IntValue(7),
		DecimalValue(decimal.RequireFromString("12.5")),
		DateValue(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
	}
	if err := w.Write(row); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(Row{NullValue(DataInteger), NullValue(DataDecimal), NullValue(DataDate)}); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	want := "id,price,when\r\n7,$ 12.5,2024-03-01\r\n,,\r\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestWriterQuotesUnderDialect(t *testing.T) {
	sidecar := "domain,key,value\n" +
		"csv,delimiter,;\n" +
		`file,line_terminator,\n` + "\n" +
		"data,col/1/type,text\n"
	desc := mustLoad(t, sidecar)

	var buf bytes.Buffer
	w, err := NewWriter(&buf, desc)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.WriteHeader([]string{"s"}); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(Row{TextValue(`a;b "quoted"`)}); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	want := "s\n\"a;b \"\"quoted\"\"\"\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestWriterEscapeCharRoundTrip(t *testing.T) {
	sidecar := "domain,key,value\n" +
		"csv,double_quote,false\n" +
		`csv,escape_char,\` + "\n" +
		"data,col/1/type,text\n" +
		"data,col/2/type,text\n"
	desc := mustLoad(t, sidecar)

	// Literal escape chars and quotes must survive a write-then-read cycle.
	in := Row{TextValue(`x\y`), TextValue(`a "b" c`)}

	var buf bytes.Buffer
	w, err := NewWriter(&buf, desc)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.WriteHeader([]string{"s", "u"}); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(in); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	want := "s,u\r\n\"x\\\\y\",\"a \\\"b\\\" c\"\r\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	r, err := NewReader(bytes.NewReader(buf.Bytes()), desc)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	row, err := r.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i := range in {
		if !row[i].Equal(in[i]) {
			t.Errorf("column %d = %q, want %q", i+1, row[i], in[i])
		}
	}
}

func TestWriterUnescapableQuote(t *testing.T) {
	sidecar := "domain,key,value\n" +
		"csv,double_quote,false\n" +
		"data,col/1/type,text\n"
	desc := mustLoad(t, sidecar)

	var buf bytes.Buffer
	w, err := NewWriter(&buf, desc)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	// No doubling and no escape char: a quote in the field cannot be written.
	if err := w.Write(Row{TextValue(`say "hi"`)}); err == nil {
		t.Error("Write succeeded, want error")
	}
}

func TestDictWriter(t *testing.T) {
	sidecar := "domain,key,value\n" +
		"data,col/1/name,id\n" +
		"data,col/1/type,integer\n" +
		"data,col/2/name,paid\n" +
		"data,col/2/type,boolean/yes/no\n"
	desc := mustLoad(t, sidecar)

	var buf bytes.Buffer
	w, err := NewDictWriter(&buf, desc, []string{"id", "paid"})
	if err != nil {
		t.Fatalf("NewDictWriter: %v", err)
	}
	if err := w.Write(map[string]Value{"id": IntValue(1), "paid": BoolValue(true)}); err != nil {
		t.Fatal(err)
	}
	// Missing key becomes a null of the declared type.
	if err := w.Write(map[string]Value{"id": IntValue(2)}); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	want := "id,paid\r\n1,yes\r\n2,\r\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	sidecar := "domain,key,value\n" +
		"data,col/1/name,id\n" +
		"data,col/1/type,integer\n" +
		"data,col/2/name,sold_on\n" +
		"data,col/2/type,date/yyyy-MM-dd\n" +
		"data,col/3/name,paid\n" +
		"data,col/3/type,boolean/yes/no\n"
	desc := mustLoad(t, sidecar)
	input := "id,sold_on,paid\r\n1,2024-03-01,yes\r\n2,,no\r\n"

	r, err := NewReader(strings.NewReader(input), desc)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	var buf bytes.Buffer
	w, err := NewWriter(&buf, desc)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.WriteHeader(r.Header()); err != nil {
		t.Fatal(err)
	}
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if err := w.Write(row); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	if got := buf.String(); got != input {
		t.Errorf("round trip = %q, want %q", got, input)
	}
}

func TestRenderDescriptionMinimalRoundTrip(t *testing.T) {
	sidecar := "domain,key,value\n" +
		"csv,delimiter,;\n" +
		"data,null_value,NULL\n" +
		"data,col/1/name,id\n" +
		"data,col/1/type,integer\n" +
		"data,col/2/type,date/yyyy-MM-dd\n" +
		"meta,author,jdoe\n"
	desc := mustLoad(t, sidecar)

	var buf bytes.Buffer
	if err := RenderDescription(&buf, desc); err != nil {
		t.Fatalf("RenderDescription: %v", err)
	}

	again, err := LoadDescription(&buf)
	if err != nil {
		t.Fatalf("LoadDescription of rendered output: %v", err)
	}
	if again.Dialect != desc.Dialect {
		t.Errorf("Dialect = %+v, want %+v", again.Dialect, desc.Dialect)
	}
	if again.NullValue != desc.NullValue {
		t.Errorf("NullValue = %q, want %q", again.NullValue, desc.NullValue)
	}
	if len(again.Columns) != len(desc.Columns) {
		t.Fatalf("len(Columns) = %d, want %d", len(again.Columns), len(desc.Columns))
	}
	for i := range desc.Columns {
		if again.Columns[i].Name != desc.Columns[i].Name {
			t.Errorf("column %d name = %q, want %q", i+1, again.Columns[i].Name, desc.Columns[i].Name)
		}
		if again.Columns[i].Label() != desc.Columns[i].Label() {
			t.Errorf("column %d label = %q, want %q", i+1, again.Columns[i].Label(), desc.Columns[i].Label())
		}
	}
	if again.Meta["author"] != "jdoe" {
		t.Errorf("Meta = %v", again.Meta)
	}
}

func TestRenderDescriptionMinimalOmitsDefaults(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderDescription(&buf, NewDescription()); err != nil {
		t.Fatalf("RenderDescription: %v", err)
	}
	if got := buf.String(); got != "domain,key,value\r\n" {
		t.Errorf("output = %q, want header only", got)
	}
}

func TestRenderDescriptionVerbose(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderDescription(&buf, NewDescription(), Verbose()); err != nil {
		t.Fatalf("RenderDescription: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"file,encoding,utf-8",
		"file,bom,false",
		`file,line_terminator,\r\n`,
		"csv,double_quote,true",
		"data,null_value,",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("verbose output missing %q:\n%s", want, out)
		}
	}
}

func TestWriterBOM(t *testing.T) {
	sidecar := "domain,key,value\nfile,bom,true\ndata,col/1/type,integer\n"
	desc := mustLoad(t, sidecar)

	var buf bytes.Buffer
	w, err := NewWriter(&buf, desc)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.WriteHeader([]string{"n"}); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}) {
		t.Errorf("output %q lacks BOM", buf.Bytes())
	}
}
