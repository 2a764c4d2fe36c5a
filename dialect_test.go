package mcsv

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestDialectValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Dialect)
		wantErr bool
	}{
		{name: "defaults", mutate: func(d *Dialect) {}, wantErr: false},
		{name: "semicolon delimiter", mutate: func(d *Dialect) { d.Delimiter = ';' }, wantErr: false},
		{name: "latin1 encoding", mutate: func(d *Dialect) { d.Encoding = "iso-8859-1" }, wantErr: false},
		{name: "missing delimiter", mutate: func(d *Dialect) { d.Delimiter = 0 }, wantErr: true},
		{name: "delimiter equals quote", mutate: func(d *Dialect) { d.Delimiter = '"' }, wantErr: true},
		{name: "escape collides with quote", mutate: func(d *Dialect) { d.EscapeChar = '"' }, wantErr: true},
		{name: "newline delimiter", mutate: func(d *Dialect) { d.Delimiter = '\n' }, wantErr: true},
		{name: "bad line terminator", mutate: func(d *Dialect) { d.LineTerminator = "|" }, wantErr: true},
		{name: "unknown encoding", mutate: func(d *Dialect) { d.Encoding = "no-such-charset" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := RFC4180Dialect()
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantErr && err == nil {
				t.Error("Validate succeeded, want error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate: %v", err)
			}
			if tt.wantErr && err != nil {
				var de *DialectError
				if !errors.As(err, &de) {
					t.Errorf("error = %T, want *DialectError", err)
				}
			}
		})
	}
}

func TestDecodingReaderTranscodes(t *testing.T) {
	d := RFC4180Dialect()
	d.Encoding = "iso-8859-1"
	r, err := d.DecodingReader(bytes.NewReader([]byte{'c', 'a', 'f', 0xE9}))
	if err != nil {
		t.Fatalf("DecodingReader: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "café" {
		t.Errorf("decoded = %q, want café", got)
	}
}

func TestDecodingReaderSkipsTranscodedBOM(t *testing.T) {
	d := RFC4180Dialect()
	d.Encoding = "utf-16le"
	d.BOM = true
	// UTF-16LE BOM (FF FE) followed by "a,b".
	in := []byte{0xFF, 0xFE, 'a', 0x00, ',', 0x00, 'b', 0x00}
	r, err := d.DecodingReader(bytes.NewReader(in))
	if err != nil {
		t.Fatalf("DecodingReader: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "a,b" {
		t.Errorf("decoded = %q, want %q", got, "a,b")
	}
}

func TestDecodingReaderReportsInvalidUTF8Offset(t *testing.T) {
	d := RFC4180Dialect()
	r, err := d.DecodingReader(strings.NewReader("abcd\xffef"))
	if err != nil {
		t.Fatalf("DecodingReader: %v", err)
	}
	_, err = io.ReadAll(r)
	var se *StreamError
	if !errors.As(err, &se) {
		t.Fatalf("error = %T (%v), want *StreamError", err, err)
	}
	if se.Offset != 4 {
		t.Errorf("Offset = %d, want 4", se.Offset)
	}
}

func TestEncodingWriterTranscodes(t *testing.T) {
	d := RFC4180Dialect()
	d.Encoding = "iso-8859-1"
	var buf bytes.Buffer
	w, err := d.EncodingWriter(&buf)
	if err != nil {
		t.Fatalf("EncodingWriter: %v", err)
	}
	if _, err := io.WriteString(w, "café"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := buf.Bytes(); !bytes.Equal(got, []byte{'c', 'a', 'f', 0xE9}) {
		t.Errorf("encoded = % x, want 63 61 66 e9", got)
	}
}
