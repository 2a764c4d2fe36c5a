package mcsv

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

func readAllRows(t *testing.T, input string, d Dialect) [][]string {
	t.Helper()
	tok := newTokenizer(strings.NewReader(input), d)
	var rows [][]string
	for {
		row, err := tok.ReadRow()
		if err == io.EOF {
			return rows
		}
		if err != nil {
			t.Fatalf("ReadRow: %v", err)
		}
		rows = append(rows, row)
	}
}

func TestTokenizerDefaults(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{
			name:  "plain rows",
			input: "a,b,c\n1,2,3\n",
			want:  [][]string{{"a", "b", "c"}, {"1", "2", "3"}},
		},
		{
			name:  "no trailing newline",
			input: "a,b\n1,2",
			want:  [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name:  "trailing newline yields no extra row",
			input: "a,b\n",
			want:  [][]string{{"a", "b"}},
		},
		{
			name:  "crlf terminators",
			input: "a,b\r\n1,2\r\n",
			want:  [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name:  "lone cr terminators",
			input: "a,b\r1,2\r",
			want:  [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name:  "blank lines skipped",
			input: "a,b\n\n\n1,2\n",
			want:  [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name:  "quoted field with delimiter",
			input: "\"a,b\",c\n",
			want:  [][]string{{"a,b", "c"}},
		},
		{
			name:  "quoted field with embedded newline",
			input: "\"line1\nline2\",x\n",
			want:  [][]string{{"line1\nline2", "x"}},
		},
		{
			name:  "doubled quote",
			input: "\"say \"\"hi\"\"\",y\n",
			want:  [][]string{{`say "hi"`, "y"}},
		},
		{
			name:  "empty fields",
			input: ",,\n",
			want:  [][]string{{"", "", ""}},
		},
		{
			name:  "quoted empty field alone",
			input: "\"\"\n",
			want:  [][]string{{""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := readAllRows(t, tt.input, RFC4180Dialect())
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("rows = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTokenizerCustomDialect(t *testing.T) {
	t.Run("semicolon delimiter", func(t *testing.T) {
		d := RFC4180Dialect()
		d.Delimiter = ';'
		got := readAllRows(t, "a;b,c;d\n", d)
		want := [][]string{{"a", "b,c", "d"}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("rows = %q, want %q", got, want)
		}
	})

	t.Run("skip initial space", func(t *testing.T) {
		d := RFC4180Dialect()
		d.SkipInitialSpace = true
		got := readAllRows(t, "a, b,  \"c\"\n", d)
		want := [][]string{{"a", "b", "c"}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("rows = %q, want %q", got, want)
		}
	})

	t.Run("escape char instead of doubling", func(t *testing.T) {
		d := RFC4180Dialect()
		d.DoubleQuote = false
		d.EscapeChar = '\\'
		got := readAllRows(t, "\"say \\\"hi\\\"\",y\n", d)
		want := [][]string{{`say "hi"`, "y"}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("rows = %q, want %q", got, want)
		}
	})

	t.Run("single quote char", func(t *testing.T) {
		d := RFC4180Dialect()
		d.QuoteChar = '\''
		got := readAllRows(t, "'a,b',c\n", d)
		want := [][]string{{"a,b", "c"}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("rows = %q, want %q", got, want)
		}
	})
}

func TestTokenizerErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "bare quote mid field", input: "ab\"cd,e\n", want: ErrBareQuote},
		{name: "text after closing quote", input: "\"ab\"cd,e\n", want: ErrBareQuote},
		{name: "unterminated quote", input: "\"abc\n", want: ErrUnterminatedQuote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := newTokenizer(strings.NewReader(tt.input), RFC4180Dialect())
			_, err := tok.ReadRow()
			if !errors.Is(err, tt.want) {
				t.Errorf("ReadRow error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTokenizerLineTracking(t *testing.T) {
	tok := newTokenizer(strings.NewReader("a\n\"x\ny\"\nb\n"), RFC4180Dialect())

	if _, err := tok.ReadRow(); err != nil {
		t.Fatal(err)
	}
	if got := tok.Line(); got != 1 {
		t.Errorf("first record line = %d, want 1", got)
	}
	if _, err := tok.ReadRow(); err != nil {
		t.Fatal(err)
	}
	if got := tok.Line(); got != 2 {
		t.Errorf("second record line = %d, want 2", got)
	}
	if _, err := tok.ReadRow(); err != nil {
		t.Fatal(err)
	}
	if got := tok.Line(); got != 4 {
		t.Errorf("third record line = %d, want 4", got)
	}
}
