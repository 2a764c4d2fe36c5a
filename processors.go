package mcsv

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// processors.go holds the FieldProcessor implementations behind the built-in
// type kinds. Each processor is stateless: it captures only the compiled
// parameters and the null marker, so one instance serves every row.

type textProcessor struct {
	null string
}

func (p *textProcessor) Cast(text string) (Value, error) {
	if strings.TrimSpace(text) == p.null {
		return NullValue(DataText), nil
	}
	return TextValue(text), nil
}

func (p *textProcessor) Format(v Value) (string, error) {
	if !v.Valid {
		return p.null, nil
	}
	return v.Text, nil
}

type anyProcessor struct{}

func (anyProcessor) Cast(text string) (Value, error) {
	return AnyValue(text), nil
}

func (anyProcessor) Format(v Value) (string, error) {
	if !v.Valid {
		return "", nil
	}
	return v.String(), nil
}

type booleanProcessor struct {
	trueWord  string
	falseWord string
	null      string
	label     string
}

func (p *booleanProcessor) Cast(text string) (Value, error) {
	t := strings.TrimSpace(text)
	if t == p.null {
		return NullValue(DataBoolean), nil
	}
	if strings.EqualFold(t, p.trueWord) {
		return BoolValue(true), nil
	}
	if strings.EqualFold(t, p.falseWord) {
		return BoolValue(false), nil
	}
	return Value{}, &castError{value: text, label: p.label}
}

func (p *booleanProcessor) Format(v Value) (string, error) {
	if !v.Valid {
		return p.null, nil
	}
	if v.Kind != DataBoolean {
		return "", fmt.Errorf("format: %s value where boolean expected", v.Kind)
	}
	if v.Bool {
		return p.trueWord, nil
	}
	return p.falseWord, nil
}

type integerProcessor struct {
	thousandsSep string
	null         string
	label        string
}

func (p *integerProcessor) Cast(text string) (Value, error) {
	t := strings.TrimSpace(text)
	if t == p.null {
		return NullValue(DataInteger), nil
	}
	if p.thousandsSep != "" {
		t = strings.ReplaceAll(t, p.thousandsSep, "")
	}
	i, err := strconv.ParseInt(t, 10, 64)
	if err != nil {
		return Value{}, &castError{value: text, label: p.label, err: err}
	}
	return IntValue(i), nil
}

func (p *integerProcessor) Format(v Value) (string, error) {
	if !v.Valid {
		return p.null, nil
	}
	if v.Kind != DataInteger {
		return "", fmt.Errorf("format: %s value where integer expected", v.Kind)
	}
	return groupThousands(strconv.FormatInt(v.Int, 10), p.thousandsSep), nil
}

type floatProcessor struct {
	thousandsSep string
	decimalSep   string
	null         string
	label        string
}

func (p *floatProcessor) Cast(text string) (Value, error) {
	t := strings.TrimSpace(text)
	if t == p.null {
		return NullValue(DataFloat), nil
	}
	t = normalizeNumber(t, p.thousandsSep, p.decimalSep)
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return Value{}, &castError{value: text, label: p.label, err: err}
	}
	return FloatValue(f), nil
}

func (p *floatProcessor) Format(v Value) (string, error) {
	if !v.Valid {
		return p.null, nil
	}
	if v.Kind != DataFloat {
		return "", fmt.Errorf("format: %s value where float expected", v.Kind)
	}
	return denormalizeNumber(strconv.FormatFloat(v.Float, 'f', -1, 64),
		p.thousandsSep, p.decimalSep), nil
}

type decimalProcessor struct {
	thousandsSep string
	decimalSep   string
	null         string
	label        string
}

func (p *decimalProcessor) Cast(text string) (Value, error) {
	t := strings.TrimSpace(text)
	if t == p.null {
		return NullValue(DataDecimal), nil
	}
	t = normalizeNumber(t, p.thousandsSep, p.decimalSep)
	d, err := decimal.NewFromString(t)
	if err != nil {
		return Value{}, &castError{value: text, label: p.label, err: err}
	}
	return DecimalValue(d), nil
}

func (p *decimalProcessor) Format(v Value) (string, error) {
	if !v.Valid {
		return p.null, nil
	}
	if v.Kind != DataDecimal {
		return "", fmt.Errorf("format: %s value where decimal expected", v.Kind)
	}
	return denormalizeNumber(v.Decimal.String(), p.thousandsSep, p.decimalSep), nil
}

// affixProcessor implements the currency and percentage kinds: strip or
// attach the symbol, then delegate to the wrapped number processor. For
// percentages the numeric value is additionally divided by 100 on cast and
// multiplied back on format.
type affixProcessor struct {
	pre        bool
	affix      string
	number     FieldProcessor
	null       string
	label      string
	percentage bool
}

func (p *affixProcessor) Cast(text string) (Value, error) {
	t := strings.TrimSpace(text)
	if t == p.null {
		v, err := p.number.Cast(t)
		if err != nil {
			return NullValue(DataDecimal), nil
		}
		return NullValue(v.Kind), nil
	}
	if p.pre {
		if !strings.HasPrefix(t, p.affix) {
			return Value{}, &castError{value: text, label: p.label,
				err: fmt.Errorf("missing %q prefix", p.affix)}
		}
		t = strings.TrimLeft(strings.TrimPrefix(t, p.affix), " ")
	} else {
		if !strings.HasSuffix(t, p.affix) {
			return Value{}, &castError{value: text, label: p.label,
				err: fmt.Errorf("missing %q suffix", p.affix)}
		}
		t = strings.TrimRight(strings.TrimSuffix(t, p.affix), " ")
	}
	v, err := p.number.Cast(t)
	if err != nil {
		return Value{}, &castError{value: text, label: p.label, err: err}
	}
	if p.percentage && v.Valid {
		switch v.Kind {
		case DataDecimal:
			v.Decimal = v.Decimal.Div(decimal.NewFromInt(100))
		case DataFloat:
			v.Float = v.Float / 100
		}
	}
	return v, nil
}

func (p *affixProcessor) Format(v Value) (string, error) {
	if !v.Valid {
		return p.null, nil
	}
	if p.percentage {
		switch v.Kind {
		case DataDecimal:
			v.Decimal = v.Decimal.Mul(decimal.NewFromInt(100))
		case DataFloat:
			v.Float = v.Float * 100
		}
	}
	text, err := p.number.Format(v)
	if err != nil {
		return "", err
	}
	if p.pre {
		return p.affix + " " + text, nil
	}
	return text + " " + p.affix, nil
}

type dateProcessor struct {
	kind   DataType
	layout string
	null   string
	label  string
}

func (p *dateProcessor) Cast(text string) (Value, error) {
	t := strings.TrimSpace(text)
	if t == p.null {
		return NullValue(p.kind), nil
	}
	parsed, err := time.Parse(p.layout, t)
	if err != nil {
		return Value{}, &castError{value: text, label: p.label, err: err}
	}
	return Value{Kind: p.kind, Valid: true, Time: parsed}, nil
}

func (p *dateProcessor) Format(v Value) (string, error) {
	if !v.Valid {
		return p.null, nil
	}
	switch v.Kind {
	case DataDate, DataDatetime, DataTime:
		return v.Time.Format(p.layout), nil
	default:
		return "", fmt.Errorf("format: %s value where %s expected", v.Kind, p.kind)
	}
}

// normalizeNumber strips the thousands separator and replaces the declared
// decimal separator with '.' so the standard parsers apply.
func normalizeNumber(text, thousandsSep, decimalSep string) string {
	if thousandsSep != "" {
		text = strings.ReplaceAll(text, thousandsSep, "")
	}
	if decimalSep != "" && decimalSep != "." {
		text = strings.ReplaceAll(text, decimalSep, ".")
	}
	return text
}

// denormalizeNumber renders a plain "-123.45" style number under the
// declared separators.
func denormalizeNumber(text, thousandsSep, decimalSep string) string {
	intPart, fracPart, hasFrac := strings.Cut(text, ".")
	out := groupThousands(intPart, thousandsSep)
	if hasFrac {
		sep := decimalSep
		if sep == "" {
			sep = "."
		}
		out += sep + fracPart
	}
	return out
}

// groupThousands inserts the separator every three digits, leaving the sign
// alone. An empty separator returns the text unchanged.
func groupThousands(text, sep string) string {
	if sep == "" {
		return text
	}
	start := 0
	if strings.HasPrefix(text, "-") || strings.HasPrefix(text, "+") {
		start = 1
	}
	digits := len(text) - start
	if digits <= 3 {
		return text
	}
	var b strings.Builder
	b.WriteString(text[:start])
	lead := digits % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(text[start : start+lead])
	for i := start + lead; i < len(text); i += 3 {
		b.WriteString(sep)
		b.WriteString(text[i : i+3])
	}
	return b.String()
}
