package mcsv

import (
	"strings"
	"sync"
)

// FieldDescription is one column's declared type: the parsed form of a type
// token such as "date/YYYY-MM-dd" or "currency/pre/$/decimal/,". It is
// immutable and shareable; Processor binds it to the description-level null
// marker and returns the casting rule applied to every cell of the column.
type FieldDescription interface {
	// DataType is the semantic type of values this description produces.
	DataType() DataType
	// Label is the canonical type token, used for type-description rows
	// and diagnostics.
	Label() string
	// Processor returns the stateless cast/format rule for this description.
	Processor(nullValue string) FieldProcessor
}

// FieldProcessor casts raw field text to a typed value and formats typed
// values back to text. Implementations are pure and safe for concurrent use.
type FieldProcessor interface {
	// Cast converts raw cell text to a Value. A cell matching the null
	// marker yields a null Value; text that does not match the declared
	// type yields a cast failure.
	Cast(text string) (Value, error)
	// Format renders a Value back to cell text under the declared format.
	// Format is a right-inverse of Cast for well-formed values.
	Format(v Value) (string, error)
}

// TypeCompiler turns the parameters of a type token into a FieldDescription.
// The kind name itself has already been matched and stripped.
type TypeCompiler func(params []string) (FieldDescription, error)

var (
	typeRegistry   = make(map[string]TypeCompiler)
	typeRegistryMu sync.RWMutex
)

// RegisterType adds a compiler for a type kind. Kind matching is
// case-insensitive. Registering a kind twice panics; this mirrors the intent
// that the kind registry is assembled once, at init time.
func RegisterType(kind string, fn TypeCompiler) {
	typeRegistryMu.Lock()
	defer typeRegistryMu.Unlock()

	kind = strings.ToLower(kind)
	if _, exists := typeRegistry[kind]; exists {
		panic("mcsv: type kind already registered: " + kind)
	}
	typeRegistry[kind] = fn
}

// CompileType compiles a type token into a FieldDescription. The same token
// always compiles to an equivalent description. Unknown kinds and malformed
// parameter lists are LoadErrors.
func CompileType(token string) (FieldDescription, error) {
	parts := splitParameters(token)
	kind := strings.ToLower(strings.TrimSpace(parts[0]))

	typeRegistryMu.RLock()
	fn, ok := typeRegistry[kind]
	typeRegistryMu.RUnlock()
	if !ok {
		return nil, loadErrorf(0, "unknown type kind %q in token %q", kind, token)
	}

	desc, err := fn(parts[1:])
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			return nil, le
		}
		return nil, &LoadError{Msg: "bad type token " + token, Err: err}
	}
	return desc, nil
}

func init() {
	RegisterType("text", compileText)
	RegisterType("any", compileAny)
	RegisterType("object", compileAny) // legacy alias for untyped columns
	RegisterType("boolean", compileBoolean)
	RegisterType("integer", compileInteger)
	RegisterType("float", compileFloat)
	RegisterType("decimal", compileDecimal)
	RegisterType("currency", compileCurrency)
	RegisterType("percentage", compilePercentage)
	RegisterType("date", compileDate(DataDate))
	RegisterType("datetime", compileDate(DataDatetime))
	RegisterType("time", compileDate(DataTime))
}

// TextType is the description of a plain text column with the default null
// marker. It is the fallback for columns the sidecar does not type when a
// text default is wanted explicitly.
var TextType FieldDescription = &textDescription{}

// AnyType passes raw cell text through unchanged. It is the fallback applied
// to columns with no declared type.
var AnyType FieldDescription = &anyDescription{}

type textDescription struct {
	nullMarker string // overrides the description-level null value when set
	hasMarker  bool
}

func (d *textDescription) DataType() DataType { return DataText }

func (d *textDescription) Label() string {
	if d.hasMarker {
		return joinParameters("text", d.nullMarker)
	}
	return "text"
}

func (d *textDescription) Processor(nullValue string) FieldProcessor {
	if d.hasMarker {
		nullValue = d.nullMarker
	}
	return &textProcessor{null: nullValue}
}

func compileText(params []string) (FieldDescription, error) {
	switch len(params) {
	case 0:
		return TextType, nil
	case 1:
		return &textDescription{nullMarker: params[0], hasMarker: true}, nil
	default:
		return nil, loadErrorf(0, "text type takes at most one parameter, got %d", len(params))
	}
}

type anyDescription struct{}

func (d *anyDescription) DataType() DataType { return DataAny }
func (d *anyDescription) Label() string      { return "any" }
func (d *anyDescription) Processor(nullValue string) FieldProcessor {
	return anyProcessor{}
}

func compileAny(params []string) (FieldDescription, error) {
	// Extra parameters are tolerated: "any" is the forward-compatible
	// escape hatch for tokens this build does not understand.
	return AnyType, nil
}

type booleanDescription struct {
	trueWord  string
	falseWord string
	defaulted bool
}

func (d *booleanDescription) DataType() DataType { return DataBoolean }

func (d *booleanDescription) Label() string {
	if d.defaulted {
		return "boolean"
	}
	return joinParameters("boolean", d.trueWord, d.falseWord)
}

func (d *booleanDescription) Processor(nullValue string) FieldProcessor {
	return &booleanProcessor{
		trueWord:  d.trueWord,
		falseWord: d.falseWord,
		null:      nullValue,
		label:     d.Label(),
	}
}

func compileBoolean(params []string) (FieldDescription, error) {
	switch len(params) {
	case 0:
		return &booleanDescription{trueWord: "true", falseWord: "false", defaulted: true}, nil
	case 1:
		return &booleanDescription{trueWord: params[0]}, nil
	case 2:
		return &booleanDescription{trueWord: params[0], falseWord: params[1]}, nil
	default:
		return nil, loadErrorf(0, "boolean type takes at most two parameters, got %d", len(params))
	}
}

type integerDescription struct {
	thousandsSep string
}

func (d *integerDescription) DataType() DataType { return DataInteger }

func (d *integerDescription) Label() string {
	if d.thousandsSep == "" {
		return "integer"
	}
	return joinParameters("integer", d.thousandsSep)
}

func (d *integerDescription) Processor(nullValue string) FieldProcessor {
	return &integerProcessor{thousandsSep: d.thousandsSep, null: nullValue, label: d.Label()}
}

func compileInteger(params []string) (FieldDescription, error) {
	switch len(params) {
	case 0:
		return &integerDescription{}, nil
	case 1:
		return &integerDescription{thousandsSep: params[0]}, nil
	default:
		return nil, loadErrorf(0, "integer type takes at most one parameter, got %d", len(params))
	}
}

type floatDescription struct {
	thousandsSep string
	decimalSep   string
}

func (d *floatDescription) DataType() DataType { return DataFloat }

func (d *floatDescription) Label() string {
	if d.thousandsSep == "" && d.decimalSep == "." {
		return "float"
	}
	return joinParameters("float", d.thousandsSep, d.decimalSep)
}

func (d *floatDescription) Processor(nullValue string) FieldProcessor {
	return &floatProcessor{
		thousandsSep: d.thousandsSep,
		decimalSep:   d.decimalSep,
		null:         nullValue,
		label:        d.Label(),
	}
}

func compileFloat(params []string) (FieldDescription, error) {
	sep, dec, err := numberSeparators("float", params)
	if err != nil {
		return nil, err
	}
	return &floatDescription{thousandsSep: sep, decimalSep: dec}, nil
}

type decimalDescription struct {
	thousandsSep string
	decimalSep   string
}

func (d *decimalDescription) DataType() DataType { return DataDecimal }

func (d *decimalDescription) Label() string {
	if d.thousandsSep == "" && d.decimalSep == "." {
		return "decimal"
	}
	return joinParameters("decimal", d.thousandsSep, d.decimalSep)
}

func (d *decimalDescription) Processor(nullValue string) FieldProcessor {
	return &decimalProcessor{
		thousandsSep: d.thousandsSep,
		decimalSep:   d.decimalSep,
		null:         nullValue,
		label:        d.Label(),
	}
}

func compileDecimal(params []string) (FieldDescription, error) {
	sep, dec, err := numberSeparators("decimal", params)
	if err != nil {
		return nil, err
	}
	return &decimalDescription{thousandsSep: sep, decimalSep: dec}, nil
}

// numberSeparators resolves the optional thousands/decimal separator
// parameters shared by the float and decimal kinds. One parameter sets the
// decimal separator alone; two set thousands then decimal.
func numberSeparators(kind string, params []string) (thousands, dec string, err error) {
	thousands, dec = "", "."
	switch len(params) {
	case 0:
	case 1:
		dec = params[0]
	case 2:
		thousands, dec = params[0], params[1]
	default:
		return "", "", loadErrorf(0, "%s type takes at most two parameters, got %d", kind, len(params))
	}
	if dec != " " {
		dec = strings.TrimSpace(dec)
	}
	if dec == "" {
		dec = "."
	}
	if thousands != "" && thousands == dec {
		return "", "", loadErrorf(0, "%s type: thousands and decimal separators are both %q", kind, dec)
	}
	return thousands, dec, nil
}

type currencyDescription struct {
	pre    bool
	symbol string
	number FieldDescription
}

func (d *currencyDescription) DataType() DataType { return d.number.DataType() }

func (d *currencyDescription) Label() string {
	pos := "post"
	if d.pre {
		pos = "pre"
	}
	return joinParameters("currency", pos, d.symbol) + "/" + d.number.Label()
}

func (d *currencyDescription) Processor(nullValue string) FieldProcessor {
	return &affixProcessor{
		pre:    d.pre,
		affix:  d.symbol,
		number: d.number.Processor(nullValue),
		null:   nullValue,
		label:  d.Label(),
	}
}

func compileCurrency(params []string) (FieldDescription, error) {
	pre, symbol, number, err := affixedNumber("currency", params, map[string]TypeCompiler{
		"integer": compileInteger,
		"decimal": compileDecimal,
	})
	if err != nil {
		return nil, err
	}
	return &currencyDescription{pre: pre, symbol: symbol, number: number}, nil
}

type percentageDescription struct {
	pre    bool
	sign   string
	number FieldDescription
}

func (d *percentageDescription) DataType() DataType { return d.number.DataType() }

func (d *percentageDescription) Label() string {
	pos := "post"
	if d.pre {
		pos = "pre"
	}
	return joinParameters("percentage", pos, d.sign) + "/" + d.number.Label()
}

func (d *percentageDescription) Processor(nullValue string) FieldProcessor {
	return &affixProcessor{
		pre:        d.pre,
		affix:      d.sign,
		number:     d.number.Processor(nullValue),
		null:       nullValue,
		label:      d.Label(),
		percentage: true,
	}
}

func compilePercentage(params []string) (FieldDescription, error) {
	pre, sign, number, err := affixedNumber("percentage", params, map[string]TypeCompiler{
		"float":   compileFloat,
		"decimal": compileDecimal,
	})
	if err != nil {
		return nil, err
	}
	return &percentageDescription{pre: pre, sign: sign, number: number}, nil
}

// affixedNumber parses the shared currency/percentage parameter shape:
// pre|post, symbol, sub-kind, then the sub-kind's own parameters.
func affixedNumber(kind string, params []string, subKinds map[string]TypeCompiler,
) (pre bool, symbol string, number FieldDescription, err error) {
	if len(params) < 3 {
		return false, "", nil, loadErrorf(0, "%s type needs position, symbol and number type", kind)
	}
	switch params[0] {
	case "pre":
		pre = true
	case "post":
		pre = false
	default:
		return false, "", nil, loadErrorf(0, "%s type: position must be pre or post, got %q", kind, params[0])
	}
	symbol = params[1]
	sub := strings.ToLower(params[2])
	fn, ok := subKinds[sub]
	if !ok {
		return false, "", nil, loadErrorf(0, "%s type: unsupported number type %q", kind, params[2])
	}
	number, err = fn(params[3:])
	if err != nil {
		return false, "", nil, err
	}
	return pre, symbol, number, nil
}

type dateDescription struct {
	kind    DataType
	pattern string
	layout  string
}

func (d *dateDescription) DataType() DataType { return d.kind }

func (d *dateDescription) Label() string {
	return joinParameters(d.kind.String(), d.pattern)
}

func (d *dateDescription) Processor(nullValue string) FieldProcessor {
	return &dateProcessor{
		kind:   d.kind,
		layout: d.layout,
		null:   nullValue,
		label:  d.Label(),
	}
}

func compileDate(kind DataType) TypeCompiler {
	return func(params []string) (FieldDescription, error) {
		if len(params) != 1 {
			return nil, loadErrorf(0, "%s type takes exactly one format parameter, got %d", kind, len(params))
		}
		layout, err := convertDatePattern(params[0])
		if err != nil {
			return nil, &LoadError{Msg: "bad " + kind.String() + " pattern " + params[0], Err: err}
		}
		return &dateDescription{kind: kind, pattern: params[0], layout: layout}, nil
	}
}
