package xlwt

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// ValidationType is the kind of data validation, stored in bits 0-3 of the
// DV option flags.
type ValidationType int

const (
	ValidateAny ValidationType = iota
	ValidateInteger
	ValidateDecimal
	ValidateList
	ValidateDate
	ValidateTime
	ValidateLength
	ValidateCustom
)

var validationTypeNames = map[string]ValidationType{
	"any":          ValidateAny,
	"any value":    ValidateAny,
	"whole number": ValidateInteger,
	"whole":        ValidateInteger,
	"integer":      ValidateInteger,
	"decimal":      ValidateDecimal,
	"list":         ValidateList,
	"date":         ValidateDate,
	"time":         ValidateTime,
	"text length":  ValidateLength,
	"length":       ValidateLength,
	"custom":       ValidateCustom,
}

// ValidationTypeFromName maps names such as "whole" or "text length" to a ValidationType.
func ValidationTypeFromName(name string) (ValidationType, error) {
	if v, ok := validationTypeNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return v, nil
	}
	return 0, invalidParam("validate", "unknown validation type %q", name)
}

// Criteria is the comparison applied by a validation, stored in bits 20-22.
type Criteria int

const (
	CriteriaBetween Criteria = iota
	CriteriaNotBetween
	CriteriaEqual
	CriteriaNotEqual
	CriteriaGreater
	CriteriaLess
	CriteriaGreaterOrEqual
	CriteriaLessOrEqual
)

var criteriaNames = map[string]Criteria{
	"between":                  CriteriaBetween,
	"not between":              CriteriaNotBetween,
	"equal to":                 CriteriaEqual,
	"=":                        CriteriaEqual,
	"==":                       CriteriaEqual,
	"not equal to":             CriteriaNotEqual,
	"<>":                       CriteriaNotEqual,
	"!=":                       CriteriaNotEqual,
	"greater than":             CriteriaGreater,
	">":                        CriteriaGreater,
	"less than":                CriteriaLess,
	"<":                        CriteriaLess,
	"greater than or equal to": CriteriaGreaterOrEqual,
	">=":                       CriteriaGreaterOrEqual,
	"less than or equal to":    CriteriaLessOrEqual,
	"<=":                       CriteriaLessOrEqual,
}

// CriteriaFromName maps names such as "between" or ">=" to a Criteria.
func CriteriaFromName(name string) (Criteria, error) {
	if c, ok := criteriaNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c, nil
	}
	return 0, invalidParam("criteria", "unknown criteria %q", name)
}

// ErrorStyle is the kind of dialog shown for invalid input, stored in bits 4-6.
type ErrorStyle int

const (
	ErrorStop ErrorStyle = iota
	ErrorWarning
	ErrorInformation
)

var errorStyleNames = map[string]ErrorStyle{
	"stop":        ErrorStop,
	"warning":     ErrorWarning,
	"information": ErrorInformation,
}

// ErrorStyleFromName maps "stop", "warning" or "information" to an ErrorStyle.
func ErrorStyleFromName(name string) (ErrorStyle, error) {
	if s, ok := errorStyleNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return s, nil
	}
	return 0, invalidParam("error_type", "unknown error type %q", name)
}

// FormulaKind tells the variants of a FormulaValue apart.
type FormulaKind int

const (
	FormulaEmpty FormulaKind = iota
	FormulaScalar
	FormulaList
)

// FormulaValue is the value, source or bound of a validation: nothing, a
// formula text, or a list of literal strings.
type FormulaValue struct {
	kind  FormulaKind
	text  string
	items []string
}

// EmptyFormula returns the absent formula.
func EmptyFormula() FormulaValue {
	return FormulaValue{}
}

// ScalarFormula returns a formula given as text, e.g. "10", "=$A$1:$A$5" or
// "=AND(A1>0,A1<10)". An empty text is the absent formula.
func ScalarFormula(text string) FormulaValue {
	if text == "" {
		return FormulaValue{}
	}
	return FormulaValue{kind: FormulaScalar, text: text}
}

// NumberFormula returns a scalar formula holding a number.
func NumberFormula(f float64) FormulaValue {
	return ScalarFormula(strconv.FormatFloat(f, 'f', -1, 64))
}

// ListFormula returns an explicit list of values for list validations.
func ListFormula(items ...string) FormulaValue {
	return FormulaValue{kind: FormulaList, items: append([]string(nil), items...)}
}

// Kind returns which variant v is.
func (v FormulaValue) Kind() FormulaKind {
	return v.kind
}

// Text returns the formula text of a scalar value.
func (v FormulaValue) Text() string {
	return v.text
}

// Items returns the literals of a list value.
func (v FormulaValue) Items() []string {
	return append([]string(nil), v.items...)
}

// IsEmpty reports whether v is the absent formula.
func (v FormulaValue) IsEmpty() bool {
	return v.kind == FormulaEmpty
}

func (v FormulaValue) String() string {
	switch v.kind {
	case FormulaScalar:
		return v.text
	case FormulaList:
		return "[" + strings.Join(v.items, ", ") + "]"
	}
	return "<empty>"
}

// formulaText returns the text handed to the tokenizer. Lists become a
// single quoted string with NUL separated items.
func (v FormulaValue) formulaText() string {
	if v.kind == FormulaList {
		return `"` + strings.Join(v.items, "\x00") + `"`
	}
	return strings.TrimPrefix(v.text, "=")
}

// DataValidationOptions declares a data validation. Nil flags default to true.
type DataValidationOptions struct {
	// Cells lists the ranges the validation applies to.
	Cells []CellRange

	Validate ValidationType
	Criteria Criteria

	// Value is the value, list source or minimum.
	Value FormulaValue

	// Maximum is the upper bound for between and not between.
	Maximum FormulaValue

	InputTitle   string
	InputMessage string
	ErrorTitle   string
	ErrorMessage string

	ErrorType ErrorStyle

	IgnoreBlank *bool
	Dropdown    *bool
	ShowInput   *bool
	ShowError   *bool

	// Datemode selects the 1900 (0) or 1904 (1) date system used to convert
	// ISO 8601 values of date and time validations.
	Datemode int
}

// Bool returns a pointer to v, for the flags of DataValidationOptions.
func Bool(v bool) *bool {
	return &v
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// DataValidation is one validated, encodable data validation rule.
type DataValidation struct {
	Cells []CellRange

	Validate ValidationType
	Criteria Criteria
	Value    FormulaValue
	Maximum  FormulaValue

	InputTitle   string
	InputMessage string
	ErrorTitle   string
	ErrorMessage string

	ErrorType ErrorStyle

	IgnoreBlank bool
	Dropdown    bool
	ShowInput   bool
	ShowError   bool
}

// NewDataValidation checks opts and builds a DataValidation from them.
// Problems are reported as *InvalidParameterError.
func NewDataValidation(opts DataValidationOptions) (*DataValidation, error) {
	if len(opts.Cells) == 0 {
		return nil, invalidParam("cells", "at least one cell range is required")
	}
	for _, r := range opts.Cells {
		if err := r.validate(); err != nil {
			return nil, err
		}
	}
	if opts.Validate < ValidateAny || opts.Validate > ValidateCustom {
		return nil, invalidParam("validate", "unknown validation type code %d", opts.Validate)
	}
	if opts.Criteria < CriteriaBetween || opts.Criteria > CriteriaLessOrEqual {
		return nil, invalidParam("criteria", "unknown criteria code %d", opts.Criteria)
	}
	if opts.ErrorType < ErrorStop || opts.ErrorType > ErrorInformation {
		return nil, invalidParam("error_type", "unknown error type code %d", opts.ErrorType)
	}

	dv := &DataValidation{
		Cells:        append([]CellRange(nil), opts.Cells...),
		Validate:     opts.Validate,
		Criteria:     opts.Criteria,
		Value:        opts.Value,
		Maximum:      opts.Maximum,
		InputTitle:   opts.InputTitle,
		InputMessage: opts.InputMessage,
		ErrorTitle:   opts.ErrorTitle,
		ErrorMessage: opts.ErrorMessage,
		ErrorType:    opts.ErrorType,
		IgnoreBlank:  boolOr(opts.IgnoreBlank, true),
		Dropdown:     boolOr(opts.Dropdown, true),
		ShowInput:    boolOr(opts.ShowInput, true),
		ShowError:    boolOr(opts.ShowError, true),
	}

	switch dv.Validate {
	case ValidateAny:
		dv.Value = EmptyFormula()
		dv.Maximum = EmptyFormula()
		return dv, nil
	case ValidateList, ValidateCustom:
		dv.Criteria = CriteriaBetween
		dv.Maximum = EmptyFormula()
	default:
		if dv.Criteria == CriteriaBetween || dv.Criteria == CriteriaNotBetween {
			if dv.Maximum.IsEmpty() {
				return nil, invalidParam("maximum", "required for between and not between criteria")
			}
		} else {
			dv.Maximum = EmptyFormula()
		}
	}

	if dv.Value.IsEmpty() {
		return nil, invalidParam("value", "required for validation type %d", dv.Validate)
	}

	if dv.Validate == ValidateDate || dv.Validate == ValidateTime {
		var err error
		if dv.Value, err = convertDateValue("value", dv.Value, opts.Datemode); err != nil {
			return nil, err
		}
		if dv.Maximum, err = convertDateValue("maximum", dv.Maximum, opts.Datemode); err != nil {
			return nil, err
		}
	}
	return dv, nil
}

func convertDateValue(param string, v FormulaValue, datemode int) (FormulaValue, error) {
	if v.Kind() != FormulaScalar {
		return v, nil
	}
	xldate, ok, err := ConvertDateTime(v.Text(), datemode)
	if err != nil {
		return v, &InvalidParameterError{Param: param, Message: err.Error(), Err: err}
	}
	if !ok {
		return v, nil
	}
	return NumberFormula(xldate), nil
}

// flags packs the DV option flags.
func (dv *DataValidation) flags() uint32 {
	var strLookup, noDropdown uint32
	if dv.Validate == ValidateList && dv.Value.Kind() == FormulaList {
		strLookup = 1
	}
	// the dropdown flag is stored negated
	if !dv.Dropdown {
		noDropdown = 1
	}

	flags := uint32(dv.Validate) & 0x0F
	flags |= (uint32(dv.ErrorType) & 0x07) << 4
	flags |= strLookup << 7
	flags |= b2u(dv.IgnoreBlank) << 8
	flags |= noDropdown << 9
	flags |= b2u(dv.ShowInput) << 18
	flags |= b2u(dv.ShowError) << 19
	flags |= (uint32(dv.Criteria) & 0x07) << 20
	return flags
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// Record returns the DV record that specifies the validation criteria and
// options for the rule's cell ranges. Errors from tok are returned unchanged.
func (dv *DataValidation) Record(tok Tokenizer) ([]byte, error) {
	formula1, err := packDVFormula(tok, dv.Value)
	if err != nil {
		return nil, err
	}
	formula2, err := packDVFormula(tok, dv.Maximum)
	if err != nil {
		return nil, err
	}

	data := binary.LittleEndian.AppendUint32(nil, dv.flags())
	for _, s := range []struct {
		text string
		max  int
	}{
		{dv.InputTitle, XL_DV_TITLE_MAX},
		{dv.ErrorTitle, XL_DV_TITLE_MAX},
		{dv.InputMessage, XL_DV_MESSAGE_MAX},
		{dv.ErrorMessage, XL_DV_MESSAGE_MAX},
	} {
		packed, err := PackDVString(s.text, s.max)
		if err != nil {
			return nil, err
		}
		data = append(data, packed...)
	}
	data = append(data, formula1...)
	data = append(data, formula2...)

	// rows come before columns in the range table
	data = binary.LittleEndian.AppendUint16(data, uint16(len(dv.Cells)))
	for _, r := range dv.Cells {
		data = binary.LittleEndian.AppendUint16(data, uint16(r.FirstRow))
		data = binary.LittleEndian.AppendUint16(data, uint16(r.LastRow))
		data = binary.LittleEndian.AppendUint16(data, uint16(r.FirstCol))
		data = binary.LittleEndian.AppendUint16(data, uint16(r.LastCol))
	}

	return PackRecord(XL_DV, data)
}

// packDVFormula packs a validation formula: length (2 bytes), unused
// (2 bytes), then the serialized tokens.
//
// Areas and defined names are forced to reference class. References keep
// the absolute A1 form of cell formulas rather than ptgRefN/ptgAreaN.
func packDVFormula(tok Tokenizer, v FormulaValue) ([]byte, error) {
	out := make([]byte, 4, 4+32)
	if v.IsEmpty() {
		return out, nil
	}

	tokens, err := tok.Tokenize(v.formulaText())
	if err != nil {
		return nil, err
	}
	formula, err := tok.Serialize(WithReferenceClass(tokens))
	if err != nil {
		return nil, err
	}
	if len(formula) > 0xFFFF {
		return nil, NewXLWTError("validation formula too long: %d bytes", len(formula))
	}

	binary.LittleEndian.PutUint16(out[0:2], uint16(len(formula)))
	return append(out, formula...), nil
}

// String describes the rule for logs.
func (dv *DataValidation) String() string {
	cells := make([]string, len(dv.Cells))
	for i, r := range dv.Cells {
		cells[i] = r.String()
	}
	return fmt.Sprintf("DataValidation(cells=%s, validate=%d, criteria=%d, value=%s, maximum=%s)",
		strings.Join(cells, " "), dv.Validate, dv.Criteria, dv.Value, dv.Maximum)
}
