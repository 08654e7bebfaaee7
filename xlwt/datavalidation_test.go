package xlwt

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTokenizer records the formulas it is given and returns one string
// token per formula.
type fakeTokenizer struct {
	inputs []string
	err    error
}

func (f *fakeTokenizer) Tokenize(formula string) ([]Token, error) {
	f.inputs = append(f.inputs, formula)
	if f.err != nil {
		return nil, f.err
	}
	return []Token{{Ptg: ptgInt, Data: []byte{0x2A, 0x00}, Text: formula}, {Ptg: ptgArea, Class: ClassValue}}, nil
}

func (f *fakeTokenizer) Serialize(tokens []Token) ([]byte, error) {
	var out []byte
	for _, t := range tokens {
		out = append(out, t.Opcode())
		out = append(out, t.Data...)
	}
	return out, nil
}

func b3() []CellRange {
	return []CellRange{{FirstRow: 2, FirstCol: 1, LastRow: 2, LastCol: 1}}
}

func mustDV(t *testing.T, opts DataValidationOptions) *DataValidation {
	t.Helper()
	dv, err := NewDataValidation(opts)
	require.NoError(t, err)
	return dv
}

func TestCountDVRecord(t *testing.T) {
	var set DataValidations
	assert.Nil(t, set.CountDVRecord())

	set.Add(mustDV(t, DataValidationOptions{Cells: b3()}))
	set.Add(mustDV(t, DataValidationOptions{Cells: b3()}))
	set.Add(mustDV(t, DataValidationOptions{Cells: b3()}))

	want := []byte{
		0xB2, 0x01, 0x12, 0x00,
		0x04, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0xFF, 0xFF, 0xFF, 0xFF,
		0x03, 0x00, 0x00, 0x00,
	}
	assert.Equal(t, want, set.CountDVRecord())
}

func TestPackDVFormulaEmpty(t *testing.T) {
	tok := &fakeTokenizer{}
	got, err := packDVFormula(tok, EmptyFormula())
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, got)
	assert.Empty(t, tok.inputs, "tokenizer is not called for an empty formula")
}

func TestPackDVFormulaList(t *testing.T) {
	tok := &fakeTokenizer{}
	got, err := packDVFormula(tok, ListFormula("A", "B"))
	require.NoError(t, err)
	assert.Equal(t, []string{"\"A\x00B\""}, tok.inputs)
	// the area token of the fake is rewritten to reference class
	assert.Equal(t, []byte{0x04, 0x00, 0x00, 0x00, 0x1E, 0x2A, 0x00, 0x25}, got)
}

func TestPackDVFormulaStripsEquals(t *testing.T) {
	tok := &fakeTokenizer{}
	_, err := packDVFormula(tok, ScalarFormula("=$A$1:$A$5"))
	require.NoError(t, err)
	_, err = packDVFormula(tok, ScalarFormula("==1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"$A$1:$A$5", "=1"}, tok.inputs)
}

func TestPackDVFormulaDefinedName(t *testing.T) {
	p := NewFormulaParser(map[string]int{"Choices": 2})
	got, err := packDVFormula(p, ScalarFormula("=Choices"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x05, 0x00, 0x00, 0x00, 0x23, 0x02, 0x00, 0x00, 0x00}, got)

	got, err = packDVFormula(p, ScalarFormula("=$A$1:$A$5"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x09, 0x00, 0x00, 0x00, 0x25, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00}, got)
}

func TestDataValidationFlags(t *testing.T) {
	tests := []struct {
		name string
		opts DataValidationOptions
		want uint32
	}{
		{
			name: "defaults",
			opts: DataValidationOptions{Validate: ValidateInteger, Criteria: CriteriaGreater, Value: ScalarFormula("0")},
			want: 0x01 | 1<<8 | 1<<18 | 1<<19 | 4<<20,
		},
		{
			name: "explicit list",
			opts: DataValidationOptions{Validate: ValidateList, Value: ListFormula("a", "b")},
			want: 0x03 | 1<<7 | 1<<8 | 1<<18 | 1<<19,
		},
		{
			name: "list from range",
			opts: DataValidationOptions{Validate: ValidateList, Value: ScalarFormula("=$A$1:$A$5")},
			want: 0x03 | 1<<8 | 1<<18 | 1<<19,
		},
		{
			name: "no dropdown",
			opts: DataValidationOptions{Validate: ValidateList, Value: ListFormula("a"), Dropdown: Bool(false)},
			want: 0x03 | 1<<7 | 1<<8 | 1<<9 | 1<<18 | 1<<19,
		},
		{
			name: "all off",
			opts: DataValidationOptions{
				Validate: ValidateDecimal, Criteria: CriteriaLessOrEqual, Value: ScalarFormula("1.5"),
				ErrorType: ErrorInformation, IgnoreBlank: Bool(false), ShowInput: Bool(false), ShowError: Bool(false),
			},
			want: 0x02 | 2<<4 | 7<<20,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Cells = b3()
			dv := mustDV(t, tt.opts)
			assert.Equal(t, tt.want, dv.flags())
		})
	}
}

func TestDataValidationRecord(t *testing.T) {
	dv := mustDV(t, DataValidationOptions{
		Cells:    b3(),
		Validate: ValidateInteger,
		Criteria: CriteriaBetween,
		Value:    NumberFormula(1),
		Maximum:  NumberFormula(10),
	})
	got, err := dv.Record(NewFormulaParser(nil))
	require.NoError(t, err)

	want := []byte{
		0xBE, 0x01, 0x2C, 0x00, // DV, 44 bytes
		0x01, 0x01, 0x0C, 0x00, // flags
		0x01, 0x00, 0x00, 0x00, // input title
		0x01, 0x00, 0x00, 0x00, // error title
		0x01, 0x00, 0x00, 0x00, // input message
		0x01, 0x00, 0x00, 0x00, // error message
		0x03, 0x00, 0x00, 0x00, 0x1E, 0x01, 0x00, // formula 1
		0x03, 0x00, 0x00, 0x00, 0x1E, 0x0A, 0x00, // formula 2
		0x01, 0x00, // one range
		0x02, 0x00, 0x02, 0x00, 0x01, 0x00, 0x01, 0x00,
	}
	assert.Equal(t, want, got)
}

func TestDataValidationRecordStringsAndRanges(t *testing.T) {
	dv := mustDV(t, DataValidationOptions{
		Cells: []CellRange{
			{FirstRow: 1, FirstCol: 2, LastRow: 1, LastCol: 2},
			{FirstRow: 4, FirstCol: 0, LastRow: 9, LastCol: 3},
		},
		Validate:     ValidateAny,
		InputTitle:   "In",
		ErrorTitle:   "Err",
		InputMessage: "Type",
		ErrorMessage: "No",
	})
	got, err := dv.Record(&fakeTokenizer{})
	require.NoError(t, err)

	data := got[4:]
	assert.Equal(t, uint16(len(data)), binary.LittleEndian.Uint16(got[2:4]))

	strs := data[4:]
	assert.Equal(t, []byte{0x02, 0x00, 0x00, 'I', 'n'}, strs[:5])
	assert.Equal(t, []byte{0x03, 0x00, 0x00, 'E', 'r', 'r'}, strs[5:11])
	assert.Equal(t, []byte{0x04, 0x00, 0x00, 'T', 'y', 'p', 'e'}, strs[11:18])
	assert.Equal(t, []byte{0x02, 0x00, 0x00, 'N', 'o'}, strs[18:23])

	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0}, strs[23:31], "any validation has empty formulas")
	assert.Equal(t, []byte{
		0x02, 0x00,
		0x01, 0x00, 0x01, 0x00, 0x02, 0x00, 0x02, 0x00,
		0x04, 0x00, 0x09, 0x00, 0x00, 0x00, 0x03, 0x00,
	}, strs[31:])
}

func TestDataValidationRecordTokenizerError(t *testing.T) {
	boom := errors.New("boom")
	dv := mustDV(t, DataValidationOptions{Cells: b3(), Validate: ValidateCustom, Value: ScalarFormula("=A1>0")})
	got, err := dv.Record(&fakeTokenizer{err: boom})
	assert.Nil(t, got)
	assert.ErrorIs(t, err, boom)
}

func TestStoreNoPartialOutput(t *testing.T) {
	var set DataValidations
	set.Add(mustDV(t, DataValidationOptions{Cells: b3(), Validate: ValidateInteger, Criteria: CriteriaEqual, Value: ScalarFormula("5")}))
	set.Add(mustDV(t, DataValidationOptions{Cells: b3(), Validate: ValidateCustom, Value: ScalarFormula("=AND(")}))

	got, err := set.Store(NewFormulaParser(nil))
	assert.Nil(t, got)
	var serr *FormulaSyntaxError
	assert.ErrorAs(t, err, &serr)
}

func TestStore(t *testing.T) {
	var set DataValidations
	out, err := set.Store(NewFormulaParser(nil))
	require.NoError(t, err)
	assert.Empty(t, out)

	set.Add(mustDV(t, DataValidationOptions{Cells: b3(), Validate: ValidateList, Value: ListFormula("Yes", "No")}))
	set.Add(mustDV(t, DataValidationOptions{Cells: b3(), Validate: ValidateLength, Criteria: CriteriaLess, Value: ScalarFormula("20")}))
	out, err = set.Store(NewFormulaParser(nil))
	require.NoError(t, err)

	records, err := ReadRecords(out)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, uint16(XL_DVAL), records[0].Code)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(records[0].Data[14:18]))
	assert.Equal(t, uint16(XL_DV), records[1].Code)
	assert.Equal(t, uint16(XL_DV), records[2].Code)
	assert.Equal(t, uint32(ValidateList), binary.LittleEndian.Uint32(records[1].Data[:4])&0x0F)
	assert.Equal(t, uint32(ValidateLength), binary.LittleEndian.Uint32(records[2].Data[:4])&0x0F)
}

func TestNewDataValidationDefaults(t *testing.T) {
	dv := mustDV(t, DataValidationOptions{
		Cells: b3(), Validate: ValidateAny, Value: ScalarFormula("1"), Maximum: ScalarFormula("2"),
	})
	assert.True(t, dv.Value.IsEmpty())
	assert.True(t, dv.Maximum.IsEmpty())
	assert.True(t, dv.IgnoreBlank)
	assert.True(t, dv.Dropdown)
	assert.True(t, dv.ShowInput)
	assert.True(t, dv.ShowError)

	dv = mustDV(t, DataValidationOptions{
		Cells: b3(), Validate: ValidateList, Criteria: CriteriaGreater, Value: ListFormula("a"), Maximum: ScalarFormula("2"),
	})
	assert.Equal(t, CriteriaBetween, dv.Criteria)
	assert.True(t, dv.Maximum.IsEmpty())

	dv = mustDV(t, DataValidationOptions{
		Cells: b3(), Validate: ValidateInteger, Criteria: CriteriaGreater, Value: ScalarFormula("1"), Maximum: ScalarFormula("2"),
	})
	assert.True(t, dv.Maximum.IsEmpty(), "maximum is dropped for single-bound criteria")
}

func TestNewDataValidationDates(t *testing.T) {
	dv := mustDV(t, DataValidationOptions{
		Cells: b3(), Validate: ValidateDate, Criteria: CriteriaBetween,
		Value: ScalarFormula("2008-07-24T"), Maximum: ScalarFormula("2008-07-25T12:00"),
	})
	assert.Equal(t, "39653", dv.Value.Text())
	assert.Equal(t, "39654.5", dv.Maximum.Text())

	dv = mustDV(t, DataValidationOptions{
		Cells: b3(), Validate: ValidateTime, Criteria: CriteriaGreater, Value: ScalarFormula("T06:00"),
	})
	assert.Equal(t, "0.25", dv.Value.Text())

	dv = mustDV(t, DataValidationOptions{
		Cells: b3(), Validate: ValidateDate, Criteria: CriteriaGreater, Value: ScalarFormula("=TODAY()"),
	})
	assert.Equal(t, "=TODAY()", dv.Value.Text(), "formulas are not converted")
}

func TestNewDataValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		opts  DataValidationOptions
		param string
	}{
		{"no cells", DataValidationOptions{Validate: ValidateAny}, "cells"},
		{"bad range", DataValidationOptions{Cells: []CellRange{{FirstRow: 3, LastRow: 1}}}, "cells"},
		{"bad validate", DataValidationOptions{Cells: b3(), Validate: 8}, "validate"},
		{"bad criteria", DataValidationOptions{Cells: b3(), Criteria: -1}, "criteria"},
		{"bad error type", DataValidationOptions{Cells: b3(), ErrorType: 3}, "error_type"},
		{"missing value", DataValidationOptions{Cells: b3(), Validate: ValidateInteger, Criteria: CriteriaEqual}, "value"},
		{"missing maximum", DataValidationOptions{Cells: b3(), Validate: ValidateInteger, Value: ScalarFormula("1")}, "maximum"},
		{"bad date", DataValidationOptions{Cells: b3(), Validate: ValidateDate, Criteria: CriteriaEqual, Value: ScalarFormula("2008-13-01T")}, "value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDataValidation(tt.opts)
			var perr *InvalidParameterError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.param, perr.Param)
		})
	}
}

func TestNameLookups(t *testing.T) {
	v, err := ValidationTypeFromName("Whole Number")
	require.NoError(t, err)
	assert.Equal(t, ValidateInteger, v)

	c, err := CriteriaFromName(">=")
	require.NoError(t, err)
	assert.Equal(t, CriteriaGreaterOrEqual, c)

	s, err := ErrorStyleFromName("warning")
	require.NoError(t, err)
	assert.Equal(t, ErrorWarning, s)

	_, err = ValidationTypeFromName("nope")
	assert.Error(t, err)
	_, err = CriteriaFromName("about")
	assert.Error(t, err)
	_, err = ErrorStyleFromName("panic")
	assert.Error(t, err)
}
