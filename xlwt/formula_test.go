package xlwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serialize(t *testing.T, p *FormulaParser, formula string) []byte {
	t.Helper()
	tokens, err := p.Tokenize(formula)
	require.NoError(t, err, formula)
	out, err := p.Serialize(tokens)
	require.NoError(t, err, formula)
	return out
}

func TestFormulaParserTokens(t *testing.T) {
	p := NewFormulaParser(map[string]int{"MyList": 1})

	tests := []struct {
		formula string
		want    []byte
	}{
		{"1", []byte{0x1E, 0x01, 0x00}},
		{"10", []byte{0x1E, 0x0A, 0x00}},
		{"1.5", []byte{0x1F, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xF8, 0x3F}},
		{"70000", []byte{0x1F, 0x00, 0x00, 0x00, 0x00, 0x00, 0x17, 0xF1, 0x40}},
		{"TRUE", []byte{0x1D, 0x01}},
		{"false", []byte{0x1D, 0x00}},
		{"#N/A", []byte{0x1C, 0x2A}},
		{`"ab"`, []byte{0x17, 0x02, 0x00, 'a', 'b'}},
		{`"a""b"`, []byte{0x17, 0x03, 0x00, 'a', '"', 'b'}},
		{"A1", []byte{0x44, 0x00, 0x00, 0x00, 0xC0}},
		{"$B$3", []byte{0x44, 0x02, 0x00, 0x01, 0x00}},
		{"B$3", []byte{0x44, 0x02, 0x00, 0x01, 0x40}},
		{"$B3", []byte{0x44, 0x02, 0x00, 0x01, 0x80}},
		{"$A$1:$A$5", []byte{0x45, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00}},
		{"MyList", []byte{0x43, 0x01, 0x00, 0x00, 0x00}},
		{"mylist", []byte{0x43, 0x01, 0x00, 0x00, 0x00}},
		{"1+2*3", []byte{0x1E, 0x01, 0x00, 0x1E, 0x02, 0x00, 0x1E, 0x03, 0x00, 0x05, 0x03}},
		{"(1+2)*3", []byte{0x1E, 0x01, 0x00, 0x1E, 0x02, 0x00, 0x03, 0x15, 0x1E, 0x03, 0x00, 0x05}},
		{"-1", []byte{0x1E, 0x01, 0x00, 0x13}},
		{"50%", []byte{0x1E, 0x32, 0x00, 0x14}},
		{"2^3", []byte{0x1E, 0x02, 0x00, 0x1E, 0x03, 0x00, 0x07}},
		{`"a"&"b"`, []byte{0x17, 0x01, 0x00, 'a', 0x17, 0x01, 0x00, 'b', 0x08}},
		{"A1<>0", []byte{0x44, 0x00, 0x00, 0x00, 0xC0, 0x1E, 0x00, 0x00, 0x0E}},
		{"A1>=0", []byte{0x44, 0x00, 0x00, 0x00, 0xC0, 0x1E, 0x00, 0x00, 0x0C}},
		{"LEN(A1)", []byte{0x44, 0x00, 0x00, 0x00, 0xC0, 0x41, 0x20, 0x00}},
		{"TODAY()", []byte{0x41, 0xDD, 0x00}},
		{"AND(A1>0,A1<10)", []byte{
			0x44, 0x00, 0x00, 0x00, 0xC0, 0x1E, 0x00, 0x00, 0x0D,
			0x44, 0x00, 0x00, 0x00, 0xC0, 0x1E, 0x0A, 0x00, 0x09,
			0x42, 0x02, 0x24, 0x00,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			assert.Equal(t, tt.want, serialize(t, p, tt.formula))
		})
	}
}

func TestFormulaParserUnicodeString(t *testing.T) {
	p := NewFormulaParser(nil)
	got := serialize(t, p, `"Да"`)
	assert.Equal(t, []byte{0x17, 0x02, 0x01, 0x14, 0x04, 0x30, 0x04}, got)
}

func TestFormulaParserListString(t *testing.T) {
	p := NewFormulaParser(nil)
	got := serialize(t, p, "\"A\x00B\"")
	assert.Equal(t, []byte{0x17, 0x03, 0x00, 'A', 0x00, 'B'}, got)
}

func TestFormulaParserSyntaxErrors(t *testing.T) {
	p := NewFormulaParser(nil)
	for _, formula := range []string{
		"",
		"1+",
		"AND(",
		"(1",
		"1 2",
		"NOSUCHFUNC(1)",
		"Undefined",
		"IF(1)",
		"NA(1)",
		"Sheet1!A1",
		"XFA1",
	} {
		t.Run(formula, func(t *testing.T) {
			_, err := p.Tokenize(formula)
			var serr *FormulaSyntaxError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, formula, serr.Formula)
		})
	}
}

func TestWithReferenceClass(t *testing.T) {
	p := NewFormulaParser(map[string]int{"Items": 3})
	tokens, err := p.Tokenize("Items")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, ClassValue, tokens[0].Class)

	rewritten := WithReferenceClass(tokens)
	assert.Equal(t, ClassReference, rewritten[0].Class)
	assert.Equal(t, byte(0x23), rewritten[0].Opcode())
	assert.Equal(t, ClassValue, tokens[0].Class, "input is not modified")

	tokens, err = p.Tokenize("$A$1:$A$5")
	require.NoError(t, err)
	assert.Equal(t, byte(0x25), WithReferenceClass(tokens)[0].Opcode())

	tokens, err = p.Tokenize("A1")
	require.NoError(t, err)
	assert.Equal(t, byte(0x44), WithReferenceClass(tokens)[0].Opcode(), "single cell references keep value class")
}

func TestTokenName(t *testing.T) {
	assert.Equal(t, "AreaR", Token{Ptg: ptgArea, Class: ClassReference}.Name())
	assert.Equal(t, "Add", Token{Ptg: ptgAdd}.Name())
	assert.Equal(t, "ptgRefV(A1)", Token{Ptg: ptgRef, Class: ClassValue, Text: "A1"}.String())
}

func TestSerializeRejectsUnknownOpcode(t *testing.T) {
	p := NewFormulaParser(nil)
	_, err := p.Serialize([]Token{{Ptg: 0x00}})
	assert.Error(t, err)
	_, err = p.Serialize([]Token{{Ptg: 0x30}})
	assert.Error(t, err)
}
