package xlwt

import (
	"fmt"
	"strings"
)

// Parsed thing (ptg) base opcodes. Classified tokens (0x20 and above) carry
// their operand class in bits 5-6 of the opcode byte.
const (
	ptgAdd     = 0x03
	ptgSub     = 0x04
	ptgMul     = 0x05
	ptgDiv     = 0x06
	ptgPower   = 0x07
	ptgConcat  = 0x08
	ptgLT      = 0x09
	ptgLE      = 0x0A
	ptgEQ      = 0x0B
	ptgGE      = 0x0C
	ptgGT      = 0x0D
	ptgNE      = 0x0E
	ptgUplus   = 0x12
	ptgUminus  = 0x13
	ptgPercent = 0x14
	ptgParen   = 0x15
	ptgMissArg = 0x16
	ptgStr     = 0x17
	ptgErr     = 0x1C
	ptgBool    = 0x1D
	ptgInt     = 0x1E
	ptgNum     = 0x1F
	ptgFunc    = 0x21
	ptgFuncVar = 0x22
	ptgName    = 0x23
	ptgRef     = 0x24
	ptgArea    = 0x25
)

// OperandClass is the class of a classified token.
type OperandClass byte

const (
	ClassNone      OperandClass = 0x00
	ClassReference OperandClass = 0x20
	ClassValue     OperandClass = 0x40
	ClassArray     OperandClass = 0x60
)

func (c OperandClass) String() string {
	switch c {
	case ClassReference:
		return "R"
	case ClassValue:
		return "V"
	case ClassArray:
		return "A"
	}
	return ""
}

// Operation names for debugging, indexed by base opcode.
var onames = []string{
	"Unk00", "Exp", "Tbl", "Add", "Sub", "Mul", "Div", "Power", "Concat", "LT", "LE", "EQ", "GE", "GT", "NE",
	"Isect", "List", "Range", "Uplus", "Uminus", "Percent", "Paren", "MissArg", "Str", "Extended", "Attr",
	"Sheet", "EndSheet", "Err", "Bool", "Int", "Num", "Array", "Func", "FuncVar", "Name", "Ref", "Area",
}

// Token is one parsed thing of a tokenized formula.
//
// Ptg is the opcode in its reference class form (0x20-0x3F for classified
// tokens), Class the operand class to store, and Data the operand bytes that
// follow the opcode.
type Token struct {
	Ptg   byte
	Class OperandClass
	Data  []byte

	// Text is the source text the token was built from.
	Text string
}

// Classified reports whether the token's opcode carries an operand class.
func (t Token) Classified() bool {
	return t.Ptg >= 0x20
}

// IsArea2D reports whether the token is a two-dimensional area reference.
func (t Token) IsArea2D() bool {
	return t.Ptg == ptgArea
}

// IsName reports whether the token references a defined name.
func (t Token) IsName() bool {
	return t.Ptg == ptgName
}

// Opcode returns the opcode byte as stored in the formula.
func (t Token) Opcode() byte {
	if !t.Classified() {
		return t.Ptg
	}
	class := t.Class
	if class == ClassNone {
		class = ClassValue
	}
	return t.Ptg&0x1F | byte(class)
}

// Name returns the ptg name with its class suffix, e.g. "AreaR".
func (t Token) Name() string {
	name := "?"
	if int(t.Ptg) < len(onames) {
		name = onames[t.Ptg]
	}
	if t.Classified() {
		return name + t.Class.String()
	}
	return name
}

func (t Token) String() string {
	if t.Text == "" {
		return "ptg" + t.Name()
	}
	return fmt.Sprintf("ptg%s(%s)", t.Name(), t.Text)
}

// WithReferenceClass returns a copy of tokens in which 2D areas and defined
// names are reference class. Data validation formulas require this even
// though cell formulas use value class for the same constructs.
func WithReferenceClass(tokens []Token) []Token {
	out := make([]Token, len(tokens))
	for i, t := range tokens {
		if t.IsArea2D() || t.IsName() {
			t.Class = ClassReference
		}
		out[i] = t
	}
	return out
}

// funcDef describes a built-in worksheet function.
type funcDef struct {
	ID      uint16
	Name    string
	MinArgs int
	MaxArgs int
}

// funcDefs lists the built-in functions the formula parser knows, by BIFF id.
var funcDefs = []funcDef{
	{0, "COUNT", 0, 30},
	{1, "IF", 2, 3},
	{2, "ISNA", 1, 1},
	{3, "ISERROR", 1, 1},
	{4, "SUM", 0, 30},
	{5, "AVERAGE", 1, 30},
	{6, "MIN", 1, 30},
	{7, "MAX", 1, 30},
	{8, "ROW", 0, 1},
	{9, "COLUMN", 0, 1},
	{10, "NA", 0, 0},
	{15, "SIN", 1, 1},
	{16, "COS", 1, 1},
	{19, "PI", 0, 0},
	{20, "SQRT", 1, 1},
	{24, "ABS", 1, 1},
	{25, "INT", 1, 1},
	{26, "SIGN", 1, 1},
	{27, "ROUND", 2, 2},
	{28, "LOOKUP", 2, 3},
	{29, "INDEX", 2, 4},
	{30, "REPT", 2, 2},
	{31, "MID", 3, 3},
	{32, "LEN", 1, 1},
	{33, "VALUE", 1, 1},
	{34, "TRUE", 0, 0},
	{35, "FALSE", 0, 0},
	{36, "AND", 1, 30},
	{37, "OR", 1, 30},
	{38, "NOT", 1, 1},
	{39, "MOD", 2, 2},
	{48, "TEXT", 2, 2},
	{64, "MATCH", 2, 3},
	{65, "DATE", 3, 3},
	{66, "TIME", 3, 3},
	{67, "DAY", 1, 1},
	{68, "MONTH", 1, 1},
	{69, "YEAR", 1, 1},
	{70, "WEEKDAY", 1, 2},
	{74, "NOW", 0, 0},
	{76, "ROWS", 1, 1},
	{77, "COLUMNS", 1, 1},
	{78, "OFFSET", 3, 5},
	{82, "SEARCH", 2, 3},
	{100, "CHOOSE", 2, 30},
	{101, "HLOOKUP", 3, 4},
	{102, "VLOOKUP", 3, 4},
	{112, "LOWER", 1, 1},
	{113, "UPPER", 1, 1},
	{115, "LEFT", 1, 2},
	{116, "RIGHT", 1, 2},
	{117, "EXACT", 2, 2},
	{118, "TRIM", 1, 1},
	{124, "FIND", 2, 3},
	{126, "ISERR", 1, 1},
	{127, "ISTEXT", 1, 1},
	{128, "ISNUMBER", 1, 1},
	{129, "ISBLANK", 1, 1},
	{169, "COUNTA", 0, 30},
	{183, "PRODUCT", 0, 30},
	{190, "ISNONTEXT", 1, 1},
	{197, "TRUNC", 1, 2},
	{198, "ISLOGICAL", 1, 1},
	{221, "TODAY", 0, 0},
	{336, "CONCATENATE", 0, 30},
	{337, "POWER", 2, 2},
	{345, "SUMIF", 2, 3},
	{346, "COUNTIF", 2, 2},
	{347, "COUNTBLANK", 1, 1},
}

var funcByName = func() map[string]funcDef {
	m := make(map[string]funcDef, len(funcDefs))
	for _, fd := range funcDefs {
		m[fd.Name] = fd
	}
	return m
}()

func lookupFunc(name string) (funcDef, bool) {
	fd, ok := funcByName[strings.ToUpper(name)]
	return fd, ok
}
