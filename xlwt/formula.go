package xlwt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// FormulaSyntaxError is returned when a formula cannot be tokenized.
type FormulaSyntaxError struct {
	// Formula is the text that failed to parse.
	Formula string

	// Pos is the 1-based column of the offending token, or 0 if unknown.
	Pos int

	Message string
}

func (e *FormulaSyntaxError) Error() string {
	if e.Pos > 0 {
		return fmt.Sprintf("formula syntax error in %q at column %d: %s", e.Formula, e.Pos, e.Message)
	}
	return fmt.Sprintf("formula syntax error in %q: %s", e.Formula, e.Message)
}

// Tokenizer turns formula text into ptg tokens and tokens into the bytes
// stored in a record.
type Tokenizer interface {
	// Tokenize parses formula text (without a leading "=").
	// Malformed input yields a *FormulaSyntaxError.
	Tokenize(formula string) ([]Token, error)

	// Serialize packs tokens into their RPN byte form.
	Serialize(tokens []Token) ([]byte, error)
}

var fmlaLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "String", Pattern: `"(?:[^"]|"")*"`},
	{Name: "Error", Pattern: `#(?:NULL!|DIV/0!|VALUE!|REF!|NAME\?|NUM!|N/A)`},
	{Name: "Cell", Pattern: `\$?[A-Za-z]{1,3}\$?[0-9]+\b`},
	{Name: "Number", Pattern: `(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][-+]?[0-9]+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_\\][A-Za-z0-9_.]*`},
	{Name: "Operator", Pattern: `<>|<=|>=|[-+*/^&=<>%(),:]`},
})

// Grammar levels, lowest precedence first.
//
//nolint:govet // participle grammar tags are not standard struct tags
type fmlaExpr struct {
	Left *fmlaConcat `@@`
	Rest []*fmlaCmp  `@@*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type fmlaCmp struct {
	Op    string      `@("<>" | "<=" | ">=" | "=" | "<" | ">")`
	Right *fmlaConcat `@@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type fmlaConcat struct {
	Left *fmlaAdd   `@@`
	Rest []*fmlaAdd `( "&" @@ )*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type fmlaAdd struct {
	Left *fmlaMul     `@@`
	Rest []*fmlaAddOp `@@*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type fmlaAddOp struct {
	Op    string   `@("+" | "-")`
	Right *fmlaMul `@@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type fmlaMul struct {
	Left *fmlaPow     `@@`
	Rest []*fmlaMulOp `@@*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type fmlaMulOp struct {
	Op    string   `@("*" | "/")`
	Right *fmlaPow `@@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type fmlaPow struct {
	Left *fmlaUnary   `@@`
	Rest []*fmlaUnary `( "^" @@ )*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type fmlaUnary struct {
	Signs   []string     `@("+" | "-")*`
	Operand *fmlaPercent `@@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type fmlaPercent struct {
	Primary  *fmlaPrimary `@@`
	Percents []string     `@"%"*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type fmlaPrimary struct {
	Pos lexer.Position

	Call   *fmlaCall `  @@`
	Ref    *fmlaRef  `| @@`
	Number *string   `| @Number`
	String *string   `| @String`
	Error  *string   `| @Error`
	Ident  *string   `| @Ident`
	Paren  *fmlaExpr `| "(" @@ ")"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type fmlaCall struct {
	Pos lexer.Position

	Name string      `@(Ident | Cell) "("`
	Args []*fmlaExpr `( @@ ( "," @@ )* )? ")"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type fmlaRef struct {
	Pos lexer.Position

	First string  `@Cell`
	Last  *string `( ":" @Cell )?`
}

var fmlaGrammar = participle.MustBuild[fmlaExpr](
	participle.Lexer(fmlaLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

var cmpOps = map[string]byte{
	"<>": ptgNE,
	"<=": ptgLE,
	">=": ptgGE,
	"=":  ptgEQ,
	"<":  ptgLT,
	">":  ptgGT,
}

// FormulaParser is the default Tokenizer. It handles the formula subset used
// by data validations: literals, A1 references and areas, defined names,
// arithmetic, comparison and concatenation operators and built-in functions.
//
// A FormulaParser is immutable and safe for concurrent use.
type FormulaParser struct {
	names map[string]int
}

// NewFormulaParser creates a parser. names maps defined names to their
// 1-based index in the workbook's NAME records; lookups ignore case.
func NewFormulaParser(names map[string]int) *FormulaParser {
	p := &FormulaParser{names: make(map[string]int, len(names))}
	for name, index := range names {
		p.names[strings.ToUpper(name)] = index
	}
	return p
}

// formulaBuilder accumulates tokens in RPN order for one formula.
type formulaBuilder struct {
	parser  *FormulaParser
	formula string
	tokens  []Token
}

// Tokenize implements Tokenizer.
func (p *FormulaParser) Tokenize(formula string) ([]Token, error) {
	ast, err := fmlaGrammar.ParseString("", formula)
	if err != nil {
		serr := &FormulaSyntaxError{Formula: formula, Message: err.Error()}
		var perr participle.Error
		if errors.As(err, &perr) {
			serr.Message = perr.Message()
			serr.Pos = perr.Position().Column
		}
		return nil, serr
	}

	b := &formulaBuilder{parser: p, formula: formula}
	if err := b.expr(ast); err != nil {
		return nil, err
	}
	return b.tokens, nil
}

// Serialize implements Tokenizer.
func (p *FormulaParser) Serialize(tokens []Token) ([]byte, error) {
	var out []byte
	for _, t := range tokens {
		if int(t.Ptg) >= len(onames) || t.Ptg == 0 {
			return nil, NewXLWTError("cannot serialize token with opcode 0x%02x", t.Ptg)
		}
		out = append(out, t.Opcode())
		out = append(out, t.Data...)
	}
	if len(out) > 0xFFFF {
		return nil, NewXLWTError("formula too long: %d bytes", len(out))
	}
	return out, nil
}

func (b *formulaBuilder) fail(pos lexer.Position, format string, args ...interface{}) error {
	return &FormulaSyntaxError{Formula: b.formula, Pos: pos.Column, Message: fmt.Sprintf(format, args...)}
}

func (b *formulaBuilder) emit(ptg byte, class OperandClass, data []byte, text string) {
	b.tokens = append(b.tokens, Token{Ptg: ptg, Class: class, Data: data, Text: text})
}

func (b *formulaBuilder) expr(e *fmlaExpr) error {
	if err := b.concat(e.Left); err != nil {
		return err
	}
	for _, op := range e.Rest {
		if err := b.concat(op.Right); err != nil {
			return err
		}
		b.emit(cmpOps[op.Op], ClassNone, nil, op.Op)
	}
	return nil
}

func (b *formulaBuilder) concat(e *fmlaConcat) error {
	if err := b.add(e.Left); err != nil {
		return err
	}
	for _, right := range e.Rest {
		if err := b.add(right); err != nil {
			return err
		}
		b.emit(ptgConcat, ClassNone, nil, "&")
	}
	return nil
}

func (b *formulaBuilder) add(e *fmlaAdd) error {
	if err := b.mul(e.Left); err != nil {
		return err
	}
	for _, op := range e.Rest {
		if err := b.mul(op.Right); err != nil {
			return err
		}
		if op.Op == "+" {
			b.emit(ptgAdd, ClassNone, nil, op.Op)
		} else {
			b.emit(ptgSub, ClassNone, nil, op.Op)
		}
	}
	return nil
}

func (b *formulaBuilder) mul(e *fmlaMul) error {
	if err := b.pow(e.Left); err != nil {
		return err
	}
	for _, op := range e.Rest {
		if err := b.pow(op.Right); err != nil {
			return err
		}
		if op.Op == "*" {
			b.emit(ptgMul, ClassNone, nil, op.Op)
		} else {
			b.emit(ptgDiv, ClassNone, nil, op.Op)
		}
	}
	return nil
}

func (b *formulaBuilder) pow(e *fmlaPow) error {
	if err := b.unary(e.Left); err != nil {
		return err
	}
	for _, right := range e.Rest {
		if err := b.unary(right); err != nil {
			return err
		}
		b.emit(ptgPower, ClassNone, nil, "^")
	}
	return nil
}

func (b *formulaBuilder) unary(e *fmlaUnary) error {
	if err := b.percent(e.Operand); err != nil {
		return err
	}
	// innermost sign applies first
	for i := len(e.Signs) - 1; i >= 0; i-- {
		if e.Signs[i] == "-" {
			b.emit(ptgUminus, ClassNone, nil, "-")
		} else {
			b.emit(ptgUplus, ClassNone, nil, "+")
		}
	}
	return nil
}

func (b *formulaBuilder) percent(e *fmlaPercent) error {
	if err := b.primary(e.Primary); err != nil {
		return err
	}
	for range e.Percents {
		b.emit(ptgPercent, ClassNone, nil, "%")
	}
	return nil
}

func (b *formulaBuilder) primary(e *fmlaPrimary) error {
	switch {
	case e.Call != nil:
		return b.call(e.Call)
	case e.Ref != nil:
		return b.ref(e.Ref)
	case e.Number != nil:
		return b.number(e.Pos, *e.Number)
	case e.String != nil:
		return b.str(e.Pos, *e.String)
	case e.Error != nil:
		b.emit(ptgErr, ClassNone, []byte{ErrorCodeFromText[*e.Error]}, *e.Error)
		return nil
	case e.Ident != nil:
		return b.ident(e.Pos, *e.Ident)
	case e.Paren != nil:
		if err := b.expr(e.Paren); err != nil {
			return err
		}
		b.emit(ptgParen, ClassNone, nil, "()")
		return nil
	}
	return b.fail(e.Pos, "empty operand")
}

func (b *formulaBuilder) number(pos lexer.Position, text string) error {
	if isDigits(text) {
		if n, err := strconv.Atoi(text); err == nil && n <= 0xFFFF {
			b.emit(ptgInt, ClassNone, binary.LittleEndian.AppendUint16(nil, uint16(n)), text)
			return nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) {
		return b.fail(pos, "invalid number %s", text)
	}
	b.emit(ptgNum, ClassNone, binary.LittleEndian.AppendUint64(nil, math.Float64bits(f)), text)
	return nil
}

func (b *formulaBuilder) str(pos lexer.Position, quoted string) error {
	s := strings.ReplaceAll(quoted[1:len(quoted)-1], `""`, `"`)

	var data []byte
	if isASCII(s) {
		if len(s) > 255 {
			return b.fail(pos, "string literal longer than 255 characters")
		}
		data = append([]byte{byte(len(s)), 0x00}, s...)
	} else {
		wide, err := encodeUTF16LE(s)
		if err != nil {
			return b.fail(pos, "%v", err)
		}
		if len(wide)/2 > 255 {
			return b.fail(pos, "string literal longer than 255 characters")
		}
		data = append([]byte{byte(len(wide) / 2), 0x01}, wide...)
	}
	b.emit(ptgStr, ClassNone, data, s)
	return nil
}

func (b *formulaBuilder) ident(pos lexer.Position, name string) error {
	switch strings.ToUpper(name) {
	case "TRUE":
		b.emit(ptgBool, ClassNone, []byte{1}, name)
		return nil
	case "FALSE":
		b.emit(ptgBool, ClassNone, []byte{0}, name)
		return nil
	}
	index, ok := b.parser.names[strings.ToUpper(name)]
	if !ok {
		return b.fail(pos, "unknown defined name %s", name)
	}
	data := binary.LittleEndian.AppendUint16(nil, uint16(index))
	data = binary.LittleEndian.AppendUint16(data, 0)
	b.emit(ptgName, ClassValue, data, name)
	return nil
}

func (b *formulaBuilder) ref(e *fmlaRef) error {
	first, err := ParseCellRef(e.First)
	if err != nil {
		return b.fail(e.Pos, "%v", err)
	}
	if e.Last == nil {
		data := binary.LittleEndian.AppendUint16(nil, uint16(first.Row))
		data = binary.LittleEndian.AppendUint16(data, packColField(first))
		b.emit(ptgRef, ClassValue, data, e.First)
		return nil
	}
	last, err := ParseCellRef(*e.Last)
	if err != nil {
		return b.fail(e.Pos, "%v", err)
	}
	data := binary.LittleEndian.AppendUint16(nil, uint16(first.Row))
	data = binary.LittleEndian.AppendUint16(data, uint16(last.Row))
	data = binary.LittleEndian.AppendUint16(data, packColField(first))
	data = binary.LittleEndian.AppendUint16(data, packColField(last))
	b.emit(ptgArea, ClassValue, data, e.First+":"+*e.Last)
	return nil
}

func (b *formulaBuilder) call(e *fmlaCall) error {
	fd, ok := lookupFunc(e.Name)
	if !ok {
		return b.fail(e.Pos, "unknown function %s", e.Name)
	}
	nargs := len(e.Args)
	if nargs < fd.MinArgs || nargs > fd.MaxArgs {
		return b.fail(e.Pos, "function %s takes %d to %d arguments, got %d", fd.Name, fd.MinArgs, fd.MaxArgs, nargs)
	}
	for _, arg := range e.Args {
		if err := b.expr(arg); err != nil {
			return err
		}
	}
	if fd.MinArgs == fd.MaxArgs {
		b.emit(ptgFunc, ClassValue, binary.LittleEndian.AppendUint16(nil, fd.ID), fd.Name)
		return nil
	}
	data := binary.LittleEndian.AppendUint16([]byte{byte(nargs)}, fd.ID)
	b.emit(ptgFuncVar, ClassValue, data, fd.Name)
	return nil
}

// packColField packs a BIFF8 column field: column index in bits 0-7,
// column-relative in bit 14 and row-relative in bit 15.
func packColField(c CellRef) uint16 {
	v := uint16(c.Col)
	if !c.ColAbs {
		v |= 1 << 14
	}
	if !c.RowAbs {
		v |= 1 << 15
	}
	return v
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
