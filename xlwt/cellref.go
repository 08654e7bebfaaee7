package xlwt

import (
	"fmt"
	"strconv"
	"strings"
)

// CellRange is a rectangular block of cells, zero-based and inclusive.
type CellRange struct {
	FirstRow int
	FirstCol int
	LastRow  int
	LastCol  int
}

// String returns the range in A1 notation, e.g. "B3:B10".
func (r CellRange) String() string {
	if r.FirstRow == r.LastRow && r.FirstCol == r.LastCol {
		return CellName(r.FirstRow, r.FirstCol)
	}
	return CellName(r.FirstRow, r.FirstCol) + ":" + CellName(r.LastRow, r.LastCol)
}

func (r CellRange) validate() error {
	if r.FirstRow < 0 || r.FirstCol < 0 || r.LastRow < 0 || r.LastCol < 0 {
		return invalidParam("cells", "negative index in range %v", [4]int{r.FirstRow, r.FirstCol, r.LastRow, r.LastCol})
	}
	if r.FirstRow > r.LastRow || r.FirstCol > r.LastCol {
		return invalidParam("cells", "range %v is not ordered first <= last", [4]int{r.FirstRow, r.FirstCol, r.LastRow, r.LastCol})
	}
	if r.LastRow > XL_MAX_ROW || r.LastCol > XL_MAX_COL {
		return invalidParam("cells", "range %v exceeds the BIFF8 grid", [4]int{r.FirstRow, r.FirstCol, r.LastRow, r.LastCol})
	}
	return nil
}

// CellRef is a single A1 cell reference with its absolute markers.
type CellRef struct {
	Row    int
	Col    int
	RowAbs bool
	ColAbs bool
}

// Colname returns the column name for a given column index (0-based).
// Example: Colname(0) returns "A", Colname(25) returns "Z", Colname(26) returns "AA"
func Colname(colx int) string {
	if colx < 0 {
		return ""
	}

	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	name := ""
	for {
		quot := colx / 26
		rem := colx % 26
		name = string(alphabet[rem]) + name
		if quot == 0 {
			break
		}
		colx = quot - 1
	}
	return name
}

// CellName returns the cell name for a given row and column (0-based).
// Example: CellName(0, 0) returns "A1", CellName(5, 7) returns "H6"
func CellName(rowx, colx int) string {
	return Colname(colx) + strconv.Itoa(rowx+1)
}

// CellNameAbs returns the absolute cell name.
// Example: CellNameAbs(5, 7) returns "$H$6"
func CellNameAbs(rowx, colx int) string {
	return fmt.Sprintf("$%s$%d", Colname(colx), rowx+1)
}

// ParseCellRef parses an A1 style reference such as "B3" or "$B$3".
func ParseCellRef(ref string) (CellRef, error) {
	var cell CellRef
	s := strings.ToUpper(strings.TrimSpace(ref))
	if strings.HasPrefix(s, "$") {
		cell.ColAbs = true
		s = s[1:]
	}

	i := 0
	col := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		col = col*26 + int(s[i]-'A'+1)
		i++
	}
	if i == 0 || i > 3 {
		return cell, fmt.Errorf("invalid cell reference %q", ref)
	}
	s = s[i:]
	if strings.HasPrefix(s, "$") {
		cell.RowAbs = true
		s = s[1:]
	}
	row, err := strconv.Atoi(s)
	if err != nil || row < 1 || strings.HasPrefix(s, "+") {
		return cell, fmt.Errorf("invalid cell reference %q", ref)
	}
	cell.Row = row - 1
	cell.Col = col - 1
	if cell.Row > XL_MAX_ROW || cell.Col > XL_MAX_COL {
		return cell, fmt.Errorf("cell reference %q is outside the BIFF8 grid", ref)
	}
	return cell, nil
}

// ParseCellRange parses "A1" or "A1:C4" into a CellRange. The two corners
// may be given in any order.
func ParseCellRange(ref string) (CellRange, error) {
	first, last, found := strings.Cut(ref, ":")
	a, err := ParseCellRef(first)
	if err != nil {
		return CellRange{}, err
	}
	b := a
	if found {
		if b, err = ParseCellRef(last); err != nil {
			return CellRange{}, err
		}
	}
	return CellRange{
		FirstRow: min(a.Row, b.Row),
		FirstCol: min(a.Col, b.Col),
		LastRow:  max(a.Row, b.Row),
		LastCol:  max(a.Col, b.Col),
	}, nil
}

// ParseCellRanges parses a list of ranges separated by spaces or commas,
// e.g. "B3:B10 D3:D10".
func ParseCellRanges(refs string) ([]CellRange, error) {
	fields := strings.FieldsFunc(refs, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, invalidParam("cells", "no cell range in %q", refs)
	}
	ranges := make([]CellRange, 0, len(fields))
	for _, f := range fields {
		r, err := ParseCellRange(f)
		if err != nil {
			return nil, &InvalidParameterError{Param: "cells", Message: err.Error(), Err: err}
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}
