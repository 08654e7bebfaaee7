package xlwt

import (
	"fmt"
	"io"
)

// Sheet collects the data validations of one worksheet and writes their
// records when the worksheet is saved.
//
// In the data validation functions, row and column indexes count from zero.
type Sheet struct {
	// Name is the name of the sheet.
	Name string

	// Datemode is the date system of the workbook, 0 for 1900 and 1 for 1904.
	Datemode int

	validations DataValidations
	tokenizer   Tokenizer
	logfile     io.Writer
	verbosity   int
}

// SheetOptions configures a Sheet.
type SheetOptions struct {
	// Tokenizer parses validation formulas. Defaults to a FormulaParser
	// without defined names.
	Tokenizer Tokenizer

	// Datemode is the date system of the workbook.
	Datemode int

	// Logfile receives trace output. Defaults to io.Discard.
	Logfile io.Writer

	// Verbosity is the trace level; 1 logs each record, 2 also dumps it.
	Verbosity int
}

// NewSheet creates a sheet with no data validations.
func NewSheet(name string, options *SheetOptions) *Sheet {
	if options == nil {
		options = &SheetOptions{}
	}
	s := &Sheet{
		Name:      name,
		Datemode:  options.Datemode,
		tokenizer: options.Tokenizer,
		logfile:   options.Logfile,
		verbosity: options.Verbosity,
	}
	if s.tokenizer == nil {
		s.tokenizer = NewFormulaParser(nil)
	}
	if s.logfile == nil {
		s.logfile = io.Discard
	}
	return s
}

// DataValidation adds a data validation for the cells in ref, one or more A1
// ranges separated by spaces or commas such as "B3:B10 D3". Ranges already
// in opts.Cells are kept after those of ref.
func (s *Sheet) DataValidation(ref string, opts DataValidationOptions) error {
	cells, err := ParseCellRanges(ref)
	if err != nil {
		return err
	}
	opts.Cells = append(cells, opts.Cells...)
	return s.addDataValidation(opts)
}

// DataValidationRange adds a data validation for a single block of cells.
func (s *Sheet) DataValidationRange(firstRow, firstCol, lastRow, lastCol int, opts DataValidationOptions) error {
	cell := CellRange{FirstRow: firstRow, FirstCol: firstCol, LastRow: lastRow, LastCol: lastCol}
	opts.Cells = append([]CellRange{cell}, opts.Cells...)
	return s.addDataValidation(opts)
}

func (s *Sheet) addDataValidation(opts DataValidationOptions) error {
	opts.Datemode = s.Datemode
	dv, err := NewDataValidation(opts)
	if err != nil {
		return err
	}
	s.validations.Add(dv)
	return nil
}

// DataValidations returns the sheet's validation set.
func (s *Sheet) DataValidations() *DataValidations {
	return &s.validations
}

// StoreDataValidations writes the DVAL and DV records of the sheet to w.
// All records are encoded before anything is written, so a formula error
// leaves w untouched.
func (s *Sheet) StoreDataValidations(w io.Writer) error {
	if s.validations.Len() == 0 {
		return nil
	}
	data, err := s.validations.Store(s.tokenizer)
	if err != nil {
		return fmt.Errorf("sheet %q: data validations: %w", s.Name, err)
	}

	if s.verbosity >= 1 {
		fmt.Fprintf(s.logfile, "sheet %q: %d data validations, %d bytes\n", s.Name, s.validations.Len(), len(data))
		records, err := ReadRecords(data)
		if err != nil {
			return err
		}
		for i, rec := range records {
			fmt.Fprintf(s.logfile, "  record %d: %s len=%d\n", i, RecordName(rec.Code), len(rec.Data))
			if s.verbosity >= 2 {
				HexCharDump(rec.Data, 0, len(rec.Data), 0, s.logfile, false)
			}
		}
	}

	_, err = w.Write(data)
	return err
}
