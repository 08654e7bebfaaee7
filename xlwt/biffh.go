package xlwt

import (
	"fmt"
)

// XLWTError represents an error that occurred while writing an Excel file.
type XLWTError struct {
	Message string
}

func (e *XLWTError) Error() string {
	return e.Message
}

// NewXLWTError creates a new XLWTError with the given message.
func NewXLWTError(format string, args ...interface{}) *XLWTError {
	return &XLWTError{Message: fmt.Sprintf(format, args...)}
}

// InvalidParameterError is returned when a data validation is declared
// with parameters that cannot be encoded.
type InvalidParameterError struct {
	// Param is the name of the offending parameter.
	Param string

	// Message describes what is wrong with it.
	Message string

	// Err is the underlying error, if any.
	Err error
}

func (e *InvalidParameterError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Message)
	}
	return "invalid parameter: " + e.Message
}

func (e *InvalidParameterError) Unwrap() error {
	return e.Err
}

func invalidParam(param, format string, args ...interface{}) *InvalidParameterError {
	return &InvalidParameterError{Param: param, Message: fmt.Sprintf(format, args...)}
}

// BIFF8 limits
const (
	XL_MAX_ROW = 65535
	XL_MAX_COL = 255

	XL_DV_TITLE_MAX   = 32
	XL_DV_MESSAGE_MAX = 255
)

// BIFF record type constants
const (
	XL_BOF         = 0x809
	XL_EOF         = 0x0a
	XL_CONDFMT     = 0x01B0
	XL_CF          = 0x01B1
	XL_DVAL        = 0x01B2
	XL_HLINK       = 0x01B8
	XL_DV          = 0x01BE
	XL_DIMENSION   = 0x200
	XL_MERGEDCELLS = 0xE5
	XL_NAME        = 0x18
	XL_NOTE        = 0x1c
	XL_OBJ         = 0x5D
	XL_SELECTION   = 0x1D
	XL_WINDOW2     = 0x023E
	XL_CONTINUE    = 0x3c
)

var recordNames = map[uint16]string{
	XL_BOF:         "BOF",
	XL_EOF:         "EOF",
	XL_CONDFMT:     "CONDFMT",
	XL_CF:          "CF",
	XL_DVAL:        "DVAL",
	XL_HLINK:       "HLINK",
	XL_DV:          "DV",
	XL_DIMENSION:   "DIMENSION",
	XL_MERGEDCELLS: "MERGEDCELLS",
	XL_NAME:        "NAME",
	XL_NOTE:        "NOTE",
	XL_OBJ:         "OBJ",
	XL_SELECTION:   "SELECTION",
	XL_WINDOW2:     "WINDOW2",
	XL_CONTINUE:    "CONTINUE",
}

// RecordName returns the name of a BIFF record type, or a hex placeholder
// for record types this package does not know.
func RecordName(code uint16) string {
	if name, ok := recordNames[code]; ok {
		return name
	}
	return fmt.Sprintf("<UNKNOWN 0x%04x>", code)
}

// ErrorCodeFromText maps Excel error literals to their BIFF codes.
var ErrorCodeFromText = map[string]byte{
	"#NULL!":  0x00, // Intersection of two cell ranges is empty
	"#DIV/0!": 0x07, // Division by zero
	"#VALUE!": 0x0F, // Wrong type of operand
	"#REF!":   0x17, // Illegal or deleted cell reference
	"#NAME?":  0x1D, // Wrong function or range name
	"#NUM!":   0x24, // Value range overflow
	"#N/A":    0x2A, // Argument or function not available
}
