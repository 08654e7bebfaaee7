package xlwt

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"strings"
)

// FileFormatDescriptions describes the results of InspectFormat.
var FileFormatDescriptions = map[string]string{
	"biff": "BIFF record stream",
	"xls":  "Excel xls compound document",
	"xlsb": "Excel 2007 xlsb file",
	"xlsx": "Excel xlsx file",
	"ods":  "Openoffice.org ODS file",
	"zip":  "Unknown ZIP file",
	"":     "Unknown file type",
}

// XLS_SIGNATURE is the magic cookie that should appear in the first 8 bytes of an XLS file.
var XLS_SIGNATURE = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// ZIP_SIGNATURE is the magic cookie for ZIP files.
var ZIP_SIGNATURE = []byte("PK\x03\x04")

// InspectFormat guesses what content is. A stream whose first record has a
// known type and fits in the content is reported as "biff". The result can
// always be looked up in FileFormatDescriptions.
func InspectFormat(content []byte) string {
	if bytes.HasPrefix(content, XLS_SIGNATURE) {
		return "xls"
	}

	if bytes.HasPrefix(content, ZIP_SIGNATURE) {
		zf, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
		if err != nil {
			return "zip"
		}
		// some third party files use backslashes and lower case names
		componentNames := make(map[string]bool)
		for _, f := range zf.File {
			componentNames[strings.ToLower(strings.ReplaceAll(f.Name, "\\", "/"))] = true
		}
		switch {
		case componentNames["xl/workbook.xml"]:
			return "xlsx"
		case componentNames["xl/workbook.bin"]:
			return "xlsb"
		case componentNames["content.xml"]:
			return "ods"
		}
		return "zip"
	}

	if len(content) >= 4 {
		code := binary.LittleEndian.Uint16(content[0:2])
		length := int(binary.LittleEndian.Uint16(content[2:4]))
		if _, known := recordNames[code]; known && 4+length <= len(content) {
			return "biff"
		}
	}
	return ""
}
