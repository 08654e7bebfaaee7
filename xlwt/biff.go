package xlwt

import (
	"encoding/binary"
	"fmt"
	"unicode"
	"unicode/utf8"

	xunicode "golang.org/x/text/encoding/unicode"
)

var utf16le = xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM)

// isASCII reports whether every byte of s is 7-bit ASCII.
func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// encodeUTF16LE transcodes s to UTF-16-LE. Invalid UTF-8 sequences, such as
// a character cut in half by truncation, become U+FFFD.
func encodeUTF16LE(s string) ([]byte, error) {
	b, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("failed to encode UTF-16-LE: %w", err)
	}
	return b, nil
}

// jlength counts s the way the legacy writer did: every non-ASCII word
// character counts as one unit, everything else by its UTF-8 byte length.
func jlength(s string) int {
	n := 0
	for i := 0; i < len(s); {
		r, width := utf8.DecodeRuneInString(s[i:])
		if r >= utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)) {
			n++
		} else {
			n += width
		}
		i += width
	}
	return n
}

// PackDVString packs a caption or message string of a DV record.
//
// Captions are limited to 32 bytes and messages to 255; longer strings are
// truncated on the byte level. The empty string is stored as a single NUL.
// Layout: length (2 bytes), encoding flag (1 byte), payload.
func PackDVString(s string, maxLength int) ([]byte, error) {
	if s == "" {
		s = "\x00"
	}
	if len(s) > maxLength {
		s = s[:maxLength]
	}

	strLength := len(s)
	encoding := byte(0)
	payload := []byte(s)

	if !isASCII(s) {
		strLength = jlength(s)
		wide, err := encodeUTF16LE(s)
		if err != nil {
			return nil, err
		}
		payload = wide
		encoding = 1
	}

	out := make([]byte, 0, 3+len(payload))
	out = binary.LittleEndian.AppendUint16(out, uint16(strLength))
	out = append(out, encoding)
	return append(out, payload...), nil
}

// PackRecord frames data as a BIFF record: code (2 bytes), length (2 bytes), data.
func PackRecord(code uint16, data []byte) ([]byte, error) {
	if len(data) > 0xFFFF {
		return nil, NewXLWTError("record 0x%04x too long: %d bytes", code, len(data))
	}
	out := make([]byte, 0, 4+len(data))
	out = binary.LittleEndian.AppendUint16(out, code)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(data)))
	return append(out, data...), nil
}
