package xlwt

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// HexCharDump writes dlen bytes of data starting at ofs as rows of hex and
// printable characters. NUL shows as '~' and other unprintables as '?'.
func HexCharDump(data []byte, ofs, dlen, base int, w io.Writer, unnumbered bool) {
	endpos := min(ofs+dlen, len(data))
	pos := ofs
	for pos < endpos {
		endsub := min(pos+16, endpos)
		sub := data[pos:endsub]

		var hexd, chard strings.Builder
		for _, c := range sub {
			fmt.Fprintf(&hexd, "%02x ", c)
			switch {
			case c == 0:
				chard.WriteByte('~')
			case c < ' ' || c > '~':
				chard.WriteByte('?')
			default:
				chard.WriteByte(c)
			}
		}

		prefix := ""
		if !unnumbered {
			prefix = fmt.Sprintf("%5d: ", base+pos-ofs)
		}
		fmt.Fprintf(w, "%s     %-48s %s\n", prefix, hexd.String(), chard.String())
		pos = endsub
	}
}

// Dump writes every record of a BIFF record stream in char & hex format.
//
// unnumbered: If true, omit offsets (for meaningful diffs).
func Dump(stream []byte, w io.Writer, unnumbered bool) error {
	position := 0
	for position < len(stream) {
		code, data, next, err := recordParts(stream, position)
		if err != nil {
			return err
		}
		if unnumbered {
			fmt.Fprintf(w, "%04x %s len = %04x (%d)\n", code, RecordName(code), len(data), len(data))
		} else {
			fmt.Fprintf(w, "%8d: %04x %s len = %04x (%d)\n", position, code, RecordName(code), len(data), len(data))
		}
		HexCharDump(data, 0, len(data), position+4, w, unnumbered)
		position = next
	}
	return nil
}

// CountRecords summarises a record stream as sorted "name count" lines.
func CountRecords(stream []byte, w io.Writer) error {
	records, err := ReadRecords(stream)
	if err != nil {
		return err
	}
	counts := make(map[string]int)
	for _, rec := range records {
		counts[RecordName(rec.Code)]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%8d %s\n", counts[name], name)
	}
	return nil
}
