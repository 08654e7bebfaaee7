package xlwt

import (
	"encoding/binary"
)

// Record is one BIFF record of a record stream.
type Record struct {
	Code uint16
	Data []byte
}

// ReadRecords splits a BIFF record stream into its records.
func ReadRecords(stream []byte) ([]Record, error) {
	var records []Record
	position := 0
	for position < len(stream) {
		code, data, next, err := recordParts(stream, position)
		if err != nil {
			return records, err
		}
		records = append(records, Record{Code: code, Data: data})
		position = next
	}
	return records, nil
}

// recordParts reads the record starting at position and returns the offset
// of the next one.
func recordParts(stream []byte, position int) (uint16, []byte, int, error) {
	if position+4 > len(stream) {
		return 0, nil, position, NewXLWTError("truncated record header at offset %d", position)
	}
	code := binary.LittleEndian.Uint16(stream[position : position+2])
	length := int(binary.LittleEndian.Uint16(stream[position+2 : position+4]))
	position += 4
	if position+length > len(stream) {
		return code, nil, position, NewXLWTError("record %s at offset %d wants %d bytes, %d left",
			RecordName(code), position-4, length, len(stream)-position)
	}
	return code, stream[position : position+length], position + length, nil
}
