package xlwt

import (
	"encoding/binary"
)

// DataValidations is the ordered set of data validations of one worksheet.
// The order rules are added in is the order their DV records are written.
type DataValidations struct {
	list []*DataValidation
}

// Add appends a validation to the set.
func (d *DataValidations) Add(dv *DataValidation) {
	d.list = append(d.list, dv)
}

// Len returns the number of validations in the set.
func (d *DataValidations) Len() int {
	return len(d.list)
}

// At returns the i-th validation.
func (d *DataValidations) At(i int) *DataValidation {
	return d.list[i]
}

// CountDVRecord returns the DVAL record holding the number of DV records to
// follow, or nil if the set is empty.
func (d *DataValidations) CountDVRecord() []byte {
	if len(d.list) == 0 {
		return nil
	}
	return dvalRecord(0xFFFFFFFF, uint32(len(d.list)))
}

// dvalRecord packs the DVAL record. objID -1 (0xFFFFFFFF) means no drop-down
// object is associated with the set.
func dvalRecord(objID, dvCount uint32) []byte {
	const (
		flags  = 0x0004 // Option flags
		xCoord = 0      // X coord of input box
		yCoord = 0      // Y coord of input box
	)

	out := make([]byte, 0, 22)
	out = binary.LittleEndian.AppendUint16(out, XL_DVAL)
	out = binary.LittleEndian.AppendUint16(out, 0x0012)
	out = binary.LittleEndian.AppendUint16(out, flags)
	out = binary.LittleEndian.AppendUint32(out, xCoord)
	out = binary.LittleEndian.AppendUint32(out, yCoord)
	out = binary.LittleEndian.AppendUint32(out, objID)
	return binary.LittleEndian.AppendUint32(out, dvCount)
}

// Store returns the DVAL record followed by one DV record per validation.
// Nothing is returned if any validation fails to encode.
func (d *DataValidations) Store(tok Tokenizer) ([]byte, error) {
	out := d.CountDVRecord()
	for _, dv := range d.list {
		rec, err := dv.Record(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, rec...)
	}
	return out, nil
}
