package xlwt

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	jdnDelta = [2]int{2415080 - 61, 2416482 - 1}
)

var daysInMonth = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// XLDateError is the base type for all datetime-related errors.
type XLDateError struct {
	Message string
}

func (e *XLDateError) Error() string {
	return e.Message
}

// XLDateAmbiguous indicates the 1900 leap-year problem (datemode == 0 and the date is before 1900-03-01)
type XLDateAmbiguous struct {
	XLDateError
}

// XLDateBadDatemode indicates that datemode arg is neither 0 nor 1
type XLDateBadDatemode struct {
	XLDateError
}

// XLDateBadTuple indicates a bad tuple parameter
type XLDateBadTuple struct {
	XLDateError
}

// leap returns 1 if year is a leap year, 0 otherwise.
func leap(y int) int {
	if y%4 != 0 {
		return 0
	}
	if y%100 != 0 {
		return 1
	}
	if y%400 != 0 {
		return 0
	}
	return 1
}

// XldateFromDateTuple converts a date tuple to an Excel date number.
// (0, 0, 0) converts to 0.0, which lets time-only values through.
func XldateFromDateTuple(year, month, day int, datemode int) (float64, error) {
	if datemode != 0 && datemode != 1 {
		return 0.0, &XLDateBadDatemode{XLDateError{Message: fmt.Sprintf("Invalid datemode: %d", datemode)}}
	}

	if year == 0 && month == 0 && day == 0 {
		return 0.00, nil
	}

	if year < 1900 || year > 9999 {
		return 0.0, &XLDateBadTuple{XLDateError{Message: fmt.Sprintf("Invalid year: (%d, %d, %d)", year, month, day)}}
	}
	if month < 1 || month > 12 {
		return 0.0, &XLDateBadTuple{XLDateError{Message: fmt.Sprintf("Invalid month: (%d, %d, %d)", year, month, day)}}
	}
	maxDay := daysInMonth[month]
	if month == 2 && leap(year) == 1 {
		maxDay = 29
	}
	if day < 1 || day > maxDay {
		return 0.0, &XLDateBadTuple{XLDateError{Message: fmt.Sprintf("Invalid day: (%d, %d, %d)", year, month, day)}}
	}

	Yp := year + 4716
	M := month
	var Mp int
	if M <= 2 {
		Yp = Yp - 1
		Mp = M + 9
	} else {
		Mp = M - 3
	}
	jdn := (1461 * Yp / 4) + ((979*Mp + 16) / 32) + day - 1364 - (((Yp + 184) / 100) * 3 / 4)
	xldays := jdn - jdnDelta[datemode]
	if xldays <= 0 {
		return 0.0, &XLDateBadTuple{XLDateError{Message: fmt.Sprintf("Invalid (year, month, day): (%d, %d, %d)", year, month, day)}}
	}
	if xldays < 61 && datemode == 0 {
		return 0.0, &XLDateAmbiguous{XLDateError{Message: fmt.Sprintf("Before 1900-03-01: (%d, %d, %d)", year, month, day)}}
	}
	return float64(xldays), nil
}

// XldateFromTimeTuple converts a time tuple to an Excel date number.
// second may carry a fractional part.
func XldateFromTimeTuple(hour, minute int, second float64) (float64, error) {
	if hour < 0 || hour >= 24 || minute < 0 || minute >= 60 || second < 0 || second >= 60 {
		return 0.0, &XLDateBadTuple{XLDateError{Message: fmt.Sprintf("Invalid (hour, minute, second): (%d, %d, %g)", hour, minute, second)}}
	}
	return ((second/60.0+float64(minute))/60.0 + float64(hour)) / 24.0, nil
}

// XldateFromDatetimeTuple converts a datetime tuple to an Excel date number.
func XldateFromDatetimeTuple(year, month, day, hour, minute int, second float64, datemode int) (float64, error) {
	datePart, err := XldateFromDateTuple(year, month, day, datemode)
	if err != nil {
		return 0.0, err
	}
	timePart, err := XldateFromTimeTuple(hour, minute, second)
	if err != nil {
		return 0.0, err
	}
	return datePart + timePart, nil
}

// isoDateTime matches yyyy-mm-ddThh:mm:ss.sss, yyyy-mm-ddT and Thh:mm:ss.sss.
var isoDateTime = regexp.MustCompile(`^(?:(\d{4})-(\d{2})-(\d{2}))?T(?:(\d{2}):(\d{2})(?::(\d{2}(?:\.\d+)?))?)?$`)

// ConvertDateTime converts an ISO 8601 date/time string into an Excel serial
// number. It reports false if s is not in one of the accepted forms.
func ConvertDateTime(s string, datemode int) (float64, bool, error) {
	m := isoDateTime.FindStringSubmatch(s)
	if m == nil || (m[1] == "" && m[4] == "") {
		return 0, false, nil
	}

	var year, month, day, hour, minute int
	var second float64
	if m[1] != "" {
		year, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		day, _ = strconv.Atoi(m[3])
	}
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
		if m[6] != "" {
			second, _ = strconv.ParseFloat(m[6], 64)
		}
	}

	xldate, err := XldateFromDatetimeTuple(year, month, day, hour, minute, second, datemode)
	if err != nil {
		return 0, true, err
	}
	return xldate, true, nil
}

// XldateFromTime converts t, taken at face value in its own location, to an
// Excel serial number.
func XldateFromTime(t time.Time, datemode int) (float64, error) {
	second := float64(t.Second()) + float64(t.Nanosecond())/1e9
	return XldateFromDatetimeTuple(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), second, datemode)
}
