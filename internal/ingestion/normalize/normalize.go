// Package normalize converts the field formats found in marketplace CSV
// exports into the canonical forms stored by the pipeline. Unrecognized
// input is passed through unchanged so callers can decide whether a field
// is mandatory.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

var (
	isoDateRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	slashDateRe = regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})$`)
	usDateRe    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	jpDateRe    = regexp.MustCompile(`^(\d{4})年(\d{1,2})月(\d{1,2})日$`)
	timeRe      = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
)

// Fold converts full-width digits, Latin letters and punctuation to their
// half-width forms and trims surrounding whitespace. Every comparison and
// parse in the pipeline runs on folded text.
func Fold(s string) string {
	return strings.TrimSpace(width.Fold.String(s))
}

// Date converts a date in any of the supported encodings to YYYY-MM-DD.
// Supported encodings are YYYY-MM-DD, YYYY/M/D, M/D/YYYY and the Japanese
// YYYY年M月D日 form, all with or without zero padding and full-width digits.
func Date(raw string) string {
	s := Fold(raw)
	if isoDateRe.MatchString(s) {
		return s
	}
	if m := slashDateRe.FindStringSubmatch(s); m != nil {
		return formatDate(m[1], m[2], m[3], raw)
	}
	if m := usDateRe.FindStringSubmatch(s); m != nil {
		return formatDate(m[3], m[1], m[2], raw)
	}
	if m := jpDateRe.FindStringSubmatch(s); m != nil {
		return formatDate(m[1], m[2], m[3], raw)
	}
	return raw
}

func formatDate(year, month, day, raw string) string {
	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return raw
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

// IsDate reports whether s is a canonical YYYY-MM-DD date.
func IsDate(s string) bool {
	return isoDateRe.MatchString(s)
}

// Time pads H:MM to HH:MM. Values outside the 24-hour clock and anything
// not shaped like a clock time pass through unchanged.
func Time(raw string) string {
	s := Fold(raw)
	m := timeRe.FindStringSubmatch(s)
	if m == nil {
		return raw
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	if h > 23 || min > 59 {
		return raw
	}
	return fmt.Sprintf("%02d:%02d", h, min)
}

var amountStrip = strings.NewReplacer("¥", "", "円", "", ",", "", " ", "", " ", "")

// Amount parses a yen amount, tolerating currency symbols, thousands
// separators, surrounding whitespace and full-width digits. Empty and
// non-numeric input parse to zero.
func Amount(raw string) int64 {
	s := amountStrip.Replace(Fold(raw))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// DurationMinutes computes the minutes between two clock times, assuming
// a crossing into the next day when end is before start. It returns zero
// when either side is missing or malformed.
func DurationMinutes(start, end string) int {
	s, ok := clockMinutes(start)
	if !ok {
		return 0
	}
	e, ok := clockMinutes(end)
	if !ok {
		return 0
	}
	d := e - s
	if d < 0 {
		d += 24 * 60
	}
	return d
}

func clockMinutes(raw string) (int, bool) {
	m := timeRe.FindStringSubmatch(Fold(raw))
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	if h > 23 || min > 59 {
		return 0, false
	}
	return h*60 + min, true
}
