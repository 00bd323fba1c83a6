package ingest

import (
	"math"
	"strings"
	"unicode/utf8"
)

type SkipReason string

const (
	SkipMissingRequired         SkipReason = "missing_required"
	SkipAgeOutOfRange           SkipReason = "age_out_of_range"
	SkipIdentifierLengthInvalid SkipReason = "identifier_length_invalid"
)

// ValidateRow checks a normalized row. The first failing check decides the
// reason. An age with no leading integer is let through.
func ValidateRow(row map[string]string) (SkipReason, bool) {
	for _, name := range RequiredFields {
		if _, ok := row[name]; !ok {
			return SkipMissingRequired, false
		}
	}

	if age, ok := leadingInt(row[FieldAge]); ok {
		if age < MinAge || age > MaxAge {
			return SkipAgeOutOfRange, false
		}
	}

	n := utf8.RuneCountInString(row[FieldEpicNo])
	if n < MinEpicLength || n > MaxEpicLength {
		return SkipIdentifierLengthInvalid, false
	}

	return "", true
}

// leadingInt reads an optional sign and the decimal digits that follow it,
// ignoring anything after them, so "15.0" is 15 and "150 years" is 150.
// Values too large for an int saturate.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)

	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}

	n, digits := 0, 0
	for ; digits < len(s) && s[digits] >= '0' && s[digits] <= '9'; digits++ {
		d := int(s[digits] - '0')
		if n > (math.MaxInt-d)/10 {
			n = math.MaxInt
			continue
		}
		n = n*10 + d
	}
	if digits == 0 {
		return 0, false
	}

	if negative {
		return -n, true
	}
	return n, true
}
