// Package numbering formats, parses and normalizes document identifiers.
//
// Master documents are numbered MD-000001, MD-000002, ... from a database
// counter; sub-documents carry a caller-chosen SUB-NNN that is unique only
// within its parent document.
package numbering

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	DocumentPrefix    = "MD-"
	SubDocumentPrefix = "SUB-"

	documentDigits    = 6
	subDocumentDigits = 3
)

var (
	ErrSubDocumentNoRequired = errors.New("sub document number is required")
	ErrInvalidSubDocumentNo  = errors.New("sub document number must contain at least one digit")
)

// FormatDocumentNo renders a sequence value as MD-NNNNNN.
func FormatDocumentNo(seq int64) string {
	return fmt.Sprintf("%s%0*d", DocumentPrefix, documentDigits, seq)
}

// ParseDocumentNo extracts the sequence from an MD- identifier.
func ParseDocumentNo(documentNo string) (int64, bool) {
	raw := strings.TrimPrefix(documentNo, DocumentPrefix)
	seq, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}

// MaxDocumentSeq returns the highest sequence among values, and the values
// that could not be parsed. It is only used to seed the counter from rows
// written before the counter existed.
func MaxDocumentSeq(values []string) (int64, []string) {
	var max int64
	var invalid []string
	for _, v := range values {
		seq, ok := ParseDocumentNo(v)
		if !ok {
			invalid = append(invalid, v)
			continue
		}
		if seq > max {
			max = seq
		}
	}
	return max, invalid
}

// NormalizeSubDocumentNo turns caller input into the canonical SUB-NNN form.
// Input already carrying the prefix is kept verbatim; otherwise every
// non-digit is dropped and the digits are left-padded to three places.
// Input with no digits at all is rejected.
func NormalizeSubDocumentNo(input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", ErrSubDocumentNoRequired
	}
	if strings.HasPrefix(input, SubDocumentPrefix) {
		return input, nil
	}

	digits := digitsOf(input)
	if digits == "" {
		return "", ErrInvalidSubDocumentNo
	}
	return SubDocumentPrefix + padLeft(digits, subDocumentDigits), nil
}

// NextSubDocumentNo suggests the number after the highest numeric suffix in existing.
func NextSubDocumentNo(existing []string) string {
	var max int64
	for _, no := range existing {
		digits := digitsOf(strings.TrimPrefix(no, SubDocumentPrefix))
		if digits == "" {
			continue
		}
		if n, err := strconv.ParseInt(digits, 10, 64); err == nil && n > max {
			max = n
		}
	}
	return SubDocumentPrefix + padLeft(strconv.FormatInt(max+1, 10), subDocumentDigits)
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
