// Package upc validates UPC-A and UPC-E product codes. Validation is
// advisory in the request path: a string that fails here is still used as a
// free-text search term, never rejected.
package upc

import (
	"errors"
	"fmt"
	"strings"
)

// Format of a validated code.
const (
	FormatUPCA = "UPC-A"
	FormatUPCE = "UPC-E"
)

var (
	ErrNotNumeric  = errors.New("upc must contain only digits")
	ErrBadLength   = errors.New("upc must be 8 (UPC-E) or 12 (UPC-A) digits")
	ErrBadChecksum = errors.New("upc checksum mismatch")
	ErrEmptyCode   = errors.New("upc is empty")
)

// Code is a validated UPC.
type Code struct {
	Value  string
	Format string
}

// Normalize strips whitespace and hyphens without validating.
func Normalize(raw string) string {
	replacer := strings.NewReplacer(" ", "", "-", "")
	return replacer.Replace(strings.TrimSpace(raw))
}

// Validate checks format and checksum of a UPC-A (12 digit) or UPC-E
// (8 digit) code.
func Validate(raw string) (Code, error) {
	cleaned := Normalize(raw)
	if cleaned == "" {
		return Code{}, ErrEmptyCode
	}

	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return Code{}, fmt.Errorf("%w: %q", ErrNotNumeric, raw)
		}
	}

	switch len(cleaned) {
	case 12:
		if !checksumOK(cleaned) {
			return Code{}, ErrBadChecksum
		}
		return Code{Value: cleaned, Format: FormatUPCA}, nil
	case 8:
		if !checksumOK(cleaned) {
			return Code{}, ErrBadChecksum
		}
		return Code{Value: cleaned, Format: FormatUPCE}, nil
	default:
		return Code{}, fmt.Errorf("%w: got %d", ErrBadLength, len(cleaned))
	}
}

// IsValid reports whether raw is a well-formed UPC.
func IsValid(raw string) bool {
	_, err := Validate(raw)
	return err == nil
}

// checksumOK verifies the standard modulo-10 check digit: digits at odd
// positions (1st, 3rd, ...) weighted 3, even positions weighted 1, check
// digit is the last digit.
func checksumOK(code string) bool {
	var oddSum, evenSum int
	body := code[:len(code)-1]
	for i := 0; i < len(body); i++ {
		d := int(body[i] - '0')
		if i%2 == 0 {
			oddSum += d
		} else {
			evenSum += d
		}
	}

	total := oddSum*3 + evenSum
	check := (10 - total%10) % 10
	return check == int(code[len(code)-1]-'0')
}
