// Package cpf validates Brazilian taxpayer identifiers (CPF).
//
// A CPF is handled as a string of exactly 11 ASCII digits. Punctuated forms
// such as "111.444.777-35" are rejected; callers must send digits only.
package cpf

import (
	"errors"
)

// Length is the number of digits in a CPF.
const Length = 11

// degenerate is structurally valid and passes the modulo-11 rule, but is never issued.
const degenerate = "00000000000"

// Validation errors.
var (
	ErrInvalidFormat      = errors.New("cpf must be exactly 11 decimal digits")
	ErrInvalidCheckDigits = errors.New("cpf check digits do not match")
)

// IsValid reports whether candidate is a well-formed CPF with correct check digits.
func IsValid(candidate string) bool {
	return Validate(candidate) == nil
}

// Validate checks the structure and both check digits of candidate.
// It returns ErrInvalidFormat when candidate is not 11 digits and
// ErrInvalidCheckDigits when the digits fail the modulo-11 rule.
func Validate(candidate string) error {
	if !wellFormed(candidate) {
		return ErrInvalidFormat
	}
	if candidate == degenerate {
		return ErrInvalidCheckDigits
	}

	if checkDigit(candidate[:9], 10) != digit(candidate, 9) {
		return ErrInvalidCheckDigits
	}
	if checkDigit(candidate[:10], 11) != digit(candidate, 10) {
		return ErrInvalidCheckDigits
	}

	return nil
}

// checkDigit computes the modulo-11 verifier for prefix. The first digit of
// prefix is weighted topWeight and each following digit one less.
func checkDigit(prefix string, topWeight int) int {
	sum := 0
	for i := 0; i < len(prefix); i++ {
		sum += digit(prefix, i) * (topWeight - i)
	}

	remainder := (sum * 10) % 11
	if remainder == 10 || remainder == 11 {
		remainder = 0
	}
	return remainder
}

// digit returns the numeric value of s[i]. s must already be well formed.
func digit(s string, i int) int {
	return int(s[i] - '0')
}

func wellFormed(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Mask renders a CPF for logs, keeping the first three and the two check
// digits: "11144477735" becomes "111.***.***-35". Input that is not 11
// digits masks to "***" so malformed values never reach the logs verbatim.
func Mask(s string) string {
	if !wellFormed(s) {
		return "***"
	}
	return s[:3] + ".***.***-" + s[9:]
}
