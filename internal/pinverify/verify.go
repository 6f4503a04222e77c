// Package pinverify checks KRA PIN numbers against the registry format.
// A PIN is one letter (A for individuals, P for non-individuals), nine
// digits, and a trailing check letter, e.g. A001234567X.
package pinverify

import (
	"regexp"
	"strings"
)

var pinPattern = regexp.MustCompile(`^[AP]\d{9}[A-Z]$`)

type Result struct {
	PIN     string `json:"pin"`
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// Check validates a single PIN. Input is trimmed and upper-cased before
// matching so pasted lists survive sloppy formatting.
func Check(pin string) Result {
	normalized := strings.ToUpper(strings.TrimSpace(pin))
	if normalized == "" {
		return Result{PIN: pin, Valid: false, Message: "Empty PIN"}
	}
	if !pinPattern.MatchString(normalized) {
		return Result{PIN: normalized, Valid: false, Message: "Invalid PIN format"}
	}
	return Result{PIN: normalized, Valid: true, Message: "Valid PIN format"}
}

// CheckBulk parses a raw officer paste (PINs separated by commas or
// newlines) and validates each entry.
func CheckBulk(raw string) []Result {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})

	var out []Result
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			continue
		}
		out = append(out, Check(f))
	}
	return out
}
