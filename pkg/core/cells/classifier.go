package cells

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CLASSIFICATION TABLES
// =============================================================================

var months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// numberCharacters is every character a numeric cell may contain.
const numberCharacters = "0123456789,().-"

// currencySymbols are dropped from rows before classification.
var currencySymbols = map[string]bool{
	"$": true,
	"€": true,
	"£": true,
	"¥": true,
}

// ErrMalformedNumber is returned for numeric-looking tokens that fit none of the
// four accepted notations.
var ErrMalformedNumber = errors.New("malformed number")

// MalformedNumberError carries the offending token.
type MalformedNumberError struct {
	Text string
}

func (e *MalformedNumberError) Error() string {
	return fmt.Sprintf("malformed number %q", e.Text)
}

func (e *MalformedNumberError) Unwrap() error {
	return ErrMalformedNumber
}

// =============================================================================
// PREDICATES
// =============================================================================

// IsDateFragment reports whether text mentions an English month name.
// Matching is a case-sensitive substring test with no date grammar behind it.
func IsDateFragment(text string) bool {
	for _, month := range months {
		if strings.Contains(text, month) {
			return true
		}
	}
	return false
}

// IsNumericToken reports whether every character of text is a number character.
// The empty string is vacuously numeric; callers drop empty tokens first.
func IsNumericToken(text string) bool {
	for _, r := range text {
		if !strings.ContainsRune(numberCharacters, r) {
			return false
		}
	}
	return true
}

// IsCurrencySymbol reports whether text is a bare currency symbol.
func IsCurrencySymbol(text string) bool {
	return currencySymbols[text]
}

// =============================================================================
// CONVERSION
// =============================================================================

// ParseNumericToken converts a numeric token into a signed value.
//
//	1,234 or 123                   -> positive integer
//	(1,234) or (123) or -123       -> negative integer
//	1,234.1 or 123.4               -> positive decimal
//	(1,234.1) or (123.1) or -123.4 -> negative decimal
//
// integral is true for the two integer notations. Anything else, including a lone
// parenthesis or a token with no digits left after stripping, is a *MalformedNumberError.
func ParseNumericToken(text string) (value decimal.Decimal, integral bool, err error) {
	if text == "" || !IsNumericToken(text) {
		return decimal.Zero, false, &MalformedNumberError{Text: text}
	}

	hasOpen := strings.Contains(text, "(")
	hasClose := strings.Contains(text, ")")
	hasHyphen := strings.Contains(text, "-")
	hasPeriod := strings.Contains(text, ".")

	plain := !hasOpen && !hasClose && !hasHyphen
	negative := (hasOpen && hasClose) || hasHyphen

	switch {
	case plain && !hasPeriod:
		value, err = parseMagnitude(text, true)
		return value, true, err
	case negative && !hasPeriod:
		value, err = parseMagnitude(text, true)
		return value.Neg(), true, err
	case plain && hasPeriod:
		value, err = parseMagnitude(text, false)
		return value, false, err
	case negative && hasPeriod:
		value, err = parseMagnitude(text, false)
		return value.Neg(), false, err
	}

	return decimal.Zero, false, &MalformedNumberError{Text: text}
}

// parseMagnitude strips separators and sign notation and parses what remains.
func parseMagnitude(text string, integral bool) (decimal.Decimal, error) {
	digits := strings.NewReplacer(",", "", "(", "", ")", "", "-", "").Replace(text)
	if digits == "" || digits == "." {
		return decimal.Zero, &MalformedNumberError{Text: text}
	}
	if integral && strings.Contains(digits, ".") {
		return decimal.Zero, &MalformedNumberError{Text: text}
	}

	value, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero, &MalformedNumberError{Text: text}
	}
	return value, nil
}
