package cells

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Row is one normalized table row.
type Row []Token

// Label returns the text of the row's first token, the row's line-item label.
func (r Row) Label() string {
	if len(r) == 0 {
		return ""
	}
	return r[0].String()
}

// IsDateRow reports whether the row is indexed by the synthetic Date label.
func (r Row) IsDateRow() bool {
	return len(r) > 0 && r[0].IsDateMarker()
}

// MalformedPolicy decides what happens to a numeric-looking token that cannot be converted.
type MalformedPolicy int

const (
	// MalformedFail surfaces the *MalformedNumberError to the caller.
	MalformedFail MalformedPolicy = iota
	// MalformedLabel keeps the token as an opaque label.
	MalformedLabel
)

// ParseMalformedPolicy maps the configuration spelling onto a policy.
func ParseMalformedPolicy(s string) (MalformedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail":
		return MalformedFail, nil
	case "label":
		return MalformedLabel, nil
	}
	return MalformedFail, fmt.Errorf("unknown malformed number policy %q", s)
}

func (p MalformedPolicy) String() string {
	if p == MalformedLabel {
		return "label"
	}
	return "fail"
}

// Normalizer turns raw cell text into typed rows.
type Normalizer struct {
	Policy MalformedPolicy
	logger *slog.Logger
}

// NewNormalizer creates a normalizer; a nil logger discards output.
func NewNormalizer(policy MalformedPolicy, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Normalizer{Policy: policy, logger: logger}
}

// Normalize classifies the tokens of one table row.
//
// Blank and currency-symbol tokens are dropped. The first date fragment is preceded by a
// single synthetic Date label, however many date fragments follow. Numeric tokens are
// converted, everything else is kept as a label. Token order is preserved.
func (n *Normalizer) Normalize(tokens []string) (Row, error) {
	row := make(Row, 0, len(tokens)+1)
	dated := false

	for _, text := range tokens {
		if text == "" || IsCurrencySymbol(text) {
			continue
		}

		switch {
		case IsDateFragment(text):
			if !dated {
				row = append(row, Label(DateLabel))
				dated = true
			}
			row = append(row, DateFragment(text))

		case IsNumericToken(text):
			value, integral, err := ParseNumericToken(text)
			if err != nil {
				if n.Policy == MalformedLabel && errors.Is(err, ErrMalformedNumber) {
					n.logger.Warn("[Normalizer] keeping malformed number as label", "text", text)
					row = append(row, Label(text))
					continue
				}
				return nil, err
			}
			row = append(row, Number(text, value, integral))

		default:
			row = append(row, Label(text))
		}
	}

	return row, nil
}

// Normalize classifies one row with the default (fail on malformed numbers) policy.
func Normalize(tokens []string) (Row, error) {
	return NewNormalizer(MalformedFail, nil).Normalize(tokens)
}
