// Package cells classifies the text tokens found in financial statement table cells
// and normalizes table rows into typed tokens.
package cells

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind is the closed set of token classifications.
type Kind int

const (
	KindLabel Kind = iota
	KindDate
	KindNumber
)

// DateLabel is the synthetic label inserted before the first date fragment of a row.
const DateLabel = "Date"

func (k Kind) String() string {
	switch k {
	case KindLabel:
		return "label"
	case KindDate:
		return "date"
	case KindNumber:
		return "number"
	}
	panic(fmt.Sprintf("cells: unknown token kind %d", int(k)))
}

// Token is one classified cell value.
// Text always holds the source text; Value and Integral are only meaningful for KindNumber.
type Token struct {
	Kind     Kind
	Text     string
	Value    decimal.Decimal
	Integral bool
}

// Label builds a label token.
func Label(text string) Token {
	return Token{Kind: KindLabel, Text: text}
}

// DateFragment builds a date token.
func DateFragment(text string) Token {
	return Token{Kind: KindDate, Text: text}
}

// Number builds a numeric token from an already parsed value.
func Number(text string, value decimal.Decimal, integral bool) Token {
	return Token{Kind: KindNumber, Text: text, Value: value, Integral: integral}
}

// IsDateMarker reports whether the token is the synthetic "Date" label.
func (t Token) IsDateMarker() bool {
	return t.Kind == KindLabel && t.Text == DateLabel
}

// String renders the token as it should appear as a row label or column header.
func (t Token) String() string {
	switch t.Kind {
	case KindLabel, KindDate:
		return t.Text
	case KindNumber:
		return t.Value.String()
	}
	panic(fmt.Sprintf("cells: unknown token kind %d", int(t.Kind)))
}

type tokenJSON struct {
	Kind  string           `json:"kind"`
	Text  string           `json:"text"`
	Value *decimal.Decimal `json:"value,omitempty"`
}

// MarshalJSON emits {"kind","text","value"}; value only for numbers.
func (t Token) MarshalJSON() ([]byte, error) {
	out := tokenJSON{Kind: t.Kind.String(), Text: t.Text}
	if t.Kind == KindNumber {
		v := t.Value
		out.Value = &v
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (t *Token) UnmarshalJSON(data []byte) error {
	var in tokenJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	switch in.Kind {
	case "label":
		*t = Label(in.Text)
	case "date":
		*t = DateFragment(in.Text)
	case "number":
		if in.Value == nil {
			return fmt.Errorf("number token %q has no value", in.Text)
		}
		*t = Number(in.Text, *in.Value, in.Value.Exponent() >= 0)
	default:
		return fmt.Errorf("unknown token kind %q", in.Kind)
	}
	return nil
}
