package cells

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestIsDateFragment(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"Three Months Ended March 31, 2023", true},
		{"September 28, 2024", true},
		{"Total Assets", false},
		{"march 31, 2023", false}, // case-sensitive
		{"Mayfield Holdings", true},
		{"", false},
	}

	for _, tc := range tests {
		if got := IsDateFragment(tc.input); got != tc.expected {
			t.Errorf("Input %q: expected %v, got %v", tc.input, tc.expected, got)
		}
	}
}

func TestIsNumericToken(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"12,345", true},
		{"(1,234)", true},
		{"-123", true},
		{"1,234.5", true},
		{"", true},
		{"$1,234", false},
		{"N/A", false},
		{"12 345", false},
		{"—", false},
	}

	for _, tc := range tests {
		if got := IsNumericToken(tc.input); got != tc.expected {
			t.Errorf("Input %q: expected %v, got %v", tc.input, tc.expected, got)
		}
	}
}

func TestParseNumericToken(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		integral bool
	}{
		{"12,345", "12345", true},
		{"123", "123", true},
		{"0", "0", true},
		{"(1,234)", "-1234", true},
		{"(45)", "-45", true},
		{"-123", "-123", true},
		{"1,234.5", "1234.5", false},
		{"(123.4)", "-123.4", false},
		{"-123.4", "-123.4", false},
		{"1,234,567,890,123", "1234567890123", true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			value, integral, err := ParseNumericToken(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !value.Equal(decimal.RequireFromString(tc.expected)) {
				t.Errorf("expected %s, got %s", tc.expected, value)
			}
			if integral != tc.integral {
				t.Errorf("expected integral=%v, got %v", tc.integral, integral)
			}
		})
	}
}

func TestParseNumericToken_Malformed(t *testing.T) {
	inputs := []string{
		"(123",  // stray open paren
		"123)",  // stray close paren
		"-",     // no digits
		"(,)",   // no digits
		".",     // no digits
		"1.2.3", // two periods
		"",      // empty
		"$12",   // not a numeric token
	}

	for _, input := range inputs {
		_, _, err := ParseNumericToken(input)
		if err == nil {
			t.Errorf("Input %q: expected error, got nil", input)
			continue
		}
		if !errors.Is(err, ErrMalformedNumber) {
			t.Errorf("Input %q: expected ErrMalformedNumber, got %v", input, err)
		}
		var mne *MalformedNumberError
		if !errors.As(err, &mne) || mne.Text != input {
			t.Errorf("Input %q: expected MalformedNumberError carrying the token, got %v", input, err)
		}
	}
}

func TestParseNumericToken_SignSymmetry(t *testing.T) {
	magnitudes := []string{"1", "12", "1,234", "98,765,432", "1,234.5", "0.25"}

	for _, m := range magnitudes {
		pos, _, err := ParseNumericToken(m)
		if err != nil {
			t.Fatalf("%q: %v", m, err)
		}
		for _, neg := range []string{"(" + m + ")", "-" + m} {
			v, _, err := ParseNumericToken(neg)
			if err != nil {
				t.Fatalf("%q: %v", neg, err)
			}
			if !v.Equal(pos.Neg()) {
				t.Errorf("%q: expected %s, got %s", neg, pos.Neg(), v)
			}
		}
	}
}
