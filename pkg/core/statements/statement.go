// Package statements reconstructs the five primary financial statements of a filing.
package statements

import (
	"fmt"
	"strings"
)

// Statement identifies one of the fixed financial statements.
type Statement int

const (
	Operations Statement = iota
	BalanceSheet
	ComprehensiveIncome
	ShareholdersEquity
	CashFlows
)

// All lists the statements in reconstruction order.
var All = []Statement{Operations, BalanceSheet, ComprehensiveIncome, ShareholdersEquity, CashFlows}

// Title is the canonical heading of the statement as printed in 10-K filings.
func (s Statement) Title() string {
	switch s {
	case Operations:
		return "CONSOLIDATED STATEMENTS OF OPERATIONS"
	case BalanceSheet:
		return "CONSOLIDATED BALANCE SHEETS"
	case ComprehensiveIncome:
		return "CONSOLIDATED STATEMENTS OF COMPREHENSIVE INCOME"
	case ShareholdersEquity:
		return "CONSOLIDATED STATEMENTS OF SHAREHOLDERS’ EQUITY"
	case CashFlows:
		return "CONSOLIDATED STATEMENTS OF CASH FLOWS"
	}
	panic(fmt.Sprintf("statements: unknown statement %d", int(s)))
}

// Key is the short machine name used in configuration, JSON and storage.
func (s Statement) Key() string {
	switch s {
	case Operations:
		return "operations"
	case BalanceSheet:
		return "balance_sheet"
	case ComprehensiveIncome:
		return "comprehensive_income"
	case ShareholdersEquity:
		return "shareholders_equity"
	case CashFlows:
		return "cash_flows"
	}
	panic(fmt.Sprintf("statements: unknown statement %d", int(s)))
}

func (s Statement) String() string {
	return s.Key()
}

// MarshalText lets Statement key JSON maps.
func (s Statement) MarshalText() ([]byte, error) {
	return []byte(s.Key()), nil
}

func (s *Statement) UnmarshalText(text []byte) error {
	parsed, err := ParseStatement(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatement accepts a key ("cash_flows") or a canonical title.
func ParseStatement(s string) (Statement, error) {
	s = strings.TrimSpace(s)
	for _, st := range All {
		if strings.EqualFold(s, st.Key()) || s == st.Title() {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown statement %q", s)
}

// defaultAliases are heading variants seen across filers. The canonical title is
// always searched first.
var defaultAliases = map[Statement][]string{
	ShareholdersEquity: {
		"CONSOLIDATED STATEMENTS OF SHAREHOLDERS' EQUITY",
		"CONSOLIDATED STATEMENTS OF STOCKHOLDERS’ EQUITY",
		"CONSOLIDATED STATEMENTS OF STOCKHOLDERS' EQUITY",
	},
}

// Headings maps each statement to the headings searched for it, canonical title first.
type Headings map[Statement][]string

// DefaultHeadings returns the canonical titles plus the built-in aliases.
func DefaultHeadings() Headings {
	h := make(Headings, len(All))
	for _, st := range All {
		h[st] = append([]string{st.Title()}, defaultAliases[st]...)
	}
	return h
}

// With returns a copy extended by extra aliases keyed by statement key.
func (h Headings) With(extra map[string][]string) (Headings, error) {
	out := make(Headings, len(h))
	for st, list := range h {
		out[st] = append([]string(nil), list...)
	}
	for key, aliases := range extra {
		st, err := ParseStatement(key)
		if err != nil {
			return nil, err
		}
		for _, a := range aliases {
			if !contains(out[st], a) {
				out[st] = append(out[st], a)
			}
		}
	}
	return out, nil
}

func (h Headings) all() []string {
	var out []string
	for _, st := range All {
		out = append(out, h[st]...)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
