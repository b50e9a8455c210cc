package tables

import (
	"encoding/json"

	"financial_statements/pkg/core/cells"

	"github.com/shopspring/decimal"
)

// Cell is one value of a statement table; Present is false for missing values.
type Cell struct {
	Token   cells.Token
	Present bool
}

// MarshalJSON renders missing cells as null.
func (c Cell) MarshalJSON() ([]byte, error) {
	if !c.Present {
		return []byte("null"), nil
	}
	return json.Marshal(c.Token)
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Cell{}
		return nil
	}
	if err := json.Unmarshal(data, &c.Token); err != nil {
		return err
	}
	c.Present = true
	return nil
}

// LineItem is one labeled row; Cells line up with StatementTable.Periods.
type LineItem struct {
	Label string `json:"label"`
	Cells []Cell `json:"cells"`
}

// StatementTable is a reconstructed statement: line items by reporting period.
// Rows keep document order and duplicate labels are kept as separate rows.
type StatementTable struct {
	Periods []string   `json:"periods"`
	Rows    []LineItem `json:"rows"`
}

// PeriodIndex returns the column of period, or -1.
func (t *StatementTable) PeriodIndex(period string) int {
	for i, p := range t.Periods {
		if p == period {
			return i
		}
	}
	return -1
}

// Labels lists the line-item labels in row order.
func (t *StatementTable) Labels() []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Label
	}
	return out
}

// Lookup returns the cell for (label, period). With duplicate labels the
// last-listed row wins.
func (t *StatementTable) Lookup(label, period string) (cells.Token, bool) {
	col := t.PeriodIndex(period)
	if col < 0 {
		return cells.Token{}, false
	}
	for i := len(t.Rows) - 1; i >= 0; i-- {
		if t.Rows[i].Label != label {
			continue
		}
		c := t.Rows[i].Cells[col]
		return c.Token, c.Present
	}
	return cells.Token{}, false
}

// Value returns the numeric value for (label, period); false when the cell is
// missing or not a number.
func (t *StatementTable) Value(label, period string) (decimal.Decimal, bool) {
	tok, ok := t.Lookup(label, period)
	if !ok || tok.Kind != cells.KindNumber {
		return decimal.Zero, false
	}
	return tok.Value, true
}

