package tables

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"financial_statements/pkg/core/cells"
)

const (
	categoryColumn = "Category"
	columnPrefix   = "col_"
)

// Builder reshapes located tables into a StatementTable.
type Builder struct {
	normalizer *cells.Normalizer
	logger     *slog.Logger
}

// NewBuilder creates a builder; nil arguments fall back to the fail-fast normalizer
// and a discarding logger.
func NewBuilder(normalizer *cells.Normalizer, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if normalizer == nil {
		normalizer = cells.NewNormalizer(cells.MalformedFail, logger)
	}
	return &Builder{normalizer: normalizer, logger: logger}
}

// Build normalizes every row of every input table, in order, and reshapes the result:
//
//  1. empty rows are dropped
//  2. the widest row sets the column count; shorter rows are padded with missing cells
//  3. column 0 ("Category") becomes the row label, the rest are named col_1..col_N-1
//  4. the first row labeled "Date" supplies the period headers
//  5. Date rows are removed from the data
//
// A table without a Date row is a StructureError wrapping ErrNoDateRow.
func (b *Builder) Build(raw []RawTable) (*StatementTable, error) {
	heading := ""
	if len(raw) > 0 {
		heading = raw[0].Heading
	}

	var rows []cells.Row
	for _, t := range raw {
		for i, tokens := range t.Rows {
			row, err := b.normalizer.Normalize(tokens)
			if err != nil {
				return nil, fmt.Errorf("%q table %d row %d: %w", t.Heading, t.Ordinal, i, err)
			}
			if len(row) == 0 {
				continue
			}
			rows = append(rows, row)
		}
	}

	if len(rows) == 0 {
		return nil, structureError(heading, ErrEmptyTable)
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	columns := placeholderColumns(width)

	dateRow := -1
	for i, row := range rows {
		if row.IsDateRow() {
			dateRow = i
			break
		}
	}
	if dateRow < 0 {
		return nil, structureError(heading, ErrNoDateRow)
	}

	for col := 1; col < width; col++ {
		if col < len(rows[dateRow]) {
			columns[col] = rows[dateRow][col].String()
		}
	}

	table := &StatementTable{
		Periods: columns[1:],
		Rows:    make([]LineItem, 0, len(rows)-1),
	}
	for _, row := range rows {
		if row.IsDateRow() {
			continue
		}
		item := LineItem{Label: row.Label(), Cells: make([]Cell, width-1)}
		for col := 1; col < len(row); col++ {
			item.Cells[col-1] = Cell{Token: row[col], Present: true}
		}
		table.Rows = append(table.Rows, item)
	}

	b.logger.Debug("[Builder] built statement table",
		"heading", heading,
		"tables", len(raw),
		"rows", len(table.Rows),
		"periods", len(table.Periods))

	return table, nil
}

func placeholderColumns(width int) []string {
	columns := make([]string, width)
	columns[0] = categoryColumn
	for i := 1; i < width; i++ {
		columns[i] = columnPrefix + strconv.Itoa(i)
	}
	return columns
}
