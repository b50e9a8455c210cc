package export

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"financial_statements/pkg/core/cells"
	"financial_statements/pkg/core/ingest"
	"financial_statements/pkg/core/statements"
	"financial_statements/pkg/core/tables"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is Excel's limit on worksheet names.
const maxSheetName = 31

// Sheet is one worksheet of an export, normally one filing.
type Sheet struct {
	Name  string
	Table *tables.StatementTable
}

// XLSXExporter writes statement tables as workbooks in a Layout.
type XLSXExporter struct {
	layout Layout
	logger *slog.Logger
}

// NewXLSXExporter creates an exporter; a nil logger discards output.
func NewXLSXExporter(layout Layout, logger *slog.Logger) *XLSXExporter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &XLSXExporter{layout: layout, logger: logger}
}

// Export writes one workbook for symbol's statement with a worksheet per sheet and
// returns its path. Sheets without a table are skipped; if none remain the result is
// ErrNotExportable. Failures are returned as-is.
func (e *XLSXExporter) Export(symbol string, st statements.Statement, sheets ...Sheet) (string, error) {
	var present []Sheet
	for _, s := range sheets {
		if s.Table != nil {
			present = append(present, s)
		}
	}
	if len(present) == 0 {
		return "", fmt.Errorf("%s %s: %w", symbol, st, ErrNotExportable)
	}

	if err := e.layout.Setup(); err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]bool)
	for i, s := range present {
		name := sheetName(s.Name, i, used)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return "", fmt.Errorf("failed to name sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return "", fmt.Errorf("failed to add sheet %q: %w", name, err)
		}
		if err := writeTable(f, name, s.Table); err != nil {
			return "", fmt.Errorf("sheet %q: %w", name, err)
		}
	}

	path := e.layout.Path(symbol, st)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}

	e.logger.Info("[Export] workbook written", "path", path, "sheets", len(present))
	return path, nil
}

// ExportHistory writes one workbook per statement across the filings of a walk.
// Statements absent from every filing are skipped.
func (e *XLSXExporter) ExportHistory(symbol string, results []ingest.FilingResult) ([]string, error) {
	var paths []string
	for _, st := range statements.All {
		var sheets []Sheet
		for _, res := range results {
			if res.Absent() {
				continue
			}
			if table, ok := res.Filing.Table(st); ok {
				sheets = append(sheets, Sheet{Name: res.Record.Label(), Table: table})
			}
		}
		if len(sheets) == 0 {
			e.logger.Debug("[Export] statement absent from every filing", "statement", st.Key())
			continue
		}

		path, err := e.Export(symbol, st, sheets...)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNotExportable)
	}
	return paths, nil
}

func writeTable(f *excelize.File, sheet string, table *tables.StatementTable) error {
	header := make([]interface{}, 0, len(table.Periods)+1)
	header = append(header, "Category")
	for _, p := range table.Periods {
		header = append(header, p)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, item := range table.Rows {
		row := make([]interface{}, 0, len(item.Cells)+1)
		row = append(row, item.Label)
		for _, c := range item.Cells {
			row = append(row, cellValue(c))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func cellValue(c tables.Cell) interface{} {
	if !c.Present {
		return nil
	}
	tok := c.Token
	switch tok.Kind {
	case cells.KindNumber:
		if tok.Integral {
			return tok.Value.IntPart()
		}
		return tok.Value.InexactFloat64()
	case cells.KindDate, cells.KindLabel:
		return tok.Text
	}
	return tok.String()
}

// sheetName makes name a valid, unique worksheet name.
func sheetName(name string, index int, used map[string]bool) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '-'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		name = fmt.Sprintf("Filing %d", index+1)
	}
	name = truncateRunes(name, maxSheetName)

	base := name
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncateRunes(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

// truncateRunes cuts s to at most n characters without splitting a rune.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
