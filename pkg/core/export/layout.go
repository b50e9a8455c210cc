// Package export writes reconstructed statements to disk: XLSX workbooks in a fixed
// directory layout, plus Markdown and HTML renderings.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"financial_statements/pkg/core/statements"
)

// ErrNotExportable means there is nothing to write, e.g. every table is absent.
var ErrNotExportable = errors.New("nothing to export")

// Layout directories under the output root.
const (
	BalanceSheetDir      = "balance_sheet"
	IncomeStatementDir   = "income_statement"
	CashflowStatementDir = "cashflow_statement"
)

var layoutDirs = []string{BalanceSheetDir, IncomeStatementDir, CashflowStatementDir}

// destinations maps a statement to its directory and file suffix.
var destinations = map[statements.Statement]struct{ dir, suffix string }{
	statements.Operations:          {IncomeStatementDir, "incomeStatement"},
	statements.ComprehensiveIncome: {IncomeStatementDir, "comprehensiveIncome"},
	statements.BalanceSheet:        {BalanceSheetDir, "balancesheet"},
	statements.ShareholdersEquity:  {BalanceSheetDir, "shareholdersEquity"},
	statements.CashFlows:           {CashflowStatementDir, "cashflowStatement"},
}

// TeardownMode selects how much of the layout Teardown removes.
type TeardownMode int

const (
	// TeardownRemoveAll deletes the root and everything below it.
	TeardownRemoveAll TeardownMode = iota
	// TeardownPurgeFiles deletes regular files in the statement directories and keeps
	// the directories.
	TeardownPurgeFiles
)

// Layout is the on-disk output tree rooted at Root.
type Layout struct {
	Root string
}

// Setup creates the statement directories. It is safe to call repeatedly.
func (l Layout) Setup() error {
	for _, d := range layoutDirs {
		if err := os.MkdirAll(filepath.Join(l.Root, d), 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", d, err)
		}
	}
	return nil
}

// Teardown removes the layout according to mode. A missing root is not an error.
func (l Layout) Teardown(mode TeardownMode) error {
	if mode == TeardownRemoveAll {
		if err := os.RemoveAll(l.Root); err != nil {
			return fmt.Errorf("failed to remove %s: %w", l.Root, err)
		}
		return nil
	}

	for _, d := range layoutDirs {
		dir := filepath.Join(l.Root, d)
		entries, err := os.ReadDir(dir)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", dir, err)
		}
		for _, e := range entries {
			if !e.Type().IsRegular() {
				continue
			}
			if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
				return fmt.Errorf("failed to remove %s: %w", e.Name(), err)
			}
		}
	}
	return nil
}

// Path is the workbook path for a symbol's statement: <root>/<dir>/<symbol>_<suffix>.xlsx
func (l Layout) Path(symbol string, st statements.Statement) string {
	d := destinations[st]
	return filepath.Join(l.Root, d.dir, fmt.Sprintf("%s_%s.xlsx", symbol, d.suffix))
}
