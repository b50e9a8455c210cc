package export

import (
	"bytes"
	"fmt"
	"strings"

	"financial_statements/pkg/core/cells"
	"financial_statements/pkg/core/statements"
	"financial_statements/pkg/core/tables"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// RenderMarkdown renders a statement table as a GitHub-flavored pipe table.
// Numbers are right-aligned and printed at full precision; missing cells are blank.
func RenderMarkdown(table *tables.StatementTable) string {
	var b strings.Builder

	b.WriteString("| Category |")
	for _, p := range table.Periods {
		b.WriteString(" " + escapeCell(p) + " |")
	}
	b.WriteString("\n| --- |")
	for range table.Periods {
		b.WriteString(" ---: |")
	}
	b.WriteString("\n")

	for _, item := range table.Rows {
		b.WriteString("| " + escapeCell(item.Label) + " |")
		for _, c := range item.Cells {
			text := ""
			if c.Present {
				text = escapeCell(cellText(c.Token))
			}
			b.WriteString(" " + text + " |")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderFilingMarkdown renders each statement of a filing under its title, in
// canonical order; absent statements carry the reason.
func RenderFilingMarkdown(filing *statements.ReconstructedFiling) string {
	var b strings.Builder
	for _, st := range statements.All {
		res, ok := filing.Statements[st]
		if !ok {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## %s\n\n", st.Title())

		if res.Absent() {
			reason := "not found"
			if res.Err != nil {
				reason = res.Err.Error()
			}
			fmt.Fprintf(&b, "_Absent: %s_\n", escapeCell(reason))
			continue
		}
		b.WriteString(RenderMarkdown(res.Table))
	}
	return b.String()
}

// RenderHTML converts Markdown produced by this package to HTML.
func RenderHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

func cellText(tok cells.Token) string {
	if tok.Kind == cells.KindNumber {
		return tok.Value.String()
	}
	return tok.Text
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
