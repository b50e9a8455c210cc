package tables

import (
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RawTable is a located table before any classification: rows of trimmed cell text.
type RawTable struct {
	Heading string     // heading that led to this table
	Ordinal int        // position among the tables found for Heading, document order
	Rows    [][]string // one entry per <tr>, one string per cell
}

// Located is the outcome of searching for one heading.
type Located struct {
	Heading string
	Matches int        // text nodes containing the heading
	Tables  []RawTable // distinct tables following those matches
}

// Locator finds the tables that follow statement headings.
type Locator struct {
	logger *slog.Logger
}

// NewLocator creates a locator; a nil logger discards output.
func NewLocator(logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Locator{logger: logger}
}

// Locate returns the table following every occurrence of heading, in document order.
// The heading is a case-sensitive literal matched anywhere inside a text node.
func (l *Locator) Locate(doc *Document, heading string) []RawTable {
	return l.LocateAll(doc, []string{heading})[heading].Tables
}

// LocateAll searches for several headings in a single pass over the document.
func (l *Locator) LocateAll(doc *Document, headings []string) map[string]*Located {
	type search struct {
		located *Located
		needle  string
		pending int
		seen    map[*html.Node]bool
	}

	searches := make([]*search, 0, len(headings))
	results := make(map[string]*Located, len(headings))
	for _, h := range headings {
		if _, dup := results[h]; dup {
			continue
		}
		loc := &Located{Heading: h}
		results[h] = loc
		searches = append(searches, &search{
			located: loc,
			needle:  normalizeText(h),
			seen:    make(map[*html.Node]bool),
		})
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if skipTextOf(n.Parent) {
				return
			}
			text := normalizeText(n.Data)
			if text == "" {
				return
			}
			for _, s := range searches {
				if s.needle != "" && strings.Contains(text, s.needle) {
					s.located.Matches++
					s.pending++
				}
			}

		case html.ElementNode:
			if n.DataAtom == atom.Table {
				for _, s := range searches {
					if s.pending == 0 {
						continue
					}
					s.pending = 0
					if s.seen[n] {
						continue
					}
					s.seen[n] = true
					s.located.Tables = append(s.located.Tables, RawTable{
						Heading: s.located.Heading,
						Ordinal: len(s.located.Tables),
						Rows:    extractRows(doc.dom.FindNodes(n)),
					})
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc.root)

	for _, s := range searches {
		l.logger.Debug("[Locator] heading search",
			"heading", s.located.Heading,
			"matches", s.located.Matches,
			"tables", len(s.located.Tables))
	}

	return results
}

// extractRows reads every row of a table and the trimmed text of its cells.
func extractRows(table *goquery.Selection) [][]string {
	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, normalizeText(cell.Text()))
		})
		rows = append(rows, cells)
	})
	return rows
}

func skipTextOf(parent *html.Node) bool {
	if parent == nil || parent.Type != html.ElementNode {
		return false
	}
	switch parent.DataAtom {
	case atom.Script, atom.Style:
		return true
	}
	return false
}
