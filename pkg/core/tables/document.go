// Package tables locates financial statement tables in filing HTML and reshapes them
// into period-indexed statement tables.
package tables

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/unicode/norm"
)

// Document is a parsed filing.
type Document struct {
	root *html.Node
	dom  *goquery.Document
}

// ParseDocument parses UTF-8 filing HTML.
func ParseDocument(raw string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return newDocument(root), nil
}

// ReadDocument parses filing HTML of unknown encoding, sniffing the charset from
// <meta> declarations and byte-order marks. Older filings are windows-1252.
func ReadDocument(r io.Reader) (*Document, error) {
	return ReadDocumentType(r, "")
}

// ReadDocumentType is ReadDocument with a Content-Type header to consult first.
func ReadDocumentType(r io.Reader, contentType string) (*Document, error) {
	utf8, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, fmt.Errorf("detecting charset: %w", err)
	}
	root, err := html.Parse(utf8)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return newDocument(root), nil
}

func newDocument(root *html.Node) *Document {
	return &Document{root: root, dom: goquery.NewDocumentFromNode(root)}
}

// normalizeText folds compatibility characters (non-breaking spaces become spaces)
// and collapses whitespace runs.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}
