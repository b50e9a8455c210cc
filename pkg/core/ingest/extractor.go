package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// DefaultForms are the filing types walked by default.
var DefaultForms = []string{"10-K"}

// Extractor walks a company's annual-report history from a ticker.
type Extractor struct {
	Directory CIKResolver
	Client    *EDGARClient
	Fetcher   DocumentFetcher
	Walker    *Walker
	Forms     []string
	Limit     int // 0 = every listed filing

	logger *slog.Logger
}

// NewExtractor wires the collaborators of a history walk. A nil fetcher uses client.
func NewExtractor(dir CIKResolver, client *EDGARClient, fetcher DocumentFetcher, walker *Walker, logger *slog.Logger) *Extractor {
	if fetcher == nil {
		fetcher = client
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Extractor{
		Directory: dir,
		Client:    client,
		Fetcher:   fetcher,
		Walker:    walker,
		Forms:     DefaultForms,
		logger:    logger,
	}
}

// Records resolves the ticker and lists its matching filings, newest first.
func (e *Extractor) Records(ctx context.Context, ticker string) ([]FilingRecord, error) {
	cik, err := e.Directory.ResolveCIK(ctx, ticker)
	if err != nil {
		return nil, err
	}

	subs, err := e.Client.FetchSubmissions(ctx, cik)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submissions for %s: %w", ticker, err)
	}

	records := e.Client.Filings(subs, e.Forms, e.Limit)
	e.logger.Info("[Extractor] filings listed", "ticker", ticker, "cik", cik, "filings", len(records))
	return records, nil
}

// ExtractHistory resolves the ticker, lists its filings and walks them in order.
func (e *Extractor) ExtractHistory(ctx context.Context, ticker string) ([]FilingResult, error) {
	records, err := e.Records(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return e.Walker.WalkHistory(ctx, records, e.Fetcher)
}
