package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// DocumentCache provides file-based caching for fetched filing documents.
type DocumentCache struct {
	dir string
}

// NewDocumentCache creates the cache directory if needed.
func NewDocumentCache(dir string) (*DocumentCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &DocumentCache{dir: dir}, nil
}

// path returns {dir}/{cik}_{accession-no-dashes}.htm
func (c *DocumentCache) path(record FilingRecord) string {
	return filepath.Join(c.dir, fmt.Sprintf("%s_%s.htm", record.CIK, record.AccessionNoDashes()))
}

// Get returns the cached document, if any.
func (c *DocumentCache) Get(record FilingRecord) (string, bool) {
	data, err := os.ReadFile(c.path(record))
	if err != nil || len(data) == 0 {
		return "", false
	}
	return string(data), true
}

// Put stores a document.
func (c *DocumentCache) Put(record FilingRecord, text string) error {
	return os.WriteFile(c.path(record), []byte(text), 0644)
}

// Dir returns the cache directory path.
func (c *DocumentCache) Dir() string {
	return c.dir
}

// CachedFetcher serves documents from a DocumentCache and falls back to Fetcher.
type CachedFetcher struct {
	Cache   *DocumentCache
	Fetcher DocumentFetcher
	logger  *slog.Logger
}

// NewCachedFetcher wraps fetcher with cache; a nil logger discards output.
func NewCachedFetcher(cache *DocumentCache, fetcher DocumentFetcher, logger *slog.Logger) *CachedFetcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &CachedFetcher{Cache: cache, Fetcher: fetcher, logger: logger}
}

func (f *CachedFetcher) FetchDocument(ctx context.Context, record FilingRecord) (string, error) {
	if text, ok := f.Cache.Get(record); ok {
		f.logger.Debug("[Cache] hit", "accession", record.AccessionNumber)
		return text, nil
	}

	text, err := f.Fetcher.FetchDocument(ctx, record)
	if err != nil {
		return "", err
	}
	if err := f.Cache.Put(record, text); err != nil {
		f.logger.Warn("[Cache] write failed", "accession", record.AccessionNumber, "error", err)
	}
	return text, nil
}
