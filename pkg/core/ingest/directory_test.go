package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStaticDirectory(t *testing.T) {
	dir := StaticDirectory{"aapl": "320193"}

	cik, err := dir.ResolveCIK(context.Background(), "AAPL")
	if err != nil || cik != "0000320193" {
		t.Errorf("expected 0000320193, got %q (%v)", cik, err)
	}
	if _, err := dir.ResolveCIK(context.Background(), "ZZZZ"); !errors.Is(err, ErrTickerNotFound) {
		t.Errorf("expected ErrTickerNotFound, got %v", err)
	}
}

func TestTickerDirectory_HJSONCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "company_tickers.json")
	hjsonData := `{
  # hand-maintained override file
  "0": {cik_str: 320193, ticker: "AAPL", title: "Apple Inc."}
}`
	if err := os.WriteFile(path, []byte(hjsonData), 0644); err != nil {
		t.Fatal(err)
	}

	dir := NewTickerDirectory(path, nil, nil)
	cik, err := dir.ResolveCIK(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("ResolveCIK() error = %v", err)
	}
	if cik != "0000320193" {
		t.Errorf("expected 0000320193, got %q", cik)
	}
}

func TestTickerDirectory_TruncatedCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "company_tickers.json")
	truncated := `{"0":{"cik_str":320193,"ticker":"AAPL","title":"Apple Inc."},"1":{"cik_str":789019,"ticker":"MSFT"`
	if err := os.WriteFile(path, []byte(truncated), 0644); err != nil {
		t.Fatal(err)
	}

	cik, err := NewTickerDirectory(path, nil, nil).ResolveCIK(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("ResolveCIK() error = %v", err)
	}
	if cik != "0000320193" {
		t.Errorf("expected 0000320193, got %q", cik)
	}
}

func TestTickerDirectory_DownloadsWhenMissing(t *testing.T) {
	agents := &agentLog{}
	client := newTestClient(newSECServer(t, agents))
	path := filepath.Join(t.TempDir(), "cache", "company_tickers.json")

	dir := NewTickerDirectory(path, client, nil)
	cik, err := dir.ResolveCIK(context.Background(), "MSFT")
	if err != nil {
		t.Fatalf("ResolveCIK() error = %v", err)
	}
	if cik != "0000789019" {
		t.Errorf("expected 0000789019, got %q", cik)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected cache file written: %v", err)
	}

	// second lookup is served from memory
	if _, err := dir.ResolveCIK(context.Background(), "AAPL"); err != nil {
		t.Errorf("ResolveCIK() error = %v", err)
	}
	if n := len(agents.list()); n != 1 {
		t.Errorf("expected a single download, got %d requests", n)
	}

	if _, err := dir.ResolveCIK(context.Background(), "NOPE"); !errors.Is(err, ErrTickerNotFound) {
		t.Errorf("expected ErrTickerNotFound, got %v", err)
	}
}

func TestTickerDirectory_MissingWithoutClient(t *testing.T) {
	dir := NewTickerDirectory(filepath.Join(t.TempDir(), "none.json"), nil, nil)
	if _, err := dir.ResolveCIK(context.Background(), "AAPL"); err == nil {
		t.Errorf("expected error when cache is missing and no client is configured")
	}
}

func TestTickerDirectory_Refresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "company_tickers.json")
	stale := `{"0":{"cik_str":320193,"ticker":"AAPL","title":"Apple Inc."}}`
	if err := os.WriteFile(path, []byte(stale), 0644); err != nil {
		t.Fatal(err)
	}

	dir := NewTickerDirectory(path, newTestClient(newSECServer(t, &agentLog{})), nil)
	if _, err := dir.ResolveCIK(context.Background(), "MSFT"); !errors.Is(err, ErrTickerNotFound) {
		t.Fatalf("expected stale cache to miss MSFT, got %v", err)
	}

	if err := dir.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	cik, err := dir.ResolveCIK(context.Background(), "MSFT")
	if err != nil || cik != "0000789019" {
		t.Errorf("expected 0000789019 after refresh, got %q (%v)", cik, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != tickersJSON {
		t.Errorf("expected cache file rewritten, got %s", data)
	}
}
