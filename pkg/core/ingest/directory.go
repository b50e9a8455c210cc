package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// CIKResolver maps a ticker symbol to a 10-digit CIK.
type CIKResolver interface {
	ResolveCIK(ctx context.Context, ticker string) (string, error)
}

// StaticDirectory is a fixed ticker → CIK map.
type StaticDirectory map[string]string

func (d StaticDirectory) ResolveCIK(_ context.Context, ticker string) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	for t, cik := range d {
		if strings.ToUpper(t) == ticker {
			return PadCIK(cik), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
}

// tickerEntry is one value of SEC's company_tickers.json:
// { "0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."}, ... }
type tickerEntry struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// TickerDirectory resolves tickers from SEC's mapping file, kept in a local cache file.
// The file is downloaded when missing or when Refresh is called.
type TickerDirectory struct {
	path   string
	client *EDGARClient
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]string
}

// NewTickerDirectory creates a directory backed by the cache file at path. client may
// be nil when the file is always present.
func NewTickerDirectory(path string, client *EDGARClient, logger *slog.Logger) *TickerDirectory {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &TickerDirectory{path: path, client: client, logger: logger}
}

func (d *TickerDirectory) ResolveCIK(ctx context.Context, ticker string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.entries == nil {
		if err := d.load(ctx); err != nil {
			return "", err
		}
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	cik, ok := d.entries[ticker]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}
	return cik, nil
}

// Refresh downloads the mapping file again and rewrites the cache.
func (d *TickerDirectory) Refresh(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.refresh(ctx)
}

func (d *TickerDirectory) load(ctx context.Context) error {
	data, err := os.ReadFile(d.path)
	if errors.Is(err, fs.ErrNotExist) {
		d.logger.Info("[CIK] cache file missing, downloading", "path", d.path)
		return d.refresh(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to read ticker cache: %w", err)
	}

	entries, err := parseTickers(data)
	if err != nil {
		return err
	}
	d.entries = entries
	return nil
}

func (d *TickerDirectory) refresh(ctx context.Context) error {
	if d.client == nil {
		return fmt.Errorf("ticker cache %s unavailable and no EDGAR client configured", d.path)
	}

	data, err := d.client.FetchTickers(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch ticker mapping: %w", err)
	}

	entries, err := parseTickers(data)
	if err != nil {
		return err
	}

	if d.path != "" {
		if err := os.MkdirAll(filepath.Dir(d.path), 0755); err != nil {
			return fmt.Errorf("failed to create ticker cache dir: %w", err)
		}
		if err := os.WriteFile(d.path, data, 0644); err != nil {
			return fmt.Errorf("failed to write ticker cache: %w", err)
		}
	}

	d.entries = entries
	d.logger.Info("[CIK] ticker mapping loaded", "tickers", len(entries))
	return nil
}

// parseTickers reads the mapping as HJSON (a JSON superset), repairing truncated or
// hand-edited files before giving up.
func parseTickers(data []byte) (map[string]string, error) {
	var raw map[string]tickerEntry
	if err := hjson.Unmarshal(data, &raw); err != nil {
		repaired, rerr := jsonrepair.RepairJSON(string(data))
		if rerr != nil {
			return nil, fmt.Errorf("failed to parse ticker mapping: %w", err)
		}
		raw = nil
		if err := hjson.Unmarshal([]byte(repaired), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse repaired ticker mapping: %w", err)
		}
	}

	entries := make(map[string]string, len(raw))
	for _, e := range raw {
		if e.Ticker == "" || e.CIK == 0 {
			continue
		}
		entries[strings.ToUpper(e.Ticker)] = PadCIK(strconv.FormatInt(e.CIK, 10))
	}
	return entries, nil
}
