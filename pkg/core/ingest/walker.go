package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"financial_statements/pkg/core/statements"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultPacing is the minimum wait between two document fetches of a walk.
const DefaultPacing = time.Second

// DocumentFetcher returns the raw text of a filing's primary document.
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, record FilingRecord) (string, error)
}

// FetcherFunc adapts a function to DocumentFetcher.
type FetcherFunc func(ctx context.Context, record FilingRecord) (string, error)

func (f FetcherFunc) FetchDocument(ctx context.Context, record FilingRecord) (string, error) {
	return f(ctx, record)
}

// FilingResult is one entry of a history walk: a reconstructed filing or an absent
// marker carrying the reason.
type FilingResult struct {
	Record FilingRecord
	Filing *statements.ReconstructedFiling
	Err    error
}

// Absent reports whether the filing could not be fetched.
func (r FilingResult) Absent() bool {
	return r.Filing == nil
}

func (r FilingResult) MarshalJSON() ([]byte, error) {
	out := struct {
		Record     FilingRecord                    `json:"record"`
		Statements *statements.ReconstructedFiling `json:"statements"`
		Error      string                          `json:"error,omitempty"`
	}{Record: r.Record, Statements: r.Filing}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// Walker fetches and reconstructs a sequence of filings.
type Walker struct {
	reconstructor *statements.Reconstructor
	pacing        time.Duration
	concurrency   int
	logger        *slog.Logger

	// shared by every walk on this Walker: one fetch in flight, paced
	limiter *rate.Limiter
	slot    chan struct{}
}

// WalkerOption customizes a Walker.
type WalkerOption func(*Walker)

// WithPacing sets the wait between successive fetches.
func WithPacing(d time.Duration) WalkerOption {
	return func(w *Walker) {
		if d > 0 {
			w.pacing = d
		}
	}
}

// WithConcurrency bounds how many fetched documents are reconstructed at once.
func WithConcurrency(n int) WalkerOption {
	return func(w *Walker) {
		if n > 0 {
			w.concurrency = n
		}
	}
}

// WithWalkerLogger sets the walker's logger.
func WithWalkerLogger(logger *slog.Logger) WalkerOption {
	return func(w *Walker) { w.logger = logger }
}

// NewWalker creates a walker around r.
func NewWalker(r *statements.Reconstructor, opts ...WalkerOption) *Walker {
	w := &Walker{
		reconstructor: r,
		pacing:        DefaultPacing,
		concurrency:   1,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.limiter = rate.NewLimiter(rate.Every(w.pacing), 1)
	w.slot = make(chan struct{}, 1)
	return w
}

// WalkHistory fetches each record in order and reconstructs it. Results keep the
// order of records.
//
// Fetches are sequential with at least the pacing interval between them, also across
// concurrent walks on the same Walker. A failed, empty or panicking fetch yields an
// absent result and the walk continues. Reconstruction runs
// concurrently with later fetches. When ctx ends, records not yet fetched are marked
// absent with the context error, which is also returned.
func (w *Walker) WalkHistory(ctx context.Context, records []FilingRecord, fetcher DocumentFetcher) ([]FilingResult, error) {
	results := make([]FilingResult, len(records))

	var g errgroup.Group
	g.SetLimit(w.concurrency)

	var walkErr error
	for i, record := range records {
		results[i].Record = record

		if err := w.acquire(ctx); err != nil {
			if ctx.Err() != nil {
				err = ctx.Err()
			}
			walkErr = err
			for j := i; j < len(records); j++ {
				results[j] = FilingResult{Record: records[j], Err: err}
			}
			w.logger.Warn("[Walker] walk cancelled", "remaining", len(records)-i, "error", err)
			break
		}

		text, err := w.fetch(ctx, fetcher, record)
		w.release()
		if err == nil && strings.TrimSpace(text) == "" {
			err = &FetchError{Accession: record.AccessionNumber, Err: ErrEmptyDocument}
		}
		if err != nil {
			w.logger.Warn("[Walker] filing absent", "accession", record.AccessionNumber, "error", err)
			results[i].Err = err
			continue
		}

		g.Go(func() error {
			results[i].Filing, results[i].Err = w.reconstruct(text)
			if results[i].Err == nil {
				w.logger.Info("[Walker] filing reconstructed",
					"accession", record.AccessionNumber,
					"present", len(results[i].Filing.Present()))
			}
			return nil
		})
	}

	_ = g.Wait()
	return results, walkErr
}

// acquire takes the fetch slot and waits out the pacing interval.
func (w *Walker) acquire(ctx context.Context) error {
	select {
	case w.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := w.limiter.Wait(ctx); err != nil {
		w.release()
		return err
	}
	return nil
}

func (w *Walker) release() {
	<-w.slot
}

func (w *Walker) fetch(ctx context.Context, fetcher DocumentFetcher, record FilingRecord) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", &FetchError{Accession: record.AccessionNumber, Err: fmt.Errorf("fetch panicked: %v", r)}
		}
	}()
	return fetcher.FetchDocument(ctx, record)
}

func (w *Walker) reconstruct(text string) (filing *statements.ReconstructedFiling, err error) {
	defer func() {
		if r := recover(); r != nil {
			filing, err = nil, fmt.Errorf("reconstruction panicked: %v", r)
		}
	}()
	return w.reconstructor.Reconstruct(text), nil
}
